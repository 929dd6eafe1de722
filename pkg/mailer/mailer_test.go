package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"

	gomail "gopkg.in/gomail.v2"

	"fzp/pkg/protocol"
)

func sampleSubmission() *protocol.Submission {
	return &protocol.Submission{
		Plate:         "M-AB 123",
		Date:          "01.03.2025",
		Time:          "09:15",
		Process:       "Rückgabe",
		Employee:      "Muster, Max",
		Customer:      "Kundin K.",
		CustomerEmail: "kundin@example.com",
		Model:         "VW Golf",
		Mileage:       "48211",
		Location:      "Mannheim",
	}
}

func TestSubject(t *testing.T) {
	got := Subject(sampleSubmission())
	want := "🚗 Fahrzeugprotokoll: M-AB 123 - Rückgabe (01.03.2025)"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestRecipientsWithCustomerEmail(t *testing.T) {
	cfg := Config{To: "fuhrpark@example.com", Bcc: "archiv@example.com"}

	to, cc, bcc := Recipients(cfg, sampleSubmission())
	if len(to) != 1 || to[0] != "fuhrpark@example.com" {
		t.Fatalf("unexpected to: %v", to)
	}
	if len(cc) != 1 || cc[0] != "kundin@example.com" {
		t.Fatalf("expected customer cc, got %v", cc)
	}
	if len(bcc) != 1 || bcc[0] != "archiv@example.com" {
		t.Fatalf("unexpected bcc: %v", bcc)
	}
}

func TestRecipientsSkipInvalidCustomerEmail(t *testing.T) {
	cfg := Config{To: "fuhrpark@example.com"}
	sub := sampleSubmission()
	sub.CustomerEmail = "keine email"

	_, cc, bcc := Recipients(cfg, sub)
	if len(cc) != 0 {
		t.Fatalf("expected no cc for invalid address, got %v", cc)
	}
	if len(bcc) != 0 {
		t.Fatalf("expected no bcc without config, got %v", bcc)
	}
}

func TestPlainBody(t *testing.T) {
	sub := sampleSubmission()
	sub.Damage = []protocol.DamageEntry{{Area: "Tür links", Desc: "Kratzer", Size: "4"}}

	body := PlainBody(sub, "https://drive.google.com/drive/folders/abc", 3)

	for _, want := range []string{
		"Kennzeichen: M-AB 123",
		"Marke/Modell: VW Golf",
		"Kilometerstand: 48211 km",
		"SCHÄDEN DOKUMENTIERT",
		"1. Tür links: Kratzer (4 cm)",
		"3 Fotos hochgeladen",
		"https://drive.google.com/drive/folders/abc",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}
}

func TestPlainBodyNoDamageSection(t *testing.T) {
	body := PlainBody(sampleSubmission(), "link", 0)
	if strings.Contains(body, "SCHÄDEN") {
		t.Fatalf("unexpected damage section:\n%s", body)
	}
}

func TestHTMLBodyContainsLinkAndCount(t *testing.T) {
	body := HTMLBody(sampleSubmission(), "https://drive.example/f", 5)
	if !strings.Contains(body, "https://drive.example/f") {
		t.Fatal("missing folder link")
	}
	if !strings.Contains(body, "<strong>5 Fotos</strong>") {
		t.Fatal("missing upload count")
	}
}

func TestNotifySendsMessage(t *testing.T) {
	var sent *gomail.Message
	m := &Mailer{
		cfg:  Config{Host: "smtp.example.com", Port: 587, From: "noreply@example.com", To: "fuhrpark@example.com"},
		send: func(msg *gomail.Message) error { sent = msg; return nil },
	}

	att := protocol.Attachment{Filename: "protokoll.html", MIME: "text/html", Data: []byte("<html></html>")}
	if err := m.Notify(context.Background(), sampleSubmission(), "https://link", 1, att); err != nil {
		t.Fatalf("notify failed: %v", err)
	}
	if sent == nil {
		t.Fatal("send was not invoked")
	}
	if got := sent.GetHeader("Subject"); len(got) == 0 || !strings.Contains(got[0], "M-AB 123") {
		t.Fatalf("unexpected subject %v", got)
	}
	if got := sent.GetHeader("Cc"); len(got) == 0 {
		t.Fatal("expected customer cc header")
	}
}

func TestNotifyReturnsSendError(t *testing.T) {
	m := &Mailer{
		cfg:  Config{Host: "smtp.example.com", Port: 587, To: "fuhrpark@example.com"},
		send: func(msg *gomail.Message) error { return errors.New("connection refused") },
	}

	err := m.Notify(context.Background(), sampleSubmission(), "link", 0, protocol.Attachment{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "smtp.example.com:587") {
		t.Fatalf("error should name the endpoint: %v", err)
	}
}
