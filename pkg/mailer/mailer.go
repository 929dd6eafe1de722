// Package mailer composes and sends the protocol summary mail. Delivery is
// best-effort from the pipeline's point of view; the caller logs and ignores
// errors returned here.
package mailer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gomail "gopkg.in/gomail.v2"

	"fzp/pkg/protocol"
)

// Config is the SMTP endpoint and the fixed distribution list.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
	Bcc      string
}

// Mailer sends protocol summaries over SMTP.
type Mailer struct {
	cfg Config

	// send is swappable in tests; defaults to gomail's DialAndSend.
	send func(m *gomail.Message) error
}

func New(cfg Config) *Mailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &Mailer{cfg: cfg, send: func(m *gomail.Message) error { return d.DialAndSend(m) }}
}

// Subject builds the deterministic subject line.
func Subject(sub *protocol.Submission) string {
	return fmt.Sprintf("🚗 Fahrzeugprotokoll: %s - %s (%s)", sub.Plate, sub.Process, sub.Date)
}

// Recipients returns the visible copy list beyond the fixed primary
// recipient: the submitter's own address is CC'd when it looks like one.
func Recipients(cfg Config, sub *protocol.Submission) (to, cc, bcc []string) {
	to = []string{cfg.To}
	if addr := strings.TrimSpace(sub.CustomerEmail); addr != "" && strings.Contains(addr, "@") {
		cc = []string{addr}
	}
	if cfg.Bcc != "" {
		bcc = []string{cfg.Bcc}
	}
	return to, cc, bcc
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// PlainBody builds the text summary of vehicle and participant data plus
// damage details when present.
func PlainBody(sub *protocol.Submission, link string, uploaded int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Fahrzeugprotokoll - %s\n", orDash(sub.Process))
	fmt.Fprintf(&b, "Datum: %s um %s\n\n", orDash(sub.Date), orDash(sub.Time))
	b.WriteString("FAHRZEUGDATEN:\n")
	fmt.Fprintf(&b, "- Kennzeichen: %s\n", sub.Plate)
	fmt.Fprintf(&b, "- Marke/Modell: %s\n", orDash(sub.Model))
	fmt.Fprintf(&b, "- Kilometerstand: %s km\n", orDash(sub.Mileage.String()))
	fmt.Fprintf(&b, "- Standort: %s\n\n", orDash(sub.Location))
	b.WriteString("BETEILIGTE:\n")
	fmt.Fprintf(&b, "- Mitarbeiter: %s\n", orDash(sub.Employee))
	fmt.Fprintf(&b, "- Kunde/Fahrer: %s\n", orDash(sub.Customer))
	fmt.Fprintf(&b, "- E-Mail Fahrer: %s\n", orDash(sub.CustomerEmail))
	if len(sub.Damage) > 0 {
		b.WriteString("\nSCHÄDEN DOKUMENTIERT:\n")
		for i, d := range sub.Damage {
			fmt.Fprintf(&b, "  %d. %s: %s (%s cm)\n", i+1, orDash(d.Area), orDash(d.Desc), orDash(d.Size.String()))
		}
	}
	fmt.Fprintf(&b, "\n%d Fotos hochgeladen\n%s\n\n---\nALMAS INDUSTRIES AG\n", uploaded, link)
	return b.String()
}

// HTMLBody builds the styled multipart alternative.
func HTMLBody(sub *protocol.Submission, link string, uploaded int) string {
	var damage strings.Builder
	if len(sub.Damage) > 0 {
		damage.WriteString(`<div style="background:#fff3cd;border:1px solid #ffc107;padding:15px;border-radius:5px;margin-top:20px;"><h3 style="color:#856404;margin:0 0 10px;">⚠️ Schäden dokumentiert</h3>`)
		for _, d := range sub.Damage {
			fmt.Fprintf(&damage, `<p style="margin:5px 0;"><strong>%s:</strong> %s (%s cm)</p>`,
				orDash(d.Area), orDash(d.Desc), orDash(d.Size.String()))
		}
		damage.WriteString("</div>")
	}
	return fmt.Sprintf(`<html><body style="font-family:Arial,sans-serif;line-height:1.6;color:#333;">
<div style="max-width:600px;margin:0 auto;padding:20px;">
<div style="background:linear-gradient(135deg,#c8102e,#8b0000);color:white;padding:20px;border-radius:10px 10px 0 0;">
<h1 style="margin:0;font-size:24px;">🚗 Fahrzeugprotokoll</h1>
<p style="margin:5px 0 0;opacity:0.9;">%s - %s um %s</p>
</div>
<div style="background:#f9f9f9;padding:20px;border:1px solid #ddd;">
<h2 style="color:#c8102e;margin-top:0;font-size:18px;">Fahrzeugdaten</h2>
<p><strong>Kennzeichen:</strong> %s<br><strong>Marke/Modell:</strong> %s<br>
<strong>Kilometerstand:</strong> %s km<br><strong>Standort:</strong> %s</p>
<h2 style="color:#c8102e;font-size:18px;">Beteiligte</h2>
<p><strong>Mitarbeiter:</strong> %s<br><strong>Kunde/Fahrer:</strong> %s<br>
<strong>E-Mail Fahrer:</strong> %s</p>
%s
</div>
<div style="background:#c8102e;color:white;padding:20px;text-align:center;border-radius:0 0 10px 10px;">
<p style="margin:0 0 15px;font-size:16px;">📁 <strong>%d Fotos</strong> wurden hochgeladen</p>
<a href="%s" style="display:inline-block;background:white;color:#c8102e;padding:12px 30px;text-decoration:none;border-radius:5px;font-weight:bold;">📂 Fotos in Google Drive öffnen</a>
</div>
<p style="text-align:center;color:#888;font-size:12px;margin-top:20px;">
ALMAS INDUSTRIES AG | Floßwörthstraße 57 | D-68199 Mannheim<br>
Diese E-Mail wurde automatisch generiert.</p>
</div></body></html>`,
		orDash(sub.Process), orDash(sub.Date), orDash(sub.Time),
		sub.Plate, orDash(sub.Model), orDash(sub.Mileage.String()), orDash(sub.Location),
		orDash(sub.Employee), orDash(sub.Customer), orDash(sub.CustomerEmail),
		damage.String(), uploaded, link)
}

// Notify implements protocol.Notifier. The attachment bytes are spooled to a
// temp file for the duration of the send and removed on every exit path.
func (m *Mailer) Notify(ctx context.Context, sub *protocol.Submission, link string, uploaded int, att protocol.Attachment) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.cfg.From, "Fahrzeugprotokoll")
	to, cc, bcc := Recipients(m.cfg, sub)
	msg.SetHeader("To", to...)
	if len(cc) > 0 {
		msg.SetHeader("Cc", cc...)
	}
	if len(bcc) > 0 {
		msg.SetHeader("Bcc", bcc...)
	}
	msg.SetHeader("Subject", Subject(sub))
	msg.SetBody("text/plain", PlainBody(sub, link, uploaded))
	msg.AddAlternative("text/html", HTMLBody(sub, link, uploaded))

	if len(att.Data) > 0 {
		spool, err := os.MkdirTemp("", "protokoll-mail-")
		if err != nil {
			return fmt.Errorf("create attachment spool: %w", err)
		}
		defer os.RemoveAll(spool)
		path := filepath.Join(spool, att.Filename)
		if err := os.WriteFile(path, att.Data, 0600); err != nil {
			return fmt.Errorf("spool attachment: %w", err)
		}
		msg.Attach(path)
	}

	if err := m.send(msg); err != nil {
		return fmt.Errorf("send mail via %s:%d: %w", m.cfg.Host, m.cfg.Port, err)
	}
	return nil
}
