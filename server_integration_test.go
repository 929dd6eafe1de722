package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"fzp/pkg/drive"
	"fzp/pkg/protocol"
)

// in-memory storage backend for the handler tests
type testStorage struct {
	folders  map[string]string
	uploads  map[string][]string
	nextID   int
	calls    int
	mailErrs int
}

func newTestStorage() *testStorage {
	return &testStorage{folders: map[string]string{}, uploads: map[string][]string{}}
}

func (s *testStorage) FindFolder(ctx context.Context, name, parentID string) (string, error) {
	s.calls++
	return s.folders[parentID+"/"+name], nil
}

func (s *testStorage) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	s.calls++
	s.nextID++
	id := fmt.Sprintf("tf-%d", s.nextID)
	s.folders[parentID+"/"+name] = id
	return id, nil
}

func (s *testStorage) Upload(ctx context.Context, parentID, name, mimeType string, data []byte) (*drive.File, error) {
	s.calls++
	s.uploads[parentID] = append(s.uploads[parentID], name)
	return &drive.File{ID: "tfile-" + name, Name: name, Link: "https://drive.example/" + name}, nil
}

type failingNotifier struct{ calls int }

func (n *failingNotifier) Notify(ctx context.Context, sub *protocol.Submission, link string, uploaded int, att protocol.Attachment) error {
	n.calls++
	return errors.New("smtp unreachable")
}

func setupTestServer(storage *testStorage, notifier protocol.Notifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	processor = &protocol.Processor{
		Storage:    storage,
		RootFolder: "root",
		Notifier:   notifier,
		Now:        func() time.Time { return time.Date(2025, 3, 1, 9, 15, 0, 0, time.UTC) },
	}
	r := gin.New()
	setupRoutes(r)
	return r
}

func performRequest(r http.Handler, method, path string, body io.Reader) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	r := setupTestServer(newTestStorage(), nil)

	resp := performRequest(r, http.MethodGet, "/health", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("health status=%d", resp.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(resp.Body.Bytes(), &body)
	if body["status"] != "ok" {
		t.Fatalf("unexpected health body: %s", resp.Body.String())
	}
}

func TestWebhookRejectsMissingPlate(t *testing.T) {
	storage := newTestStorage()
	r := setupTestServer(storage, nil)

	resp := performRequest(r, http.MethodPost, "/webhook/fahrzeugprotokoll",
		bytes.NewBufferString(`{"date":"01.03.2025"}`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", resp.Code, resp.Body.String())
	}
	var res protocol.Result
	_ = json.Unmarshal(resp.Body.Bytes(), &res)
	if res.Success {
		t.Fatal("expected success=false")
	}
	if res.Error == "" {
		t.Fatal("expected error message")
	}
	if storage.calls != 0 {
		t.Fatalf("storage touched %d times for rejected submission", storage.calls)
	}
}

func TestWebhookRejectsEmptyBody(t *testing.T) {
	r := setupTestServer(newTestStorage(), nil)

	resp := performRequest(r, http.MethodPost, "/webhook/fahrzeugprotokoll", bytes.NewBufferString(""))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestWebhookFullFlow(t *testing.T) {
	storage := newTestStorage()
	r := setupTestServer(storage, nil)

	body := `{"plate":"M-AB 123","date":"01.03.2025","time":"09:15","photos":[{"title":"Front","dataUrl":"data:image/jpeg;base64,AAAA"}]}`
	resp := performRequest(r, http.MethodPost, "/webhook/fahrzeugprotokoll", bytes.NewBufferString(body))
	if resp.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.Code, resp.Body.String())
	}

	var res protocol.Result
	if err := json.Unmarshal(resp.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.UploadedFiles != 1 {
		t.Fatalf("expected 1 uploaded file, got %d", res.UploadedFiles)
	}

	plateID := storage.folders["root/M-AB_123"]
	if plateID == "" {
		t.Fatalf("vehicle folder M-AB_123 missing: %v", storage.folders)
	}
	sessionID := storage.folders[plateID+"/01-03-2025_09-15"]
	if sessionID == "" {
		t.Fatalf("session folder missing: %v", storage.folders)
	}
	files := storage.uploads[sessionID]
	if len(files) != 2 || files[0] != "01_Front.jpg" || files[1] != "protokoll.json" {
		t.Fatalf("unexpected files in session folder: %v", files)
	}
	if res.DriveLink != drive.FolderLink(sessionID) {
		t.Fatalf("unexpected drive link %s", res.DriveLink)
	}
}

func TestWebhookMailFailureStillSucceeds(t *testing.T) {
	storage := newTestStorage()
	notifier := &failingNotifier{}
	r := setupTestServer(storage, notifier)

	body := `{"plate":"HH-XY 9","date":"02.03.2025","time":"10:30"}`
	resp := performRequest(r, http.MethodPost, "/webhook/fahrzeugprotokoll", bytes.NewBufferString(body))
	if resp.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.Code, resp.Body.String())
	}
	var res protocol.Result
	_ = json.Unmarshal(resp.Body.Bytes(), &res)
	if !res.Success {
		t.Fatal("mail failure must not fail the submission")
	}
	if notifier.calls != 1 {
		t.Fatalf("notifier called %d times", notifier.calls)
	}
}

func TestWebhookRepeatedSubmissionReusesFolders(t *testing.T) {
	storage := newTestStorage()
	r := setupTestServer(storage, nil)

	body := `{"plate":"B-CD 55","date":"05.03.2025","time":"11:00"}`
	for i := 0; i < 2; i++ {
		resp := performRequest(r, http.MethodPost, "/webhook/fahrzeugprotokoll", bytes.NewBufferString(body))
		if resp.Code != http.StatusOK {
			t.Fatalf("run %d: status=%d", i, resp.Code)
		}
	}
	// one vehicle folder, one session folder
	if len(storage.folders) != 2 {
		t.Fatalf("expected 2 folders total, got %v", storage.folders)
	}
}
