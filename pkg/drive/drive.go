// Package drive wraps the remote file storage behind the narrow interface
// the protocol pipeline needs: look up a child folder, create one, upload a
// blob. The production implementation talks to Google Drive with a service
// account.
package drive

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

// File describes an uploaded remote file.
type File struct {
	ID   string
	Name string
	Link string
}

// Storage is the backend contract. FindFolder returns "" when no matching
// non-trashed folder exists under parentID.
type Storage interface {
	FindFolder(ctx context.Context, name, parentID string) (string, error)
	CreateFolder(ctx context.Context, name, parentID string) (string, error)
	Upload(ctx context.Context, parentID, name, mimeType string, data []byte) (*File, error)
}

// FolderLink returns the browser URL for a folder ID.
func FolderLink(folderID string) string {
	return "https://drive.google.com/drive/folders/" + folderID
}

// Drive is the Google Drive backed Storage.
type Drive struct {
	svc *gdrive.Service
}

// New authenticates with the service-account key file and returns a ready
// client. The client enforces its own transport timeouts; no extra deadline
// is layered on top.
func New(ctx context.Context, serviceAccountFile string) (*Drive, error) {
	svc, err := gdrive.NewService(ctx,
		option.WithCredentialsFile(serviceAccountFile),
		option.WithScopes(gdrive.DriveScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &Drive{svc: svc}, nil
}

func (d *Drive) FindFolder(ctx context.Context, name, parentID string) (string, error) {
	query := fmt.Sprintf("name='%s' and '%s' in parents and mimeType='%s' and trashed=false",
		escapeQueryValue(name), parentID, folderMimeType)
	list, err := d.svc.Files.List().Q(query).Fields("files(id, name)").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("list folders named %q: %w", name, err)
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}

func (d *Drive) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	folder, err := d.svc.Files.Create(&gdrive.File{
		Name:     name,
		MimeType: folderMimeType,
		Parents:  []string{parentID},
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create folder %q: %w", name, err)
	}
	return folder.Id, nil
}

func (d *Drive) Upload(ctx context.Context, parentID, name, mimeType string, data []byte) (*File, error) {
	f, err := d.svc.Files.Create(&gdrive.File{
		Name:    name,
		Parents: []string{parentID},
	}).Media(bytes.NewReader(data), googleapi.ContentType(mimeType)).
		Fields("id, webViewLink").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("upload %q: %w", name, err)
	}
	return &File{ID: f.Id, Name: name, Link: f.WebViewLink}, nil
}

// escapeQueryValue escapes a string literal for a Drive search query.
func escapeQueryValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
