package protocol

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"fzp/pkg/drive"
)

// Stage is the linear state a submission moves through. There is no way
// back: a stage is only ever followed by the next one, Rejected is reachable
// only from Received, and Failed only from a fatal mid-flight error.
type Stage string

const (
	StageReceived            Stage = "received"
	StageValidated           Stage = "validated"
	StageDestinationResolved Stage = "destination_resolved"
	StagePhotosUploaded      Stage = "photos_uploaded"
	StageMetadataPersisted   Stage = "metadata_persisted"
	StageReportSent          Stage = "report_sent"
	StageCompleted           Stage = "completed"
	StageRejected            Stage = "rejected"
	StageFailed              Stage = "failed"
)

// Op names the external operations the pipeline performs.
type Op string

const (
	OpResolveDestination Op = "resolve_destination"
	OpUploadPhoto        Op = "upload_photo"
	OpPersistMetadata    Op = "persist_metadata"
	OpNotify             Op = "notify"
	OpRecord             Op = "record"
)

// Policy is what a failure of an operation does to the submission.
type Policy int

const (
	// PolicyFatal aborts the submission and surfaces the error.
	PolicyFatal Policy = iota
	// PolicyRecorded keeps the failure in the per-photo results and
	// continues.
	PolicyRecorded
	// PolicyBestEffort logs the failure and continues as if it succeeded.
	PolicyBestEffort
)

// policies is the failure policy per operation. Keeping the mapping in one
// table makes the swallow-vs-propagate behavior reviewable instead of buried
// in catch blocks.
var policies = map[Op]Policy{
	OpResolveDestination: PolicyFatal,
	OpUploadPhoto:        PolicyRecorded,
	OpPersistMetadata:    PolicyFatal,
	OpNotify:             PolicyBestEffort,
	OpRecord:             PolicyBestEffort,
}

// PolicyFor returns the failure policy for op.
func PolicyFor(op Op) Policy { return policies[op] }

// UploadState classifies the outcome of one photo upload attempt.
type UploadState string

const (
	UploadOK              UploadState = "uploaded"
	UploadDecodeFailed    UploadState = "decode_failed"
	UploadTransportFailed UploadState = "upload_failed"
)

// UploadResult is one row per attempted photo.
type UploadResult struct {
	Name  string      `json:"name"`
	ID    string      `json:"id,omitempty"`
	Link  string      `json:"link,omitempty"`
	State UploadState `json:"state"`
	Error string      `json:"error,omitempty"`
}

// Result is the orchestrator's sole return value and the HTTP response body.
type Result struct {
	Success       bool           `json:"success"`
	Plate         string         `json:"plate,omitempty"`
	Date          string         `json:"date,omitempty"`
	Time          string         `json:"time,omitempty"`
	DriveLink     string         `json:"driveLink,omitempty"`
	FolderID      string         `json:"folderId,omitempty"`
	UploadedFiles int            `json:"uploadedFiles"`
	Files         []UploadResult `json:"files,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// Attachment is the report artifact handed to the notifier: the rendered
// document, or the raw HTML when rendering failed.
type Attachment struct {
	Filename string
	MIME     string
	Data     []byte
}

// Reporter builds the report attachment for a processed submission. It must
// not fail; rendering problems degrade to an HTML attachment internally.
type Reporter interface {
	BuildAttachment(ctx context.Context, sub *Submission) Attachment
}

// Notifier delivers the summary message.
type Notifier interface {
	Notify(ctx context.Context, sub *Submission, link string, uploaded int, att Attachment) error
}

// Record is the persistence snapshot of one processed submission.
type Record struct {
	SubmissionID string
	Plate        string
	Date         string
	Time         string
	Process      string
	Employee     string
	FolderID     string
	FolderLink   string
	Status       Stage
	Error        string
	Metadata     []byte
	Files        []UploadResult
}

// Recorder persists Records. Implementations live next to the database
// layer.
type Recorder interface {
	Record(ctx context.Context, rec *Record) error
}

// Processor sequences one submission through validation, folder resolution,
// photo upload, metadata persistence, reporting and notification. It holds
// no per-submission state; a single Processor serves concurrent requests.
type Processor struct {
	Storage    drive.Storage
	RootFolder string

	// Reporter, Notifier and Recorder are optional; a nil field skips the
	// corresponding step.
	Reporter Reporter
	Notifier Notifier
	Recorder Recorder

	// Now supplies the default date/time for submissions without one.
	// Defaults to time.Now.
	Now func() time.Time

	Log *slog.Logger
}

func (p *Processor) logger() *slog.Logger {
	if p.Log != nil {
		return p.Log
	}
	return slog.Default()
}

func (p *Processor) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Process runs the full pipeline. A handled failure (missing plate) comes
// back as a Result with Success=false and a nil error; a fatal storage
// failure comes back as a non-nil error. Partial photo failures never flip
// Success — they only lower UploadedFiles.
func (p *Processor) Process(ctx context.Context, sub *Submission) (*Result, error) {
	rec := &Record{SubmissionID: uuid.NewString(), Status: StageReceived}
	log := p.logger().With("submission", rec.SubmissionID)

	plate := strings.TrimSpace(sub.Plate)
	if plate == "" {
		rec.Status = StageRejected
		rec.Error = "Kein Kennzeichen angegeben"
		p.record(ctx, log, rec)
		return &Result{Success: false, Error: rec.Error}, nil
	}
	rec.Status = StageValidated

	date := sub.Date
	if date == "" {
		date = p.now().Format("02.01.2006")
	}
	tm := sub.Time
	if tm == "" {
		tm = p.now().Format("15:04")
	}
	rec.Plate, rec.Date, rec.Time = plate, date, tm
	rec.Process, rec.Employee = sub.Process, sub.Employee

	dest := DeriveDestination(plate, date, tm)
	log.Info("processing protocol", "plate", dest.PlateFolder, "session", dest.SessionFolder)

	plateFolderID, err := drive.FindOrCreateFolder(ctx, p.Storage, dest.PlateFolder, p.RootFolder)
	if err != nil {
		return nil, p.fatal(ctx, log, rec, OpResolveDestination, fmt.Errorf("resolve vehicle folder %q: %w", dest.PlateFolder, err))
	}
	sessionFolderID, err := drive.FindOrCreateFolder(ctx, p.Storage, dest.SessionFolder, plateFolderID)
	if err != nil {
		return nil, p.fatal(ctx, log, rec, OpResolveDestination, fmt.Errorf("resolve session folder %q: %w", dest.SessionFolder, err))
	}
	rec.Status = StageDestinationResolved
	rec.FolderID = sessionFolderID
	rec.FolderLink = drive.FolderLink(sessionFolderID)

	var files []UploadResult
	uploaded := 0
	for _, photo := range ExtractPhotos(sub) {
		if photo.Err != nil {
			log.Warn("photo decode failed", "file", photo.Name, "error", photo.Err)
			files = append(files, UploadResult{Name: photo.Name, State: UploadDecodeFailed, Error: photo.Err.Error()})
			continue
		}
		f, err := p.Storage.Upload(ctx, sessionFolderID, photo.Name, "image/jpeg", photo.Data)
		if err != nil {
			// PolicyRecorded: this photo fails, the submission continues
			if PolicyFor(OpUploadPhoto) != PolicyRecorded {
				return nil, p.fatal(ctx, log, rec, OpUploadPhoto, err)
			}
			log.Warn("photo upload failed", "file", photo.Name, "error", err)
			files = append(files, UploadResult{Name: photo.Name, State: UploadTransportFailed, Error: err.Error()})
			continue
		}
		log.Debug("photo uploaded", "file", photo.Name, "id", f.ID)
		files = append(files, UploadResult{Name: photo.Name, ID: f.ID, Link: f.Link, State: UploadOK})
		uploaded++
	}
	rec.Status = StagePhotosUploaded
	rec.Files = files

	meta, err := RedactMetadata(sub)
	if err != nil {
		return nil, p.fatal(ctx, log, rec, OpPersistMetadata, err)
	}
	if _, err := p.Storage.Upload(ctx, sessionFolderID, "protokoll.json", "application/json", meta); err != nil {
		return nil, p.fatal(ctx, log, rec, OpPersistMetadata, fmt.Errorf("persist protokoll.json: %w", err))
	}
	rec.Status = StageMetadataPersisted
	rec.Metadata = meta

	if p.Notifier != nil {
		var att Attachment
		if p.Reporter != nil {
			att = p.Reporter.BuildAttachment(ctx, sub)
		}
		if err := p.Notifier.Notify(ctx, sub, rec.FolderLink, uploaded, att); err != nil {
			// PolicyBestEffort: notification never fails the submission
			log.Warn("notification failed", "op", string(OpNotify), "error", err)
		}
	}
	rec.Status = StageReportSent

	rec.Status = StageCompleted
	p.record(ctx, log, rec)
	log.Info("protocol processed", "uploaded", uploaded, "folder", rec.FolderLink)

	return &Result{
		Success:       true,
		Plate:         plate,
		Date:          date,
		Time:          tm,
		DriveLink:     rec.FolderLink,
		FolderID:      sessionFolderID,
		UploadedFiles: uploaded,
		Files:         files,
	}, nil
}

// fatal finalizes the record for an operation whose policy is PolicyFatal
// and hands the error back for the caller to return.
func (p *Processor) fatal(ctx context.Context, log *slog.Logger, rec *Record, op Op, err error) error {
	rec.Status = StageFailed
	rec.Error = err.Error()
	p.record(ctx, log, rec)
	log.Error("protocol processing failed", "op", string(op), "error", err)
	return err
}

func (p *Processor) record(ctx context.Context, log *slog.Logger, rec *Record) {
	if p.Recorder == nil {
		return
	}
	if err := p.Recorder.Record(ctx, rec); err != nil {
		log.Warn("record protocol failed", "op", string(OpRecord), "error", err)
	}
}
