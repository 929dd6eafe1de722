package main

import (
	"context"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"fzp/models"
	"fzp/pkg/protocol"
)

// dbRecorder persists processing records; it implements protocol.Recorder.
type dbRecorder struct {
	db *gorm.DB
}

func (r *dbRecorder) Record(ctx context.Context, rec *protocol.Record) error {
	if r.db == nil {
		return fmt.Errorf("database not initialized")
	}
	row := models.ProtocolRecord{
		SubmissionID: rec.SubmissionID,
		Plate:        rec.Plate,
		Date:         rec.Date,
		Time:         rec.Time,
		Process:      rec.Process,
		Employee:     rec.Employee,
		FolderID:     rec.FolderID,
		FolderLink:   rec.FolderLink,
		Status:       string(rec.Status),
		Error:        rec.Error,
		Metadata:     datatypes.JSON(rec.Metadata),
	}
	for _, f := range rec.Files {
		if f.State == protocol.UploadOK {
			row.Uploaded++
		} else {
			row.Failed++
		}
		row.Photos = append(row.Photos, models.PhotoUpload{
			FileName: f.Name,
			DriveID:  f.ID,
			Link:     f.Link,
			State:    string(f.State),
			Error:    f.Error,
		})
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create protocol record: %w", err)
	}
	return nil
}
