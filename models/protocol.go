package models

import (
	"time"

	"gorm.io/datatypes"
)

// ProtocolRecord is one processed inspection submission. Metadata holds the
// redacted protokoll.json snapshot (no image payloads).
type ProtocolRecord struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	SubmissionID string `gorm:"size:36;uniqueIndex;not null"`
	Plate        string `gorm:"size:32;index"`
	Date         string `gorm:"size:16"`
	Time         string `gorm:"size:8"`
	Process      string `gorm:"size:128"`
	Employee     string `gorm:"size:128"`
	FolderID     string `gorm:"size:128"`
	FolderLink   string `gorm:"size:255"`
	Uploaded     int
	Failed       int
	Status       string         `gorm:"size:32;index"`
	Error        string         `gorm:"size:512"`
	Metadata     datatypes.JSON `gorm:"type:jsonb"`

	Photos []PhotoUpload `gorm:"foreignKey:ProtocolID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
