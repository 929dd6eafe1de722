package models

import "time"

// PhotoUpload is one attempted photo upload belonging to a ProtocolRecord.
// Failed attempts are kept (State decode_failed / upload_failed) so the
// archive shows which photos are missing remotely.
type PhotoUpload struct {
	ID         uint `gorm:"primaryKey"`
	CreatedAt  time.Time
	ProtocolID uint   `gorm:"index;not null"`
	FileName   string `gorm:"size:255;not null"`
	DriveID    string `gorm:"size:128"`
	Link       string `gorm:"size:512"`
	State      string `gorm:"size:32;index"`
	Error      string `gorm:"size:512"`
}
