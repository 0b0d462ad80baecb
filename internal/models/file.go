package models

import "time"

// Virus scan states for registered uploads.
const (
	ScanStatusPending  = "pending"
	ScanStatusClean    = "clean"
	ScanStatusInfected = "infected"
	ScanStatusFailed   = "failed"
)

// UploadedFile records metadata for a stored file. The workflow layer only
// ever consults ownership and scan status; bytes live in object storage.
type UploadedFile struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UploaderID   uint      `gorm:"not null;index" json:"uploader_id"`
	UploaderRole Role      `gorm:"size:32;not null" json:"uploader_role"`
	FileName     string    `gorm:"size:255;not null" json:"file_name"`
	OriginalName string    `gorm:"size:255;not null" json:"original_name"`
	Size         int64     `gorm:"not null" json:"size"`
	MimeType     string    `gorm:"size:100;not null" json:"mime_type"`
	StoragePath  string    `gorm:"size:512;uniqueIndex;not null" json:"storage_path"`
	URL          string    `gorm:"size:1024;not null" json:"url"`
	ScanStatus   string    `gorm:"size:16;not null;default:pending" json:"scan_status"`
	CreatedAt    time.Time `json:"created_at"`
}

// OwnedBy reports whether the file was uploaded by the given user.
func (f UploadedFile) OwnedBy(userID uint) bool {
	return f.UploaderID == userID
}

// Usable reports whether the file may be attached to a submission or grade.
// Only files scanned clean qualify; pending scans stay unattached.
func (f UploadedFile) Usable() bool {
	return f.ScanStatus == ScanStatusClean
}
