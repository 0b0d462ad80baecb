package dto

import (
	"time"

	"github.com/aulamax/aulamax-api/internal/models"
)

// UploadResponse serializes a registered file.
type UploadResponse struct {
	ID           uint      `json:"id"`
	FileName     string    `json:"file_name"`
	OriginalName string    `json:"original_name"`
	Size         int64     `json:"size"`
	MimeType     string    `json:"mime_type"`
	URL          string    `json:"url"`
	ScanStatus   string    `json:"scan_status"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUploadResponse converts an UploadedFile model into a DTO.
func NewUploadResponse(model models.UploadedFile) UploadResponse {
	return UploadResponse{
		ID:           model.ID,
		FileName:     model.FileName,
		OriginalName: model.OriginalName,
		Size:         model.Size,
		MimeType:     model.MimeType,
		URL:          model.URL,
		ScanStatus:   model.ScanStatus,
		CreatedAt:    model.CreatedAt,
	}
}
