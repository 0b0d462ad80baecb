package dto

import (
	"time"

	"github.com/aulamax/aulamax-api/internal/models"
)

// SubmissionCreateRequest is the payload for submitting file work.
type SubmissionCreateRequest struct {
	FileID uint `json:"file_id" validate:"required,gt=0"`
}

// SubmissionFilter describes query filters for listing submissions.
type SubmissionFilter struct {
	AssessmentID *uint   `query:"assessment_id"`
	StudentID    *uint   `query:"student_id"`
	Status       *string `query:"status" validate:"omitempty,oneof=submitted graded"`
}

// SubmissionResponse serializes a file submission for API clients.
type SubmissionResponse struct {
	ID           uint            `json:"id"`
	AssessmentID uint            `json:"assessment_id"`
	StudentID    uint            `json:"student_id"`
	FileID       uint            `json:"file_id"`
	FileURL      string          `json:"file_url,omitempty"`
	SubmittedAt  time.Time       `json:"submitted_at"`
	IsLate       bool            `json:"is_late"`
	Status       string          `json:"status"`
	Assessment   *AssessmentLite `json:"assessment,omitempty"`
}

// AssessmentLite summarizes an assessment in nested responses.
type AssessmentLite struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	Kind       string    `json:"kind"`
	Deadline   time.Time `json:"deadline"`
	TotalMarks float64   `json:"total_marks"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:           model.ID,
		AssessmentID: model.AssessmentID,
		StudentID:    model.StudentID,
		FileID:       model.FileID,
		FileURL:      model.File.URL,
		SubmittedAt:  model.SubmittedAt,
		IsLate:       model.IsLate,
		Status:       model.Status,
	}

	if model.Assessment.ID != 0 {
		response.Assessment = &AssessmentLite{
			ID:         model.Assessment.ID,
			Title:      model.Assessment.Title,
			Kind:       string(model.Assessment.Kind),
			Deadline:   model.Assessment.Deadline,
			TotalMarks: model.Assessment.TotalMarks,
		}
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}
	return responses
}
