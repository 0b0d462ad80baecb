package dto

import (
	"time"

	"github.com/aulamax/aulamax-api/internal/models"
)

// GradeCreateRequest is the payload for attaching a terminal grade. Exactly
// one of SubmissionID or AttemptID must be set.
type GradeCreateRequest struct {
	SubmissionID   *uint   `json:"submission_id" validate:"omitempty,gt=0"`
	AttemptID      *uint   `json:"attempt_id" validate:"omitempty,gt=0"`
	FinalScore     float64 `json:"final_score" validate:"gte=0"`
	FeedbackText   string  `json:"feedback_text"`
	FeedbackFileID *uint   `json:"feedback_file_id" validate:"omitempty,gt=0"`
}

// GradeResponse serializes a grade for API clients.
type GradeResponse struct {
	ID             uint      `json:"id"`
	SubmissionID   *uint     `json:"submission_id"`
	AttemptID      *uint     `json:"attempt_id"`
	GraderID       uint      `json:"grader_id"`
	GraderRole     string    `json:"grader_role"`
	FinalScore     float64   `json:"final_score"`
	FeedbackText   string    `json:"feedback_text"`
	FeedbackFileID *uint     `json:"feedback_file_id"`
	GradedAt       time.Time `json:"graded_at"`
}

// NewGradeResponse converts a Grade model into a DTO.
func NewGradeResponse(model models.Grade) GradeResponse {
	return GradeResponse{
		ID:             model.ID,
		SubmissionID:   model.SubmissionID,
		AttemptID:      model.AttemptID,
		GraderID:       model.GraderID,
		GraderRole:     string(model.GraderRole),
		FinalScore:     model.FinalScore,
		FeedbackText:   model.FeedbackText,
		FeedbackFileID: model.FeedbackFileID,
		GradedAt:       model.GradedAt,
	}
}
