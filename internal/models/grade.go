package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrGradeSourceInvalid indicates a grade referencing zero or both sources.
var ErrGradeSourceInvalid = errors.New("grade must reference exactly one submission or attempt")

// Grade is the terminal scoring record for exactly one submission or one
// completed attempt. The unique indexes on both source columns enforce
// at-most-one-grade-per-source at the storage boundary.
type Grade struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SubmissionID   *uint     `gorm:"uniqueIndex" json:"submission_id"`
	AttemptID      *uint     `gorm:"uniqueIndex" json:"attempt_id"`
	GraderID       uint      `gorm:"not null" json:"grader_id"`
	GraderRole     Role      `gorm:"size:32;not null" json:"grader_role"`
	FinalScore     float64   `gorm:"not null" json:"final_score"`
	FeedbackText   string    `gorm:"type:text" json:"feedback_text"`
	FeedbackFileID *uint     `json:"feedback_file_id"`
	GradedAt       time.Time `gorm:"not null" json:"graded_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// BeforeCreate rejects rows that do not reference exactly one source.
func (g *Grade) BeforeCreate(tx *gorm.DB) error {
	if (g.SubmissionID == nil) == (g.AttemptID == nil) {
		return ErrGradeSourceInvalid
	}
	return nil
}
