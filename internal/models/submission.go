package models

import "time"

// Submission lifecycle states.
const (
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusGraded    = "graded"
)

// Submission is a student's file deliverable for a file assignment or a
// take-home quiz. The unique index on (assessment_id, student_id) makes the
// one-submission-per-pair invariant a storage guarantee: under concurrent
// duplicate submits exactly one insert wins.
type Submission struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	AssessmentID    uint         `gorm:"not null;uniqueIndex:uq_submission_pair" json:"assessment_id"`
	StudentID       uint         `gorm:"not null;uniqueIndex:uq_submission_pair" json:"student_id"`
	FileID          uint         `gorm:"not null" json:"file_id"`
	SubmittedAt     time.Time    `gorm:"not null" json:"submitted_at"`
	IsLate          bool         `gorm:"not null;default:false" json:"is_late"`
	SimilarityScore *float64     `json:"similarity_score"`
	Status          string       `gorm:"size:32;not null" json:"status"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
	Assessment      Assessment   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assessment"`
	File            UploadedFile `json:"file"`
}

// IsGraded reports whether a terminal grade has been attached.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}
