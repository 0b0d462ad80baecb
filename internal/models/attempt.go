package models

import "time"

// Attempt is one student's try at a digital quiz. AttemptNumber is 1-based
// and strictly increasing per (quiz, student); numbers are never reused, even
// for abandoned attempts. The unique index backs the numbering under
// concurrent starts.
type Attempt struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	QuizID        uint       `gorm:"not null;uniqueIndex:uq_attempt_number" json:"quiz_id"`
	StudentID     uint       `gorm:"not null;uniqueIndex:uq_attempt_number" json:"student_id"`
	AttemptNumber int        `gorm:"not null;uniqueIndex:uq_attempt_number" json:"attempt_number"`
	StartedAt     time.Time  `gorm:"not null" json:"started_at"`
	SubmittedAt   *time.Time `json:"submitted_at"`
	Score         *float64   `json:"score"`
	IsCompleted   bool       `gorm:"not null;default:false" json:"is_completed"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Quiz          Assessment `gorm:"foreignKey:QuizID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"quiz"`
	Answers       []Answer   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"answers"`
}

// Answer is one response within an attempt, at most one per question. For
// objective questions AwardedMarks and IsCorrect are fixed at submission
// time; for paragraph questions both stay nil until a teacher grades.
type Answer struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	AttemptID        uint      `gorm:"not null;uniqueIndex:uq_answer_question" json:"attempt_id"`
	QuestionID       uint      `gorm:"not null;uniqueIndex:uq_answer_question" json:"question_id"`
	SelectedOptionID *uint     `json:"selected_option_id"`
	AnswerText       string    `gorm:"type:text" json:"answer_text"`
	AwardedMarks     *float64  `json:"awarded_marks"`
	IsCorrect        *bool     `json:"is_correct"`
	AnsweredAt       time.Time `gorm:"not null" json:"answered_at"`
}
