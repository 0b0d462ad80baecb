package dto

import "time"

// AssessmentProgress summarizes one student's standing on one assessment.
type AssessmentProgress struct {
	AssessmentID uint       `json:"assessment_id"`
	Title        string     `json:"title"`
	Kind         string     `json:"kind"`
	Deadline     time.Time  `json:"deadline"`
	PastDeadline bool       `json:"past_deadline"`
	Status       string     `json:"status"`
	AttemptsUsed int        `json:"attempts_used"`
	MaxAttempts  *int       `json:"max_attempts"`
	CanAttempt   bool       `json:"can_attempt"`
	BestScore    *float64   `json:"best_score"`
	FinalScore   *float64   `json:"final_score"`
	SubmittedAt  *time.Time `json:"submitted_at"`
}

// ProgressSummary aggregates counts across all assessments.
type ProgressSummary struct {
	TotalAssessments int `json:"total_assessments"`
	Submitted        int `json:"submitted"`
	Graded           int `json:"graded"`
	Open             int `json:"open"`
}

// StudentProgressResponse is the cached per-student rollup.
type StudentProgressResponse struct {
	StudentID   uint                 `json:"student_id"`
	Summary     ProgressSummary      `json:"summary"`
	Assessments []AssessmentProgress `json:"assessments"`
	GeneratedAt time.Time            `json:"generated_at"`
	CacheHit    bool                 `json:"cache_hit"`
}
