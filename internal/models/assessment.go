package models

import "time"

// AssessmentKind distinguishes the two submission variants.
type AssessmentKind string

const (
	// KindFileAssignment is a classic assignment answered with a file upload.
	KindFileAssignment AssessmentKind = "file_assignment"
	// KindDigitalQuiz is a question set answered online and auto-scored.
	KindDigitalQuiz AssessmentKind = "digital_quiz"
	// KindFileQuiz is a take-home quiz answered with a file upload.
	KindFileQuiz AssessmentKind = "file_quiz"
)

// Valid reports whether the kind is a known variant.
func (k AssessmentKind) Valid() bool {
	switch k {
	case KindFileAssignment, KindDigitalQuiz, KindFileQuiz:
		return true
	}
	return false
}

// Assessment is the shared definition for assignments and quizzes. The
// published/past-deadline distinction is derived from Deadline on every read,
// never persisted.
type Assessment struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	OfferingID         uint           `gorm:"not null;index" json:"offering_id"`
	CreatorID          uint           `gorm:"not null;index" json:"creator_id"`
	CreatorRole        Role           `gorm:"size:32;not null" json:"creator_role"`
	Title              string         `gorm:"size:255;not null" json:"title"`
	Description        string         `gorm:"type:text" json:"description"`
	Kind               AssessmentKind `gorm:"size:32;not null" json:"kind"`
	Deadline           time.Time      `gorm:"not null" json:"deadline"`
	TotalMarks         float64        `gorm:"not null" json:"total_marks"`
	MaxAttempts        *int           `json:"max_attempts"`
	IsPublished        bool           `gorm:"not null;default:false" json:"is_published"`
	InstructionsFileID *uint          `json:"instructions_file_id"`
	IsActive           bool           `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	Questions          []Question     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"questions"`
}

// IsPastDeadline reports whether the deadline has passed at the reference instant.
func (a Assessment) IsPastDeadline(reference time.Time) bool {
	return reference.After(a.Deadline)
}

// IsDigital reports whether the assessment is answered online.
func (a Assessment) IsDigital() bool {
	return a.Kind == KindDigitalQuiz
}

// AcceptsFileWork reports whether the assessment is answered with a file upload.
func (a Assessment) AcceptsFileWork() bool {
	return a.Kind == KindFileAssignment || a.Kind == KindFileQuiz
}

// QuestionType enumerates supported question formats.
type QuestionType string

const (
	QuestionMCQ       QuestionType = "mcq"
	QuestionTrueFalse QuestionType = "true_false"
	QuestionParagraph QuestionType = "paragraph"
)

// Valid reports whether the question type is a known variant.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionMCQ, QuestionTrueFalse, QuestionParagraph:
		return true
	}
	return false
}

// IsObjective reports whether the question can be auto-scored.
func (t QuestionType) IsObjective() bool {
	return t == QuestionMCQ || t == QuestionTrueFalse
}

// Question belongs to a digital quiz. OrderNumber is contiguous and unique
// within the quiz, assigned server-side when the question is added.
type Question struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	AssessmentID uint             `gorm:"not null;uniqueIndex:uq_question_order" json:"assessment_id"`
	Text         string           `gorm:"type:text;not null" json:"text"`
	Type         QuestionType     `gorm:"size:16;not null" json:"type"`
	Marks        float64          `gorm:"not null" json:"marks"`
	OrderNumber  int              `gorm:"not null;uniqueIndex:uq_question_order" json:"order_number"`
	CreatedAt    time.Time        `json:"created_at"`
	Options      []QuestionOption `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"options"`
}

// CorrectOption returns the option flagged correct, or nil for paragraph
// questions and malformed rows.
func (q Question) CorrectOption() *QuestionOption {
	for i := range q.Options {
		if q.Options[i].IsCorrect {
			return &q.Options[i]
		}
	}
	return nil
}

// QuestionOption is a single choice for an objective question.
type QuestionOption struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	QuestionID  uint   `gorm:"not null;uniqueIndex:uq_option_order" json:"question_id"`
	Label       string `gorm:"size:2;not null" json:"label"`
	Text        string `gorm:"type:text;not null" json:"text"`
	IsCorrect   bool   `gorm:"not null;default:false" json:"-"`
	OrderNumber int    `gorm:"not null;uniqueIndex:uq_option_order" json:"order_number"`
}
