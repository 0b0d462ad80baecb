package dto

import (
	"time"

	"github.com/aulamax/aulamax-api/internal/models"
)

// AnswerInput is one submitted response within an attempt. Exactly one of
// SelectedOptionID or AnswerText is expected depending on the question type.
type AnswerInput struct {
	QuestionID       uint   `json:"question_id" validate:"required,gt=0"`
	SelectedOptionID *uint  `json:"selected_option_id" validate:"omitempty,gt=0"`
	AnswerText       string `json:"answer_text"`
}

// AttemptSubmitRequest carries the full answer set for a digital quiz attempt.
type AttemptSubmitRequest struct {
	Answers []AnswerInput `json:"answers" validate:"required,min=1,dive"`
}

// AnswerResponse serializes a recorded answer.
type AnswerResponse struct {
	QuestionID       uint     `json:"question_id"`
	SelectedOptionID *uint    `json:"selected_option_id"`
	AnswerText       string   `json:"answer_text,omitempty"`
	AwardedMarks     *float64 `json:"awarded_marks"`
	IsCorrect        *bool    `json:"is_correct"`
}

// AttemptResponse serializes a quiz attempt for API clients.
type AttemptResponse struct {
	ID            uint             `json:"id"`
	QuizID        uint             `json:"quiz_id"`
	StudentID     uint             `json:"student_id"`
	AttemptNumber int              `json:"attempt_number"`
	StartedAt     time.Time        `json:"started_at"`
	SubmittedAt   *time.Time       `json:"submitted_at"`
	Score         *float64         `json:"score"`
	IsCompleted   bool             `json:"is_completed"`
	Answers       []AnswerResponse `json:"answers,omitempty"`
}

// NewAttemptResponse converts an Attempt model into a DTO.
func NewAttemptResponse(model models.Attempt) AttemptResponse {
	response := AttemptResponse{
		ID:            model.ID,
		QuizID:        model.QuizID,
		StudentID:     model.StudentID,
		AttemptNumber: model.AttemptNumber,
		StartedAt:     model.StartedAt,
		SubmittedAt:   model.SubmittedAt,
		Score:         model.Score,
		IsCompleted:   model.IsCompleted,
	}

	if len(model.Answers) > 0 {
		answers := make([]AnswerResponse, 0, len(model.Answers))
		for _, answer := range model.Answers {
			answers = append(answers, AnswerResponse{
				QuestionID:       answer.QuestionID,
				SelectedOptionID: answer.SelectedOptionID,
				AnswerText:       answer.AnswerText,
				AwardedMarks:     answer.AwardedMarks,
				IsCorrect:        answer.IsCorrect,
			})
		}
		response.Answers = answers
	}

	return response
}
