package dto

import (
	"time"

	"github.com/aulamax/aulamax-api/internal/models"
)

// AssessmentCreateRequest is the payload for creating an assignment or quiz.
type AssessmentCreateRequest struct {
	OfferingID         uint    `json:"offering_id" validate:"required,gt=0"`
	Title              string  `json:"title" validate:"required,min=3,max=255"`
	Description        string  `json:"description"`
	Kind               string  `json:"kind" validate:"required,oneof=file_assignment digital_quiz file_quiz"`
	Deadline           string  `json:"deadline" validate:"required"`
	TotalMarks         float64 `json:"total_marks" validate:"required,gt=0"`
	MaxAttempts        *int    `json:"max_attempts" validate:"omitempty,gt=0"`
	InstructionsFileID *uint   `json:"instructions_file_id"`
}

// QuestionOptionInput is one choice supplied when adding a question.
type QuestionOptionInput struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"is_correct"`
}

// QuestionCreateRequest is the payload for adding a question to a draft quiz.
type QuestionCreateRequest struct {
	Text    string                `json:"text" validate:"required"`
	Type    string                `json:"type" validate:"required,oneof=mcq true_false paragraph"`
	Marks   float64               `json:"marks" validate:"required,gt=0"`
	Options []QuestionOptionInput `json:"options" validate:"dive"`
}

// AssessmentFilter describes query filters for listing assessments.
type AssessmentFilter struct {
	OfferingID  *uint   `query:"offering_id"`
	CreatorID   *uint   `query:"creator_id"`
	Kind        *string `query:"kind" validate:"omitempty,oneof=file_assignment digital_quiz file_quiz"`
	IsPublished *bool   `query:"is_published"`
}

// QuestionOptionResponse serializes an option. Correctness flags are never
// exposed through this type.
type QuestionOptionResponse struct {
	ID          uint   `json:"id"`
	Label       string `json:"label"`
	Text        string `json:"text"`
	OrderNumber int    `json:"order_number"`
}

// QuestionResponse serializes a question for API clients.
type QuestionResponse struct {
	ID          uint                     `json:"id"`
	Text        string                   `json:"text"`
	Type        string                   `json:"type"`
	Marks       float64                  `json:"marks"`
	OrderNumber int                      `json:"order_number"`
	Options     []QuestionOptionResponse `json:"options,omitempty"`
}

// AssessmentResponse serializes an assessment for API clients. PastDeadline
// is derived from the deadline at render time.
type AssessmentResponse struct {
	ID                 uint               `json:"id"`
	OfferingID         uint               `json:"offering_id"`
	CreatorID          uint               `json:"creator_id"`
	CreatorRole        string             `json:"creator_role"`
	Title              string             `json:"title"`
	Description        string             `json:"description"`
	Kind               string             `json:"kind"`
	Deadline           time.Time          `json:"deadline"`
	TotalMarks         float64            `json:"total_marks"`
	MaxAttempts        *int               `json:"max_attempts"`
	IsPublished        bool               `json:"is_published"`
	PastDeadline       bool               `json:"past_deadline"`
	InstructionsFileID *uint              `json:"instructions_file_id"`
	CreatedAt          time.Time          `json:"created_at"`
	Questions          []QuestionResponse `json:"questions,omitempty"`
}

// NewAssessmentResponse converts an Assessment model into a DTO, deriving the
// past-deadline state from the reference instant.
func NewAssessmentResponse(model models.Assessment, reference time.Time) AssessmentResponse {
	response := AssessmentResponse{
		ID:                 model.ID,
		OfferingID:         model.OfferingID,
		CreatorID:          model.CreatorID,
		CreatorRole:        string(model.CreatorRole),
		Title:              model.Title,
		Description:        model.Description,
		Kind:               string(model.Kind),
		Deadline:           model.Deadline,
		TotalMarks:         model.TotalMarks,
		MaxAttempts:        model.MaxAttempts,
		IsPublished:        model.IsPublished,
		PastDeadline:       model.IsPastDeadline(reference),
		InstructionsFileID: model.InstructionsFileID,
		CreatedAt:          model.CreatedAt,
	}

	if len(model.Questions) > 0 {
		questions := make([]QuestionResponse, 0, len(model.Questions))
		for _, question := range model.Questions {
			questions = append(questions, NewQuestionResponse(question))
		}
		response.Questions = questions
	}

	return response
}

// NewQuestionResponse converts a Question model into a DTO.
func NewQuestionResponse(model models.Question) QuestionResponse {
	response := QuestionResponse{
		ID:          model.ID,
		Text:        model.Text,
		Type:        string(model.Type),
		Marks:       model.Marks,
		OrderNumber: model.OrderNumber,
	}

	if len(model.Options) > 0 {
		options := make([]QuestionOptionResponse, 0, len(model.Options))
		for _, option := range model.Options {
			options = append(options, QuestionOptionResponse{
				ID:          option.ID,
				Label:       option.Label,
				Text:        option.Text,
				OrderNumber: option.OrderNumber,
			})
		}
		response.Options = options
	}

	return response
}

// NewAssessmentResponseSlice converts assessment models into DTOs.
func NewAssessmentResponseSlice(assessments []models.Assessment, reference time.Time) []AssessmentResponse {
	responses := make([]AssessmentResponse, 0, len(assessments))
	for _, assessment := range assessments {
		responses = append(responses, NewAssessmentResponse(assessment, reference))
	}
	return responses
}
