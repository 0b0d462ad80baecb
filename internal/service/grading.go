package service

import (
	"time"

	"github.com/aulamax/aulamax-api/internal/dto"
	"github.com/aulamax/aulamax-api/internal/models"
)

// ScoreAnswers evaluates a full answer set against the quiz questions and
// returns the answer rows to persist plus the total auto-score.
//
// Objective questions (mcq, true_false) are worth their full marks when the
// selected option is the flagged correct one and zero otherwise, including
// when the selected option belongs to a different question. Paragraph answers
// are stored verbatim with nil marks and nil correctness; they contribute
// nothing to the total until a teacher grades the attempt. Questions without
// a matching input produce no row and contribute zero. Inputs referencing
// questions outside the quiz are dropped.
func ScoreAnswers(questions []models.Question, inputs []dto.AnswerInput, answeredAt time.Time) ([]models.Answer, float64) {
	byQuestion := make(map[uint]dto.AnswerInput, len(inputs))
	for _, input := range inputs {
		byQuestion[input.QuestionID] = input
	}

	answers := make([]models.Answer, 0, len(inputs))
	var total float64

	for _, question := range questions {
		input, ok := byQuestion[question.ID]
		if !ok {
			continue
		}

		answer := models.Answer{
			QuestionID:       question.ID,
			SelectedOptionID: input.SelectedOptionID,
			AnswerText:       input.AnswerText,
			AnsweredAt:       answeredAt,
		}

		if question.Type.IsObjective() {
			awarded := scoreObjective(question, input.SelectedOptionID)
			correct := awarded > 0
			answer.AwardedMarks = &awarded
			answer.IsCorrect = &correct
			total += awarded
		}

		answers = append(answers, answer)
	}

	return answers, total
}

func scoreObjective(question models.Question, selectedOptionID *uint) float64 {
	if selectedOptionID == nil {
		return 0
	}
	correct := question.CorrectOption()
	if correct == nil || correct.ID != *selectedOptionID {
		return 0
	}
	return question.Marks
}
