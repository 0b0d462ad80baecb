package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aulamax/aulamax-api/internal/models"
)

func draftQuiz(t *testing.T, db *gorm.DB) models.Assessment {
	t.Helper()
	quiz := models.Assessment{
		OfferingID: 1, CreatorID: 10, CreatorRole: models.RoleProfessor,
		Title: "Weekly Quiz", Kind: models.KindDigitalQuiz,
		Deadline: time.Now().Add(24 * time.Hour), TotalMarks: 10,
		IsActive: true,
	}
	require.NoError(t, db.Create(&quiz).Error)
	return quiz
}

func TestAddQuestionAssignsContiguousOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssessmentRepository(db)
	quiz := draftQuiz(t, db)

	for want := 1; want <= 3; want++ {
		question := models.Question{
			Text:  "pick one",
			Type:  models.QuestionMCQ,
			Marks: 2,
			Options: []models.QuestionOption{
				{Label: "A", Text: "yes", IsCorrect: true, OrderNumber: 1},
				{Label: "B", Text: "no", OrderNumber: 2},
			},
		}
		require.NoError(t, repo.AddQuestion(context.Background(), quiz.ID, &question))
		require.Equal(t, want, question.OrderNumber)
	}

	loaded, err := repo.GetWithQuestions(context.Background(), quiz.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Questions, 3)
	require.Len(t, loaded.Questions[0].Options, 2)
}

func TestAddQuestionRejectedOncePublished(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssessmentRepository(db)
	quiz := draftQuiz(t, db)

	require.NoError(t, repo.AddQuestion(context.Background(), quiz.ID, &models.Question{
		Text: "q1", Type: models.QuestionParagraph, Marks: 5,
	}))
	require.NoError(t, repo.Publish(context.Background(), quiz.ID))

	err := repo.AddQuestion(context.Background(), quiz.ID, &models.Question{
		Text: "q2", Type: models.QuestionParagraph, Marks: 5,
	})
	require.ErrorIs(t, err, ErrAssessmentPublished)
}

func TestSoftDeleteHidesAssessment(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssessmentRepository(db)
	quiz := draftQuiz(t, db)

	require.NoError(t, repo.SoftDelete(context.Background(), quiz.ID))

	_, err := repo.GetByID(context.Background(), quiz.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	results, err := repo.List(context.Background(), AssessmentFilter{})
	require.NoError(t, err)
	require.Empty(t, results)

	// Row still exists underneath; deletion is soft.
	var raw models.Assessment
	require.NoError(t, db.First(&raw, quiz.ID).Error)
	require.False(t, raw.IsActive)
}

func TestListFiltersByKindAndPublished(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssessmentRepository(db)

	published := seedQuiz(t, db, nil)
	_ = draftQuiz(t, db)

	kind := models.KindDigitalQuiz
	yes := true
	results, err := repo.List(context.Background(), AssessmentFilter{Kind: &kind, IsPublished: &yes})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, published.ID, results[0].ID)
}
