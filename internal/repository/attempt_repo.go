package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/aulamax/aulamax-api/internal/models"
)

// ErrAttemptLimitReached indicates the student has used all allowed attempts.
var ErrAttemptLimitReached = errors.New("attempt limit reached")

// ErrAttemptCompleted indicates the attempt was already submitted.
var ErrAttemptCompleted = errors.New("attempt already completed")

// AttemptRepository defines data operations for quiz attempts and answers.
type AttemptRepository interface {
	// Start allocates the next attempt number for the (quiz, student) pair
	// and inserts the row, all inside one transaction. The count check and
	// the insert share that transaction, so concurrent starts cannot exceed
	// maxAttempts or produce duplicate numbers.
	Start(ctx context.Context, quizID, studentID uint, maxAttempts *int, startedAt time.Time) (models.Attempt, error)
	// Submit flips the attempt to completed and persists its answers and
	// auto-score atomically. A second submit fails with ErrAttemptCompleted
	// and leaves the first result untouched.
	Submit(ctx context.Context, attemptID uint, answers []models.Answer, score float64, submittedAt time.Time) (models.Attempt, error)
	GetByID(ctx context.Context, id uint) (models.Attempt, error)
	ListForStudent(ctx context.Context, quizID, studentID uint) ([]models.Attempt, error)
}

type attemptRepository struct {
	db *gorm.DB
}

// NewAttemptRepository instantiates the repository.
func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Start(ctx context.Context, quizID, studentID uint, maxAttempts *int, startedAt time.Time) (models.Attempt, error) {
	var attempt models.Attempt

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var used int64
		if err := tx.Model(&models.Attempt{}).
			Where("quiz_id = ? AND student_id = ?", quizID, studentID).
			Count(&used).Error; err != nil {
			return err
		}
		if maxAttempts != nil && used >= int64(*maxAttempts) {
			return ErrAttemptLimitReached
		}

		var lastNumber int
		row := tx.Model(&models.Attempt{}).
			Where("quiz_id = ? AND student_id = ?", quizID, studentID).
			Select("COALESCE(MAX(attempt_number), 0)").
			Row()
		if err := row.Scan(&lastNumber); err != nil {
			return err
		}

		attempt = models.Attempt{
			QuizID:        quizID,
			StudentID:     studentID,
			AttemptNumber: lastNumber + 1,
			StartedAt:     startedAt,
		}
		return tx.Create(&attempt).Error
	})
	if err != nil {
		return models.Attempt{}, err
	}
	return attempt, nil
}

func (r *attemptRepository) Submit(ctx context.Context, attemptID uint, answers []models.Answer, score float64, submittedAt time.Time) (models.Attempt, error) {
	var attempt models.Attempt

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&attempt, attemptID).Error; err != nil {
			return err
		}
		if attempt.IsCompleted {
			return ErrAttemptCompleted
		}

		for i := range answers {
			answers[i].AttemptID = attempt.ID
		}
		if len(answers) > 0 {
			if err := tx.Create(&answers).Error; err != nil {
				return err
			}
		}

		attempt.SubmittedAt = &submittedAt
		attempt.Score = &score
		attempt.IsCompleted = true
		return tx.Save(&attempt).Error
	})
	if err != nil {
		return models.Attempt{}, err
	}

	attempt.Answers = answers
	return attempt, nil
}

func (r *attemptRepository) GetByID(ctx context.Context, id uint) (models.Attempt, error) {
	var attempt models.Attempt
	if err := r.db.WithContext(ctx).
		Preload("Answers").
		First(&attempt, id).Error; err != nil {
		return models.Attempt{}, err
	}
	return attempt, nil
}

func (r *attemptRepository) ListForStudent(ctx context.Context, quizID, studentID uint) ([]models.Attempt, error) {
	var attempts []models.Attempt
	if err := r.db.WithContext(ctx).
		Where("quiz_id = ? AND student_id = ?", quizID, studentID).
		Order("attempt_number ASC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}
