package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/aulamax/aulamax-api/internal/models"
)

// ErrAlreadyGraded indicates the source already carries a terminal grade.
var ErrAlreadyGraded = errors.New("source already graded")

// GradeRepository defines data operations for terminal grades. Create checks
// for an existing grade and inserts inside one transaction; the unique
// indexes on both source columns back the check under concurrency, so a lost
// race surfaces as ErrAlreadyGraded rather than a second grade.
type GradeRepository interface {
	Create(ctx context.Context, grade *models.Grade) error
	GetByID(ctx context.Context, id uint) (models.Grade, error)
	GetBySubmission(ctx context.Context, submissionID uint) (models.Grade, error)
	GetByAttempt(ctx context.Context, attemptID uint) (models.Grade, error)
}

type gradeRepository struct {
	db *gorm.DB
}

// NewGradeRepository instantiates the repository.
func NewGradeRepository(db *gorm.DB) GradeRepository {
	return &gradeRepository{db: db}
}

func (r *gradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing := tx.Model(&models.Grade{})
		switch {
		case grade.SubmissionID != nil:
			existing = existing.Where("submission_id = ?", *grade.SubmissionID)
		case grade.AttemptID != nil:
			existing = existing.Where("attempt_id = ?", *grade.AttemptID)
		default:
			return models.ErrGradeSourceInvalid
		}

		var count int64
		if err := existing.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyGraded
		}

		return tx.Create(grade).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyGraded
	}
	return err
}

func (r *gradeRepository) GetByID(ctx context.Context, id uint) (models.Grade, error) {
	var grade models.Grade
	if err := r.db.WithContext(ctx).First(&grade, id).Error; err != nil {
		return models.Grade{}, err
	}
	return grade, nil
}

func (r *gradeRepository) GetBySubmission(ctx context.Context, submissionID uint) (models.Grade, error) {
	var grade models.Grade
	if err := r.db.WithContext(ctx).Where("submission_id = ?", submissionID).First(&grade).Error; err != nil {
		return models.Grade{}, err
	}
	return grade, nil
}

func (r *gradeRepository) GetByAttempt(ctx context.Context, attemptID uint) (models.Grade, error) {
	var grade models.Grade
	if err := r.db.WithContext(ctx).Where("attempt_id = ?", attemptID).First(&grade).Error; err != nil {
		return models.Grade{}, err
	}
	return grade, nil
}
