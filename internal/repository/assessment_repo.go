package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/aulamax/aulamax-api/internal/models"
)

// ErrAssessmentPublished indicates a structural mutation on a published assessment.
var ErrAssessmentPublished = errors.New("assessment is published")

// AssessmentFilter narrows assessment queries.
type AssessmentFilter struct {
	OfferingID  *uint
	CreatorID   *uint
	Kind        *models.AssessmentKind
	IsPublished *bool
}

// AssessmentRepository defines data operations for assessment definitions.
// Soft-deleted rows are invisible to every reader.
type AssessmentRepository interface {
	List(ctx context.Context, filter AssessmentFilter) ([]models.Assessment, error)
	GetByID(ctx context.Context, id uint) (models.Assessment, error)
	GetWithQuestions(ctx context.Context, id uint) (models.Assessment, error)
	Create(ctx context.Context, assessment *models.Assessment) error
	Update(ctx context.Context, assessment *models.Assessment) error
	AddQuestion(ctx context.Context, assessmentID uint, question *models.Question) error
	CountQuestions(ctx context.Context, assessmentID uint) (int64, error)
	Publish(ctx context.Context, id uint) error
	SoftDelete(ctx context.Context, id uint) error
}

type assessmentRepository struct {
	db *gorm.DB
}

// NewAssessmentRepository instantiates the repository.
func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Assessment{}).Where("is_active = ?", true)
}

func (r *assessmentRepository) List(ctx context.Context, filter AssessmentFilter) ([]models.Assessment, error) {
	query := r.baseQuery(ctx)

	if filter.OfferingID != nil {
		query = query.Where("offering_id = ?", *filter.OfferingID)
	}
	if filter.CreatorID != nil {
		query = query.Where("creator_id = ?", *filter.CreatorID)
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.IsPublished != nil {
		query = query.Where("is_published = ?", *filter.IsPublished)
	}

	var assessments []models.Assessment
	if err := query.Order("deadline ASC").Find(&assessments).Error; err != nil {
		return nil, err
	}
	return assessments, nil
}

func (r *assessmentRepository) GetByID(ctx context.Context, id uint) (models.Assessment, error) {
	var assessment models.Assessment
	if err := r.baseQuery(ctx).First(&assessment, id).Error; err != nil {
		return models.Assessment{}, err
	}
	return assessment, nil
}

func (r *assessmentRepository) GetWithQuestions(ctx context.Context, id uint) (models.Assessment, error) {
	var assessment models.Assessment
	if err := r.baseQuery(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_number ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_number ASC")
		}).
		First(&assessment, id).Error; err != nil {
		return models.Assessment{}, err
	}
	return assessment, nil
}

func (r *assessmentRepository) Create(ctx context.Context, assessment *models.Assessment) error {
	return r.db.WithContext(ctx).Create(assessment).Error
}

func (r *assessmentRepository) Update(ctx context.Context, assessment *models.Assessment) error {
	return r.db.WithContext(ctx).Save(assessment).Error
}

// AddQuestion assigns the next contiguous order number and inserts the
// question together with its options in one transaction. The published check
// happens inside the same transaction so a concurrent publish cannot slip a
// question into a frozen quiz.
func (r *assessmentRepository) AddQuestion(ctx context.Context, assessmentID uint, question *models.Question) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var assessment models.Assessment
		if err := tx.Where("is_active = ?", true).First(&assessment, assessmentID).Error; err != nil {
			return err
		}
		if assessment.IsPublished {
			return ErrAssessmentPublished
		}

		var count int64
		if err := tx.Model(&models.Question{}).Where("assessment_id = ?", assessmentID).Count(&count).Error; err != nil {
			return err
		}

		question.AssessmentID = assessmentID
		question.OrderNumber = int(count) + 1
		return tx.Create(question).Error
	})
}

func (r *assessmentRepository) CountQuestions(ctx context.Context, assessmentID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Question{}).
		Where("assessment_id = ?", assessmentID).
		Count(&count).Error
	return count, err
}

func (r *assessmentRepository) Publish(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Assessment{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_published", true).Error
}

func (r *assessmentRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Assessment{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false).Error
}
