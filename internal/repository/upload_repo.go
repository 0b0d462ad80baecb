package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/aulamax/aulamax-api/internal/models"
)

// UploadRepository is the file registry consumed by the workflow layer for
// ownership and scan-status checks.
type UploadRepository interface {
	Create(ctx context.Context, file *models.UploadedFile) error
	GetByID(ctx context.Context, id uint) (models.UploadedFile, error)
	ListByUploader(ctx context.Context, uploaderID uint) ([]models.UploadedFile, error)
}

type uploadRepository struct {
	db *gorm.DB
}

// NewUploadRepository instantiates the repository.
func NewUploadRepository(db *gorm.DB) UploadRepository {
	return &uploadRepository{db: db}
}

func (r *uploadRepository) Create(ctx context.Context, file *models.UploadedFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *uploadRepository) GetByID(ctx context.Context, id uint) (models.UploadedFile, error) {
	var file models.UploadedFile
	if err := r.db.WithContext(ctx).First(&file, id).Error; err != nil {
		return models.UploadedFile{}, err
	}
	return file, nil
}

func (r *uploadRepository) ListByUploader(ctx context.Context, uploaderID uint) ([]models.UploadedFile, error) {
	var files []models.UploadedFile
	if err := r.db.WithContext(ctx).
		Where("uploader_id = ?", uploaderID).
		Order("created_at DESC").
		Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}
