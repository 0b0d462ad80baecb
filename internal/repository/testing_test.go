package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aulamax/aulamax-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// Every sqlite connection gets its own :memory: database, so the pool
	// must stay on a single connection for concurrent callers to share state.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.UploadedFile{},
		&models.Assessment{},
		&models.Question{},
		&models.QuestionOption{},
		&models.Submission{},
		&models.Attempt{},
		&models.Answer{},
		&models.Grade{},
		&models.ActivityLog{},
	))
	return db
}

func seedQuiz(t *testing.T, db *gorm.DB, maxAttempts *int) models.Assessment {
	t.Helper()
	quiz := models.Assessment{
		OfferingID:  1,
		CreatorID:   10,
		CreatorRole: models.RoleProfessor,
		Title:       "Databases Midterm",
		Kind:        models.KindDigitalQuiz,
		Deadline:    time.Now().Add(2 * time.Hour),
		TotalMarks:  10,
		MaxAttempts: maxAttempts,
		IsPublished: true,
		IsActive:    true,
	}
	require.NoError(t, db.Create(&quiz).Error)
	return quiz
}

func intPtr(v int) *int { return &v }
