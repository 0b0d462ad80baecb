package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aulamax/aulamax-api/internal/apperr"
	"github.com/aulamax/aulamax-api/internal/dto"
	"github.com/aulamax/aulamax-api/internal/models"
)

type gradingFixture struct {
	svc         GradingService
	assessments *memAssessmentRepo
	submissions *memSubmissionRepo
	attempts    *memAttemptRepo
	grades      *memGradeRepo
	uploads     *memUploadRepo
}

func newGradingFixture(t *testing.T) gradingFixture {
	t.Helper()
	assessments := newMemAssessmentRepo()
	submissions := newMemSubmissionRepo()
	attempts := newMemAttemptRepo()
	grades := newMemGradeRepo()
	uploads := newMemUploadRepo()
	svc := NewGradingService(grades, submissions, attempts, assessments, uploads, newTestValidator(), nil, testLogger())
	return gradingFixture{svc: svc, assessments: assessments, submissions: submissions, attempts: attempts, grades: grades, uploads: uploads}
}

func (f gradingFixture) seedSubmission(t *testing.T, totalMarks float64) models.Submission {
	t.Helper()
	assessment := models.Assessment{
		OfferingID: 1, CreatorID: 7, CreatorRole: models.RoleProfessor,
		Title: "Essay", Kind: models.KindFileAssignment,
		Deadline: time.Now().Add(time.Hour), TotalMarks: totalMarks,
		IsPublished: true, IsActive: true,
	}
	require.NoError(t, f.assessments.Create(context.Background(), &assessment))

	submission := models.Submission{
		AssessmentID: assessment.ID,
		StudentID:    student().ID,
		FileID:       1,
		SubmittedAt:  time.Now(),
		Status:       models.SubmissionStatusSubmitted,
	}
	require.NoError(t, f.submissions.Create(context.Background(), &submission))
	return submission
}

func (f gradingFixture) seedCompletedAttempt(t *testing.T, totalMarks float64) models.Attempt {
	t.Helper()
	quiz := models.Assessment{
		OfferingID: 1, CreatorID: 7, CreatorRole: models.RoleProfessor,
		Title: "Quiz", Kind: models.KindDigitalQuiz,
		Deadline: time.Now().Add(time.Hour), TotalMarks: totalMarks,
		IsPublished: true, IsActive: true,
	}
	require.NoError(t, f.assessments.Create(context.Background(), &quiz))

	attempt, err := f.attempts.Start(context.Background(), quiz.ID, student().ID, nil, time.Now())
	require.NoError(t, err)
	completed, err := f.attempts.Submit(context.Background(), attempt.ID, nil, 3, time.Now())
	require.NoError(t, err)
	return completed
}

func TestGradeSubmissionFlipsStatus(t *testing.T) {
	f := newGradingFixture(t)
	submission := f.seedSubmission(t, 100)

	grade, err := f.svc.Grade(context.Background(), professor(), dto.GradeCreateRequest{
		SubmissionID: &submission.ID,
		FinalScore:   88,
		FeedbackText: "Strong argumentation.",
	})

	require.NoError(t, err)
	require.NotNil(t, grade.SubmissionID)
	require.InDelta(t, 88.0, grade.FinalScore, 1e-9)

	updated, err := f.submissions.GetByID(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusGraded, updated.Status)
}

func TestGradeTwiceConflicts(t *testing.T) {
	f := newGradingFixture(t)
	submission := f.seedSubmission(t, 100)

	payload := dto.GradeCreateRequest{SubmissionID: &submission.ID, FinalScore: 70}

	_, err := f.svc.Grade(context.Background(), professor(), payload)
	require.NoError(t, err)

	_, err = f.svc.Grade(context.Background(), professor(), payload)
	require.Error(t, err)
	require.Equal(t, apperr.Conflict, apperr.KindOf(err))

	// The first grade is untouched.
	grade, err := f.svc.GetForSubmission(context.Background(), submission.ID, professor())
	require.NoError(t, err)
	require.InDelta(t, 70.0, grade.FinalScore, 1e-9)
}

func TestGradeRequiresExactlyOneSource(t *testing.T) {
	f := newGradingFixture(t)
	submission := f.seedSubmission(t, 100)
	attempt := f.seedCompletedAttempt(t, 10)

	_, err := f.svc.Grade(context.Background(), professor(), dto.GradeCreateRequest{FinalScore: 10})
	require.Equal(t, apperr.BadRequest, apperr.KindOf(err))

	_, err = f.svc.Grade(context.Background(), professor(), dto.GradeCreateRequest{
		SubmissionID: &submission.ID,
		AttemptID:    &attempt.ID,
		FinalScore:   10,
	})
	require.Equal(t, apperr.BadRequest, apperr.KindOf(err))
}

func TestGradeRejectsScoreAboveMaximum(t *testing.T) {
	f := newGradingFixture(t)
	submission := f.seedSubmission(t, 50)

	_, err := f.svc.Grade(context.Background(), professor(), dto.GradeCreateRequest{
		SubmissionID: &submission.ID,
		FinalScore:   51,
	})

	require.Error(t, err)
	require.Equal(t, apperr.BadRequest, apperr.KindOf(err))
}

func TestGradeRequiresTeachingRole(t *testing.T) {
	f := newGradingFixture(t)
	submission := f.seedSubmission(t, 100)

	_, err := f.svc.Grade(context.Background(), student(), dto.GradeCreateRequest{
		SubmissionID: &submission.ID,
		FinalScore:   10,
	})

	require.Error(t, err)
	require.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

func (f gradingFixture) seedFile(t *testing.T, ownerID uint, scanStatus string) models.UploadedFile {
	t.Helper()
	file := models.UploadedFile{
		UploaderID:   ownerID,
		UploaderRole: models.RoleProfessor,
		FileName:     "feedback.pdf",
		OriginalName: "feedback.pdf",
		Size:         1024,
		MimeType:     "application/pdf",
		StoragePath:  "feedback123.pdf",
		URL:          "https://files.example.com/feedback123.pdf",
		ScanStatus:   scanStatus,
	}
	require.NoError(t, f.uploads.Create(context.Background(), &file))
	return file
}

func TestGradeAcceptsOwnFeedbackFile(t *testing.T) {
	f := newGradingFixture(t)
	submission := f.seedSubmission(t, 100)
	file := f.seedFile(t, professor().ID, models.ScanStatusClean)

	grade, err := f.svc.Grade(context.Background(), professor(), dto.GradeCreateRequest{
		SubmissionID:   &submission.ID,
		FinalScore:     80,
		FeedbackFileID: &file.ID,
	})

	require.NoError(t, err)
	require.NotNil(t, grade.FeedbackFileID)
	require.Equal(t, file.ID, *grade.FeedbackFileID)
}

func TestGradeRejectsForeignFeedbackFile(t *testing.T) {
	f := newGradingFixture(t)
	submission := f.seedSubmission(t, 100)
	file := f.seedFile(t, 999, models.ScanStatusClean)

	_, err := f.svc.Grade(context.Background(), professor(), dto.GradeCreateRequest{
		SubmissionID:   &submission.ID,
		FinalScore:     80,
		FeedbackFileID: &file.ID,
	})

	require.Error(t, err)
	require.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

func TestGradeRejectsUnscannedFeedbackFile(t *testing.T) {
	f := newGradingFixture(t)
	submission := f.seedSubmission(t, 100)
	file := f.seedFile(t, professor().ID, models.ScanStatusPending)

	_, err := f.svc.Grade(context.Background(), professor(), dto.GradeCreateRequest{
		SubmissionID:   &submission.ID,
		FinalScore:     80,
		FeedbackFileID: &file.ID,
	})

	require.Error(t, err)
	require.Equal(t, apperr.BadRequest, apperr.KindOf(err))
}

func TestGradeInProgressAttemptRejected(t *testing.T) {
	f := newGradingFixture(t)
	quiz := models.Assessment{
		OfferingID: 1, CreatorID: 7, CreatorRole: models.RoleProfessor,
		Title: "Quiz", Kind: models.KindDigitalQuiz,
		Deadline: time.Now().Add(time.Hour), TotalMarks: 10,
		IsPublished: true, IsActive: true,
	}
	require.NoError(t, f.assessments.Create(context.Background(), &quiz))
	attempt, err := f.attempts.Start(context.Background(), quiz.ID, student().ID, nil, time.Now())
	require.NoError(t, err)

	_, err = f.svc.Grade(context.Background(), professor(), dto.GradeCreateRequest{
		AttemptID:  &attempt.ID,
		FinalScore: 5,
	})

	require.Error(t, err)
	require.Equal(t, apperr.BadRequest, apperr.KindOf(err))
}

func TestGradeCompletedAttempt(t *testing.T) {
	f := newGradingFixture(t)
	attempt := f.seedCompletedAttempt(t, 10)

	grade, err := f.svc.Grade(context.Background(), professor(), dto.GradeCreateRequest{
		AttemptID:    &attempt.ID,
		FinalScore:   9,
		FeedbackText: "Paragraph answers reviewed.",
	})

	require.NoError(t, err)
	require.NotNil(t, grade.AttemptID)
	require.Equal(t, attempt.ID, *grade.AttemptID)
}

func TestStudentSeesOwnGradeOnly(t *testing.T) {
	f := newGradingFixture(t)
	submission := f.seedSubmission(t, 100)

	_, err := f.svc.Grade(context.Background(), professor(), dto.GradeCreateRequest{
		SubmissionID: &submission.ID,
		FinalScore:   75,
	})
	require.NoError(t, err)

	mine, err := f.svc.GetForSubmission(context.Background(), submission.ID, student())
	require.NoError(t, err)
	require.InDelta(t, 75.0, mine.FinalScore, 1e-9)

	other := Actor{ID: 999, Role: models.RoleStudent}
	_, err = f.svc.GetForSubmission(context.Background(), submission.ID, other)
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))
}
