package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/aulamax/aulamax-api/internal/apperr"
	"github.com/aulamax/aulamax-api/internal/dto"
	"github.com/aulamax/aulamax-api/internal/models"
	"github.com/aulamax/aulamax-api/internal/observability"
	"github.com/aulamax/aulamax-api/internal/repository"
)

// GradingService attaches terminal grades to submissions and completed
// attempts. A grade is immutable once recorded.
type GradingService interface {
	Grade(ctx context.Context, actor Actor, payload dto.GradeCreateRequest) (dto.GradeResponse, error)
	GetForSubmission(ctx context.Context, submissionID uint, actor Actor) (dto.GradeResponse, error)
	GetForAttempt(ctx context.Context, attemptID uint, actor Actor) (dto.GradeResponse, error)
}

type gradingService struct {
	grades      repository.GradeRepository
	submissions repository.SubmissionRepository
	attempts    repository.AttemptRepository
	assessments repository.AssessmentRepository
	uploads     repository.UploadRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewGradingService constructs the grading workflow service.
func NewGradingService(grades repository.GradeRepository, submissions repository.SubmissionRepository, attempts repository.AttemptRepository, assessments repository.AssessmentRepository, uploads repository.UploadRepository, validator *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) GradingService {
	return &gradingService{
		grades:      grades,
		submissions: submissions,
		attempts:    attempts,
		assessments: assessments,
		uploads:     uploads,
		validator:   validator,
		activity:    activity,
		logger:      logger.With().Str("component", "grading_service").Logger(),
		tracer:      otel.Tracer("github.com/aulamax/aulamax-api/internal/service/grading"),
		now:         time.Now,
	}
}

func (s *gradingService) Grade(ctx context.Context, actor Actor, payload dto.GradeCreateRequest) (dto.GradeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grading.record")
	span.SetAttributes(attribute.Int64("grading.actor_id", int64(actor.ID)))
	defer span.End()

	if !actor.Role.IsTeacher() && actor.Role != models.RoleAdmin {
		return dto.GradeResponse{}, apperr.New(apperr.Forbidden, "only teaching staff may grade work")
	}
	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.GradeResponse{}, apperr.Wrap(apperr.BadRequest, "invalid grade payload", err)
	}
	if (payload.SubmissionID == nil) == (payload.AttemptID == nil) {
		return dto.GradeResponse{}, apperr.New(apperr.BadRequest, "grade exactly one submission or one attempt")
	}

	var maxScore float64
	var studentID uint
	if payload.SubmissionID != nil {
		submission, err := s.submissions.GetByID(ctx, *payload.SubmissionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.GradeResponse{}, apperr.New(apperr.NotFound, "submission not found")
			}
			span.RecordError(err)
			return dto.GradeResponse{}, err
		}
		assessment, err := s.assessments.GetByID(ctx, submission.AssessmentID)
		if err != nil {
			span.RecordError(err)
			return dto.GradeResponse{}, err
		}
		maxScore = assessment.TotalMarks
		studentID = submission.StudentID
		span.SetAttributes(attribute.Int64("grading.submission_id", int64(submission.ID)))
	} else {
		attempt, err := s.attempts.GetByID(ctx, *payload.AttemptID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.GradeResponse{}, apperr.New(apperr.NotFound, "attempt not found")
			}
			span.RecordError(err)
			return dto.GradeResponse{}, err
		}
		if !attempt.IsCompleted {
			return dto.GradeResponse{}, apperr.New(apperr.BadRequest, "attempt is still in progress")
		}
		quiz, err := s.assessments.GetByID(ctx, attempt.QuizID)
		if err != nil {
			span.RecordError(err)
			return dto.GradeResponse{}, err
		}
		maxScore = quiz.TotalMarks
		studentID = attempt.StudentID
		span.SetAttributes(attribute.Int64("grading.attempt_id", int64(*payload.AttemptID)))
	}

	if payload.FinalScore > maxScore+1e-9 {
		span.SetStatus(codes.Error, "score_exceeds_max")
		return dto.GradeResponse{}, apperr.Newf(apperr.BadRequest, "score %.2f exceeds the assessment maximum %.2f", payload.FinalScore, maxScore)
	}

	if payload.FeedbackFileID != nil {
		file, err := s.uploads.GetByID(ctx, *payload.FeedbackFileID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.GradeResponse{}, apperr.New(apperr.BadRequest, "feedback file not found")
			}
			return dto.GradeResponse{}, err
		}
		if !file.OwnedBy(actor.ID) {
			return dto.GradeResponse{}, apperr.New(apperr.Forbidden, "feedback file belongs to another user")
		}
		if !file.Usable() {
			return dto.GradeResponse{}, apperr.New(apperr.BadRequest, "feedback file has not been scanned clean")
		}
	}

	grade := models.Grade{
		SubmissionID:   payload.SubmissionID,
		AttemptID:      payload.AttemptID,
		GraderID:       actor.ID,
		GraderRole:     actor.Role,
		FinalScore:     payload.FinalScore,
		FeedbackText:   sanitizeText(payload.FeedbackText),
		FeedbackFileID: payload.FeedbackFileID,
		GradedAt:       s.now(),
	}

	if err := s.grades.Create(ctx, &grade); err != nil {
		if errors.Is(err, repository.ErrAlreadyGraded) {
			span.SetStatus(codes.Error, "already_graded")
			return dto.GradeResponse{}, apperr.New(apperr.Conflict, "this work was already graded")
		}
		span.RecordError(err)
		s.logger.Error().Err(err).Msg("failed to record grade")
		return dto.GradeResponse{}, err
	}

	if payload.SubmissionID != nil {
		if err := s.markSubmissionGraded(ctx, *payload.SubmissionID); err != nil {
			s.logger.Warn().Err(err).Uint("submission_id", *payload.SubmissionID).Msg("failed to flip submission status")
		}
	}

	observability.GradesRecorded().WithLabelValues(gradeSourceLabel(payload)).Inc()
	span.SetAttributes(attribute.Float64("grading.score", payload.FinalScore))

	s.record(ctx, actor, grade.ID, studentID, payload.FinalScore)

	return dto.NewGradeResponse(grade), nil
}

func (s *gradingService) GetForSubmission(ctx context.Context, submissionID uint, actor Actor) (dto.GradeResponse, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GradeResponse{}, apperr.New(apperr.NotFound, "submission not found")
		}
		return dto.GradeResponse{}, err
	}
	if actor.Role == models.RoleStudent && submission.StudentID != actor.ID {
		return dto.GradeResponse{}, apperr.New(apperr.NotFound, "submission not found")
	}

	grade, err := s.grades.GetBySubmission(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GradeResponse{}, apperr.New(apperr.NotFound, "grade not found")
		}
		return dto.GradeResponse{}, err
	}
	return dto.NewGradeResponse(grade), nil
}

func (s *gradingService) GetForAttempt(ctx context.Context, attemptID uint, actor Actor) (dto.GradeResponse, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GradeResponse{}, apperr.New(apperr.NotFound, "attempt not found")
		}
		return dto.GradeResponse{}, err
	}
	if actor.Role == models.RoleStudent && attempt.StudentID != actor.ID {
		return dto.GradeResponse{}, apperr.New(apperr.NotFound, "attempt not found")
	}

	grade, err := s.grades.GetByAttempt(ctx, attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GradeResponse{}, apperr.New(apperr.NotFound, "grade not found")
		}
		return dto.GradeResponse{}, err
	}
	return dto.NewGradeResponse(grade), nil
}

func (s *gradingService) markSubmissionGraded(ctx context.Context, submissionID uint) error {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return err
	}
	submission.Status = models.SubmissionStatusGraded
	return s.submissions.Update(ctx, &submission)
}

func (s *gradingService) record(ctx context.Context, actor Actor, gradeID, studentID uint, score float64) {
	if s.activity == nil {
		return
	}
	id := gradeID
	_, _ = s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     "grade.recorded",
		EntityType: "grade",
		EntityID:   &id,
		Metadata: map[string]interface{}{
			"student_id": studentID,
			"score":      score,
		},
	})
}

func gradeSourceLabel(payload dto.GradeCreateRequest) string {
	if payload.SubmissionID != nil {
		return "submission"
	}
	return "attempt"
}
