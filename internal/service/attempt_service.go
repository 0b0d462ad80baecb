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

// AttemptService runs the digital quiz attempt workflow: starting numbered
// attempts and submitting answer sets for auto-scoring.
type AttemptService interface {
	Start(ctx context.Context, quizID uint, actor Actor) (dto.AttemptResponse, error)
	Submit(ctx context.Context, attemptID uint, actor Actor, payload dto.AttemptSubmitRequest) (dto.AttemptResponse, error)
	Get(ctx context.Context, id uint, actor Actor) (dto.AttemptResponse, error)
	ListForQuiz(ctx context.Context, quizID uint, actor Actor) ([]dto.AttemptResponse, error)
}

type attemptService struct {
	repo        repository.AttemptRepository
	assessments repository.AssessmentRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewAttemptService constructs the attempt workflow service.
func NewAttemptService(repo repository.AttemptRepository, assessments repository.AssessmentRepository, validator *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) AttemptService {
	return &attemptService{
		repo:        repo,
		assessments: assessments,
		validator:   validator,
		activity:    activity,
		logger:      logger.With().Str("component", "attempt_service").Logger(),
		tracer:      otel.Tracer("github.com/aulamax/aulamax-api/internal/service/attempt"),
		now:         time.Now,
	}
}

func (s *attemptService) Start(ctx context.Context, quizID uint, actor Actor) (dto.AttemptResponse, error) {
	ctx, span := s.tracer.Start(ctx, "attempt.start")
	span.SetAttributes(
		attribute.Int64("attempt.quiz_id", int64(quizID)),
		attribute.Int64("attempt.student_id", int64(actor.ID)),
	)
	defer span.End()

	if actor.Role != models.RoleStudent {
		return dto.AttemptResponse{}, apperr.New(apperr.Forbidden, "only students may attempt quizzes")
	}

	quiz, err := s.assessments.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AttemptResponse{}, apperr.New(apperr.NotFound, "quiz not found")
		}
		span.RecordError(err)
		return dto.AttemptResponse{}, err
	}
	if !quiz.IsPublished {
		return dto.AttemptResponse{}, apperr.New(apperr.NotFound, "quiz not found")
	}
	if !quiz.IsDigital() {
		return dto.AttemptResponse{}, apperr.New(apperr.BadRequest, "this assessment is answered by file upload, not online")
	}

	now := s.now()
	if quiz.IsPastDeadline(now) {
		return dto.AttemptResponse{}, apperr.New(apperr.BadRequest, "the deadline has passed")
	}

	attempt, err := s.repo.Start(ctx, quizID, actor.ID, quiz.MaxAttempts, now)
	if err != nil {
		if errors.Is(err, repository.ErrAttemptLimitReached) {
			span.SetStatus(codes.Error, "attempt_limit_reached")
			return dto.AttemptResponse{}, apperr.New(apperr.Conflict, "no attempts remaining for this quiz")
		}
		span.RecordError(err)
		s.logger.Error().Err(err).Uint("quiz_id", quizID).Uint("student_id", actor.ID).Msg("failed to start attempt")
		return dto.AttemptResponse{}, err
	}

	observability.AttemptsStarted().Inc()
	span.SetAttributes(attribute.Int("attempt.number", attempt.AttemptNumber))

	s.record(ctx, actor, "attempt.started", attempt.ID, map[string]interface{}{
		"quiz_id":        quizID,
		"attempt_number": attempt.AttemptNumber,
	})

	return dto.NewAttemptResponse(attempt), nil
}

func (s *attemptService) Submit(ctx context.Context, attemptID uint, actor Actor, payload dto.AttemptSubmitRequest) (dto.AttemptResponse, error) {
	ctx, span := s.tracer.Start(ctx, "attempt.submit")
	span.SetAttributes(attribute.Int64("attempt.id", int64(attemptID)))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.AttemptResponse{}, apperr.Wrap(apperr.BadRequest, "invalid answer payload", err)
	}

	attempt, err := s.repo.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AttemptResponse{}, apperr.New(apperr.NotFound, "attempt not found")
		}
		span.RecordError(err)
		return dto.AttemptResponse{}, err
	}
	if attempt.StudentID != actor.ID {
		return dto.AttemptResponse{}, apperr.New(apperr.Forbidden, "this attempt belongs to another student")
	}
	if attempt.IsCompleted {
		return dto.AttemptResponse{}, apperr.New(apperr.Conflict, "attempt was already submitted")
	}

	quiz, err := s.assessments.GetWithQuestions(ctx, attempt.QuizID)
	if err != nil {
		span.RecordError(err)
		return dto.AttemptResponse{}, err
	}

	if err := validateAnswerSet(quiz.Questions, payload.Answers); err != nil {
		return dto.AttemptResponse{}, err
	}

	now := s.now()
	answers, score := ScoreAnswers(quiz.Questions, payload.Answers, now)

	submitted, err := s.repo.Submit(ctx, attemptID, answers, score, now)
	if err != nil {
		if errors.Is(err, repository.ErrAttemptCompleted) {
			return dto.AttemptResponse{}, apperr.New(apperr.Conflict, "attempt was already submitted")
		}
		span.RecordError(err)
		s.logger.Error().Err(err).Uint("attempt_id", attemptID).Msg("failed to submit attempt")
		return dto.AttemptResponse{}, err
	}

	observability.AttemptsSubmitted().Inc()
	span.SetAttributes(attribute.Float64("attempt.score", score))

	s.record(ctx, actor, "attempt.submitted", submitted.ID, map[string]interface{}{
		"quiz_id": attempt.QuizID,
		"score":   score,
	})

	return dto.NewAttemptResponse(submitted), nil
}

func (s *attemptService) Get(ctx context.Context, id uint, actor Actor) (dto.AttemptResponse, error) {
	attempt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AttemptResponse{}, apperr.New(apperr.NotFound, "attempt not found")
		}
		return dto.AttemptResponse{}, err
	}
	if actor.Role == models.RoleStudent && attempt.StudentID != actor.ID {
		return dto.AttemptResponse{}, apperr.New(apperr.NotFound, "attempt not found")
	}
	return dto.NewAttemptResponse(attempt), nil
}

func (s *attemptService) ListForQuiz(ctx context.Context, quizID uint, actor Actor) ([]dto.AttemptResponse, error) {
	attempts, err := s.repo.ListForStudent(ctx, quizID, actor.ID)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.AttemptResponse, 0, len(attempts))
	for _, attempt := range attempts {
		responses = append(responses, dto.NewAttemptResponse(attempt))
	}
	return responses, nil
}

func (s *attemptService) record(ctx context.Context, actor Actor, action string, entityID uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}
	id := entityID
	_, _ = s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "attempt",
		EntityID:   &id,
		Metadata:   metadata,
	})
}

// validateAnswerSet rejects payloads referencing questions outside the quiz
// or answering the same question twice.
func validateAnswerSet(questions []models.Question, inputs []dto.AnswerInput) error {
	known := make(map[uint]struct{}, len(questions))
	for _, question := range questions {
		known[question.ID] = struct{}{}
	}

	seen := make(map[uint]struct{}, len(inputs))
	for _, input := range inputs {
		if _, ok := known[input.QuestionID]; !ok {
			return apperr.Newf(apperr.BadRequest, "question %d does not belong to this quiz", input.QuestionID)
		}
		if _, dup := seen[input.QuestionID]; dup {
			return apperr.Newf(apperr.BadRequest, "question %d was answered more than once", input.QuestionID)
		}
		seen[input.QuestionID] = struct{}{}
	}
	return nil
}
