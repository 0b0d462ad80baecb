package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/aulamax/aulamax-api/internal/apperr"
	"github.com/aulamax/aulamax-api/internal/dto"
	"github.com/aulamax/aulamax-api/internal/models"
	"github.com/aulamax/aulamax-api/internal/observability"
	"github.com/aulamax/aulamax-api/internal/repository"
)

// SubmissionService handles file deliverables for assignments and take-home
// quizzes.
type SubmissionService interface {
	Submit(ctx context.Context, assessmentID uint, actor Actor, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	Get(ctx context.Context, id uint, actor Actor) (dto.SubmissionResponse, error)
	List(ctx context.Context, filter dto.SubmissionFilter, actor Actor) ([]dto.SubmissionResponse, error)
}

type submissionService struct {
	repo        repository.SubmissionRepository
	assessments repository.AssessmentRepository
	uploads     repository.UploadRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	logger      zerolog.Logger
	acceptLate  bool
	now         func() time.Time
}

// NewSubmissionService constructs the submission workflow service. With
// acceptLate disabled, work arriving after the deadline is rejected outright;
// enabled, it is accepted and flagged late.
func NewSubmissionService(repo repository.SubmissionRepository, assessments repository.AssessmentRepository, uploads repository.UploadRepository, validator *validator.Validate, activity ActivityRecorder, acceptLate bool, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		repo:        repo,
		assessments: assessments,
		uploads:     uploads,
		validator:   validator,
		activity:    activity,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		acceptLate:  acceptLate,
		now:         time.Now,
	}
}

func (s *submissionService) Submit(ctx context.Context, assessmentID uint, actor Actor, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	if actor.Role != models.RoleStudent {
		return dto.SubmissionResponse{}, apperr.New(apperr.Forbidden, "only students may submit work")
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, apperr.Wrap(apperr.BadRequest, "invalid submission payload", err)
	}

	assessment, err := s.assessments.GetByID(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, apperr.New(apperr.NotFound, "assessment not found")
		}
		return dto.SubmissionResponse{}, err
	}
	if !assessment.IsPublished {
		return dto.SubmissionResponse{}, apperr.New(apperr.NotFound, "assessment not found")
	}
	if !assessment.AcceptsFileWork() {
		return dto.SubmissionResponse{}, apperr.New(apperr.BadRequest, "this assessment is answered online, not by file upload")
	}

	now := s.now()
	isLate := assessment.IsPastDeadline(now)
	if isLate && !s.acceptLate {
		return dto.SubmissionResponse{}, apperr.New(apperr.BadRequest, "the deadline has passed")
	}

	file, err := s.uploads.GetByID(ctx, payload.FileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, apperr.New(apperr.BadRequest, "file not found")
		}
		return dto.SubmissionResponse{}, err
	}
	if !file.OwnedBy(actor.ID) {
		return dto.SubmissionResponse{}, apperr.New(apperr.Forbidden, "file belongs to another user")
	}
	if !file.Usable() {
		return dto.SubmissionResponse{}, apperr.New(apperr.BadRequest, "file has not been scanned clean")
	}

	submission := models.Submission{
		AssessmentID: assessmentID,
		StudentID:    actor.ID,
		FileID:       file.ID,
		SubmittedAt:  now,
		IsLate:       isLate,
		Status:       models.SubmissionStatusSubmitted,
	}

	if err := s.repo.Create(ctx, &submission); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.SubmissionResponse{}, apperr.New(apperr.Conflict, "work was already submitted for this assessment")
		}
		s.logger.Error().Err(err).Uint("assessment_id", assessmentID).Uint("student_id", actor.ID).Msg("failed to create submission")
		return dto.SubmissionResponse{}, err
	}

	observability.SubmissionsReceived().WithLabelValues(string(assessment.Kind)).Inc()

	s.record(ctx, actor, "submission.created", submission.ID, map[string]interface{}{
		"assessment_id": assessmentID,
		"is_late":       isLate,
	})

	submission.Assessment = assessment
	submission.File = file
	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) Get(ctx context.Context, id uint, actor Actor) (dto.SubmissionResponse, error) {
	submission, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, apperr.New(apperr.NotFound, "submission not found")
		}
		return dto.SubmissionResponse{}, err
	}

	if actor.Role == models.RoleStudent && submission.StudentID != actor.ID {
		return dto.SubmissionResponse{}, apperr.New(apperr.NotFound, "submission not found")
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) List(ctx context.Context, filter dto.SubmissionFilter, actor Actor) ([]dto.SubmissionResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, apperr.Wrap(apperr.BadRequest, "invalid submission filter", err)
	}

	repoFilter := repository.SubmissionFilter{
		AssessmentID: filter.AssessmentID,
		StudentID:    filter.StudentID,
		Status:       filter.Status,
	}
	// Students only ever see their own work.
	if actor.Role == models.RoleStudent {
		studentID := actor.ID
		repoFilter.StudentID = &studentID
	}

	submissions, err := s.repo.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) record(ctx context.Context, actor Actor, action string, entityID uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}
	id := entityID
	_, _ = s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "submission",
		EntityID:   &id,
		Metadata:   metadata,
	})
}
