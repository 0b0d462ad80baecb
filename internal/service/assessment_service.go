package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/aulamax/aulamax-api/internal/apperr"
	"github.com/aulamax/aulamax-api/internal/dto"
	"github.com/aulamax/aulamax-api/internal/models"
	"github.com/aulamax/aulamax-api/internal/repository"
)

// Option labels cap the number of choices per question.
var optionLabels = []string{"A", "B", "C", "D", "E", "F", "G", "H"}

// AssessmentService manages the assessment definition lifecycle: draft
// creation, question authoring, publication and soft deletion.
type AssessmentService interface {
	Create(ctx context.Context, actor Actor, payload dto.AssessmentCreateRequest) (dto.AssessmentResponse, error)
	Get(ctx context.Context, id uint, actor Actor) (dto.AssessmentResponse, error)
	List(ctx context.Context, filter dto.AssessmentFilter, actor Actor) ([]dto.AssessmentResponse, error)
	AddQuestion(ctx context.Context, assessmentID uint, actor Actor, payload dto.QuestionCreateRequest) (dto.QuestionResponse, error)
	Publish(ctx context.Context, id uint, actor Actor) (dto.AssessmentResponse, error)
	Delete(ctx context.Context, id uint, actor Actor) error
}

type assessmentService struct {
	repo      repository.AssessmentRepository
	uploads   repository.UploadRepository
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAssessmentService constructs the assessment lifecycle service.
func NewAssessmentService(repo repository.AssessmentRepository, uploads repository.UploadRepository, validator *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) AssessmentService {
	return &assessmentService{
		repo:      repo,
		uploads:   uploads,
		validator: validator,
		activity:  activity,
		logger:    logger.With().Str("component", "assessment_service").Logger(),
		now:       time.Now,
	}
}

func (s *assessmentService) Create(ctx context.Context, actor Actor, payload dto.AssessmentCreateRequest) (dto.AssessmentResponse, error) {
	if !actor.Role.IsTeacher() && actor.Role != models.RoleAdmin {
		return dto.AssessmentResponse{}, apperr.New(apperr.Forbidden, "only teaching staff may create assessments")
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssessmentResponse{}, apperr.Wrap(apperr.BadRequest, "invalid assessment payload", err)
	}

	kind := models.AssessmentKind(payload.Kind)
	deadline, err := time.Parse(time.RFC3339, payload.Deadline)
	if err != nil {
		return dto.AssessmentResponse{}, apperr.Wrap(apperr.BadRequest, "deadline must be RFC 3339", err)
	}
	now := s.now()
	if !deadline.After(now) {
		return dto.AssessmentResponse{}, apperr.New(apperr.BadRequest, "deadline must be in the future")
	}
	if payload.MaxAttempts != nil && kind != models.KindDigitalQuiz {
		return dto.AssessmentResponse{}, apperr.New(apperr.BadRequest, "attempt limits apply to digital quizzes only")
	}

	if payload.InstructionsFileID != nil {
		file, err := s.uploads.GetByID(ctx, *payload.InstructionsFileID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.AssessmentResponse{}, apperr.New(apperr.BadRequest, "instructions file not found")
			}
			return dto.AssessmentResponse{}, err
		}
		if !file.OwnedBy(actor.ID) {
			return dto.AssessmentResponse{}, apperr.New(apperr.Forbidden, "instructions file belongs to another user")
		}
		if !file.Usable() {
			return dto.AssessmentResponse{}, apperr.New(apperr.BadRequest, "instructions file has not been scanned clean")
		}
	}

	assessment := models.Assessment{
		OfferingID:         payload.OfferingID,
		CreatorID:          actor.ID,
		CreatorRole:        actor.Role,
		Title:              sanitizeText(payload.Title),
		Description:        sanitizeText(payload.Description),
		Kind:               kind,
		Deadline:           deadline,
		TotalMarks:         payload.TotalMarks,
		MaxAttempts:        payload.MaxAttempts,
		InstructionsFileID: payload.InstructionsFileID,
		IsActive:           true,
	}

	if err := s.repo.Create(ctx, &assessment); err != nil {
		s.logger.Error().Err(err).Uint("offering_id", payload.OfferingID).Msg("failed to create assessment")
		return dto.AssessmentResponse{}, err
	}

	s.record(ctx, actor, "assessment.created", assessment.ID, map[string]interface{}{
		"kind":        string(assessment.Kind),
		"offering_id": assessment.OfferingID,
	})

	return dto.NewAssessmentResponse(assessment, now), nil
}

func (s *assessmentService) Get(ctx context.Context, id uint, actor Actor) (dto.AssessmentResponse, error) {
	assessment, err := s.repo.GetWithQuestions(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssessmentResponse{}, apperr.New(apperr.NotFound, "assessment not found")
		}
		return dto.AssessmentResponse{}, err
	}

	// Drafts are invisible to students, same as deleted rows.
	if !assessment.IsPublished && actor.Role == models.RoleStudent {
		return dto.AssessmentResponse{}, apperr.New(apperr.NotFound, "assessment not found")
	}

	return dto.NewAssessmentResponse(assessment, s.now()), nil
}

func (s *assessmentService) List(ctx context.Context, filter dto.AssessmentFilter, actor Actor) ([]dto.AssessmentResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, apperr.Wrap(apperr.BadRequest, "invalid assessment filter", err)
	}

	repoFilter := repository.AssessmentFilter{
		OfferingID:  filter.OfferingID,
		CreatorID:   filter.CreatorID,
		IsPublished: filter.IsPublished,
	}
	if filter.Kind != nil {
		kind := models.AssessmentKind(*filter.Kind)
		repoFilter.Kind = &kind
	}
	if actor.Role == models.RoleStudent {
		published := true
		repoFilter.IsPublished = &published
	}

	assessments, err := s.repo.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	return dto.NewAssessmentResponseSlice(assessments, s.now()), nil
}

func (s *assessmentService) AddQuestion(ctx context.Context, assessmentID uint, actor Actor, payload dto.QuestionCreateRequest) (dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, apperr.Wrap(apperr.BadRequest, "invalid question payload", err)
	}

	assessment, err := s.repo.GetByID(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuestionResponse{}, apperr.New(apperr.NotFound, "assessment not found")
		}
		return dto.QuestionResponse{}, err
	}
	if err := s.authorizeOwner(assessment, actor); err != nil {
		return dto.QuestionResponse{}, err
	}
	if !assessment.IsDigital() {
		return dto.QuestionResponse{}, apperr.New(apperr.BadRequest, "questions belong to digital quizzes only")
	}

	question, err := buildQuestion(payload)
	if err != nil {
		return dto.QuestionResponse{}, err
	}

	if err := s.repo.AddQuestion(ctx, assessmentID, &question); err != nil {
		if errors.Is(err, repository.ErrAssessmentPublished) {
			return dto.QuestionResponse{}, apperr.New(apperr.BadRequest, "published quizzes cannot be modified")
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuestionResponse{}, apperr.New(apperr.NotFound, "assessment not found")
		}
		return dto.QuestionResponse{}, err
	}

	return dto.NewQuestionResponse(question), nil
}

func (s *assessmentService) Publish(ctx context.Context, id uint, actor Actor) (dto.AssessmentResponse, error) {
	assessment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssessmentResponse{}, apperr.New(apperr.NotFound, "assessment not found")
		}
		return dto.AssessmentResponse{}, err
	}
	if err := s.authorizeOwner(assessment, actor); err != nil {
		return dto.AssessmentResponse{}, err
	}

	// Publishing an already published assessment is a no-op.
	if assessment.IsPublished {
		return dto.NewAssessmentResponse(assessment, s.now()), nil
	}

	if assessment.IsDigital() {
		count, err := s.repo.CountQuestions(ctx, id)
		if err != nil {
			return dto.AssessmentResponse{}, err
		}
		if count == 0 {
			return dto.AssessmentResponse{}, apperr.New(apperr.BadRequest, "a quiz needs at least one question before publishing")
		}
	}

	if err := s.repo.Publish(ctx, id); err != nil {
		return dto.AssessmentResponse{}, err
	}
	assessment.IsPublished = true

	s.record(ctx, actor, "assessment.published", assessment.ID, map[string]interface{}{
		"kind": string(assessment.Kind),
	})

	return dto.NewAssessmentResponse(assessment, s.now()), nil
}

func (s *assessmentService) Delete(ctx context.Context, id uint, actor Actor) error {
	assessment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "assessment not found")
		}
		return err
	}
	if err := s.authorizeOwner(assessment, actor); err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.record(ctx, actor, "assessment.deleted", id, map[string]interface{}{
		"kind": string(assessment.Kind),
	})
	return nil
}

func (s *assessmentService) authorizeOwner(assessment models.Assessment, actor Actor) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	if actor.Role.IsTeacher() && assessment.CreatorID == actor.ID {
		return nil
	}
	return apperr.New(apperr.Forbidden, "only the creator may modify this assessment")
}

func (s *assessmentService) record(ctx context.Context, actor Actor, action string, entityID uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}
	id := entityID
	_, _ = s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "assessment",
		EntityID:   &id,
		Metadata:   metadata,
	})
}

func buildQuestion(payload dto.QuestionCreateRequest) (models.Question, error) {
	qType := models.QuestionType(payload.Type)

	question := models.Question{
		Text:  sanitizeText(payload.Text),
		Type:  qType,
		Marks: payload.Marks,
	}

	if !qType.IsObjective() {
		if len(payload.Options) > 0 {
			return models.Question{}, apperr.New(apperr.BadRequest, "paragraph questions take no options")
		}
		return question, nil
	}

	if len(payload.Options) < 2 {
		return models.Question{}, apperr.New(apperr.BadRequest, "objective questions need at least two options")
	}
	if len(payload.Options) > len(optionLabels) {
		return models.Question{}, apperr.Newf(apperr.BadRequest, "objective questions allow at most %d options", len(optionLabels))
	}
	if qType == models.QuestionTrueFalse && len(payload.Options) != 2 {
		return models.Question{}, apperr.New(apperr.BadRequest, "true/false questions take exactly two options")
	}

	correct := 0
	for i, option := range payload.Options {
		if option.IsCorrect {
			correct++
		}
		question.Options = append(question.Options, models.QuestionOption{
			Label:       optionLabels[i],
			Text:        sanitizeText(option.Text),
			IsCorrect:   option.IsCorrect,
			OrderNumber: i + 1,
		})
	}
	if correct != 1 {
		return models.Question{}, apperr.New(apperr.BadRequest, fmt.Sprintf("objective questions need exactly one correct option, got %d", correct))
	}

	return question, nil
}
