package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/aulamax/aulamax-api/internal/apperr"
	"github.com/aulamax/aulamax-api/internal/dto"
	"github.com/aulamax/aulamax-api/internal/models"
	"github.com/aulamax/aulamax-api/internal/repository"
)

// EventPublisher pushes audit events onto the message bus. *nats.Conn
// satisfies it; a nil publisher disables fan-out without disabling the audit
// trail.
type EventPublisher interface {
	Publish(subject string, data []byte) error
}

// ActivityService persists and queries the workflow audit trail.
type ActivityService interface {
	ActivityRecorder
	List(ctx context.Context, filter repository.ActivityLogFilter, actor Actor) ([]dto.ActivityResponse, error)
}

type activityService struct {
	repo      repository.ActivityLogRepository
	publisher EventPublisher
	logger    zerolog.Logger
	now       func() time.Time
}

// NewActivityService constructs the audit trail service.
func NewActivityService(repo repository.ActivityLogRepository, publisher EventPublisher, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:      repo,
		publisher: publisher,
		logger:    logger.With().Str("component", "activity_service").Logger(),
		now:       time.Now,
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) (dto.ActivityResponse, error) {
	action := strings.ToLower(strings.TrimSpace(entry.Action))
	if action == "" {
		return dto.ActivityResponse{}, apperr.New(apperr.BadRequest, "action is required")
	}
	entityType := strings.ToLower(strings.TrimSpace(entry.EntityType))
	if entityType == "" {
		return dto.ActivityResponse{}, apperr.New(apperr.BadRequest, "entity type is required")
	}

	model := models.ActivityLog{
		ActorID:    entry.ActorID,
		ActorRole:  entry.ActorRole,
		Action:     action,
		EntityType: entityType,
		EntityID:   entry.EntityID,
		Metadata:   scrubMetadata(entry.Metadata),
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Error().Err(err).Str("action", action).Msg("failed to persist activity log")
		return dto.ActivityResponse{}, err
	}

	s.publish(model)

	return dto.NewActivityResponse(model), nil
}

func (s *activityService) List(ctx context.Context, filter repository.ActivityLogFilter, actor Actor) ([]dto.ActivityResponse, error) {
	if actor.Role != models.RoleAdmin {
		return nil, apperr.New(apperr.Forbidden, "only administrators may read the audit trail")
	}

	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewActivityResponse(entry))
	}
	return responses, nil
}

// publish fans the event out on a best-effort basis. The audit row is the
// source of truth; a bus outage must not fail the workflow.
func (s *activityService) publish(model models.ActivityLog) {
	if s.publisher == nil {
		return
	}

	payload, err := json.Marshal(dto.NewActivityResponse(model))
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode activity event")
		return
	}

	subject := "lms.activity." + strings.ReplaceAll(model.Action, ".", "_")
	if err := s.publisher.Publish(subject, payload); err != nil {
		s.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish activity event")
	}
}

func scrubMetadata(metadata map[string]interface{}) datatypes.JSONMap {
	if metadata == nil {
		return datatypes.JSONMap{}
	}

	scrubbed := datatypes.JSONMap{}
	for key, value := range metadata {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "email") || strings.Contains(lower, "password") || strings.Contains(lower, "token") {
			scrubbed[key] = "***"
			continue
		}
		scrubbed[key] = value
	}
	return scrubbed
}
