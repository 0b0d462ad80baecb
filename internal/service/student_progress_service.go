package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/aulamax/aulamax-api/internal/apperr"
	"github.com/aulamax/aulamax-api/internal/dto"
	"github.com/aulamax/aulamax-api/internal/models"
	"github.com/aulamax/aulamax-api/internal/observability"
	"github.com/aulamax/aulamax-api/internal/repository"
)

// StudentProgressService aggregates a student's standing across every
// published assessment. Results are cached per student; the cache is a pure
// read-through optimization and the rollup never goes stale longer than the
// TTL.
type StudentProgressService interface {
	GetProgress(ctx context.Context, actor Actor) (dto.StudentProgressResponse, error)
}

type studentProgressService struct {
	assessments repository.AssessmentRepository
	submissions repository.SubmissionRepository
	attempts    repository.AttemptRepository
	grades      repository.GradeRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewStudentProgressService builds the progress aggregator.
func NewStudentProgressService(assessments repository.AssessmentRepository, submissions repository.SubmissionRepository, attempts repository.AttemptRepository, grades repository.GradeRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) StudentProgressService {
	return &studentProgressService{
		assessments: assessments,
		submissions: submissions,
		attempts:    attempts,
		grades:      grades,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "student_progress_service").Logger(),
		now:         time.Now,
	}
}

func (s *studentProgressService) GetProgress(ctx context.Context, actor Actor) (dto.StudentProgressResponse, error) {
	if actor.Role != models.RoleStudent {
		return dto.StudentProgressResponse{}, apperr.New(apperr.Forbidden, "progress rollups are for students")
	}

	cacheKey := fmt.Sprintf("progress:student:%d", actor.ID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.StudentProgressResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				observability.ProgressCacheHits().Inc()
				response.CacheHit = true
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read progress cache")
		}
	}

	published := true
	assessments, err := s.assessments.List(ctx, repository.AssessmentFilter{IsPublished: &published})
	if err != nil {
		return dto.StudentProgressResponse{}, err
	}

	studentID := actor.ID
	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{StudentID: &studentID})
	if err != nil {
		return dto.StudentProgressResponse{}, err
	}

	response, err := s.buildResponse(ctx, actor.ID, assessments, submissions)
	if err != nil {
		return dto.StudentProgressResponse{}, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store progress cache")
			}
		}
	}

	return response, nil
}

func (s *studentProgressService) buildResponse(ctx context.Context, studentID uint, assessments []models.Assessment, submissions []models.Submission) (dto.StudentProgressResponse, error) {
	now := s.now()

	submissionByAssessment := map[uint]models.Submission{}
	for _, submission := range submissions {
		submissionByAssessment[submission.AssessmentID] = submission
	}

	summary := dto.ProgressSummary{}
	progress := make([]dto.AssessmentProgress, 0, len(assessments))

	for _, assessment := range assessments {
		summary.TotalAssessments++
		pastDeadline := assessment.IsPastDeadline(now)

		item := dto.AssessmentProgress{
			AssessmentID: assessment.ID,
			Title:        assessment.Title,
			Kind:         string(assessment.Kind),
			Deadline:     assessment.Deadline,
			PastDeadline: pastDeadline,
			MaxAttempts:  assessment.MaxAttempts,
			Status:       "open",
		}

		if assessment.IsDigital() {
			if err := s.fillQuizProgress(ctx, studentID, assessment, pastDeadline, &item); err != nil {
				return dto.StudentProgressResponse{}, err
			}
		} else if err := s.fillSubmissionProgress(ctx, submissionByAssessment, assessment, &item); err != nil {
			return dto.StudentProgressResponse{}, err
		}

		switch item.Status {
		case models.SubmissionStatusGraded:
			summary.Graded++
			summary.Submitted++
		case models.SubmissionStatusSubmitted:
			summary.Submitted++
		default:
			summary.Open++
		}

		progress = append(progress, item)
	}

	return dto.StudentProgressResponse{
		StudentID:   studentID,
		Summary:     summary,
		Assessments: progress,
		GeneratedAt: now,
	}, nil
}

func (s *studentProgressService) fillQuizProgress(ctx context.Context, studentID uint, quiz models.Assessment, pastDeadline bool, item *dto.AssessmentProgress) error {
	attempts, err := s.attempts.ListForStudent(ctx, quiz.ID, studentID)
	if err != nil {
		return err
	}

	item.AttemptsUsed = len(attempts)
	item.CanAttempt = !pastDeadline && (quiz.MaxAttempts == nil || len(attempts) < *quiz.MaxAttempts)

	var best *float64
	var lastSubmitted *time.Time
	for _, attempt := range attempts {
		if !attempt.IsCompleted || attempt.Score == nil {
			continue
		}
		if best == nil || *attempt.Score > *best {
			score := *attempt.Score
			best = &score
		}
		lastSubmitted = attempt.SubmittedAt
	}

	if best != nil {
		item.Status = models.SubmissionStatusGraded
		item.BestScore = best
		item.FinalScore = best
		item.SubmittedAt = lastSubmitted
	}
	return nil
}

func (s *studentProgressService) fillSubmissionProgress(ctx context.Context, byAssessment map[uint]models.Submission, assessment models.Assessment, item *dto.AssessmentProgress) error {
	submission, ok := byAssessment[assessment.ID]
	if !ok {
		item.CanAttempt = !item.PastDeadline
		return nil
	}

	submittedAt := submission.SubmittedAt
	item.SubmittedAt = &submittedAt
	item.Status = submission.Status

	if submission.Status == models.SubmissionStatusGraded {
		grade, err := s.grades.GetBySubmission(ctx, submission.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		score := grade.FinalScore
		item.FinalScore = &score
	}
	return nil
}
