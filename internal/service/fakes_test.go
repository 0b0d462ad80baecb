package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/aulamax/aulamax-api/internal/models"
	"github.com/aulamax/aulamax-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func newTestValidator() *validator.Validate {
	return validator.New()
}

type memAssessmentRepo struct {
	mu          sync.Mutex
	assessments map[uint]models.Assessment
	nextID      uint
	nextQID     uint
}

func newMemAssessmentRepo() *memAssessmentRepo {
	return &memAssessmentRepo{
		assessments: make(map[uint]models.Assessment),
		nextID:      1,
		nextQID:     1,
	}
}

func (m *memAssessmentRepo) List(ctx context.Context, filter repository.AssessmentFilter) ([]models.Assessment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	results := make([]models.Assessment, 0, len(m.assessments))
	for _, assessment := range m.assessments {
		if !assessment.IsActive {
			continue
		}
		if filter.OfferingID != nil && assessment.OfferingID != *filter.OfferingID {
			continue
		}
		if filter.CreatorID != nil && assessment.CreatorID != *filter.CreatorID {
			continue
		}
		if filter.Kind != nil && assessment.Kind != *filter.Kind {
			continue
		}
		if filter.IsPublished != nil && assessment.IsPublished != *filter.IsPublished {
			continue
		}
		results = append(results, assessment)
	}
	return results, nil
}

func (m *memAssessmentRepo) GetByID(ctx context.Context, id uint) (models.Assessment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	assessment, ok := m.assessments[id]
	if !ok || !assessment.IsActive {
		return models.Assessment{}, gorm.ErrRecordNotFound
	}
	return assessment, nil
}

func (m *memAssessmentRepo) GetWithQuestions(ctx context.Context, id uint) (models.Assessment, error) {
	return m.GetByID(ctx, id)
}

func (m *memAssessmentRepo) Create(ctx context.Context, assessment *models.Assessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	assessment.ID = m.nextID
	assessment.CreatedAt = time.Now()
	m.assessments[m.nextID] = *assessment
	m.nextID++
	return nil
}

func (m *memAssessmentRepo) Update(ctx context.Context, assessment *models.Assessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assessments[assessment.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.assessments[assessment.ID] = *assessment
	return nil
}

func (m *memAssessmentRepo) AddQuestion(ctx context.Context, assessmentID uint, question *models.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	assessment, ok := m.assessments[assessmentID]
	if !ok || !assessment.IsActive {
		return gorm.ErrRecordNotFound
	}
	if assessment.IsPublished {
		return repository.ErrAssessmentPublished
	}
	question.ID = m.nextQID
	m.nextQID++
	question.AssessmentID = assessmentID
	question.OrderNumber = len(assessment.Questions) + 1
	for i := range question.Options {
		question.Options[i].ID = m.nextQID
		question.Options[i].QuestionID = question.ID
		m.nextQID++
	}
	assessment.Questions = append(assessment.Questions, *question)
	m.assessments[assessmentID] = assessment
	return nil
}

func (m *memAssessmentRepo) CountQuestions(ctx context.Context, assessmentID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	assessment, ok := m.assessments[assessmentID]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	return int64(len(assessment.Questions)), nil
}

func (m *memAssessmentRepo) Publish(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	assessment, ok := m.assessments[id]
	if !ok || !assessment.IsActive {
		return gorm.ErrRecordNotFound
	}
	assessment.IsPublished = true
	m.assessments[id] = assessment
	return nil
}

func (m *memAssessmentRepo) SoftDelete(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	assessment, ok := m.assessments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	assessment.IsActive = false
	m.assessments[id] = assessment
	return nil
}

type pairKey struct {
	assessmentID uint
	studentID    uint
}

type memSubmissionRepo struct {
	mu          sync.Mutex
	submissions map[uint]models.Submission
	pairs       map[pairKey]uint
	nextID      uint
}

func newMemSubmissionRepo() *memSubmissionRepo {
	return &memSubmissionRepo{
		submissions: make(map[uint]models.Submission),
		pairs:       make(map[pairKey]uint),
		nextID:      1,
	}
}

func (m *memSubmissionRepo) List(ctx context.Context, filter repository.SubmissionFilter) ([]models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	results := make([]models.Submission, 0, len(m.submissions))
	for _, submission := range m.submissions {
		if filter.AssessmentID != nil && submission.AssessmentID != *filter.AssessmentID {
			continue
		}
		if filter.StudentID != nil && submission.StudentID != *filter.StudentID {
			continue
		}
		if filter.Status != nil && submission.Status != *filter.Status {
			continue
		}
		results = append(results, submission)
	}
	return results, nil
}

func (m *memSubmissionRepo) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	submission, ok := m.submissions[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (m *memSubmissionRepo) GetByAssessmentAndStudent(ctx context.Context, assessmentID, studentID uint) (models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.pairs[pairKey{assessmentID, studentID}]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return m.submissions[id], nil
}

func (m *memSubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey{submission.AssessmentID, submission.StudentID}
	if _, exists := m.pairs[key]; exists {
		return gorm.ErrDuplicatedKey
	}
	submission.ID = m.nextID
	m.submissions[m.nextID] = *submission
	m.pairs[key] = m.nextID
	m.nextID++
	return nil
}

func (m *memSubmissionRepo) Update(ctx context.Context, submission *models.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.submissions[submission.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.submissions[submission.ID] = *submission
	return nil
}

type memAttemptRepo struct {
	mu       sync.Mutex
	attempts map[uint]models.Attempt
	nextID   uint
}

func newMemAttemptRepo() *memAttemptRepo {
	return &memAttemptRepo{attempts: make(map[uint]models.Attempt), nextID: 1}
}

func (m *memAttemptRepo) Start(ctx context.Context, quizID, studentID uint, maxAttempts *int, startedAt time.Time) (models.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	used := 0
	last := 0
	for _, attempt := range m.attempts {
		if attempt.QuizID == quizID && attempt.StudentID == studentID {
			used++
			if attempt.AttemptNumber > last {
				last = attempt.AttemptNumber
			}
		}
	}
	if maxAttempts != nil && used >= *maxAttempts {
		return models.Attempt{}, repository.ErrAttemptLimitReached
	}
	attempt := models.Attempt{
		ID:            m.nextID,
		QuizID:        quizID,
		StudentID:     studentID,
		AttemptNumber: last + 1,
		StartedAt:     startedAt,
	}
	m.attempts[m.nextID] = attempt
	m.nextID++
	return attempt, nil
}

func (m *memAttemptRepo) Submit(ctx context.Context, attemptID uint, answers []models.Answer, score float64, submittedAt time.Time) (models.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	attempt, ok := m.attempts[attemptID]
	if !ok {
		return models.Attempt{}, gorm.ErrRecordNotFound
	}
	if attempt.IsCompleted {
		return models.Attempt{}, repository.ErrAttemptCompleted
	}
	for i := range answers {
		answers[i].AttemptID = attemptID
	}
	attempt.Answers = answers
	attempt.Score = &score
	attempt.SubmittedAt = &submittedAt
	attempt.IsCompleted = true
	m.attempts[attemptID] = attempt
	return attempt, nil
}

func (m *memAttemptRepo) GetByID(ctx context.Context, id uint) (models.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	attempt, ok := m.attempts[id]
	if !ok {
		return models.Attempt{}, gorm.ErrRecordNotFound
	}
	return attempt, nil
}

func (m *memAttemptRepo) ListForStudent(ctx context.Context, quizID, studentID uint) ([]models.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	results := make([]models.Attempt, 0)
	for _, attempt := range m.attempts {
		if attempt.QuizID == quizID && attempt.StudentID == studentID {
			results = append(results, attempt)
		}
	}
	return results, nil
}

type memGradeRepo struct {
	mu           sync.Mutex
	grades       map[uint]models.Grade
	bySubmission map[uint]uint
	byAttempt    map[uint]uint
	nextID       uint
}

func newMemGradeRepo() *memGradeRepo {
	return &memGradeRepo{
		grades:       make(map[uint]models.Grade),
		bySubmission: make(map[uint]uint),
		byAttempt:    make(map[uint]uint),
		nextID:       1,
	}
}

func (m *memGradeRepo) Create(ctx context.Context, grade *models.Grade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if grade.SubmissionID != nil {
		if _, exists := m.bySubmission[*grade.SubmissionID]; exists {
			return repository.ErrAlreadyGraded
		}
	}
	if grade.AttemptID != nil {
		if _, exists := m.byAttempt[*grade.AttemptID]; exists {
			return repository.ErrAlreadyGraded
		}
	}
	grade.ID = m.nextID
	m.grades[m.nextID] = *grade
	if grade.SubmissionID != nil {
		m.bySubmission[*grade.SubmissionID] = m.nextID
	}
	if grade.AttemptID != nil {
		m.byAttempt[*grade.AttemptID] = m.nextID
	}
	m.nextID++
	return nil
}

func (m *memGradeRepo) GetByID(ctx context.Context, id uint) (models.Grade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	grade, ok := m.grades[id]
	if !ok {
		return models.Grade{}, gorm.ErrRecordNotFound
	}
	return grade, nil
}

func (m *memGradeRepo) GetBySubmission(ctx context.Context, submissionID uint) (models.Grade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.bySubmission[submissionID]
	if !ok {
		return models.Grade{}, gorm.ErrRecordNotFound
	}
	return m.grades[id], nil
}

func (m *memGradeRepo) GetByAttempt(ctx context.Context, attemptID uint) (models.Grade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byAttempt[attemptID]
	if !ok {
		return models.Grade{}, gorm.ErrRecordNotFound
	}
	return m.grades[id], nil
}

type memUploadRepo struct {
	mu     sync.Mutex
	files  map[uint]models.UploadedFile
	nextID uint
}

func newMemUploadRepo() *memUploadRepo {
	return &memUploadRepo{files: make(map[uint]models.UploadedFile), nextID: 1}
}

func (m *memUploadRepo) Create(ctx context.Context, file *models.UploadedFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	file.ID = m.nextID
	file.CreatedAt = time.Now()
	m.files[m.nextID] = *file
	m.nextID++
	return nil
}

func (m *memUploadRepo) GetByID(ctx context.Context, id uint) (models.UploadedFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	file, ok := m.files[id]
	if !ok {
		return models.UploadedFile{}, gorm.ErrRecordNotFound
	}
	return file, nil
}

func (m *memUploadRepo) ListByUploader(ctx context.Context, uploaderID uint) ([]models.UploadedFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	results := make([]models.UploadedFile, 0)
	for _, file := range m.files {
		if file.UploaderID == uploaderID {
			results = append(results, file)
		}
	}
	return results, nil
}

type memUserRepo struct {
	mu      sync.Mutex
	users   map[uint]models.User
	byEmail map[string]uint
	nextID  uint
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uint]models.User), byEmail: make(map[string]uint), nextID: 1}
}

func (m *memUserRepo) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byEmail[user.Email]; exists {
		return gorm.ErrDuplicatedKey
	}
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	m.users[m.nextID] = *user
	m.byEmail[user.Email] = m.nextID
	m.nextID++
	return nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id uint) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok || !user.IsActive {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byEmail[email]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	user := m.users[id]
	if !user.IsActive {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

type memActivityRepo struct {
	mu      sync.Mutex
	entries []models.ActivityLog
	nextID  uint
}

func newMemActivityRepo() *memActivityRepo {
	return &memActivityRepo{nextID: 1}
}

func (m *memActivityRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = m.nextID
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	m.nextID++
	return nil
}

func (m *memActivityRepo) List(ctx context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	results := make([]models.ActivityLog, 0, len(m.entries))
	for _, entry := range m.entries {
		if filter.ActorID != nil && entry.ActorID != *filter.ActorID {
			continue
		}
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}
		if filter.EntityType != "" && entry.EntityType != filter.EntityType {
			continue
		}
		results = append(results, entry)
	}
	return results, nil
}
