package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/yourusername/edu-api/internal/domain/entity"
	"github.com/yourusername/edu-api/internal/domain/repository"
)

// Мок для test repository
type MockTestRepository struct {
	mock.Mock
}

func (m *MockTestRepository) Create(ctx context.Context, test *entity.Test) error {
	args := m.Called(ctx, test)
	return args.Error(0)
}

func (m *MockTestRepository) GetByID(ctx context.Context, id uint) (*entity.Test, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Test), args.Error(1)
}

func (m *MockTestRepository) ListByCourse(ctx context.Context, courseID uint) ([]entity.Test, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Test), args.Error(1)
}

func (m *MockTestRepository) ListActiveByStudent(ctx context.Context, userID string) ([]entity.Test, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Test), args.Error(1)
}

func (m *MockTestRepository) SoftDelete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTestRepository) SetActive(ctx context.Context, id uint, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockTestRepository) AppendQuestion(ctx context.Context, testID, questionID uint) error {
	args := m.Called(ctx, testID, questionID)
	return args.Error(0)
}

func (m *MockTestRepository) RemoveQuestion(ctx context.Context, testID, questionID uint) error {
	args := m.Called(ctx, testID, questionID)
	return args.Error(0)
}

func (m *MockTestRepository) ReplaceQuestions(ctx context.Context, testID uint, questionIDs []uint) error {
	args := m.Called(ctx, testID, questionIDs)
	return args.Error(0)
}

func (m *MockTestRepository) IsQuestionUsed(ctx context.Context, questionID uint) (bool, error) {
	args := m.Called(ctx, questionID)
	return args.Bool(0), args.Error(1)
}

// Мок для course repository
type MockCourseRepository struct {
	mock.Mock
}

func (m *MockCourseRepository) Create(ctx context.Context, course *entity.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

func (m *MockCourseRepository) GetByID(ctx context.Context, id uint) (*entity.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Course), args.Error(1)
}

func (m *MockCourseRepository) List(ctx context.Context) ([]entity.Course, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Course), args.Error(1)
}

func (m *MockCourseRepository) ListByStudent(ctx context.Context, userID string) ([]entity.Course, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Course), args.Error(1)
}

func (m *MockCourseRepository) Update(ctx context.Context, id uint, title, description string) error {
	args := m.Called(ctx, id, title, description)
	return args.Error(0)
}

func (m *MockCourseRepository) SoftDelete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCourseRepository) AddStudent(ctx context.Context, courseID uint, userID string) (bool, error) {
	args := m.Called(ctx, courseID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCourseRepository) RemoveStudent(ctx context.Context, courseID uint, userID string) error {
	args := m.Called(ctx, courseID, userID)
	return args.Error(0)
}

func (m *MockCourseRepository) StudentIDs(ctx context.Context, courseID uint) ([]string, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCourseRepository) IsStudent(ctx context.Context, courseID uint, userID string) (bool, error) {
	args := m.Called(ctx, courseID, userID)
	return args.Bool(0), args.Error(1)
}

// Мок для question repository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *entity.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) CreateVersion(ctx context.Context, question *entity.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetLatest(ctx context.Context, id uint) (*entity.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetVersion(ctx context.Context, id uint, version int) (*entity.Question, error) {
	args := m.Called(ctx, id, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) ListLatest(ctx context.Context, filter repository.QuestionFilter) ([]entity.Question, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) SoftDelete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Мок для attempt repository
type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Start(ctx context.Context, testID uint, userID string) (uint, error) {
	args := m.Called(ctx, testID, userID)
	return args.Get(0).(uint), args.Error(1)
}

func (m *MockAttemptRepository) SaveAnswer(ctx context.Context, attemptID, questionID uint, answerIndex int) (*repository.AnswerChange, error) {
	args := m.Called(ctx, attemptID, questionID, answerIndex)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.AnswerChange), args.Error(1)
}

func (m *MockAttemptRepository) Complete(ctx context.Context, attemptID uint) error {
	args := m.Called(ctx, attemptID)
	return args.Error(0)
}

func (m *MockAttemptRepository) CompleteAllInProgress(ctx context.Context, testID uint) (int64, error) {
	args := m.Called(ctx, testID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAttemptRepository) InProgressUserIDs(ctx context.Context, testID uint) ([]string, error) {
	args := m.Called(ctx, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAttemptRepository) ExistsForTest(ctx context.Context, testID uint) (bool, error) {
	args := m.Called(ctx, testID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAttemptRepository) IsOwnedBy(ctx context.Context, attemptID uint, userID string) (bool, error) {
	args := m.Called(ctx, attemptID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAttemptRepository) HasAttemptWithQuestion(ctx context.Context, userID string, questionID uint) (bool, error) {
	args := m.Called(ctx, userID, questionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAttemptRepository) GetByID(ctx context.Context, attemptID uint) (*entity.Attempt, error) {
	args := m.Called(ctx, attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) GetByUserAndTest(ctx context.Context, userID string, testID uint) (*entity.Attempt, error) {
	args := m.Called(ctx, userID, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) Scores(ctx context.Context, testID uint, filter repository.AttemptFilter) ([]entity.UserScore, error) {
	args := m.Called(ctx, testID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.UserScore), args.Error(1)
}

func (m *MockAttemptRepository) Answers(ctx context.Context, testID uint, filter repository.AttemptFilter) ([]entity.AttemptAnswers, error) {
	args := m.Called(ctx, testID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.AttemptAnswers), args.Error(1)
}

func (m *MockAttemptRepository) PassedUserIDs(ctx context.Context, testID uint) ([]string, error) {
	args := m.Called(ctx, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAttemptRepository) GradesByUser(ctx context.Context, userID string) ([]entity.Grade, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Grade), args.Error(1)
}

// Мок для notification repository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListUnsent(ctx context.Context, userID string) ([]entity.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkSent(ctx context.Context, userID string, ids []uint) (int64, error) {
	args := m.Called(ctx, userID, ids)
	return args.Get(0).(int64), args.Error(1)
}

// Мок для notification publisher
type MockNotificationPublisher struct {
	mock.Mock
}

func (m *MockNotificationPublisher) Publish(ctx context.Context, notification *entity.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

// Мок для cache repository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) GetJSON(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

var (
	_ repository.TestRepository         = (*MockTestRepository)(nil)
	_ repository.CourseRepository       = (*MockCourseRepository)(nil)
	_ repository.QuestionRepository     = (*MockQuestionRepository)(nil)
	_ repository.AttemptRepository      = (*MockAttemptRepository)(nil)
	_ repository.NotificationRepository = (*MockNotificationRepository)(nil)
	_ repository.NotificationPublisher  = (*MockNotificationPublisher)(nil)
	_ repository.CacheRepository        = (*MockCacheRepository)(nil)
)
