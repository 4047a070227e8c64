package repository

import (
	"context"

	"github.com/yourusername/edu-api/internal/domain/entity"
)

// AttemptFilter ограничивает выборку попыток одним пользователем.
// Пустой UserID означает всех пользователей.
type AttemptFilter struct {
	UserID string
}

// AnswerChange - результат записи ответа
type AnswerChange struct {
	Delta float64
	Score float64
}

// AttemptRepository - хранилище попыток прохождения тестов
type AttemptRepository interface {
	// Start атомарно создает попытку со снимком вопросов теста.
	// Возвращает ErrAttemptExists, если попытка уже есть, apperrors.ErrNotFound
	// для отсутствующего теста и ErrTestInactive для выключенного.
	Start(ctx context.Context, testID uint, userID string) (uint, error)
	// SaveAnswer записывает ответ и применяет дельту счета в одной транзакции.
	// Запись выполняется только пока попытка in_progress.
	SaveAnswer(ctx context.Context, attemptID, questionID uint, answerIndex int) (*AnswerChange, error)
	// Complete переводит попытку in_progress -> completed.
	Complete(ctx context.Context, attemptID uint) error
	// CompleteAllInProgress завершает все активные попытки теста и возвращает их число.
	CompleteAllInProgress(ctx context.Context, testID uint) (int64, error)
	// InProgressUserIDs возвращает пользователей с незавершенными попытками.
	InProgressUserIDs(ctx context.Context, testID uint) ([]string, error)
	// ExistsForTest проверяет, есть ли по тесту хотя бы одна попытка в любом статусе.
	ExistsForTest(ctx context.Context, testID uint) (bool, error)
	IsOwnedBy(ctx context.Context, attemptID uint, userID string) (bool, error)
	// HasAttemptWithQuestion проверяет, встречался ли вопрос в снимке какой-либо попытки пользователя.
	HasAttemptWithQuestion(ctx context.Context, userID string, questionID uint) (bool, error)
	GetByID(ctx context.Context, attemptID uint) (*entity.Attempt, error)
	GetByUserAndTest(ctx context.Context, userID string, testID uint) (*entity.Attempt, error)
	// Scores возвращает баллы завершенных попыток.
	Scores(ctx context.Context, testID uint, filter AttemptFilter) ([]entity.UserScore, error)
	// Answers возвращает ответы попыток в любом статусе.
	Answers(ctx context.Context, testID uint, filter AttemptFilter) ([]entity.AttemptAnswers, error)
	PassedUserIDs(ctx context.Context, testID uint) ([]string, error)
	GradesByUser(ctx context.Context, userID string) ([]entity.Grade, error)
}
