package repository

import (
	"context"

	"github.com/yourusername/edu-api/internal/domain/entity"
)

// TestRepository определяет методы для работы с тестами и их составом
type TestRepository interface {
	Create(ctx context.Context, test *entity.Test) error
	// GetByID возвращает тест, включая удаленные; проверку делает вызывающий.
	GetByID(ctx context.Context, id uint) (*entity.Test, error)
	ListByCourse(ctx context.Context, courseID uint) ([]entity.Test, error)
	ListActiveByStudent(ctx context.Context, userID string) ([]entity.Test, error)
	SoftDelete(ctx context.Context, id uint) error
	SetActive(ctx context.Context, id uint, active bool) error
	// AppendQuestion добавляет вопрос в конец списка, если попыток нет и вопроса еще нет в тесте.
	AppendQuestion(ctx context.Context, testID, questionID uint) error
	// RemoveQuestion удаляет вопрос из списка, если попыток нет.
	RemoveQuestion(ctx context.Context, testID, questionID uint) error
	// ReplaceQuestions заменяет список целиком, если попыток нет.
	ReplaceQuestions(ctx context.Context, testID uint, questionIDs []uint) error
	// IsQuestionUsed проверяет, входит ли вопрос хотя бы в один неудаленный тест.
	IsQuestionUsed(ctx context.Context, questionID uint) (bool, error)
}
