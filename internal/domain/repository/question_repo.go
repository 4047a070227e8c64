package repository

import (
	"context"

	"github.com/yourusername/edu-api/internal/domain/entity"
)

// QuestionFilter определяет фильтры списка вопросов
type QuestionFilter struct {
	AuthorID string // Пустая строка - вопросы всех авторов
}

// QuestionRepository определяет методы для работы с версионированными вопросами
type QuestionRepository interface {
	// Create сохраняет первую версию нового вопроса и заполняет его ID.
	Create(ctx context.Context, question *entity.Question) error
	// CreateVersion сохраняет новую версию существующего вопроса (max(version)+1).
	CreateVersion(ctx context.Context, question *entity.Question) error
	GetLatest(ctx context.Context, id uint) (*entity.Question, error)
	GetVersion(ctx context.Context, id uint, version int) (*entity.Question, error)
	ListLatest(ctx context.Context, filter QuestionFilter) ([]entity.Question, error)
	// SoftDelete помечает удаленными все версии вопроса.
	SoftDelete(ctx context.Context, id uint) error
}
