package repository

import (
	"context"

	"github.com/yourusername/edu-api/internal/domain/entity"
)

// CourseRepository определяет методы для работы с курсами и зачислением
type CourseRepository interface {
	Create(ctx context.Context, course *entity.Course) error
	GetByID(ctx context.Context, id uint) (*entity.Course, error)
	List(ctx context.Context) ([]entity.Course, error)
	ListByStudent(ctx context.Context, userID string) ([]entity.Course, error)
	Update(ctx context.Context, id uint, title, description string) error
	SoftDelete(ctx context.Context, id uint) error
	// AddStudent зачисляет студента. Возвращает false, если курс не найден или студент уже зачислен.
	AddStudent(ctx context.Context, courseID uint, userID string) (bool, error)
	RemoveStudent(ctx context.Context, courseID uint, userID string) error
	StudentIDs(ctx context.Context, courseID uint) ([]string, error)
	IsStudent(ctx context.Context, courseID uint, userID string) (bool, error)
}
