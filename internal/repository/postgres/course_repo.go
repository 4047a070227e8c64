package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/edu-api/internal/domain/entity"
	"github.com/yourusername/edu-api/internal/domain/repository"
	apperrors "github.com/yourusername/edu-api/internal/pkg/errors"
)

const addStudentSQL = `
INSERT INTO course_students (course_id, user_id, created_at)
SELECT ?, ?, NOW()
WHERE EXISTS (SELECT 1 FROM courses WHERE id = ? AND is_deleted = false)
ON CONFLICT (course_id, user_id) DO NOTHING`

// CourseRepo реализует repository.CourseRepository
type CourseRepo struct {
	db *gorm.DB
}

// NewCourseRepo создает новый репозиторий курсов
func NewCourseRepo(db *gorm.DB) *CourseRepo {
	return &CourseRepo{db: db}
}

// Create создает курс
func (r *CourseRepo) Create(ctx context.Context, course *entity.Course) error {
	if err := r.db.WithContext(ctx).Create(course).Error; err != nil {
		return wrapDBError(err, "create course")
	}
	return nil
}

// GetByID возвращает курс по ID, включая удаленные
func (r *CourseRepo) GetByID(ctx context.Context, id uint) (*entity.Course, error) {
	var course entity.Course
	if err := r.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return nil, wrapDBError(err, "get course #%d", id)
	}
	return &course, nil
}

// List возвращает все неудаленные курсы
func (r *CourseRepo) List(ctx context.Context) ([]entity.Course, error) {
	var courses []entity.Course
	if err := r.db.WithContext(ctx).Where("is_deleted = false").Order("id").Find(&courses).Error; err != nil {
		return nil, wrapDBError(err, "list courses")
	}
	return courses, nil
}

// ListByStudent возвращает курсы, на которые зачислен пользователь
func (r *CourseRepo) ListByStudent(ctx context.Context, userID string) ([]entity.Course, error) {
	var courses []entity.Course
	err := r.db.WithContext(ctx).
		Joins("JOIN course_students cs ON cs.course_id = courses.id").
		Where("cs.user_id = ? AND courses.is_deleted = false", userID).
		Order("courses.id").
		Find(&courses).Error
	if err != nil {
		return nil, wrapDBError(err, "list courses of user %s", userID)
	}
	return courses, nil
}

// Update обновляет название и описание курса
func (r *CourseRepo) Update(ctx context.Context, id uint, title, description string) error {
	result := r.db.WithContext(ctx).Model(&entity.Course{}).
		Where("id = ? AND is_deleted = false", id).
		Updates(map[string]interface{}{
			"title":       title,
			"description": description,
		})
	if result.Error != nil {
		return wrapDBError(result.Error, "update course #%d", id)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("course #%d: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// SoftDelete помечает курс удаленным
func (r *CourseRepo) SoftDelete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&entity.Course{}).
		Where("id = ? AND is_deleted = false", id).
		Update("is_deleted", true)
	if result.Error != nil {
		return wrapDBError(result.Error, "delete course #%d", id)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("course #%d: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// AddStudent зачисляет студента, если курс существует и студент еще не зачислен
func (r *CourseRepo) AddStudent(ctx context.Context, courseID uint, userID string) (bool, error) {
	result := r.db.WithContext(ctx).Exec(addStudentSQL, courseID, userID, courseID)
	if result.Error != nil {
		return false, wrapDBError(result.Error, "add user %s to course #%d", userID, courseID)
	}
	return result.RowsAffected == 1, nil
}

// RemoveStudent отчисляет студента с курса
func (r *CourseRepo) RemoveStudent(ctx context.Context, courseID uint, userID string) error {
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Delete(&entity.CourseStudent{}).Error
	if err != nil {
		return wrapDBError(err, "remove user %s from course #%d", userID, courseID)
	}
	return nil
}

// StudentIDs возвращает идентификаторы студентов курса
func (r *CourseRepo) StudentIDs(ctx context.Context, courseID uint) ([]string, error) {
	var userIDs []string
	err := r.db.WithContext(ctx).Model(&entity.CourseStudent{}).
		Where("course_id = ?", courseID).
		Order("user_id").
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, wrapDBError(err, "list students of course #%d", courseID)
	}
	return userIDs, nil
}

// IsStudent проверяет зачисление пользователя на курс
func (r *CourseRepo) IsStudent(ctx context.Context, courseID uint, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.CourseStudent{}).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Count(&count).Error
	if err != nil {
		return false, wrapDBError(err, "check enrollment of user %s", userID)
	}
	return count > 0, nil
}

var _ repository.CourseRepository = (*CourseRepo)(nil)
