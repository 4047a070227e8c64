package service

import (
	"context"
	"fmt"

	"github.com/yourusername/edu-api/internal/domain/entity"
	"github.com/yourusername/edu-api/internal/domain/repository"
	"github.com/yourusername/edu-api/internal/pkg/access"
	apperrors "github.com/yourusername/edu-api/internal/pkg/errors"
)

// authorize возвращает ErrForbidden, если правило не выполняется
func authorize(id access.Identity, rule access.Rule, owner string) error {
	if !access.Check(id, rule, owner) {
		return fmt.Errorf("permission %q: %w", rule.Permission, apperrors.ErrForbidden)
	}
	return nil
}

// activeCourse возвращает неудаленный курс
func activeCourse(ctx context.Context, courses repository.CourseRepository, courseID uint) (*entity.Course, error) {
	course, err := courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.IsDeleted {
		return nil, fmt.Errorf("course #%d: %w", courseID, apperrors.ErrNotFound)
	}
	return course, nil
}

// activeTest возвращает неудаленный тест
func activeTest(ctx context.Context, tests repository.TestRepository, testID uint) (*entity.Test, error) {
	test, err := tests.GetByID(ctx, testID)
	if err != nil {
		return nil, err
	}
	if !test.IsAvailable() {
		return nil, fmt.Errorf("test #%d: %w", testID, apperrors.ErrNotFound)
	}
	return test, nil
}

// canViewCourse: автор курса, зачисленный студент или держатель права
func canViewCourse(ctx context.Context, courses repository.CourseRepository, id access.Identity, course *entity.Course, permission string) (bool, error) {
	if id.Blocked {
		return false, nil
	}
	if course.IsAuthor(id.UserID) || id.Has(permission) {
		return true, nil
	}
	return courses.IsStudent(ctx, course.ID, id.UserID)
}
