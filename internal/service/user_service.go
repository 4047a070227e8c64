package service

import (
	"context"

	"github.com/yourusername/edu-api/internal/domain/entity"
	"github.com/yourusername/edu-api/internal/domain/repository"
	"github.com/yourusername/edu-api/internal/pkg/access"
)

// ProfileSections выбирает разделы профиля. Пустой выбор означает все разделы.
type ProfileSections struct {
	Courses bool
	Tests   bool
	Grades  bool
}

func (p ProfileSections) normalized() ProfileSections {
	if !p.Courses && !p.Tests && !p.Grades {
		return ProfileSections{Courses: true, Tests: true, Grades: true}
	}
	return p
}

// UserService собирает данные профиля пользователя
type UserService struct {
	courseRepo  repository.CourseRepository
	testRepo    repository.TestRepository
	attemptRepo repository.AttemptRepository
}

// NewUserService создает новый сервис пользователей
func NewUserService(
	courseRepo repository.CourseRepository,
	testRepo repository.TestRepository,
	attemptRepo repository.AttemptRepository,
) *UserService {
	return &UserService{
		courseRepo:  courseRepo,
		testRepo:    testRepo,
		attemptRepo: attemptRepo,
	}
}

// GetProfile возвращает курсы, активные тесты и оценки пользователя.
// Доступно самому пользователю и держателю user:data:read.
func (s *UserService) GetProfile(ctx context.Context, id access.Identity, userID string, sections ProfileSections) (*entity.UserProfile, error) {
	if err := authorize(id, access.OwnerOr(access.PermUserDataRead), userID); err != nil {
		return nil, err
	}
	sections = sections.normalized()

	profile := &entity.UserProfile{UserID: userID}
	var err error
	if sections.Courses {
		if profile.Courses, err = s.courseRepo.ListByStudent(ctx, userID); err != nil {
			return nil, err
		}
	}
	if sections.Tests {
		if profile.Tests, err = s.testRepo.ListActiveByStudent(ctx, userID); err != nil {
			return nil, err
		}
	}
	if sections.Grades {
		if profile.Grades, err = s.attemptRepo.GradesByUser(ctx, userID); err != nil {
			return nil, err
		}
	}
	return profile, nil
}
