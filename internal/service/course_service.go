package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/edu-api/internal/domain/entity"
	"github.com/yourusername/edu-api/internal/domain/repository"
	"github.com/yourusername/edu-api/internal/pkg/access"
)

// CourseService управляет курсами и зачислением студентов
type CourseService struct {
	courseRepo repository.CourseRepository
	notifier   *NotificationService
}

// NewCourseService создает новый сервис курсов
func NewCourseService(courseRepo repository.CourseRepository, notifier *NotificationService) *CourseService {
	return &CourseService{
		courseRepo: courseRepo,
		notifier:   notifier,
	}
}

// List возвращает все неудаленные курсы
func (s *CourseService) List(ctx context.Context) ([]entity.Course, error) {
	return s.courseRepo.List(ctx)
}

// Get возвращает неудаленный курс
func (s *CourseService) Get(ctx context.Context, courseID uint) (*entity.Course, error) {
	return activeCourse(ctx, s.courseRepo, courseID)
}

// Create создает курс; нужен course:add
func (s *CourseService) Create(ctx context.Context, id access.Identity, title, description string) (*entity.Course, error) {
	if err := authorize(id, access.Require(access.PermCourseAdd), ""); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	course := &entity.Course{Title: title, Description: description, AuthorID: id.UserID}
	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}
	log.Printf("[CourseService] Пользователь %s создал курс #%d", id.UserID, course.ID)
	return course, nil
}

// Update меняет название и описание курса
func (s *CourseService) Update(ctx context.Context, id access.Identity, courseID uint, title, description string) error {
	course, err := activeCourse(ctx, s.courseRepo, courseID)
	if err != nil {
		return err
	}
	if err := authorize(id, access.OwnerOr(access.PermCourseInfoWrite), course.AuthorID); err != nil {
		return err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	return s.courseRepo.Update(ctx, courseID, title, description)
}

// Delete мягко удаляет курс и уведомляет студентов
func (s *CourseService) Delete(ctx context.Context, id access.Identity, courseID uint) error {
	course, err := activeCourse(ctx, s.courseRepo, courseID)
	if err != nil {
		return err
	}
	if err := authorize(id, access.OwnerOr(access.PermCourseDel), course.AuthorID); err != nil {
		return err
	}

	// Список студентов берем до удаления: после него курс недоступен
	studentIDs, err := s.courseRepo.StudentIDs(ctx, courseID)
	if err != nil {
		log.Printf("[CourseService] Не удалось получить студентов курса #%d: %v", courseID, err)
	}
	if err := s.courseRepo.SoftDelete(ctx, courseID); err != nil {
		return err
	}

	s.notifier.Notify(ctx, studentIDs, entity.NotificationTypeAcademic, "Курс удален",
		fmt.Sprintf("Дисциплина '%s' была удалена автором.", course.Title),
		map[string]interface{}{"course_id": courseID})
	return nil
}

// Join зачисляет пользователя на курс. Зачислить другого можно только с course:user:add.
func (s *CourseService) Join(ctx context.Context, id access.Identity, courseID uint, targetUserID string) error {
	if targetUserID == "" {
		return ErrMissingTargetUser
	}
	if err := authorize(id, access.OwnerOr(access.PermCourseUserAdd), targetUserID); err != nil {
		return err
	}

	added, err := s.courseRepo.AddStudent(ctx, courseID, targetUserID)
	if err != nil {
		return err
	}
	course, err := activeCourse(ctx, s.courseRepo, courseID)
	if err != nil {
		return err
	}
	if !added {
		return fmt.Errorf("%w: user %s, course #%d", ErrAlreadyEnrolled, targetUserID, courseID)
	}

	if targetUserID != id.UserID {
		s.notifier.Notify(ctx, []string{targetUserID}, entity.NotificationTypeAcademic, "Зачисление",
			"Вы были зачислены на курс: "+course.Title,
			map[string]interface{}{"course_id": courseID})
	}
	return nil
}

// Leave отчисляет пользователя с курса. Отчислить другого можно только с course:user:del.
func (s *CourseService) Leave(ctx context.Context, id access.Identity, courseID uint, targetUserID string) error {
	if targetUserID == "" {
		return ErrMissingTargetUser
	}
	if err := authorize(id, access.OwnerOr(access.PermCourseUserDel), targetUserID); err != nil {
		return err
	}

	course, err := activeCourse(ctx, s.courseRepo, courseID)
	if err != nil {
		return err
	}
	if err := s.courseRepo.RemoveStudent(ctx, courseID, targetUserID); err != nil {
		return err
	}

	if targetUserID != id.UserID {
		s.notifier.Notify(ctx, []string{targetUserID}, entity.NotificationTypeAcademic, "Исключение",
			"Вы были удалены из курса: "+course.Title,
			map[string]interface{}{"course_id": courseID})
	}
	return nil
}

// Students возвращает студентов курса автору или держателю course:userList
func (s *CourseService) Students(ctx context.Context, id access.Identity, courseID uint) ([]string, error) {
	course, err := activeCourse(ctx, s.courseRepo, courseID)
	if err != nil {
		return nil, err
	}
	if err := authorize(id, access.OwnerOr(access.PermCourseUserList), course.AuthorID); err != nil {
		return nil, err
	}
	return s.courseRepo.StudentIDs(ctx, courseID)
}
