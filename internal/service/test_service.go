package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/edu-api/internal/domain/entity"
	"github.com/yourusername/edu-api/internal/domain/repository"
	"github.com/yourusername/edu-api/internal/pkg/access"
	apperrors "github.com/yourusername/edu-api/internal/pkg/errors"
)

// TestService управляет тестами курса и их составом.
// Состав теста замораживается, как только по нему создана первая попытка.
type TestService struct {
	testRepo       repository.TestRepository
	courseRepo     repository.CourseRepository
	questionRepo   repository.QuestionRepository
	attemptRepo    repository.AttemptRepository
	attemptService *AttemptService
	notifier       *NotificationService
}

// NewTestService создает новый сервис тестов
func NewTestService(
	testRepo repository.TestRepository,
	courseRepo repository.CourseRepository,
	questionRepo repository.QuestionRepository,
	attemptRepo repository.AttemptRepository,
	attemptService *AttemptService,
	notifier *NotificationService,
) *TestService {
	return &TestService{
		testRepo:       testRepo,
		courseRepo:     courseRepo,
		questionRepo:   questionRepo,
		attemptRepo:    attemptRepo,
		attemptService: attemptService,
		notifier:       notifier,
	}
}

// CreateTest создает выключенный тест без вопросов
func (s *TestService) CreateTest(ctx context.Context, id access.Identity, courseID uint, title string) (*entity.Test, error) {
	course, err := activeCourse(ctx, s.courseRepo, courseID)
	if err != nil {
		return nil, err
	}
	if err := authorize(id, access.OwnerOr(access.PermCourseTestAdd), course.AuthorID); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	test := &entity.Test{CourseID: courseID, Title: title}
	if err := s.testRepo.Create(ctx, test); err != nil {
		return nil, fmt.Errorf("failed to create test: %w", err)
	}
	log.Printf("[TestService] Создан тест #%d в курсе #%d", test.ID, courseID)
	return test, nil
}

// ListTests возвращает тесты курса автору, студентам и держателям course:testList
func (s *TestService) ListTests(ctx context.Context, id access.Identity, courseID uint) ([]entity.Test, error) {
	course, err := activeCourse(ctx, s.courseRepo, courseID)
	if err != nil {
		return nil, err
	}
	allowed, err := canViewCourse(ctx, s.courseRepo, id, course, access.PermCourseTestList)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrNotEnrolled
	}
	return s.testRepo.ListByCourse(ctx, courseID)
}

// DeleteTest мягко удаляет тест и уведомляет студентов. Попытки сохраняются.
func (s *TestService) DeleteTest(ctx context.Context, id access.Identity, testID uint) error {
	test, err := activeTest(ctx, s.testRepo, testID)
	if err != nil {
		return err
	}
	course, err := s.courseRepo.GetByID(ctx, test.CourseID)
	if err != nil {
		return err
	}
	if err := authorize(id, access.OwnerOr(access.PermCourseTestDel), course.AuthorID); err != nil {
		return err
	}
	if err := s.testRepo.SoftDelete(ctx, testID); err != nil {
		return err
	}

	s.notifyStudents(ctx, course.ID, "Тест удален",
		fmt.Sprintf("Тест '%s' в курсе '%s' был удален.", test.Title, course.Title),
		map[string]interface{}{"test_id": testID, "course_id": course.ID})
	return nil
}

// testInCourse загружает тест и проверяет, что он принадлежит курсу
func (s *TestService) testInCourse(ctx context.Context, courseID, testID uint) (*entity.Test, *entity.Course, error) {
	course, err := activeCourse(ctx, s.courseRepo, courseID)
	if err != nil {
		return nil, nil, err
	}
	test, err := activeTest(ctx, s.testRepo, testID)
	if err != nil {
		return nil, nil, err
	}
	if test.CourseID != courseID {
		return nil, nil, fmt.Errorf("test #%d in course #%d: %w", testID, courseID, apperrors.ErrNotFound)
	}
	return test, course, nil
}

// IsActive возвращает признак активности теста
func (s *TestService) IsActive(ctx context.Context, id access.Identity, courseID, testID uint) (bool, error) {
	test, course, err := s.testInCourse(ctx, courseID, testID)
	if err != nil {
		return false, err
	}
	allowed, err := canViewCourse(ctx, s.courseRepo, id, course, access.PermCourseTestRead)
	if err != nil {
		return false, err
	}
	if !allowed {
		return false, ErrNotEnrolled
	}
	return test.IsActive, nil
}

// SetActivation включает или выключает тест.
// Выключение завершает все незавершенные попытки и уведомляет их владельцев.
func (s *TestService) SetActivation(ctx context.Context, id access.Identity, courseID, testID uint, active bool) error {
	test, course, err := s.testInCourse(ctx, courseID, testID)
	if err != nil {
		return err
	}
	if err := authorize(id, access.OwnerOr(access.PermCourseTestWrite), course.AuthorID); err != nil {
		return err
	}

	if active {
		if err := s.testRepo.SetActive(ctx, testID, true); err != nil {
			return err
		}
		s.notifyStudents(ctx, courseID, "Тест открыт",
			fmt.Sprintf("В курсе '%s' открыт тест '%s'.", course.Title, test.Title),
			map[string]interface{}{"test_id": testID, "course_id": courseID})
		return nil
	}

	affected, err := s.attemptRepo.InProgressUserIDs(ctx, testID)
	if err != nil {
		return err
	}
	if err := s.testRepo.SetActive(ctx, testID, false); err != nil {
		return err
	}
	if _, err := s.attemptService.FinalizeAll(ctx, testID); err != nil {
		return err
	}

	s.notifier.Notify(ctx, affected, entity.NotificationTypeAcademic, "Тест закрыт",
		fmt.Sprintf("Тест '%s' был закрыт преподавателем, ваша попытка завершена.", test.Title),
		map[string]interface{}{"test_id": testID, "course_id": courseID})
	return nil
}

// QuestionIDs возвращает упорядоченный список вопросов теста
func (s *TestService) QuestionIDs(ctx context.Context, id access.Identity, testID uint) ([]uint, error) {
	test, err := activeTest(ctx, s.testRepo, testID)
	if err != nil {
		return nil, err
	}
	course, err := s.courseRepo.GetByID(ctx, test.CourseID)
	if err != nil {
		return nil, err
	}
	allowed, err := canViewCourse(ctx, s.courseRepo, id, course, access.PermCourseTestRead)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrNotEnrolled
	}
	return test.QuestionIDList(), nil
}

// ensureNoAttempts запрещает структурные правки теста, по которому есть попытки
func (s *TestService) ensureNoAttempts(ctx context.Context, testID uint) error {
	exists, err := s.attemptRepo.ExistsForTest(ctx, testID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: test #%d", repository.ErrTestHasAttempts, testID)
	}
	return nil
}

// editableTest загружает неудаленный тест вместе с его курсом
func (s *TestService) editableTest(ctx context.Context, testID uint) (*entity.Test, *entity.Course, error) {
	test, err := activeTest(ctx, s.testRepo, testID)
	if err != nil {
		return nil, nil, err
	}
	course, err := s.courseRepo.GetByID(ctx, test.CourseID)
	if err != nil {
		return nil, nil, err
	}
	return test, course, nil
}

// AppendQuestion добавляет вопрос в конец теста.
// Без test:quest:add нужно быть одновременно автором курса и автором вопроса.
func (s *TestService) AppendQuestion(ctx context.Context, id access.Identity, testID, questionID uint) error {
	test, course, err := s.editableTest(ctx, testID)
	if err != nil {
		return err
	}
	question, err := s.questionRepo.GetLatest(ctx, questionID)
	if err != nil {
		return err
	}
	owner := ""
	if course.IsAuthor(id.UserID) && question.AuthorID == id.UserID {
		owner = id.UserID
	}
	if err := authorize(id, access.OwnerOr(access.PermTestQuestAdd), owner); err != nil {
		return err
	}

	if err := s.ensureNoAttempts(ctx, testID); err != nil {
		return err
	}
	if test.HasQuestion(questionID) {
		return fmt.Errorf("%w: question #%d, test #%d", repository.ErrQuestionAlreadyInTest, questionID, testID)
	}
	if err := s.testRepo.AppendQuestion(ctx, testID, questionID); err != nil {
		return err
	}
	log.Printf("[TestService] Вопрос #%d добавлен в тест #%d", questionID, testID)
	return nil
}

// RemoveQuestion удаляет вопрос из теста; отсутствующий вопрос не ошибка
func (s *TestService) RemoveQuestion(ctx context.Context, id access.Identity, testID, questionID uint) error {
	_, course, err := s.editableTest(ctx, testID)
	if err != nil {
		return err
	}
	if err := authorize(id, access.OwnerOr(access.PermTestQuestDel), course.AuthorID); err != nil {
		return err
	}
	if err := s.ensureNoAttempts(ctx, testID); err != nil {
		return err
	}
	return s.testRepo.RemoveQuestion(ctx, testID, questionID)
}

// ReorderQuestions заменяет порядок вопросов. Новый список должен быть перестановкой текущего.
func (s *TestService) ReorderQuestions(ctx context.Context, id access.Identity, testID uint, questionIDs []uint) error {
	test, course, err := s.editableTest(ctx, testID)
	if err != nil {
		return err
	}
	if err := authorize(id, access.OwnerOr(access.PermTestQuestUpdate), course.AuthorID); err != nil {
		return err
	}
	if err := s.ensureNoAttempts(ctx, testID); err != nil {
		return err
	}
	if !test.IsPermutationOf(questionIDs) {
		return ErrNotPermutation
	}
	return s.testRepo.ReplaceQuestions(ctx, testID, questionIDs)
}

func (s *TestService) notifyStudents(ctx context.Context, courseID uint, title, message string, payload map[string]interface{}) {
	studentIDs, err := s.courseRepo.StudentIDs(ctx, courseID)
	if err != nil {
		log.Printf("[TestService] Не удалось получить студентов курса #%d для уведомления: %v", courseID, err)
		return
	}
	s.notifier.Notify(ctx, studentIDs, entity.NotificationTypeAcademic, title, message, payload)
}
