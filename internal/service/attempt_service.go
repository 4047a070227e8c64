package service

import (
	"context"
	"fmt"
	"log"

	"github.com/yourusername/edu-api/internal/domain/entity"
	"github.com/yourusername/edu-api/internal/domain/repository"
	"github.com/yourusername/edu-api/internal/pkg/access"
	apperrors "github.com/yourusername/edu-api/internal/pkg/errors"
)

// AttemptService ведет жизненный цикл попыток: старт, ответы, завершение
// и массовое завершение при выключении теста.
// Методы Start, Answer, Complete и FinalizeAll не проверяют права,
// это делают методы, принимающие access.Identity.
type AttemptService struct {
	attemptRepo repository.AttemptRepository
	testRepo    repository.TestRepository
	courseRepo  repository.CourseRepository
}

// NewAttemptService создает новый сервис попыток
func NewAttemptService(
	attemptRepo repository.AttemptRepository,
	testRepo repository.TestRepository,
	courseRepo repository.CourseRepository,
) *AttemptService {
	return &AttemptService{
		attemptRepo: attemptRepo,
		testRepo:    testRepo,
		courseRepo:  courseRepo,
	}
}

// Start создает попытку пользователя.
// Порядок проверок: тест существует и не удален, тест активен, попытки еще нет.
func (s *AttemptService) Start(ctx context.Context, testID uint, userID string) (uint, error) {
	test, err := activeTest(ctx, s.testRepo, testID)
	if err != nil {
		return 0, err
	}
	if !test.IsActive {
		return 0, fmt.Errorf("%w: test #%d", repository.ErrTestInactive, testID)
	}

	attemptID, err := s.attemptRepo.Start(ctx, testID, userID)
	if err != nil {
		return 0, err
	}

	log.Printf("[AttemptService] Пользователь %s начал попытку #%d по тесту #%d (%d вопросов)",
		userID, attemptID, testID, len(test.QuestionIDs))
	return attemptID, nil
}

// Answer записывает или сбрасывает (entity.AnswerUnanswered) ответ на вопрос
func (s *AttemptService) Answer(ctx context.Context, attemptID, questionID uint, answerIndex int) (*repository.AnswerChange, error) {
	if answerIndex < entity.AnswerUnanswered {
		return nil, ErrInvalidAnswer
	}
	return s.attemptRepo.SaveAnswer(ctx, attemptID, questionID, answerIndex)
}

// Complete завершает попытку. Повторное завершение возвращает ErrAttemptNotInProgress.
func (s *AttemptService) Complete(ctx context.Context, attemptID uint) error {
	if err := s.attemptRepo.Complete(ctx, attemptID); err != nil {
		return err
	}
	log.Printf("[AttemptService] Попытка #%d завершена", attemptID)
	return nil
}

// FinalizeAll завершает все незавершенные попытки теста и возвращает их число
func (s *AttemptService) FinalizeAll(ctx context.Context, testID uint) (int64, error) {
	count, err := s.attemptRepo.CompleteAllInProgress(ctx, testID)
	if err != nil {
		log.Printf("[AttemptService] Ошибка массового завершения попыток теста #%d: %v", testID, err)
		return 0, err
	}
	log.Printf("[AttemptService] Тест #%d: принудительно завершено попыток: %d", testID, count)
	return count, nil
}

// StartForUser начинает попытку от имени пользователя.
// Начать тест может студент курса или его автор.
func (s *AttemptService) StartForUser(ctx context.Context, id access.Identity, testID uint) (uint, error) {
	test, err := activeTest(ctx, s.testRepo, testID)
	if err != nil {
		return 0, err
	}
	course, err := activeCourse(ctx, s.courseRepo, test.CourseID)
	if err != nil {
		return 0, err
	}
	allowed, err := canViewCourse(ctx, s.courseRepo, id, course, "")
	if err != nil {
		return 0, err
	}
	if !allowed {
		return 0, ErrNotEnrolled
	}
	return s.Start(ctx, testID, id.UserID)
}

// AnswerForUser записывает ответ, проверив владение попыткой.
// Не владельцу нужен permission (answer:update, answer:del); пустой permission - только владелец.
func (s *AttemptService) AnswerForUser(ctx context.Context, id access.Identity, attemptID, questionID uint, answerIndex int, permission string) error {
	if err := s.authorizeAttempt(ctx, id, attemptID, permission); err != nil {
		return err
	}
	_, err := s.Answer(ctx, attemptID, questionID, answerIndex)
	return err
}

// CompleteForUser завершает попытку владельца
func (s *AttemptService) CompleteForUser(ctx context.Context, id access.Identity, attemptID uint) error {
	if err := s.authorizeAttempt(ctx, id, attemptID, ""); err != nil {
		return err
	}
	return s.Complete(ctx, attemptID)
}

func (s *AttemptService) authorizeAttempt(ctx context.Context, id access.Identity, attemptID uint, permission string) error {
	owned, err := s.attemptRepo.IsOwnedBy(ctx, attemptID, id.UserID)
	if err != nil {
		return err
	}
	owner := ""
	if owned {
		owner = id.UserID
	}
	return authorize(id, access.OwnerOr(permission), owner)
}

// testContext загружает тест (в том числе удаленный) и его курс для чтения результатов
func (s *AttemptService) testContext(ctx context.Context, testID uint) (*entity.Test, *entity.Course, error) {
	test, err := s.testRepo.GetByID(ctx, testID)
	if err != nil {
		return nil, nil, err
	}
	course, err := s.courseRepo.GetByID(ctx, test.CourseID)
	if err != nil {
		return nil, nil, err
	}
	return test, course, nil
}

// resultsFilter: автор курса и держатель test:answer:read видят всех, остальные только себя
func resultsFilter(id access.Identity, course *entity.Course) repository.AttemptFilter {
	if course.IsAuthor(id.UserID) || id.Has(access.PermTestAnswerRead) {
		return repository.AttemptFilter{}
	}
	return repository.AttemptFilter{UserID: id.UserID}
}

// Scores возвращает баллы завершенных попыток теста
func (s *AttemptService) Scores(ctx context.Context, id access.Identity, testID uint) ([]entity.UserScore, error) {
	_, course, err := s.testContext(ctx, testID)
	if err != nil {
		return nil, err
	}
	return s.attemptRepo.Scores(ctx, testID, resultsFilter(id, course))
}

// ExportScores возвращает баллы всех пользователей для выгрузки; доступно автору и проверяющим
func (s *AttemptService) ExportScores(ctx context.Context, id access.Identity, testID uint) (*entity.Test, []entity.UserScore, error) {
	test, course, err := s.testContext(ctx, testID)
	if err != nil {
		return nil, nil, err
	}
	if err := authorize(id, access.OwnerOr(access.PermTestAnswerRead), course.AuthorID); err != nil {
		return nil, nil, err
	}
	scores, err := s.attemptRepo.Scores(ctx, testID, repository.AttemptFilter{})
	if err != nil {
		return nil, nil, err
	}
	return test, scores, nil
}

// Answers возвращает ответы по попыткам теста в любом статусе
func (s *AttemptService) Answers(ctx context.Context, id access.Identity, testID uint) ([]entity.AttemptAnswers, error) {
	_, course, err := s.testContext(ctx, testID)
	if err != nil {
		return nil, err
	}
	return s.attemptRepo.Answers(ctx, testID, resultsFilter(id, course))
}

// PassedUsers возвращает пользователей, завершивших тест
func (s *AttemptService) PassedUsers(ctx context.Context, id access.Identity, testID uint) ([]string, error) {
	_, course, err := s.testContext(ctx, testID)
	if err != nil {
		return nil, err
	}
	if err := authorize(id, access.OwnerOr(access.PermTestAnswerRead), course.AuthorID); err != nil {
		return nil, err
	}
	return s.attemptRepo.PassedUserIDs(ctx, testID)
}

// UserAttempt возвращает попытку пользователя по тесту (статус, ответы, снимок)
func (s *AttemptService) UserAttempt(ctx context.Context, id access.Identity, testID uint, userID string) (*entity.Attempt, error) {
	if err := s.authorizeUserResults(ctx, id, testID, userID, access.PermTestAnswerRead); err != nil {
		return nil, err
	}
	return s.attemptRepo.GetByUserAndTest(ctx, userID, testID)
}

// UserAnswers возвращает только статус и ответы попытки пользователя
func (s *AttemptService) UserAnswers(ctx context.Context, id access.Identity, testID uint, userID string) (*entity.AttemptAnswers, error) {
	if err := s.authorizeUserResults(ctx, id, testID, userID, access.PermAnswerRead); err != nil {
		return nil, err
	}
	attempt, err := s.attemptRepo.GetByUserAndTest(ctx, userID, testID)
	if err != nil {
		return nil, err
	}
	return &entity.AttemptAnswers{
		AttemptID: attempt.ID,
		UserID:    attempt.UserID,
		Status:    attempt.Status,
		Answers:   attempt.UserAnswers,
	}, nil
}

// authorizeUserResults: сам пользователь, автор курса или держатель права
func (s *AttemptService) authorizeUserResults(ctx context.Context, id access.Identity, testID uint, userID, permission string) error {
	_, course, err := s.testContext(ctx, testID)
	if err != nil {
		return err
	}
	if course.IsAuthor(id.UserID) && !id.Blocked {
		return nil
	}
	if err := authorize(id, access.OwnerOr(permission), userID); err != nil {
		return fmt.Errorf("results of user %s: %w", userID, apperrors.ErrForbidden)
	}
	return nil
}
