package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/yourusername/edu-api/internal/domain/entity"
	"github.com/yourusername/edu-api/internal/domain/repository"
	"github.com/yourusername/edu-api/internal/pkg/access"
	apperrors "github.com/yourusername/edu-api/internal/pkg/errors"
)

// questionVersionTTL - время жизни кеша конкретной версии вопроса.
// Версия неизменна, кеш сбрасывается только при удалении вопроса.
const questionVersionTTL = 30 * time.Minute

// QuestionInput - поля вопроса при создании и правке
type QuestionInput struct {
	Title         *string
	Content       *string
	Options       []string
	CorrectOption *int
}

// QuestionService управляет версионированными вопросами
type QuestionService struct {
	questionRepo repository.QuestionRepository
	testRepo     repository.TestRepository
	attemptRepo  repository.AttemptRepository
	cacheRepo    repository.CacheRepository
}

// NewQuestionService создает новый сервис вопросов. cacheRepo может быть nil.
func NewQuestionService(
	questionRepo repository.QuestionRepository,
	testRepo repository.TestRepository,
	attemptRepo repository.AttemptRepository,
	cacheRepo repository.CacheRepository,
) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		testRepo:     testRepo,
		attemptRepo:  attemptRepo,
		cacheRepo:    cacheRepo,
	}
}

func questionVersionKey(id uint, version int) string {
	return fmt.Sprintf("question:%d:v%d", id, version)
}

func validateQuestion(q *entity.Question) error {
	if strings.TrimSpace(q.Title) == "" {
		return ErrEmptyTitle
	}
	if q.OptionsCount() < 2 || !q.IsValidOption(q.CorrectOption) {
		return ErrInvalidQuestion
	}
	return nil
}

// Create создает первую версию вопроса; нужен quest:create
func (s *QuestionService) Create(ctx context.Context, id access.Identity, input QuestionInput) (*entity.Question, error) {
	if err := authorize(id, access.Require(access.PermQuestCreate), ""); err != nil {
		return nil, err
	}

	question := &entity.Question{AuthorID: id.UserID}
	applyQuestionInput(question, input)
	if err := validateQuestion(question); err != nil {
		return nil, err
	}
	if err := s.questionRepo.Create(ctx, question); err != nil {
		return nil, err
	}
	log.Printf("[QuestionService] Пользователь %s создал вопрос #%d", id.UserID, question.ID)
	return question, nil
}

// Update сохраняет новую версию вопроса. Незаданные поля берутся из последней версии.
// Автор исходного вопроса сохраняется.
func (s *QuestionService) Update(ctx context.Context, id access.Identity, questionID uint, input QuestionInput) (*entity.Question, error) {
	latest, err := s.questionRepo.GetLatest(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if err := authorize(id, access.OwnerOr(access.PermQuestUpdate), latest.AuthorID); err != nil {
		return nil, err
	}

	next := latest.NextVersion()
	applyQuestionInput(next, input)
	if err := validateQuestion(next); err != nil {
		return nil, err
	}
	if err := s.questionRepo.CreateVersion(ctx, next); err != nil {
		return nil, err
	}
	log.Printf("[QuestionService] Вопрос #%d: создана версия %d", next.ID, next.Version)
	return next, nil
}

func applyQuestionInput(q *entity.Question, input QuestionInput) {
	if input.Title != nil {
		q.Title = strings.TrimSpace(*input.Title)
	}
	if input.Content != nil {
		q.Content = *input.Content
	}
	if input.Options != nil {
		q.Options = entity.StringArray(input.Options)
	}
	if input.CorrectOption != nil {
		q.CorrectOption = *input.CorrectOption
	}
}

// canRead: quest:read, автор вопроса или пользователь, получивший вопрос в попытке
func (s *QuestionService) canRead(ctx context.Context, id access.Identity, question *entity.Question) (bool, error) {
	if access.Check(id, access.OwnerOr(access.PermQuestRead), question.AuthorID) {
		return true, nil
	}
	if id.Blocked {
		return false, nil
	}
	return s.attemptRepo.HasAttemptWithQuestion(ctx, id.UserID, question.ID)
}

// GetLatest возвращает актуальную версию вопроса
func (s *QuestionService) GetLatest(ctx context.Context, id access.Identity, questionID uint) (*entity.Question, error) {
	question, err := s.questionRepo.GetLatest(ctx, questionID)
	if err != nil {
		return nil, err
	}
	return s.readable(ctx, id, question)
}

// GetVersion возвращает конкретную версию вопроса, используя кеш
func (s *QuestionService) GetVersion(ctx context.Context, id access.Identity, questionID uint, version int) (*entity.Question, error) {
	question, err := s.cachedVersion(ctx, questionID, version)
	if err != nil {
		return nil, err
	}
	return s.readable(ctx, id, question)
}

func (s *QuestionService) readable(ctx context.Context, id access.Identity, question *entity.Question) (*entity.Question, error) {
	ok, err := s.canRead(ctx, id, question)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("question #%d: %w", question.ID, apperrors.ErrForbidden)
	}
	return question, nil
}

func (s *QuestionService) cachedVersion(ctx context.Context, questionID uint, version int) (*entity.Question, error) {
	key := questionVersionKey(questionID, version)
	if s.cacheRepo != nil {
		var cached entity.Question
		err := s.cacheRepo.GetJSON(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[QuestionService] Ошибка чтения кеша %s: %v", key, err)
		}
	}

	question, err := s.questionRepo.GetVersion(ctx, questionID, version)
	if err != nil {
		return nil, err
	}
	if s.cacheRepo != nil {
		if err := s.cacheRepo.SetJSON(ctx, key, question, questionVersionTTL); err != nil {
			log.Printf("[QuestionService] Ошибка записи кеша %s: %v", key, err)
		}
	}
	return question, nil
}

// List возвращает последние версии вопросов: свои или все при quest:list:read
func (s *QuestionService) List(ctx context.Context, id access.Identity) ([]entity.Question, error) {
	filter := repository.QuestionFilter{AuthorID: id.UserID}
	if access.Check(id, access.Require(access.PermQuestListRead), "") {
		filter.AuthorID = ""
	}
	return s.questionRepo.ListLatest(ctx, filter)
}

// Delete мягко удаляет все версии вопроса, если он не входит ни в один тест
func (s *QuestionService) Delete(ctx context.Context, id access.Identity, questionID uint) error {
	latest, err := s.questionRepo.GetLatest(ctx, questionID)
	if err != nil {
		return err
	}
	if err := authorize(id, access.OwnerOr(access.PermQuestDel), latest.AuthorID); err != nil {
		return err
	}

	used, err := s.testRepo.IsQuestionUsed(ctx, questionID)
	if err != nil {
		return err
	}
	if used {
		return fmt.Errorf("%w: question #%d", repository.ErrQuestionInUse, questionID)
	}
	if err := s.questionRepo.SoftDelete(ctx, questionID); err != nil {
		return err
	}

	if s.cacheRepo != nil {
		keys := make([]string, 0, latest.Version)
		for v := 1; v <= latest.Version; v++ {
			keys = append(keys, questionVersionKey(questionID, v))
		}
		if err := s.cacheRepo.Delete(ctx, keys...); err != nil {
			log.Printf("[QuestionService] Ошибка очистки кеша вопроса #%d: %v", questionID, err)
		}
	}
	log.Printf("[QuestionService] Вопрос #%d удален", questionID)
	return nil
}
