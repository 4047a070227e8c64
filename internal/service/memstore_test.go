package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/lib/pq"

	"github.com/yourusername/edu-api/internal/domain/entity"
	"github.com/yourusername/edu-api/internal/domain/repository"
	apperrors "github.com/yourusername/edu-api/internal/pkg/errors"
)

// memStore - хранилище в памяти с теми же гарантиями атомарности,
// что и postgres-репозитории: каждая операция выполняется под одной блокировкой.
type memStore struct {
	mu            sync.Mutex
	tests         map[uint]*entity.Test
	correct       map[uint]int // ID вопроса -> правильный вариант последней версии
	attempts      map[uint]*entity.Attempt
	nextTestID    uint
	nextAttemptID uint
}

func newMemStore() *memStore {
	return &memStore{
		tests:    make(map[uint]*entity.Test),
		correct:  make(map[uint]int),
		attempts: make(map[uint]*entity.Attempt),
	}
}

// setCorrect имитирует создание новой версии вопроса
func (s *memStore) setCorrect(questionID uint, option int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.correct[questionID] = option
}

func (s *memStore) hasAttemptsLocked(testID uint) bool {
	for _, a := range s.attempts {
		if a.TestID == testID {
			return true
		}
	}
	return false
}

func (s *memStore) liveTestLocked(testID uint) (*entity.Test, error) {
	test, ok := s.tests[testID]
	if !ok || test.IsDeleted {
		return nil, fmt.Errorf("test #%d: %w", testID, apperrors.ErrNotFound)
	}
	return test, nil
}

// memAttemptRepo реализует repository.AttemptRepository поверх memStore
type memAttemptRepo struct {
	store *memStore
}

func (r *memAttemptRepo) Start(_ context.Context, testID uint, userID string) (uint, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	test, err := s.liveTestLocked(testID)
	if err != nil {
		return 0, err
	}
	if !test.IsActive {
		return 0, repository.ErrTestInactive
	}
	for _, a := range s.attempts {
		if a.TestID == testID && a.UserID == userID {
			return 0, repository.ErrAttemptExists
		}
	}

	s.nextAttemptID++
	attempt := entity.NewAttempt(userID, test)
	attempt.ID = s.nextAttemptID
	s.attempts[attempt.ID] = attempt
	return attempt.ID, nil
}

func (r *memAttemptRepo) SaveAnswer(_ context.Context, attemptID, questionID uint, answerIndex int) (*repository.AnswerChange, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	correct, ok := s.correct[questionID]
	if !ok {
		return nil, fmt.Errorf("question #%d: %w", questionID, apperrors.ErrNotFound)
	}
	attempt, ok := s.attempts[attemptID]
	if !ok {
		return nil, fmt.Errorf("attempt #%d: %w", attemptID, apperrors.ErrNotFound)
	}
	delta, ok := attempt.ApplyAnswer(questionID, answerIndex, correct)
	if !ok {
		return nil, repository.ErrAttemptNotInProgress
	}
	return &repository.AnswerChange{Delta: delta, Score: attempt.Score}, nil
}

func (r *memAttemptRepo) Complete(_ context.Context, attemptID uint) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	attempt, ok := s.attempts[attemptID]
	if !ok {
		return fmt.Errorf("attempt #%d: %w", attemptID, apperrors.ErrNotFound)
	}
	if !attempt.Complete() {
		return repository.ErrAttemptNotInProgress
	}
	return nil
}

func (r *memAttemptRepo) CompleteAllInProgress(_ context.Context, testID uint) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, a := range s.attempts {
		if a.TestID == testID && a.Complete() {
			count++
		}
	}
	return count, nil
}

func (r *memAttemptRepo) InProgressUserIDs(_ context.Context, testID uint) ([]string, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for _, a := range s.attempts {
		if a.TestID == testID && a.IsInProgress() {
			ids = append(ids, a.UserID)
		}
	}
	return ids, nil
}

func (r *memAttemptRepo) ExistsForTest(_ context.Context, testID uint) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasAttemptsLocked(testID), nil
}

func (r *memAttemptRepo) IsOwnedBy(_ context.Context, attemptID uint, userID string) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt, ok := s.attempts[attemptID]
	return ok && attempt.UserID == userID, nil
}

func (r *memAttemptRepo) HasAttemptWithQuestion(_ context.Context, userID string, questionID uint) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.attempts {
		if a.UserID != userID {
			continue
		}
		for _, id := range a.QuestionsSnapshot {
			if id == questionID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *memAttemptRepo) GetByID(_ context.Context, attemptID uint) (*entity.Attempt, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt, ok := s.attempts[attemptID]
	if !ok {
		return nil, fmt.Errorf("attempt #%d: %w", attemptID, apperrors.ErrNotFound)
	}
	copied := *attempt
	return &copied, nil
}

func (r *memAttemptRepo) GetByUserAndTest(_ context.Context, userID string, testID uint) (*entity.Attempt, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.attempts {
		if a.UserID == userID && a.TestID == testID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("attempt of %s for test #%d: %w", userID, testID, apperrors.ErrNotFound)
}

func (r *memAttemptRepo) Scores(_ context.Context, testID uint, filter repository.AttemptFilter) ([]entity.UserScore, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var scores []entity.UserScore
	for _, a := range s.attempts {
		if a.TestID != testID || !a.IsCompleted() {
			continue
		}
		if filter.UserID != "" && a.UserID != filter.UserID {
			continue
		}
		scores = append(scores, entity.UserScore{UserID: a.UserID, Score: a.Score})
	}
	return scores, nil
}

func (r *memAttemptRepo) Answers(_ context.Context, testID uint, filter repository.AttemptFilter) ([]entity.AttemptAnswers, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var answers []entity.AttemptAnswers
	for _, a := range s.attempts {
		if a.TestID != testID {
			continue
		}
		if filter.UserID != "" && a.UserID != filter.UserID {
			continue
		}
		answers = append(answers, entity.AttemptAnswers{
			AttemptID: a.ID,
			UserID:    a.UserID,
			Status:    a.Status,
			Answers:   a.UserAnswers,
		})
	}
	return answers, nil
}

func (r *memAttemptRepo) PassedUserIDs(_ context.Context, testID uint) ([]string, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, a := range s.attempts {
		if a.TestID == testID && a.IsCompleted() {
			ids = append(ids, a.UserID)
		}
	}
	return ids, nil
}

func (r *memAttemptRepo) GradesByUser(_ context.Context, userID string) ([]entity.Grade, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var grades []entity.Grade
	for _, a := range s.attempts {
		if a.UserID != userID {
			continue
		}
		test := s.tests[a.TestID]
		grades = append(grades, entity.Grade{
			TestID:    a.TestID,
			TestTitle: test.Title,
			CourseID:  test.CourseID,
			Score:     a.Score,
			Status:    a.Status,
			UpdatedAt: a.UpdatedAt,
		})
	}
	return grades, nil
}

// memTestRepo реализует repository.TestRepository поверх memStore
type memTestRepo struct {
	store *memStore
}

func (r *memTestRepo) Create(_ context.Context, test *entity.Test) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTestID++
	test.ID = s.nextTestID
	if test.QuestionIDs == nil {
		test.QuestionIDs = pq.Int64Array{}
	}
	stored := *test
	s.tests[test.ID] = &stored
	return nil
}

func (r *memTestRepo) GetByID(_ context.Context, id uint) (*entity.Test, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	test, ok := s.tests[id]
	if !ok {
		return nil, fmt.Errorf("test #%d: %w", id, apperrors.ErrNotFound)
	}
	copied := *test
	copied.QuestionIDs = append(pq.Int64Array{}, test.QuestionIDs...)
	return &copied, nil
}

func (r *memTestRepo) ListByCourse(_ context.Context, courseID uint) ([]entity.Test, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var tests []entity.Test
	for _, t := range s.tests {
		if t.CourseID == courseID && !t.IsDeleted {
			tests = append(tests, *t)
		}
	}
	return tests, nil
}

func (r *memTestRepo) ListActiveByStudent(_ context.Context, _ string) ([]entity.Test, error) {
	return nil, nil
}

func (r *memTestRepo) SoftDelete(_ context.Context, id uint) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	test, err := s.liveTestLocked(id)
	if err != nil {
		return err
	}
	test.IsDeleted = true
	return nil
}

func (r *memTestRepo) SetActive(_ context.Context, id uint, active bool) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	test, err := s.liveTestLocked(id)
	if err != nil {
		return err
	}
	test.IsActive = active
	return nil
}

// structuralEdit применяет изменение состава, только если по тесту нет попыток
func (r *memTestRepo) structuralEdit(testID uint, edit func(test *entity.Test) error) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	test, err := s.liveTestLocked(testID)
	if err != nil {
		return err
	}
	if s.hasAttemptsLocked(testID) {
		return repository.ErrTestHasAttempts
	}
	return edit(test)
}

func (r *memTestRepo) AppendQuestion(_ context.Context, testID, questionID uint) error {
	return r.structuralEdit(testID, func(test *entity.Test) error {
		if test.HasQuestion(questionID) {
			return repository.ErrQuestionAlreadyInTest
		}
		test.QuestionIDs = append(test.QuestionIDs, int64(questionID))
		return nil
	})
}

func (r *memTestRepo) RemoveQuestion(_ context.Context, testID, questionID uint) error {
	return r.structuralEdit(testID, func(test *entity.Test) error {
		kept := pq.Int64Array{}
		for _, id := range test.QuestionIDs {
			if uint(id) != questionID {
				kept = append(kept, id)
			}
		}
		test.QuestionIDs = kept
		return nil
	})
}

func (r *memTestRepo) ReplaceQuestions(_ context.Context, testID uint, questionIDs []uint) error {
	return r.structuralEdit(testID, func(test *entity.Test) error {
		replaced := make(pq.Int64Array, 0, len(questionIDs))
		for _, id := range questionIDs {
			replaced = append(replaced, int64(id))
		}
		test.QuestionIDs = replaced
		return nil
	})
}

func (r *memTestRepo) IsQuestionUsed(_ context.Context, questionID uint) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tests {
		if !t.IsDeleted && t.HasQuestion(questionID) {
			return true, nil
		}
	}
	return false, nil
}

var (
	_ repository.AttemptRepository = (*memAttemptRepo)(nil)
	_ repository.TestRepository    = (*memTestRepo)(nil)
)
