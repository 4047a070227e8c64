package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/edu-api/internal/domain/entity"
	"github.com/yourusername/edu-api/internal/domain/repository"
	apperrors "github.com/yourusername/edu-api/internal/pkg/errors"
)

// startAttemptSQL создает попытку одним выражением: снимок вопросов берется из
// той же строки теста, а уникальный индекс (user_id, test_id) отсекает дубликаты.
const startAttemptSQL = `
INSERT INTO test_attempts (user_id, test_id, questions_snapshot, user_answers, status, score, created_at, updated_at)
SELECT ?, t.id, to_jsonb(t.question_ids),
       COALESCE((SELECT jsonb_object_agg(q_id::text, -1) FROM unnest(t.question_ids) AS q_id), '{}'::jsonb),
       ?, 0, NOW(), NOW()
FROM tests t
WHERE t.id = ? AND t.is_deleted = false AND t.is_active = true
ON CONFLICT (user_id, test_id) DO NOTHING
RETURNING id`

const (
	attemptsExistSQL      = "SELECT EXISTS (SELECT 1 FROM test_attempts WHERE test_id = ?)"
	questionInAttemptsSQL = "SELECT EXISTS (SELECT 1 FROM test_attempts WHERE user_id = ? AND questions_snapshot @> jsonb_build_array(?::int))"
)

// saveAnswerSQL дописывает ответ в user_answers и сдвигает балл на delta.
// Ключ JSON передается строкой: integer не кодируется в параметр типа text.
const saveAnswerSQL = `
UPDATE test_attempts
SET user_answers = user_answers || jsonb_build_object(?::text, ?::int),
    score = score + ?::float8,
    updated_at = ?
WHERE id = ? AND status = ?`

func saveAnswerArgs(attemptID, questionID uint, answerIndex int, delta float64, now time.Time) []interface{} {
	return []interface{}{
		strconv.FormatUint(uint64(questionID), 10),
		answerIndex,
		delta,
		now,
		attemptID,
		entity.AttemptStatusInProgress,
	}
}

// AttemptRepo реализует repository.AttemptRepository
type AttemptRepo struct {
	db *gorm.DB
}

// NewAttemptRepo создает новый репозиторий попыток
func NewAttemptRepo(db *gorm.DB) *AttemptRepo {
	return &AttemptRepo{db: db}
}

// Start атомарно создает попытку
func (r *AttemptRepo) Start(ctx context.Context, testID uint, userID string) (uint, error) {
	var inserted []struct{ ID uint }
	err := r.db.WithContext(ctx).
		Raw(startAttemptSQL, userID, entity.AttemptStatusInProgress, testID).
		Scan(&inserted).Error
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: user %s, test #%d", repository.ErrAttemptExists, userID, testID)
		}
		return 0, wrapDBError(err, "start attempt for test #%d", testID)
	}

	if len(inserted) == 1 {
		return inserted[0].ID, nil
	}
	return 0, r.startFailureReason(ctx, testID, userID)
}

// startFailureReason выясняет, почему INSERT ... ON CONFLICT DO NOTHING не вставил строку
func (r *AttemptRepo) startFailureReason(ctx context.Context, testID uint, userID string) error {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Attempt{}).
		Where("user_id = ? AND test_id = ?", userID, testID).
		Count(&count).Error
	if err != nil {
		return wrapDBError(err, "check attempt for test #%d", testID)
	}
	if count > 0 {
		return fmt.Errorf("%w: user %s, test #%d", repository.ErrAttemptExists, userID, testID)
	}

	var test entity.Test
	err = r.db.WithContext(ctx).Select("id, is_active, is_deleted").First(&test, testID).Error
	if err != nil {
		return wrapDBError(err, "get test #%d", testID)
	}
	if test.IsDeleted {
		return fmt.Errorf("test #%d: %w", testID, apperrors.ErrNotFound)
	}
	if !test.IsActive {
		return fmt.Errorf("%w: test #%d", repository.ErrTestInactive, testID)
	}
	return fmt.Errorf("attempt for test #%d was not created", testID)
}

// SaveAnswer записывает ответ под блокировкой строки попытки.
// Правильный вариант берется из последней версии вопроса.
func (r *AttemptRepo) SaveAnswer(ctx context.Context, attemptID, questionID uint, answerIndex int) (*repository.AnswerChange, error) {
	var change repository.AnswerChange

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var question entity.Question
		err := tx.Select("id, version, correct_option").
			Where("id = ? AND is_deleted = false", questionID).
			Order("version DESC").
			Take(&question).Error
		if err != nil {
			return wrapDBError(err, "get question #%d", questionID)
		}

		var attempt entity.Attempt
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&attempt, attemptID).Error
		if err != nil {
			return wrapDBError(err, "lock attempt #%d", attemptID)
		}

		delta, ok := attempt.ApplyAnswer(questionID, answerIndex, question.CorrectOption)
		if !ok {
			return fmt.Errorf("%w: attempt #%d", repository.ErrAttemptNotInProgress, attemptID)
		}

		result := tx.Exec(saveAnswerSQL, saveAnswerArgs(attemptID, questionID, answerIndex, delta, time.Now())...)
		if result.Error != nil {
			return wrapDBError(result.Error, "save answer for attempt #%d", attemptID)
		}
		if result.RowsAffected != 1 {
			return fmt.Errorf("%w: attempt #%d", repository.ErrAttemptNotInProgress, attemptID)
		}

		change = repository.AnswerChange{Delta: delta, Score: attempt.Score}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &change, nil
}

// Complete переводит попытку в completed
func (r *AttemptRepo) Complete(ctx context.Context, attemptID uint) error {
	result := r.db.WithContext(ctx).Model(&entity.Attempt{}).
		Where("id = ? AND status = ?", attemptID, entity.AttemptStatusInProgress).
		Updates(map[string]interface{}{
			"status":     entity.AttemptStatusCompleted,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return wrapDBError(result.Error, "complete attempt #%d", attemptID)
	}
	if result.RowsAffected == 1 {
		return nil
	}

	if _, err := r.GetByID(ctx, attemptID); err != nil {
		return err
	}
	return fmt.Errorf("%w: attempt #%d", repository.ErrAttemptNotInProgress, attemptID)
}

// CompleteAllInProgress завершает все активные попытки теста одним UPDATE
func (r *AttemptRepo) CompleteAllInProgress(ctx context.Context, testID uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.Attempt{}).
		Where("test_id = ? AND status = ?", testID, entity.AttemptStatusInProgress).
		Updates(map[string]interface{}{
			"status":     entity.AttemptStatusCompleted,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, wrapDBError(result.Error, "complete attempts of test #%d", testID)
	}
	return result.RowsAffected, nil
}

// InProgressUserIDs возвращает пользователей с незавершенными попытками
func (r *AttemptRepo) InProgressUserIDs(ctx context.Context, testID uint) ([]string, error) {
	var userIDs []string
	err := r.db.WithContext(ctx).Model(&entity.Attempt{}).
		Where("test_id = ? AND status = ?", testID, entity.AttemptStatusInProgress).
		Order("user_id").
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, wrapDBError(err, "list in-progress users of test #%d", testID)
	}
	return userIDs, nil
}

// ExistsForTest проверяет наличие хотя бы одной попытки
func (r *AttemptRepo) ExistsForTest(ctx context.Context, testID uint) (bool, error) {
	var exists bool
	err := r.db.WithContext(ctx).
		Raw(attemptsExistSQL, testID).
		Scan(&exists).Error
	if err != nil {
		return false, wrapDBError(err, "check attempts of test #%d", testID)
	}
	return exists, nil
}

// IsOwnedBy проверяет, принадлежит ли попытка пользователю
func (r *AttemptRepo) IsOwnedBy(ctx context.Context, attemptID uint, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Attempt{}).
		Where("id = ? AND user_id = ?", attemptID, userID).
		Count(&count).Error
	if err != nil {
		return false, wrapDBError(err, "check owner of attempt #%d", attemptID)
	}
	return count > 0, nil
}

// HasAttemptWithQuestion проверяет наличие вопроса в снимках попыток пользователя
func (r *AttemptRepo) HasAttemptWithQuestion(ctx context.Context, userID string, questionID uint) (bool, error) {
	var exists bool
	err := r.db.WithContext(ctx).
		Raw(questionInAttemptsSQL, userID, questionID).
		Scan(&exists).Error
	if err != nil {
		return false, wrapDBError(err, "check question #%d in attempts of user %s", questionID, userID)
	}
	return exists, nil
}

// GetByID возвращает попытку по ID
func (r *AttemptRepo) GetByID(ctx context.Context, attemptID uint) (*entity.Attempt, error) {
	var attempt entity.Attempt
	if err := r.db.WithContext(ctx).First(&attempt, attemptID).Error; err != nil {
		return nil, wrapDBError(err, "get attempt #%d", attemptID)
	}
	return &attempt, nil
}

// GetByUserAndTest возвращает попытку пользователя по тесту
func (r *AttemptRepo) GetByUserAndTest(ctx context.Context, userID string, testID uint) (*entity.Attempt, error) {
	var attempt entity.Attempt
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND test_id = ?", userID, testID).
		Take(&attempt).Error
	if err != nil {
		return nil, wrapDBError(err, "get attempt of user %s for test #%d", userID, testID)
	}
	return &attempt, nil
}

// Scores возвращает баллы завершенных попыток
func (r *AttemptRepo) Scores(ctx context.Context, testID uint, filter repository.AttemptFilter) ([]entity.UserScore, error) {
	query := r.db.WithContext(ctx).Model(&entity.Attempt{}).
		Select("user_id, score").
		Where("test_id = ? AND status = ?", testID, entity.AttemptStatusCompleted)
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}

	var scores []entity.UserScore
	if err := query.Order("score DESC, user_id").Scan(&scores).Error; err != nil {
		return nil, wrapDBError(err, "get scores of test #%d", testID)
	}
	return scores, nil
}

// Answers возвращает ответы попыток теста в любом статусе
func (r *AttemptRepo) Answers(ctx context.Context, testID uint, filter repository.AttemptFilter) ([]entity.AttemptAnswers, error) {
	query := r.db.WithContext(ctx).Where("test_id = ?", testID)
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}

	var attempts []entity.Attempt
	if err := query.Order("id").Find(&attempts).Error; err != nil {
		return nil, wrapDBError(err, "get answers of test #%d", testID)
	}

	result := make([]entity.AttemptAnswers, 0, len(attempts))
	for _, a := range attempts {
		result = append(result, entity.AttemptAnswers{
			AttemptID: a.ID,
			UserID:    a.UserID,
			Status:    a.Status,
			Answers:   a.UserAnswers,
		})
	}
	return result, nil
}

// PassedUserIDs возвращает пользователей, завершивших тест
func (r *AttemptRepo) PassedUserIDs(ctx context.Context, testID uint) ([]string, error) {
	var userIDs []string
	err := r.db.WithContext(ctx).Model(&entity.Attempt{}).
		Distinct("user_id").
		Where("test_id = ? AND status = ?", testID, entity.AttemptStatusCompleted).
		Order("user_id").
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, wrapDBError(err, "get passed users of test #%d", testID)
	}
	return userIDs, nil
}

// GradesByUser возвращает оценки пользователя по всем тестам
func (r *AttemptRepo) GradesByUser(ctx context.Context, userID string) ([]entity.Grade, error) {
	var grades []entity.Grade
	err := r.db.WithContext(ctx).
		Table("test_attempts AS a").
		Select("a.test_id, t.title AS test_title, t.course_id, a.score, a.status, a.updated_at").
		Joins("JOIN tests t ON t.id = a.test_id").
		Where("a.user_id = ?", userID).
		Order("a.updated_at DESC").
		Scan(&grades).Error
	if err != nil {
		return nil, wrapDBError(err, "get grades of user %s", userID)
	}
	return grades, nil
}

var _ repository.AttemptRepository = (*AttemptRepo)(nil)
