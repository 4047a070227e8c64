package postgres

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/yourusername/edu-api/internal/domain/entity"
	"github.com/yourusername/edu-api/internal/domain/repository"
	apperrors "github.com/yourusername/edu-api/internal/pkg/errors"
)

// Структурные правки применяются только если по тесту нет ни одной попытки.
// Условие проверяется в том же UPDATE, что и сама правка.
const (
	appendQuestionSQL = `
UPDATE tests SET question_ids = array_append(question_ids, ?::int), updated_at = NOW()
WHERE id = ? AND is_deleted = false
  AND NOT (?::int = ANY(question_ids))
  AND NOT EXISTS (SELECT 1 FROM test_attempts WHERE test_id = ?)`

	removeQuestionSQL = `
UPDATE tests SET question_ids = array_remove(question_ids, ?::int), updated_at = NOW()
WHERE id = ? AND is_deleted = false
  AND NOT EXISTS (SELECT 1 FROM test_attempts WHERE test_id = ?)`

	replaceQuestionsSQL = `
UPDATE tests SET question_ids = ?::int[], updated_at = NOW()
WHERE id = ? AND is_deleted = false
  AND NOT EXISTS (SELECT 1 FROM test_attempts WHERE test_id = ?)`

	questionUsedSQL = "SELECT EXISTS (SELECT 1 FROM tests WHERE is_deleted = false AND ?::int = ANY(question_ids))"
)

// TestRepo реализует repository.TestRepository
type TestRepo struct {
	db *gorm.DB
}

// NewTestRepo создает новый репозиторий тестов
func NewTestRepo(db *gorm.DB) *TestRepo {
	return &TestRepo{db: db}
}

// Create создает тест
func (r *TestRepo) Create(ctx context.Context, test *entity.Test) error {
	if test.QuestionIDs == nil {
		test.QuestionIDs = pq.Int64Array{}
	}
	if err := r.db.WithContext(ctx).Create(test).Error; err != nil {
		return wrapDBError(err, "create test")
	}
	return nil
}

// GetByID возвращает тест по ID
func (r *TestRepo) GetByID(ctx context.Context, id uint) (*entity.Test, error) {
	var test entity.Test
	if err := r.db.WithContext(ctx).First(&test, id).Error; err != nil {
		return nil, wrapDBError(err, "get test #%d", id)
	}
	return &test, nil
}

// ListByCourse возвращает неудаленные тесты курса
func (r *TestRepo) ListByCourse(ctx context.Context, courseID uint) ([]entity.Test, error) {
	var tests []entity.Test
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND is_deleted = false", courseID).
		Order("id").
		Find(&tests).Error
	if err != nil {
		return nil, wrapDBError(err, "list tests of course #%d", courseID)
	}
	return tests, nil
}

// ListActiveByStudent возвращает активные тесты курсов, на которые зачислен пользователь
func (r *TestRepo) ListActiveByStudent(ctx context.Context, userID string) ([]entity.Test, error) {
	var tests []entity.Test
	err := r.db.WithContext(ctx).
		Joins("JOIN course_students cs ON cs.course_id = tests.course_id").
		Joins("JOIN courses c ON c.id = tests.course_id AND c.is_deleted = false").
		Where("cs.user_id = ? AND tests.is_active = true AND tests.is_deleted = false", userID).
		Order("tests.id").
		Find(&tests).Error
	if err != nil {
		return nil, wrapDBError(err, "list active tests of user %s", userID)
	}
	return tests, nil
}

// SoftDelete помечает тест удаленным. Попытки не затрагиваются.
func (r *TestRepo) SoftDelete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&entity.Test{}).
		Where("id = ? AND is_deleted = false", id).
		Update("is_deleted", true)
	if result.Error != nil {
		return wrapDBError(result.Error, "delete test #%d", id)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("test #%d: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// SetActive включает или выключает тест
func (r *TestRepo) SetActive(ctx context.Context, id uint, active bool) error {
	result := r.db.WithContext(ctx).Model(&entity.Test{}).
		Where("id = ? AND is_deleted = false", id).
		Update("is_active", active)
	if result.Error != nil {
		return wrapDBError(result.Error, "set activity of test #%d", id)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("test #%d: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// AppendQuestion добавляет вопрос в конец теста
func (r *TestRepo) AppendQuestion(ctx context.Context, testID, questionID uint) error {
	result := r.db.WithContext(ctx).Exec(appendQuestionSQL, questionID, testID, questionID, testID)
	if result.Error != nil {
		return wrapDBError(result.Error, "append question #%d to test #%d", questionID, testID)
	}
	if result.RowsAffected == 1 {
		return nil
	}
	return r.structuralEditFailure(ctx, testID, func(test *entity.Test) error {
		if test.HasQuestion(questionID) {
			return fmt.Errorf("%w: question #%d, test #%d", repository.ErrQuestionAlreadyInTest, questionID, testID)
		}
		return nil
	})
}

// RemoveQuestion удаляет вопрос из теста; отсутствие вопроса не ошибка
func (r *TestRepo) RemoveQuestion(ctx context.Context, testID, questionID uint) error {
	result := r.db.WithContext(ctx).Exec(removeQuestionSQL, questionID, testID, testID)
	if result.Error != nil {
		return wrapDBError(result.Error, "remove question #%d from test #%d", questionID, testID)
	}
	if result.RowsAffected == 1 {
		return nil
	}
	return r.structuralEditFailure(ctx, testID, nil)
}

// ReplaceQuestions заменяет упорядоченный список вопросов
func (r *TestRepo) ReplaceQuestions(ctx context.Context, testID uint, questionIDs []uint) error {
	ids := make(pq.Int64Array, 0, len(questionIDs))
	for _, id := range questionIDs {
		ids = append(ids, int64(id))
	}

	result := r.db.WithContext(ctx).Exec(replaceQuestionsSQL, ids, testID, testID)
	if result.Error != nil {
		return wrapDBError(result.Error, "reorder questions of test #%d", testID)
	}
	if result.RowsAffected == 1 {
		return nil
	}
	return r.structuralEditFailure(ctx, testID, nil)
}

// structuralEditFailure определяет причину, по которой правка состава не затронула строку
func (r *TestRepo) structuralEditFailure(ctx context.Context, testID uint, check func(*entity.Test) error) error {
	var hasAttempts bool
	err := r.db.WithContext(ctx).
		Raw(attemptsExistSQL, testID).
		Scan(&hasAttempts).Error
	if err != nil {
		return wrapDBError(err, "check attempts of test #%d", testID)
	}
	if hasAttempts {
		return fmt.Errorf("%w: test #%d", repository.ErrTestHasAttempts, testID)
	}

	test, err := r.GetByID(ctx, testID)
	if err != nil {
		return err
	}
	if test.IsDeleted {
		return fmt.Errorf("test #%d: %w", testID, apperrors.ErrNotFound)
	}
	if check != nil {
		if err := check(test); err != nil {
			return err
		}
	}
	return fmt.Errorf("test #%d was not modified", testID)
}

// IsQuestionUsed проверяет, входит ли вопрос в какой-либо неудаленный тест
func (r *TestRepo) IsQuestionUsed(ctx context.Context, questionID uint) (bool, error) {
	var used bool
	err := r.db.WithContext(ctx).
		Raw(questionUsedSQL, questionID).
		Scan(&used).Error
	if err != nil {
		return false, wrapDBError(err, "check usage of question #%d", questionID)
	}
	return used, nil
}

var _ repository.TestRepository = (*TestRepo)(nil)
