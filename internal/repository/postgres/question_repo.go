package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/edu-api/internal/domain/entity"
	"github.com/yourusername/edu-api/internal/domain/repository"
	apperrors "github.com/yourusername/edu-api/internal/pkg/errors"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// Create сохраняет первую версию вопроса. ID берется из последовательности questions_id_seq.
func (r *QuestionRepo) Create(ctx context.Context, question *entity.Question) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var id uint
		if err := tx.Raw("SELECT nextval('questions_id_seq')").Scan(&id).Error; err != nil {
			return wrapDBError(err, "allocate question id")
		}
		question.ID = id
		question.Version = 1
		if err := tx.Create(question).Error; err != nil {
			return wrapDBError(err, "create question")
		}
		return nil
	})
}

// CreateVersion сохраняет новую версию вопроса с номером max(version)+1
func (r *QuestionRepo) CreateVersion(ctx context.Context, question *entity.Question) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxVersion int
		err := tx.Raw("SELECT COALESCE(MAX(version), 0) FROM questions WHERE id = ? AND is_deleted = false", question.ID).
			Scan(&maxVersion).Error
		if err != nil {
			return wrapDBError(err, "get version of question #%d", question.ID)
		}
		if maxVersion == 0 {
			return fmt.Errorf("question #%d: %w", question.ID, apperrors.ErrNotFound)
		}

		question.Version = maxVersion + 1
		if err := tx.Create(question).Error; err != nil {
			if isUniqueViolation(err) {
				// Параллельная правка уже заняла этот номер версии
				return fmt.Errorf("question #%d version %d: %w", question.ID, question.Version, apperrors.ErrConflict)
			}
			return wrapDBError(err, "create version of question #%d", question.ID)
		}
		return nil
	})
}

// GetLatest возвращает актуальную (старшую) версию вопроса
func (r *QuestionRepo) GetLatest(ctx context.Context, id uint) (*entity.Question, error) {
	var question entity.Question
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = false", id).
		Order("version DESC").
		Take(&question).Error
	if err != nil {
		return nil, wrapDBError(err, "get question #%d", id)
	}
	return &question, nil
}

// GetVersion возвращает конкретную версию вопроса
func (r *QuestionRepo) GetVersion(ctx context.Context, id uint, version int) (*entity.Question, error) {
	var question entity.Question
	err := r.db.WithContext(ctx).
		Where("id = ? AND version = ? AND is_deleted = false", id, version).
		Take(&question).Error
	if err != nil {
		return nil, wrapDBError(err, "get question #%d version %d", id, version)
	}
	return &question, nil
}

// ListLatest возвращает последние версии всех неудаленных вопросов
func (r *QuestionRepo) ListLatest(ctx context.Context, filter repository.QuestionFilter) ([]entity.Question, error) {
	sql := "SELECT DISTINCT ON (id) * FROM questions WHERE is_deleted = false"
	args := []interface{}{}
	if filter.AuthorID != "" {
		sql += " AND author_id = ?"
		args = append(args, filter.AuthorID)
	}
	sql += " ORDER BY id, version DESC"

	var questions []entity.Question
	if err := r.db.WithContext(ctx).Raw(sql, args...).Scan(&questions).Error; err != nil {
		return nil, wrapDBError(err, "list questions")
	}
	return questions, nil
}

// SoftDelete помечает удаленными все версии вопроса
func (r *QuestionRepo) SoftDelete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&entity.Question{}).
		Where("id = ? AND is_deleted = false", id).
		Update("is_deleted", true)
	if result.Error != nil {
		return wrapDBError(result.Error, "delete question #%d", id)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("question #%d: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

var _ repository.QuestionRepository = (*QuestionRepo)(nil)
