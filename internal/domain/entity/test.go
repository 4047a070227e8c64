package entity

import (
	"time"

	"github.com/lib/pq"
)

// Test представляет тест внутри курса.
// QuestionIDs хранит упорядоченный список идентификаторов вопросов (integer[]).
type Test struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	CourseID    uint          `gorm:"not null;index" json:"course_id"`
	Title       string        `gorm:"size:255;not null" json:"title"`
	IsActive    bool          `gorm:"not null;default:false" json:"is_active"`
	IsDeleted   bool          `gorm:"not null;default:false" json:"-"`
	QuestionIDs pq.Int64Array `gorm:"type:integer[];not null;default:'{}'" json:"question_ids"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Test) TableName() string {
	return "tests"
}

// IsAvailable проверяет, что тест существует и не удален
func (t *Test) IsAvailable() bool {
	return t != nil && !t.IsDeleted
}

// HasQuestion проверяет, входит ли вопрос в тест
func (t *Test) HasQuestion(questionID uint) bool {
	for _, id := range t.QuestionIDs {
		if uint(id) == questionID {
			return true
		}
	}
	return false
}

// QuestionIDList возвращает идентификаторы вопросов в порядке теста
func (t *Test) QuestionIDList() []uint {
	ids := make([]uint, 0, len(t.QuestionIDs))
	for _, id := range t.QuestionIDs {
		ids = append(ids, uint(id))
	}
	return ids
}

// IsPermutationOf проверяет, что ids содержит ровно те же вопросы, что и тест
func (t *Test) IsPermutationOf(ids []uint) bool {
	if len(ids) != len(t.QuestionIDs) {
		return false
	}
	counts := make(map[uint]int, len(ids))
	for _, id := range t.QuestionIDs {
		counts[uint(id)]++
	}
	for _, id := range ids {
		if counts[id] == 0 {
			return false
		}
		counts[id]--
	}
	return true
}
