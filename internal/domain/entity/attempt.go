package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
)

// Константы статусов попытки
const (
	AttemptStatusInProgress = "in_progress"
	AttemptStatusCompleted  = "completed"
)

// AnswerUnanswered - значение "ответ не выбран или сброшен"
const AnswerUnanswered = -1

// AnswerMap хранит выбранные ответы попытки: ID вопроса -> индекс варианта.
// В БД хранится как JSONB-объект с ключами-строками.
type AnswerMap map[uint]int

// Scan реализует интерфейс sql.Scanner для AnswerMap
func (m *AnswerMap) Scan(value interface{}) error {
	if value == nil {
		*m = AnswerMap{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*m = AnswerMap{}
		return nil
	}

	result := AnswerMap{}
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}
	*m = result
	return nil
}

// Value реализует интерфейс driver.Valuer для AnswerMap
func (m AnswerMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(map[uint]int(m))
}

// Get возвращает ответ на вопрос; отсутствующий ключ считается неотвеченным
func (m AnswerMap) Get(questionID uint) int {
	if answer, ok := m[questionID]; ok {
		return answer
	}
	return AnswerUnanswered
}

// Attempt - единственная попытка пользователя пройти тест
type Attempt struct {
	ID                uint                     `gorm:"primaryKey" json:"id"`
	UserID            string                   `gorm:"size:64;not null;uniqueIndex:idx_attempt_user_test" json:"user_id"`
	TestID            uint                     `gorm:"not null;uniqueIndex:idx_attempt_user_test;index" json:"test_id"`
	QuestionsSnapshot datatypes.JSONSlice[uint] `gorm:"type:jsonb;not null" json:"questions_snapshot"`
	UserAnswers       AnswerMap                `gorm:"type:jsonb;not null" json:"user_answers"`
	Score             float64                  `gorm:"not null;default:0" json:"score"`
	Status            string                   `gorm:"size:20;not null;default:'in_progress';index" json:"status"`
	CreatedAt         time.Time                `json:"created_at"`
	UpdatedAt         time.Time                `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Attempt) TableName() string {
	return "test_attempts"
}

// IsInProgress проверяет, можно ли еще менять ответы
func (a *Attempt) IsInProgress() bool {
	return a.Status == AttemptStatusInProgress
}

// IsCompleted проверяет, завершена ли попытка
func (a *Attempt) IsCompleted() bool {
	return a.Status == AttemptStatusCompleted
}

// ScoreDelta вычисляет изменение счета при замене ответа previous на next.
// +1 при переходе к правильному ответу, -1 при уходе с правильного, иначе 0.
func ScoreDelta(previous, next, correctOption int) float64 {
	wasCorrect := previous != AnswerUnanswered && previous == correctOption
	isCorrect := next != AnswerUnanswered && next == correctOption

	switch {
	case !wasCorrect && isCorrect:
		return 1
	case wasCorrect && !isCorrect:
		return -1
	default:
		return 0
	}
}

// ApplyAnswer записывает ответ и применяет дельту к счету.
// Возвращает false, если попытка уже не in_progress.
func (a *Attempt) ApplyAnswer(questionID uint, answerIndex, correctOption int) (float64, bool) {
	if !a.IsInProgress() {
		return 0, false
	}
	if a.UserAnswers == nil {
		a.UserAnswers = AnswerMap{}
	}

	delta := ScoreDelta(a.UserAnswers.Get(questionID), answerIndex, correctOption)
	a.UserAnswers[questionID] = answerIndex
	a.Score += delta
	return delta, true
}

// Complete переводит попытку в completed. Повторный вызов возвращает false.
func (a *Attempt) Complete() bool {
	if !a.IsInProgress() {
		return false
	}
	a.Status = AttemptStatusCompleted
	return true
}

// NewAttempt создает попытку со снимком вопросов теста
func NewAttempt(userID string, test *Test) *Attempt {
	snapshot := test.QuestionIDList()
	answers := make(AnswerMap, len(snapshot))
	for _, id := range snapshot {
		answers[id] = AnswerUnanswered
	}
	return &Attempt{
		UserID:            userID,
		TestID:            test.ID,
		QuestionsSnapshot: datatypes.JSONSlice[uint](snapshot),
		UserAnswers:       answers,
		Score:             0,
		Status:            AttemptStatusInProgress,
	}
}
