package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray
func (o *StringArray) Scan(value interface{}) error {
	if value == nil {
		*o = StringArray{}
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
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
func (o StringArray) Value() (driver.Value, error) {
	if len(o) == 0 {
		return []byte("[]"), nil // Пустой JSON массив вместо null
	}
	return json.Marshal(o)
}

// Question представляет одну версию вопроса.
// Вопрос никогда не изменяется на месте: правка добавляет строку с тем же ID
// и версией max(version)+1. Актуальной считается старшая версия.
type Question struct {
	ID            uint        `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Version       int         `gorm:"primaryKey;autoIncrement:false" json:"version"`
	AuthorID      string      `gorm:"size:64;not null;index" json:"author_id"`
	Title         string      `gorm:"size:255;not null" json:"title"`
	Content       string      `gorm:"type:text;not null;default:''" json:"content"`
	Options       StringArray `gorm:"type:jsonb;not null" json:"options"`
	CorrectOption int         `gorm:"not null" json:"correct_option"`
	IsDeleted     bool        `gorm:"not null;default:false" json:"-"`
	CreatedAt     time.Time   `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// IsCorrect проверяет, является ли выбранный вариант правильным
func (q *Question) IsCorrect(selectedOption int) bool {
	return selectedOption != AnswerUnanswered && selectedOption == q.CorrectOption
}

// OptionsCount возвращает количество вариантов ответа
func (q *Question) OptionsCount() int {
	return len(q.Options)
}

// IsValidOption проверяет, является ли выбранный вариант допустимым
func (q *Question) IsValidOption(selectedOption int) bool {
	return selectedOption >= 0 && selectedOption < len(q.Options)
}

// NextVersion возвращает копию вопроса для следующей версии
func (q *Question) NextVersion() *Question {
	next := *q
	next.Version = q.Version + 1
	next.Options = append(StringArray(nil), q.Options...)
	next.CreatedAt = time.Time{}
	return &next
}
