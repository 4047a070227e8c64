package dto

import (
	"time"

	"github.com/yourusername/edu-api/internal/domain/entity"
	"github.com/yourusername/edu-api/internal/handler/helper"
	"github.com/yourusername/edu-api/internal/service"
)

// QuestionRequest - полная версия вопроса (POST и PUT)
type QuestionRequest struct {
	Title         string   `json:"title" binding:"required,max=255"`
	Content       string   `json:"content" binding:"omitempty,max=10000"`
	Options       []string `json:"options" binding:"required,min=2,max=20,dive,max=1000"`
	CorrectOption *int     `json:"correct_option" binding:"required,min=0"`
}

// ToInput преобразует запрос во входные данные сервиса
func (r QuestionRequest) ToInput() service.QuestionInput {
	return service.QuestionInput{
		Title:         &r.Title,
		Content:       &r.Content,
		Options:       r.Options,
		CorrectOption: r.CorrectOption,
	}
}

// QuestionPatchRequest - частичная правка (PATCH); незаданные поля берутся из последней версии
type QuestionPatchRequest struct {
	Title         *string  `json:"title" binding:"omitempty,max=255"`
	Content       *string  `json:"content" binding:"omitempty,max=10000"`
	Options       []string `json:"options" binding:"omitempty,min=2,max=20,dive,max=1000"`
	CorrectOption *int     `json:"correct_option" binding:"omitempty,min=0"`
}

// ToInput преобразует запрос во входные данные сервиса
func (r QuestionPatchRequest) ToInput() service.QuestionInput {
	return service.QuestionInput{
		Title:         r.Title,
		Content:       r.Content,
		Options:       r.Options,
		CorrectOption: r.CorrectOption,
	}
}

// QuestionResponse представляет версию вопроса в формате для ответа клиенту
type QuestionResponse struct {
	ID            uint                    `json:"id"`
	Version       int                     `json:"version"`
	AuthorID      string                  `json:"author_id"`
	Title         string                  `json:"title"`
	Content       string                  `json:"content"`
	Options       []helper.QuestionOption `json:"options"`
	CorrectOption *int                    `json:"correct_option,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
}

// NewQuestionResponse создает DTO для вопроса.
// Правильный ответ отдается только при includeAnswer (автор или проверяющий).
func NewQuestionResponse(q *entity.Question, includeAnswer bool) *QuestionResponse {
	resp := &QuestionResponse{
		ID:        q.ID,
		Version:   q.Version,
		AuthorID:  q.AuthorID,
		Title:     q.Title,
		Content:   q.Content,
		Options:   helper.ConvertOptionsToObjects(q.Options),
		CreatedAt: q.CreatedAt,
	}
	if includeAnswer {
		correct := q.CorrectOption
		resp.CorrectOption = &correct
	}
	return resp
}
