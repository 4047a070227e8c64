package dto

import (
	"github.com/yourusername/edu-api/internal/domain/entity"
)

// SubmitAnswerRequest - ответ на вопрос в рамках попытки (POST /attempts/:id/answers)
type SubmitAnswerRequest struct {
	QuestionID  uint `json:"question_id" binding:"required"`
	AnswerIndex *int `json:"answer_index" binding:"required,min=-1"`
}

// ChangeAnswerRequest - изменение ответа (PATCH /attempts/:id/questions/:qid/answer)
type ChangeAnswerRequest struct {
	AnswerIndex *int `json:"answer_index" binding:"required,min=-1"`
}

// StartAttemptResponse - результат старта попытки
type StartAttemptResponse struct {
	AttemptID uint `json:"attempt_id"`
}

// AttemptResponse - попытка пользователя со снимком вопросов
type AttemptResponse struct {
	ID                uint             `json:"id"`
	UserID            string           `json:"user_id"`
	TestID            uint             `json:"test_id"`
	Status            string           `json:"status"`
	Score             float64          `json:"score"`
	QuestionsSnapshot []uint           `json:"questions_snapshot"`
	Answers           entity.AnswerMap `json:"answers"`
}

// NewAttemptResponse создает DTO для попытки
func NewAttemptResponse(attempt *entity.Attempt) *AttemptResponse {
	snapshot := []uint(attempt.QuestionsSnapshot)
	if snapshot == nil {
		snapshot = []uint{}
	}
	answers := attempt.UserAnswers
	if answers == nil {
		answers = entity.AnswerMap{}
	}
	return &AttemptResponse{
		ID:                attempt.ID,
		UserID:            attempt.UserID,
		TestID:            attempt.TestID,
		Status:            attempt.Status,
		Score:             attempt.Score,
		QuestionsSnapshot: snapshot,
		Answers:           answers,
	}
}

// ConfirmNotificationsRequest - подтверждение доставки уведомлений
type ConfirmNotificationsRequest struct {
	IDs []uint `json:"ids" binding:"required"`
}
