package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/edu-api/internal/handler/dto"
	"github.com/yourusername/edu-api/internal/middleware"
	"github.com/yourusername/edu-api/internal/service"
)

// TestHandler обрабатывает запросы к тестам курса и их составу
type TestHandler struct {
	testService *service.TestService
}

// NewTestHandler создает новый обработчик тестов
func NewTestHandler(testService *service.TestService) *TestHandler {
	return &TestHandler{testService: testService}
}

// CreateTest создает тест в курсе
func (h *TestHandler) CreateTest(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req dto.CreateTestRequest
	if !bindJSON(c, &req) {
		return
	}

	test, err := h.testService.CreateTest(c.Request.Context(), identity, middleware.GetUintParam(c, "course_id"), req.Title)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTestResponse(test))
}

// ListTests возвращает тесты курса
func (h *TestHandler) ListTests(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	tests, err := h.testService.ListTests(c.Request.Context(), identity, middleware.GetUintParam(c, "course_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListTestResponse(tests))
}

// DeleteTest мягко удаляет тест
func (h *TestHandler) DeleteTest(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	if err := h.testService.DeleteTest(c.Request.Context(), identity, middleware.GetUintParam(c, "test_id")); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetActivation возвращает признак активности теста
func (h *TestHandler) GetActivation(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	active, err := h.testService.IsActive(c.Request.Context(), identity,
		middleware.GetUintParam(c, "course_id"), middleware.GetUintParam(c, "test_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_active": active})
}

// SetActivation включает или выключает тест.
// Выключение принудительно завершает незавершенные попытки.
func (h *TestHandler) SetActivation(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req dto.ActivationRequest
	if !bindJSON(c, &req) {
		return
	}
	courseID := middleware.GetUintParam(c, "course_id")
	testID := middleware.GetUintParam(c, "test_id")

	if err := h.testService.SetActivation(c.Request.Context(), identity, courseID, testID, *req.IsActive); err != nil {
		handleError(c, err)
		return
	}
	log.Printf("[TestHandler] Пользователь %s установил активность теста #%d: %t", identity.UserID, testID, *req.IsActive)
	c.JSON(http.StatusOK, gin.H{"is_active": *req.IsActive})
}

// GetQuestionIDs возвращает упорядоченный список вопросов теста
func (h *TestHandler) GetQuestionIDs(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	ids, err := h.testService.QuestionIDs(c.Request.Context(), identity, middleware.GetUintParam(c, "test_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"question_ids": ids})
}

// AppendQuestion добавляет вопрос в конец теста: 201
func (h *TestHandler) AppendQuestion(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	testID := middleware.GetUintParam(c, "test_id")
	questionID := middleware.GetUintParam(c, "question_id")

	if err := h.testService.AppendQuestion(c.Request.Context(), identity, testID, questionID); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"test_id": testID, "question_id": questionID})
}

// RemoveQuestion удаляет вопрос из теста: 204
func (h *TestHandler) RemoveQuestion(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	err := h.testService.RemoveQuestion(c.Request.Context(), identity,
		middleware.GetUintParam(c, "test_id"), middleware.GetUintParam(c, "question_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReorderQuestions задает новый порядок вопросов: 204
func (h *TestHandler) ReorderQuestions(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req dto.ReorderRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.testService.ReorderQuestions(c.Request.Context(), identity, middleware.GetUintParam(c, "test_id"), req.QuestionIDs); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
