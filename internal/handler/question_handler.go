package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/edu-api/internal/domain/entity"
	"github.com/yourusername/edu-api/internal/handler/dto"
	"github.com/yourusername/edu-api/internal/middleware"
	"github.com/yourusername/edu-api/internal/pkg/access"
	"github.com/yourusername/edu-api/internal/service"
)

// QuestionHandler обрабатывает запросы к банку вопросов
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler создает новый обработчик вопросов
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// revealsAnswer: правильный ответ видят автор вопроса и держатели quest:read
func revealsAnswer(identity access.Identity, q *entity.Question) bool {
	return q.AuthorID == identity.UserID || identity.Has(access.PermQuestRead)
}

// CreateQuestion создает первую версию вопроса
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req dto.QuestionRequest
	if !bindJSON(c, &req) {
		return
	}

	question, err := h.questionService.Create(c.Request.Context(), identity, req.ToInput())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewQuestionResponse(question, true))
}

// ReplaceQuestion создает новую версию из полного набора полей (PUT)
func (h *QuestionHandler) ReplaceQuestion(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req dto.QuestionRequest
	if !bindJSON(c, &req) {
		return
	}
	h.update(c, identity, req.ToInput())
}

// PatchQuestion создает новую версию, дополняя последнюю (PATCH)
func (h *QuestionHandler) PatchQuestion(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req dto.QuestionPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	h.update(c, identity, req.ToInput())
}

func (h *QuestionHandler) update(c *gin.Context, identity access.Identity, input service.QuestionInput) {
	question, err := h.questionService.Update(c.Request.Context(), identity, middleware.GetUintParam(c, "question_id"), input)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuestionResponse(question, true))
}

// GetQuestion возвращает последнюю версию вопроса
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	question, err := h.questionService.GetLatest(c.Request.Context(), identity, middleware.GetUintParam(c, "question_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuestionResponse(question, revealsAnswer(identity, question)))
}

// GetQuestionVersion возвращает конкретную версию вопроса
func (h *QuestionHandler) GetQuestionVersion(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	version, err := strconv.Atoi(c.Param("version"))
	if err != nil || version < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid version", "error_type": "invalid_param"})
		return
	}

	question, err := h.questionService.GetVersion(c.Request.Context(), identity, middleware.GetUintParam(c, "question_id"), version)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuestionResponse(question, revealsAnswer(identity, question)))
}

// ListQuestions возвращает последние версии вопросов
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	questions, err := h.questionService.List(c.Request.Context(), identity)
	if err != nil {
		handleError(c, err)
		return
	}

	result := make([]*dto.QuestionResponse, 0, len(questions))
	for i := range questions {
		result = append(result, dto.NewQuestionResponse(&questions[i], revealsAnswer(identity, &questions[i])))
	}
	c.JSON(http.StatusOK, result)
}

// DeleteQuestion мягко удаляет все версии вопроса
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	if err := h.questionService.Delete(c.Request.Context(), identity, middleware.GetUintParam(c, "question_id")); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
