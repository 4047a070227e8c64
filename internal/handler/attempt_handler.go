package handler

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/edu-api/internal/domain/entity"
	"github.com/yourusername/edu-api/internal/handler/dto"
	"github.com/yourusername/edu-api/internal/middleware"
	"github.com/yourusername/edu-api/internal/pkg/access"
	"github.com/yourusername/edu-api/internal/service"
)

// AttemptHandler обрабатывает запросы прохождения тестов и чтения результатов
type AttemptHandler struct {
	attemptService *service.AttemptService
}

// NewAttemptHandler создает новый обработчик попыток
func NewAttemptHandler(attemptService *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{attemptService: attemptService}
}

// StartAttempt начинает попытку текущего пользователя: 201 {attempt_id}
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	testID := middleware.GetUintParam(c, "test_id")

	attemptID, err := h.attemptService.StartForUser(c.Request.Context(), identity, testID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.StartAttemptResponse{AttemptID: attemptID})
}

// SubmitAnswer записывает ответ на вопрос в собственной попытке
func (h *AttemptHandler) SubmitAnswer(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req dto.SubmitAnswerRequest
	if !bindJSON(c, &req) {
		return
	}
	attemptID := middleware.GetUintParam(c, "attempt_id")

	if err := h.attemptService.AnswerForUser(c.Request.Context(), identity, attemptID, req.QuestionID, *req.AnswerIndex, ""); err != nil {
		handleAttemptWriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ChangeAnswer меняет ответ на вопрос; не владельцу нужен answer:update
func (h *AttemptHandler) ChangeAnswer(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req dto.ChangeAnswerRequest
	if !bindJSON(c, &req) {
		return
	}
	attemptID := middleware.GetUintParam(c, "attempt_id")
	questionID := middleware.GetUintParam(c, "question_id")

	err := h.attemptService.AnswerForUser(c.Request.Context(), identity, attemptID, questionID, *req.AnswerIndex, access.PermAnswerUpdate)
	if err != nil {
		handleAttemptWriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearAnswer сбрасывает ответ на вопрос; не владельцу нужен answer:del
func (h *AttemptHandler) ClearAnswer(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	attemptID := middleware.GetUintParam(c, "attempt_id")
	questionID := middleware.GetUintParam(c, "question_id")

	err := h.attemptService.AnswerForUser(c.Request.Context(), identity, attemptID, questionID, entity.AnswerUnanswered, access.PermAnswerDel)
	if err != nil {
		handleAttemptWriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CompleteAttempt завершает собственную попытку
func (h *AttemptHandler) CompleteAttempt(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	attemptID := middleware.GetUintParam(c, "attempt_id")

	if err := h.attemptService.CompleteForUser(c.Request.Context(), identity, attemptID); err != nil {
		handleAttemptWriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attempt_id": attemptID, "status": entity.AttemptStatusCompleted})
}

// GetScores возвращает баллы завершенных попыток теста
func (h *AttemptHandler) GetScores(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	scores, err := h.attemptService.Scores(c.Request.Context(), identity, middleware.GetUintParam(c, "test_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	if scores == nil {
		scores = []entity.UserScore{}
	}
	c.JSON(http.StatusOK, scores)
}

// GetAnswers возвращает ответы по попыткам теста
func (h *AttemptHandler) GetAnswers(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	answers, err := h.attemptService.Answers(c.Request.Context(), identity, middleware.GetUintParam(c, "test_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	if answers == nil {
		answers = []entity.AttemptAnswers{}
	}
	c.JSON(http.StatusOK, answers)
}

// GetPassedUsers возвращает пользователей, завершивших тест
func (h *AttemptHandler) GetPassedUsers(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	userIDs, err := h.attemptService.PassedUsers(c.Request.Context(), identity, middleware.GetUintParam(c, "test_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	if userIDs == nil {
		userIDs = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"user_ids": userIDs})
}

// GetUserAttempt возвращает попытку пользователя по тесту
func (h *AttemptHandler) GetUserAttempt(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	attempt, err := h.attemptService.UserAttempt(c.Request.Context(), identity, middleware.GetUintParam(c, "test_id"), c.Param("user_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAttemptResponse(attempt))
}

// GetUserAnswers возвращает статус и ответы попытки пользователя
func (h *AttemptHandler) GetUserAnswers(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	answers, err := h.attemptService.UserAnswers(c.Request.Context(), identity, middleware.GetUintParam(c, "test_id"), c.Param("user_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, answers)
}

// ExportScores выгружает баллы теста в CSV или XLSX
func (h *AttemptHandler) ExportScores(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	testID := middleware.GetUintParam(c, "test_id")
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx", "error_type": "validation"})
		return
	}

	test, scores, err := h.attemptService.ExportScores(c.Request.Context(), identity, testID)
	if err != nil {
		handleError(c, err)
		return
	}

	filename := fmt.Sprintf("test_%d_scores_%s", testID, time.Now().Format("2006-01-02"))
	switch format {
	case "xlsx":
		h.exportXLSX(c, test, scores, filename)
	default:
		h.exportCSV(c, test, scores, filename)
	}
}

// exportCSV выгружает баллы в CSV с экранированием спецсимволов
func (h *AttemptHandler) exportCSV(c *gin.Context, test *entity.Test, scores []entity.UserScore, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))
	c.Status(http.StatusOK)

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"Тест", "Пользователь", "Баллы", "Вопросов"})
	total := strconv.Itoa(len(test.QuestionIDs))
	for _, s := range scores {
		writer.Write([]string{
			sanitizeForExcel(test.Title),
			sanitizeForExcel(s.UserID),
			strconv.FormatFloat(s.Score, 'f', -1, 64),
			total,
		})
	}
}

// exportXLSX выгружает баллы в Excel через StreamWriter
func (h *AttemptHandler) exportXLSX(c *gin.Context, test *entity.Test, scores []entity.UserScore, filename string) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Баллы"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		log.Printf("[AttemptHandler] Ошибка переименования листа: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[AttemptHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	if err := sw.SetRow("A1", []interface{}{"Тест", "Пользователь", "Баллы", "Вопросов"}); err != nil {
		log.Printf("[AttemptHandler] Ошибка записи заголовков: %v", err)
	}
	for i, s := range scores {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{sanitizeForExcel(test.Title), sanitizeForExcel(s.UserID), s.Score, len(test.QuestionIDs)}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[AttemptHandler] Ошибка записи строки %d: %v", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		log.Printf("[AttemptHandler] Ошибка при Flush: %v", err)
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[AttemptHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}
