package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/edu-api/internal/handler/dto"
	"github.com/yourusername/edu-api/internal/middleware"
	"github.com/yourusername/edu-api/internal/service"
)

// CourseHandler обрабатывает запросы, связанные с курсами
type CourseHandler struct {
	courseService *service.CourseService
}

// NewCourseHandler создает новый обработчик курсов
func NewCourseHandler(courseService *service.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

// ListCourses возвращает все курсы
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.courseService.List(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListCourseResponse(courses))
}

// GetCourse возвращает курс
func (h *CourseHandler) GetCourse(c *gin.Context) {
	course, err := h.courseService.Get(c.Request.Context(), middleware.GetUintParam(c, "course_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCourseResponse(course))
}

// CreateCourse создает курс
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req dto.CourseRequest
	if !bindJSON(c, &req) {
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), identity, req.Title, req.Description)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewCourseResponse(course))
}

// UpdateCourse меняет название и описание курса
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req dto.CourseRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.courseService.Update(c.Request.Context(), identity, middleware.GetUintParam(c, "course_id"), req.Title, req.Description); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteCourse мягко удаляет курс
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	if err := h.courseService.Delete(c.Request.Context(), identity, middleware.GetUintParam(c, "course_id")); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// JoinCourse зачисляет пользователя из тела запроса на курс
func (h *CourseHandler) JoinCourse(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req dto.EnrollmentRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.courseService.Join(c.Request.Context(), identity, middleware.GetUintParam(c, "course_id"), req.UserID); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LeaveCourse отчисляет пользователя из тела запроса с курса
func (h *CourseHandler) LeaveCourse(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req dto.EnrollmentRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.courseService.Leave(c.Request.Context(), identity, middleware.GetUintParam(c, "course_id"), req.UserID); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListStudents возвращает студентов курса
func (h *CourseHandler) ListStudents(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	userIDs, err := h.courseService.Students(c.Request.Context(), identity, middleware.GetUintParam(c, "course_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	if userIDs == nil {
		userIDs = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"user_ids": userIDs})
}
