package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/edu-api/internal/service"
)

// UserHandler обрабатывает запросы, связанные с пользователями
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler создает новый обработчик пользователей
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetUserData возвращает профиль пользователя.
// Флаги ?courses&tests&grades выбирают разделы; без флагов возвращаются все.
func (h *UserHandler) GetUserData(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	var sections service.ProfileSections
	_, sections.Courses = c.GetQuery("courses")
	_, sections.Tests = c.GetQuery("tests")
	_, sections.Grades = c.GetQuery("grades")

	profile, err := h.userService.GetProfile(c.Request.Context(), identity, c.Param("user_id"), sections)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
