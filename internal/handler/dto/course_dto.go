package dto

import (
	"time"

	"github.com/yourusername/edu-api/internal/domain/entity"
	"github.com/yourusername/edu-api/internal/handler/helper"
)

// CourseRequest - тело запроса на создание и изменение курса
type CourseRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description" binding:"omitempty,max=5000"`
}

// EnrollmentRequest - тело запроса на зачисление и отчисление
type EnrollmentRequest struct {
	UserID string `json:"user_id" binding:"required,max=64"`
}

// CourseResponse представляет курс в формате для ответа клиенту
type CourseResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AuthorID    string    `json:"author_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCourseResponse создает DTO для курса
func NewCourseResponse(course *entity.Course) *CourseResponse {
	return &CourseResponse{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		AuthorID:    course.AuthorID,
		CreatedAt:   course.CreatedAt,
		UpdatedAt:   course.UpdatedAt,
	}
}

// NewListCourseResponse создает список DTO курсов
func NewListCourseResponse(courses []entity.Course) []*CourseResponse {
	result := make([]*CourseResponse, 0, len(courses))
	for i := range courses {
		result = append(result, NewCourseResponse(&courses[i]))
	}
	return result
}

// CreateTestRequest - тело запроса на создание теста
type CreateTestRequest struct {
	Title string `json:"title" binding:"required,max=255"`
}

// ActivationRequest - включение или выключение теста
type ActivationRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// ReorderRequest - новый порядок вопросов теста
type ReorderRequest struct {
	QuestionIDs []uint `json:"question_ids" binding:"required"`
}

// TestResponse представляет тест в формате для ответа клиенту
type TestResponse struct {
	ID          uint      `json:"id"`
	CourseID    uint      `json:"course_id"`
	Title       string    `json:"title"`
	IsActive    bool      `json:"is_active"`
	QuestionIDs []uint    `json:"question_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTestResponse создает DTO для теста
func NewTestResponse(test *entity.Test) *TestResponse {
	return &TestResponse{
		ID:          test.ID,
		CourseID:    test.CourseID,
		Title:       test.Title,
		IsActive:    test.IsActive,
		QuestionIDs: helper.QuestionIDs(test.QuestionIDs),
		CreatedAt:   test.CreatedAt,
		UpdatedAt:   test.UpdatedAt,
	}
}

// NewListTestResponse создает список DTO тестов
func NewListTestResponse(tests []entity.Test) []*TestResponse {
	result := make([]*TestResponse, 0, len(tests))
	for i := range tests {
		result = append(result, NewTestResponse(&tests[i]))
	}
	return result
}
