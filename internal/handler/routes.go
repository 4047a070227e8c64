package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/yourusername/edu-api/internal/middleware"
)

// Handlers объединяет обработчики API
type Handlers struct {
	Course       *CourseHandler
	Test         *TestHandler
	Attempt      *AttemptHandler
	Question     *QuestionHandler
	Notification *NotificationHandler
	User         *UserHandler
}

// RouteOptions содержит middleware, общие для маршрутов
type RouteOptions struct {
	Auth         *middleware.AuthMiddleware
	Limiter      *middleware.RateLimiter
	AttemptLimit middleware.RateLimitConfig
}

// RegisterRoutes регистрирует маршруты API в группе api
func RegisterRoutes(api *gin.RouterGroup, h Handlers, opts RouteOptions) {
	api.Use(opts.Auth.RequireAuth())

	// Лимит на запись в попытки; nil limiter пропускает запросы
	attemptLimit := opts.Limiter.LimitByUser(opts.AttemptLimit)

	courseID := middleware.ExtractUintParams("course_id")
	courseTestIDs := middleware.ExtractUintParams("course_id", "test_id")
	testID := middleware.ExtractUintParams("test_id")
	testQuestionIDs := middleware.ExtractUintParams("test_id", "question_id")
	attemptID := middleware.ExtractUintParams("attempt_id")
	attemptQuestionIDs := middleware.ExtractUintParams("attempt_id", "question_id")
	questionID := middleware.ExtractUintParams("question_id")

	courses := api.Group("/courses")
	{
		courses.GET("", h.Course.ListCourses)
		courses.POST("", h.Course.CreateCourse)
		courses.GET("/:course_id", courseID, h.Course.GetCourse)
		courses.PUT("/:course_id", courseID, h.Course.UpdateCourse)
		courses.DELETE("/:course_id", courseID, h.Course.DeleteCourse)
		courses.POST("/:course_id/join", courseID, h.Course.JoinCourse)
		courses.POST("/:course_id/leave", courseID, h.Course.LeaveCourse)
		courses.GET("/:course_id/students", courseID, h.Course.ListStudents)

		courses.GET("/:course_id/tests", courseID, h.Test.ListTests)
		courses.POST("/:course_id/tests", courseID, h.Test.CreateTest)
		courses.GET("/:course_id/tests/:test_id/active", courseTestIDs, h.Test.GetActivation)
		courses.PATCH("/:course_id/tests/:test_id/active", courseTestIDs, h.Test.SetActivation)
	}

	tests := api.Group("/tests")
	{
		tests.DELETE("/:test_id", testID, h.Test.DeleteTest)
		tests.GET("/:test_id/questions", testID, h.Test.GetQuestionIDs)
		tests.PATCH("/:test_id/questions/reorder", testID, h.Test.ReorderQuestions)
		tests.POST("/:test_id/questions/:question_id", testQuestionIDs, h.Test.AppendQuestion)
		tests.DELETE("/:test_id/questions/:question_id", testQuestionIDs, h.Test.RemoveQuestion)

		tests.POST("/:test_id/start", testID, attemptLimit, h.Attempt.StartAttempt)
		tests.GET("/:test_id/scores", testID, h.Attempt.GetScores)
		tests.GET("/:test_id/scores/export", testID, h.Attempt.ExportScores)
		tests.GET("/:test_id/answers", testID, h.Attempt.GetAnswers)
		tests.GET("/:test_id/passed", testID, h.Attempt.GetPassedUsers)
		tests.GET("/:test_id/attempts/:user_id", testID, h.Attempt.GetUserAttempt)
		tests.GET("/:test_id/attempts/:user_id/answers", testID, h.Attempt.GetUserAnswers)
	}

	attempts := api.Group("/attempts")
	attempts.Use(attemptLimit)
	{
		attempts.POST("/:attempt_id/answers", attemptID, h.Attempt.SubmitAnswer)
		attempts.PATCH("/:attempt_id/questions/:question_id/answer", attemptQuestionIDs, h.Attempt.ChangeAnswer)
		attempts.DELETE("/:attempt_id/questions/:question_id/answer", attemptQuestionIDs, h.Attempt.ClearAnswer)
		attempts.POST("/:attempt_id/complete", attemptID, h.Attempt.CompleteAttempt)
	}

	questions := api.Group("/questions")
	{
		questions.GET("", h.Question.ListQuestions)
		questions.POST("", h.Question.CreateQuestion)
		questions.GET("/:question_id", questionID, h.Question.GetQuestion)
		questions.PUT("/:question_id", questionID, h.Question.ReplaceQuestion)
		questions.PATCH("/:question_id", questionID, h.Question.PatchQuestion)
		questions.DELETE("/:question_id", questionID, h.Question.DeleteQuestion)
		questions.GET("/:question_id/:version", questionID, h.Question.GetQuestionVersion)
	}

	notifications := api.Group("/notification")
	{
		notifications.GET("", h.Notification.ListUnsent)
		notifications.POST("/confirm-tg", h.Notification.ConfirmSent)
		notifications.GET("/ws", h.Notification.Stream)
	}

	api.GET("/users/:user_id/data", h.User.GetUserData)
}
