package entity

import "time"

// UserScore - итоговый балл пользователя по тесту
type UserScore struct {
	UserID string  `json:"user_id"`
	Score  float64 `json:"score"`
}

// AttemptAnswers - ответы пользователя в рамках попытки
type AttemptAnswers struct {
	AttemptID uint      `json:"attempt_id"`
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	Answers   AnswerMap `json:"answers"`
}

// Grade - оценка пользователя за тест для профиля
type Grade struct {
	TestID    uint      `json:"test_id"`
	TestTitle string    `json:"test_title"`
	CourseID  uint      `json:"course_id"`
	Score     float64   `json:"score"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserProfile агрегирует данные пользователя
type UserProfile struct {
	UserID  string   `json:"user_id"`
	Courses []Course `json:"courses,omitempty"`
	Tests   []Test   `json:"tests,omitempty"`
	Grades  []Grade  `json:"grades,omitempty"`
}
