package entity

import "time"

// Course представляет учебную дисциплину
type Course struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text;not null;default:''" json:"description"`
	AuthorID    string    `gorm:"size:64;not null;index" json:"author_id"`
	IsDeleted   bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Course) TableName() string {
	return "courses"
}

// IsAuthor проверяет, является ли пользователь автором курса
func (c *Course) IsAuthor(userID string) bool {
	return userID != "" && c.AuthorID == userID
}

// CourseStudent - запись о зачислении студента на курс
type CourseStudent struct {
	CourseID  uint      `gorm:"primaryKey;autoIncrement:false" json:"course_id"`
	UserID    string    `gorm:"primaryKey;size:64" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (CourseStudent) TableName() string {
	return "course_students"
}
