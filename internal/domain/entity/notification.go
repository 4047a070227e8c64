package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Типы уведомлений
const (
	NotificationTypeAcademic = "academic"
	NotificationTypeSystem   = "system"
)

// Notification - уведомление пользователю.
// IsSentTG отмечает доставку через чат-бот.
type Notification struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    string         `gorm:"size:64;not null;index" json:"user_id"`
	Type      string         `gorm:"size:32;not null" json:"type"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	Message   string         `gorm:"type:text;not null" json:"message"`
	Payload   datatypes.JSON `gorm:"type:jsonb" json:"payload,omitempty"`
	IsSentTG  bool           `gorm:"column:is_sent_tg;not null;default:false" json:"is_sent_tg"`
	CreatedAt time.Time      `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Notification) TableName() string {
	return "notifications"
}
