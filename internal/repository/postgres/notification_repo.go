package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/yourusername/edu-api/internal/domain/entity"
	"github.com/yourusername/edu-api/internal/domain/repository"
)

// NotificationRepo реализует repository.NotificationRepository
type NotificationRepo struct {
	db *gorm.DB
}

// NewNotificationRepo создает новый репозиторий уведомлений
func NewNotificationRepo(db *gorm.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// Create сохраняет уведомление
func (r *NotificationRepo) Create(ctx context.Context, notification *entity.Notification) error {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return wrapDBError(err, "create notification for user %s", notification.UserID)
	}
	return nil
}

// ListUnsent возвращает недоставленные уведомления пользователя
func (r *NotificationRepo) ListUnsent(ctx context.Context, userID string) ([]entity.Notification, error) {
	var notifications []entity.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_sent_tg = false", userID).
		Order("id").
		Find(&notifications).Error
	if err != nil {
		return nil, wrapDBError(err, "list notifications of user %s", userID)
	}
	return notifications, nil
}

// MarkSent отмечает уведомления доставленными
func (r *NotificationRepo) MarkSent(ctx context.Context, userID string, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("user_id = ? AND id IN ? AND is_sent_tg = false", userID, ids).
		Update("is_sent_tg", true)
	if result.Error != nil {
		return 0, wrapDBError(result.Error, "confirm notifications of user %s", userID)
	}
	return result.RowsAffected, nil
}

var _ repository.NotificationRepository = (*NotificationRepo)(nil)
