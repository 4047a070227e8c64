package repository

import (
	"context"

	"github.com/yourusername/edu-api/internal/domain/entity"
)

// NotificationRepository определяет методы для работы с уведомлениями
type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	ListUnsent(ctx context.Context, userID string) ([]entity.Notification, error)
	// MarkSent отмечает уведомления пользователя доставленными и возвращает число обновленных.
	MarkSent(ctx context.Context, userID string, ids []uint) (int64, error)
}

// NotificationPublisher рассылает уведомления подписчикам (чат-бот и т.п.)
type NotificationPublisher interface {
	Publish(ctx context.Context, notification *entity.Notification) error
}

// Subscription - подписка на уведомления одного пользователя
type Subscription interface {
	// Messages закрывается после Close или обрыва соединения с брокером
	Messages() <-chan []byte
	Close() error
}

// NotificationSubscriber выдает подписки на канал уведомлений пользователя
type NotificationSubscriber interface {
	Subscribe(ctx context.Context, userID string) (Subscription, error)
}
