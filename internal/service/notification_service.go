package service

import (
	"context"
	"encoding/json"
	"log"

	"gorm.io/datatypes"

	"github.com/yourusername/edu-api/internal/domain/entity"
	"github.com/yourusername/edu-api/internal/domain/repository"
)

// NotificationService сохраняет уведомления и публикует их подписчикам.
// Ошибки доставки только логируются и не влияют на вызывающую операцию.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	publisher        repository.NotificationPublisher
}

// NewNotificationService создает новый сервис уведомлений
func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	publisher repository.NotificationPublisher,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		publisher:        publisher,
	}
}

// Notify создает уведомление для каждого пользователя и возвращает число сохраненных
func (s *NotificationService) Notify(ctx context.Context, userIDs []string, notificationType, title, message string, payload map[string]interface{}) int {
	if s == nil || len(userIDs) == 0 {
		return 0
	}

	var rawPayload datatypes.JSON
	if len(payload) > 0 {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Printf("[NotificationService] Не удалось сериализовать payload: %v", err)
		} else {
			rawPayload = datatypes.JSON(data)
		}
	}

	saved := 0
	for _, userID := range userIDs {
		notification := &entity.Notification{
			UserID:  userID,
			Type:    notificationType,
			Title:   title,
			Message: message,
			Payload: rawPayload,
		}
		if err := s.notificationRepo.Create(ctx, notification); err != nil {
			log.Printf("[NotificationService] Ошибка сохранения уведомления для %s: %v", userID, err)
			continue
		}
		saved++

		if s.publisher == nil {
			continue
		}
		if err := s.publisher.Publish(ctx, notification); err != nil {
			log.Printf("[NotificationService] Ошибка публикации уведомления #%d для %s: %v", notification.ID, userID, err)
		}
	}
	return saved
}

// ListUnsent возвращает недоставленные уведомления пользователя
func (s *NotificationService) ListUnsent(ctx context.Context, userID string) ([]entity.Notification, error) {
	return s.notificationRepo.ListUnsent(ctx, userID)
}

// ConfirmSent отмечает уведомления пользователя доставленными
func (s *NotificationService) ConfirmSent(ctx context.Context, userID string, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrEmptySelection
	}
	return s.notificationRepo.MarkSent(ctx, userID, ids)
}
