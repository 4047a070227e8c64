package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/yourusername/edu-api/internal/domain/entity"
	"github.com/yourusername/edu-api/internal/domain/repository"
)

// NotificationEvent - сообщение, публикуемое в канал пользователя
type NotificationEvent struct {
	EventID      string               `json:"event_id"`
	PublishedAt  time.Time            `json:"published_at"`
	Notification *entity.Notification `json:"notification"`
}

// NotificationPublisher публикует уведомления в Redis Pub/Sub и выдает подписки на них.
// Канал пользователя: <prefix>:<user_id>.
type NotificationPublisher struct {
	client redis.UniversalClient
	prefix string
}

// NewNotificationPublisher создает новый издатель уведомлений
func NewNotificationPublisher(client redis.UniversalClient, prefix string) (*NotificationPublisher, error) {
	if client == nil {
		return nil, fmt.Errorf("Redis client cannot be nil for NotificationPublisher")
	}
	if prefix == "" {
		prefix = "notifications"
	}
	return &NotificationPublisher{client: client, prefix: prefix}, nil
}

// Channel возвращает имя канала пользователя
func (p *NotificationPublisher) Channel(userID string) string {
	return fmt.Sprintf("%s:%s", p.prefix, userID)
}

// Publish отправляет уведомление подписчикам канала пользователя
func (p *NotificationPublisher) Publish(ctx context.Context, notification *entity.Notification) error {
	event := NotificationEvent{
		EventID:      uuid.NewString(),
		PublishedAt:  time.Now().UTC(),
		Notification: notification,
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal notification event: %w", err)
	}
	return p.client.Publish(ctx, p.Channel(notification.UserID), data).Err()
}

// NoOpPublisher используется, когда публикация отключена или Redis недоступен
type NoOpPublisher struct{}

// Publish ничего не делает
func (NoOpPublisher) Publish(context.Context, *entity.Notification) error {
	return nil
}

// Subscribe подписывается на канал пользователя.
// Подписка подтверждается до возврата, чтобы не потерять события, опубликованные сразу после нее.
func (p *NotificationPublisher) Subscribe(ctx context.Context, userID string) (repository.Subscription, error) {
	pubsub := p.client.Subscribe(ctx, p.Channel(userID))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", p.Channel(userID), err)
	}

	sub := &subscription{
		pubsub:   pubsub,
		messages: make(chan []byte, 16),
		done:     make(chan struct{}),
	}
	go sub.forward()
	return sub, nil
}

type subscription struct {
	pubsub    *redis.PubSub
	messages  chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func (s *subscription) forward() {
	defer close(s.messages)
	for msg := range s.pubsub.Channel() {
		select {
		case s.messages <- []byte(msg.Payload):
		case <-s.done:
			return
		}
	}
}

func (s *subscription) Messages() <-chan []byte {
	return s.messages
}

func (s *subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.pubsub.Close()
	})
	return err
}
