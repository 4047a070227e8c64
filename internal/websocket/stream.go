// Package websocket доставляет уведомления пользователю через WebSocket.
package websocket

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/yourusername/edu-api/internal/domain/repository"
)

// NotificationStream связывает WebSocket клиентов с подписками на их уведомления
type NotificationStream struct {
	subscriber     repository.NotificationSubscriber
	upgrader       websocket.Upgrader
	allowedOrigins map[string]struct{}
	clientConfig   ClientConfig
}

// NewNotificationStream создает поток уведомлений.
// Пустой Origin разрешен: это не браузерные клиенты (чат-бот, мобильное приложение).
func NewNotificationStream(subscriber repository.NotificationSubscriber, allowedOrigins []string, clientConfig ClientConfig) *NotificationStream {
	s := &NotificationStream{
		subscriber:     subscriber,
		allowedOrigins: make(map[string]struct{}, len(allowedOrigins)),
		clientConfig:   clientConfig,
	}
	for _, origin := range allowedOrigins {
		s.allowedOrigins[origin] = struct{}{}
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *NotificationStream) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if _, ok := s.allowedOrigins[origin]; ok {
		return true
	}
	log.Printf("[WebSocket] Отклонен origin: %s", origin)
	return false
}

// Serve подписывается на уведомления пользователя и переводит соединение в WebSocket.
// Возвращает ошибку только до upgrade; после него соединение обслуживается в фоне.
func (s *NotificationStream) Serve(w http.ResponseWriter, r *http.Request, userID string) error {
	// Подписка живет дольше запроса, поэтому не наследует его контекст
	sub, err := s.subscriber.Subscribe(context.Background(), userID)
	if err != nil {
		return err
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		sub.Close()
		// Upgrade уже записал ответ клиенту
		log.Printf("[WebSocket] Ошибка upgrade для пользователя %s: %v", userID, err)
		return nil
	}

	client := NewClient(conn, userID, s.clientConfig)
	client.StartPumps()
	go s.forward(client, sub)

	log.Printf("[WebSocket] Пользователь %s подключен (ConnID: %s)", userID, client.ConnectionID)
	return nil
}

// forward пересылает сообщения подписки клиенту до отключения любой из сторон
func (s *NotificationStream) forward(client *Client, sub repository.Subscription) {
	defer func() {
		if err := sub.Close(); err != nil {
			log.Printf("[WebSocket] Ошибка закрытия подписки (UserID: %s): %v", client.UserID, err)
		}
		client.Close()
		log.Printf("[WebSocket] Пользователь %s отключен (ConnID: %s)", client.UserID, client.ConnectionID)
	}()

	for {
		select {
		case message, ok := <-sub.Messages():
			if !ok {
				return
			}
			client.Send(message)
		case <-client.Done():
			return
		}
	}
}
