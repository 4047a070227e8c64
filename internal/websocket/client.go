package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Время, которое разрешено писать сообщение клиенту.
	writeWait = 10 * time.Second

	// Время, которое разрешено клиенту молчать до следующего pong.
	pongWait = 30 * time.Second

	// Периодичность отправки ping-сообщений клиенту.
	pingPeriod = (pongWait * 9) / 10

	// Клиент только слушает, входящие сообщения не разбираются
	maxMessageSize = 512

	defaultClientBufferSize = 64
)

// ClientConfig содержит настройки для клиента
type ClientConfig struct {
	BufferSize   int
	PingInterval time.Duration
	PongWait     time.Duration
	WriteWait    time.Duration
}

// DefaultClientConfig возвращает конфигурацию клиента по умолчанию
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BufferSize:   defaultClientBufferSize,
		PingInterval: pingPeriod,
		PongWait:     pongWait,
		WriteWait:    writeWait,
	}
}

// Client является посредником между WebSocket соединением и потоком уведомлений.
type Client struct {
	UserID       string
	ConnectionID string

	conn   *websocket.Conn
	config ClientConfig

	// Буферизованный канал для исходящих сообщений
	send chan []byte

	// closed закрывается один раз при отключении клиента
	closed    chan struct{}
	closeOnce sync.Once
}

// NewClient создает нового клиента
func NewClient(conn *websocket.Conn, userID string, config ClientConfig) *Client {
	if config.BufferSize <= 0 {
		config.BufferSize = defaultClientBufferSize
	}
	if config.PongWait <= 0 {
		config.PongWait = pongWait
	}
	if config.PingInterval <= 0 || config.PingInterval >= config.PongWait {
		config.PingInterval = (config.PongWait * 9) / 10
	}
	if config.WriteWait <= 0 {
		config.WriteWait = writeWait
	}
	return &Client{
		UserID:       userID,
		ConnectionID: uuid.NewString(),
		conn:         conn,
		config:       config,
		send:         make(chan []byte, config.BufferSize),
		closed:       make(chan struct{}),
	}
}

// Send ставит сообщение в очередь. Возвращает false, если клиент отключен или буфер переполнен.
func (c *Client) Send(message []byte) bool {
	select {
	case <-c.closed:
		return false
	default:
	}
	select {
	case c.send <- message:
		return true
	default:
		log.Printf("[WebSocket] Буфер клиента переполнен, сообщение пропущено (UserID: %s, ConnID: %s)", c.UserID, c.ConnectionID)
		return false
	}
}

// Done закрывается при отключении клиента
func (c *Client) Done() <-chan struct{} {
	return c.closed
}

// Close отключает клиента; повторные вызовы безопасны.
// Соединение закрывает writePump после отправки close-кадра.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
	})
}

// readPump читает управляющие кадры; входящие сообщения игнорируются.
// Завершение чтения означает отключение клиента.
func (c *Client) readPump() {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WebSocket] Неожиданное закрытие соединения (UserID: %s, ConnID: %s): %v", c.UserID, c.ConnectionID, err)
			}
			return
		}
	}
}

// writePump отправляет сообщения из очереди и периодические ping
func (c *Client) writePump() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WebSocket] Ошибка записи (UserID: %s, ConnID: %s): %v", c.UserID, c.ConnectionID, err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.closed:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// StartPumps запускает горутины чтения и записи
func (c *Client) StartPumps() {
	go c.writePump()
	go c.readPump()
}
