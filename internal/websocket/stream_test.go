package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/edu-api/internal/domain/repository"
)

type fakeSubscription struct {
	messages  chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func (s *fakeSubscription) Messages() <-chan []byte { return s.messages }

func (s *fakeSubscription) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

type fakeSubscriber struct {
	mu   sync.Mutex
	subs map[string]*fakeSubscription
	err  error
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{subs: make(map[string]*fakeSubscription)}
}

func (f *fakeSubscriber) Subscribe(_ context.Context, userID string) (repository.Subscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	sub := &fakeSubscription{messages: make(chan []byte, 4), closed: make(chan struct{})}
	f.mu.Lock()
	f.subs[userID] = sub
	f.mu.Unlock()
	return sub, nil
}

func (f *fakeSubscriber) get(userID string) *fakeSubscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subs[userID]
}

func newStreamServer(t *testing.T, stream *NotificationStream) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := stream.Serve(w, r, r.URL.Query().Get("user")); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func wsURL(server *httptest.Server, userID string) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/?user=" + userID
}

func TestNotificationStream_ForwardsMessages(t *testing.T) {
	subscriber := newFakeSubscriber()
	server := newStreamServer(t, NewNotificationStream(subscriber, nil, DefaultClientConfig()))

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, "student"), nil)
	require.NoError(t, err)
	defer conn.Close()

	sub := subscriber.get("student")
	require.NotNil(t, sub)
	sub.messages <- []byte(`{"event_id":"1"}`)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	msgType, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, msgType)
	assert.JSONEq(t, `{"event_id":"1"}`, string(data))
}

func TestNotificationStream_ClosesSubscriptionOnDisconnect(t *testing.T) {
	subscriber := newFakeSubscriber()
	server := newStreamServer(t, NewNotificationStream(subscriber, nil, DefaultClientConfig()))

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, "student"), nil)
	require.NoError(t, err)

	sub := subscriber.get("student")
	require.NotNil(t, sub)
	require.NoError(t, conn.Close())

	select {
	case <-sub.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("subscription was not closed after client disconnect")
	}
}

func TestNotificationStream_SubscribeError(t *testing.T) {
	subscriber := newFakeSubscriber()
	subscriber.err = errors.New("redis down")
	server := newStreamServer(t, NewNotificationStream(subscriber, nil, DefaultClientConfig()))

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(server, "student"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestNotificationStream_CheckOrigin(t *testing.T) {
	stream := NewNotificationStream(newFakeSubscriber(), []string{"http://localhost:3000"}, DefaultClientConfig())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, stream.checkOrigin(req))

	req.Header.Set("Origin", "http://localhost:3000")
	assert.True(t, stream.checkOrigin(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, stream.checkOrigin(req))
}

func TestNewClient_NormalizesConfig(t *testing.T) {
	client := NewClient(nil, "u1", ClientConfig{PongWait: 10 * time.Second, PingInterval: time.Minute})

	assert.Equal(t, defaultClientBufferSize, cap(client.send))
	assert.Equal(t, 9*time.Second, client.config.PingInterval)
	assert.Equal(t, writeWait, client.config.WriteWait)
	assert.NotEmpty(t, client.ConnectionID)
}

func TestClient_SendAfterClose(t *testing.T) {
	client := NewClient(nil, "u1", ClientConfig{BufferSize: 1})

	assert.True(t, client.Send([]byte("a")))
	assert.False(t, client.Send([]byte("b")), "buffer is full")

	client.Close()
	client.Close()
	assert.False(t, client.Send([]byte("c")))
}
