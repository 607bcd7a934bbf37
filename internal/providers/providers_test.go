package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hirdyansh9/Orderbook/internal/logging"
	"github.com/Hirdyansh9/Orderbook/internal/models"
)

func sample(userID string) models.Notification {
	return models.Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Type:    models.SeverityWarning,
		Title:   "Delivery Due Today",
		Message: "Order for Asha must be delivered today.",
	}
}

type stubSender struct {
	mu    sync.Mutex
	calls []*bot.SendMessageParams
	fail  int
}

func (s *stubSender) SendMessage(_ context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, params)
	if s.fail > 0 {
		s.fail--
		return nil, errors.New("telegram unavailable")
	}
	return &tgmodels.Message{}, nil
}

func TestTelegram_PublishLinkedChat(t *testing.T) {
	sender := &stubSender{fail: 1}
	tg := NewTelegramWithSender(sender, map[string]int64{"u1": 42}, 100, logging.Discard())
	tg.delay = time.Millisecond

	require.NoError(t, tg.Publish(context.Background(), sample("u1")))
	require.Len(t, sender.calls, 2)
	assert.Equal(t, int64(42), sender.calls[1].ChatID)
	assert.Contains(t, sender.calls[1].Text, "Delivery Due Today")
}

func TestTelegram_SkipsUnlinkedUser(t *testing.T) {
	sender := &stubSender{}
	tg := NewTelegramWithSender(sender, map[string]int64{"u1": 42}, 100, logging.Discard())

	require.NoError(t, tg.Publish(context.Background(), sample("u2")))
	assert.Empty(t, sender.calls)
}

func TestFormatText(t *testing.T) {
	text := FormatText(sample("u1"))
	assert.True(t, strings.HasPrefix(text, "⚠️ Delivery Due Today\n"))
}

type stubPublisher struct {
	err   error
	count int
}

func (s *stubPublisher) Publish(context.Context, models.Notification) error {
	s.count++
	return s.err
}

func TestFanout_ContinuesPastFailures(t *testing.T) {
	boom := errors.New("boom")
	a, b := &stubPublisher{err: boom}, &stubPublisher{}

	err := Fanout{a, b}.Publish(context.Background(), sample("u1"))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, a.count)
	assert.Equal(t, 1, b.count)

	assert.NoError(t, Fanout{b}.Publish(context.Background(), sample("u1")))
}

func TestHub_PublishToConnectedUser(t *testing.T) {
	hub := NewHub(logging.Discard())
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.AddConnection("u1", conn)
	}))
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer client.Close()

	require.Eventually(t, func() bool { return hub.Connections("u1") == 1 }, time.Second, 10*time.Millisecond)

	n := sample("u1")
	require.NoError(t, hub.Publish(context.Background(), n))
	require.NoError(t, hub.Publish(context.Background(), sample("nobody")))

	var ev Event
	require.NoError(t, client.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, client.ReadJSON(&ev))
	assert.Equal(t, "notification", ev.Event)
	assert.Equal(t, n.ID, ev.Data.ID)
	assert.Equal(t, n.Title, ev.Data.Title)

	hub.CloseAll()
	assert.Zero(t, hub.Connections("u1"))
}
