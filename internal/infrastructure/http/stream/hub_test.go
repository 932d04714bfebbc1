package stream

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ayurwell/portal/internal/domain/notification"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func startHub(t *testing.T, cfg Config, userID uuid.UUID) (*Hub, *httptest.Server, string) {
	t.Helper()
	hub := NewHub(cfg, zaptest.NewLogger(t))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, userID)
	}))
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	return hub, srv, url
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_PushReachesEveryConnectionOfTheUser(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	// Arrange
	userID := uuid.New()
	hub, srv, url := startHub(t, Config{}, userID)
	defer srv.Close()
	defer hub.Close()

	first, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer first.Close()
	second, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer second.Close()

	assert.Equal(t, "hello", readMessage(t, first).Type)
	assert.Equal(t, "hello", readMessage(t, second).Type)
	require.Eventually(t, func() bool { return hub.Connections(userID) == 2 }, time.Second, 10*time.Millisecond)

	// Act
	n := notification.New(userID, notification.KindDietPlanSent, "New diet plan", "Your plan is ready", "/patient/diet-plan")
	hub.Push(userID, n)
	hub.Push(uuid.New(), n)

	// Assert
	for _, conn := range []*websocket.Conn{first, second} {
		msg := readMessage(t, conn)
		assert.Equal(t, "notification", msg.Type)
		require.NotNil(t, msg.Data)
		assert.Equal(t, n.ID, msg.Data.ID)
		assert.Equal(t, "New diet plan", msg.Data.Title)
	}
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	userID := uuid.New()
	hub, srv, url := startHub(t, Config{}, userID)
	defer srv.Close()
	defer hub.Close()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	readMessage(t, conn)
	require.Eventually(t, func() bool { return hub.Connections(userID) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return hub.Connections(userID) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_SendsPings(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	userID := uuid.New()
	hub, srv, url := startHub(t, Config{PingPeriod: 20 * time.Millisecond, PongWait: time.Second}, userID)
	defer srv.Close()
	defer hub.Close()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	pinged := make(chan struct{}, 1)
	conn.SetPingHandler(func(data string) error {
		select {
		case pinged <- struct{}{}:
		default:
		}
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})

	// ping frames are handled inside ReadMessage
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case <-pinged:
	case <-time.After(2 * time.Second):
		t.Fatal("no ping received")
	}
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	userID := uuid.New()
	hub, srv, url := startHub(t, Config{}, userID)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	readMessage(t, conn)

	hub.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected error: %v", err)
	assert.Equal(t, 0, hub.Connections(userID))
}

func TestHub_PushRacesDisconnect(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	// Arrange
	hub := NewHub(Config{}, zaptest.NewLogger(t))
	userID := uuid.New()
	clients := make([]*client, 8)
	for i := range clients {
		clients[i] = &client{userID: userID, send: make(chan []byte, 1)}
		require.True(t, hub.register(clients[i]))
	}
	n := &notification.Notification{ID: uuid.New(), UserID: userID, Title: "Plan sent"}

	// Act
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				hub.Push(userID, n)
				for _, c := range clients {
					hub.enqueue(c, Message{Type: "notification", Data: n})
				}
			}
		}()
	}
	for _, c := range clients {
		wg.Add(1)
		go func(c *client) {
			defer wg.Done()
			hub.unregister(c)
		}(c)
	}
	wg.Wait()

	// Assert
	assert.Equal(t, 0, hub.Connections(userID))
	for _, c := range clients {
		assert.True(t, c.closed)
	}
}

func TestClient_OfferAfterClose(t *testing.T) {
	// Arrange
	c := &client{userID: uuid.New(), send: make(chan []byte, 1)}

	// Act
	first := c.offer([]byte("a"))
	full := c.offer([]byte("b"))
	c.close()
	c.close()
	afterClose := c.offer([]byte("c"))

	// Assert
	assert.True(t, first)
	assert.False(t, full)
	assert.True(t, afterClose)
	payload, ok := <-c.send
	assert.True(t, ok)
	assert.Equal(t, []byte("a"), payload)
	_, ok = <-c.send
	assert.False(t, ok)
}
