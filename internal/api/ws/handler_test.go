package ws

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
)

func dial(t *testing.T, h *Handler) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/stream", h.HandleConnection)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/stream", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWelcomeAndPing(t *testing.T) {
	h := NewHandler(nil, nil)
	conn := dial(t, h)

	assert.Equal(t, "system", read(t, conn).Type)
	assert.Equal(t, 1, h.Clients())

	require.NoError(t, conn.WriteJSON(Inbound{Type: "ping"}))
	assert.Equal(t, "pong", read(t, conn).Type)

	require.NoError(t, conn.WriteJSON(Inbound{Type: "bogus"}))
	msg := read(t, conn)
	assert.Equal(t, "error", msg.Type)
	assert.Equal(t, "unknown message type", msg.Message)
}

func TestPublishFansOut(t *testing.T) {
	h := NewHandler(nil, nil)
	a := dial(t, h)
	b := dial(t, h)
	read(t, a)
	read(t, b)

	h.Publish(types.SyncEvent{ID: 7, Action: types.ActionAppInstalled, Data: types.Bag{"appId": "app_1"}})

	for _, conn := range []*websocket.Conn{a, b} {
		msg := read(t, conn)
		assert.Equal(t, "sync", msg.Type)
		require.NotNil(t, msg.Event)
		assert.Equal(t, uint(7), msg.Event.ID)
		assert.Equal(t, types.ActionAppInstalled, msg.Event.Action)
	}
}

func TestDisconnectUnregisters(t *testing.T) {
	h := NewHandler(nil, nil)
	conn := dial(t, h)
	read(t, conn)
	require.Equal(t, 1, h.Clients())

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return h.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)

	// publishing with no clients is a no-op
	h.Publish(types.SyncEvent{ID: 1})
}
