package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(slog.New(slog.DiscardHandler))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn, GuildRoom(r.URL.Query().Get("guild")))
		if !hub.Join(client) {
			conn.Close()
			return
		}
		go client.WritePump()
		go client.ReadPump()
	}))
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, guild string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?guild=" + guild
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_NotifyGuildReachesOnlyThatRoom(t *testing.T) {
	hub, srv := startHub(t)
	g1 := dial(t, srv, "g1")
	g2 := dial(t, srv, "g2")

	require.Eventually(t, func() bool {
		return hub.RoomSize(GuildRoom("g1")) == 1 && hub.RoomSize(GuildRoom("g2")) == 1
	}, time.Second, 10*time.Millisecond)

	hub.NotifyGuild("g1", RaceCreated, map[string]string{"id": "r1"})

	g1.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := g1.ReadMessage()
	require.NoError(t, err)
	var msg WebSocketMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, RaceCreated, msg.Type)
	assert.Equal(t, "guild_g1", msg.RoomID)

	g2.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = g2.ReadMessage()
	assert.Error(t, err, "other guilds must not receive the message")
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, "g1")
	require.Eventually(t, func() bool { return hub.RoomSize(GuildRoom("g1")) == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.RoomSize(GuildRoom("g1")) == 0 }, time.Second, 10*time.Millisecond)

	hub.NotifyGuild("g1", RaceDeleted, nil)
	hub.NotifyGuild("", RaceDeleted, nil)
}
