package handlers

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/Dosada05/forza-race-organizer/realtime"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler accepts upgrades from allowedOrigins; an empty list allows any origin.
func NewWebSocketHandler(hub *realtime.Hub, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
					return true
				}
				return slices.Contains(allowedOrigins, r.Header.Get("Origin"))
			},
		},
		logger: logger,
	}
}

// ServeWs подключает клиента Activity к комнате гильдии /ws/guilds/{guildId}.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildId")
	if guildID == "" {
		badRequestResponse(w, r, errMissingGuildID)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", slog.String("guild_id", guildID), slog.Any("error", err))
		return
	}

	client := realtime.NewClient(h.hub, conn, realtime.GuildRoom(guildID))
	if !h.hub.Join(client) {
		conn.Close()
		return
	}
	go client.WritePump()
	go client.ReadPump()
	h.logger.DebugContext(r.Context(), "websocket client joined", slog.String("room", client.Room))
}
