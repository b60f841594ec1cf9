package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/forza-race-organizer/models"
	"github.com/Dosada05/forza-race-organizer/services"
	"github.com/go-chi/chi/v5"
)

// EventHandler exposes bot events read-only to the Activity.
type EventHandler struct {
	events  *services.EventService
	exports *services.ExportService
	logger  *slog.Logger
}

func NewEventHandler(events *services.EventService, exports *services.ExportService, logger *slog.Logger) *EventHandler {
	return &EventHandler{events: events, exports: exports, logger: logger}
}

// ListGuild godoc
// @Summary События гильдии, новые первыми
// @Tags events
// @Produce json
// @Param guildId path string true "Guild ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/guilds/{guildId}/events [get]
func (h *EventHandler) ListGuild(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.GuildEvents(r.Context(), chi.URLParam(r, "guildId"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if events == nil {
		events = []*models.Event{}
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"events": events}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// Get godoc
// @Summary Событие по event_id
// @Tags events
// @Produce json
// @Param eventId path string true "Event ID, e.g. FH5-123456"
// @Param guild_id query string false "Guild the event must belong to"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Событие не найдено"
// @Router /api/events/{eventId} [get]
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.events.Get(r.Context(), r.URL.Query().Get("guild_id"), chi.URLParam(r, "eventId"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"event": e}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// Workbook godoc
// @Summary Результаты события в XLSX
// @Tags events
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param eventId path string true "Event ID"
// @Success 200 {file} file
// @Failure 404 {object} map[string]string "Событие не найдено"
// @Router /api/events/{eventId}/results.xlsx [get]
func (h *EventHandler) Workbook(w http.ResponseWriter, r *http.Request) {
	data, e, err := h.exports.Workbook(r.Context(), r.URL.Query().Get("guild_id"), chi.URLParam(r, "eventId"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	writeFile(w, services.ContentTypeXLSX, e.EventID+"-results.xlsx", data)
}

// Chart godoc
// @Summary Диаграмма очков события в PNG
// @Tags events
// @Produce png
// @Param eventId path string true "Event ID"
// @Success 200 {file} file
// @Failure 404 {object} map[string]string "Событие не найдено"
// @Router /api/events/{eventId}/standings.png [get]
func (h *EventHandler) Chart(w http.ResponseWriter, r *http.Request) {
	data, e, err := h.exports.Chart(r.Context(), r.URL.Query().Get("guild_id"), chi.URLParam(r, "eventId"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	writeFile(w, services.ContentTypePNG, e.EventID+"-standings.png", data)
}
