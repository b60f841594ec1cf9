package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/forza-race-organizer/models"
	"github.com/Dosada05/forza-race-organizer/services"
	"github.com/go-chi/chi/v5"
)

type TicketHandler struct {
	tickets *services.TicketService
	guilds  *services.GuildService
	logger  *slog.Logger
}

func NewTicketHandler(tickets *services.TicketService, guilds *services.GuildService, logger *slog.Logger) *TicketHandler {
	return &TicketHandler{tickets: tickets, guilds: guilds, logger: logger}
}

// List godoc
// @Summary Тикеты гильдии по номеру
// @Tags guilds
// @Produce json
// @Param guildId path string true "Guild ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Нет прав"
// @Security BearerAuth
// @Router /api/guilds/{guildId}/tickets [get]
func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildId")
	if !requireManager(w, r, h.guilds, h.logger, guildID) {
		return
	}
	tickets, err := h.tickets.List(r.Context(), guildID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if tickets == nil {
		tickets = []*models.Ticket{}
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tickets": tickets}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}
