package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/forza-race-organizer/middleware"
	"github.com/Dosada05/forza-race-organizer/models"
	"github.com/Dosada05/forza-race-organizer/services"
	"github.com/go-chi/chi/v5"
)

// GuildHandler serves guild settings and the thin Discord proxies used by the Activity.
type GuildHandler struct {
	guilds *services.GuildService
	logger *slog.Logger
}

func NewGuildHandler(guilds *services.GuildService, logger *slog.Logger) *GuildHandler {
	return &GuildHandler{guilds: guilds, logger: logger}
}

// requireManager writes 401/403 unless the session user may change guildID.
func requireManager(w http.ResponseWriter, r *http.Request, guilds *services.GuildService, logger *slog.Logger, guildID string) bool {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return false
	}
	ok, err := guilds.CanManage(r.Context(), guildID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, logger, err)
		return false
	}
	if !ok {
		forbiddenResponse(w, r, services.ErrForbiddenOperation.Error())
		return false
	}
	return true
}

// GetSettings godoc
// @Summary Настройки гильдии вместе с каналами и ролями
// @Tags guilds
// @Produce json
// @Param guildId path string true "Guild ID"
// @Success 200 {object} models.GuildSettingsView
// @Security BearerAuth
// @Router /api/guilds/{guildId}/settings [get]
func (h *GuildHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	view, err := h.guilds.SettingsView(r.Context(), chi.URLParam(r, "guildId"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, view, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// SaveSettings godoc
// @Summary Сохранить настройки гильдии
// @Tags guilds
// @Accept json
// @Produce json
// @Param guildId path string true "Guild ID"
// @Param body body models.GuildSettings true "Settings"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Ошибка валидации"
// @Failure 403 {object} map[string]string "Нет прав"
// @Security BearerAuth
// @Router /api/guilds/{guildId}/settings [post]
func (h *GuildHandler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildId")
	if !requireManager(w, r, h.guilds, h.logger, guildID) {
		return
	}
	var input models.GuildSettings
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	saved, err := h.guilds.SaveSettings(r.Context(), guildID, &input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"settings": saved}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

func (h *GuildHandler) Guild(w http.ResponseWriter, r *http.Request) {
	guild, err := h.guilds.Guild(r.Context(), chi.URLParam(r, "guildId"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{
		"id":   guild.ID,
		"name": guild.Name,
		"icon": guild.Icon,
	}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

func (h *GuildHandler) Channels(w http.ResponseWriter, r *http.Request) {
	channels, err := h.guilds.Channels(r.Context(), chi.URLParam(r, "guildId"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"channels": channels}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

func (h *GuildHandler) Roles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.guilds.Roles(r.Context(), chi.URLParam(r, "guildId"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"roles": roles}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// MemberPermissions always answers 200; a failed lookup reports "0".
func (h *GuildHandler) MemberPermissions(w http.ResponseWriter, r *http.Request) {
	perms := h.guilds.MemberPermissions(r.Context(), chi.URLParam(r, "guildId"), chi.URLParam(r, "userId"))
	if err := writeJSON(w, http.StatusOK, jsonResponse{
		"permissions": perms,
		"canManage":   services.CanManageFromBits(perms),
	}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}
