package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/forza-race-organizer/models"
	"github.com/Dosada05/forza-race-organizer/services"
	"github.com/go-chi/chi/v5"
)

type OrganizationHandler struct {
	orgs   *services.OrganizationService
	guilds *services.GuildService
	logger *slog.Logger
}

func NewOrganizationHandler(orgs *services.OrganizationService, guilds *services.GuildService, logger *slog.Logger) *OrganizationHandler {
	return &OrganizationHandler{orgs: orgs, guilds: guilds, logger: logger}
}

// List godoc
// @Summary Все зарегистрированные организации
// @Tags organizations
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/organizations [get]
func (h *OrganizationHandler) List(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.orgs.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if orgs == nil {
		orgs = []*models.Organization{}
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"organizations": orgs}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// Get godoc
// @Summary Организация гильдии
// @Tags organizations
// @Produce json
// @Param guildId path string true "Guild ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Организация не найдена"
// @Router /api/organizations/{guildId} [get]
func (h *OrganizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	org, err := h.orgs.Get(r.Context(), chi.URLParam(r, "guildId"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"organization": org}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// Register godoc
// @Summary Зарегистрировать организацию (один раз на гильдию)
// @Tags organizations
// @Accept json
// @Produce json
// @Param body body models.Organization true "Organization with guildId"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Ошибка валидации"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 409 {object} map[string]string "Уже зарегистрирована"
// @Security BearerAuth
// @Router /api/organizations/register [post]
func (h *OrganizationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input models.Organization
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.GuildID == "" {
		failedValidationResponse(w, r, map[string]string{"guildId": "is required"})
		return
	}
	if !requireManager(w, r, h.guilds, h.logger, input.GuildID) {
		return
	}
	org, err := h.orgs.Register(r.Context(), input.GuildID, &input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"organization": org}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// Save godoc
// @Summary Обновить организацию гильдии
// @Tags organizations
// @Accept json
// @Produce json
// @Param guildId path string true "Guild ID"
// @Param body body models.Organization true "Organization"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Ошибка валидации"
// @Failure 403 {object} map[string]string "Нет прав"
// @Security BearerAuth
// @Router /api/organizations/{guildId} [post]
func (h *OrganizationHandler) Save(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildId")
	if !requireManager(w, r, h.guilds, h.logger, guildID) {
		return
	}
	var input models.Organization
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	org, err := h.orgs.Save(r.Context(), guildID, &input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"organization": org}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}
