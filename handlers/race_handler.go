package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/forza-race-organizer/middleware"
	"github.com/Dosada05/forza-race-organizer/models"
	"github.com/Dosada05/forza-race-organizer/services"
	"github.com/go-chi/chi/v5"
)

type RaceHandler struct {
	races  *services.RaceService
	guilds *services.GuildService
	logger *slog.Logger
}

func NewRaceHandler(races *services.RaceService, guilds *services.GuildService, logger *slog.Logger) *RaceHandler {
	return &RaceHandler{races: races, guilds: guilds, logger: logger}
}

// Create godoc
// @Summary Создать гонку
// @Tags races
// @Accept json
// @Produce json
// @Param body body models.Race true "Race"
// @Success 201 {object} map[string]interface{} "Гонка создана"
// @Failure 400 {object} map[string]interface{} "Ошибка валидации"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Security BearerAuth
// @Router /api/races [post]
func (h *RaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input models.Race
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	race, err := h.races.Create(r.Context(), &input, r.URL.Query().Get("guild_id"), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"race": race}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// List godoc
// @Summary Список гонок с пагинацией
// @Tags races
// @Produce json
// @Param page query int false "Page, starting at 1"
// @Param limit query int false "Page size (default 10, max 100)"
// @Param guild_id query string false "Only races of this guild"
// @Success 200 {object} map[string]interface{}
// @Router /api/races [get]
func (h *RaceHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.races.List(r.Context(), r.URL.Query().Get("guild_id"), queryInt(r, "page", 1), queryInt(r, "limit", services.DefaultPageLimit))
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, page, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// Get godoc
// @Summary Получить гонку
// @Tags races
// @Produce json
// @Param raceId path string true "Race ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Гонка не найдена"
// @Router /api/races/{raceId} [get]
func (h *RaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	race, err := h.races.Get(r.Context(), chi.URLParam(r, "raceId"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"race": race}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// Update godoc
// @Summary Заменить гонку целиком
// @Tags races
// @Accept json
// @Produce json
// @Param raceId path string true "Race ID"
// @Param body body models.Race true "Race"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Ошибка валидации"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Гонка не найдена"
// @Security BearerAuth
// @Router /api/races/{raceId} [put]
func (h *RaceHandler) Update(w http.ResponseWriter, r *http.Request) {
	current, ok := h.editableRace(w, r)
	if !ok {
		return
	}

	var input models.Race
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	// владелец и гильдия не меняются при замене
	input.CreatedBy = current.CreatedBy
	input.GuildID = current.GuildID
	input.CreatedAt = current.CreatedAt

	race, err := h.races.Update(r.Context(), current.ID, &input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"race": race}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// Delete godoc
// @Summary Удалить гонку
// @Tags races
// @Param raceId path string true "Race ID"
// @Success 204 "Удалено"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Гонка не найдена"
// @Security BearerAuth
// @Router /api/races/{raceId} [delete]
func (h *RaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	current, ok := h.editableRace(w, r)
	if !ok {
		return
	}
	if err := h.races.Delete(r.Context(), current.ID); err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// editableRace loads the race and checks that the session user created it or
// manages its guild. It writes the error response itself.
func (h *RaceHandler) editableRace(w http.ResponseWriter, r *http.Request) (*models.Race, bool) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return nil, false
	}
	race, err := h.races.Get(r.Context(), chi.URLParam(r, "raceId"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return nil, false
	}
	if race.CreatedBy == userID {
		return race, true
	}
	if race.GuildID != "" {
		ok, err := h.guilds.CanManage(r.Context(), race.GuildID, userID)
		if err != nil {
			mapServiceErrorToHTTP(w, r, h.logger, err)
			return nil, false
		}
		if ok {
			return race, true
		}
	}
	forbiddenResponse(w, r, services.ErrForbiddenOperation.Error())
	return nil, false
}
