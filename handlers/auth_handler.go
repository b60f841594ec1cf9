package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/forza-race-organizer/services"
)

type AuthHandler struct {
	auth   *services.AuthService
	logger *slog.Logger
}

func NewAuthHandler(auth *services.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type tokenRequest struct {
	Code string `json:"code"`
}

// Token godoc
// @Summary Обменять OAuth code Activity на access token и сессию API
// @Tags auth
// @Accept json
// @Produce json
// @Param body body tokenRequest true "OAuth code from the Activity SDK"
// @Success 200 {object} services.TokenExchange
// @Failure 400 {object} map[string]interface{} "Нет кода"
// @Failure 401 {object} map[string]string "Discord отклонил код"
// @Router /api/token [post]
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var input tokenRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	exchange, err := h.auth.ExchangeCode(r.Context(), input.Code)
	if err != nil {
		h.logger.InfoContext(r.Context(), "token exchange rejected", slog.Any("error", err))
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, exchange, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}
