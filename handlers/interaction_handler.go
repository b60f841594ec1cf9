package handlers

import (
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Dosada05/forza-race-organizer/interactions"
	"github.com/bwmarrin/discordgo"
)

// InteractionHandler is the HTTP interactions endpoint configured in the Discord
// developer portal. Requests must carry a valid Ed25519 signature.
type InteractionHandler struct {
	router    *interactions.Router
	publicKey ed25519.PublicKey
	logger    *slog.Logger
}

func NewInteractionHandler(router *interactions.Router, publicKey ed25519.PublicKey, logger *slog.Logger) *InteractionHandler {
	return &InteractionHandler{router: router, publicKey: publicKey, logger: logger}
}

func (h *InteractionHandler) Handle(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if !discordgo.VerifyInteraction(r, h.publicKey) {
		unauthorizedResponse(w, r, "invalid request signature")
		return
	}

	var i discordgo.Interaction
	if err := json.NewDecoder(r.Body).Decode(&i); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	err := h.router.Serve(r.Context(), &i, func(resp *discordgo.InteractionResponse) error {
		return writeAck(w, resp)
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write interaction response",
			slog.String("interaction_id", i.ID),
			slog.Any("error", err),
		)
	}
}

// writeAck writes the whole acknowledgement and flushes it to the connection
// before follow-ups are started.
func writeAck(w http.ResponseWriter, resp *discordgo.InteractionResponse) error {
	js, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(js)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(js); err != nil {
		return err
	}
	if err := http.NewResponseController(w).Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}
