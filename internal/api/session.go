package api

import (
	"log/slog"
	"net/http"

	"github.com/trackline/helpdesk/internal/assistant"
)

type sessionHandler struct {
	sessions SessionCreator
	logger   *slog.Logger
}

type sessionResponse struct {
	SessionID string `json:"sessionId"`
}

// create handles POST /api/sessions. The resolved identity becomes the
// session owner.
func (h *sessionHandler) create(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	sessionID, err := h.sessions.CreateSession(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, assistant.CodeStorageFailure, "failed to create session", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{SessionID: sessionID})
}
