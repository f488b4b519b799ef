package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/trackline/helpdesk/internal/assistant"
)

const maxChatBodyBytes = 64 * 1024

// Answerer runs the question answering transaction.
type Answerer interface {
	Answer(ctx context.Context, req assistant.Request) (*assistant.Response, error)
}

// SessionCreator allocates new conversation sessions.
type SessionCreator interface {
	CreateSession(ctx context.Context, userID string) (string, error)
}

type chatHandler struct {
	assistant Answerer
	sessions  SessionCreator
	logger    *slog.Logger
}

type chatRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"sessionId"`
	Provider  string `json:"provider"`
}

type chatResponse struct {
	Answer       string   `json:"answer"`
	RelevantFAQs []string `json:"relevantFaqs"`
	SessionID    string   `json:"sessionId"`
}

// send handles POST /api/chat. An empty sessionId gets a fresh session
// bound to the resolved identity.
func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body", h.logger)
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "missing_question", "question is required", h.logger)
		return
	}

	userID := userIDFromContext(r.Context())

	sessionID := req.SessionID
	if sessionID == "" {
		var err error
		sessionID, err = h.sessions.CreateSession(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, assistant.CodeStorageFailure, "failed to create session", h.logger)
			return
		}
	}

	resp, err := h.assistant.Answer(r.Context(), assistant.Request{
		Question:  req.Question,
		UserID:    userID,
		SessionID: sessionID,
		Provider:  req.Provider,
	})
	if err != nil {
		status, code := errorStatus(err)
		h.logger.Error("chat request failed", "code", code, "session_id", sessionID, "error", err)
		writeError(w, status, code, "failed to process question", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Answer:       resp.Answer,
		RelevantFAQs: resp.RelevantFAQs,
		SessionID:    sessionID,
	})
}

// errorStatus maps a pipeline failure to an HTTP status and its stable
// code. Unconfigured providers and unreachable backends are 503; the rest
// are 500.
func errorStatus(err error) (int, string) {
	var perr *assistant.ProcessingError
	if !errors.As(err, &perr) {
		return http.StatusInternalServerError, assistant.CodeInternal
	}
	switch perr.Code {
	case assistant.CodeIndexUnavailable, assistant.CodeProviderUnconfigured:
		return http.StatusServiceUnavailable, perr.Code
	default:
		return http.StatusInternalServerError, perr.Code
	}
}
