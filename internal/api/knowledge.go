package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/trackline/helpdesk/internal/assistant"
	"github.com/trackline/helpdesk/internal/knowledge"
)

const maxIngestBodyBytes = 4 * 1024 * 1024

// Ingestor covers the index operations the knowledge endpoints need.
type Ingestor interface {
	EnsureCollection(ctx context.Context) error
	AddEntries(ctx context.Context, entries []knowledge.Entry) error
	Stats(ctx context.Context) knowledge.Stats
}

type knowledgeHandler struct {
	index  Ingestor
	logger *slog.Logger
}

type ingestRequest struct {
	Entries []knowledge.Entry `json:"entries"`
}

type ingestResponse struct {
	Ingested int `json:"ingested"`
}

// ingest handles POST /api/knowledge. An empty body seeds the built-in
// FAQ set. Ingestion is all-or-nothing; a failed batch leaves the index
// unchanged.
func (h *knowledgeHandler) ingest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxIngestBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to read request body", h.logger)
		return
	}

	entries := knowledge.DefaultFAQ()
	if len(body) > 0 {
		var req ingestRequest
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body", h.logger)
			return
		}
		if len(req.Entries) == 0 {
			writeError(w, http.StatusBadRequest, "missing_entries", "entries must be non-empty", h.logger)
			return
		}
		for _, e := range req.Entries {
			if e.Question == "" || e.Answer == "" {
				writeError(w, http.StatusBadRequest, "invalid_entry", "every entry needs a question and an answer", h.logger)
				return
			}
		}
		entries = req.Entries
	}

	ctx := r.Context()
	if err := h.index.EnsureCollection(ctx); err != nil {
		writeError(w, http.StatusServiceUnavailable, assistant.CodeIndexUnavailable, "vector index unavailable", h.logger)
		return
	}
	if err := h.index.AddEntries(ctx, entries); err != nil {
		status, code := http.StatusInternalServerError, assistant.CodeEmbeddingFailure
		if errors.Is(err, knowledge.ErrIndexUnavailable) {
			status, code = http.StatusServiceUnavailable, assistant.CodeIndexUnavailable
		}
		h.logger.Error("ingestion failed", "entries", len(entries), "error", err)
		writeError(w, status, code, "ingestion failed, no entries were added", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, ingestResponse{Ingested: len(entries)})
}

// stats handles GET /api/stats. Stats never fail the caller; backend
// errors come back inside the body.
func (h *knowledgeHandler) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.index.Stats(r.Context()))
}
