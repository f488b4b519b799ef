// Package api exposes the question answering pipeline over HTTP as a small
// JSON API: chat, session bootstrap, knowledge ingestion, stats, and
// health probes.
//
// Identity is resolved at this boundary (auth cookie, then bearer token,
// then anonymous) and only the resolved user id crosses into the core.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ServerConfig contains everything needed to build the API server.
type ServerConfig struct {
	Logger    *slog.Logger
	Assistant Answerer       // Required
	Sessions  SessionCreator // Required
	Index     Ingestor       // Required
	Pool      *pgxpool.Pool  // Optional: nil degrades /ready to liveness
	JWTSecret []byte         // Optional: empty disables token identities
}

// Server is the JSON API HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates the server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Assistant == nil {
		return nil, errors.New("assistant is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("session creator is required")
	}
	if cfg.Index == nil {
		return nil, errors.New("knowledge index is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ch := &chatHandler{assistant: cfg.Assistant, sessions: cfg.Sessions, logger: logger}
	sh := &sessionHandler{sessions: cfg.Sessions, logger: logger}
	kh := &knowledgeHandler{index: cfg.Index, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", ch.send)
	mux.HandleFunc("POST /api/sessions", sh.create)
	mux.HandleFunc("POST /api/knowledge", kh.ingest)
	mux.HandleFunc("GET /api/stats", kh.stats)

	// Middleware stack, outermost first: Recovery → Logging → Identity.
	var handler http.Handler = mux
	handler = identityMiddleware(newIdentityChain(cfg.JWTSecret))(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Health probes bypass the middleware stack.
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", health)
	topMux.Handle("GET /ready", readiness(cfg.Pool))
	topMux.Handle("/", handler)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
