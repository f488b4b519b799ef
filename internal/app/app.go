// Package app wires the application components together: database pool,
// knowledge index, conversation store, LLM gateway, and the assistant.
//
// Heavy clients (pgx pool, OpenAI client) are constructed once here and
// shared across requests for the life of the process.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	openai "github.com/sashabaranov/go-openai"

	"github.com/trackline/helpdesk/db"
	"github.com/trackline/helpdesk/internal/assistant"
	"github.com/trackline/helpdesk/internal/config"
	"github.com/trackline/helpdesk/internal/conversation"
	"github.com/trackline/helpdesk/internal/database"
	"github.com/trackline/helpdesk/internal/knowledge"
	"github.com/trackline/helpdesk/internal/llm"
)

// App is the application container. Fields are initialized by Setup and
// valid until Close.
type App struct {
	Config    *config.Config
	Pool      *pgxpool.Pool
	Index     *knowledge.Index
	Store     *conversation.Store
	Gateway   *llm.Gateway
	Assistant *assistant.Assistant

	logger *slog.Logger
}

// Setup connects to the database, runs pending migrations, and builds the
// full component graph.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	pool, err := database.Connect(ctx, cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// The OpenAI client serves both the embedder and the openai provider.
	var openaiClient *openai.Client
	if cfg.OpenAIAPIKey != "" {
		openaiClient = openai.NewClient(cfg.OpenAIAPIKey)
	}

	embedder := knowledge.NewOpenAIEmbedder(openaiClient, cfg.EmbedderModel)
	index := knowledge.NewIndex(
		knowledge.NewPostgresQuerier(pool),
		embedder,
		cfg.CollectionName,
		time.Duration(cfg.EmbeddingTimeoutSecs)*time.Second,
		logger,
	)

	store := conversation.New(conversation.NewPostgresQuerier(pool), logger)

	gateway, err := llm.NewGateway(cfg.DefaultProvider, logger,
		llm.NewOpenAIProvider(openaiClient, cfg.OpenAIModel, cfg.Temperature),
		llm.NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.AnthropicMaxTokens, cfg.Temperature),
		llm.NewGoogleProvider(cfg.GoogleAPIKey, cfg.GoogleModel, cfg.Temperature),
	)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("building llm gateway: %w", err)
	}

	asst := assistant.New(index, store, gateway, assistant.Options{
		SearchTopK:      cfg.SearchTopK,
		HistoryLimit:    cfg.HistoryLimit,
		GenerateTimeout: time.Duration(cfg.GenerateTimeoutSecs) * time.Second,
	}, logger)

	return &App{
		Config:    cfg,
		Pool:      pool,
		Index:     index,
		Store:     store,
		Gateway:   gateway,
		Assistant: asst,
		logger:    logger,
	}, nil
}

// Close releases shared resources.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
		a.logger.Info("database pool closed")
	}
}
