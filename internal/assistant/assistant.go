// Package assistant implements the end-to-end question answering
// transaction: retrieve relevant FAQ content, assemble a prompt with the
// session's recent history, generate an answer, and persist the exchange.
//
// Each transaction is independent; transactions for one session are
// serialized by a per-session lock so concurrent requests cannot interleave
// history reads and turn writes. Any failure aborts the whole transaction
// with a *ProcessingError carrying a stable code; a generated answer whose
// persistence fails is reported as a failure, not returned, because
// multi-turn context reconstruction depends on the store being complete.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/trackline/helpdesk/internal/conversation"
	"github.com/trackline/helpdesk/internal/knowledge"
	"github.com/trackline/helpdesk/internal/llm"
)

const systemPrompt = "You are a helpful customer support assistant. " +
	"Answer the user's question using only the provided FAQ content. " +
	"If the FAQ content does not contain enough information to answer, " +
	"politely say that you don't have that information and suggest " +
	"contacting support."

// Defaults applied when Options fields are zero.
const (
	DefaultSearchTopK      = 3
	DefaultHistoryLimit    = 10
	DefaultGenerateTimeout = 60 * time.Second
)

// Searcher retrieves the most relevant FAQ documents for a query.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]knowledge.Result, error)
}

// Historian reads and appends session conversation turns.
type Historian interface {
	Recent(ctx context.Context, sessionID string, limit int) ([]conversation.Turn, error)
	AppendExchange(ctx context.Context, sessionID, question, answer string) error
}

// Generator produces a completion through the named provider.
type Generator interface {
	Generate(ctx context.Context, provider string, messages []llm.Message) (string, error)
}

// Request carries one question through the pipeline. Provider may be empty
// or unrecognized; the gateway falls back to its default.
type Request struct {
	Question  string
	UserID    string
	SessionID string
	Provider  string
}

// Response is the answer plus the ranked evidence it was grounded on.
type Response struct {
	Answer       string   `json:"answer"`
	RelevantFAQs []string `json:"relevantFaqs"`
}

// Options tune the pipeline. Zero values take the defaults above.
type Options struct {
	SearchTopK      int
	HistoryLimit    int
	GenerateTimeout time.Duration
}

// Assistant orchestrates retrieval, generation, and persistence.
type Assistant struct {
	index    Searcher
	store    Historian
	gateway  Generator
	opts     Options
	sessions *sessionLocker
	logger   *slog.Logger
}

// New creates an Assistant over the given collaborators.
func New(index Searcher, store Historian, gateway Generator, opts Options, logger *slog.Logger) *Assistant {
	if opts.SearchTopK <= 0 {
		opts.SearchTopK = DefaultSearchTopK
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = DefaultGenerateTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{
		index:    index,
		store:    store,
		gateway:  gateway,
		opts:     opts,
		sessions: newSessionLocker(),
		logger:   logger,
	}
}

// Answer runs the full transaction for one question. On success the
// exchange is already persisted; on any failure the store is untouched and
// the error is a *ProcessingError.
func (a *Assistant) Answer(ctx context.Context, req Request) (*Response, error) {
	release := a.sessions.acquire(req.SessionID)
	defer release()

	start := time.Now()

	// Retrieval and history have no data dependency; fetch both at once.
	var (
		results []knowledge.Result
		history []conversation.Turn
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		results, err = a.index.Search(gctx, req.Question, a.opts.SearchTopK)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = a.store.Recent(gctx, req.SessionID, a.opts.HistoryLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, classify(err)
	}

	promptContext := assembleContext(results, history)
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: promptContext + "\n\nUser Question: " + req.Question},
	}

	genCtx, cancel := context.WithTimeout(ctx, a.opts.GenerateTimeout)
	defer cancel()

	answer, err := a.gateway.Generate(genCtx, req.Provider, messages)
	if err != nil {
		return nil, classify(err)
	}

	if err := a.store.AppendExchange(ctx, req.SessionID, req.Question, answer); err != nil {
		return nil, classify(err)
	}

	a.logger.Info("answered question",
		"session_id", req.SessionID,
		"provider", req.Provider,
		"faq_matches", len(results),
		"history_turns", len(history),
		"duration", time.Since(start))

	faqs := make([]string, len(results))
	for i, r := range results {
		faqs[i] = r.Content
	}
	return &Response{Answer: answer, RelevantFAQs: faqs}, nil
}

// assembleContext renders the retrieved documents and, when present, the
// conversation history into the prompt context block.
func assembleContext(results []knowledge.Result, history []conversation.Turn) string {
	var b strings.Builder
	b.WriteString("Relevant FAQ Content:\n")
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r.Content)
	}
	if len(history) > 0 {
		b.WriteString("\nConversation History:\n")
		for _, t := range history {
			fmt.Fprintf(&b, "%s: %s\n", t.Role, t.Content)
		}
	}
	return b.String()
}
