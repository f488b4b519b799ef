package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Querier defines the database operations the index needs. Interfaces are
// defined by the consumer, not the provider; the production implementation
// lives in postgres.go and tests supply mocks.
type Querier interface {
	// EnsureCollection creates the named collection if absent (idempotent).
	EnsureCollection(ctx context.Context, name string) error

	// InsertDocuments inserts a batch of documents into the named collection
	// within a single transaction. Existing ids are never overwritten.
	InsertDocuments(ctx context.Context, collection string, docs []Document) error

	// SearchDocuments returns up to k documents of the named collection
	// ordered by ascending cosine distance to the query embedding.
	SearchDocuments(ctx context.Context, collection string, query pgvector.Vector, k int) ([]Result, error)

	// CountDocuments counts documents in the named collection.
	CountDocuments(ctx context.Context, collection string) (int64, error)
}

// SearchTimeout bounds a single similarity query (embedding call excluded).
const SearchTimeout = 10 * time.Second

// Index maintains one named collection of embedded FAQ documents and answers
// similarity queries against it.
type Index struct {
	querier      Querier
	embedder     Embedder
	collection   string
	embedTimeout time.Duration
	logger       *slog.Logger
}

// NewIndex creates an Index over the given querier and embedder.
// embedTimeout bounds each embedding call; zero means no extra deadline.
func NewIndex(querier Querier, embedder Embedder, collection string, embedTimeout time.Duration, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{
		querier:      querier,
		embedder:     embedder,
		collection:   collection,
		embedTimeout: embedTimeout,
		logger:       logger,
	}
}

// CollectionName returns the name of the collection this index owns.
func (ix *Index) CollectionName() string { return ix.collection }

// EnsureCollection creates the collection if it does not exist yet.
// Calling it repeatedly is a no-op.
func (ix *Index) EnsureCollection(ctx context.Context) error {
	if err := ix.querier.EnsureCollection(ctx, ix.collection); err != nil {
		return fmt.Errorf("%w: ensuring collection %q: %w", ErrIndexUnavailable, ix.collection, err)
	}
	ix.logger.Debug("collection ready", "collection", ix.collection)
	return nil
}

// AddEntries embeds and stores a batch of FAQ entries.
//
// Each entry is embedded as question + " " + answer and stored under a
// freshly generated id. The batch is all-or-nothing: the first embedding
// failure aborts ingestion before anything is written, and the insert itself
// runs in one transaction, so a partially ingested knowledge base is never
// committed.
func (ix *Index) AddEntries(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	docs := make([]Document, 0, len(entries))
	for i, entry := range entries {
		text := entry.Question + " " + entry.Answer

		vec, err := ix.embed(ctx, text)
		if err != nil {
			return fmt.Errorf("%w: entry %d: %w", ErrEmbedding, i, err)
		}

		docs = append(docs, Document{
			ID:        "faq_" + uuid.NewString(),
			Question:  entry.Question,
			Answer:    entry.Answer,
			Content:   text,
			Embedding: pgvector.NewVector(vec),
		})
	}

	if err := ix.querier.InsertDocuments(ctx, ix.collection, docs); err != nil {
		return fmt.Errorf("%w: inserting %d documents: %w", ErrIndexUnavailable, len(docs), err)
	}

	ix.logger.Info("ingested FAQ entries", "collection", ix.collection, "count", len(docs))
	return nil
}

// Search returns up to k documents most similar to query, most relevant
// first. An empty or missing collection yields an empty result, not an
// error. k must be >= 1; k larger than the collection returns everything.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]Result, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTopK, k)
	}

	vec, err := ix.embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %w", ErrEmbedding, err)
	}

	queryCtx, cancel := context.WithTimeout(ctx, SearchTimeout)
	defer cancel()

	results, err := ix.querier.SearchDocuments(queryCtx, ix.collection, pgvector.NewVector(vec), k)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: search timeout: %w", ErrIndexUnavailable, err)
		}
		return nil, fmt.Errorf("%w: search: %w", ErrIndexUnavailable, err)
	}

	ix.logger.Debug("search completed", "collection", ix.collection, "k", k, "hits", len(results))
	return results, nil
}

// Stats reports the document count and collection name. It never fails the
// caller: on backend error the zero-valued stats carry the error description.
func (ix *Index) Stats(ctx context.Context) Stats {
	count, err := ix.querier.CountDocuments(ctx, ix.collection)
	if err != nil {
		ix.logger.Warn("failed to read index stats", "collection", ix.collection, "error", err)
		return Stats{CollectionName: ix.collection, Error: err.Error()}
	}
	return Stats{DocumentCount: count, CollectionName: ix.collection}
}

// embed generates the embedding for text with the configured timeout.
func (ix *Index) embed(ctx context.Context, text string) ([]float32, error) {
	if ix.embedTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ix.embedTimeout)
		defer cancel()
	}
	return ix.embedder.Embed(ctx, text)
}
