package knowledge

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PostgresQuerier implements Querier on PostgreSQL with pgvector.
type PostgresQuerier struct {
	pool *pgxpool.Pool
}

// NewPostgresQuerier creates a Querier backed by the given pool.
// The pool must have pgvector types registered (see database.Connect).
func NewPostgresQuerier(pool *pgxpool.Pool) *PostgresQuerier {
	return &PostgresQuerier{pool: pool}
}

// EnsureCollection creates the named collection if absent.
func (q *PostgresQuerier) EnsureCollection(ctx context.Context, name string) error {
	_, err := q.pool.Exec(ctx,
		`INSERT INTO collections (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
	return err
}

// InsertDocuments inserts the batch in one transaction so a failed batch
// leaves the collection unchanged.
func (q *PostgresQuerier) InsertDocuments(ctx context.Context, collection string, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	return pgx.BeginFunc(ctx, q.pool, func(tx pgx.Tx) error {
		var collectionID string
		err := tx.QueryRow(ctx,
			`SELECT id FROM collections WHERE name = $1`, collection).Scan(&collectionID)
		if err != nil {
			return fmt.Errorf("resolving collection %q: %w", collection, err)
		}

		batch := &pgx.Batch{}
		for _, doc := range docs {
			batch.Queue(
				`INSERT INTO faq_documents (id, collection_id, content, question, answer, source_type, embedding)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				doc.ID, collectionID, doc.Content, doc.Question, doc.Answer, SourceTypeFAQ, doc.Embedding)
		}

		results := tx.SendBatch(ctx, batch)
		defer func() { _ = results.Close() }()
		for range docs {
			if _, err := results.Exec(); err != nil {
				return fmt.Errorf("inserting document: %w", err)
			}
		}
		return nil
	})
}

// SearchDocuments runs a cosine-distance query scoped to the collection.
// A missing collection simply yields no rows.
func (q *PostgresQuerier) SearchDocuments(ctx context.Context, collection string, query pgvector.Vector, k int) ([]Result, error) {
	rows, err := q.pool.Query(ctx,
		`SELECT d.id, d.question, d.answer, d.content, d.embedding <=> $2 AS distance
		 FROM faq_documents d
		 JOIN collections c ON d.collection_id = c.id
		 WHERE c.name = $1
		 ORDER BY d.embedding <=> $2
		 LIMIT $3`,
		collection, query, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.ID, &r.Question, &r.Answer, &r.Content, &r.Distance); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading search rows: %w", err)
	}
	return results, nil
}

// CountDocuments counts documents in the named collection.
func (q *PostgresQuerier) CountDocuments(ctx context.Context, collection string) (int64, error) {
	var count int64
	err := q.pool.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM faq_documents d
		 JOIN collections c ON d.collection_id = c.id
		 WHERE c.name = $1`,
		collection).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return count, nil
}
