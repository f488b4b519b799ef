package conversation

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresQuerier implements Querier on PostgreSQL.
type PostgresQuerier struct {
	pool *pgxpool.Pool
}

// NewPostgresQuerier creates a Querier backed by the given pool.
func NewPostgresQuerier(pool *pgxpool.Pool) *PostgresQuerier {
	return &PostgresQuerier{pool: pool}
}

// InsertSession inserts a session row.
func (q *PostgresQuerier) InsertSession(ctx context.Context, session Session) error {
	_, err := q.pool.Exec(ctx,
		`INSERT INTO chat_sessions (id, user_id) VALUES ($1, $2)`,
		session.ID, session.UserID)
	return err
}

// InsertTurn appends one turn; created_at defaults to now() server-side.
func (q *PostgresQuerier) InsertTurn(ctx context.Context, sessionID, role, content string) error {
	_, err := q.pool.Exec(ctx,
		`INSERT INTO chat_messages (session_id, role, content) VALUES ($1, $2, $3)`,
		sessionID, role, content)
	return err
}

// InsertExchange appends the user turn then the assistant turn in one
// transaction. The serial id preserves user-before-assistant ordering even
// when the two timestamps collide.
func (q *PostgresQuerier) InsertExchange(ctx context.Context, sessionID, userContent, assistantContent string) error {
	return pgx.BeginFunc(ctx, q.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO chat_messages (session_id, role, content) VALUES ($1, $2, $3)`,
			sessionID, RoleUser, userContent); err != nil {
			return fmt.Errorf("inserting user turn: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO chat_messages (session_id, role, content) VALUES ($1, $2, $3)`,
			sessionID, RoleAssistant, assistantContent); err != nil {
			return fmt.Errorf("inserting assistant turn: %w", err)
		}
		return nil
	})
}

// RecentTurns selects the newest limit turns, then reverses to chronological
// order so callers see oldest-first.
func (q *PostgresQuerier) RecentTurns(ctx context.Context, sessionID string, limit int) ([]Turn, error) {
	rows, err := q.pool.Query(ctx,
		`SELECT session_id, role, content, created_at
		 FROM chat_messages
		 WHERE session_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent turns: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.SessionID, &t.Role, &t.Content, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading turns: %w", err)
	}

	// Newest-first from the query; callers expect oldest-first.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}
