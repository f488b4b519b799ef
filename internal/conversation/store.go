package conversation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Querier defines the database operations the store needs. The production
// implementation lives in postgres.go; tests supply mocks.
type Querier interface {
	// InsertSession inserts a session row.
	InsertSession(ctx context.Context, session Session) error

	// InsertTurn appends one turn with a server-assigned timestamp.
	InsertTurn(ctx context.Context, sessionID, role, content string) error

	// InsertExchange appends a user turn then an assistant turn in a single
	// transaction.
	InsertExchange(ctx context.Context, sessionID, userContent, assistantContent string) error

	// RecentTurns returns the most recent limit turns for the session in
	// chronological (oldest-first) order.
	RecentTurns(ctx context.Context, sessionID string, limit int) ([]Turn, error)
}

// Store manages session and turn persistence.
//
// Store is safe for concurrent use by multiple goroutines, but does not
// serialize writers within a session; that is the orchestrator's job.
type Store struct {
	querier Querier
	logger  *slog.Logger
}

// New creates a Store over the given querier.
func New(querier Querier, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{querier: querier, logger: logger}
}

// CreateSession allocates a fresh session id for userID and persists the
// session row. Two calls for the same user yield two distinct sessions.
func (s *Store) CreateSession(ctx context.Context, userID string) (string, error) {
	session := Session{
		ID:     uuid.NewString(),
		UserID: userID,
	}
	if err := s.querier.InsertSession(ctx, session); err != nil {
		return "", fmt.Errorf("%w: creating session: %w", ErrStorage, err)
	}
	s.logger.Debug("created session", "session_id", session.ID, "user_id", userID)
	return session.ID, nil
}

// Append inserts one turn for the session. The timestamp is assigned by the
// database. The store accepts any role sequence; alternation is not enforced.
func (s *Store) Append(ctx context.Context, sessionID, role, content string) error {
	if err := s.querier.InsertTurn(ctx, sessionID, role, content); err != nil {
		return fmt.Errorf("%w: appending %s turn: %w", ErrStorage, role, err)
	}
	return nil
}

// AppendExchange persists a question/answer pair as a user turn followed by
// an assistant turn, atomically. Either both turns are recorded or neither
// is, which keeps multi-turn context reconstruction consistent.
func (s *Store) AppendExchange(ctx context.Context, sessionID, question, answer string) error {
	if err := s.querier.InsertExchange(ctx, sessionID, question, answer); err != nil {
		return fmt.Errorf("%w: appending exchange: %w", ErrStorage, err)
	}
	s.logger.Debug("appended exchange", "session_id", sessionID)
	return nil
}

// Recent returns up to limit turns for the session, oldest first. Callers
// that need most-recent-first must reverse. Unknown sessions yield an empty
// slice, not an error. A non-positive limit falls back to DefaultRecentLimit.
func (s *Store) Recent(ctx context.Context, sessionID string, limit int) ([]Turn, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	turns, err := s.querier.RecentTurns(ctx, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: loading recent turns: %w", ErrStorage, err)
	}
	return turns, nil
}
