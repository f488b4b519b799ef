package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/trackline/helpdesk/internal/log"
)

// mockQuerier implements Querier with an in-memory turn log.
type mockQuerier struct {
	sessionErr  error
	turnErr     error
	exchangeErr error
	recentErr   error

	sessions []Session
	turns    map[string][]Turn
	now      time.Time
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{
		turns: make(map[string][]Turn),
		now:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *mockQuerier) tick() time.Time {
	m.now = m.now.Add(time.Second)
	return m.now
}

func (m *mockQuerier) InsertSession(ctx context.Context, session Session) error {
	if m.sessionErr != nil {
		return m.sessionErr
	}
	session.CreatedAt = m.tick()
	m.sessions = append(m.sessions, session)
	return nil
}

func (m *mockQuerier) InsertTurn(ctx context.Context, sessionID, role, content string) error {
	if m.turnErr != nil {
		return m.turnErr
	}
	m.turns[sessionID] = append(m.turns[sessionID], Turn{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: m.tick(),
	})
	return nil
}

func (m *mockQuerier) InsertExchange(ctx context.Context, sessionID, userContent, assistantContent string) error {
	if m.exchangeErr != nil {
		return m.exchangeErr
	}
	_ = m.InsertTurn(ctx, sessionID, RoleUser, userContent)
	_ = m.InsertTurn(ctx, sessionID, RoleAssistant, assistantContent)
	return nil
}

func (m *mockQuerier) RecentTurns(ctx context.Context, sessionID string, limit int) ([]Turn, error) {
	if m.recentErr != nil {
		return nil, m.recentErr
	}
	all := m.turns[sessionID]
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	out := make([]Turn, len(all))
	copy(out, all)
	return out, nil
}

func TestCreateSession_DistinctIDs(t *testing.T) {
	q := newMockQuerier()
	store := New(q, log.NewNop())

	id1, err := store.CreateSession(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	id2, err := store.CreateSession(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if id1 == "" || id1 == id2 {
		t.Errorf("session ids must be unique and non-empty, got %q and %q", id1, id2)
	}
	if len(q.sessions) != 2 {
		t.Errorf("persisted %d sessions, want 2", len(q.sessions))
	}
	if q.sessions[0].UserID != "user-1" {
		t.Errorf("session user = %q, want user-1", q.sessions[0].UserID)
	}
}

func TestCreateSession_StorageFailure(t *testing.T) {
	q := newMockQuerier()
	q.sessionErr = errors.New("connection reset")
	store := New(q, log.NewNop())

	if _, err := store.CreateSession(context.Background(), "user-1"); !errors.Is(err, ErrStorage) {
		t.Errorf("err = %v, want ErrStorage", err)
	}
}

func TestRecent_ChronologicalAndBounded(t *testing.T) {
	q := newMockQuerier()
	store := New(q, log.NewNop())
	ctx := context.Background()

	for i := range 6 {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		if err := store.Append(ctx, "sess-a", role, string(rune('a'+i))); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	turns, err := store.Recent(ctx, "sess-a", 4)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(turns) != 4 {
		t.Fatalf("got %d turns, want 4", len(turns))
	}
	for i := 1; i < len(turns); i++ {
		if turns[i].CreatedAt.Before(turns[i-1].CreatedAt) {
			t.Error("turns not in ascending chronological order")
		}
	}
	// The most recent four of six turns are c, d, e, f.
	if turns[0].Content != "c" || turns[3].Content != "f" {
		t.Errorf("window = [%s..%s], want [c..f]", turns[0].Content, turns[3].Content)
	}
}

func TestRecent_NoCrossSessionLeakage(t *testing.T) {
	q := newMockQuerier()
	store := New(q, log.NewNop())
	ctx := context.Background()

	if err := store.Append(ctx, "sess-a", RoleUser, "hello from A"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	turns, err := store.Recent(ctx, "sess-b", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("session B sees %d turns from session A", len(turns))
	}
}

func TestRecent_DefaultLimit(t *testing.T) {
	q := newMockQuerier()
	store := New(q, log.NewNop())
	ctx := context.Background()

	for i := range 15 {
		_ = store.Append(ctx, "sess-a", RoleUser, string(rune('a'+i)))
	}

	turns, err := store.Recent(ctx, "sess-a", 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(turns) != DefaultRecentLimit {
		t.Errorf("got %d turns, want default limit %d", len(turns), DefaultRecentLimit)
	}
}

func TestAppendExchange_UserThenAssistant(t *testing.T) {
	q := newMockQuerier()
	store := New(q, log.NewNop())
	ctx := context.Background()

	if err := store.AppendExchange(ctx, "sess-a", "how much?", "it is free"); err != nil {
		t.Fatalf("AppendExchange: %v", err)
	}

	turns, _ := store.Recent(ctx, "sess-a", 10)
	if len(turns) != 2 {
		t.Fatalf("got %d turns, want 2", len(turns))
	}
	if turns[0].Role != RoleUser || turns[0].Content != "how much?" {
		t.Errorf("first turn = %+v, want user question", turns[0])
	}
	if turns[1].Role != RoleAssistant || turns[1].Content != "it is free" {
		t.Errorf("second turn = %+v, want assistant answer", turns[1])
	}
}

func TestAppendExchange_StorageFailure(t *testing.T) {
	q := newMockQuerier()
	q.exchangeErr = errors.New("deadlock detected")
	store := New(q, log.NewNop())

	err := store.AppendExchange(context.Background(), "sess-a", "q", "a")
	if !errors.Is(err, ErrStorage) {
		t.Errorf("err = %v, want ErrStorage", err)
	}
}

func TestAppend_DoesNotEnforceAlternation(t *testing.T) {
	q := newMockQuerier()
	store := New(q, log.NewNop())
	ctx := context.Background()

	// A malformed caller may append two user turns in a row; the store
	// accepts it.
	if err := store.Append(ctx, "sess-a", RoleUser, "one"); err != nil {
		t.Fatal(err)
	}
	if err := store.Append(ctx, "sess-a", RoleUser, "two"); err != nil {
		t.Fatal(err)
	}

	turns, _ := store.Recent(ctx, "sess-a", 10)
	if len(turns) != 2 {
		t.Errorf("got %d turns, want 2", len(turns))
	}
}
