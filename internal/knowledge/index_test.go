package knowledge

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/trackline/helpdesk/internal/log"
)

// mockEmbedder implements Embedder for testing.
type mockEmbedder struct {
	delay     time.Duration // simulate processing delay
	embedErr  error         // error to return
	failAfter int           // fail on the Nth call (0 = never)
	vector    []float32     // embedding to return
	callCount int
	lastText  string
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.callCount++
	m.lastText = text

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.embedErr != nil && (m.failAfter == 0 || m.callCount >= m.failAfter) {
		return nil, m.embedErr
	}

	vec := m.vector
	if vec == nil {
		vec = []float32{0.1, 0.2, 0.3}
	}
	return vec, nil
}

// mockQuerier implements Querier for testing.
type mockQuerier struct {
	ensureErr error
	insertErr error
	searchErr error
	countErr  error

	searchResults []Result
	countResult   int64

	ensureCalls   int
	insertedDocs  []Document
	insertBatches int
	lastSearchK   int
}

func (m *mockQuerier) EnsureCollection(ctx context.Context, name string) error {
	m.ensureCalls++
	return m.ensureErr
}

func (m *mockQuerier) InsertDocuments(ctx context.Context, collection string, docs []Document) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.insertBatches++
	m.insertedDocs = append(m.insertedDocs, docs...)
	return nil
}

func (m *mockQuerier) SearchDocuments(ctx context.Context, collection string, query pgvector.Vector, k int) ([]Result, error) {
	m.lastSearchK = k
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k < len(m.searchResults) {
		return m.searchResults[:k], nil
	}
	return m.searchResults, nil
}

func (m *mockQuerier) CountDocuments(ctx context.Context, collection string) (int64, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.countResult, nil
}

func newTestIndex(q Querier, e Embedder) *Index {
	return NewIndex(q, e, "faq_test", 0, log.NewNop())
}

func TestEnsureCollection_Idempotent(t *testing.T) {
	q := &mockQuerier{}
	ix := newTestIndex(q, &mockEmbedder{})

	for range 2 {
		if err := ix.EnsureCollection(context.Background()); err != nil {
			t.Fatalf("EnsureCollection: %v", err)
		}
	}
	if q.ensureCalls != 2 {
		t.Errorf("ensureCalls = %d, want 2", q.ensureCalls)
	}
}

func TestEnsureCollection_BackendDown(t *testing.T) {
	q := &mockQuerier{ensureErr: errors.New("connection refused")}
	ix := newTestIndex(q, &mockEmbedder{})

	err := ix.EnsureCollection(context.Background())
	if !errors.Is(err, ErrIndexUnavailable) {
		t.Errorf("err = %v, want ErrIndexUnavailable", err)
	}
}

func TestAddEntries_EmbedsQuestionAndAnswer(t *testing.T) {
	q := &mockQuerier{}
	e := &mockEmbedder{}
	ix := newTestIndex(q, e)

	entries := []Entry{{Question: "Is it free?", Answer: "Yes."}}
	if err := ix.AddEntries(context.Background(), entries); err != nil {
		t.Fatalf("AddEntries: %v", err)
	}

	if e.lastText != "Is it free? Yes." {
		t.Errorf("embedded text = %q, want question + space + answer", e.lastText)
	}
	if len(q.insertedDocs) != 1 {
		t.Fatalf("inserted %d docs, want 1", len(q.insertedDocs))
	}
	doc := q.insertedDocs[0]
	if doc.Content != "Is it free? Yes." {
		t.Errorf("doc content = %q", doc.Content)
	}
	if !strings.HasPrefix(doc.ID, "faq_") || len(doc.ID) <= len("faq_") {
		t.Errorf("doc id = %q, want generated faq_ id", doc.ID)
	}
}

func TestAddEntries_FreshIDsPerIngestion(t *testing.T) {
	q := &mockQuerier{}
	ix := newTestIndex(q, &mockEmbedder{})

	entry := []Entry{{Question: "Is it free?", Answer: "Yes."}}
	for range 2 {
		if err := ix.AddEntries(context.Background(), entry); err != nil {
			t.Fatalf("AddEntries: %v", err)
		}
	}

	if len(q.insertedDocs) != 2 {
		t.Fatalf("inserted %d docs, want 2 (re-ingestion duplicates)", len(q.insertedDocs))
	}
	if q.insertedDocs[0].ID == q.insertedDocs[1].ID {
		t.Error("re-ingested entry reused a document id")
	}
}

func TestAddEntries_AbortsBatchOnEmbeddingFailure(t *testing.T) {
	q := &mockQuerier{}
	e := &mockEmbedder{embedErr: errors.New("rate limited"), failAfter: 2}
	ix := newTestIndex(q, e)

	entries := []Entry{
		{Question: "q1", Answer: "a1"},
		{Question: "q2", Answer: "a2"},
		{Question: "q3", Answer: "a3"},
	}
	err := ix.AddEntries(context.Background(), entries)
	if !errors.Is(err, ErrEmbedding) {
		t.Fatalf("err = %v, want ErrEmbedding", err)
	}
	if q.insertBatches != 0 || len(q.insertedDocs) != 0 {
		t.Error("failed batch must not insert anything")
	}
}

func TestAddEntries_EmptyBatchIsNoop(t *testing.T) {
	q := &mockQuerier{}
	ix := newTestIndex(q, &mockEmbedder{})

	if err := ix.AddEntries(context.Background(), nil); err != nil {
		t.Fatalf("AddEntries(nil): %v", err)
	}
	if q.insertBatches != 0 {
		t.Error("empty batch should not touch the database")
	}
}

func TestSearch_OrderedAndBounded(t *testing.T) {
	q := &mockQuerier{searchResults: []Result{
		{Content: "doc a", Distance: 0.1},
		{Content: "doc b", Distance: 0.3},
		{Content: "doc c", Distance: 0.7},
	}}
	ix := newTestIndex(q, &mockEmbedder{})

	results, err := ix.Search(context.Background(), "anything", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Distance > results[1].Distance {
		t.Error("results not ordered by non-decreasing distance")
	}
	if q.lastSearchK != 2 {
		t.Errorf("k passed to querier = %d, want 2", q.lastSearchK)
	}
}

func TestSearch_KLargerThanCollection(t *testing.T) {
	q := &mockQuerier{searchResults: []Result{{Content: "only doc", Distance: 0.2}}}
	ix := newTestIndex(q, &mockEmbedder{})

	results, err := ix.Search(context.Background(), "q", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want all available (1)", len(results))
	}
}

func TestSearch_EmptyCollection(t *testing.T) {
	ix := newTestIndex(&mockQuerier{}, &mockEmbedder{})

	results, err := ix.Search(context.Background(), "q", 3)
	if err != nil {
		t.Fatalf("empty collection must not error, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestSearch_InvalidK(t *testing.T) {
	ix := newTestIndex(&mockQuerier{}, &mockEmbedder{})

	if _, err := ix.Search(context.Background(), "q", 0); !errors.Is(err, ErrInvalidTopK) {
		t.Errorf("err = %v, want ErrInvalidTopK", err)
	}
}

func TestSearch_EmbeddingFailure(t *testing.T) {
	ix := newTestIndex(&mockQuerier{}, &mockEmbedder{embedErr: errors.New("boom")})

	_, err := ix.Search(context.Background(), "q", 3)
	if !errors.Is(err, ErrEmbedding) {
		t.Errorf("err = %v, want ErrEmbedding", err)
	}
}

func TestSearch_BackendDown(t *testing.T) {
	q := &mockQuerier{searchErr: errors.New("connection refused")}
	ix := newTestIndex(q, &mockEmbedder{})

	_, err := ix.Search(context.Background(), "q", 3)
	if !errors.Is(err, ErrIndexUnavailable) {
		t.Errorf("err = %v, want ErrIndexUnavailable", err)
	}
}

func TestSearch_EmbedTimeout(t *testing.T) {
	e := &mockEmbedder{delay: 50 * time.Millisecond}
	ix := NewIndex(&mockQuerier{}, e, "faq_test", time.Millisecond, log.NewNop())

	_, err := ix.Search(context.Background(), "q", 3)
	if !errors.Is(err, ErrEmbedding) {
		t.Errorf("err = %v, want ErrEmbedding on timeout", err)
	}
}

func TestStats_OK(t *testing.T) {
	q := &mockQuerier{countResult: 42}
	ix := newTestIndex(q, &mockEmbedder{})

	stats := ix.Stats(context.Background())
	if stats.DocumentCount != 42 || stats.CollectionName != "faq_test" {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Error != "" {
		t.Errorf("unexpected stats error %q", stats.Error)
	}
}

func TestStats_NeverFails(t *testing.T) {
	q := &mockQuerier{countErr: errors.New("backend down")}
	ix := newTestIndex(q, &mockEmbedder{})

	stats := ix.Stats(context.Background())
	if stats.DocumentCount != 0 {
		t.Errorf("count = %d, want 0 on error", stats.DocumentCount)
	}
	if stats.CollectionName != "faq_test" {
		t.Errorf("collection = %q", stats.CollectionName)
	}
	if !strings.Contains(stats.Error, "backend down") {
		t.Errorf("stats.Error = %q, want embedded backend error", stats.Error)
	}
}

func TestDefaultFAQ_NonEmpty(t *testing.T) {
	entries := DefaultFAQ()
	if len(entries) == 0 {
		t.Fatal("DefaultFAQ returned no entries")
	}
	for i, e := range entries {
		if e.Question == "" || e.Answer == "" {
			t.Errorf("entry %d has empty question or answer", i)
		}
	}
}
