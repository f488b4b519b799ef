package knowledge

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// SourceTypeFAQ tags documents ingested from FAQ entries. The column exists
// so future source types (manuals, release notes) can share the table.
const SourceTypeFAQ = "faq"

// Entry is one question-answer pair to be ingested.
// Identity is the generated document id, not the content: re-ingesting the
// same pair creates a duplicate document, not an update.
type Entry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Document is an embedded FAQ document as stored in the index.
// Documents are immutable once written.
type Document struct {
	ID        string
	Question  string
	Answer    string
	Content   string // question + " " + answer, the text that was embedded
	Embedding pgvector.Vector
	CreatedAt time.Time
}

// Result is a single search hit.
type Result struct {
	ID       string
	Question string
	Answer   string
	Content  string
	Distance float64 // cosine distance, smaller is more similar
}

// Stats describes the state of the index.
// Error carries a backend error description when stats could not be read;
// the zero counts are still returned so callers never fail on stats.
type Stats struct {
	DocumentCount  int64  `json:"documentCount"`
	CollectionName string `json:"collectionName"`
	Error          string `json:"error,omitempty"`
}
