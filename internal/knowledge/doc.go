// Package knowledge implements the FAQ knowledge index.
//
// The index owns one named collection of embedded FAQ documents and answers
// similarity queries over it. Embeddings are produced by a pluggable
// Embedder (OpenAI embeddings in production) and stored in PostgreSQL with
// pgvector; queries order by cosine distance.
//
// # Architecture
//
//	Entry (question, answer)
//	     |
//	     +-- Embedder (text -> vector)
//	     |
//	     v
//	Querier (PostgreSQL + pgvector)
//	     |
//	     +-- cosine distance search
//	     v
//	Result (document text, most relevant first)
//
// Ingestion is all-or-nothing: a batch aborts on the first embedding failure
// so a partially ingested knowledge base is never committed.
//
// Index is safe for concurrent use by multiple goroutines.
package knowledge
