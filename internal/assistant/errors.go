package assistant

import (
	"errors"
	"fmt"

	"github.com/trackline/helpdesk/internal/conversation"
	"github.com/trackline/helpdesk/internal/knowledge"
	"github.com/trackline/helpdesk/internal/llm"
)

// Stable error codes surfaced to the web layer. Each code maps one failure
// kind of the answer pipeline.
const (
	CodeEmbeddingFailure     = "EMBEDDING_FAILURE"
	CodeIndexUnavailable     = "INDEX_UNAVAILABLE"
	CodeProviderUnconfigured = "PROVIDER_UNCONFIGURED"
	CodeGenerationFailure    = "GENERATION_FAILURE"
	CodeStorageFailure       = "STORAGE_FAILURE"
	CodeInternal             = "INTERNAL"
)

// ProcessingError wraps any failure of the answer transaction with a stable
// code for logging and client error responses. The underlying error remains
// reachable through Unwrap for errors.Is checks.
type ProcessingError struct {
	Code string
	Err  error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("processing question (%s): %v", e.Code, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// classify maps component sentinel errors to their stable codes.
func classify(err error) *ProcessingError {
	code := CodeInternal
	switch {
	case errors.Is(err, knowledge.ErrEmbedding):
		code = CodeEmbeddingFailure
	case errors.Is(err, knowledge.ErrIndexUnavailable):
		code = CodeIndexUnavailable
	case errors.Is(err, llm.ErrProviderUnconfigured):
		code = CodeProviderUnconfigured
	case errors.Is(err, llm.ErrGeneration):
		code = CodeGenerationFailure
	case errors.Is(err, conversation.ErrStorage):
		code = CodeStorageFailure
	}
	return &ProcessingError{Code: code, Err: err}
}
