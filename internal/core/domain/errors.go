package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates an unknown document format or provider.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrNoDocuments indicates an analysis was requested without any documents.
	ErrNoDocuments = errors.New("no documents uploaded")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRetrievalUnavailable indicates no retrieval index is available.
	ErrRetrievalUnavailable = errors.New("retrieval index unavailable")

	// ErrWatchUnavailable indicates no directory watcher is configured.
	ErrWatchUnavailable = errors.New("directory watcher unavailable")

	// Fatal analysis errors. Any of these aborts the run and nothing is persisted.

	// ErrClassificationFailed indicates the legal process could not be identified.
	// Without a process name no checklist lookup is possible.
	ErrClassificationFailed = errors.New("process classification failed")

	// ErrChecklistUnreadable indicates the checklist could not be loaded or decoded.
	ErrChecklistUnreadable = errors.New("checklist unreadable")

	// ErrOutputUnwritable indicates the output location cannot be written.
	ErrOutputUnwritable = errors.New("output location unwritable")
)

// CandidateMatchError records a failed model query for one
// (required document, uploaded file) pair. The pair is treated as a non-match.
type CandidateMatchError struct {
	Required string
	Filename string
	Err      error
}

// Error implements the error interface.
func (e *CandidateMatchError) Error() string {
	return fmt.Sprintf("match %q against %q: %v", e.Required, e.Filename, e.Err)
}

// Unwrap returns the underlying error.
func (e *CandidateMatchError) Unwrap() error {
	return e.Err
}

// ChunkParseError records a chunk whose detection response could not be used.
// The chunk is skipped and detection continues.
type ChunkParseError struct {
	Document string
	Position int
	Err      error
}

// Error implements the error interface.
func (e *ChunkParseError) Error() string {
	return fmt.Sprintf("chunk %d of %s: %v", e.Position, e.Document, e.Err)
}

// Unwrap returns the underlying error.
func (e *ChunkParseError) Unwrap() error {
	return e.Err
}

// AnnotationWriteError records a document that could not be saved with annotations.
// The document is copied unchanged instead.
type AnnotationWriteError struct {
	Document string
	Err      error
}

// Error implements the error interface.
func (e *AnnotationWriteError) Error() string {
	return fmt.Sprintf("annotate %s: %v", e.Document, e.Err)
}

// Unwrap returns the underlying error.
func (e *AnnotationWriteError) Unwrap() error {
	return e.Err
}
