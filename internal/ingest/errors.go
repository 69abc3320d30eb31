package ingest

import "errors"

// Failure kinds for the ingestion pipeline, one per stage plus generic
// input validation. Stage code wraps underlying causes with its own kind
// via fmt.Errorf("...: %w", ...); callers classify with errors.Is.
//
// ErrInvalidInput is the one exception to the wrapping policy: it is the
// most specific, caller-actionable signal and must pass through unchanged.
var (
	// ErrInvalidInput is returned when a caller-supplied value violates a
	// precondition (empty text list, wrong vector dimension, mismatched
	// lengths, non-PDF path). Never retried, never wrapped.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConversion is returned when PDF conversion cannot produce a
	// usable structured document, including non-success conversion status.
	ErrConversion = errors.New("pdf conversion failed")

	// ErrChunking is returned when chunker setup or execution fails for a
	// reason other than invalid input.
	ErrChunking = errors.New("document chunking failed")

	// ErrEmbedding is returned when model loading or inference fails.
	ErrEmbedding = errors.New("embedding generation failed")

	// ErrEmptyResult is returned when a stage produces zero output where
	// at least one item is required downstream.
	ErrEmptyResult = errors.New("empty result")

	// ErrStoreConnection is returned when the vector store is unreachable
	// at connection time.
	ErrStoreConnection = errors.New("vector store connection failed")

	// ErrStoreWrite is returned when collection creation or point upsert
	// fails.
	ErrStoreWrite = errors.New("vector store write failed")

	// ErrStoreRead is returned when reading collection statistics fails.
	ErrStoreRead = errors.New("vector store read failed")

	// ErrStoreSearch is returned when a similarity search fails.
	ErrStoreSearch = errors.New("vector store search failed")
)
