package indexing

import "errors"

var (
	// ErrRecordStoreRequired indicates a nil record store was passed to NewIndexer.
	ErrRecordStoreRequired = errors.New("record store is required")

	// ErrChunkIndexRequired indicates a nil chunk index was passed to NewIndexer.
	ErrChunkIndexRequired = errors.New("chunk index is required")

	// ErrEmbedderRequired indicates a nil embedder was passed to NewIndexer.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrInvalidMaxAttempts indicates maxAttempts <= 0 was passed to RetryWithBackoff.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrIndexBuild indicates a rebuild failed. The previously published
	// index generation remains in service.
	ErrIndexBuild = errors.New("index build failed")
)
