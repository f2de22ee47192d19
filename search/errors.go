package search

import "errors"

var (
	// ErrRecordStoreRequired is returned when a record store is not provided.
	ErrRecordStoreRequired = errors.New("record store required")

	// ErrChunkIndexRequired is returned when a chunk index is not provided.
	ErrChunkIndexRequired = errors.New("chunk index required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrUnknownMode is returned for a query mode the engine does not support.
	ErrUnknownMode = errors.New("unknown query mode")

	// ErrRetrieval indicates an infrastructure failure (index unavailable,
	// provider unreachable). Empty result sets are never an error.
	ErrRetrieval = errors.New("retrieval failed")
)
