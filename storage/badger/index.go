package badger

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/civita/caseflow/core"
	"github.com/civita/caseflow/storage"
)

// ChunkIndex implements storage.ChunkIndex with a brute-force scan over
// the live index generation. Entry counts are in the thousands, so a
// linear dot-product pass beats the bookkeeping cost of an ANN structure.
type ChunkIndex struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.ChunkIndex = (*ChunkIndex)(nil)

// NewChunkIndex creates a chunk index using the given backend.
func NewChunkIndex(backend *Backend) *ChunkIndex {
	return &ChunkIndex{
		backend: backend,
		logger:  slog.Default().With("component", "chunk_index"),
	}
}

// Replace atomically replaces the whole index with the given entries.
// Uses the same generation-pointer scheme as the record tables.
func (x *ChunkIndex) Replace(ctx context.Context, entries []*core.IndexEntry) error {
	if x.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	var oldGen uint64
	err := x.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		oldGen, err = readGeneration(tx, tableChunks)
		return err
	}, false)
	if err != nil {
		return fmt.Errorf("reading index generation: %w", err)
	}
	newGen := oldGen + 1

	pairs := make([]kvPair, 0, len(entries))
	for i, e := range entries {
		pairs = append(pairs, kvPair{
			key:   makeRowKey(tableChunks, newGen, uint64(i)),
			value: storage.MarshalIndexEntry(e),
		})
	}
	if err := x.backend.writeBulk(pairs); err != nil {
		return fmt.Errorf("writing index generation %d: %w", newGen, err)
	}

	err = x.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeGenPointerKey(tableChunks), encodeGen(newGen)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return fmt.Errorf("publishing index generation %d: %w", newGen, err)
	}

	if oldGen > 0 {
		if err := x.backend.DropPrefix(makeRowPrefix(tableChunks, oldGen)); err != nil {
			x.logger.Warn("failed to purge old index generation", "error", err)
		}
	}

	x.logger.Info("replaced chunk index", "generation", newGen, "entries", len(entries))
	return nil
}

// Search returns up to limit entries most similar to the vector, ordered
// by descending dot-product similarity. Ties break on ascending entry ID
// so results are stable across runs.
func (x *ChunkIndex) Search(ctx context.Context, vector []float32, limit int) ([]*core.ChunkMatch, error) {
	if x.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	if limit <= 0 {
		return nil, nil
	}

	var matches []*core.ChunkMatch
	err := x.backend.WithTx(func(tx *badger.Txn) error {
		gen, err := readGeneration(tx, tableChunks)
		if err != nil {
			return err
		}
		if gen == 0 {
			return nil
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeRowPrefix(tableChunks, gen)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var entry *core.IndexEntry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalIndexEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			if len(entry.Vector) == 0 {
				continue
			}
			matches = append(matches, &core.ChunkMatch{
				Entry: entry,
				Score: dotProduct(vector, entry.Vector),
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(matches, func(a, b *core.ChunkMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		if a.Entry.Id < b.Entry.Id {
			return -1
		}
		if a.Entry.Id > b.Entry.Id {
			return 1
		}
		return 0
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Count returns the number of entries currently in the index.
func (x *ChunkIndex) Count(ctx context.Context) (int, error) {
	if x.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}

	n := 0
	err := x.backend.WithTx(func(tx *badger.Txn) error {
		gen, err := readGeneration(tx, tableChunks)
		if err != nil {
			return err
		}
		if gen == 0 {
			return nil
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeRowPrefix(tableChunks, gen)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			n++
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Close closes the underlying backend.
func (x *ChunkIndex) Close() error {
	return x.backend.Close()
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
