package indexing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civita/caseflow/ai/mock"
	"github.com/civita/caseflow/core"
	"github.com/civita/caseflow/storage"
	"github.com/civita/caseflow/storage/badger"
)

func setupStores(t *testing.T) (*badger.RecordStore, *badger.ChunkIndex) {
	t.Helper()
	store, index, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return store, index
}

func loadCases(t *testing.T, store *badger.RecordStore, cases ...*core.Case) {
	t.Helper()
	_, err := store.ReplaceAll(context.Background(), &storage.Snapshot{Cases: cases})
	require.NoError(t, err)
}

func TestIndexer_Rebuild(t *testing.T) {
	store, index := setupStores(t)
	loadCases(t, store,
		&core.Case{CaseKey: "R-001", Status: "active", Subject: "Fuga de agua", Commune: "Comuna 1"},
		&core.Case{CaseKey: "R-002", Status: "active", Subject: "Luminaria dañada", Commune: "Comuna 2"},
		&core.Case{CaseKey: "R-003", Status: "active"}, // no embeddable content
	)

	ix, err := NewIndexer(store, index, mock.NewMockEmbedder())
	require.NoError(t, err)
	defer ix.Close()

	n, err := ix.Rebuild(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := index.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Only cases with content are represented.
	matches, err := index.Search(context.Background(), make([]float32, 384), 10)
	require.NoError(t, err)
	keys := make(map[string]bool)
	for _, m := range matches {
		keys[m.Entry.CaseKey] = true
		assert.NotEmpty(t, m.Entry.Text)
		assert.Len(t, m.Entry.Vector, 384)
	}
	assert.Equal(t, map[string]bool{"R-001": true, "R-002": true}, keys)
}

func TestIndexer_RebuildIsIdempotent(t *testing.T) {
	store, index := setupStores(t)
	loadCases(t, store,
		&core.Case{CaseKey: "R-001", Status: "active", Subject: "Fuga de agua"},
		&core.Case{CaseKey: "R-002", Status: "active", Subject: "Hueco en la vía"},
	)

	ix, err := NewIndexer(store, index, mock.NewMockEmbedder())
	require.NoError(t, err)
	defer ix.Close()

	ctx := context.Background()
	first, err := ix.Rebuild(ctx)
	require.NoError(t, err)
	second, err := ix.Rebuild(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	count, err := index.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, count)
}

func TestIndexer_FailedRebuildPreservesOldIndex(t *testing.T) {
	store, index := setupStores(t)
	loadCases(t, store,
		&core.Case{CaseKey: "R-001", Status: "active", Subject: "Fuga de agua"},
	)

	embedder := mock.NewMockEmbedder()
	ix, err := NewIndexer(store, index, embedder, WithRetry(1, time.Millisecond))
	require.NoError(t, err)
	defer ix.Close()

	ctx := context.Background()
	_, err = ix.Rebuild(ctx)
	require.NoError(t, err)

	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("provider down")
	}

	_, err = ix.Rebuild(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIndexBuild)

	// The previous generation is still queryable.
	count, err := index.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIndexer_EmptyTableClearsIndex(t *testing.T) {
	store, index := setupStores(t)
	loadCases(t, store,
		&core.Case{CaseKey: "R-001", Status: "active", Subject: "Fuga de agua"},
	)

	ix, err := NewIndexer(store, index, mock.NewMockEmbedder())
	require.NoError(t, err)
	defer ix.Close()

	ctx := context.Background()
	_, err = ix.Rebuild(ctx)
	require.NoError(t, err)

	loadCases(t, store) // replace with an empty table
	n, err := ix.Rebuild(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	count, err := index.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestNewIndexer_Validation(t *testing.T) {
	store, index := setupStores(t)

	_, err := NewIndexer(nil, index, mock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrRecordStoreRequired)

	_, err = NewIndexer(store, nil, mock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrChunkIndexRequired)

	_, err = NewIndexer(store, index, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds after failures", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		}, 3, time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("returns last error", func(t *testing.T) {
		wantErr := errors.New("persistent")
		err := RetryWithBackoff(ctx, func() error { return wantErr }, 2, time.Millisecond)
		assert.ErrorIs(t, err, wantErr)
	})

	t.Run("invalid attempts", func(t *testing.T) {
		err := RetryWithBackoff(ctx, func() error { return nil }, 0, time.Millisecond)
		assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
	})
}

func TestNormalizeVector(t *testing.T) {
	normalized := NormalizeVector([]float32{3, 4})
	assert.InDelta(t, 0.6, normalized[0], 1e-6)
	assert.InDelta(t, 0.8, normalized[1], 1e-6)

	zero := NormalizeVector([]float32{0, 0})
	assert.Equal(t, []float32{0, 0}, zero)
}
