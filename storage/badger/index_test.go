package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civita/caseflow/core"
)

func testEntries() []*core.IndexEntry {
	return []*core.IndexEntry{
		{Id: core.ID(1), CaseKey: "R-001", Text: "poda de árboles", Vector: []float32{1, 0, 0}},
		{Id: core.ID(2), CaseKey: "R-002", Text: "fuga de agua", Vector: []float32{0, 1, 0}},
		{Id: core.ID(3), CaseKey: "R-003", Text: "luminaria dañada", Vector: []float32{0.6, 0.8, 0}},
	}
}

func TestChunkIndex_ReplaceAndCount(t *testing.T) {
	_, index, backend, err := NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	n, err := index.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, index.Replace(ctx, testEntries()))

	n, err = index.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestChunkIndex_SearchOrdering(t *testing.T) {
	_, index, backend, err := NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	require.NoError(t, index.Replace(ctx, testEntries()))

	matches, err := index.Search(ctx, []float32{0, 1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	// Descending similarity to the query vector.
	assert.Equal(t, "R-002", matches[0].Entry.CaseKey)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-6)
	assert.Equal(t, "R-003", matches[1].Entry.CaseKey)
	assert.InDelta(t, 0.8, matches[1].Score, 1e-6)
	assert.Equal(t, "R-001", matches[2].Entry.CaseKey)
}

func TestChunkIndex_SearchLimit(t *testing.T) {
	_, index, backend, err := NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	require.NoError(t, index.Replace(ctx, testEntries()))

	matches, err := index.Search(ctx, []float32{0, 1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "R-002", matches[0].Entry.CaseKey)

	none, err := index.Search(ctx, []float32{0, 1, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestChunkIndex_SearchTieBreaksOnEntryID(t *testing.T) {
	_, index, backend, err := NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	entries := []*core.IndexEntry{
		{Id: core.ID(20), CaseKey: "R-020", Text: "a", Vector: []float32{1, 0}},
		{Id: core.ID(10), CaseKey: "R-010", Text: "b", Vector: []float32{1, 0}},
	}
	require.NoError(t, index.Replace(ctx, entries))

	matches, err := index.Search(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, core.ID(10), matches[0].Entry.Id)
	assert.Equal(t, core.ID(20), matches[1].Entry.Id)
}

func TestChunkIndex_ReplaceSwapsCompletely(t *testing.T) {
	_, index, backend, err := NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	require.NoError(t, index.Replace(ctx, testEntries()))

	replacement := []*core.IndexEntry{
		{Id: core.ID(9), CaseKey: "R-009", Text: "hueco en la calzada", Vector: []float32{0, 0, 1}},
	}
	require.NoError(t, index.Replace(ctx, replacement))

	n, err := index.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	matches, err := index.Search(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "R-009", matches[0].Entry.CaseKey)
}

func TestChunkIndex_ReplaceWithEmptyClearsIndex(t *testing.T) {
	_, index, backend, err := NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	require.NoError(t, index.Replace(ctx, testEntries()))
	require.NoError(t, index.Replace(ctx, nil))

	n, err := index.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestChunkIndex_SkipsEntriesWithoutVectors(t *testing.T) {
	_, index, backend, err := NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	entries := []*core.IndexEntry{
		{Id: core.ID(1), CaseKey: "R-001", Text: "sin vector"},
		{Id: core.ID(2), CaseKey: "R-002", Text: "con vector", Vector: []float32{1, 0}},
	}
	require.NoError(t, index.Replace(ctx, entries))

	matches, err := index.Search(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "R-002", matches[0].Entry.CaseKey)
}
