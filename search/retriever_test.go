package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civita/caseflow/ai/mock"
	"github.com/civita/caseflow/core"
	"github.com/civita/caseflow/storage"
	"github.com/civita/caseflow/storage/badger"
)

// fixture wires an in-memory store and index with hand-placed vectors so
// similarity ordering is fully controlled by the test.
type fixture struct {
	store     *badger.RecordStore
	index     *badger.ChunkIndex
	embedder  *mock.MockEmbedder
	retriever *Retriever
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, index, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	embedder := mock.NewMockEmbedder()
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockOracle())
	retriever, err := NewRetriever(store, index, provider)
	require.NoError(t, err)

	return &fixture{store: store, index: index, embedder: embedder, retriever: retriever}
}

func (f *fixture) load(t *testing.T, cases []*core.Case, entries []*core.IndexEntry) {
	t.Helper()
	ctx := context.Background()
	_, err := f.store.ReplaceAll(ctx, &storage.Snapshot{Cases: cases})
	require.NoError(t, err)
	require.NoError(t, f.index.Replace(ctx, entries))
}

func (f *fixture) queryVector(v []float32) {
	f.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return v, nil
	}
}

func standardFixture(t *testing.T) *fixture {
	f := newFixture(t)
	f.load(t,
		[]*core.Case{
			{CaseKey: "R-001", Status: "active", Category: "Acueducto", Commune: "Comuna 1", Subject: "Fuga de agua"},
			{CaseKey: "R-002", Status: "cerrado", Category: "Acueducto", Commune: "Comuna 2", Subject: "Daño de tubería"},
			{CaseKey: "R-003", Status: "active", Category: "Ornato", Commune: "Comuna 1", Subject: "Poda de árboles"},
		},
		[]*core.IndexEntry{
			{Id: core.ID(1), CaseKey: "R-001", Text: "fuga de agua potable", Vector: []float32{1, 0, 0}},
			{Id: core.ID(2), CaseKey: "R-002", Text: "daño de tubería madre", Vector: []float32{0.9, 0.1, 0}},
			{Id: core.ID(3), CaseKey: "R-003", Text: "poda de árboles en parque", Vector: []float32{0, 0, 1}},
		},
	)
	return f
}

func TestRetrieve_ExactKey(t *testing.T) {
	f := standardFixture(t)
	ctx := context.Background()

	t.Run("present", func(t *testing.T) {
		result, err := f.retriever.Retrieve(ctx, Request{Mode: ModeExactKey, Query: "R-002"})
		require.NoError(t, err)
		require.Len(t, result.Hits, 1)
		assert.Equal(t, "R-002", result.Hits[0].Case.CaseKey)
		assert.Equal(t, 1, result.TotalFound)
		assert.False(t, result.Metadata.NotFound)
	})

	t.Run("absent is not an error", func(t *testing.T) {
		result, err := f.retriever.Retrieve(ctx, Request{Mode: ModeExactKey, Query: "R-999"})
		require.NoError(t, err)
		assert.Empty(t, result.Hits)
		assert.Equal(t, 0, result.TotalFound)
		assert.True(t, result.Metadata.NotFound)
	})
}

func TestRetrieve_SemanticOrdering(t *testing.T) {
	f := standardFixture(t)
	f.queryVector([]float32{1, 0, 0})

	result, err := f.retriever.Retrieve(context.Background(), Request{Mode: ModeSemantic, Query: "fuga de agua", Limit: 10})
	require.NoError(t, err)
	require.Len(t, result.Hits, 3)

	assert.Equal(t, "R-001", result.Hits[0].Case.CaseKey)
	assert.Equal(t, "R-002", result.Hits[1].Case.CaseKey)
	assert.Equal(t, "R-003", result.Hits[2].Case.CaseKey)
	assert.Len(t, result.Metadata.RelevanceScores, 3)
	assert.True(t, result.Hits[0].Score >= result.Hits[1].Score)
	assert.Equal(t, "fuga de agua potable", result.Hits[0].MatchedContent)
}

func TestRetrieve_SemanticDeduplicatesPerCase(t *testing.T) {
	f := newFixture(t)
	f.load(t,
		[]*core.Case{{CaseKey: "R-001", Status: "active", Subject: "Fuga de agua"}},
		[]*core.IndexEntry{
			{Id: core.ID(1), CaseKey: "R-001", Text: "chunk fuerte", Vector: []float32{1, 0}},
			{Id: core.ID(2), CaseKey: "R-001", Text: "chunk débil", Vector: []float32{0.5, 0.5}},
		},
	)
	f.queryVector([]float32{1, 0})

	result, err := f.retriever.Retrieve(context.Background(), Request{Mode: ModeSemantic, Query: "fuga", Limit: 10})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "chunk fuerte", result.Hits[0].MatchedContent)
}

func TestRetrieve_SemanticDropsStaleHits(t *testing.T) {
	f := newFixture(t)
	// The index knows R-OLD but the live table does not.
	f.load(t,
		[]*core.Case{{CaseKey: "R-001", Status: "active", Subject: "Fuga de agua"}},
		[]*core.IndexEntry{
			{Id: core.ID(1), CaseKey: "R-OLD", Text: "caso retirado", Vector: []float32{1, 0}},
			{Id: core.ID(2), CaseKey: "R-001", Text: "caso vivo", Vector: []float32{0.9, 0.1}},
		},
	)
	f.queryVector([]float32{1, 0})

	result, err := f.retriever.Retrieve(context.Background(), Request{Mode: ModeSemantic, Query: "caso", Limit: 10})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "R-001", result.Hits[0].Case.CaseKey)
}

func TestRetrieve_SemanticTieBreaksOnCaseKey(t *testing.T) {
	f := newFixture(t)
	f.load(t,
		[]*core.Case{
			{CaseKey: "R-B", Status: "active", Subject: "b"},
			{CaseKey: "R-A", Status: "active", Subject: "a"},
		},
		[]*core.IndexEntry{
			{Id: core.ID(1), CaseKey: "R-B", Text: "texto b", Vector: []float32{1, 0}},
			{Id: core.ID(2), CaseKey: "R-A", Text: "texto a", Vector: []float32{1, 0}},
		},
	)
	f.queryVector([]float32{1, 0})

	result, err := f.retriever.Retrieve(context.Background(), Request{Mode: ModeSemantic, Query: "texto", Limit: 10})
	require.NoError(t, err)
	require.Len(t, result.Hits, 2)
	assert.Equal(t, "R-A", result.Hits[0].Case.CaseKey)
	assert.Equal(t, "R-B", result.Hits[1].Case.CaseKey)
}

func TestRetrieve_Hybrid(t *testing.T) {
	f := standardFixture(t)
	f.queryVector([]float32{1, 0, 0})
	ctx := context.Background()

	t.Run("filters narrow semantic hits", func(t *testing.T) {
		result, err := f.retriever.Retrieve(ctx, Request{
			Mode:    ModeHybrid,
			Query:   "agua",
			Filters: map[string]string{"status": "active", "zone": "Comuna 1"},
			Limit:   10,
		})
		require.NoError(t, err)
		require.Len(t, result.Hits, 2)
		assert.Equal(t, "R-001", result.Hits[0].Case.CaseKey)
		assert.Equal(t, "R-003", result.Hits[1].Case.CaseKey)
		assert.Equal(t, map[string]string{"status": "active", "zone": "Comuna 1"}, result.Metadata.FiltersApplied)
	})

	t.Run("exhausted candidates return fewer, never error", func(t *testing.T) {
		result, err := f.retriever.Retrieve(ctx, Request{
			Mode:    ModeHybrid,
			Query:   "agua",
			Filters: map[string]string{"category": "Inexistente"},
			Limit:   10,
		})
		require.NoError(t, err)
		assert.Empty(t, result.Hits)
		assert.Equal(t, 0, result.TotalFound)
	})

	t.Run("filter values match exactly", func(t *testing.T) {
		result, err := f.retriever.Retrieve(ctx, Request{
			Mode:    ModeHybrid,
			Query:   "agua",
			Filters: map[string]string{"status": "ACTIVE"},
			Limit:   10,
		})
		require.NoError(t, err)
		assert.Empty(t, result.Hits)
	})

	t.Run("truncates to limit", func(t *testing.T) {
		result, err := f.retriever.Retrieve(ctx, Request{Mode: ModeHybrid, Query: "agua", Limit: 1})
		require.NoError(t, err)
		assert.Len(t, result.Hits, 1)
	})
}

func TestRetrieve_UnknownMode(t *testing.T) {
	f := standardFixture(t)
	_, err := f.retriever.Retrieve(context.Background(), Request{Mode: "regex", Query: "x"})
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestRetrieve_ProviderFailure(t *testing.T) {
	f := standardFixture(t)
	f.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, assert.AnError
	}

	_, err := f.retriever.Retrieve(context.Background(), Request{Mode: ModeSemantic, Query: "agua"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRetrieval)
}

func TestSuggest(t *testing.T) {
	f := newFixture(t)
	f.load(t,
		[]*core.Case{{CaseKey: "R-001", Status: "active", Subject: "poda"}},
		[]*core.IndexEntry{
			{Id: core.ID(1), CaseKey: "R-001", Text: "solicitud de poda de árboles", Vector: []float32{1, 0}},
			{Id: core.ID(2), CaseKey: "R-001", Text: "poda urgente solicitada", Vector: []float32{0.8, 0.2}},
		},
	)
	f.queryVector([]float32{1, 0})
	ctx := context.Background()

	t.Run("phrases containing the partial", func(t *testing.T) {
		suggestions, err := f.retriever.Suggest(ctx, "poda", 5)
		require.NoError(t, err)
		require.NotEmpty(t, suggestions)
		assert.Contains(t, suggestions, "Poda De")
	})

	t.Run("cap at limit", func(t *testing.T) {
		suggestions, err := f.retriever.Suggest(ctx, "poda", 1)
		require.NoError(t, err)
		assert.Len(t, suggestions, 1)
	})

	t.Run("no matches", func(t *testing.T) {
		suggestions, err := f.retriever.Suggest(ctx, "alcantarillado", 5)
		require.NoError(t, err)
		assert.Empty(t, suggestions)
	})

	t.Run("empty partial", func(t *testing.T) {
		suggestions, err := f.retriever.Suggest(ctx, "  ", 5)
		require.NoError(t, err)
		assert.Empty(t, suggestions)
	})
}
