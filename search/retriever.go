package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"unicode/utf8"

	"github.com/civita/caseflow/ai"
	"github.com/civita/caseflow/core"
	"github.com/civita/caseflow/indexing"
	"github.com/civita/caseflow/storage"
)

// Mode selects the query strategy.
type Mode string

const (
	ModeExactKey Mode = "exact_key"
	ModeSemantic Mode = "semantic"
	ModeHybrid   Mode = "hybrid"
)

const (
	defaultLimit = 10

	// hybridOverfetch compensates for post-filtering attrition.
	hybridOverfetch = 2

	// excerptLen bounds MatchedContent.
	excerptLen = 200
)

// Request is one retrieval query.
type Request struct {
	Mode    Mode
	Query   string
	Filters map[string]string // hybrid only; logical field name -> exact value
	Limit   int               // max hits; defaults to 10
}

// Metadata describes how a result set was produced.
type Metadata struct {
	QueryType       Mode
	NotFound        bool // exact_key only: requested key absent
	FiltersApplied  map[string]string
	RelevanceScores []float32 // aligned with Result.Hits
}

// Result is a retrieval answer. An empty Hits slice is a valid answer.
type Result struct {
	Hits       []*core.CaseHit
	TotalFound int
	Metadata   Metadata
}

// Retriever answers exact, semantic, and hybrid queries against the
// chunk index and the live record store.
type Retriever struct {
	store    storage.RecordStore
	index    storage.ChunkIndex
	embedder ai.Embedder
	logger   *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a retriever over the given store and index.
func NewRetriever(store storage.RecordStore, index storage.ChunkIndex, provider ai.AIProvider, opts ...Option) (*Retriever, error) {
	if store == nil {
		return nil, ErrRecordStoreRequired
	}
	if index == nil {
		return nil, ErrChunkIndexRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	r := &Retriever{
		store:    store,
		index:    index,
		embedder: provider.Embedder(),
		logger:   slog.Default().With("component", "search"),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Retrieve answers one query. "No results" is never an error; only
// infrastructure failures are, wrapping ErrRetrieval.
func (r *Retriever) Retrieve(ctx context.Context, req Request) (*Result, error) {
	if req.Limit <= 0 {
		req.Limit = defaultLimit
	}

	switch req.Mode {
	case ModeExactKey:
		return r.exactLookup(ctx, req)
	case ModeSemantic:
		return r.semantic(ctx, req)
	case ModeHybrid:
		return r.hybrid(ctx, req)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, req.Mode)
	}
}

// exactLookup returns 0 or 1 hits. A miss sets the not_found flag.
func (r *Retriever) exactLookup(ctx context.Context, req Request) (*Result, error) {
	c, err := r.store.CaseByKey(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("%w: key lookup: %w", ErrRetrieval, err)
	}

	result := &Result{Metadata: Metadata{QueryType: ModeExactKey}}
	if c == nil {
		result.Metadata.NotFound = true
		return result, nil
	}

	result.Hits = []*core.CaseHit{{
		Case:           c,
		Score:          1,
		MatchedContent: excerpt(indexing.SearchableText(c)),
	}}
	result.TotalFound = 1
	result.Metadata.RelevanceScores = []float32{1}
	return result, nil
}

func (r *Retriever) semantic(ctx context.Context, req Request) (*Result, error) {
	hits, err := r.semanticHits(ctx, req.Query, req.Limit)
	if err != nil {
		return nil, err
	}
	return &Result{
		Hits:       hits,
		TotalFound: len(hits),
		Metadata: Metadata{
			QueryType:       ModeSemantic,
			RelevanceScores: scoresOf(hits),
		},
	}, nil
}

// hybrid over-fetches semantic candidates, applies exact structured
// filters, and truncates. Filtering can exhaust the candidates; the
// engine never re-queries to fill the limit.
func (r *Retriever) hybrid(ctx context.Context, req Request) (*Result, error) {
	candidates, err := r.semanticHits(ctx, req.Query, req.Limit*hybridOverfetch)
	if err != nil {
		return nil, err
	}

	hits := make([]*core.CaseHit, 0, len(candidates))
	for _, hit := range candidates {
		if matchesExactFilters(hit.Case, req.Filters) {
			hits = append(hits, hit)
		}
	}
	if len(hits) > req.Limit {
		hits = hits[:req.Limit]
	}

	return &Result{
		Hits:       hits,
		TotalFound: len(hits),
		Metadata: Metadata{
			QueryType:       ModeHybrid,
			FiltersApplied:  req.Filters,
			RelevanceScores: scoresOf(hits),
		},
	}, nil
}

// semanticHits embeds the query, searches the index, deduplicates per
// case keeping the best-scoring chunk, and re-hydrates survivors against
// the live store. Index entries whose case no longer exists are dropped
// silently; the live row is authoritative.
func (r *Retriever) semanticHits(ctx context.Context, query string, k int) ([]*core.CaseHit, error) {
	vector, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %w", ErrRetrieval, err)
	}

	matches, err := r.index.Search(ctx, indexing.NormalizeVector(vector), k)
	if err != nil {
		return nil, fmt.Errorf("%w: index search: %w", ErrRetrieval, err)
	}

	// Matches arrive best-first, so the first chunk seen per case is its
	// best one.
	best := make(map[string]*core.ChunkMatch, len(matches))
	order := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, seen := best[m.Entry.CaseKey]; !seen {
			best[m.Entry.CaseKey] = m
			order = append(order, m.Entry.CaseKey)
		}
	}

	hits := make([]*core.CaseHit, 0, len(order))
	for _, key := range order {
		c, err := r.store.CaseByKey(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("%w: hydrating %s: %w", ErrRetrieval, key, err)
		}
		if c == nil {
			r.logger.Debug("dropping stale index hit", "case_key", key)
			continue
		}
		m := best[key]
		hits = append(hits, &core.CaseHit{
			Case:           c,
			Score:          m.Score,
			MatchedContent: excerpt(m.Entry.Text),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Case.CaseKey < hits[j].Case.CaseKey
	})
	return hits, nil
}

// matchesExactFilters reports whether every filter value equals the
// case's field value exactly. An unresolvable field never matches.
func matchesExactFilters(c *core.Case, filters map[string]string) bool {
	for field, want := range filters {
		value, ok := c.Field(field)
		if !ok || value != want {
			return false
		}
	}
	return true
}

func scoresOf(hits []*core.CaseHit) []float32 {
	scores := make([]float32, len(hits))
	for i, h := range hits {
		scores[i] = h.Score
	}
	return scores
}

// excerpt bounds matched content the way the result surface presents it.
func excerpt(text string) string {
	if len(text) <= excerptLen {
		return text
	}
	cut := text[:excerptLen]
	// Avoid splitting a multi-byte rune.
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut + "..."
}
