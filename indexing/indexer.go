// Copyright 2026 Civita Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package indexing

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/civita/caseflow/ai"
	"github.com/civita/caseflow/core"
	"github.com/civita/caseflow/storage"
)

const (
	defaultChunkSize      = 1000
	defaultChunkOverlap   = 200
	defaultBatchSize      = 16
	defaultMaxRetries     = 3
	defaultRetryBaseDelay = time.Second
)

// Indexer builds the chunk index from the case table. A rebuild is
// all-or-nothing: the published index is only replaced after every chunk
// embedded successfully, so a failed rebuild leaves the previous index
// in service.
type Indexer struct {
	store          storage.RecordStore
	index          storage.ChunkIndex
	embedder       ai.Embedder
	pool           *ants.Pool
	splitter       textsplitter.RecursiveCharacter
	batchSize      int
	maxRetries     int
	retryBaseDelay time.Duration
	logger         *slog.Logger
}

// Option configures an Indexer.
type Option func(*Indexer) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(ix *Indexer) error {
		if size < 1 {
			size = 1
		}
		if ix.pool != nil {
			ix.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		ix.pool = pool
		return nil
	}
}

// WithBatchSize sets how many chunks are embedded per provider call.
func WithBatchSize(size int) Option {
	return func(ix *Indexer) error {
		if size < 1 {
			size = 1
		}
		ix.batchSize = size
		return nil
	}
}

// WithChunking overrides the splitter's chunk size and overlap.
func WithChunking(size, overlap int) Option {
	return func(ix *Indexer) error {
		ix.splitter = textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(size),
			textsplitter.WithChunkOverlap(overlap),
		)
		return nil
	}
}

// WithRetry sets the retry policy for embedding calls.
func WithRetry(maxRetries int, baseDelay time.Duration) Option {
	return func(ix *Indexer) error {
		if maxRetries < 1 {
			return ErrInvalidMaxAttempts
		}
		ix.maxRetries = maxRetries
		ix.retryBaseDelay = baseDelay
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Indexer) error {
		if logger == nil {
			logger = slog.Default()
		}
		ix.logger = logger
		return nil
	}
}

// NewIndexer creates an indexer over the given store, index, and embedder.
func NewIndexer(store storage.RecordStore, index storage.ChunkIndex, embedder ai.Embedder, opts ...Option) (*Indexer, error) {
	if store == nil {
		return nil, ErrRecordStoreRequired
	}
	if index == nil {
		return nil, ErrChunkIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	ix := &Indexer{
		store:    store,
		index:    index,
		embedder: embedder,
		pool:     pool,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(defaultChunkSize),
			textsplitter.WithChunkOverlap(defaultChunkOverlap),
		),
		batchSize:      defaultBatchSize,
		maxRetries:     defaultMaxRetries,
		retryBaseDelay: defaultRetryBaseDelay,
		logger:         slog.Default().With("component", "indexing"),
	}
	for _, opt := range opts {
		if err := opt(ix); err != nil {
			ix.pool.Release()
			return nil, err
		}
	}
	return ix, nil
}

// Close releases the worker pool.
func (ix *Indexer) Close() {
	ix.pool.Release()
}

// Rebuild regenerates the whole index from the current case table and
// returns the number of published entries. Cases with no embeddable
// content are skipped. Any embedding failure aborts the rebuild before
// publication and is reported wrapping ErrIndexBuild.
func (ix *Indexer) Rebuild(ctx context.Context) (int, error) {
	cases, err := ix.store.Cases(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: reading cases: %w", ErrIndexBuild, err)
	}

	entries, err := ix.composeEntries(cases)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIndexBuild, err)
	}
	ix.logger.Info("rebuilding index", "cases", len(cases), "chunks", len(entries))

	if err := ix.embedEntries(ctx, entries); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIndexBuild, err)
	}

	if err := ix.index.Replace(ctx, entries); err != nil {
		return 0, fmt.Errorf("%w: publishing index: %w", ErrIndexBuild, err)
	}
	return len(entries), nil
}

// composeEntries turns cases into unembedded index entries, splitting
// long searchable text into overlapping chunks.
func (ix *Indexer) composeEntries(cases []*core.Case) ([]*core.IndexEntry, error) {
	var entries []*core.IndexEntry
	for _, c := range cases {
		text := SearchableText(c)
		if text == "" {
			continue
		}

		chunks, err := ix.splitter.SplitText(text)
		if err != nil {
			return nil, fmt.Errorf("splitting case %s: %w", c.CaseKey, err)
		}
		for i, chunk := range chunks {
			entries = append(entries, &core.IndexEntry{
				Id:           core.IDFromContent(c.CaseKey + "#" + strconv.Itoa(i) + "#" + chunk),
				CaseKey:      c.CaseKey,
				Text:         chunk,
				Status:       c.Status,
				Category:     c.Category,
				Zone:         c.Commune,
				Neighborhood: c.Neighborhood,
				RegisteredAt: c.RegisteredAt,
			})
		}
	}
	return entries, nil
}

// embedEntries fills in entry vectors, batching provider calls across
// the worker pool. Vectors are normalized so the index's dot product is
// the cosine similarity.
func (ix *Indexer) embedEntries(ctx context.Context, entries []*core.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for start := 0; start < len(entries); start += ix.batchSize {
		end := start + ix.batchSize
		if end > len(entries) {
			end = len(entries)
		}
		batch := entries[start:end]

		wg.Add(1)
		err := ix.pool.Submit(func() {
			defer wg.Done()

			if err := ix.embedBatch(ctx, batch); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
			break
		}
	}

	wg.Wait()
	return firstErr
}

func (ix *Indexer) embedBatch(ctx context.Context, batch []*core.IndexEntry) error {
	texts := make([]string, len(batch))
	for i, e := range batch {
		texts[i] = e.Text
	}

	var vectors [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		vectors, err = ix.embedder.EmbedTexts(ctx, texts)
		return err
	}, ix.maxRetries, ix.retryBaseDelay)
	if err != nil {
		return fmt.Errorf("embedding batch of %d after %d attempts: %w", len(batch), ix.maxRetries, err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(vectors))
	}

	for i, e := range batch {
		e.Vector = NormalizeVector(vectors[i])
	}
	return nil
}
