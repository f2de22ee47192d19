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


package caseflow

import (
	"context"
	"log/slog"

	"github.com/civita/caseflow/agent"
	"github.com/civita/caseflow/ai"
	"github.com/civita/caseflow/ai/openai"
	"github.com/civita/caseflow/assign"
	"github.com/civita/caseflow/core"
	"github.com/civita/caseflow/indexing"
	"github.com/civita/caseflow/search"
	"github.com/civita/caseflow/storage"
	"github.com/civita/caseflow/storage/badger"
	"github.com/civita/caseflow/tabular"
)

// System wires the record store, chunk index, indexer, retrieval engine,
// assignment engine, and coordinator over one storage backend and one AI
// provider. All collaborators are owned explicitly; there are no package
// globals.
type System struct {
	backend   *badger.Backend
	store     *badger.RecordStore
	index     *badger.ChunkIndex
	source    tabular.Source
	provider  ai.AIProvider
	indexer   *indexing.Indexer
	retriever *search.Retriever
	engine    *assign.Engine
	agents    *agent.Coordinator
	logger    *slog.Logger
}

// SystemOption configures a System.
type SystemOption func(*systemOptions)

type systemOptions struct {
	aiConfig    *ai.Config
	provider    ai.AIProvider
	inMemory    bool
	indexerOpts []indexing.Option
}

// WithAIConfig sets the AI provider configuration used when no provider
// is injected. Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) SystemOption {
	return func(o *systemOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider injects a pre-built AI provider, bypassing the OpenAI
// client construction. Used by tests and embedders with custom stacks.
func WithProvider(provider ai.AIProvider) SystemOption {
	return func(o *systemOptions) {
		o.provider = provider
	}
}

// WithInMemory opens the storage backend in memory instead of on disk.
func WithInMemory() SystemOption {
	return func(o *systemOptions) {
		o.inMemory = true
	}
}

// WithIndexerOptions forwards options to the indexer.
func WithIndexerOptions(opts ...indexing.Option) SystemOption {
	return func(o *systemOptions) {
		o.indexerOpts = append(o.indexerOpts, opts...)
	}
}

// New builds a System storing data at dbPath and loading reference
// tables from the given source.
func New(dbPath string, source tabular.Source, opts ...SystemOption) (*System, error) {
	options := &systemOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(dbPath, options.inMemory)
	if err != nil {
		return nil, err
	}

	store := badger.NewRecordStore(backend)
	index := badger.NewChunkIndex(backend)

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	indexer, err := indexing.NewIndexer(store, index, provider.Embedder(), options.indexerOpts...)
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}

	retriever, err := search.NewRetriever(store, index, provider)
	if err != nil {
		indexer.Close()
		provider.Close()
		backend.Close()
		return nil, err
	}

	engine, err := assign.NewEngine(store, provider)
	if err != nil {
		indexer.Close()
		provider.Close()
		backend.Close()
		return nil, err
	}

	s := &System{
		backend:   backend,
		store:     store,
		index:     index,
		source:    source,
		provider:  provider,
		indexer:   indexer,
		retriever: retriever,
		engine:    engine,
		logger:    slog.Default().With("component", "caseflow"),
	}

	s.agents, err = agent.NewCoordinator(provider, retriever, engine, (*dataAdmin)(s))
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the provider, worker pools, and storage backend.
func (s *System) Close() error {
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}
	s.indexer.Close()

	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// LoadResult reports what a Load published.
type LoadResult struct {
	Counts storage.TableCounts

	// IndexStale is always true after a successful load: replacing the
	// tables invalidates the semantic index, and rebuilding it is the
	// caller's explicit next step. The load itself never cascades into
	// an index rebuild.
	IndexStale bool
}

// Load replaces all reference tables from the source. No partial load:
// a source error leaves the published tables untouched.
func (s *System) Load(ctx context.Context) (*LoadResult, error) {
	snap, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.ReplaceAll(ctx, snap)
	if err != nil {
		return nil, err
	}
	return &LoadResult{Counts: counts, IndexStale: true}, nil
}

// RebuildIndex regenerates the semantic index from the current case
// table and returns the number of published entries.
func (s *System) RebuildIndex(ctx context.Context) (int, error) {
	return s.indexer.Rebuild(ctx)
}

// Retrieve answers one query in any of the three modes.
func (s *System) Retrieve(ctx context.Context, req search.Request) (*search.Result, error) {
	return s.retriever.Retrieve(ctx, req)
}

// Suggest mines completion suggestions for a partial query.
func (s *System) Suggest(ctx context.Context, partial string, limit int) ([]string, error) {
	return s.retriever.Suggest(ctx, partial, limit)
}

// Assign matches the requested active cases to zone resources.
func (s *System) Assign(ctx context.Context, caseKeys []string, zoneFilter string) (*assign.Outcome, error) {
	return s.engine.Assign(ctx, caseKeys, zoneFilter)
}

// ValidateIntegrity reports data-quality issues in the published tables.
func (s *System) ValidateIntegrity(ctx context.Context) (*core.IntegrityReport, error) {
	cases, err := s.store.Cases(ctx, nil)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.Counts(ctx)
	if err != nil {
		return nil, err
	}
	report := core.CheckIntegrity(cases, counts.Personnel, counts.Vehicles)
	return &report, nil
}

// Statistics reports table totals and the case status breakdown.
func (s *System) Statistics(ctx context.Context) (*storage.Statistics, error) {
	counts, err := s.store.Counts(ctx)
	if err != nil {
		return nil, err
	}
	cases, err := s.store.Cases(ctx, nil)
	if err != nil {
		return nil, err
	}

	byStatus := make(map[string]int)
	for _, c := range cases {
		byStatus[c.Status]++
	}
	return &storage.Statistics{Tables: counts, CasesByStatus: byStatus}, nil
}

// Process hands one task to the coordinator.
func (s *System) Process(ctx context.Context, req agent.TaskRequest) *agent.Response {
	return s.agents.Process(ctx, req)
}

// dataAdmin adapts System to the coordinator's data-management
// capability without widening System's public surface.
type dataAdmin System

var _ agent.DataAdmin = (*dataAdmin)(nil)

func (d *dataAdmin) Reload(ctx context.Context) (storage.TableCounts, error) {
	result, err := (*System)(d).Load(ctx)
	if err != nil {
		return storage.TableCounts{}, err
	}
	return result.Counts, nil
}

func (d *dataAdmin) RebuildIndex(ctx context.Context) (int, error) {
	return (*System)(d).RebuildIndex(ctx)
}

func (d *dataAdmin) Statistics(ctx context.Context) (*storage.Statistics, error) {
	return (*System)(d).Statistics(ctx)
}

func (d *dataAdmin) ValidateIntegrity(ctx context.Context) (*core.IntegrityReport, error) {
	return (*System)(d).ValidateIntegrity(ctx)
}
