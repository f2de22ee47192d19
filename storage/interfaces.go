package storage

import (
	"context"

	"github.com/civita/caseflow/core"
)

// Snapshot is a fully-parsed set of reference tables produced by a load.
// It is built completely off to the side before being published.
type Snapshot struct {
	Cases     []*core.Case
	Personnel []*core.Personnel
	Vehicles  []*core.Vehicle
	Zones     []*core.Zone
}

// TableCounts reports per-table row counts.
type TableCounts struct {
	Cases     int
	Personnel int
	Vehicles  int
	Zones     int
}

// Statistics reports per-table totals plus a breakdown of cases by
// status value as it appears in the source data.
type Statistics struct {
	Tables        TableCounts
	CasesByStatus map[string]int
}

// CaseFilter selects cases whose logical field value is a member of the
// given set. A single-element set is an exact-match filter. Field names
// are resolved by core.Case.Field; values are compared case-insensitively.
type CaseFilter map[string][]string

// RecordStore holds the queryable reference tables. Implementations must
// be thread-safe: a ReplaceAll must never be observable half-applied by
// a concurrent reader.
type RecordStore interface {
	// ReplaceAll atomically replaces all four tables with the snapshot's
	// contents. Readers see either the fully-old or fully-new tables.
	// Row order within each table follows snapshot order.
	ReplaceAll(ctx context.Context, snap *Snapshot) (TableCounts, error)

	// Cases returns the cases matching the filter, preserving source
	// order. A nil or empty filter returns every case.
	Cases(ctx context.Context, filter CaseFilter) ([]*core.Case, error)

	// CaseByKey returns the case with the given entry key, or nil when
	// absent. Absence is not an error. When the source data carried
	// duplicate keys the last-loaded row wins.
	CaseByKey(ctx context.Context, key string) (*core.Case, error)

	// PersonnelByZone returns personnel whose zone matches, compared
	// case-insensitively, preserving source order.
	PersonnelByZone(ctx context.Context, zone string) ([]*core.Personnel, error)

	// VehiclesByZone returns vehicles whose zone matches, compared
	// case-insensitively, preserving source order.
	VehiclesByZone(ctx context.Context, zone string) ([]*core.Vehicle, error)

	// Zones returns all zone records in source order.
	Zones(ctx context.Context) ([]*core.Zone, error)

	// Counts returns current per-table row counts.
	Counts(ctx context.Context) (TableCounts, error)

	// Close closes the storage backend and releases resources.
	Close() error
}

// ChunkIndex stores embedded index entries and supports nearest-neighbour
// search over them. Like the record store, a Replace must never be
// observable half-applied.
type ChunkIndex interface {
	// Replace atomically replaces the whole index with the given
	// entries. There is no incremental update; consistency after any
	// case change requires a full rebuild.
	Replace(ctx context.Context, entries []*core.IndexEntry) error

	// Search returns up to limit entries most similar to the vector,
	// ordered by descending similarity. Entry vectors are expected to be
	// normalized so the dot product is the cosine similarity.
	Search(ctx context.Context, vector []float32, limit int) ([]*core.ChunkMatch, error)

	// Count returns the number of entries currently in the index.
	Count(ctx context.Context) (int, error)

	// Close closes the index backend and releases resources.
	Close() error
}
