package agent

import (
	"context"

	"github.com/civita/caseflow/assign"
	"github.com/civita/caseflow/core"
	"github.com/civita/caseflow/search"
	"github.com/civita/caseflow/storage"
)

// Retriever is the query capability the coordinator dispatches to.
type Retriever interface {
	Retrieve(ctx context.Context, req search.Request) (*search.Result, error)
	Suggest(ctx context.Context, partial string, limit int) ([]string, error)
}

// Assigner is the assignment capability the coordinator dispatches to.
type Assigner interface {
	Assign(ctx context.Context, caseKeys []string, zoneFilter string) (*assign.Outcome, error)
}

// DataAdmin is the data-management capability the coordinator
// dispatches to: reloading tables, rebuilding the index, and reporting.
type DataAdmin interface {
	Reload(ctx context.Context) (storage.TableCounts, error)
	RebuildIndex(ctx context.Context) (int, error)
	Statistics(ctx context.Context) (*storage.Statistics, error)
	ValidateIntegrity(ctx context.Context) (*core.IntegrityReport, error)
}
