package tabular

import (
	"context"

	"github.com/civita/caseflow/storage"
)

// Source produces a complete snapshot of the reference tables. A load
// either yields all four tables or fails; there is no partial result.
type Source interface {
	// Load reads and parses every table. Rows that fail validation are
	// dropped with a warning; structural problems (missing file, missing
	// required column, unreadable data) fail the whole load with an
	// error wrapping ErrDataSource.
	Load(ctx context.Context) (*storage.Snapshot, error)
}

// Required columns per table, matched after headers are trimmed and
// lower-cased. Case columns keep the upstream Spanish names.
var (
	RequiredCaseColumns      = []string{"numero_radicado_entrada", "estado"}
	RequiredPersonnelColumns = []string{"employee_id", "first_name", "last_name", "role", "zone", "status"}
	RequiredVehicleColumns   = []string{"license_plate", "vehicle_type", "zone", "status"}
	RequiredZoneColumns      = []string{"name", "code", "commune"}
)
