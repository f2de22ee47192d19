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


package tabular

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/civita/caseflow/core"
	"github.com/civita/caseflow/storage"
)

// Default file names inside a source directory.
const (
	defaultCasesFile     = "cases.csv"
	defaultPersonnelFile = "personnel.csv"
	defaultVehiclesFile  = "vehicles.csv"
	defaultZonesFile     = "zones.csv"
)

// Date layouts accepted for case timestamps, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// DirSource loads the four reference tables from CSV files in a
// directory.
type DirSource struct {
	dir           string
	casesFile     string
	personnelFile string
	vehiclesFile  string
	zonesFile     string
	logger        *slog.Logger
}

var _ Source = (*DirSource)(nil)

// DirOption configures a DirSource.
type DirOption func(*DirSource)

// WithCasesFile overrides the cases file name.
func WithCasesFile(name string) DirOption {
	return func(s *DirSource) { s.casesFile = name }
}

// WithPersonnelFile overrides the personnel file name.
func WithPersonnelFile(name string) DirOption {
	return func(s *DirSource) { s.personnelFile = name }
}

// WithVehiclesFile overrides the vehicles file name.
func WithVehiclesFile(name string) DirOption {
	return func(s *DirSource) { s.vehiclesFile = name }
}

// WithZonesFile overrides the zones file name.
func WithZonesFile(name string) DirOption {
	return func(s *DirSource) { s.zonesFile = name }
}

// NewDirSource creates a CSV directory source.
func NewDirSource(dir string, opts ...DirOption) *DirSource {
	s := &DirSource{
		dir:           dir,
		casesFile:     defaultCasesFile,
		personnelFile: defaultPersonnelFile,
		vehiclesFile:  defaultVehiclesFile,
		zonesFile:     defaultZonesFile,
		logger:        slog.Default().With("component", "tabular"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads all four tables and returns the parsed snapshot.
func (s *DirSource) Load(ctx context.Context) (*storage.Snapshot, error) {
	cases, err := s.loadCases()
	if err != nil {
		return nil, err
	}
	personnel, err := s.loadPersonnel()
	if err != nil {
		return nil, err
	}
	vehicles, err := s.loadVehicles()
	if err != nil {
		return nil, err
	}
	zones, err := s.loadZones()
	if err != nil {
		return nil, err
	}

	s.logger.Info("loaded tabular data",
		"cases", len(cases),
		"personnel", len(personnel),
		"vehicles", len(vehicles),
		"zones", len(zones))

	return &storage.Snapshot{
		Cases:     cases,
		Personnel: personnel,
		Vehicles:  vehicles,
		Zones:     zones,
	}, nil
}

func (s *DirSource) loadCases() ([]*core.Case, error) {
	rows, err := s.readTable(s.casesFile, RequiredCaseColumns)
	if err != nil {
		return nil, err
	}

	cases := make([]*core.Case, 0, len(rows))
	for i, row := range rows {
		c := &core.Case{
			CaseKey:         row.get("numero_radicado_entrada"),
			ResponseKey:     row.get("numero_radicado_respuesta"),
			Status:          row.get("estado"),
			Subject:         row.get("asunto"),
			Category:        row.get("tema_principal"),
			RequestType:     row.get("tipo_solicitud"),
			Address:         row.get("direccion_hecho"),
			Neighborhood:    row.get("barrio_hecho"),
			Commune:         row.get("comuna_hecho"),
			PetitionerName:  row.get("nombre_peticionario"),
			PetitionerPhone: row.get("telefono_peticionario"),
			PetitionerEmail: row.get("correo_peticionario"),
			ElapsedDays:     parseInt(row.get("dias_transcurridos")),
			ResponsibleUnit: row.get("unidad_responsable"),
			RegisteredAt:    parseDate(row.get("fecha_radicacion")),
			DueAt:           parseDate(row.get("fecha_vencimiento")),
		}
		if err := core.ValidateCase(c); err != nil {
			s.logger.Warn("dropping invalid case row", "file", s.casesFile, "row", i+2, "error", err)
			continue
		}
		cases = append(cases, c)
	}
	return cases, nil
}

func (s *DirSource) loadPersonnel() ([]*core.Personnel, error) {
	rows, err := s.readTable(s.personnelFile, RequiredPersonnelColumns)
	if err != nil {
		return nil, err
	}

	personnel := make([]*core.Personnel, 0, len(rows))
	for i, row := range rows {
		p := &core.Personnel{
			EmployeeID:     row.get("employee_id"),
			FirstName:      row.get("first_name"),
			LastName:       row.get("last_name"),
			Role:           row.get("role"),
			Zone:           row.get("zone"),
			Status:         row.get("status"),
			Certifications: splitList(row.get("certifications")),
		}
		if err := core.ValidatePersonnel(p); err != nil {
			s.logger.Warn("dropping invalid personnel row", "file", s.personnelFile, "row", i+2, "error", err)
			continue
		}
		personnel = append(personnel, p)
	}
	return personnel, nil
}

func (s *DirSource) loadVehicles() ([]*core.Vehicle, error) {
	rows, err := s.readTable(s.vehiclesFile, RequiredVehicleColumns)
	if err != nil {
		return nil, err
	}

	vehicles := make([]*core.Vehicle, 0, len(rows))
	for i, row := range rows {
		v := &core.Vehicle{
			LicensePlate: row.get("license_plate"),
			Type:         row.get("vehicle_type"),
			Zone:         row.get("zone"),
			Status:       row.get("status"),
			Capacity:     parseInt(row.get("capacity")),
		}
		if err := core.ValidateVehicle(v); err != nil {
			s.logger.Warn("dropping invalid vehicle row", "file", s.vehiclesFile, "row", i+2, "error", err)
			continue
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, nil
}

func (s *DirSource) loadZones() ([]*core.Zone, error) {
	rows, err := s.readTable(s.zonesFile, RequiredZoneColumns)
	if err != nil {
		return nil, err
	}

	zones := make([]*core.Zone, 0, len(rows))
	for _, row := range rows {
		zones = append(zones, &core.Zone{
			Name:          row.get("name"),
			Code:          row.get("code"),
			Commune:       row.get("commune"),
			PriorityLevel: row.get("priority_level"),
			Population:    parseInt(row.get("population")),
			AreaKM2:       parseFloat(row.get("area_km2")),
		})
	}
	return zones, nil
}

// record is one parsed CSV row keyed by normalized column name.
type record map[string]string

func (r record) get(column string) string {
	return strings.TrimSpace(r[column])
}

// readTable reads a CSV file and returns its rows keyed by column name.
// Headers are trimmed and lower-cased before the required-column check.
func (s *DirSource) readTable(name string, required []string) ([]record, error) {
	path := filepath.Join(s.dir, name)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrDataSource, name, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s header: %w", ErrDataSource, name, err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.ToLower(strings.TrimSpace(h))
	}

	known := make(map[string]bool, len(columns))
	for _, c := range columns {
		known[c] = true
	}
	for _, col := range required {
		if !known[col] {
			return nil, fmt.Errorf("%w: %s is missing required column %q", ErrDataSource, name, col)
		}
	}

	var rows []record
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %w", ErrDataSource, name, err)
		}
		row := make(record, len(columns))
		for i, value := range fields {
			if i < len(columns) {
				row[columns[i]] = value
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseInt(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// Excel exports often carry integers as "12.0".
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0
		}
		return int(f)
	}
	return n
}

func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == ','
	})
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
