package tabular

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civita/caseflow/core"
)

func writeFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0644))
}

func writeDefaultTables(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, dir, "personnel.csv",
		"employee_id,first_name,last_name,role,zone,status,certifications\n"+
			"EMP-001,Ana,Ruiz,Técnico,Comuna 1,available,alturas;electricidad\n")
	writeFile(t, dir, "vehicles.csv",
		"license_plate,vehicle_type,zone,status,capacity\n"+
			"ABC-123,camioneta,Comuna 1,available,4\n")
	writeFile(t, dir, "zones.csv",
		"name,code,commune,priority_level,population,area_km2\n"+
			"Centro,Z-01,Comuna 1,alta,48210,7.25\n")
}

func TestDirSource_Load(t *testing.T) {
	dir := t.TempDir()
	writeDefaultTables(t, dir)
	writeFile(t, dir, "cases.csv",
		" Numero_Radicado_Entrada ,ESTADO,asunto,tema_principal,tipo_solicitud,direccion_hecho,barrio_hecho,comuna_hecho,nombre_peticionario,dias_transcurridos,unidad_responsable,fecha_radicacion,fecha_vencimiento\n"+
			"R-001,active,Fuga de agua,Acueducto,Queja,Calle 10 # 4-21,San Antonio,Comuna 1,María Pérez,12,Servicios Públicos,2025-03-14,2025-03-29\n"+
			"R-002,cerrado,Poda de árboles,Ornato,Petición,,,Comuna 2,,45,,,\n")

	snap, err := NewDirSource(dir).Load(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Cases, 2)
	c := snap.Cases[0]
	assert.Equal(t, "R-001", c.CaseKey)
	assert.Equal(t, "active", c.Status)
	assert.Equal(t, "Fuga de agua", c.Subject)
	assert.Equal(t, "Acueducto", c.Category)
	assert.Equal(t, "Comuna 1", c.Commune)
	assert.Equal(t, "María Pérez", c.PetitionerName)
	assert.Equal(t, 12, c.ElapsedDays)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), c.RegisteredAt)
	assert.True(t, snap.Cases[1].RegisteredAt.IsZero())

	require.Len(t, snap.Personnel, 1)
	p := snap.Personnel[0]
	assert.Equal(t, "EMP-001", p.EmployeeID)
	assert.Equal(t, []string{"alturas", "electricidad"}, p.Certifications)

	require.Len(t, snap.Vehicles, 1)
	assert.Equal(t, 4, snap.Vehicles[0].Capacity)

	require.Len(t, snap.Zones, 1)
	assert.Equal(t, 7.25, snap.Zones[0].AreaKM2)
}

func TestDirSource_DropsInvalidRows(t *testing.T) {
	dir := t.TempDir()
	writeDefaultTables(t, dir)
	writeFile(t, dir, "cases.csv",
		"numero_radicado_entrada,estado,asunto\n"+
			"R-001,active,válida\n"+
			",active,sin radicado\n"+
			"R-003,,sin estado\n")

	snap, err := NewDirSource(dir).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Cases, 1)
	assert.Equal(t, "R-001", snap.Cases[0].CaseKey)
}

func TestDirSource_MissingFile(t *testing.T) {
	dir := t.TempDir()
	writeDefaultTables(t, dir)
	// no cases.csv

	_, err := NewDirSource(dir).Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDataSource)
}

func TestDirSource_MissingRequiredColumn(t *testing.T) {
	dir := t.TempDir()
	writeDefaultTables(t, dir)
	writeFile(t, dir, "cases.csv",
		"numero_radicado_entrada,asunto\n"+
			"R-001,sin estado\n")

	_, err := NewDirSource(dir).Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDataSource)
	assert.Contains(t, err.Error(), "estado")
}

func TestDirSource_CustomFileNames(t *testing.T) {
	dir := t.TempDir()
	writeDefaultTables(t, dir)
	writeFile(t, dir, "pqrs.csv",
		"numero_radicado_entrada,estado\n"+
			"R-001,active\n")

	snap, err := NewDirSource(dir, WithCasesFile("pqrs.csv")).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Cases, 1)
	assert.Equal(t, core.StatusActive, snap.Cases[0].Status)
}

func TestParseInt_ExcelFloats(t *testing.T) {
	assert.Equal(t, 12, parseInt("12"))
	assert.Equal(t, 12, parseInt("12.0"))
	assert.Equal(t, 0, parseInt(""))
	assert.Equal(t, 0, parseInt("n/a"))
}
