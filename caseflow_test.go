package caseflow

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civita/caseflow/agent"
	"github.com/civita/caseflow/ai/mock"
	"github.com/civita/caseflow/search"
	"github.com/civita/caseflow/tabular"
)

func writeDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"cases.csv": "numero_radicado_entrada,estado,asunto,tema_principal,tipo_solicitud,comuna_hecho,dias_transcurridos\n" +
			"R-001,active,Fuga de agua en la calle,Acueducto,Petición,Comuna 1,12\n" +
			"R-002,active,Hueco en la vía,Infraestructura,Queja,Comuna 1,40\n" +
			"R-003,cerrado,Caso atendido,Ornato,Petición,Comuna 2,3\n",
		"personnel.csv": "employee_id,first_name,last_name,role,zone,status\n" +
			"EMP-001,Ana,Ruiz,Técnico,Comuna 1,available\n" +
			"EMP-002,Luis,Mora,Operario,Comuna 2,available\n",
		"vehicles.csv": "license_plate,vehicle_type,zone,status\n" +
			"ABC-123,camioneta,Comuna 1,available\n",
		"zones.csv": "name,code,commune\n" +
			"Centro,Z-01,Comuna 1\n" +
			"Norte,Z-02,Comuna 2\n",
	}
	for name, contents := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0644))
	}
	return dir
}

func newSystem(t *testing.T) (*System, *mock.MockOracle) {
	t.Helper()
	oracle := mock.NewMockOracle()
	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), oracle)

	system, err := New("", tabular.NewDirSource(writeDataDir(t)),
		WithInMemory(),
		WithProvider(provider),
	)
	require.NoError(t, err)
	t.Cleanup(func() { system.Close() })
	return system, oracle
}

func TestSystem_LoadAndRebuild(t *testing.T) {
	system, _ := newSystem(t)
	ctx := context.Background()

	result, err := system.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Counts.Cases)
	assert.Equal(t, 2, result.Counts.Personnel)
	assert.True(t, result.IndexStale, "a load always leaves the index stale until an explicit rebuild")

	entries, err := system.RebuildIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, entries)
}

func TestSystem_RetrieveAfterLoad(t *testing.T) {
	system, _ := newSystem(t)
	ctx := context.Background()

	_, err := system.Load(ctx)
	require.NoError(t, err)
	_, err = system.RebuildIndex(ctx)
	require.NoError(t, err)

	t.Run("exact", func(t *testing.T) {
		result, err := system.Retrieve(ctx, search.Request{Mode: search.ModeExactKey, Query: "R-001"})
		require.NoError(t, err)
		require.Len(t, result.Hits, 1)
		assert.Equal(t, "Fuga de agua en la calle", result.Hits[0].Case.Subject)
	})

	t.Run("semantic returns loaded cases", func(t *testing.T) {
		result, err := system.Retrieve(ctx, search.Request{Mode: search.ModeSemantic, Query: "agua", Limit: 10})
		require.NoError(t, err)
		assert.NotEmpty(t, result.Hits)
	})

	t.Run("hybrid filter narrows", func(t *testing.T) {
		result, err := system.Retrieve(ctx, search.Request{
			Mode:    search.ModeHybrid,
			Query:   "caso",
			Filters: map[string]string{"status": "active"},
			Limit:   10,
		})
		require.NoError(t, err)
		for _, hit := range result.Hits {
			assert.Equal(t, "active", hit.Case.Status)
		}
	})
}

func TestSystem_Assign(t *testing.T) {
	system, oracle := newSystem(t)
	ctx := context.Background()

	_, err := system.Load(ctx)
	require.NoError(t, err)

	oracle.Response = `{"assigned_personnel": ["EMP-001"], "confidence_score": 0.8}`
	outcome, err := system.Assign(ctx, []string{"R-001", "R-003", "R-999"}, "")
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.TotalAssigned)
	assert.ElementsMatch(t, []string{"R-003", "R-999"}, outcome.NotFound)
	assert.Equal(t, outcome.TotalAssigned+len(outcome.Unassigned), 1)
}

func TestSystem_ValidateIntegrity(t *testing.T) {
	system, _ := newSystem(t)
	ctx := context.Background()

	_, err := system.Load(ctx)
	require.NoError(t, err)

	report, err := system.ValidateIntegrity(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, report.Score)
	assert.Empty(t, report.Issues)
}

func TestSystem_Statistics(t *testing.T) {
	system, _ := newSystem(t)
	ctx := context.Background()

	_, err := system.Load(ctx)
	require.NoError(t, err)

	stats, err := system.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Tables.Cases)
	assert.Equal(t, map[string]int{"active": 2, "cerrado": 1}, stats.CasesByStatus)
}

func TestSystem_ProcessTask(t *testing.T) {
	system, oracle := newSystem(t)
	ctx := context.Background()

	_, err := system.Load(ctx)
	require.NoError(t, err)
	_, err = system.RebuildIndex(ctx)
	require.NoError(t, err)

	oracle.Response = `{"primary_intent": "data_management"}`
	resp := system.Process(ctx, agent.TaskRequest{
		Description: "estadísticas del sistema",
		Params:      agent.TaskParams{Action: "statistics"},
	})

	require.Contains(t, resp.Sections, "data")
	assert.Empty(t, resp.Sections["data"].Error)
}
