package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vsinha/replenish/pkg/application/services/demand"
	"github.com/vsinha/replenish/pkg/domain/entities"
)

func writeCatalog(t *testing.T, path string, withKits bool) {
	t.Helper()

	wb := excelize.NewFile()
	defer wb.Close()

	require.NoError(t, wb.SetSheetName("Sheet1", "catalogo_simples"))
	require.NoError(t, wb.SetSheetRow("catalogo_simples", "A1", &[]interface{}{"component_sku", "fornecedor", "status_reposicao"}))
	require.NoError(t, wb.SetSheetRow("catalogo_simples", "A2", &[]interface{}{"COPO", "Plasticos SA", "sim"}))
	require.NoError(t, wb.SetSheetRow("catalogo_simples", "A3", &[]interface{}{"TAMPA", "Plasticos SA", "sim"}))

	if withKits {
		_, err := wb.NewSheet("kits_reais")
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow("kits_reais", "A1", &[]interface{}{"kit_sku", "component_sku", "qty"}))
		require.NoError(t, wb.SetSheetRow("kits_reais", "A2", &[]interface{}{"KIT", "COPO", 2}))
		require.NoError(t, wb.SetSheetRow("kits_reais", "A3", &[]interface{}{"KIT", "TAMPA", 1}))
	}

	require.NoError(t, wb.SaveAs(path))
}

func writeScenario(t *testing.T, dir string) {
	t.Helper()

	lojaA := filepath.Join(dir, "loja_a")
	require.NoError(t, os.MkdirAll(lojaA, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(lojaA, "full.csv"),
		[]byte("SKU;Vendas 60d;Estoque Full\nKIT;15;0\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(lojaA, "fisico.csv"),
		[]byte("SKU;Estoque;Preço\nCOPO;2;\"1,50\"\nTAMPA;0;\"0,20\"\n"), 0o644))

	lojaB := filepath.Join(dir, "loja_b")
	require.NoError(t, os.MkdirAll(lojaB, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(lojaB, "vendas.csv"),
		[]byte("sku,qtde\nCOPO,20\n"), 0o644))
}

func TestPlanCommand_Execute(t *testing.T) {
	dir := t.TempDir()
	catalog := filepath.Join(dir, "catalogo.xlsx")
	scenario := filepath.Join(dir, "scenario")
	writeCatalog(t, catalog, true)
	writeScenario(t, scenario)

	var out bytes.Buffer
	cmd := NewPlanCommand(Config{
		ScenarioDir: scenario,
		CatalogFile: catalog,
		Format:      "csv",
		Mode:        "joint",
		Demand:      demand.DefaultConfig(),
		Out:         &out,
	})
	require.NoError(t, cmd.Execute(context.Background()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	// COPO joint: sales 30 + 20, stock 2 -> 23 split 14/9; TAMPA: 15 -> 8 for loja_a
	assert.Equal(t, []string{
		"entity,supplier,sku,suggested_qty,unit_cost,total_value",
		"loja_a,Plasticos SA,COPO,14,1.50,21.00",
		"loja_a,Plasticos SA,TAMPA,8,0.20,1.60",
		"loja_b,Plasticos SA,COPO,9,1.50,13.50",
	}, lines)
}

func TestPlanCommand_CatalogErrorAborts(t *testing.T) {
	dir := t.TempDir()
	catalog := filepath.Join(dir, "catalogo.xlsx")
	scenario := filepath.Join(dir, "scenario")
	writeCatalog(t, catalog, false)
	writeScenario(t, scenario)

	cmd := NewPlanCommand(Config{
		ScenarioDir: scenario,
		CatalogFile: catalog,
		Demand:      demand.DefaultConfig(),
		Out:         &bytes.Buffer{},
	})
	err := cmd.Execute(context.Background())

	var catErr *entities.CatalogError
	require.True(t, errors.As(err, &catErr))
	assert.Equal(t, "kits_reais", catErr.Sheet)
}

func TestPlanCommand_Validation(t *testing.T) {
	cmd := NewPlanCommand(Config{Demand: demand.DefaultConfig(), Out: &bytes.Buffer{}})
	assert.Error(t, cmd.Execute(context.Background()))

	dir := t.TempDir()
	cmd = NewPlanCommand(Config{
		ScenarioDir: dir,
		CatalogFile: filepath.Join(dir, "missing.xlsx"),
		Demand:      demand.DefaultConfig(),
		Out:         &bytes.Buffer{},
	})
	assert.Error(t, cmd.Execute(context.Background()))

	cmd = NewPlanCommand(Config{
		ScenarioDir: dir,
		CatalogFile: dir,
		Mode:        "weekly",
		Demand:      demand.DefaultConfig(),
		Out:         &bytes.Buffer{},
	})
	assert.Error(t, cmd.Execute(context.Background()))
}

func TestPlanCommand_Help(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewPlanCommand(Config{Help: true, Out: &out}).Execute(context.Background()))
	assert.Contains(t, out.String(), "-catalog <file>")
}
