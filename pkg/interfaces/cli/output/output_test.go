package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vsinha/replenish/pkg/application/dto"
	"github.com/vsinha/replenish/pkg/domain/entities"
)

func samplePlan(t *testing.T) *dto.PlanResult {
	t.Helper()

	cup, err := entities.NewPurchaseSuggestion("COPO", "Plasticos SA", 14, decimal.RequireFromString("1.5"))
	require.NoError(t, err)
	lid, err := entities.NewPurchaseSuggestion("TAMPA", "Plasticos SA", 7, decimal.Zero)
	require.NoError(t, err)

	joint := []entities.PurchaseSuggestion{*cup, *lid}
	return &dto.PlanResult{
		RunID:        uuid.MustParse("00000000-0000-4000-8000-000000000001"),
		Mode:         dto.ModeJoint,
		CoverageDays: 30,
		LookbackDays: 60,
		Entities: []dto.EntityPlan{
			{
				Entity:  "loja_a",
				Joint:   joint,
				Baskets: entities.GroupBySupplier(joint),
				Tables: []dto.TableReport{
					{Entity: "loja_a", Table: "precos.csv", Kind: "DESCONHECIDO", Error: `table "precos.csv": unrecognized layout`},
				},
			},
			{Entity: "loja_b"},
		},
		Consolidated: []dto.ConsolidatedSuggestion{
			{
				Suggestion: cup.WithQuantity(23),
				Shares:     []entities.AllocationShare{{Entity: "loja_a", Qty: 14}, {Entity: "loja_b", Qty: 9}},
			},
		},
		Warnings: []entities.Warning{
			{Kind: entities.MissingUnitCostWarning, SKU: "TAMPA", Message: "no unit cost"},
		},
	}
}

func TestGenerate_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Generate(samplePlan(t), Config{Format: "text", Out: &buf}))

	out := buf.String()
	assert.Contains(t, out, "Total: 21 units, 21.00")
	assert.Contains(t, out, "Plasticos SA (21 units, 21.00)")
	assert.Contains(t, out, "loja_b\n  Nothing to buy")
	assert.Contains(t, out, "unrecognized layout")
	assert.Contains(t, out, "MissingUnitCost")
}

func TestGenerate_CSVToWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Generate(samplePlan(t), Config{Format: "csv", Out: &buf}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "entity,supplier,sku,suggested_qty,unit_cost,total_value", lines[0])
	assert.Equal(t, "loja_a,Plasticos SA,COPO,14,1.50,21.00", lines[1])
}

func TestGenerate_CSVFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Generate(samplePlan(t), Config{Format: "csv", OutputDir: dir, Out: &bytes.Buffer{}}))

	data, err := os.ReadFile(filepath.Join(dir, "consolidated.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "COPO,Plasticos SA,0,0,23,loja_b,9")

	_, err = os.Stat(filepath.Join(dir, "warnings.csv"))
	assert.NoError(t, err)
}

func TestGenerate_JSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Generate(samplePlan(t), Config{Format: "json", OutputDir: dir}))

	data, err := os.ReadFile(filepath.Join(dir, "replenishment_plan.json"))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "joint", decoded["mode"])
	assert.Contains(t, string(data), `"kind": "MissingUnitCost"`)
}

func TestBuildWorkbook(t *testing.T) {
	wb, err := BuildWorkbook(samplePlan(t))
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{"loja_a", "loja_b", "consolidado", "avisos"}, wb.GetSheetList())

	rows, err := wb.GetRows("loja_a")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Plasticos SA", "COPO", "14", "1.5", "21"}, rows[1])

	rows, err = wb.GetRows("consolidado")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestGenerate_XLSXNeedsDirectory(t *testing.T) {
	assert.Error(t, Generate(samplePlan(t), Config{Format: "xlsx"}))

	dir := t.TempDir()
	require.NoError(t, Generate(samplePlan(t), Config{Format: "xlsx", OutputDir: dir}))

	wb, err := excelize.OpenFile(filepath.Join(dir, "replenishment_plan.xlsx"))
	require.NoError(t, err)
	defer wb.Close()
	assert.Len(t, wb.GetSheetList(), 4)
}

func TestGenerate_UnsupportedFormat(t *testing.T) {
	assert.Error(t, Generate(samplePlan(t), Config{Format: "pdf"}))
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "loja_1_2", sheetName("loja/1:2", 0))
	assert.Equal(t, "entidade_3", sheetName("", 2))
	assert.Len(t, []rune(sheetName(strings.Repeat("x", 40), 0)), 31)
}
