package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/vsinha/replenish/pkg/application/dto"
	"github.com/vsinha/replenish/pkg/domain/entities"
)

// Config holds configuration for output generation
type Config struct {
	Format      string
	OutputDir   string
	Verbose     bool
	ElapsedTime time.Duration
	// Out receives stdout-bound output; os.Stdout when nil
	Out io.Writer
}

func (c Config) writer() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Generate renders a plan in the configured format
func Generate(result *dto.PlanResult, config Config) error {
	switch config.Format {
	case "text", "":
		return generateTextOutput(result, config)
	case "json":
		return generateJSONOutput(result, config)
	case "csv":
		return generateCSVOutput(result, config)
	case "xlsx":
		return generateXLSXOutput(result, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

var suggestionHeader = []string{"entity", "supplier", "sku", "suggested_qty", "unit_cost", "total_value"}

func suggestionRow(entity string, s entities.PurchaseSuggestion) []string {
	return []string{
		entity,
		s.Supplier,
		string(s.SKU),
		strconv.FormatInt(int64(s.SuggestedQty), 10),
		s.UnitCost.StringFixed(2),
		s.TotalValue.StringFixed(2),
	}
}

// generateTextOutput creates human-readable text output
func generateTextOutput(result *dto.PlanResult, config Config) error {
	w := config.writer()
	units, value := result.Totals()

	fmt.Fprintf(w, "📊 Replenishment Plan\n")
	fmt.Fprintf(w, "=====================\n\n")
	fmt.Fprintf(w, "Run: %s\n", result.RunID)
	fmt.Fprintf(w, "Mode: %s (%d days cover, %d days of sales)\n", result.Mode, result.CoverageDays, result.LookbackDays)
	fmt.Fprintf(w, "Total: %d units, %s\n", units, value.StringFixed(2))
	if config.ElapsedTime > 0 {
		fmt.Fprintf(w, "Planning Time: %v\n", config.ElapsedTime)
	}
	fmt.Fprintln(w)

	for _, plan := range result.Entities {
		fmt.Fprintf(w, "🏬 %s\n", plan.Entity)
		if len(plan.Baskets) == 0 {
			fmt.Fprintf(w, "  Nothing to buy\n\n")
			continue
		}
		for _, basket := range plan.Baskets {
			fmt.Fprintf(w, "  📦 %s (%d units, %s)\n", basket.Supplier, basket.TotalUnits, basket.TotalValue.StringFixed(2))
			fmt.Fprintf(w, "    %-20s %-8s %-12s %-12s\n", "SKU", "Qty", "Unit Cost", "Total")
			fmt.Fprintf(w, "    %-20s %-8s %-12s %-12s\n", "--------------------", "--------", "------------", "------------")
			for _, line := range basket.Lines {
				fmt.Fprintf(w, "    %-20s %-8d %-12s %-12s\n",
					line.SKU,
					line.SuggestedQty,
					line.UnitCost.StringFixed(2),
					line.TotalValue.StringFixed(2))
			}
		}
		fmt.Fprintln(w)
	}

	if rejected := result.RejectedTables(); len(rejected) > 0 {
		fmt.Fprintf(w, "🚫 Rejected Tables:\n")
		for _, t := range rejected {
			fmt.Fprintf(w, "  [%s] %s\n", t.Entity, t.Error)
		}
		fmt.Fprintln(w)
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintf(w, "⚠️  Warnings: %d\n", len(result.Warnings))
		if config.Verbose {
			for _, warning := range result.Warnings {
				fmt.Fprintf(w, "  %s\n", warning)
			}
		} else {
			counts := entities.CountWarnings(result.Warnings)
			for _, kind := range []entities.WarningKind{
				entities.ParseWarning,
				entities.EmptySKUWarning,
				entities.UnresolvedSKUWarning,
				entities.MissingUnitCostWarning,
			} {
				if counts[kind] > 0 {
					fmt.Fprintf(w, "  %-16s %d\n", kind, counts[kind])
				}
			}
		}
		fmt.Fprintln(w)
	}

	return nil
}

// generateJSONOutput creates JSON output
func generateJSONOutput(result *dto.PlanResult, config Config) error {
	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Fprintln(config.writer(), string(jsonData))
		return nil
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(config.OutputDir, "replenishment_plan.json")
	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.writer(), "💾 JSON results saved to: %s\n", filename)
	}
	return nil
}

// generateCSVOutput writes the suggestion lines to stdout, or one file per
// dataset when an output directory is set
func generateCSVOutput(result *dto.PlanResult, config Config) error {
	if config.OutputDir == "" {
		return writeSuggestionsCSV(config.writer(), result)
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	files := []struct {
		name  string
		write func(io.Writer, *dto.PlanResult) error
	}{
		{"suggestions.csv", writeSuggestionsCSV},
		{"consolidated.csv", writeConsolidatedCSV},
		{"warnings.csv", writeWarningsCSV},
	}

	for _, f := range files {
		filename := filepath.Join(config.OutputDir, f.name)
		if err := writeFile(filename, result, f.write); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.name, err)
		}
		if config.Verbose {
			fmt.Fprintf(config.writer(), "💾 CSV results saved to: %s\n", filename)
		}
	}
	return nil
}

func writeFile(filename string, result *dto.PlanResult, write func(io.Writer, *dto.PlanResult) error) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := write(file, result); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func writeSuggestionsCSV(w io.Writer, result *dto.PlanResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(suggestionHeader); err != nil {
		return err
	}
	for _, plan := range result.Entities {
		for _, s := range plan.Suggestions(result.Mode) {
			if err := cw.Write(suggestionRow(plan.Entity, s)); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeConsolidatedCSV(w io.Writer, result *dto.PlanResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"sku", "supplier", "sales_60d", "available_stock", "suggested_qty", "entity", "allocated_qty"}); err != nil {
		return err
	}
	for _, c := range result.Consolidated {
		for _, share := range c.Shares {
			row := []string{
				string(c.Suggestion.SKU),
				c.Suggestion.Supplier,
				strconv.FormatInt(int64(c.Record.SalesQty60d), 10),
				strconv.FormatInt(int64(c.Record.AvailableStock()), 10),
				strconv.FormatInt(int64(c.Suggestion.SuggestedQty), 10),
				share.Entity,
				strconv.FormatInt(int64(share.Qty), 10),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeWarningsCSV(w io.Writer, result *dto.PlanResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"kind", "entity", "table", "row", "column", "sku", "value", "message"}); err != nil {
		return err
	}
	for _, warning := range result.Warnings {
		row := []string{
			warning.Kind.String(),
			warning.Entity,
			warning.Table,
			strconv.Itoa(warning.Row),
			warning.Column,
			string(warning.SKU),
			warning.Value,
			warning.Message,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// generateXLSXOutput writes one sheet per entity plus consolidated and warning sheets
func generateXLSXOutput(result *dto.PlanResult, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for xlsx format")
	}
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	wb, err := BuildWorkbook(result)
	if err != nil {
		return err
	}
	defer wb.Close()

	filename := filepath.Join(config.OutputDir, "replenishment_plan.xlsx")
	if err := wb.SaveAs(filename); err != nil {
		return fmt.Errorf("failed to write xlsx file: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.writer(), "💾 XLSX results saved to: %s\n", filename)
	}
	return nil
}

// BuildWorkbook renders the plan as an in-memory workbook
func BuildWorkbook(result *dto.PlanResult) (*excelize.File, error) {
	wb := excelize.NewFile()

	sheets := make([]string, 0, len(result.Entities)+2)
	rows := make([][][]interface{}, 0, len(result.Entities)+2)

	for _, plan := range result.Entities {
		data := [][]interface{}{{"supplier", "sku", "suggested_qty", "unit_cost", "total_value"}}
		for _, s := range plan.Suggestions(result.Mode) {
			data = append(data, []interface{}{
				s.Supplier,
				string(s.SKU),
				int64(s.SuggestedQty),
				s.UnitCost.InexactFloat64(),
				s.TotalValue.InexactFloat64(),
			})
		}
		sheets = append(sheets, sheetName(plan.Entity, len(sheets)))
		rows = append(rows, data)
	}

	consolidated := [][]interface{}{{"sku", "supplier", "suggested_qty", "entity", "allocated_qty"}}
	for _, c := range result.Consolidated {
		for _, share := range c.Shares {
			consolidated = append(consolidated, []interface{}{
				string(c.Suggestion.SKU),
				c.Suggestion.Supplier,
				int64(c.Suggestion.SuggestedQty),
				share.Entity,
				int64(share.Qty),
			})
		}
	}
	sheets = append(sheets, "consolidado")
	rows = append(rows, consolidated)

	warnings := [][]interface{}{{"kind", "entity", "table", "row", "sku", "message"}}
	for _, w := range result.Warnings {
		warnings = append(warnings, []interface{}{w.Kind.String(), w.Entity, w.Table, w.Row, string(w.SKU), w.Message})
	}
	sheets = append(sheets, "avisos")
	rows = append(rows, warnings)

	for i, name := range sheets {
		if i == 0 {
			if err := wb.SetSheetName("Sheet1", name); err != nil {
				wb.Close()
				return nil, fmt.Errorf("failed to name sheet %s: %w", name, err)
			}
		} else if _, err := wb.NewSheet(name); err != nil {
			wb.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
		for r := range rows[i] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				wb.Close()
				return nil, err
			}
			if err := wb.SetSheetRow(name, cell, &rows[i][r]); err != nil {
				wb.Close()
				return nil, fmt.Errorf("failed to write sheet %s: %w", name, err)
			}
		}
	}

	return wb, nil
}

var invalidSheetChars = strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_")

// sheetName maps an entity to a valid sheet name of at most 31 characters
func sheetName(entity string, index int) string {
	name := invalidSheetChars.Replace(entity)
	if name == "" {
		name = fmt.Sprintf("entidade_%d", index+1)
	}
	if runes := []rune(name); len(runes) > 31 {
		name = string(runes[:31])
	}
	return name
}
