package spreadsheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/vsinha/replenish/pkg/domain/entities"
	"github.com/vsinha/replenish/pkg/domain/services"
	"github.com/vsinha/replenish/pkg/infrastructure/repositories/memory"
)

// Accepted sheet names, compared after header normalization
var (
	catalogSheetNames = []string{"catalogo_simples", "catalogo", "simples", "produtos_simples", "componentes"}
	kitSheetNames     = []string{"kits_reais", "kits", "kit", "composicao", "bom"}
)

// Accepted column names per catalog field, compared after header normalization
var (
	catalogSKUColumns      = []string{"component_sku", "sku_componente", "componente_sku", "sku", "codigo_sku", "codigo"}
	catalogSupplierColumns = []string{"fornecedor", "supplier", "fornecedor_principal"}
	catalogStatusColumns   = []string{"status_reposicao", "status", "reposicao", "repor"}

	kitSKUColumns       = []string{"kit_sku", "sku_kit", "kit", "codigo_kit"}
	kitComponentColumns = []string{"component_sku", "sku_componente", "componente_sku", "componente", "sku_simples"}
	kitQtyColumns       = []string{"qty", "quantidade", "qtd", "qtde", "qty_por_kit", "quantidade_por_kit"}
)

// CatalogReport summarizes what a catalog load kept and discarded
type CatalogReport struct {
	CatalogSheet      string
	KitSheet          string
	Entries           int
	Kits              int
	KitLines          int
	SkippedEntries    int
	DroppedKitRows    int
	DuplicateKitLines int
	NestedKits        []entities.SKU
}

// LoadCatalog opens a catalog workbook and builds the catalog repository.
// Every failure is a *entities.CatalogError or wraps an I/O error.
func (l *Loader) LoadCatalog(filename string) (*memory.CatalogRepository, *CatalogReport, error) {
	wb, err := excelize.OpenFile(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open catalog workbook %s: %w", filename, err)
	}
	defer wb.Close()

	return l.ReadCatalog(wb)
}

// ReadCatalogFrom reads a catalog workbook from a stream
func (l *Loader) ReadCatalogFrom(r io.Reader) (*memory.CatalogRepository, *CatalogReport, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read catalog workbook: %w", err)
	}
	defer wb.Close()

	return l.ReadCatalog(wb)
}

// ReadCatalog builds the catalog repository from an open workbook
func (l *Loader) ReadCatalog(wb *excelize.File) (*memory.CatalogRepository, *CatalogReport, error) {
	report := &CatalogReport{}

	catalogSheet, err := findSheet(wb, catalogSheetNames)
	if err != nil {
		return nil, nil, err
	}
	kitSheet, err := findSheet(wb, kitSheetNames)
	if err != nil {
		return nil, nil, err
	}
	report.CatalogSheet = catalogSheet
	report.KitSheet = kitSheet

	entries, err := readCatalogEntries(wb, catalogSheet, report)
	if err != nil {
		return nil, nil, err
	}
	lines, err := readKitLines(wb, kitSheet, report)
	if err != nil {
		return nil, nil, err
	}

	validation := services.ValidateKitLines(derefLines(lines))
	if validation.HasCycles {
		return nil, nil, &entities.CatalogError{
			Sheet:  kitSheet,
			Reason: strings.Join(validation.Errors, "; "),
		}
	}
	report.DuplicateKitLines = len(validation.DuplicateLines)
	report.NestedKits = validation.NestedKits

	repo := memory.NewCatalogRepository(len(entries), len(lines))
	if err := repo.LoadEntries(entries); err != nil {
		return nil, nil, &entities.CatalogError{Sheet: catalogSheet, Reason: err.Error()}
	}
	if err := repo.LoadKitLines(lines); err != nil {
		return nil, nil, &entities.CatalogError{Sheet: kitSheet, Reason: err.Error()}
	}

	report.Entries, report.Kits, report.KitLines = repo.Stats()
	return repo, report, nil
}

// findSheet matches sheet names case-insensitively, in synonym priority order
func findSheet(wb *excelize.File, synonyms []string) (string, error) {
	sheets := wb.GetSheetList()
	for _, synonym := range synonyms {
		for _, sheet := range sheets {
			if services.NormalizeHeader(sheet) == synonym {
				return sheet, nil
			}
		}
	}
	return "", &entities.CatalogError{Sheet: synonyms[0]}
}

// sheetRows returns the normalized header and data rows of a sheet
func sheetRows(wb *excelize.File, sheet string) ([]string, [][]string, error) {
	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read catalog sheet %s: %w", sheet, err)
	}
	for i, row := range rows {
		if !isBlankRow(row) {
			return services.NormalizeHeaders(row), rows[i+1:], nil
		}
	}
	return nil, nil, nil
}

func findRequiredColumn(header []string, sheet string, synonyms []string) (int, error) {
	if i := findNamedColumn(header, synonyms); i >= 0 {
		return i, nil
	}
	return -1, &entities.CatalogError{Sheet: sheet, Column: synonyms[0]}
}

func findNamedColumn(header []string, synonyms []string) int {
	for _, synonym := range synonyms {
		for i, col := range header {
			if col == synonym {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

func readCatalogEntries(wb *excelize.File, sheet string, report *CatalogReport) ([]*entities.CatalogEntry, error) {
	header, rows, err := sheetRows(wb, sheet)
	if err != nil {
		return nil, err
	}

	skuCol, err := findRequiredColumn(header, sheet, catalogSKUColumns)
	if err != nil {
		return nil, err
	}
	supplierCol, err := findRequiredColumn(header, sheet, catalogSupplierColumns)
	if err != nil {
		return nil, err
	}
	statusCol := findNamedColumn(header, catalogStatusColumns)

	entries := make([]*entities.CatalogEntry, 0, len(rows))
	for _, row := range rows {
		sku := services.NormalizeSKU(cell(row, skuCol))
		if !sku.Valid() {
			report.SkippedEntries++
			continue
		}

		status := services.NormalizeHeader(cell(row, statusCol))
		entry, err := entities.NewCatalogEntry(sku, cell(row, supplierCol), status)
		if err != nil {
			report.SkippedEntries++
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func readKitLines(wb *excelize.File, sheet string, report *CatalogReport) ([]*entities.KitLine, error) {
	header, rows, err := sheetRows(wb, sheet)
	if err != nil {
		return nil, err
	}

	kitCol, err := findRequiredColumn(header, sheet, kitSKUColumns)
	if err != nil {
		return nil, err
	}
	componentCol, err := findRequiredColumn(header, sheet, kitComponentColumns)
	if err != nil {
		return nil, err
	}
	qtyCol, err := findRequiredColumn(header, sheet, kitQtyColumns)
	if err != nil {
		return nil, err
	}

	lines := make([]*entities.KitLine, 0, len(rows))
	for i, row := range rows {
		kit := services.NormalizeSKU(cell(row, kitCol))
		component := services.NormalizeSKU(cell(row, componentCol))
		qty, ok := services.ParseQuantity(cell(row, qtyCol))

		if !kit.Valid() || !component.Valid() || !ok || qty < 1 {
			report.DroppedKitRows++
			continue
		}
		if kit == component {
			return nil, &entities.CatalogError{
				Sheet:  sheet,
				Reason: fmt.Sprintf("kit %s lists itself as a component (row %d)", kit, i+2),
			}
		}

		line, err := entities.NewKitLine(kit, component, qty)
		if err != nil {
			report.DroppedKitRows++
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func derefLines(lines []*entities.KitLine) []entities.KitLine {
	out := make([]entities.KitLine, len(lines))
	for i, line := range lines {
		out[i] = *line
	}
	return out
}
