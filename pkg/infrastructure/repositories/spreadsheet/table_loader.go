package spreadsheet

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/vsinha/replenish/pkg/domain/entities"
	"github.com/vsinha/replenish/pkg/domain/services"
)

// headerSearchRows bounds how far down a sheet the header row is looked for
const headerSearchRows = 10

// Loader reads uploaded spreadsheets (CSV or xlsx) into raw tables
type Loader struct{}

// NewLoader creates a new spreadsheet loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadTables loads every table in a file: one for a CSV, one per non-empty sheet for xlsx
func (l *Loader) LoadTables(filename string) ([]entities.RawTable, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		file, err := os.Open(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to open table file %s: %w", filename, err)
		}
		defer file.Close()

		table, err := l.ReadCSV(file, filepath.Base(filename))
		if err != nil {
			return nil, err
		}
		return []entities.RawTable{table}, nil

	case ".xlsx", ".xlsm":
		wb, err := excelize.OpenFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to open workbook %s: %w", filename, err)
		}
		defer wb.Close()

		return l.ReadWorkbookTables(wb, filepath.Base(filename))

	default:
		return nil, fmt.Errorf("unsupported table file %s (expected .csv or .xlsx)", filename)
	}
}

// ReadCSV reads a CSV export, sniffing ';' or ',' as the delimiter
func (l *Loader) ReadCSV(r io.Reader, name string) (entities.RawTable, error) {
	data, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return entities.RawTable{}, fmt.Errorf("failed to read CSV %s: %w", name, err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return entities.RawTable{}, fmt.Errorf("failed to parse CSV %s: %w", name, err)
	}

	return buildTable(name, records)
}

// ReadWorkbookTables turns every non-empty sheet of a workbook into a table
func (l *Loader) ReadWorkbookTables(wb *excelize.File, name string) ([]entities.RawTable, error) {
	var tables []entities.RawTable
	for _, sheet := range wb.GetSheetList() {
		rows, err := wb.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s of %s: %w", sheet, name, err)
		}
		if len(rows) == 0 {
			continue
		}

		tableName := name
		if len(wb.GetSheetList()) > 1 {
			tableName = fmt.Sprintf("%s[%s]", name, sheet)
		}
		table, err := buildTable(tableName, rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}

	if len(tables) == 0 {
		return nil, fmt.Errorf("workbook %s has no data", name)
	}
	return tables, nil
}

// LoadScenario reads a scenario directory where each subdirectory is an entity
// holding its CSV/xlsx exports. Entities and files are returned in name order.
func (l *Loader) LoadScenario(dir string) ([]entities.EntityInput, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory %s: %w", dir, err)
	}

	var inputs []entities.EntityInput
	for _, de := range dirEntries {
		if !de.IsDir() || strings.HasPrefix(de.Name(), ".") {
			continue
		}

		files, err := tableFiles(filepath.Join(dir, de.Name()))
		if err != nil {
			return nil, err
		}

		input := entities.EntityInput{Entity: de.Name()}
		for _, file := range files {
			tables, err := l.LoadTables(file)
			if err != nil {
				return nil, fmt.Errorf("entity %s: %w", de.Name(), err)
			}
			input.Tables = append(input.Tables, tables...)
		}
		if len(input.Tables) > 0 {
			inputs = append(inputs, input)
		}
	}

	if len(inputs) == 0 {
		return nil, fmt.Errorf("scenario directory %s has no entity subdirectories with tables", dir)
	}
	return inputs, nil
}

func tableFiles(dir string) ([]string, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read entity directory %s: %w", dir, err)
	}

	var files []string
	for _, de := range dirEntries {
		if de.IsDir() || strings.HasPrefix(de.Name(), ".") || strings.HasPrefix(de.Name(), "~$") {
			continue
		}
		switch strings.ToLower(filepath.Ext(de.Name())) {
		case ".csv", ".xlsx", ".xlsm":
			files = append(files, filepath.Join(dir, de.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func sniffDelimiter(data []byte) rune {
	firstLine := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		firstLine = data[:i]
	}
	if bytes.Count(firstLine, []byte(";")) > bytes.Count(firstLine, []byte(",")) {
		return ';'
	}
	if bytes.Count(firstLine, []byte("\t")) > bytes.Count(firstLine, []byte(",")) {
		return '\t'
	}
	return ','
}

// buildTable locates the header row and keeps the non-blank rows below it
func buildTable(name string, records [][]string) (entities.RawTable, error) {
	headerRow := DetectHeaderRow(records)
	if headerRow < 0 {
		return entities.RawTable{}, fmt.Errorf("table %s has no header row", name)
	}

	table := entities.RawTable{
		Name:   name,
		Header: records[headerRow],
	}
	for _, row := range records[headerRow+1:] {
		if isBlankRow(row) {
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// DetectHeaderRow returns the first row near the top that names a SKU column,
// falling back to the first non-blank row; -1 when every row is blank.
// Marketplace reports often carry title lines above the real header.
func DetectHeaderRow(records [][]string) int {
	limit := headerSearchRows
	if len(records) < limit {
		limit = len(records)
	}
	for i := 0; i < limit; i++ {
		if services.HasConcept(services.NormalizeHeaders(records[i]), services.ConceptSKU) {
			return i
		}
	}
	for i, row := range records {
		if !isBlankRow(row) {
			return i
		}
	}
	return -1
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
