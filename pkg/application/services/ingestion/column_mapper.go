package ingestion

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vsinha/replenish/pkg/domain/entities"
	"github.com/vsinha/replenish/pkg/domain/services"
)

// salesQuantityField names the VENDAS quantity column in schema errors
const salesQuantityField = "quantidade"

// ColumnMapper classifies raw tables and projects them onto canonical records
type ColumnMapper struct{}

// NewColumnMapper creates a new column mapper
func NewColumnMapper() *ColumnMapper {
	return &ColumnMapper{}
}

// fieldSelection holds the chosen column index per canonical field (-1 = absent)
type fieldSelection struct {
	sku, sales, remote, transit, stock, price, quantity int
}

// MapTable classifies a raw table and maps it onto its canonical record type.
// Returns a *entities.SchemaError when the table is unrecognized or incomplete.
func (m *ColumnMapper) MapTable(raw entities.RawTable) (*entities.CanonicalTable, []entities.Warning, error) {
	columns := services.NormalizeHeaders(raw.Header)
	kind := services.ClassifyColumns(columns)
	if kind == entities.TableUnknown {
		return nil, nil, &entities.SchemaError{Table: raw.Name, Kind: kind, Columns: columns}
	}
	return m.MapAs(raw, kind)
}

// MapAs maps a raw table as the given kind, skipping classification
func (m *ColumnMapper) MapAs(raw entities.RawTable, kind entities.TableKind) (*entities.CanonicalTable, []entities.Warning, error) {
	columns := services.NormalizeHeaders(raw.Header)

	sel, err := selectColumns(raw.Name, columns, kind)
	if err != nil {
		return nil, nil, err
	}

	p := &rowParser{table: raw, warnings: make([]entities.Warning, 0)}
	table := &entities.CanonicalTable{Name: raw.Name, Kind: kind}

	switch kind {
	case entities.TableFull:
		table.Fulfillment = p.fulfillmentRecords(sel)
	case entities.TablePhysical:
		table.Physical = p.physicalRecords(sel)
	case entities.TableSales:
		table.Sales = p.salesRecords(sel)
	default:
		return nil, nil, fmt.Errorf("table %q: cannot map kind %s", raw.Name, kind)
	}

	return table, p.warnings, nil
}

func selectColumns(name string, columns []string, kind entities.TableKind) (fieldSelection, error) {
	sel := fieldSelection{-1, -1, -1, -1, -1, -1, -1}
	var missing []string
	used := make(map[int]bool)

	pick := func(concept services.Concept, required bool) int {
		i := services.FindColumn(columns, concept, used)
		if i >= 0 {
			used[i] = true
		} else if required {
			missing = append(missing, concept.String())
		}
		return i
	}

	sel.sku = pick(services.ConceptSKU, true)

	switch kind {
	case entities.TableFull:
		sel.sales = pick(services.ConceptSales60d, true)
		sel.remote = pick(services.ConceptStockFull, true)
		sel.transit = pick(services.ConceptInTransit, false)
	case entities.TablePhysical:
		sel.stock = pick(services.ConceptStock, true)
		sel.price = pick(services.ConceptPrice, true)
	case entities.TableSales:
		sel.quantity = services.FindSalesQuantityColumn(columns, used)
		if sel.quantity < 0 {
			missing = append(missing, salesQuantityField)
		}
	}

	if len(missing) > 0 {
		return sel, &entities.SchemaError{Table: name, Kind: kind, Missing: missing, Columns: columns}
	}
	return sel, nil
}

// rowParser coerces cells and records a warning for every defaulted value
type rowParser struct {
	table    entities.RawTable
	warnings []entities.Warning
}

func (p *rowParser) sku(row int, col int) (entities.SKU, bool) {
	sku := services.NormalizeSKU(p.table.Cell(row, col))
	if !sku.Valid() {
		if !p.blankRow(row) {
			p.warnings = append(p.warnings, entities.Warning{
				Kind:    entities.EmptySKUWarning,
				Table:   p.table.Name,
				Row:     row + 1,
				Message: "row without sku skipped",
			})
		}
		return "", false
	}
	return sku, true
}

func (p *rowParser) blankRow(row int) bool {
	for _, cell := range p.table.Rows[row] {
		if !services.IsMissing(cell) {
			return false
		}
	}
	return true
}

func (p *rowParser) quantity(row, col int, sku entities.SKU) entities.Quantity {
	if col < 0 {
		return 0
	}
	value := p.table.Cell(row, col)
	q, ok := services.ParseQuantity(value)
	if !ok {
		p.parseWarning(row, col, sku, value)
	}
	return q
}

func (p *rowParser) money(row, col int, sku entities.SKU) decimal.Decimal {
	value := p.table.Cell(row, col)
	d, ok := services.ParseDecimal(value)
	if !ok || d.IsNegative() {
		p.parseWarning(row, col, sku, value)
		return decimal.Zero
	}
	return d
}

func (p *rowParser) parseWarning(row, col int, sku entities.SKU, value string) {
	column := ""
	if col < len(p.table.Header) {
		column = p.table.Header[col]
	}
	p.warnings = append(p.warnings, entities.Warning{
		Kind:    entities.ParseWarning,
		Table:   p.table.Name,
		Row:     row + 1,
		Column:  column,
		SKU:     sku,
		Value:   value,
		Message: fmt.Sprintf("could not parse %q in column %q, using 0", value, column),
	})
}

func (p *rowParser) fulfillmentRecords(sel fieldSelection) []entities.FulfillmentRecord {
	index := make(map[entities.SKU]int)
	records := make([]entities.FulfillmentRecord, 0, len(p.table.Rows))

	for row := range p.table.Rows {
		sku, ok := p.sku(row, sel.sku)
		if !ok {
			continue
		}
		rec := entities.FulfillmentRecord{
			SKU:         sku,
			SalesQty60d: p.quantity(row, sel.sales, sku),
			RemoteStock: p.quantity(row, sel.remote, sku),
			InTransit:   p.quantity(row, sel.transit, sku),
		}
		if i, seen := index[sku]; seen {
			records[i].SalesQty60d += rec.SalesQty60d
			records[i].RemoteStock += rec.RemoteStock
			records[i].InTransit += rec.InTransit
			continue
		}
		index[sku] = len(records)
		records = append(records, rec)
	}
	return records
}

func (p *rowParser) physicalRecords(sel fieldSelection) []entities.PhysicalRecord {
	index := make(map[entities.SKU]int)
	records := make([]entities.PhysicalRecord, 0, len(p.table.Rows))

	for row := range p.table.Rows {
		sku, ok := p.sku(row, sel.sku)
		if !ok {
			continue
		}
		rec := entities.PhysicalRecord{
			SKU:         sku,
			OnHandStock: p.quantity(row, sel.stock, sku),
			UnitCost:    p.money(row, sel.price, sku),
		}
		if i, seen := index[sku]; seen {
			records[i].OnHandStock += rec.OnHandStock
			if !rec.UnitCost.IsZero() {
				records[i].UnitCost = rec.UnitCost
			}
			continue
		}
		index[sku] = len(records)
		records = append(records, rec)
	}
	return records
}

func (p *rowParser) salesRecords(sel fieldSelection) []entities.SalesRecord {
	index := make(map[entities.SKU]int)
	records := make([]entities.SalesRecord, 0, len(p.table.Rows))

	for row := range p.table.Rows {
		sku, ok := p.sku(row, sel.sku)
		if !ok {
			continue
		}
		qty := p.quantity(row, sel.quantity, sku)
		if i, seen := index[sku]; seen {
			records[i].Quantity += qty
			continue
		}
		index[sku] = len(records)
		records = append(records, entities.SalesRecord{SKU: sku, Quantity: qty})
	}
	return records
}
