package entities

import "github.com/shopspring/decimal"

// RawTable is a spreadsheet export as uploaded: a header row plus string cells
type RawTable struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Cell returns the value at row/col, or an empty string for ragged rows
func (t RawTable) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// SalesRecord holds units sold in the lookback window for one SKU
type SalesRecord struct {
	SKU      SKU
	Quantity Quantity
}

// FulfillmentRecord is the marketplace fulfillment-center view of a SKU
type FulfillmentRecord struct {
	SKU         SKU
	SalesQty60d Quantity
	RemoteStock Quantity
	InTransit   Quantity
}

// PhysicalRecord is warehouse-held stock and its unit cost
type PhysicalRecord struct {
	SKU         SKU
	OnHandStock Quantity
	UnitCost    decimal.Decimal
}

// CanonicalTable is a classified table projected onto its canonical fields.
// Exactly one of the record slices is populated, matching Kind.
type CanonicalTable struct {
	Name        string
	Kind        TableKind
	Sales       []SalesRecord
	Fulfillment []FulfillmentRecord
	Physical    []PhysicalRecord
}

// Len returns the number of canonical records in the table
func (t CanonicalTable) Len() int {
	switch t.Kind {
	case TableFull:
		return len(t.Fulfillment)
	case TablePhysical:
		return len(t.Physical)
	case TableSales:
		return len(t.Sales)
	default:
		return 0
	}
}

// EntityInput is the set of raw tables uploaded for one business entity
type EntityInput struct {
	Entity string
	Tables []RawTable
}
