package entities

// SKU represents a normalized product identifier (upper-cased, accent-stripped)
type SKU string

// Valid reports whether the SKU can be used as an identifier
func (s SKU) Valid() bool {
	return s != ""
}

// Quantity represents an integer quantity of discrete sellable units
type Quantity int64

// TableKind represents the semantic record type inferred for an uploaded table
type TableKind int

const (
	TableUnknown TableKind = iota
	TableFull
	TablePhysical
	TableSales
)

// String method for TableKind enum
func (k TableKind) String() string {
	switch k {
	case TableFull:
		return "FULL"
	case TablePhysical:
		return "FISICO"
	case TableSales:
		return "VENDAS"
	default:
		return "DESCONHECIDO"
	}
}
