package entities

import (
	"fmt"
	"strings"
)

// SchemaError reports a table that could not be classified or lacks a
// required canonical column. It is fatal for that table only.
type SchemaError struct {
	Table   string
	Kind    TableKind
	Missing []string
	Columns []string
}

func (e *SchemaError) Error() string {
	if e.Kind == TableUnknown {
		return fmt.Sprintf("table %q: unrecognized layout (columns: %s)", e.Table, strings.Join(e.Columns, ", "))
	}
	return fmt.Sprintf("table %q (%s): missing required column(s): %s", e.Table, e.Kind, strings.Join(e.Missing, ", "))
}

// CatalogError reports a catalog workbook missing a required sheet or column,
// or carrying an unusable bill-of-materials. It aborts the planning run.
type CatalogError struct {
	Sheet  string
	Column string
	Reason string
}

func (e *CatalogError) Error() string {
	switch {
	case e.Column != "":
		return fmt.Sprintf("catalog sheet %q: missing required column %q", e.Sheet, e.Column)
	case e.Reason != "":
		if e.Sheet != "" {
			return fmt.Sprintf("catalog sheet %q: %s", e.Sheet, e.Reason)
		}
		return fmt.Sprintf("catalog: %s", e.Reason)
	default:
		return fmt.Sprintf("catalog: missing required sheet %q", e.Sheet)
	}
}

// WarningKind classifies non-fatal findings of a planning run
type WarningKind int

const (
	ParseWarning WarningKind = iota
	EmptySKUWarning
	UnresolvedSKUWarning
	MissingUnitCostWarning
)

// String method for WarningKind enum
func (k WarningKind) String() string {
	switch k {
	case ParseWarning:
		return "ParseWarning"
	case EmptySKUWarning:
		return "EmptySKU"
	case UnresolvedSKUWarning:
		return "UnresolvedSKU"
	case MissingUnitCostWarning:
		return "MissingUnitCost"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the kind by name
func (k WarningKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Warning is an observable record of a value that was defaulted or skipped
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Entity  string      `json:"entity,omitempty"`
	Table   string      `json:"table,omitempty"`
	Row     int         `json:"row,omitempty"`
	Column  string      `json:"column,omitempty"`
	SKU     SKU         `json:"sku,omitempty"`
	Value   string      `json:"value,omitempty"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	var b strings.Builder
	b.WriteString(w.Kind.String())
	if w.Entity != "" {
		fmt.Fprintf(&b, " [%s]", w.Entity)
	}
	if w.Table != "" {
		fmt.Fprintf(&b, " %s", w.Table)
		if w.Row > 0 {
			fmt.Fprintf(&b, ":%d", w.Row)
		}
	}
	if w.SKU != "" {
		fmt.Fprintf(&b, " %s", w.SKU)
	}
	b.WriteString(": ")
	b.WriteString(w.Message)
	return b.String()
}

// CountWarnings tallies warnings by kind
func CountWarnings(warnings []Warning) map[WarningKind]int {
	counts := make(map[WarningKind]int)
	for _, w := range warnings {
		counts[w.Kind]++
	}
	return counts
}
