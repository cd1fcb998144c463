package entities

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// PurchaseSuggestion is a component purchase proposal for a single entity
type PurchaseSuggestion struct {
	SKU          SKU             `json:"sku"`
	Supplier     string          `json:"supplier"`
	SuggestedQty Quantity        `json:"suggested_qty"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	TotalValue   decimal.Decimal `json:"total_value"`
}

// NewPurchaseSuggestion creates a validated PurchaseSuggestion with its total value
func NewPurchaseSuggestion(sku SKU, supplier string, qty Quantity, unitCost decimal.Decimal) (*PurchaseSuggestion, error) {
	if !sku.Valid() {
		return nil, fmt.Errorf("sku cannot be empty")
	}
	if qty < 0 {
		return nil, fmt.Errorf("suggested quantity cannot be negative, got %d", qty)
	}
	if unitCost.IsNegative() {
		return nil, fmt.Errorf("unit cost cannot be negative, got %s", unitCost)
	}
	if supplier == "" {
		supplier = UnknownSupplier
	}

	return &PurchaseSuggestion{
		SKU:          sku,
		Supplier:     supplier,
		SuggestedQty: qty,
		UnitCost:     unitCost,
		TotalValue:   unitCost.Mul(decimal.NewFromInt(int64(qty))),
	}, nil
}

// WithQuantity returns a copy with a new quantity and recomputed total value
func (p PurchaseSuggestion) WithQuantity(qty Quantity) PurchaseSuggestion {
	p.SuggestedQty = qty
	p.TotalValue = p.UnitCost.Mul(decimal.NewFromInt(int64(qty)))
	return p
}

// SupplierBasket groups the suggestions one supplier should receive as an order
type SupplierBasket struct {
	Supplier   string               `json:"supplier"`
	Lines      []PurchaseSuggestion `json:"lines"`
	TotalUnits Quantity             `json:"total_units"`
	TotalValue decimal.Decimal      `json:"total_value"`
}

// GroupBySupplier splits suggestions into supplier baskets, skipping zero quantities.
// Baskets are sorted by supplier and lines by SKU.
func GroupBySupplier(suggestions []PurchaseSuggestion) []SupplierBasket {
	index := make(map[string]int)
	var baskets []SupplierBasket

	for _, s := range suggestions {
		if s.SuggestedQty <= 0 {
			continue
		}
		i, ok := index[s.Supplier]
		if !ok {
			i = len(baskets)
			index[s.Supplier] = i
			baskets = append(baskets, SupplierBasket{Supplier: s.Supplier, TotalValue: decimal.Zero})
		}
		baskets[i].Lines = append(baskets[i].Lines, s)
		baskets[i].TotalUnits += s.SuggestedQty
		baskets[i].TotalValue = baskets[i].TotalValue.Add(s.TotalValue)
	}

	sort.Slice(baskets, func(a, b int) bool { return baskets[a].Supplier < baskets[b].Supplier })
	for i := range baskets {
		lines := baskets[i].Lines
		sort.Slice(lines, func(a, b int) bool { return lines[a].SKU < lines[b].SKU })
	}
	return baskets
}
