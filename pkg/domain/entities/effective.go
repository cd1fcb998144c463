package entities

import "github.com/shopspring/decimal"

// EffectiveComponentRecord is the kit-exploded, per-entity view of a component:
// its own direct figures plus everything contributed by kits that consume it
type EffectiveComponentRecord struct {
	SKU         SKU
	SalesQty60d Quantity
	StockOnHand Quantity
	StockRemote Quantity
	InTransit   Quantity
	UnitCost    decimal.Decimal
	Supplier    string
	Eligible    bool
}

// AvailableStock returns on-hand, remote and in-transit stock combined
func (r EffectiveComponentRecord) AvailableStock() Quantity {
	return r.StockOnHand + r.StockRemote + r.InTransit
}

// ConsolidatedRecord is the cross-entity total for one SKU.
// Entities preserves the order in which entity figures were supplied.
type ConsolidatedRecord struct {
	EffectiveComponentRecord
	Entities  []string
	PerEntity map[string]EffectiveComponentRecord
}

// EntitySales returns the 60-day sales of one entity, zero when absent
func (c ConsolidatedRecord) EntitySales(entity string) Quantity {
	if rec, ok := c.PerEntity[entity]; ok {
		return rec.SalesQty60d
	}
	return 0
}

// AllocationShare is the part of a consolidated quantity assigned to one entity
type AllocationShare struct {
	Entity string   `json:"entity"`
	Qty    Quantity `json:"qty"`
}
