package allocation

import (
	"sort"

	"github.com/vsinha/replenish/pkg/domain/entities"
)

// EntityRecords is the exploded output of one entity pipeline
type EntityRecords struct {
	Entity  string
	Records []entities.EffectiveComponentRecord
}

// Aggregator sums effective records across entities per SKU
type Aggregator struct {
	unknownSupplier string
}

// NewAggregator creates an aggregator that treats unknownSupplier as "no supplier"
func NewAggregator(unknownSupplier string) *Aggregator {
	if unknownSupplier == "" {
		unknownSupplier = entities.UnknownSupplier
	}
	return &Aggregator{unknownSupplier: unknownSupplier}
}

// Aggregate consolidates entity records in the order the entities are given.
// Supplier is the first known one and unit cost the first non-zero one in
// entity order; a SKU is ineligible when any entity marks it so.
// Results are sorted by SKU.
func (a *Aggregator) Aggregate(inputs []EntityRecords) []entities.ConsolidatedRecord {
	index := make(map[entities.SKU]int)
	var consolidated []entities.ConsolidatedRecord

	for _, input := range inputs {
		for _, rec := range input.Records {
			i, ok := index[rec.SKU]
			if !ok {
				i = len(consolidated)
				index[rec.SKU] = i
				consolidated = append(consolidated, entities.ConsolidatedRecord{
					EffectiveComponentRecord: entities.EffectiveComponentRecord{
						SKU:      rec.SKU,
						UnitCost: rec.UnitCost,
						Supplier: rec.Supplier,
						Eligible: true,
					},
					PerEntity: make(map[string]entities.EffectiveComponentRecord),
				})
			}
			a.merge(&consolidated[i], input.Entity, rec)
		}
	}

	sort.Slice(consolidated, func(x, y int) bool { return consolidated[x].SKU < consolidated[y].SKU })
	return consolidated
}

func (a *Aggregator) merge(c *entities.ConsolidatedRecord, entity string, rec entities.EffectiveComponentRecord) {
	c.SalesQty60d += rec.SalesQty60d
	c.StockOnHand += rec.StockOnHand
	c.StockRemote += rec.StockRemote
	c.InTransit += rec.InTransit

	if c.UnitCost.IsZero() && !rec.UnitCost.IsZero() {
		c.UnitCost = rec.UnitCost
	}
	if (c.Supplier == "" || c.Supplier == a.unknownSupplier) && rec.Supplier != "" && rec.Supplier != a.unknownSupplier {
		c.Supplier = rec.Supplier
	}
	if !rec.Eligible {
		c.Eligible = false
	}

	if prev, seen := c.PerEntity[entity]; seen {
		prev.SalesQty60d += rec.SalesQty60d
		prev.StockOnHand += rec.StockOnHand
		prev.StockRemote += rec.StockRemote
		prev.InTransit += rec.InTransit
		c.PerEntity[entity] = prev
		return
	}
	c.Entities = append(c.Entities, entity)
	c.PerEntity[entity] = rec
}
