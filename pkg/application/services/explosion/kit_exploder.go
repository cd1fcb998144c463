package explosion

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vsinha/replenish/pkg/domain/entities"
	"github.com/vsinha/replenish/pkg/domain/repositories"
)

// maxKitDepth bounds nested kit expansion when the catalog was not validated
const maxKitDepth = 32

// directFigures are the merged canonical figures of one SKU within an entity
type directFigures struct {
	sales    entities.Quantity
	onHand   entities.Quantity
	remote   entities.Quantity
	transit  entities.Quantity
	unitCost decimal.Decimal
}

func (d directFigures) isZero() bool {
	return d.sales == 0 && d.onHand == 0 && d.remote == 0 && d.transit == 0
}

func (d directFigures) scaled(factor entities.Quantity) directFigures {
	return directFigures{
		sales:   d.sales * factor,
		onHand:  d.onHand * factor,
		remote:  d.remote * factor,
		transit: d.transit * factor,
	}
}

// accumulator collects component figures in first-touch order
type accumulator struct {
	index   map[entities.SKU]int
	skus    []entities.SKU
	figures []directFigures
	direct  []bool
}

func newAccumulator() *accumulator {
	return &accumulator{index: make(map[entities.SKU]int)}
}

func (a *accumulator) slot(sku entities.SKU) int {
	i, ok := a.index[sku]
	if !ok {
		i = len(a.skus)
		a.index[sku] = i
		a.skus = append(a.skus, sku)
		a.figures = append(a.figures, directFigures{unitCost: decimal.Zero})
		a.direct = append(a.direct, false)
	}
	return i
}

func (a *accumulator) add(sku entities.SKU, f directFigures, direct bool) {
	i := a.slot(sku)
	a.figures[i].sales += f.sales
	a.figures[i].onHand += f.onHand
	a.figures[i].remote += f.remote
	a.figures[i].transit += f.transit
	if direct {
		a.direct[i] = true
		if !f.unitCost.IsZero() {
			a.figures[i].unitCost = f.unitCost
		}
	}
}

// KitExploder turns one entity's canonical tables into component-level
// effective records using the catalog bill-of-materials
type KitExploder struct {
	catalog         repositories.CatalogRepository
	components      map[entities.SKU]bool
	unknownSupplier string
}

// NewKitExploder creates a kit exploder over a loaded catalog.
// An empty unknownSupplier falls back to entities.UnknownSupplier.
func NewKitExploder(catalog repositories.CatalogRepository, unknownSupplier string) *KitExploder {
	if unknownSupplier == "" {
		unknownSupplier = entities.UnknownSupplier
	}

	components := make(map[entities.SKU]bool)
	for _, line := range catalog.GetAllKitLines() {
		components[line.ComponentSKU] = true
	}

	return &KitExploder{
		catalog:         catalog,
		components:      components,
		unknownSupplier: unknownSupplier,
	}
}

// Resolves reports whether a SKU is a kit or a known component
func (e *KitExploder) Resolves(sku entities.SKU) bool {
	if e.catalog.IsKit(sku) || e.components[sku] {
		return true
	}
	_, ok := e.catalog.GetEntry(sku)
	return ok
}

// Explode merges the entity's tables, expands kits into their components and
// joins catalog metadata. Records are returned sorted by SKU.
func (e *KitExploder) Explode(
	ctx context.Context,
	entity string,
	tables []*entities.CanonicalTable,
) ([]entities.EffectiveComponentRecord, []entities.Warning, error) {
	skus, figures := mergeTables(tables)

	acc := newAccumulator()
	var warnings []entities.Warning

	for _, sku := range skus {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		f := figures[sku]
		switch {
		case e.catalog.IsKit(sku):
			if err := e.expandKit(sku, f, 1, 0, acc); err != nil {
				return nil, nil, fmt.Errorf("failed to explode kit %s for %s: %w", sku, entity, err)
			}
		case e.Resolves(sku):
			acc.add(sku, f, true)
		default:
			warnings = append(warnings, entities.Warning{
				Kind:    entities.UnresolvedSKUWarning,
				Entity:  entity,
				SKU:     sku,
				Message: "sku is neither a kit nor a catalog component, ignored",
			})
		}
	}

	records := make([]entities.EffectiveComponentRecord, 0, len(acc.skus))
	for i, sku := range acc.skus {
		f := acc.figures[i]
		if !acc.direct[i] && f.isZero() {
			continue
		}
		records = append(records, e.effectiveRecord(sku, f))
	}

	sort.Slice(records, func(a, b int) bool { return records[a].SKU < records[b].SKU })
	return records, warnings, nil
}

// expandKit distributes a kit's figures to its components, multiplying
// quantities through nested kits
func (e *KitExploder) expandKit(
	kit entities.SKU,
	f directFigures,
	factor entities.Quantity,
	depth int,
	acc *accumulator,
) error {
	if depth >= maxKitDepth {
		return fmt.Errorf("kit nesting deeper than %d levels at %s", maxKitDepth, kit)
	}

	for _, line := range e.catalog.GetKitLines(kit) {
		childFactor := factor * line.Qty
		if e.catalog.IsKit(line.ComponentSKU) {
			if err := e.expandKit(line.ComponentSKU, f, childFactor, depth+1, acc); err != nil {
				return err
			}
			continue
		}
		acc.add(line.ComponentSKU, f.scaled(childFactor), false)
	}
	return nil
}

func (e *KitExploder) effectiveRecord(sku entities.SKU, f directFigures) entities.EffectiveComponentRecord {
	rec := entities.EffectiveComponentRecord{
		SKU:         sku,
		SalesQty60d: f.sales,
		StockOnHand: f.onHand,
		StockRemote: f.remote,
		InTransit:   f.transit,
		UnitCost:    f.unitCost,
		Supplier:    e.unknownSupplier,
		Eligible:    true,
	}
	if entry, ok := e.catalog.GetEntry(sku); ok {
		if entry.Supplier != entities.UnknownSupplier {
			rec.Supplier = entry.Supplier
		}
		rec.Eligible = entry.Eligible
	}
	return rec
}

// mergeTables folds all canonical tables of an entity into per-SKU figures.
// Sales from FULL and VENDAS tables add up.
func mergeTables(tables []*entities.CanonicalTable) ([]entities.SKU, map[entities.SKU]directFigures) {
	var order []entities.SKU
	figures := make(map[entities.SKU]directFigures)

	touch := func(sku entities.SKU) directFigures {
		f, ok := figures[sku]
		if !ok {
			order = append(order, sku)
			f.unitCost = decimal.Zero
		}
		return f
	}

	for _, table := range tables {
		if table == nil {
			continue
		}
		for _, r := range table.Fulfillment {
			f := touch(r.SKU)
			f.sales += r.SalesQty60d
			f.remote += r.RemoteStock
			f.transit += r.InTransit
			figures[r.SKU] = f
		}
		for _, r := range table.Physical {
			f := touch(r.SKU)
			f.onHand += r.OnHandStock
			if !r.UnitCost.IsZero() {
				f.unitCost = r.UnitCost
			}
			figures[r.SKU] = f
		}
		for _, r := range table.Sales {
			f := touch(r.SKU)
			f.sales += r.Quantity
			figures[r.SKU] = f
		}
	}
	return order, figures
}
