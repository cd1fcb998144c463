package allocation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vsinha/replenish/pkg/domain/entities"
)

// Allocator splits consolidated quantities across entities by sales share
// using the largest remainder method
type Allocator struct {
	defaultEntity string
}

// NewAllocator creates an allocator. When no participating entity has sales,
// defaultEntity receives the whole quantity if it participates.
func NewAllocator(defaultEntity string) *Allocator {
	return &Allocator{defaultEntity: defaultEntity}
}

// Split divides qty over entities proportionally to weights, in exact integer
// arithmetic. Shares are returned in entity order and always sum to qty.
// Negative weights count as zero.
func (a *Allocator) Split(qty entities.Quantity, order []string, weights map[string]entities.Quantity) []entities.AllocationShare {
	shares := make([]entities.AllocationShare, len(order))
	for i, entity := range order {
		shares[i].Entity = entity
	}
	if len(order) == 0 || qty <= 0 {
		return shares
	}

	w := make([]decimal.Decimal, len(order))
	total := decimal.Zero
	for i, entity := range order {
		if weights[entity] > 0 {
			w[i] = decimal.NewFromInt(int64(weights[entity]))
			total = total.Add(w[i])
		}
	}

	if total.IsZero() {
		for i, entity := range order {
			if a.defaultEntity != "" && entity == a.defaultEntity {
				shares[i].Qty = qty
				return shares
			}
		}
		for i := range w {
			w[i] = decimal.NewFromInt(1)
		}
		total = decimal.NewFromInt(int64(len(w)))
	}

	// decimal keeps qty*weight exact beyond int64
	q := decimal.NewFromInt(int64(qty))
	remainders := make([]decimal.Decimal, len(order))
	var assigned entities.Quantity
	for i := range order {
		floor, rem := q.Mul(w[i]).QuoRem(total, 0)
		shares[i].Qty = entities.Quantity(floor.IntPart())
		remainders[i] = rem
		assigned += shares[i].Qty
	}

	rank := make([]int, len(order))
	for i := range rank {
		rank[i] = i
	}
	sort.SliceStable(rank, func(x, y int) bool {
		i, j := rank[x], rank[y]
		if c := remainders[i].Cmp(remainders[j]); c != 0 {
			return c > 0
		}
		return w[i].GreaterThan(w[j])
	})

	for k := 0; assigned < qty; k++ {
		shares[rank[k%len(rank)]].Qty++
		assigned++
	}
	return shares
}

// Allocate splits a consolidated suggestion across the entities holding the
// SKU, weighting by each entity's 60-day sales
func (a *Allocator) Allocate(rec entities.ConsolidatedRecord, suggestion entities.PurchaseSuggestion) []entities.AllocationShare {
	weights := make(map[string]entities.Quantity, len(rec.Entities))
	for _, entity := range rec.Entities {
		weights[entity] = rec.EntitySales(entity)
	}
	return a.Split(suggestion.SuggestedQty, rec.Entities, weights)
}
