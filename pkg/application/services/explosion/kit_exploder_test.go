package explosion

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/replenish/pkg/domain/entities"
	"github.com/vsinha/replenish/pkg/infrastructure/repositories/memory"
)

func newCatalog(t *testing.T, entries []entities.CatalogEntry, lines []entities.KitLine) *memory.CatalogRepository {
	t.Helper()

	repo := memory.NewCatalogRepository(len(entries), len(lines))
	for _, e := range entries {
		require.NoError(t, repo.AddEntry(e))
	}
	for _, l := range lines {
		require.NoError(t, repo.AddKitLine(l))
	}
	return repo
}

func findRecord(records []entities.EffectiveComponentRecord, sku entities.SKU) (entities.EffectiveComponentRecord, bool) {
	for _, r := range records {
		if r.SKU == sku {
			return r, true
		}
	}
	return entities.EffectiveComponentRecord{}, false
}

func TestExplode_KitSalesScaleByQuantity(t *testing.T) {
	catalog := newCatalog(t,
		[]entities.CatalogEntry{
			{SKU: "A", Supplier: "ACME", Eligible: true},
			{SKU: "B", Supplier: "Beta", Eligible: true},
		},
		[]entities.KitLine{
			{KitSKU: "KIT", ComponentSKU: "A", Qty: 2},
			{KitSKU: "KIT", ComponentSKU: "B", Qty: 1},
		},
	)
	tables := []*entities.CanonicalTable{{
		Name:  "vendas.csv",
		Kind:  entities.TableSales,
		Sales: []entities.SalesRecord{{SKU: "KIT", Quantity: 10}},
	}}

	records, warnings, err := NewKitExploder(catalog, "").Explode(context.Background(), "loja", tables)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, records, 2)

	assert.Equal(t, entities.SKU("A"), records[0].SKU)
	assert.Equal(t, entities.Quantity(20), records[0].SalesQty60d)
	assert.Equal(t, "ACME", records[0].Supplier)
	assert.Equal(t, entities.SKU("B"), records[1].SKU)
	assert.Equal(t, entities.Quantity(10), records[1].SalesQty60d)
}

func TestExplode_NestedKitsAndDirectFigures(t *testing.T) {
	catalog := newCatalog(t,
		[]entities.CatalogEntry{
			{SKU: "A", Supplier: "ACME", Eligible: true},
			{SKU: "C", Supplier: "Gamma", Eligible: false},
		},
		[]entities.KitLine{
			{KitSKU: "OUTER", ComponentSKU: "INNER", Qty: 3},
			{KitSKU: "INNER", ComponentSKU: "A", Qty: 2},
			{KitSKU: "INNER", ComponentSKU: "C", Qty: 1},
		},
	)
	tables := []*entities.CanonicalTable{
		{
			Kind: entities.TableFull,
			Fulfillment: []entities.FulfillmentRecord{
				{SKU: "OUTER", SalesQty60d: 4, RemoteStock: 1, InTransit: 2},
				{SKU: "A", SalesQty60d: 5, RemoteStock: 0, InTransit: 0},
			},
		},
		{
			Kind: entities.TablePhysical,
			Physical: []entities.PhysicalRecord{
				{SKU: "A", OnHandStock: 7, UnitCost: decimal.RequireFromString("2.50")},
				{SKU: "OUTER", OnHandStock: 1, UnitCost: decimal.RequireFromString("99")},
			},
		},
		{
			Kind:  entities.TableSales,
			Sales: []entities.SalesRecord{{SKU: "A", Quantity: 1}},
		},
	}

	records, _, err := NewKitExploder(catalog, "").Explode(context.Background(), "loja", tables)
	require.NoError(t, err)

	a, ok := findRecord(records, "A")
	require.True(t, ok)
	// direct 5+1 sales, plus OUTER 4 * 3 * 2
	assert.Equal(t, entities.Quantity(6+24), a.SalesQty60d)
	assert.Equal(t, entities.Quantity(7+6), a.StockOnHand)
	assert.Equal(t, entities.Quantity(6), a.StockRemote)
	assert.Equal(t, entities.Quantity(12), a.InTransit)
	assert.True(t, a.UnitCost.Equal(decimal.RequireFromString("2.50")))
	assert.True(t, a.Eligible)

	c, ok := findRecord(records, "C")
	require.True(t, ok)
	assert.Equal(t, entities.Quantity(12), c.SalesQty60d)
	assert.True(t, c.UnitCost.IsZero(), "kit cost must not leak into components")
	assert.False(t, c.Eligible)
	assert.Equal(t, "Gamma", c.Supplier)

	_, ok = findRecord(records, "OUTER")
	assert.False(t, ok)
	_, ok = findRecord(records, "INNER")
	assert.False(t, ok)
}

func TestExplode_UnresolvedSKU(t *testing.T) {
	catalog := newCatalog(t,
		[]entities.CatalogEntry{{SKU: "A", Supplier: "ACME", Eligible: true}},
		nil,
	)
	tables := []*entities.CanonicalTable{{
		Kind: entities.TableSales,
		Sales: []entities.SalesRecord{
			{SKU: "KIT-SEM-BOM", Quantity: 3},
			{SKU: "A", Quantity: 2},
		},
	}}

	records, warnings, err := NewKitExploder(catalog, "").Explode(context.Background(), "loja", tables)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, entities.SKU("A"), records[0].SKU)

	require.Len(t, warnings, 1)
	assert.Equal(t, entities.UnresolvedSKUWarning, warnings[0].Kind)
	assert.Equal(t, "loja", warnings[0].Entity)
	assert.Equal(t, entities.SKU("KIT-SEM-BOM"), warnings[0].SKU)
}

func TestExplode_ComponentsOnlyReachedThroughKits(t *testing.T) {
	catalog := newCatalog(t,
		nil,
		[]entities.KitLine{
			{KitSKU: "KIT", ComponentSKU: "X", Qty: 1},
			{KitSKU: "KIT2", ComponentSKU: "Y", Qty: 1},
		},
	)
	tables := []*entities.CanonicalTable{{
		Kind: entities.TableFull,
		Fulfillment: []entities.FulfillmentRecord{
			{SKU: "KIT", SalesQty60d: 2},
			{SKU: "KIT2"},
		},
	}}

	records, warnings, err := NewKitExploder(catalog, "SEM FORNECEDOR").Explode(context.Background(), "loja", tables)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	require.Len(t, records, 1)
	assert.Equal(t, entities.SKU("X"), records[0].SKU)
	assert.Equal(t, "SEM FORNECEDOR", records[0].Supplier)
	assert.True(t, records[0].Eligible)
}

func TestExplode_DirectComponentKeptWhenZero(t *testing.T) {
	catalog := newCatalog(t,
		[]entities.CatalogEntry{{SKU: "A", Supplier: "ACME", Eligible: true}},
		nil,
	)
	tables := []*entities.CanonicalTable{{
		Kind:     entities.TablePhysical,
		Physical: []entities.PhysicalRecord{{SKU: "A", UnitCost: decimal.Zero}},
	}}

	records, _, err := NewKitExploder(catalog, "").Explode(context.Background(), "loja", tables)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ACME", records[0].Supplier)
	assert.Equal(t, entities.Quantity(0), records[0].SalesQty60d)
}

func TestExplode_CancelledContext(t *testing.T) {
	catalog := newCatalog(t, []entities.CatalogEntry{{SKU: "A", Eligible: true}}, nil)
	tables := []*entities.CanonicalTable{{
		Kind:  entities.TableSales,
		Sales: []entities.SalesRecord{{SKU: "A", Quantity: 1}},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewKitExploder(catalog, "").Explode(ctx, "loja", tables)
	assert.ErrorIs(t, err, context.Canceled)
}
