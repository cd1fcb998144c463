package testing

import (
	"github.com/vsinha/replenish/pkg/domain/entities"
	"github.com/vsinha/replenish/pkg/infrastructure/repositories/memory"
)

// mustAddEntry is a helper for fixtures - panics on validation error
func mustAddEntry(repo *memory.CatalogRepository, sku, supplier, status string) {
	entry, err := entities.NewCatalogEntry(entities.SKU(sku), supplier, status)
	if err != nil {
		panic(err)
	}
	if err := repo.AddEntry(*entry); err != nil {
		panic(err)
	}
}

// mustAddKitLine is a helper for fixtures - panics on validation error
func mustAddKitLine(repo *memory.CatalogRepository, kit, component string, qty entities.Quantity) {
	line, err := entities.NewKitLine(entities.SKU(kit), entities.SKU(component), qty)
	if err != nil {
		panic(err)
	}
	if err := repo.AddKitLine(*line); err != nil {
		panic(err)
	}
}

// BuildPartyStoreCatalog builds a small party-supplies catalog: three
// components, one of them paused, and a kit of two cups and a lid
func BuildPartyStoreCatalog() *memory.CatalogRepository {
	repo := memory.NewCatalogRepository(3, 2)

	mustAddEntry(repo, "COPO", "Plasticos SA", "sim")
	mustAddEntry(repo, "TAMPA", "Plasticos SA", "")
	mustAddEntry(repo, "CANUDO", "Canudos Ltda", "pausado")

	mustAddKitLine(repo, "KIT-FESTA", "COPO", 2)
	mustAddKitLine(repo, "KIT-FESTA", "TAMPA", 1)

	return repo
}

// BuildPartyStoreScenario builds two stores exporting tables the way their
// marketplaces and ERP do: loja_a has fulfillment, warehouse and an
// unrecognized price table; loja_b only has order lines
func BuildPartyStoreScenario() []entities.EntityInput {
	return []entities.EntityInput{
		{
			Entity: "loja_a",
			Tables: []entities.RawTable{
				{
					Name:   "full.csv",
					Header: []string{"SKU", "Vendas 60d", "Estoque Full"},
					Rows: [][]string{
						{"kit-festa", "15", "0"},
						{"copo", "0", "2"},
						{"fantasma", "9", "0"},
					},
				},
				{
					Name:   "fisico.csv",
					Header: []string{"SKU", "Estoque", "Preço"},
					Rows: [][]string{
						{"copo", "0", "1,50"},
						{"tampa", "1", "abc"},
					},
				},
				{
					Name:   "precos.csv",
					Header: []string{"SKU", "Preço"},
					Rows:   [][]string{{"copo", "1,00"}},
				},
			},
		},
		{
			Entity: "loja_b",
			Tables: []entities.RawTable{
				{
					Name:   "vendas.csv",
					Header: []string{"SKU", "Qtde"},
					Rows: [][]string{
						{"copo", "20"},
						{"canudo", "50"},
					},
				},
			},
		},
	}
}
