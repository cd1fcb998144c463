package repositories

import "github.com/vsinha/replenish/pkg/domain/entities"

// CatalogRepository provides access to the component catalog and kit bill-of-materials.
// It is loaded once per planning run and read concurrently afterwards;
// the Load methods must not be called once planning has started.
type CatalogRepository interface {
	GetEntry(sku entities.SKU) (*entities.CatalogEntry, bool)
	GetAllEntries() []*entities.CatalogEntry
	LoadEntries(entries []*entities.CatalogEntry) error

	// IsKit reports whether the SKU has at least one bill-of-materials line
	IsKit(sku entities.SKU) bool
	GetKitLines(kitSKU entities.SKU) []*entities.KitLine
	GetAllKitLines() []*entities.KitLine
	LoadKitLines(lines []*entities.KitLine) error
}
