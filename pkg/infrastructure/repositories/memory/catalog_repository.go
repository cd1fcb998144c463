package memory

import (
	"fmt"

	"github.com/vsinha/replenish/pkg/domain/entities"
	"github.com/vsinha/replenish/pkg/domain/repositories"
)

type kitPair struct {
	kit       entities.SKU
	component entities.SKU
}

// CatalogRepository provides in-memory catalog and kit BOM storage.
// Catalog rows are last-write-wins; kit rows are first-write-wins per (kit, component).
// It holds no lock: load everything before handing it to a KitExploder or a
// planning run, and never mutate it afterwards. Concurrent reads are safe.
type CatalogRepository struct {
	entries    []entities.CatalogEntry
	entriesMap map[entities.SKU]int
	kitLines   []entities.KitLine
	kitIndexes map[entities.SKU][]int
	kitPairs   map[kitPair]bool
}

// NewCatalogRepository creates a catalog repository sized for the expected rows
func NewCatalogRepository(expectedEntries, expectedKitLines int) *CatalogRepository {
	return &CatalogRepository{
		entries:    make([]entities.CatalogEntry, 0, expectedEntries),
		entriesMap: make(map[entities.SKU]int, expectedEntries),
		kitLines:   make([]entities.KitLine, 0, expectedKitLines),
		kitIndexes: make(map[entities.SKU][]int),
		kitPairs:   make(map[kitPair]bool, expectedKitLines),
	}
}

// Verify interface compliance
var _ repositories.CatalogRepository = (*CatalogRepository)(nil)

// LoadEntries loads catalog entries into the repository
func (r *CatalogRepository) LoadEntries(entries []*entities.CatalogEntry) error {
	for _, entry := range entries {
		if err := r.AddEntry(*entry); err != nil {
			return err
		}
	}
	return nil
}

// AddEntry adds a catalog entry, replacing an earlier row for the same SKU in place
func (r *CatalogRepository) AddEntry(entry entities.CatalogEntry) error {
	if !entry.SKU.Valid() {
		return fmt.Errorf("catalog entry sku cannot be empty")
	}
	if index, exists := r.entriesMap[entry.SKU]; exists {
		r.entries[index] = entry
		return nil
	}
	r.entriesMap[entry.SKU] = len(r.entries)
	r.entries = append(r.entries, entry)
	return nil
}

// GetEntry returns the catalog entry for a component SKU
func (r *CatalogRepository) GetEntry(sku entities.SKU) (*entities.CatalogEntry, bool) {
	index, exists := r.entriesMap[sku]
	if !exists {
		return nil, false
	}
	entry := r.entries[index]
	return &entry, true
}

// GetAllEntries returns all catalog entries in first-seen order
func (r *CatalogRepository) GetAllEntries() []*entities.CatalogEntry {
	entries := make([]*entities.CatalogEntry, 0, len(r.entries))
	for i := range r.entries {
		entry := r.entries[i]
		entries = append(entries, &entry)
	}
	return entries
}

// LoadKitLines loads kit BOM lines into the repository
func (r *CatalogRepository) LoadKitLines(lines []*entities.KitLine) error {
	for _, line := range lines {
		if err := r.AddKitLine(*line); err != nil {
			return err
		}
	}
	return nil
}

// AddKitLine adds a kit line unless the (kit, component) pair is already known
func (r *CatalogRepository) AddKitLine(line entities.KitLine) error {
	if _, err := entities.NewKitLine(line.KitSKU, line.ComponentSKU, line.Qty); err != nil {
		return fmt.Errorf("invalid kit line: %w", err)
	}

	key := kitPair{line.KitSKU, line.ComponentSKU}
	if r.kitPairs[key] {
		return nil
	}
	r.kitPairs[key] = true

	index := len(r.kitLines)
	r.kitLines = append(r.kitLines, line)
	r.kitIndexes[line.KitSKU] = append(r.kitIndexes[line.KitSKU], index)
	return nil
}

// IsKit reports whether the SKU has a bill-of-materials
func (r *CatalogRepository) IsKit(sku entities.SKU) bool {
	return len(r.kitIndexes[sku]) > 0
}

// GetKitLines returns the component lines of a kit in load order
func (r *CatalogRepository) GetKitLines(kitSKU entities.SKU) []*entities.KitLine {
	indexes := r.kitIndexes[kitSKU]
	lines := make([]*entities.KitLine, 0, len(indexes))
	for _, index := range indexes {
		line := r.kitLines[index]
		lines = append(lines, &line)
	}
	return lines
}

// GetAllKitLines returns all kit lines in load order
func (r *CatalogRepository) GetAllKitLines() []*entities.KitLine {
	lines := make([]*entities.KitLine, 0, len(r.kitLines))
	for i := range r.kitLines {
		line := r.kitLines[i]
		lines = append(lines, &line)
	}
	return lines
}

// Stats returns the number of catalog entries, kits and kit lines
func (r *CatalogRepository) Stats() (entries, kits, kitLines int) {
	return len(r.entries), len(r.kitIndexes), len(r.kitLines)
}
