package memory

import (
	"sync"
	"testing"

	"github.com/vsinha/replenish/pkg/domain/entities"
)

func TestCatalogRepository_EntriesLastWriteWins(t *testing.T) {
	repo := NewCatalogRepository(4, 0)

	err := repo.LoadEntries([]*entities.CatalogEntry{
		{SKU: "CUP", Supplier: "OLD_SUPPLIER", Eligible: true},
		{SKU: "LID", Supplier: "ACME", Eligible: true},
		{SKU: "CUP", Supplier: "NEW_SUPPLIER", Eligible: false},
	})
	if err != nil {
		t.Fatalf("Failed to load entries: %v", err)
	}

	entry, ok := repo.GetEntry("CUP")
	if !ok {
		t.Fatal("Expected CUP entry")
	}
	if entry.Supplier != "NEW_SUPPLIER" || entry.Eligible {
		t.Errorf("Expected last row to win, got %+v", entry)
	}

	all := repo.GetAllEntries()
	if len(all) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(all))
	}
	if all[0].SKU != "CUP" || all[1].SKU != "LID" {
		t.Errorf("Expected first-seen order CUP, LID; got %s, %s", all[0].SKU, all[1].SKU)
	}

	if _, ok := repo.GetEntry("MISSING"); ok {
		t.Error("Expected missing entry lookup to fail")
	}
}

func TestCatalogRepository_KitLinesFirstWriteWins(t *testing.T) {
	repo := NewCatalogRepository(0, 4)

	err := repo.LoadKitLines([]*entities.KitLine{
		{KitSKU: "KIT", ComponentSKU: "CUP", Qty: 2},
		{KitSKU: "KIT", ComponentSKU: "LID", Qty: 1},
		{KitSKU: "KIT", ComponentSKU: "CUP", Qty: 9},
	})
	if err != nil {
		t.Fatalf("Failed to load kit lines: %v", err)
	}

	if !repo.IsKit("KIT") {
		t.Error("Expected KIT to be a kit")
	}
	if repo.IsKit("CUP") {
		t.Error("Expected CUP not to be a kit")
	}

	lines := repo.GetKitLines("KIT")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 kit lines, got %d", len(lines))
	}
	if lines[0].ComponentSKU != "CUP" || lines[0].Qty != 2 {
		t.Errorf("Expected first CUP line to win with qty 2, got %+v", lines[0])
	}

	entries, kits, kitLines := repo.Stats()
	if entries != 0 || kits != 1 || kitLines != 2 {
		t.Errorf("Unexpected stats: entries=%d kits=%d lines=%d", entries, kits, kitLines)
	}
}

func TestCatalogRepository_RejectsInvalidKitLine(t *testing.T) {
	repo := NewCatalogRepository(0, 1)

	err := repo.AddKitLine(entities.KitLine{KitSKU: "KIT", ComponentSKU: "CUP", Qty: 0})
	if err == nil {
		t.Fatal("Expected error for zero quantity")
	}
	if repo.IsKit("KIT") {
		t.Error("Expected rejected line not to register the kit")
	}
}

func TestCatalogRepository_ReturnsCopies(t *testing.T) {
	repo := NewCatalogRepository(1, 1)
	_ = repo.AddEntry(entities.CatalogEntry{SKU: "CUP", Supplier: "ACME"})

	entry, _ := repo.GetEntry("CUP")
	entry.Supplier = "MUTATED"

	again, _ := repo.GetEntry("CUP")
	if again.Supplier != "ACME" {
		t.Errorf("Expected repository state to be immutable through getters, got %s", again.Supplier)
	}
}

func TestCatalogRepository_ConcurrentReads(t *testing.T) {
	repo := NewCatalogRepository(2, 2)
	if err := repo.LoadEntries([]*entities.CatalogEntry{
		{SKU: "CUP", Supplier: "ACME", Eligible: true},
		{SKU: "LID", Supplier: "ACME", Eligible: true},
	}); err != nil {
		t.Fatalf("Failed to load entries: %v", err)
	}
	if err := repo.LoadKitLines([]*entities.KitLine{
		{KitSKU: "PARTY", ComponentSKU: "CUP", Qty: 2},
		{KitSKU: "PARTY", ComponentSKU: "LID", Qty: 1},
	}); err != nil {
		t.Fatalf("Failed to load kit lines: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !repo.IsKit("PARTY") || len(repo.GetKitLines("PARTY")) != 2 {
				errs <- "kit lines"
			}
			if _, ok := repo.GetEntry("CUP"); !ok {
				errs <- "entry"
			}
			if len(repo.GetAllEntries()) != 2 || len(repo.GetAllKitLines()) != 2 {
				errs <- "listing"
			}
		}()
	}
	wg.Wait()
	close(errs)

	for msg := range errs {
		t.Errorf("Unexpected result reading %s concurrently", msg)
	}
}
