package entities

import (
	"fmt"
	"strings"
	"unicode"
)

// UnknownSupplier is assigned to components missing from the catalog
const UnknownSupplier = "N/A"

// CatalogEntry is one row of the component catalog
type CatalogEntry struct {
	SKU      SKU
	Supplier string
	Eligible bool
	Status   string
}

// NewCatalogEntry creates a validated CatalogEntry
func NewCatalogEntry(sku SKU, supplier, status string) (*CatalogEntry, error) {
	if !sku.Valid() {
		return nil, fmt.Errorf("component sku cannot be empty")
	}

	supplier = strings.TrimSpace(supplier)
	if supplier == "" {
		supplier = UnknownSupplier
	}

	return &CatalogEntry{
		SKU:      sku,
		Supplier: supplier,
		Eligible: IsEligibleStatus(status),
		Status:   strings.TrimSpace(status),
	}, nil
}

// negativeLeads are first words that turn a status into a refusal, e.g. "nao_repor"
var negativeLeads = map[string]bool{
	"nao":   true,
	"não":   true,
	"no":    true,
	"n":     true,
	"false": true,
	"0":     true,
}

// blockingStems match any word of a status, covering gender and tense
// ("inativa", "suspenso", "descontinuada")
var blockingStems = []string{
	"inativ",
	"desativ",
	"descontinu",
	"paus",
	"suspens",
	"bloque",
}

// IsEligibleStatus reports whether a status_reposicao value allows purchasing.
// Blank statuses are eligible.
func IsEligibleStatus(status string) bool {
	words := strings.FieldsFunc(strings.ToLower(status), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return true
	}
	if negativeLeads[words[0]] {
		return false
	}
	for _, word := range words {
		for _, stem := range blockingStems {
			if strings.HasPrefix(word, stem) {
				return false
			}
		}
	}
	return true
}

// KitLine represents one component row of a kit bill-of-materials
type KitLine struct {
	KitSKU       SKU
	ComponentSKU SKU
	Qty          Quantity
}

// NewKitLine creates a validated KitLine
func NewKitLine(kitSKU, componentSKU SKU, qty Quantity) (*KitLine, error) {
	if !kitSKU.Valid() {
		return nil, fmt.Errorf("kit sku cannot be empty")
	}
	if !componentSKU.Valid() {
		return nil, fmt.Errorf("component sku cannot be empty")
	}
	if kitSKU == componentSKU {
		return nil, fmt.Errorf("kit and component sku cannot be the same: %s", kitSKU)
	}
	if qty < 1 {
		return nil, fmt.Errorf("quantity per kit must be positive, got %d", qty)
	}

	return &KitLine{
		KitSKU:       kitSKU,
		ComponentSKU: componentSKU,
		Qty:          qty,
	}, nil
}
