package services

import (
	"strings"

	"github.com/vsinha/replenish/pkg/domain/entities"
)

// Concept is a semantic column role recognized in uploaded tables
type Concept int

const (
	ConceptSKU Concept = iota
	ConceptSales60d
	ConceptStockFull
	ConceptInTransit
	ConceptStock
	ConceptPrice
)

// String method for Concept enum
func (c Concept) String() string {
	switch c {
	case ConceptSKU:
		return "sku"
	case ConceptSales60d:
		return "vendas_60d"
	case ConceptStockFull:
		return "estoque_full"
	case ConceptInTransit:
		return "em_transito"
	case ConceptStock:
		return "estoque"
	case ConceptPrice:
		return "preco"
	default:
		return "unknown"
	}
}

// MatchMode is how a synonym is compared to a normalized header
type MatchMode int

const (
	MatchExact MatchMode = iota
	MatchPrefix
	MatchContains
)

// Synonym is one accepted header spelling for a concept
type Synonym struct {
	Token string
	Mode  MatchMode
}

// Matches reports whether a normalized header satisfies the synonym
func (s Synonym) Matches(header string) bool {
	switch s.Mode {
	case MatchExact:
		return header == s.Token
	case MatchPrefix:
		return strings.HasPrefix(header, s.Token)
	case MatchContains:
		return strings.Contains(header, s.Token)
	default:
		return false
	}
}

// Vocabulary lists the accepted synonyms per concept in search order.
// The column mapper takes the first synonym that matches any column.
var Vocabulary = map[Concept][]Synonym{
	ConceptSKU: {
		{"sku", MatchExact},
		{"codigo_sku", MatchExact},
		{"sku_produto", MatchExact},
		{"codigo", MatchExact},
		{"codigo_produto", MatchExact},
		{"sku_", MatchPrefix},
		{"sku", MatchContains},
	},
	ConceptSales60d: {
		{"vendas_60d", MatchExact},
		{"vendas_60_dias", MatchExact},
		{"qtd_vendas_60d", MatchExact},
		{"vendas_60", MatchPrefix},
		{"vendas_ultimos_60", MatchPrefix},
		{"vendas_60", MatchContains},
	},
	ConceptStockFull: {
		{"estoque_full", MatchExact},
		{"estoque_no_full", MatchExact},
		{"estoque_remoto", MatchExact},
		{"estoque_full", MatchPrefix},
		{"estoque_full", MatchContains},
		{"full_estoque", MatchContains},
	},
	ConceptInTransit: {
		{"em_transito", MatchExact},
		{"estoque_em_transito", MatchExact},
		{"transito", MatchContains},
		{"a_caminho", MatchContains},
		{"in_transit", MatchContains},
	},
	ConceptStock: {
		{"estoque", MatchExact},
		{"estoque_atual", MatchExact},
		{"saldo", MatchExact},
		{"estoque", MatchPrefix},
		{"estoque", MatchContains},
		{"saldo", MatchContains},
	},
	ConceptPrice: {
		{"preco", MatchExact},
		{"custo", MatchExact},
		{"preco_custo", MatchExact},
		{"custo_unitario", MatchExact},
		{"valor_unitario", MatchExact},
		{"preco", MatchPrefix},
		{"custo", MatchPrefix},
		{"preco", MatchContains},
		{"custo", MatchContains},
	},
}

// FindColumn returns the index of the column selected for a concept, or -1.
// Synonyms are tried in vocabulary order; within a synonym, columns are
// scanned left to right. Columns listed in skip are never selected.
func FindColumn(columns []string, concept Concept, skip map[int]bool) int {
	for _, syn := range Vocabulary[concept] {
		for i, col := range columns {
			if skip[i] {
				continue
			}
			if syn.Matches(col) {
				return i
			}
		}
	}
	return -1
}

// HasConcept reports whether any column matches a concept
func HasConcept(columns []string, concept Concept) bool {
	return FindColumn(columns, concept, nil) >= 0
}

// ClassifyColumns decides which record type a table of normalized headers holds.
// FULL is tested before FISICO before VENDAS; the first shape satisfied wins.
func ClassifyColumns(columns []string) entities.TableKind {
	if !HasConcept(columns, ConceptSKU) {
		return entities.TableUnknown
	}

	if HasConcept(columns, ConceptSales60d) ||
		HasConcept(columns, ConceptStockFull) ||
		HasConcept(columns, ConceptInTransit) {
		return entities.TableFull
	}

	hasPrice := HasConcept(columns, ConceptPrice)
	if HasConcept(columns, ConceptStock) && hasPrice {
		return entities.TablePhysical
	}

	if !hasPrice {
		return entities.TableSales
	}

	return entities.TableUnknown
}

// salesTokenWeights scores header tokens when picking a sales-quantity column
var salesTokenWeights = []struct {
	fragment string
	weight   int
}{
	{"qtde", 3},
	{"quant", 2},
	{"venda", 1},
	{"order", 1},
}

// ScoreSalesColumn ranks a normalized header as a sales-quantity candidate
func ScoreSalesColumn(header string) int {
	score := 0
	for _, token := range strings.Split(header, "_") {
		for _, w := range salesTokenWeights {
			if strings.Contains(token, w.fragment) {
				score += w.weight
			}
		}
	}
	return score
}

// FindSalesQuantityColumn returns the highest scoring column, ties broken by
// column order, or -1 when no column scores above zero
func FindSalesQuantityColumn(columns []string, skip map[int]bool) int {
	best, bestScore := -1, 0
	for i, col := range columns {
		if skip[i] {
			continue
		}
		if score := ScoreSalesColumn(col); score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}
