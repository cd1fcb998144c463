package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vsinha/replenish/pkg/domain/entities"
)

func TestClassifyColumns(t *testing.T) {
	testCases := []struct {
		name    string
		columns []string
		want    entities.TableKind
	}{
		{"full with sales", []string{"sku", "vendas_60d", "estoque_full"}, entities.TableFull},
		{"full with transit only", []string{"sku", "em_transito"}, entities.TableFull},
		{"full wins over fisico", []string{"sku", "estoque_full", "estoque", "preco"}, entities.TableFull},
		{"fisico", []string{"codigo_sku", "estoque_atual", "preco_custo"}, entities.TablePhysical},
		{"vendas", []string{"sku", "qtde_vendida"}, entities.TableSales},
		{"vendas without quantity still vendas", []string{"sku", "cliente"}, entities.TableSales},
		{"price without stock", []string{"sku", "preco"}, entities.TableUnknown},
		{"no sku", []string{"produto", "estoque", "preco"}, entities.TableUnknown},
		{"empty", nil, entities.TableUnknown},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyColumns(tc.columns))
		})
	}
}

func TestClassifyColumns_Deterministic(t *testing.T) {
	columns := []string{"sku", "estoque", "custo_unitario", "em_transito"}
	first := ClassifyColumns(columns)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, ClassifyColumns(columns))
	}
}

func TestFindColumn_SearchOrder(t *testing.T) {
	// exact synonym beats an earlier prefix match
	columns := []string{"vendas_60d_marketplace", "vendas_60d"}
	assert.Equal(t, 1, FindColumn(columns, ConceptSales60d, nil))

	// prefix fallback
	columns = []string{"sku", "vendas_60_dias_full"}
	assert.Equal(t, 1, FindColumn(columns, ConceptSales60d, nil))

	// skipped columns are never selected
	columns = []string{"sku", "sku_kit"}
	assert.Equal(t, 1, FindColumn(columns, ConceptSKU, map[int]bool{0: true}))

	assert.Equal(t, -1, FindColumn([]string{"a", "b"}, ConceptPrice, nil))
}

func TestScoreSalesColumn(t *testing.T) {
	assert.Equal(t, 4, ScoreSalesColumn("qtde_vendas"))
	assert.Equal(t, 3, ScoreSalesColumn("qtde_vendida"))
	assert.Equal(t, 3, ScoreSalesColumn("quantidade_vendas"))
	assert.Equal(t, 1, ScoreSalesColumn("orders"))
	assert.Equal(t, 0, ScoreSalesColumn("cliente"))
}

func TestFindSalesQuantityColumn(t *testing.T) {
	columns := []string{"sku", "vendas", "quantidade", "qtde"}
	assert.Equal(t, 3, FindSalesQuantityColumn(columns, nil))

	// ties go to the first column
	columns = []string{"sku", "quantidade", "quantia"}
	assert.Equal(t, 1, FindSalesQuantityColumn(columns, nil))

	assert.Equal(t, -1, FindSalesQuantityColumn([]string{"sku", "cliente"}, map[int]bool{0: true}))
}
