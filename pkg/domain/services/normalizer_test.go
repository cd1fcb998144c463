package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vsinha/replenish/pkg/domain/entities"
)

func TestNormalizeHeader(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"SKU", "sku"},
		{"Preço de Custo", "preco_de_custo"},
		{"  Estoque -- Full  ", "estoque_full"},
		{"Vendas (60d)", "vendas_60d"},
		{"__Em Trânsito__", "em_transito"},
		{"Qtde. Vendida", "qtde_vendida"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeHeader(tc.in))
		})
	}
}

func TestNormalizeHeader_Idempotent(t *testing.T) {
	inputs := []string{
		"Preço Médio R$", "ESTOQUE_ATUAL", "a--b__c", "Código SKU", "  x  ", "Ünïcödé Çolumn 2",
		"já_normalizado", "100% vendas",
	}
	for _, in := range inputs {
		once := NormalizeHeader(in)
		assert.Equal(t, once, NormalizeHeader(once), "header %q", in)
	}
}

func TestParseNumber(t *testing.T) {
	testCases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"R$ 1.234,56", 1234.56, true},
		{"R$\u00a01.234,56", 1234.56, true},
		{"1.234.567,8", 1234567.8, true},
		{"12,5", 12.5, true},
		{"1.234", 1234, true},
		{"12.5", 12.5, true},
		{"1,234.56", 1234.56, true},
		{"-3,5", -3.5, true},
		{"42", 42, true},
		{"", 0, true},
		{"nan", 0, true},
		{"None", 0, true},
		{"abc", 0, false},
		{"R$ 12,3x", 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseNumber(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestParseQuantity_Truncates(t *testing.T) {
	q, ok := ParseQuantity("7,9")
	assert.True(t, ok)
	assert.Equal(t, entities.Quantity(7), q)

	q, ok = ParseQuantity("-2,5")
	assert.True(t, ok)
	assert.Equal(t, entities.Quantity(-2), q)

	q, ok = ParseQuantity("sete")
	assert.False(t, ok)
	assert.Equal(t, entities.Quantity(0), q)

	for _, huge := range []string{"1e30", "9999999999999999999999", "-9999999999999999999999"} {
		q, ok = ParseQuantity(huge)
		assert.False(t, ok, huge)
		assert.Equal(t, entities.Quantity(0), q, huge)
	}

	q, ok = ParseQuantity("9223372036854775807")
	assert.True(t, ok)
	assert.Equal(t, entities.Quantity(math.MaxInt64), q)
}

func TestNormalizeSKU(t *testing.T) {
	testCases := []struct {
		in   string
		want entities.SKU
	}{
		{" kit-açaí ", "KIT-ACAI"},
		{"abc123", "ABC123"},
		{"12345.0", "12345"},
		{"None", ""},
		{"NaN", ""},
		{"", ""},
		{"   ", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got := NormalizeSKU(tc.in)
			assert.Equal(t, tc.want, got)
			if tc.want == "" {
				assert.False(t, got.Valid())
			}
		})
	}
}
