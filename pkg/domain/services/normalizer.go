package services

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/vsinha/replenish/pkg/domain/entities"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	thousandsOnly   = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+$`)
	integralFloat   = regexp.MustCompile(`^\d+\.0+$`)

	maxQuantity = decimal.NewFromInt(math.MaxInt64)
	minQuantity = decimal.NewFromInt(math.MinInt64)
)

// missingTokens are cell values produced by exporters for empty cells
var missingTokens = map[string]bool{
	"":       true,
	"-":      true,
	"nan":    true,
	"none":   true,
	"null":   true,
	"<na>":   true,
	"n/a":    true,
	"#n/a":   true,
	"nat":    true,
	"(null)": true,
}

// StripAccents removes combining marks, e.g. "Preço" -> "Preco"
func StripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeHeader turns an arbitrary column header into an ASCII-lowercase,
// underscore-delimited token. Normalizing an already-normalized header is a no-op.
func NormalizeHeader(header string) string {
	h := strings.ToLower(StripAccents(header))
	h = nonAlphanumeric.ReplaceAllString(h, "_")
	return strings.Trim(h, "_")
}

// NormalizeHeaders normalizes a full header row
func NormalizeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = NormalizeHeader(h)
	}
	return out
}

// IsMissing reports whether a cell holds no value at all
func IsMissing(value string) bool {
	v := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(value, "\u00a0", " ")))
	return missingTokens[v]
}

// NormalizeSKU trims, strips accents and upper-cases a product code.
// Missing markers normalize to the empty (invalid) SKU.
func NormalizeSKU(value string) entities.SKU {
	if IsMissing(value) {
		return ""
	}
	v := strings.TrimSpace(strings.ReplaceAll(value, "\u00a0", " "))
	v = strings.ToUpper(StripAccents(v))
	if integralFloat.MatchString(v) {
		v = v[:strings.IndexByte(v, '.')]
	}
	return entities.SKU(v)
}

// ParseDecimal parses a locale-formatted number such as "R$ 1.234,56".
// Missing cells yield zero with ok=true; unparsable cells yield zero with ok=false.
func ParseDecimal(value string) (decimal.Decimal, bool) {
	if IsMissing(value) {
		return decimal.Zero, true
	}

	v := strings.ReplaceAll(value, "\u00a0", "")
	v = strings.ReplaceAll(v, " ", "")
	v = strings.ReplaceAll(v, "R$", "")
	v = strings.ReplaceAll(v, "r$", "")
	v = strings.TrimSpace(v)

	lastComma := strings.LastIndexByte(v, ',')
	lastDot := strings.LastIndexByte(v, '.')
	switch {
	case lastComma >= 0 && lastDot > lastComma:
		// 1,234.56
		v = strings.ReplaceAll(v, ",", "")
	case lastComma >= 0:
		v = strings.ReplaceAll(v, ".", "")
		v = strings.Replace(v, ",", ".", 1)
	case thousandsOnly.MatchString(v):
		v = strings.ReplaceAll(v, ".", "")
	}

	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseNumber is ParseDecimal as a float64; failures yield 0.0 and never panic
func ParseNumber(value string) (float64, bool) {
	d, ok := ParseDecimal(value)
	return d.InexactFloat64(), ok
}

// ParseQuantity parses a number and truncates it toward zero.
// Values outside the int64 range are rejected like unparsable cells.
func ParseQuantity(value string) (entities.Quantity, bool) {
	d, ok := ParseDecimal(value)
	if !ok {
		return 0, false
	}
	d = d.Truncate(0)
	if d.GreaterThan(maxQuantity) || d.LessThan(minQuantity) {
		return 0, false
	}
	return entities.Quantity(d.IntPart()), true
}
