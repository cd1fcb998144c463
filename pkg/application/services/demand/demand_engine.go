package demand

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vsinha/replenish/pkg/domain/entities"
)

// Default planning horizon
const (
	DefaultCoverageDays = 30
	DefaultLookbackDays = 60
)

// Config holds the demand policy of a planning run
type Config struct {
	CoverageDays int
	LookbackDays int
}

// DefaultConfig returns a 30-day coverage over a 60-day sales window
func DefaultConfig() Config {
	return Config{
		CoverageDays: DefaultCoverageDays,
		LookbackDays: DefaultLookbackDays,
	}
}

// Validate checks that both horizons are positive
func (c Config) Validate() error {
	if c.CoverageDays <= 0 {
		return fmt.Errorf("coverage days must be positive, got %d", c.CoverageDays)
	}
	if c.LookbackDays <= 0 {
		return fmt.Errorf("lookback days must be positive, got %d", c.LookbackDays)
	}
	return nil
}

// Engine computes purchase quantities from sales velocity and available stock
type Engine struct {
	coverage decimal.Decimal
	lookback decimal.Decimal
}

// NewEngine creates a demand engine for the given policy
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid demand config: %w", err)
	}
	return &Engine{
		coverage: decimal.NewFromInt(int64(cfg.CoverageDays)),
		lookback: decimal.NewFromInt(int64(cfg.LookbackDays)),
	}, nil
}

// Need returns the unrounded coverage shortfall of a record, which may be negative.
// Sales are scaled by coverage before dividing so that exact halves stay exact.
func (e *Engine) Need(rec entities.EffectiveComponentRecord) decimal.Decimal {
	sales := decimal.NewFromInt(int64(rec.SalesQty60d))
	target := sales.Mul(e.coverage).Div(e.lookback)
	return target.Sub(decimal.NewFromInt(int64(rec.AvailableStock())))
}

// SuggestedQuantity rounds the shortfall half-up once and floors it at zero
func (e *Engine) SuggestedQuantity(rec entities.EffectiveComponentRecord) entities.Quantity {
	need := e.Need(rec).Round(0)
	if need.Sign() <= 0 {
		return 0
	}
	return entities.Quantity(need.IntPart())
}

// Suggest builds one suggestion per eligible record, zero quantities included.
// Ineligible records are skipped; a positive suggestion without unit cost
// carries a MissingUnitCost warning and a zero total value.
func (e *Engine) Suggest(entity string, records []entities.EffectiveComponentRecord) ([]entities.PurchaseSuggestion, []entities.Warning, error) {
	suggestions := make([]entities.PurchaseSuggestion, 0, len(records))
	var warnings []entities.Warning

	for _, rec := range records {
		if !rec.Eligible {
			continue
		}

		qty := e.SuggestedQuantity(rec)
		cost := rec.UnitCost
		if cost.IsNegative() {
			cost = decimal.Zero
		}

		if qty > 0 && cost.IsZero() {
			warnings = append(warnings, entities.Warning{
				Kind:    entities.MissingUnitCostWarning,
				Entity:  entity,
				SKU:     rec.SKU,
				Message: fmt.Sprintf("no unit cost for %d suggested units, total value is 0", qty),
			})
		}

		suggestion, err := entities.NewPurchaseSuggestion(rec.SKU, rec.Supplier, qty, cost)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build suggestion for %s: %w", rec.SKU, err)
		}
		suggestions = append(suggestions, *suggestion)
	}

	return suggestions, warnings, nil
}

// Positive drops zero-quantity suggestions, preserving order
func Positive(suggestions []entities.PurchaseSuggestion) []entities.PurchaseSuggestion {
	out := make([]entities.PurchaseSuggestion, 0, len(suggestions))
	for _, s := range suggestions {
		if s.SuggestedQty > 0 {
			out = append(out, s)
		}
	}
	return out
}
