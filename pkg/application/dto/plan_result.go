package dto

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vsinha/replenish/pkg/domain/entities"
)

// PlanMode selects which suggestion set drives supplier baskets
type PlanMode string

const (
	// ModeJoint aggregates entities, sizes the purchase once and allocates it back
	ModeJoint PlanMode = "joint"
	// ModeStandalone sizes every entity's purchase on its own records
	ModeStandalone PlanMode = "standalone"
)

// ParsePlanMode validates a mode name
func ParsePlanMode(s string) (PlanMode, error) {
	switch PlanMode(s) {
	case ModeJoint, ModeStandalone:
		return PlanMode(s), nil
	case "":
		return ModeJoint, nil
	default:
		return "", fmt.Errorf("unknown plan mode %q (expected joint or standalone)", s)
	}
}

// TableReport records how one uploaded table was classified
type TableReport struct {
	Entity   string `json:"entity"`
	Table    string `json:"table"`
	Kind     string `json:"kind"`
	Records  int    `json:"records"`
	Accepted bool   `json:"accepted"`
	Error    string `json:"error,omitempty"`
}

// EntityPlan is the outcome of one entity's pipeline and its allocated share
type EntityPlan struct {
	Entity     string                              `json:"entity"`
	Tables     []TableReport                       `json:"tables"`
	Records    []entities.EffectiveComponentRecord `json:"-"`
	Standalone []entities.PurchaseSuggestion       `json:"standalone"`
	Joint      []entities.PurchaseSuggestion       `json:"joint"`
	Baskets    []entities.SupplierBasket           `json:"baskets"`
}

// Suggestions returns the suggestion list of the given mode
func (p *EntityPlan) Suggestions(mode PlanMode) []entities.PurchaseSuggestion {
	if mode == ModeStandalone {
		return p.Standalone
	}
	return p.Joint
}

// ConsolidatedSuggestion is a cross-entity purchase and its split
type ConsolidatedSuggestion struct {
	Record     entities.ConsolidatedRecord `json:"-"`
	Suggestion entities.PurchaseSuggestion `json:"suggestion"`
	Shares     []entities.AllocationShare  `json:"shares"`
}

// PlanResult contains the complete output of a planning run
type PlanResult struct {
	RunID        uuid.UUID                `json:"run_id"`
	Mode         PlanMode                 `json:"mode"`
	PlanningDate time.Time                `json:"planning_date"`
	CoverageDays int                      `json:"coverage_days"`
	LookbackDays int                      `json:"lookback_days"`
	Entities     []EntityPlan             `json:"entities"`
	Consolidated []ConsolidatedSuggestion `json:"consolidated"`
	Warnings     []entities.Warning       `json:"warnings"`
}

// Entity returns the plan of one entity
func (r *PlanResult) Entity(name string) (*EntityPlan, bool) {
	for i := range r.Entities {
		if r.Entities[i].Entity == name {
			return &r.Entities[i], true
		}
	}
	return nil, false
}

// Totals returns units and value over all entities for the run's mode
func (r *PlanResult) Totals() (entities.Quantity, decimal.Decimal) {
	var units entities.Quantity
	value := decimal.Zero
	for i := range r.Entities {
		for _, s := range r.Entities[i].Suggestions(r.Mode) {
			units += s.SuggestedQty
			value = value.Add(s.TotalValue)
		}
	}
	return units, value
}

// RejectedTables returns every table that failed classification or mapping
func (r *PlanResult) RejectedTables() []TableReport {
	var rejected []TableReport
	for _, plan := range r.Entities {
		for _, t := range plan.Tables {
			if !t.Accepted {
				rejected = append(rejected, t)
			}
		}
	}
	return rejected
}

// GetSummary returns a one-paragraph description of the run
func (r *PlanResult) GetSummary() string {
	units, value := r.Totals()
	counts := entities.CountWarnings(r.Warnings)

	summary := fmt.Sprintf("Replenishment plan %s (%s, %d days cover over %d days of sales):\n",
		r.RunID, r.Mode, r.CoverageDays, r.LookbackDays)
	summary += fmt.Sprintf("  %d entities, %d components to buy, %d units, total %s\n",
		len(r.Entities), r.componentCount(), units, value.StringFixed(2))
	summary += fmt.Sprintf("  Rejected tables: %d; warnings: %d parse, %d empty sku, %d unresolved, %d missing cost",
		len(r.RejectedTables()),
		counts[entities.ParseWarning],
		counts[entities.EmptySKUWarning],
		counts[entities.UnresolvedSKUWarning],
		counts[entities.MissingUnitCostWarning])
	return summary
}

func (r *PlanResult) componentCount() int {
	seen := make(map[entities.SKU]bool)
	for i := range r.Entities {
		for _, s := range r.Entities[i].Suggestions(r.Mode) {
			seen[s.SKU] = true
		}
	}
	return len(seen)
}
