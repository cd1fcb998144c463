package events

import (
	"github.com/vsinha/replenish/pkg/domain/entities"
)

const (
	TableIngestedEvent       = "table.ingested"
	TableRejectedEvent       = "table.rejected"
	SKUUnresolvedEvent       = "sku.unresolved"
	SuggestionComputedEvent  = "suggestion.computed"
	AllocationCompletedEvent = "allocation.completed"
)

// AllPlanEvents lists every event type a planning run emits
var AllPlanEvents = []string{
	TableIngestedEvent,
	TableRejectedEvent,
	SKUUnresolvedEvent,
	SuggestionComputedEvent,
	AllocationCompletedEvent,
}

type TableIngested struct {
	Entity   string `json:"entity"`
	Table    string `json:"table"`
	Kind     string `json:"kind"`
	Records  int    `json:"records"`
	Warnings int    `json:"warnings"`
}

type TableRejected struct {
	Entity string `json:"entity"`
	Table  string `json:"table"`
	Reason string `json:"reason"`
}

type SKUUnresolved struct {
	Entity string       `json:"entity"`
	SKU    entities.SKU `json:"sku"`
}

type SuggestionComputed struct {
	Entity     string `json:"entity"`
	Mode       string `json:"mode"`
	Lines      int    `json:"lines"`
	TotalUnits int64  `json:"total_units"`
	TotalValue string `json:"total_value"`
}

type AllocationCompleted struct {
	SKUs       int   `json:"skus"`
	TotalUnits int64 `json:"total_units"`
	Entities   int   `json:"entities"`
}
