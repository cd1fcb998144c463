package orchestration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/vsinha/replenish/pkg/application/dto"
	"github.com/vsinha/replenish/pkg/application/services/allocation"
	"github.com/vsinha/replenish/pkg/application/services/demand"
	"github.com/vsinha/replenish/pkg/application/services/explosion"
	"github.com/vsinha/replenish/pkg/application/services/ingestion"
	"github.com/vsinha/replenish/pkg/domain/entities"
	"github.com/vsinha/replenish/pkg/domain/repositories"
	"github.com/vsinha/replenish/pkg/infrastructure/events"
)

// Options configures a planning orchestrator
type Options struct {
	Demand          demand.Config
	DefaultEntity   string
	UnknownSupplier string
	Mode            dto.PlanMode
	// EventStore receives the run's events; nil disables event recording
	EventStore events.EventStore
}

// PlanningOrchestrator runs the per-entity pipelines in parallel and then
// consolidates and allocates their suggestions
type PlanningOrchestrator struct {
	catalog    repositories.CatalogRepository
	mapper     *ingestion.ColumnMapper
	exploder   *explosion.KitExploder
	engine     *demand.Engine
	aggregator *allocation.Aggregator
	allocator  *allocation.Allocator
	eventStore events.EventStore
	demandCfg  demand.Config
	mode       dto.PlanMode
}

// NewPlanningOrchestrator creates a new planning orchestrator over a loaded catalog
func NewPlanningOrchestrator(catalog repositories.CatalogRepository, opts Options) (*PlanningOrchestrator, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog repository is required")
	}
	engine, err := demand.NewEngine(opts.Demand)
	if err != nil {
		return nil, err
	}
	mode, err := dto.ParsePlanMode(string(opts.Mode))
	if err != nil {
		return nil, err
	}

	return &PlanningOrchestrator{
		catalog:    catalog,
		mapper:     ingestion.NewColumnMapper(),
		exploder:   explosion.NewKitExploder(catalog, opts.UnknownSupplier),
		engine:     engine,
		aggregator: allocation.NewAggregator(opts.UnknownSupplier),
		allocator:  allocation.NewAllocator(opts.DefaultEntity),
		eventStore: opts.EventStore,
		demandCfg:  opts.Demand,
		mode:       mode,
	}, nil
}

// entityOutcome is what one entity pipeline hands to the consolidation step
type entityOutcome struct {
	plan          dto.EntityPlan
	warnings      []entities.Warning
	costWarnings  []entities.Warning
	pendingEvents []events.Event
}

// RunPlanning executes a complete planning run over the given entity inputs.
// Rejected tables are reported, never fatal; entity order is preserved.
func (po *PlanningOrchestrator) RunPlanning(ctx context.Context, inputs []entities.EntityInput) (*dto.PlanResult, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no entity inputs provided for planning")
	}
	seen := make(map[string]bool, len(inputs))
	for _, input := range inputs {
		if input.Entity == "" {
			return nil, fmt.Errorf("entity name cannot be empty")
		}
		if seen[input.Entity] {
			return nil, fmt.Errorf("duplicate entity %q", input.Entity)
		}
		seen[input.Entity] = true
	}

	runID := uuid.New()
	stream := runID.String()
	started := time.Now()
	log.Info().Str("run_id", stream).Int("entities", len(inputs)).Str("mode", string(po.mode)).Msg("planning run started")

	// Step 1: per-entity pipelines, each writing only its own slot
	outcomes := make([]entityOutcome, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	for i := range inputs {
		g.Go(func() error {
			outcome, err := po.runEntity(gctx, stream, inputs[i])
			if err != nil {
				return fmt.Errorf("entity %s: %w", inputs[i].Entity, err)
			}
			outcomes[i] = *outcome
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &dto.PlanResult{
		RunID:        runID,
		Mode:         po.mode,
		PlanningDate: started,
		CoverageDays: po.demandCfg.CoverageDays,
		LookbackDays: po.demandCfg.LookbackDays,
		Entities:     make([]dto.EntityPlan, len(outcomes)),
	}

	for i := range outcomes {
		result.Entities[i] = outcomes[i].plan
		result.Warnings = append(result.Warnings, outcomes[i].warnings...)
		if po.mode == dto.ModeStandalone {
			result.Warnings = append(result.Warnings, outcomes[i].costWarnings...)
		}
		po.publish(stream, outcomes[i].pendingEvents...)
	}

	// Step 2: consolidate across entities and allocate back
	jointWarnings, err := po.allocateJoint(stream, result)
	if err != nil {
		return nil, err
	}
	if po.mode == dto.ModeJoint {
		result.Warnings = append(result.Warnings, jointWarnings...)
	}

	// Step 3: supplier baskets for the selected mode
	for i := range result.Entities {
		plan := &result.Entities[i]
		plan.Baskets = entities.GroupBySupplier(plan.Suggestions(po.mode))
		po.publish(stream, suggestionEvent(stream, plan, po.mode))
	}

	units, value := result.Totals()
	log.Info().
		Str("run_id", stream).
		Int64("units", int64(units)).
		Str("value", value.StringFixed(2)).
		Int("warnings", len(result.Warnings)).
		Dur("elapsed", time.Since(started)).
		Msg("planning run completed")

	return result, nil
}

// runEntity maps, explodes and sizes one entity on its own
func (po *PlanningOrchestrator) runEntity(ctx context.Context, stream string, input entities.EntityInput) (*entityOutcome, error) {
	out := &entityOutcome{plan: dto.EntityPlan{Entity: input.Entity}}
	tables := make([]*entities.CanonicalTable, 0, len(input.Tables))

	for _, raw := range input.Tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		table, warnings, err := po.mapper.MapTable(raw)
		if err != nil {
			var schemaErr *entities.SchemaError
			if !errors.As(err, &schemaErr) {
				return nil, fmt.Errorf("failed to map table %s: %w", raw.Name, err)
			}
			out.plan.Tables = append(out.plan.Tables, dto.TableReport{
				Entity: input.Entity,
				Table:  raw.Name,
				Kind:   schemaErr.Kind.String(),
				Error:  schemaErr.Error(),
			})
			out.pendingEvents = append(out.pendingEvents, events.NewEvent(events.TableRejectedEvent, stream, events.TableRejected{
				Entity: input.Entity,
				Table:  raw.Name,
				Reason: schemaErr.Error(),
			}))
			log.Warn().Str("entity", input.Entity).Str("table", raw.Name).Err(err).Msg("table rejected")
			continue
		}

		for j := range warnings {
			warnings[j].Entity = input.Entity
		}
		out.warnings = append(out.warnings, warnings...)
		tables = append(tables, table)

		out.plan.Tables = append(out.plan.Tables, dto.TableReport{
			Entity:   input.Entity,
			Table:    raw.Name,
			Kind:     table.Kind.String(),
			Records:  table.Len(),
			Accepted: true,
		})
		out.pendingEvents = append(out.pendingEvents, events.NewEvent(events.TableIngestedEvent, stream, events.TableIngested{
			Entity:   input.Entity,
			Table:    raw.Name,
			Kind:     table.Kind.String(),
			Records:  table.Len(),
			Warnings: len(warnings),
		}))
		log.Debug().Str("entity", input.Entity).Str("table", raw.Name).Str("kind", table.Kind.String()).Int("records", table.Len()).Msg("table ingested")
	}

	records, unresolved, err := po.exploder.Explode(ctx, input.Entity, tables)
	if err != nil {
		return nil, err
	}
	out.plan.Records = records
	out.warnings = append(out.warnings, unresolved...)
	for _, w := range unresolved {
		out.pendingEvents = append(out.pendingEvents, events.NewEvent(events.SKUUnresolvedEvent, stream, events.SKUUnresolved{
			Entity: input.Entity,
			SKU:    w.SKU,
		}))
	}

	suggestions, costWarnings, err := po.engine.Suggest(input.Entity, records)
	if err != nil {
		return nil, err
	}
	out.plan.Standalone = demand.Positive(suggestions)
	out.costWarnings = costWarnings

	log.Info().
		Str("entity", input.Entity).
		Int("tables", len(tables)).
		Int("components", len(records)).
		Int("unresolved", len(unresolved)).
		Msg("entity pipeline completed")
	return out, nil
}

// allocateJoint sizes each consolidated SKU once and splits it across entities
func (po *PlanningOrchestrator) allocateJoint(stream string, result *dto.PlanResult) ([]entities.Warning, error) {
	inputs := make([]allocation.EntityRecords, len(result.Entities))
	index := make(map[string]int, len(result.Entities))
	for i, plan := range result.Entities {
		inputs[i] = allocation.EntityRecords{Entity: plan.Entity, Records: plan.Records}
		index[plan.Entity] = i
	}

	consolidated := po.aggregator.Aggregate(inputs)
	records := make([]entities.EffectiveComponentRecord, len(consolidated))
	for i := range consolidated {
		records[i] = consolidated[i].EffectiveComponentRecord
	}

	suggestions, warnings, err := po.engine.Suggest("", records)
	if err != nil {
		return nil, err
	}
	bySKU := make(map[entities.SKU]entities.PurchaseSuggestion, len(suggestions))
	for _, s := range suggestions {
		bySKU[s.SKU] = s
	}

	var allocatedUnits entities.Quantity
	for _, rec := range consolidated {
		suggestion, ok := bySKU[rec.SKU]
		if !ok || suggestion.SuggestedQty == 0 {
			continue
		}

		shares := po.allocator.Allocate(rec, suggestion)
		result.Consolidated = append(result.Consolidated, dto.ConsolidatedSuggestion{
			Record:     rec,
			Suggestion: suggestion,
			Shares:     shares,
		})

		for _, share := range shares {
			if share.Qty == 0 {
				continue
			}
			plan := &result.Entities[index[share.Entity]]
			plan.Joint = append(plan.Joint, suggestion.WithQuantity(share.Qty))
			allocatedUnits += share.Qty
		}
	}

	po.publish(stream, events.NewEvent(events.AllocationCompletedEvent, stream, events.AllocationCompleted{
		SKUs:       len(result.Consolidated),
		TotalUnits: int64(allocatedUnits),
		Entities:   len(result.Entities),
	}))
	return warnings, nil
}

func suggestionEvent(stream string, plan *dto.EntityPlan, mode dto.PlanMode) events.Event {
	lines := plan.Suggestions(mode)
	var units entities.Quantity
	value := decimal.Zero
	for _, s := range lines {
		units += s.SuggestedQty
		value = value.Add(s.TotalValue)
	}
	return events.NewEvent(events.SuggestionComputedEvent, stream, events.SuggestionComputed{
		Entity:     plan.Entity,
		Mode:       string(mode),
		Lines:      len(lines),
		TotalUnits: int64(units),
		TotalValue: value.StringFixed(2),
	})
}

func (po *PlanningOrchestrator) publish(stream string, evts ...events.Event) {
	if po.eventStore == nil {
		return
	}
	for _, evt := range evts {
		if err := po.eventStore.AppendEvent(stream, evt); err != nil {
			log.Error().Err(err).Str("event", evt.Type()).Msg("failed to record event")
		}
	}
}
