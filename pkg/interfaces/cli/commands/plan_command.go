package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vsinha/replenish/pkg/application/dto"
	"github.com/vsinha/replenish/pkg/application/services/demand"
	"github.com/vsinha/replenish/pkg/application/services/orchestration"
	"github.com/vsinha/replenish/pkg/infrastructure/events"
	"github.com/vsinha/replenish/pkg/infrastructure/repositories/spreadsheet"
	"github.com/vsinha/replenish/pkg/interfaces/cli/output"
)

// Config holds configuration for the plan command
type Config struct {
	ScenarioDir     string
	CatalogFile     string
	OutputDir       string
	Format          string
	Mode            string
	Demand          demand.Config
	DefaultEntity   string
	UnknownSupplier string
	Verbose         bool
	Help            bool
	// Out receives report output; os.Stdout when nil
	Out io.Writer
}

// PlanCommand loads a catalog and a scenario and prints a replenishment plan
type PlanCommand struct {
	config Config
}

// NewPlanCommand creates a new plan command with the given configuration
func NewPlanCommand(config Config) *PlanCommand {
	if config.Out == nil {
		config.Out = os.Stdout
	}
	return &PlanCommand{
		config: config,
	}
}

// Execute runs the plan command
func (c *PlanCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	if err := c.validateInputs(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	loader := spreadsheet.NewLoader()

	log.Info().Str("catalog", c.config.CatalogFile).Msg("loading catalog")
	catalog, report, err := loader.LoadCatalog(c.config.CatalogFile)
	if err != nil {
		return fmt.Errorf("error loading catalog: %w", err)
	}
	log.Info().
		Int("entries", report.Entries).
		Int("kits", report.Kits).
		Int("kit_lines", report.KitLines).
		Int("skipped_entries", report.SkippedEntries).
		Int("dropped_kit_rows", report.DroppedKitRows).
		Int("duplicate_kit_lines", report.DuplicateKitLines).
		Int("nested_kits", len(report.NestedKits)).
		Msg("catalog loaded")

	log.Info().Str("scenario", c.config.ScenarioDir).Msg("loading scenario")
	inputs, err := loader.LoadScenario(c.config.ScenarioDir)
	if err != nil {
		return fmt.Errorf("error loading scenario: %w", err)
	}
	if len(inputs) == 0 {
		return fmt.Errorf("scenario %s has no entity directories with tables", c.config.ScenarioDir)
	}
	for _, input := range inputs {
		log.Debug().Str("entity", input.Entity).Int("tables", len(input.Tables)).Msg("entity loaded")
	}

	eventStore := events.NewInMemoryEventStore()
	if c.config.Verbose {
		err := eventStore.Subscribe(events.AllPlanEvents, &events.HandlerFunc{
			Fn: func(e events.Event) error {
				log.Debug().Str("event", e.Type()).Interface("data", e.Data()).Msg("plan event")
				return nil
			},
		})
		if err != nil {
			return fmt.Errorf("failed to subscribe to plan events: %w", err)
		}
	}

	orchestrator, err := orchestration.NewPlanningOrchestrator(catalog, orchestration.Options{
		Demand:          c.config.Demand,
		DefaultEntity:   c.config.DefaultEntity,
		UnknownSupplier: c.config.UnknownSupplier,
		Mode:            dto.PlanMode(c.config.Mode),
		EventStore:      eventStore,
	})
	if err != nil {
		return fmt.Errorf("failed to configure planning: %w", err)
	}

	startTime := time.Now()
	result, err := orchestrator.RunPlanning(ctx, inputs)
	if err != nil {
		return fmt.Errorf("error running planning: %w", err)
	}
	elapsed := time.Since(startTime)

	outputConfig := output.Config{
		Format:      c.config.Format,
		OutputDir:   c.config.OutputDir,
		Verbose:     c.config.Verbose,
		ElapsedTime: elapsed,
		Out:         c.config.Out,
	}
	if err := output.Generate(result, outputConfig); err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}

	log.Info().Msg(result.GetSummary())
	return nil
}

// validateInputs validates the command configuration
func (c *PlanCommand) validateInputs() error {
	if c.config.ScenarioDir == "" || c.config.CatalogFile == "" {
		return fmt.Errorf("must specify both -scenario directory and -catalog workbook")
	}
	if _, err := dto.ParsePlanMode(c.config.Mode); err != nil {
		return err
	}
	if err := c.config.Demand.Validate(); err != nil {
		return err
	}

	for name, path := range map[string]string{"scenario": c.config.ScenarioDir, "catalog": c.config.CatalogFile} {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("%s not found: %s", name, path)
		}
	}
	return nil
}

// showHelp displays the help message
func (c *PlanCommand) showHelp() {
	fmt.Fprintf(c.config.Out, `Replenish - purchase suggestions from sales velocity and multi-location stock

USAGE:
    replenish -scenario <directory> -catalog <workbook.xlsx> [options]

OPTIONS:
    -scenario <dir>         Directory with one sub-directory of tables per entity
    -catalog <file>         Catalog workbook with catalogo_simples and kits_reais sheets
    -config <file>          Policy file (yaml, json, toml or env); REPLENISH_* env vars also apply
    -output <dir>           Output directory for results (optional)
    -format <fmt>           Output format: text, json, csv, xlsx (default: text)
    -mode <mode>            joint (aggregate and allocate) or standalone (default: joint)
    -coverage-days <n>      Days of sales the purchase should cover (default: 30)
    -lookback-days <n>      Days of history the sales columns represent (default: 60)
    -default-entity <name>  Entity receiving purchases of SKUs nobody sold
    -verbose                Enable verbose output
    -help                   Show this help message

SCENARIO DIRECTORY STRUCTURE:
    scenario_name/
    ├── loja_centro/
    │   ├── full.csv        # marketplace fulfillment: sku, vendas 60d, estoque full, em transito
    │   ├── fisico.xlsx     # warehouse: sku, estoque, preco
    │   └── vendas.csv      # order lines: sku, qtde
    └── loja_norte/
        └── ...

Tables are classified by their columns, not their file names. CSV files may
use ';', ',' or tab separators. Every sheet of an xlsx file is a table.

CATALOG WORKBOOK:

catalogo_simples:
    component_sku,fornecedor,status_reposicao
    COPO-300,Plasticos SA,sim

kits_reais:
    kit_sku,component_sku,qty
    KIT-FESTA,COPO-300,2

EXAMPLES:
    # Joint plan for every store in the scenario
    replenish -scenario data/outubro -catalog data/catalogo.xlsx

    # Each store on its own, 45 days of cover
    replenish -scenario data/outubro -catalog data/catalogo.xlsx -mode standalone -coverage-days 45

    # Spreadsheet with one sheet per store
    replenish -scenario data/outubro -catalog data/catalogo.xlsx -format xlsx -output results/
`)
}
