package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vsinha/replenish/pkg/domain/entities"
	"github.com/vsinha/replenish/pkg/infrastructure/config"
	"github.com/vsinha/replenish/pkg/interfaces/cli/commands"
)

func main() {
	// .env is optional; variables already set in the environment win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error: failed to read .env: %v\n", err)
		os.Exit(1)
	}

	// Command line flags
	var (
		scenarioDir = flag.String(
			"scenario",
			"",
			"Path to scenario directory with one sub-directory per entity",
		)
		catalogFile   = flag.String("catalog", "", "Path to catalog workbook (xlsx)")
		configFile    = flag.String("config", "", "Path to policy config file (optional)")
		outputDir     = flag.String("output", "", "Output directory for results (optional)")
		format        = flag.String("format", "text", "Output format: text, json, csv, xlsx")
		mode          = flag.String("mode", "joint", "Planning mode: joint, standalone")
		coverageDays  = flag.Int("coverage-days", 0, "Days of sales to cover (overrides config)")
		lookbackDays  = flag.Int("lookback-days", 0, "Days of sales history (overrides config)")
		defaultEntity = flag.String("default-entity", "", "Entity receiving unsold SKUs (overrides config)")
		verbose       = flag.Bool("verbose", false, "Enable verbose output")
		help          = flag.Bool("help", false, "Show help message")
	)

	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level := cfg.Level()
	if *verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Flags override file and environment values
	if *coverageDays > 0 {
		cfg.CoverageDays = *coverageDays
	}
	if *lookbackDays > 0 {
		cfg.LookbackDays = *lookbackDays
	}
	if *defaultEntity != "" {
		cfg.DefaultEntity = *defaultEntity
	}
	if cfg.UnknownSupplier == "" {
		cfg.UnknownSupplier = entities.UnknownSupplier
	}

	cmdConfig := commands.Config{
		ScenarioDir:     *scenarioDir,
		CatalogFile:     *catalogFile,
		OutputDir:       *outputDir,
		Format:          *format,
		Mode:            *mode,
		Demand:          cfg.Demand(),
		DefaultEntity:   cfg.DefaultEntity,
		UnknownSupplier: cfg.UnknownSupplier,
		Verbose:         *verbose,
		Help:            *help,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := commands.NewPlanCommand(cmdConfig)
	if err := cmd.Execute(ctx); err != nil {
		log.Error().Err(err).Msg("replenish failed")
		stop()
		os.Exit(1)
	}
}
