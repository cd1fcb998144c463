package main

import (
	"context"
	"fmt"
	"os"

	"github.com/vsinha/replenish/pkg/application/dto"
	"github.com/vsinha/replenish/pkg/application/services/demand"
	"github.com/vsinha/replenish/pkg/application/services/orchestration"
	"github.com/vsinha/replenish/pkg/infrastructure/events"
	testinghelpers "github.com/vsinha/replenish/pkg/infrastructure/testing"
	"github.com/vsinha/replenish/pkg/interfaces/cli/output"
)

func main() {
	ctx := context.Background()

	// Catalog and store exports built in memory
	catalog := testinghelpers.BuildPartyStoreCatalog()
	inputs := testinghelpers.BuildPartyStoreScenario()

	store := events.NewInMemoryEventStore()
	orchestrator, err := orchestration.NewPlanningOrchestrator(catalog, orchestration.Options{
		Demand:     demand.DefaultConfig(),
		Mode:       dto.ModeJoint,
		EventStore: store,
	})
	if err != nil {
		fmt.Printf("❌ Setup failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("🛒 Planning party store replenishment...")
	fmt.Println()

	result, err := orchestrator.RunPlanning(ctx, inputs)
	if err != nil {
		fmt.Printf("❌ Planning failed: %v\n", err)
		os.Exit(1)
	}

	if err := output.Generate(result, output.Config{Format: "text", Verbose: true}); err != nil {
		fmt.Printf("❌ Output failed: %v\n", err)
		os.Exit(1)
	}

	// Show how the joint purchase was split
	fmt.Println("🔀 Allocation:")
	for _, c := range result.Consolidated {
		fmt.Printf("  %-12s %4d ->", c.Suggestion.SKU, c.Suggestion.SuggestedQty)
		for _, share := range c.Shares {
			fmt.Printf(" %s:%d", share.Entity, share.Qty)
		}
		fmt.Println()
	}
	fmt.Println()

	recorded, _ := store.ReadEvents(result.RunID.String(), 0)
	fmt.Printf("📜 %d events recorded for run %s\n", len(recorded), result.RunID)
}
