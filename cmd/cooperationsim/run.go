package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/cooperationsim/internal/llmplan"
	"github.com/talgya/cooperationsim/internal/metricsexport"
	"github.com/talgya/cooperationsim/internal/orchestrator"
	"github.com/talgya/cooperationsim/internal/registry"
	"github.com/talgya/cooperationsim/internal/store/sqlite"
)

func newRunCmd() *cobra.Command {
	var seed uint32
	var days int

	cmd := &cobra.Command{
		Use:   "run SCENARIO",
		Short: "Initialize a scenario and step it forward a number of days",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(cmd.Context(), args[0], seed, days)
		},
	}

	cmd.Flags().Uint32Var(&seed, "seed", 1, "RNG seed")
	cmd.Flags().IntVar(&days, "days", 30, "number of days to simulate")
	return cmd
}

func runScenario(ctx context.Context, scenarioName string, seed uint32, days int) error {
	reg, err := registry.LoadDir(flagScenarioDir)
	if err != nil {
		return fmt.Errorf("load scenarios: %w", err)
	}
	cfg, ok := reg.Get(scenarioName)
	if !ok {
		return fmt.Errorf("unknown scenario %q (known: %v)", scenarioName, reg.Names())
	}

	if dir := filepath.Dir(flagDBPath); dir != "." {
		os.MkdirAll(dir, 0o755)
	}
	store, err := sqlite.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	core := llmplan.New(
		llmplan.NewOpenAIResponsesAdapter(),
		llmplan.NewBedrockConverseAdapter(),
		llmplan.NewOllamaAdapter(),
	)
	sim := orchestrator.Initialize(cfg, seed, core)

	initialState, err := json.Marshal(sim.Serialize())
	if err != nil {
		return fmt.Errorf("marshal initial state: %w", err)
	}
	runID, err := store.InsertRun(ctx, cfg.Name, seed, string(initialState))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	slog.Info("run started", "runId", runID, "scenario", cfg.Name, "seed", seed, "days", days)

	for day := 0; day < days; day++ {
		result := sim.StepDay(ctx)

		stateJSON, err := json.Marshal(result.NewState)
		if err != nil {
			return fmt.Errorf("marshal day %d state: %w", day, err)
		}
		if err := store.PatchRunState(ctx, runID, string(stateJSON), day); err != nil {
			return fmt.Errorf("patch run state day %d: %w", day, err)
		}
		if err := store.AppendDailyMetrics(ctx, runID, day, result.Metrics); err != nil {
			return fmt.Errorf("append daily metrics day %d: %w", day, err)
		}
		if err := store.AppendEvents(ctx, runID, result.Logs); err != nil {
			return fmt.Errorf("append events day %d: %w", day, err)
		}
		edgesJSON, err := json.Marshal(result.NewState.Network.Edges)
		if err != nil {
			return fmt.Errorf("marshal edges day %d: %w", day, err)
		}
		if err := store.AppendNetworkSnapshot(ctx, runID, day, result.NetworkStats, string(edgesJSON)); err != nil {
			return fmt.Errorf("append network snapshot day %d: %w", day, err)
		}

		metricsexport.Observe(cfg.Name, result.Metrics)
		slog.Debug("day stepped", "day", day, "cooperationRate", result.Metrics.CooperationRate)
	}

	fmt.Printf("Simulated %s for scenario %q (run id %d).\n",
		humanize.Plural(days, "day", "days"), cfg.Name, runID)
	return nil
}
