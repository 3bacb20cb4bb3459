package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/cooperationsim/internal/orchestrator"
	"github.com/talgya/cooperationsim/internal/store/sqlite"
)

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay RUN_ID",
		Short: "Print a persisted run's current state summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid run id %q: %w", args[0], err)
			}
			return replayRun(cmd.Context(), runID)
		},
	}
	return cmd
}

func replayRun(ctx context.Context, runID int64) error {
	store, err := sqlite.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	record, err := store.LoadRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("load run %d: %w", runID, err)
	}

	var state orchestrator.SimulationState
	if err := json.Unmarshal([]byte(record.StateJSON), &state); err != nil {
		return fmt.Errorf("unmarshal state: %w", err)
	}

	fmt.Printf("Run %d: scenario=%q status=%s day=%s\n",
		record.RunID, record.Scenario, record.Status, humanize.Comma(int64(record.CurrentDay)))
	fmt.Printf("  population: %d agents, %d network edges\n", len(state.Agents), len(state.Network.Edges))
	for _, a := range state.Agents {
		fmt.Printf("  agent %d: camp=%s energy=%.2f reputation=%.2f mood=%.2f\n",
			a.ID, a.CampID, a.Energy, a.Reputation, a.Emotion.Mood)
	}
	return nil
}
