// Package persistence defines the external storage contract for simulation
// runs. The core never calls a store directly (spec.md §5) — it returns a
// SimulationStepResult and the caller decides what and when to persist.
package persistence

import (
	"context"

	"github.com/talgya/cooperationsim/internal/network"
	"github.com/talgya/cooperationsim/internal/orchestrator"
)

// RunStatus is a caller-owned lifecycle label. The core never mutates it —
// callers distinguish running/paused/completed runs themselves (spec.md §7).
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusPaused    RunStatus = "paused"
	RunStatusCompleted RunStatus = "completed"
)

// RunRecord is the row returned by LoadRun.
type RunRecord struct {
	RunID      int64
	Scenario   string
	Status     RunStatus
	CurrentDay int
	StateJSON  string
}

// Store is the opaque persistence contract named in spec.md §6. StateJSON
// arguments are always the canonical JSON rendering of an
// orchestrator.SimulationState.
type Store interface {
	// InsertRun creates a new run row and returns its id.
	InsertRun(ctx context.Context, scenario string, seed uint32, stateJSON string) (int64, error)

	// LoadRun fetches a run's current scenario, status, day, and state.
	LoadRun(ctx context.Context, runID int64) (RunRecord, error)

	// PatchRunState overwrites a run's persisted state and current day.
	PatchRunState(ctx context.Context, runID int64, stateJSON string, day int) error

	// AppendDailyMetrics records one day's aggregate scalars.
	AppendDailyMetrics(ctx context.Context, runID int64, day int, metrics orchestrator.DailyMetrics) error

	// AppendEvents appends one day's structured log entries.
	AppendEvents(ctx context.Context, runID int64, entries []orchestrator.SimulationLogEntry) error

	// AppendNetworkSnapshot records one day's network statistics and a
	// canonical JSON rendering of its edge set.
	AppendNetworkSnapshot(ctx context.Context, runID int64, day int, stats network.Stats, edgesJSON string) error

	// Close releases any underlying connection.
	Close() error
}
