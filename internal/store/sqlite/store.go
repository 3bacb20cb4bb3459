// Package sqlite is a reference SQLite-backed implementation of
// persistence.Store, built on sqlx and modernc.org/sqlite with
// CREATE TABLE IF NOT EXISTS migrations run on open.
package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/cooperationsim/internal/network"
	"github.com/talgya/cooperationsim/internal/orchestrator"
	"github.com/talgya/cooperationsim/internal/persistence"
)

// Store wraps a SQLite connection implementing persistence.Store.
type Store struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at path and runs migrations.
func Open(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scenario TEXT NOT NULL,
		seed INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'running',
		current_day INTEGER NOT NULL DEFAULT 0,
		state_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS daily_metrics (
		run_id INTEGER NOT NULL,
		day INTEGER NOT NULL,
		cooperation_rate REAL NOT NULL,
		energy_balance REAL NOT NULL,
		risk_incidents INTEGER NOT NULL,
		inequality_index REAL NOT NULL,
		network_assortativity REAL NOT NULL,
		network_reciprocity REAL NOT NULL,
		PRIMARY KEY (run_id, day)
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		day INTEGER NOT NULL,
		agent_id INTEGER,
		type TEXT NOT NULL,
		summary TEXT NOT NULL,
		detail TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS network_snapshots (
		run_id INTEGER NOT NULL,
		day INTEGER NOT NULL,
		reciprocity REAL NOT NULL,
		assortativity REAL NOT NULL,
		clustering REAL NOT NULL,
		edge_count INTEGER NOT NULL,
		edges_json TEXT NOT NULL,
		PRIMARY KEY (run_id, day)
	);

	CREATE INDEX IF NOT EXISTS idx_events_run_day ON events(run_id, day);
	CREATE INDEX IF NOT EXISTS idx_daily_metrics_run ON daily_metrics(run_id);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// InsertRun creates a new run row and returns its id.
func (s *Store) InsertRun(ctx context.Context, scenario string, seed uint32, stateJSON string) (int64, error) {
	result, err := s.conn.ExecContext(ctx,
		"INSERT INTO runs (scenario, seed, status, current_day, state_json) VALUES (?, ?, ?, ?, ?)",
		scenario, seed, persistence.RunStatusRunning, 0, stateJSON,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return result.LastInsertId()
}

type runRow struct {
	ID         int64  `db:"id"`
	Scenario   string `db:"scenario"`
	Status     string `db:"status"`
	CurrentDay int    `db:"current_day"`
	StateJSON  string `db:"state_json"`
}

// LoadRun fetches a run's current scenario, status, day, and state.
func (s *Store) LoadRun(ctx context.Context, runID int64) (persistence.RunRecord, error) {
	var row runRow
	err := s.conn.GetContext(ctx, &row,
		"SELECT id, scenario, status, current_day, state_json FROM runs WHERE id = ?", runID)
	if err != nil {
		return persistence.RunRecord{}, fmt.Errorf("load run %d: %w", runID, err)
	}

	return persistence.RunRecord{
		RunID:      row.ID,
		Scenario:   row.Scenario,
		Status:     persistence.RunStatus(row.Status),
		CurrentDay: row.CurrentDay,
		StateJSON:  row.StateJSON,
	}, nil
}

// PatchRunState overwrites a run's persisted state and current day.
func (s *Store) PatchRunState(ctx context.Context, runID int64, stateJSON string, day int) error {
	_, err := s.conn.ExecContext(ctx,
		"UPDATE runs SET state_json = ?, current_day = ? WHERE id = ?",
		stateJSON, day, runID,
	)
	if err != nil {
		return fmt.Errorf("patch run %d: %w", runID, err)
	}
	return nil
}

// AppendDailyMetrics records one day's aggregate scalars.
func (s *Store) AppendDailyMetrics(ctx context.Context, runID int64, day int, metrics orchestrator.DailyMetrics) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO daily_metrics
		(run_id, day, cooperation_rate, energy_balance, risk_incidents, inequality_index, network_assortativity, network_reciprocity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, day, metrics.CooperationRate, metrics.EnergyBalance, metrics.RiskIncidents,
		metrics.InequalityIndex, metrics.NetworkAssortativity, metrics.NetworkReciprocity,
	)
	if err != nil {
		return fmt.Errorf("append daily metrics run %d day %d: %w", runID, day, err)
	}
	return nil
}

// AppendEvents appends one day's structured log entries.
func (s *Store) AppendEvents(ctx context.Context, runID int64, entries []orchestrator.SimulationLogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx,
		"INSERT INTO events (run_id, day, agent_id, type, summary, detail) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare event insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, runID, e.Day, e.AgentID, e.Type, e.Summary, e.Detail); err != nil {
			return fmt.Errorf("insert event for run %d day %d: %w", runID, e.Day, err)
		}
	}

	return tx.Commit()
}

// AppendNetworkSnapshot records one day's network statistics and a
// canonical JSON rendering of its edge set.
func (s *Store) AppendNetworkSnapshot(ctx context.Context, runID int64, day int, stats network.Stats, edgesJSON string) error {
	var edges []network.Edge
	json.Unmarshal([]byte(edgesJSON), &edges)

	_, err := s.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO network_snapshots
		(run_id, day, reciprocity, assortativity, clustering, edge_count, edges_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, day, stats.Reciprocity, stats.Assortativity, stats.Clustering, len(edges), edgesJSON,
	)
	if err != nil {
		return fmt.Errorf("append network snapshot run %d day %d: %w", runID, day, err)
	}
	return nil
}

var _ persistence.Store = (*Store)(nil)
