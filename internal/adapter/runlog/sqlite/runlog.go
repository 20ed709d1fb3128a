// Package sqlite keeps simulation run logs in a SQLite file.
package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"crusoe/internal/adapter/codec"
	"crusoe/internal/app/ports"
	"crusoe/internal/domain/agent"
	"crusoe/internal/domain/economy"
)

type RunLog struct {
	conn *sqlx.DB
}

// Open opens or creates the run log at path.
func Open(path string) (*RunLog, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}
	// One writer; SQLite serialises anyway.
	conn.SetMaxOpenConns(1)

	l := &RunLog{conn: conn}
	if err := l.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return l, nil
}

func (l *RunLog) Close() error {
	return l.conn.Close()
}

func (l *RunLog) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		agent_id TEXT NOT NULL,
		strategy TEXT NOT NULL,
		daily_nutrition INTEGER NOT NULL,
		max_steps INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER,
		steps INTEGER,
		alive INTEGER,
		total_reward INTEGER
	);

	CREATE TABLE IF NOT EXISTS run_steps (
		run_id TEXT NOT NULL REFERENCES runs(run_id),
		step INTEGER NOT NULL,
		action TEXT NOT NULL,
		reward INTEGER NOT NULL,
		alive INTEGER NOT NULL,
		produced INTEGER NOT NULL,
		shortfall TEXT NOT NULL DEFAULT '',
		stock_blob BLOB NOT NULL,
		PRIMARY KEY (run_id, step)
	);
	`
	_, err := l.conn.Exec(schema)
	return err
}

func (l *RunLog) StartRun(ctx context.Context, run ports.RunRecord) error {
	_, err := l.conn.ExecContext(ctx,
		`INSERT INTO runs (run_id, agent_id, strategy, daily_nutrition, max_steps, seed, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.AgentID, run.Strategy, run.DailyNutrition, run.MaxSteps, run.Seed, run.StartedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("start run %s: %w", run.RunID, err)
	}
	return nil
}

func (l *RunLog) AppendStep(ctx context.Context, runID string, step ports.RunStep) error {
	blob, err := codec.EncodeStock(step.Stock)
	if err != nil {
		return err
	}
	_, err = l.conn.ExecContext(ctx,
		`INSERT INTO run_steps (run_id, step, action, reward, alive, produced, shortfall, stock_blob)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, step.Step, step.Action.String(), int64(step.Reward), boolInt(step.Alive), step.Produced, step.Shortfall, blob,
	)
	if err != nil {
		return fmt.Errorf("append step %d of %s: %w", step.Step, runID, err)
	}
	return nil
}

func (l *RunLog) FinishRun(ctx context.Context, runID string, summary ports.RunSummary) error {
	res, err := l.conn.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, steps = ?, alive = ?, total_reward = ? WHERE run_id = ?`,
		summary.FinishedAt.UnixMilli(), summary.Steps, boolInt(summary.Alive), summary.TotalReward, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ports.ErrNotFound)
	}
	return nil
}

type RunRow struct {
	RunID          string `db:"run_id"`
	AgentID        string `db:"agent_id"`
	Strategy       string `db:"strategy"`
	DailyNutrition uint32 `db:"daily_nutrition"`
	MaxSteps       int64  `db:"max_steps"`
	Seed           int64  `db:"seed"`
	StartedAt      int64  `db:"started_at"`
	FinishedAt     *int64 `db:"finished_at"`
	Steps          *int64 `db:"steps"`
	Alive          *bool  `db:"alive"`
	TotalReward    *int64 `db:"total_reward"`
}

func (r RunRow) Started() time.Time { return time.UnixMilli(r.StartedAt) }

func (l *RunLog) Run(ctx context.Context, runID string) (RunRow, error) {
	var row RunRow
	err := l.conn.GetContext(ctx, &row, "SELECT * FROM runs WHERE run_id = ?", runID)
	return row, err
}

type stepRow struct {
	Step      int64  `db:"step"`
	Action    string `db:"action"`
	Reward    int64  `db:"reward"`
	Alive     bool   `db:"alive"`
	Produced  uint32 `db:"produced"`
	Shortfall string `db:"shortfall"`
	StockBlob []byte `db:"stock_blob"`
}

// Steps returns the logged steps of a run in order.
func (l *RunLog) Steps(ctx context.Context, runID string) ([]ports.RunStep, error) {
	var rows []stepRow
	err := l.conn.SelectContext(ctx, &rows,
		"SELECT step, action, reward, alive, produced, shortfall, stock_blob FROM run_steps WHERE run_id = ? ORDER BY step",
		runID,
	)
	if err != nil {
		return nil, err
	}
	out := make([]ports.RunStep, 0, len(rows))
	for _, row := range rows {
		action, err := economy.ParseAction(row.Action)
		if err != nil {
			return nil, err
		}
		stock, err := codec.DecodeStock(row.StockBlob)
		if err != nil {
			return nil, fmt.Errorf("step %d stock: %w", row.Step, err)
		}
		out = append(out, ports.RunStep{
			Step:      row.Step,
			Action:    action,
			Reward:    agent.Reward(row.Reward),
			Alive:     row.Alive,
			Produced:  row.Produced,
			Shortfall: row.Shortfall,
			Stock:     stock,
		})
	}
	return out, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
