package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"crusoe/internal/app/ports"
	"crusoe/internal/app/simulate"
	"crusoe/internal/domain/economy"
	"crusoe/internal/domain/strategy"
)

func openTemp(t *testing.T) *RunLog {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestRunLog_RoundTrip(t *testing.T) {
	ctx := context.Background()
	l := openTemp(t)

	started := time.UnixMilli(1700000000000)
	if err := l.StartRun(ctx, ports.RunRecord{RunID: "run-1", AgentID: "agent-1", Strategy: "rational", DailyNutrition: 3, MaxSteps: 10, StartedAt: started}); err != nil {
		t.Fatalf("start: %v", err)
	}
	s := economy.NewStock()
	s.Add(economy.GoodsUnit{Good: economy.Berries, RemainingLifetime: 9}, 1)
	if err := l.AppendStep(ctx, "run-1", ports.RunStep{Step: 1, Action: economy.ProduceGood(economy.Berries), Alive: true, Produced: 4, Stock: s}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := l.AppendStep(ctx, "run-1", ports.RunStep{Step: 2, Action: economy.Leisure(), Reward: -100, Stock: economy.NewStock()}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := l.FinishRun(ctx, "run-1", ports.RunSummary{Steps: 2, TotalReward: -100, FinishedAt: started.Add(time.Second)}); err != nil {
		t.Fatalf("finish: %v", err)
	}

	run, err := l.Run(ctx, "run-1")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if run.Steps == nil || *run.Steps != 2 || run.Alive == nil || *run.Alive || !run.Started().Equal(started) {
		t.Fatalf("unexpected run row: %+v", run)
	}

	steps, err := l.Steps(ctx, "run-1")
	if err != nil {
		t.Fatalf("steps: %v", err)
	}
	if len(steps) != 2 {
		t.Fatalf("step count: got=%d want=2", len(steps))
	}
	if steps[0].Action != economy.ProduceGood(economy.Berries) || steps[0].Produced != 4 || !steps[0].Alive {
		t.Fatalf("unexpected first step: %+v", steps[0])
	}
	if got := steps[0].Stock.CountUnits(economy.Berries); got != 1 {
		t.Fatalf("first step berries: got=%d want=1", got)
	}
	if !steps[1].Action.IsLeisure() || steps[1].Reward != -100 || steps[1].Alive {
		t.Fatalf("unexpected second step: %+v", steps[1])
	}
}

func TestRunLog_Errors(t *testing.T) {
	ctx := context.Background()
	l := openTemp(t)
	if err := l.FinishRun(ctx, "missing", ports.RunSummary{}); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := l.StartRun(ctx, ports.RunRecord{RunID: "dup"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := l.StartRun(ctx, ports.RunRecord{RunID: "dup"}); err == nil {
		t.Fatalf("expected duplicate run error")
	}
}

func TestRunLog_RecordsSimulation(t *testing.T) {
	ctx := context.Background()
	l := openTemp(t)
	out, err := simulate.UseCase{RunLog: l}.Execute(ctx, simulate.Request{
		RunID:    "sim-1",
		Settings: strategy.DefaultSettings(),
		Stock:    economy.NewStock(),
		MaxSteps: 12,
	})
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	steps, err := l.Steps(ctx, "sim-1")
	if err != nil {
		t.Fatalf("steps: %v", err)
	}
	if int64(len(steps)) != out.Steps {
		t.Fatalf("logged steps: got=%d want=%d", len(steps), out.Steps)
	}
}
