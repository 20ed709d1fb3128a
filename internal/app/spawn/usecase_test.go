package spawn

import (
	"context"
	"errors"
	"testing"
	"time"

	"crusoe/internal/app/ports"
	"crusoe/internal/domain/agent"
	"crusoe/internal/domain/economy"
	"crusoe/internal/domain/strategy"
)

type stubTxManager struct{}

func (stubTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type stubAgentRepo struct {
	saved    []ports.AgentRecord
	versions []int64
	err      error
}

func (r *stubAgentRepo) GetByAgentID(_ context.Context, _ string) (ports.AgentRecord, error) {
	return ports.AgentRecord{}, ports.ErrNotFound
}

func (r *stubAgentRepo) SaveWithVersion(_ context.Context, rec ports.AgentRecord, expectedVersion int64) error {
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, rec)
	r.versions = append(r.versions, expectedVersion)
	return nil
}

func TestUseCase_CreatesAgent(t *testing.T) {
	repo := &stubAgentRepo{}
	uc := UseCase{
		TxManager: stubTxManager{},
		AgentRepo: repo,
		Defaults:  agent.DefaultConfig(),
		NewID:     func() string { return "agent-1" },
		Now:       func() time.Time { return time.Unix(1700000000, 0) },
	}
	out, err := uc.Execute(context.Background(), Request{
		Stock: []economy.UnitQuantity{{Unit: economy.NewGoodsUnit(economy.Berries), Quantity: 6}},
	})
	if err != nil {
		t.Fatalf("execute error: %v", err)
	}
	if len(repo.saved) != 1 || repo.versions[0] != 0 {
		t.Fatalf("expected one create, got saved=%d versions=%v", len(repo.saved), repo.versions)
	}
	rec := repo.saved[0]
	if rec.AgentID != "agent-1" || rec.Version != 1 || !rec.Alive || rec.Strategy != strategy.Rational {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.DailyNutrition != 3 || rec.LeisureHorizon == 0 {
		t.Fatalf("defaults not applied: %+v", rec)
	}
	if out.Agent.Counts["berries"] != 6 || out.Agent.TimestepsTillDeath != 2 {
		t.Fatalf("unexpected view: %+v", out.Agent)
	}
}

func TestUseCase_GeneratesUUIDByDefault(t *testing.T) {
	repo := &stubAgentRepo{}
	uc := UseCase{TxManager: stubTxManager{}, AgentRepo: repo}
	if _, err := uc.Execute(context.Background(), Request{Strategy: "random"}); err != nil {
		t.Fatalf("execute error: %v", err)
	}
	if got := len(repo.saved[0].AgentID); got != 36 {
		t.Fatalf("expected uuid agent id, got %q", repo.saved[0].AgentID)
	}
}

func TestUseCase_RejectsInvalidInput(t *testing.T) {
	uc := UseCase{TxManager: stubTxManager{}, AgentRepo: &stubAgentRepo{}}
	cases := []Request{
		{Strategy: "genetic"},
		{Stock: []economy.UnitQuantity{{Unit: economy.GoodsUnit{Good: economy.Berries, RemainingLifetime: 0}, Quantity: 1}}},
		{Partials: []economy.PartialGoodsUnit{{Good: economy.Berries, TimeToCompletion: 1}}},
	}
	for i, req := range cases {
		if _, err := uc.Execute(context.Background(), req); !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("case %d: expected ErrInvalidRequest, got %v", i, err)
		}
	}
}

func TestUseCase_PropagatesRepoError(t *testing.T) {
	uc := UseCase{TxManager: stubTxManager{}, AgentRepo: &stubAgentRepo{err: ports.ErrConflict}}
	if _, err := uc.Execute(context.Background(), Request{}); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}
