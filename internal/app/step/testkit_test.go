package step

import (
	"context"

	"crusoe/internal/app/ports"
	"crusoe/internal/domain/agent"
	"crusoe/internal/domain/economy"
)

type stubTxManager struct{}

func (stubTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type stubAgentRepo struct {
	byAgent map[string]ports.AgentRecord
	saves   int
	saveErr error
}

func (r *stubAgentRepo) GetByAgentID(_ context.Context, agentID string) (ports.AgentRecord, error) {
	rec, ok := r.byAgent[agentID]
	if !ok {
		return ports.AgentRecord{}, ports.ErrNotFound
	}
	return rec, nil
}

func (r *stubAgentRepo) SaveWithVersion(_ context.Context, rec ports.AgentRecord, expectedVersion int64) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	if current, ok := r.byAgent[rec.AgentID]; ok && current.Version != expectedVersion {
		return ports.ErrConflict
	}
	r.saves++
	r.byAgent[rec.AgentID] = rec
	return nil
}

type stubExecutionRepo struct {
	byKey map[string]ports.StepExecutionRecord
}

func (r *stubExecutionRepo) GetByIdempotencyKey(_ context.Context, agentID, key string) (*ports.StepExecutionRecord, error) {
	rec, ok := r.byKey[agentID+"|"+key]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &rec, nil
}

func (r *stubExecutionRepo) SaveExecution(_ context.Context, execution ports.StepExecutionRecord) error {
	r.byKey[execution.AgentID+"|"+execution.IdempotencyKey] = execution
	return nil
}

type stubEventRepo struct {
	events []agent.Event
}

func (r *stubEventRepo) Append(_ context.Context, _ string, events []agent.Event) error {
	r.events = append(r.events, events...)
	return nil
}

func (r *stubEventRepo) ListByAgentID(_ context.Context, _ string, limit int) ([]agent.Event, error) {
	if limit > 0 && len(r.events) > limit {
		return r.events[:limit], nil
	}
	return r.events, nil
}

type stubStepMetrics struct {
	success  int
	conflict int
	failure  int
	deaths   int
}

func (m *stubStepMetrics) RecordSuccess(_ economy.Action, alive bool) {
	m.success++
	if !alive {
		m.deaths++
	}
}

func (m *stubStepMetrics) RecordConflict() { m.conflict++ }

func (m *stubStepMetrics) RecordFailure() { m.failure++ }

func recordWith(id string, counts map[economy.Good]uint32) ports.AgentRecord {
	s := economy.NewStock()
	for g, n := range counts {
		s.Add(economy.NewGoodsUnit(g), n)
	}
	return ports.AgentRecord{
		AgentID:        id,
		Strategy:       "rational",
		DailyNutrition: 3,
		LeisureHorizon: 8,
		Alive:          true,
		Stock:          s,
		Version:        1,
	}
}
