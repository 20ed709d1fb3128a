package memory

import (
	"context"

	"crusoe/internal/app/ports"
)

type StepExecutionRepo struct {
	store *Store
}

func NewStepExecutionRepo(store *Store) StepExecutionRepo {
	return StepExecutionRepo{store: store}
}

func (r StepExecutionRepo) GetByIdempotencyKey(ctx context.Context, agentID, key string) (*ports.StepExecutionRecord, error) {
	unlock := r.store.readLock(ctx)
	defer unlock()
	rec, ok := r.store.execution[execKey(agentID, key)]
	if !ok {
		return nil, ports.ErrNotFound
	}
	copy := rec
	return &copy, nil
}

func (r StepExecutionRepo) SaveExecution(ctx context.Context, execution ports.StepExecutionRecord) error {
	unlock := r.store.writeLock(ctx)
	defer unlock()
	k := execKey(execution.AgentID, execution.IdempotencyKey)
	if _, exists := r.store.execution[k]; exists {
		return ports.ErrConflict
	}
	r.store.execution[k] = execution
	return nil
}
