package memory

import (
	"context"

	"crusoe/internal/app/ports"
)

type AgentRepo struct {
	store *Store
}

func NewAgentRepo(store *Store) AgentRepo {
	return AgentRepo{store: store}
}

func (r AgentRepo) GetByAgentID(ctx context.Context, agentID string) (ports.AgentRecord, error) {
	unlock := r.store.readLock(ctx)
	defer unlock()
	rec, ok := r.store.agents[agentID]
	if !ok {
		return ports.AgentRecord{}, ports.ErrNotFound
	}
	rec.Stock = rec.Stock.Clone()
	return rec, nil
}

func (r AgentRepo) SaveWithVersion(ctx context.Context, rec ports.AgentRecord, expectedVersion int64) error {
	unlock := r.store.writeLock(ctx)
	defer unlock()
	current, ok := r.store.agents[rec.AgentID]
	if !ok {
		if expectedVersion != 0 {
			return ports.ErrConflict
		}
	} else if expectedVersion == 0 || current.Version != expectedVersion {
		return ports.ErrConflict
	}
	rec.Stock = rec.Stock.Clone()
	r.store.agents[rec.AgentID] = rec
	return nil
}
