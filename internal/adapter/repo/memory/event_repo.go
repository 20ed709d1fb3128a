package memory

import (
	"context"

	"crusoe/internal/app/ports"
	"crusoe/internal/domain/agent"
)

type EventRepo struct {
	store *Store
}

func NewEventRepo(store *Store) EventRepo {
	return EventRepo{store: store}
}

func (r EventRepo) Append(ctx context.Context, agentID string, events []agent.Event) error {
	unlock := r.store.writeLock(ctx)
	defer unlock()
	r.store.events[agentID] = append(r.store.events[agentID], events...)
	return nil
}

// ListByAgentID returns the newest events first, like the database adapter.
func (r EventRepo) ListByAgentID(ctx context.Context, agentID string, limit int) ([]agent.Event, error) {
	unlock := r.store.readLock(ctx)
	defer unlock()
	stored := r.store.events[agentID]
	if len(stored) == 0 {
		return nil, ports.ErrNotFound
	}
	out := make([]agent.Event, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		out = append(out, stored[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
