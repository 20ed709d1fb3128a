package memory

import (
	"sync"

	"crusoe/internal/app/ports"
	"crusoe/internal/domain/agent"
)

// Store keeps every record in process memory. TxManager serialises writers
// on mu; reads outside a transaction take the read lock.
type Store struct {
	mu        sync.RWMutex
	agents    map[string]ports.AgentRecord
	execution map[string]ports.StepExecutionRecord
	events    map[string][]agent.Event
}

func NewStore() *Store {
	return &Store{
		agents:    make(map[string]ports.AgentRecord),
		execution: make(map[string]ports.StepExecutionRecord),
		events:    make(map[string][]agent.Event),
	}
}

func execKey(agentID, key string) string {
	return agentID + "::" + key
}

func (s *Store) SeedAgent(rec ports.AgentRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.Stock = rec.Stock.Clone()
	s.agents[rec.AgentID] = rec
}
