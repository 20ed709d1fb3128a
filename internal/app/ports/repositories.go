package ports

import (
	"context"
	"time"

	"crusoe/internal/domain/agent"
	"crusoe/internal/domain/economy"
)

// AgentRecord is everything needed to restore an agent between requests.
type AgentRecord struct {
	AgentID        string
	Strategy       string
	DailyNutrition uint32
	LeisureHorizon uint32
	Seed           int64
	Alive          bool
	Steps          int64
	Stock          economy.Stock
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (r AgentRecord) AgentState() agent.State {
	return agent.State{ID: r.AgentID, Stock: r.Stock, Alive: r.Alive, Steps: r.Steps}
}

type StepResult struct {
	Step      int64          `json:"step"`
	Action    economy.Action `json:"action"`
	Reward    agent.Reward   `json:"reward"`
	Alive     bool           `json:"alive"`
	Produced  uint32         `json:"produced"`
	Shortfall string         `json:"shortfall,omitempty"`
	Stock     economy.Stock  `json:"stock"`
	Events    []agent.Event  `json:"events"`
}

type StepExecutionRecord struct {
	AgentID        string
	IdempotencyKey string
	Action         string
	Result         StepResult
	AppliedAt      time.Time
}

type AgentRepository interface {
	GetByAgentID(ctx context.Context, agentID string) (AgentRecord, error)
	// SaveWithVersion creates the record when expectedVersion is 0 and
	// otherwise requires the stored version to equal expectedVersion.
	SaveWithVersion(ctx context.Context, rec AgentRecord, expectedVersion int64) error
}

type StepExecutionRepository interface {
	GetByIdempotencyKey(ctx context.Context, agentID, key string) (*StepExecutionRecord, error)
	SaveExecution(ctx context.Context, execution StepExecutionRecord) error
}

type EventRepository interface {
	Append(ctx context.Context, agentID string, events []agent.Event) error
	// ListByAgentID returns the newest events first.
	ListByAgentID(ctx context.Context, agentID string, limit int) ([]agent.Event, error)
}
