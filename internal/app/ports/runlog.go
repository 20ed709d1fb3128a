package ports

import (
	"context"
	"time"

	"crusoe/internal/domain/agent"
	"crusoe/internal/domain/economy"
)

type RunRecord struct {
	RunID          string
	AgentID        string
	Strategy       string
	DailyNutrition uint32
	MaxSteps       int64
	Seed           int64
	StartedAt      time.Time
}

type RunStep struct {
	Step      int64
	Action    economy.Action
	Reward    agent.Reward
	Alive     bool
	Produced  uint32
	Shortfall string
	Stock     economy.Stock
}

type RunSummary struct {
	Steps       int64
	Alive       bool
	TotalReward int64
	FinishedAt  time.Time
}

// RunLog stores batch simulation runs step by step.
type RunLog interface {
	StartRun(ctx context.Context, run RunRecord) error
	AppendStep(ctx context.Context, runID string, step RunStep) error
	FinishRun(ctx context.Context, runID string, summary RunSummary) error
}
