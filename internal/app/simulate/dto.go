package simulate

import (
	"crusoe/internal/domain/agent"
	"crusoe/internal/domain/economy"
	"crusoe/internal/domain/strategy"
)

type Request struct {
	RunID    string
	Strategy string
	Settings strategy.Settings
	Agent    agent.Config
	Stock    economy.Stock
	MaxSteps int64
}

type Response struct {
	RunID       string            `json:"run_id"`
	AgentID     string            `json:"agent_id"`
	Steps       int64             `json:"steps"`
	Alive       bool              `json:"alive"`
	TotalReward int64             `json:"total_reward"`
	Actions     map[string]int64  `json:"actions"`
	Final       map[string]uint32 `json:"final_counts"`
}
