package step

import (
	"crusoe/internal/app/stateview"
	"crusoe/internal/domain/agent"
	"crusoe/internal/domain/economy"
)

type Request struct {
	AgentID        string
	IdempotencyKey string
	// Action overrides the agent's policy when set.
	Action string
}

type Response struct {
	Step      int64          `json:"step"`
	Action    economy.Action `json:"action"`
	Reward    agent.Reward   `json:"reward"`
	Alive     bool           `json:"alive"`
	Produced  uint32         `json:"produced"`
	Shortfall string         `json:"shortfall,omitempty"`
	Events    []agent.Event  `json:"events"`
	Agent     stateview.View `json:"agent"`
	Replayed  bool           `json:"replayed"`
}
