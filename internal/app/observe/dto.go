package observe

import (
	"crusoe/internal/app/stateview"
	"crusoe/internal/domain/economy"
)

type Request struct {
	AgentID string
}

type ActionBenefit struct {
	Action     economy.Action `json:"action"`
	Benefit    float64        `json:"benefit"`
	Producible bool           `json:"producible"`
}

type Response struct {
	Agent          stateview.View  `json:"agent"`
	Benefits       []ActionBenefit `json:"benefits"`
	NextAction     economy.Action  `json:"next_action"`
	LeisureHorizon uint32          `json:"leisure_horizon"`
}
