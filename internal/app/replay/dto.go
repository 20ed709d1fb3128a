package replay

import "crusoe/internal/domain/agent"

type Request struct {
	AgentID string
	Limit   int
	// Unix seconds; zero leaves the bound open.
	OccurredFrom int64
	OccurredTo   int64
	EventType    string
}

// LatestState is the agent summary carried by the newest settled step.
type LatestState struct {
	AgentID    string            `json:"agent_id"`
	Alive      bool              `json:"alive"`
	Steps      int64             `json:"steps"`
	LastAction string            `json:"last_action"`
	Counts     map[string]uint32 `json:"counts"`
}

type Response struct {
	Events      []agent.Event `json:"events"`
	LatestState LatestState   `json:"latest_state"`
}
