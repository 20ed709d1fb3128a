package status

import "crusoe/internal/app/stateview"

type Request struct {
	AgentID string
}

type Response struct {
	Agent stateview.View `json:"agent"`
}
