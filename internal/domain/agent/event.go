package agent

import "time"

const (
	EventStepSettled         = "step_settled"
	EventProductionCompleted = "production_completed"
	EventAgentDied           = "agent_died"
)

type Event struct {
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload"`
}

// EventsFor describes one step; after is the state the step left behind.
func EventsFor(out Outcome, after State, occurredAt time.Time) []Event {
	settled := Event{
		Type:       EventStepSettled,
		OccurredAt: occurredAt,
		Payload: map[string]any{
			"agent_id": after.ID,
			"step":     out.Step,
			"action":   out.Action.String(),
			"reward":   int64(out.Reward),
			"produced": int64(out.Produced),
			"state_after": map[string]any{
				"alive":  after.Alive,
				"steps":  after.Steps,
				"counts": countsPayload(after),
			},
		},
	}
	if out.Shortfall != nil {
		settled.Payload["shortfall"] = out.Shortfall.Error()
	}
	events := []Event{settled}

	if g, ok := out.Action.Produced(); ok && out.Produced > 0 {
		events = append(events, Event{
			Type:       EventProductionCompleted,
			OccurredAt: occurredAt,
			Payload: map[string]any{
				"agent_id": after.ID,
				"step":     out.Step,
				"good":     g.String(),
				"quantity": int64(out.Produced),
			},
		})
	}
	if !out.Alive {
		events = append(events, Event{
			Type:       EventAgentDied,
			OccurredAt: occurredAt,
			Payload: map[string]any{
				"agent_id": after.ID,
				"step":     out.Step,
			},
		})
	}
	return events
}

func countsPayload(s State) map[string]any {
	out := map[string]any{}
	for g, n := range s.Stock.Counts() {
		out[g.String()] = int64(n)
	}
	return out
}
