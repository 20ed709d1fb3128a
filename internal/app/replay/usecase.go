package replay

import (
	"context"
	"errors"
	"strings"

	"crusoe/internal/app/ports"
	"crusoe/internal/domain/agent"
)

var ErrInvalidRequest = errors.New("invalid replay request")

const defaultLimit = 50

type UseCase struct {
	Events ports.EventRepository
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	agentID := strings.TrimSpace(req.AgentID)
	if agentID == "" || req.Limit < 0 {
		return Response{}, ErrInvalidRequest
	}
	limit := req.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	events, err := u.Events.ListByAgentID(ctx, agentID, limit)
	if err != nil {
		return Response{}, err
	}
	events = filterByTimeWindow(events, req.OccurredFrom, req.OccurredTo)
	events = filterByType(events, strings.TrimSpace(req.EventType))
	latest := reconstruct(events)
	latest.AgentID = agentID
	return Response{Events: events, LatestState: latest}, nil
}

func filterByTimeWindow(events []agent.Event, from, to int64) []agent.Event {
	if from <= 0 && to <= 0 {
		return events
	}
	out := make([]agent.Event, 0, len(events))
	for _, evt := range events {
		ts := evt.OccurredAt.Unix()
		if from > 0 && ts < from {
			continue
		}
		if to > 0 && ts > to {
			continue
		}
		out = append(out, evt)
	}
	return out
}

func filterByType(events []agent.Event, eventType string) []agent.Event {
	if eventType == "" {
		return events
	}
	out := make([]agent.Event, 0, len(events))
	for _, evt := range events {
		if evt.Type == eventType {
			out = append(out, evt)
		}
	}
	return out
}

// reconstruct reads the newest step_settled event. Events arrive newest
// first; payload numbers are float64 once they have been through JSON.
func reconstruct(events []agent.Event) LatestState {
	state := LatestState{Counts: map[string]uint32{}}
	for _, evt := range events {
		if evt.Type != agent.EventStepSettled {
			continue
		}
		after, ok := evt.Payload["state_after"].(map[string]any)
		if !ok {
			continue
		}
		state.Alive, _ = after["alive"].(bool)
		state.Steps = int64(num(after["steps"]))
		state.LastAction, _ = evt.Payload["action"].(string)
		if counts, ok := after["counts"].(map[string]any); ok {
			for good, n := range counts {
				state.Counts[good] = uint32(num(n))
			}
		}
		return state
	}
	return state
}

func num(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case uint32:
		return float64(n)
	default:
		return 0
	}
}
