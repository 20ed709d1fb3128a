package replay

import (
	"context"
	"errors"
	"testing"
	"time"

	"crusoe/internal/domain/agent"
)

func settled(at int64, steps float64, alive bool, berries float64) agent.Event {
	return agent.Event{
		Type:       agent.EventStepSettled,
		OccurredAt: time.Unix(at, 0),
		Payload: map[string]any{
			"action": "produce:berries",
			"state_after": map[string]any{
				"alive":  alive,
				"steps":  steps,
				"counts": map[string]any{"berries": berries},
			},
		},
	}
}

func TestUseCase_ReconstructsLatestStateFromEvents(t *testing.T) {
	repo := fakeRepo{events: []agent.Event{
		{Type: agent.EventAgentDied, OccurredAt: time.Unix(3, 0), Payload: map[string]any{}},
		settled(2, 2, false, 0),
		settled(1, 1, true, 3),
	}}

	out, err := UseCase{Events: repo}.Execute(context.Background(), Request{AgentID: "agent-1", Limit: 10})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if out.LatestState.Steps != 2 || out.LatestState.Alive {
		t.Fatalf("expected dead at step 2, got %+v", out.LatestState)
	}
	if out.LatestState.AgentID != "agent-1" || out.LatestState.LastAction != "produce:berries" {
		t.Fatalf("unexpected latest state: %+v", out.LatestState)
	}
	if len(out.Events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(out.Events))
	}
}

func TestUseCase_AcceptsInMemoryPayloads(t *testing.T) {
	repo := fakeRepo{events: []agent.Event{{
		Type:       agent.EventStepSettled,
		OccurredAt: time.Unix(1, 0),
		Payload: map[string]any{
			"state_after": map[string]any{"alive": true, "steps": int64(7), "counts": map[string]any{"fish": int64(4)}},
		},
	}}}
	out, err := UseCase{Events: repo}.Execute(context.Background(), Request{AgentID: "agent-1"})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if out.LatestState.Steps != 7 || out.LatestState.Counts["fish"] != 4 {
		t.Fatalf("unexpected latest state: %+v", out.LatestState)
	}
}

func TestUseCase_FiltersByWindowAndType(t *testing.T) {
	repo := fakeRepo{events: []agent.Event{
		settled(300, 3, true, 3),
		{Type: agent.EventProductionCompleted, OccurredAt: time.Unix(200, 0), Payload: map[string]any{}},
		settled(200, 2, true, 6),
		settled(100, 1, true, 9),
	}}
	out, err := UseCase{Events: repo}.Execute(context.Background(), Request{AgentID: "agent-1", OccurredFrom: 150, OccurredTo: 250})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if len(out.Events) != 2 || out.LatestState.Steps != 2 {
		t.Fatalf("window filter: events=%d steps=%d", len(out.Events), out.LatestState.Steps)
	}

	out, err = UseCase{Events: repo}.Execute(context.Background(), Request{AgentID: "agent-1", EventType: agent.EventProductionCompleted})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if len(out.Events) != 1 || out.LatestState.Steps != 0 {
		t.Fatalf("type filter: events=%d steps=%d", len(out.Events), out.LatestState.Steps)
	}
}

func TestUseCase_RejectsInvalidRequest(t *testing.T) {
	uc := UseCase{Events: fakeRepo{}}
	for _, req := range []Request{{}, {AgentID: "a", Limit: -1}} {
		if _, err := uc.Execute(context.Background(), req); !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("expected ErrInvalidRequest, got %v", err)
		}
	}
}

type fakeRepo struct {
	events []agent.Event
}

func (r fakeRepo) Append(_ context.Context, _ string, _ []agent.Event) error {
	return nil
}

func (r fakeRepo) ListByAgentID(_ context.Context, _ string, _ int) ([]agent.Event, error) {
	return r.events, nil
}
