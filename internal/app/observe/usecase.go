package observe

import (
	"context"
	"errors"
	"strings"

	"crusoe/internal/app/ports"
	"crusoe/internal/app/stateview"
	"crusoe/internal/domain/agent"
	"crusoe/internal/domain/economy"
	"crusoe/internal/domain/strategy"
	"crusoe/internal/domain/valuation"
)

var ErrInvalidRequest = errors.New("invalid observe request")

// UseCase values every action from the agent's current stock and reports
// what its policy would pick on the next step.
type UseCase struct {
	AgentRepo          ports.AgentRepository
	LeisureProbability float64
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	agentID := strings.TrimSpace(req.AgentID)
	if agentID == "" {
		return Response{}, ErrInvalidRequest
	}
	rec, err := u.AgentRepo.GetByAgentID(ctx, agentID)
	if err != nil {
		return Response{}, err
	}

	horizon := rec.LeisureHorizon
	if horizon == 0 {
		horizon = valuation.DefaultLeisureHorizon
	}
	probability := u.LeisureProbability
	if probability <= 0 {
		probability = strategy.DefaultSettings().LeisureProbability
	}
	policy, err := strategy.Resolve(rec.Strategy, strategy.Settings{
		LeisureHorizon:     horizon,
		LeisureProbability: probability,
		Seed:               strategy.SeedFor(rec.Seed, rec.AgentID, rec.Steps),
	})
	if err != nil {
		return Response{}, err
	}

	a := stateview.AgentFrom(rec, agent.DefaultConfig(), policy)
	resp := Response{
		Agent:          stateview.Derive(rec),
		Benefits:       []ActionBenefit{},
		NextAction:     economy.Leisure(),
		LeisureHorizon: horizon,
	}
	for _, b := range valuation.NewAppraiser(a).Benefits() {
		resp.Benefits = append(resp.Benefits, ActionBenefit{Action: b.Action, Benefit: b.Benefit, Producible: b.Producible})
	}
	if rec.Alive {
		resp.NextAction = a.ChooseAction()
	}
	return resp, nil
}
