package step

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"crusoe/internal/app/ports"
	"crusoe/internal/app/stateview"
	"crusoe/internal/domain/agent"
	"crusoe/internal/domain/economy"
	"crusoe/internal/domain/strategy"
)

var ErrInvalidRequest = errors.New("invalid step request")

type UseCase struct {
	TxManager     ports.TxManager
	AgentRepo     ports.AgentRepository
	ExecutionRepo ports.StepExecutionRepository
	EventRepo     ports.EventRepository
	Metrics       ports.StepMetrics
	Rewards       agent.RewardConfig
	// LeisureProbability feeds the weighted strategy.
	LeisureProbability float64
	Now                func() time.Time
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	req.AgentID = strings.TrimSpace(req.AgentID)
	req.IdempotencyKey = strings.TrimSpace(req.IdempotencyKey)
	if req.AgentID == "" || req.IdempotencyKey == "" {
		return Response{}, ErrInvalidRequest
	}
	var override *economy.Action
	if raw := strings.TrimSpace(req.Action); raw != "" {
		action, err := economy.ParseAction(raw)
		if err != nil {
			return Response{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		override = &action
	}

	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}

	var out Response
	err := u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		exec, err := u.ExecutionRepo.GetByIdempotencyKey(txCtx, req.AgentID, req.IdempotencyKey)
		if err == nil && exec != nil {
			rec, err := u.AgentRepo.GetByAgentID(txCtx, req.AgentID)
			if err != nil {
				return err
			}
			// Report the agent as the original step left it.
			rec.Stock = exec.Result.Stock
			rec.Steps = exec.Result.Step
			rec.Alive = exec.Result.Alive
			out = responseFrom(exec.Result, rec)
			out.Replayed = true
			return nil
		}
		if err != nil && !errors.Is(err, ports.ErrNotFound) {
			return err
		}

		rec, err := u.AgentRepo.GetByAgentID(txCtx, req.AgentID)
		if err != nil {
			return err
		}
		if !rec.Alive {
			return agent.ErrAgentDead
		}
		policy, err := strategy.Resolve(rec.Strategy, strategy.Settings{
			LeisureHorizon:     rec.LeisureHorizon,
			LeisureProbability: u.leisureProbability(),
			Seed:               strategy.SeedFor(rec.Seed, rec.AgentID, rec.Steps),
		})
		if err != nil {
			return err
		}

		a := stateview.AgentFrom(rec, agent.Config{Rewards: u.rewards()}, policy)
		outcome, err := a.StepForward(override)
		if err != nil {
			return err
		}
		if outcome.Shortfall != nil {
			slog.Info("step absorbed shortfall", "agent_id", rec.AgentID, "step", outcome.Step, "error", outcome.Shortfall)
		}

		now := nowFn()
		state := a.State()
		next := rec
		next.Alive = state.Alive
		next.Steps = state.Steps
		next.Stock = state.Stock
		next.Version = rec.Version + 1
		next.UpdatedAt = now
		if err := u.AgentRepo.SaveWithVersion(txCtx, next, rec.Version); err != nil {
			return err
		}

		result := ports.StepResult{
			Step:     outcome.Step,
			Action:   outcome.Action,
			Reward:   outcome.Reward,
			Alive:    outcome.Alive,
			Produced: outcome.Produced,
			Stock:    state.Stock,
			Events:   agent.EventsFor(outcome, state, now),
		}
		if outcome.Shortfall != nil {
			result.Shortfall = outcome.Shortfall.Error()
		}
		if req.Action != "" {
			for i := range result.Events {
				result.Events[i].Payload["forced"] = true
			}
		}

		execution := ports.StepExecutionRecord{
			AgentID:        req.AgentID,
			IdempotencyKey: req.IdempotencyKey,
			Action:         outcome.Action.String(),
			Result:         result,
			AppliedAt:      now,
		}
		if err := u.ExecutionRepo.SaveExecution(txCtx, execution); err != nil {
			return err
		}
		if err := u.EventRepo.Append(txCtx, req.AgentID, result.Events); err != nil {
			return err
		}

		out = responseFrom(result, next)
		return nil
	})
	if err != nil {
		if u.Metrics != nil {
			if errors.Is(err, ports.ErrConflict) {
				u.Metrics.RecordConflict()
			} else {
				u.Metrics.RecordFailure()
			}
		}
		return Response{}, err
	}
	if u.Metrics != nil && !out.Replayed {
		u.Metrics.RecordSuccess(out.Action, out.Alive)
	}
	return out, nil
}

func (u UseCase) rewards() agent.RewardConfig {
	if u.Rewards == (agent.RewardConfig{}) {
		return agent.DefaultRewards()
	}
	return u.Rewards
}

func (u UseCase) leisureProbability() float64 {
	if u.LeisureProbability <= 0 {
		return strategy.DefaultSettings().LeisureProbability
	}
	return u.LeisureProbability
}

func responseFrom(result ports.StepResult, rec ports.AgentRecord) Response {
	return Response{
		Step:      result.Step,
		Action:    result.Action,
		Reward:    result.Reward,
		Alive:     result.Alive,
		Produced:  result.Produced,
		Shortfall: result.Shortfall,
		Events:    result.Events,
		Agent:     stateview.Derive(rec),
	}
}
