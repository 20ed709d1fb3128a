package simulate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"crusoe/internal/app/ports"
	"crusoe/internal/domain/agent"
	"crusoe/internal/domain/strategy"
)

var ErrInvalidRequest = errors.New("invalid simulate request")

// UseCase runs one agent until it dies or reaches MaxSteps.
type UseCase struct {
	RunLog ports.RunLog
	NewID  func() string
	Now    func() time.Time
	Logger *slog.Logger
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if req.MaxSteps <= 0 {
		return Response{}, fmt.Errorf("%w: max steps must be positive", ErrInvalidRequest)
	}
	name, err := strategy.Normalize(req.Strategy)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	policy, err := strategy.Resolve(name, req.Settings)
	if err != nil {
		return Response{}, err
	}
	cfg := req.Agent
	if cfg.DailyNutrition == 0 {
		cfg.DailyNutrition = agent.DefaultConfig().DailyNutrition
	}
	if cfg.Rewards == (agent.RewardConfig{}) {
		cfg.Rewards = agent.DefaultRewards()
	}

	newID := u.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	logger := u.Logger
	if logger == nil {
		logger = slog.Default()
	}

	runID := req.RunID
	if runID == "" {
		runID = newID()
	}
	a := agent.New(newID(), req.Stock, cfg, policy)
	if u.RunLog != nil {
		if err := u.RunLog.StartRun(ctx, ports.RunRecord{
			RunID:          runID,
			AgentID:        a.ID(),
			Strategy:       name,
			DailyNutrition: cfg.DailyNutrition,
			MaxSteps:       req.MaxSteps,
			Seed:           req.Settings.Seed,
			StartedAt:      nowFn(),
		}); err != nil {
			return Response{}, err
		}
	}
	logger.Info("simulation started", "run_id", runID, "agent_id", a.ID(), "strategy", name, "max_steps", req.MaxSteps)

	out := Response{RunID: runID, AgentID: a.ID(), Alive: true, Actions: map[string]int64{}}
	for a.Alive() && a.Steps() < req.MaxSteps {
		if err := ctx.Err(); err != nil {
			return Response{}, err
		}
		outcome, err := a.StepForward(nil)
		if err != nil {
			return Response{}, err
		}
		out.TotalReward += int64(outcome.Reward)
		out.Actions[outcome.Action.String()]++

		if u.RunLog != nil {
			step := ports.RunStep{
				Step:     outcome.Step,
				Action:   outcome.Action,
				Reward:   outcome.Reward,
				Alive:    outcome.Alive,
				Produced: outcome.Produced,
				Stock:    a.Stock().Clone(),
			}
			if outcome.Shortfall != nil {
				step.Shortfall = outcome.Shortfall.Error()
			}
			if err := u.RunLog.AppendStep(ctx, runID, step); err != nil {
				return Response{}, err
			}
		}
	}

	out.Steps = a.Steps()
	out.Alive = a.Alive()
	out.Final = map[string]uint32{}
	for g, n := range a.Stock().Counts() {
		out.Final[g.String()] = n
	}
	if u.RunLog != nil {
		if err := u.RunLog.FinishRun(ctx, runID, ports.RunSummary{
			Steps:       out.Steps,
			Alive:       out.Alive,
			TotalReward: out.TotalReward,
			FinishedAt:  nowFn(),
		}); err != nil {
			return Response{}, err
		}
	}
	logger.Info("simulation finished", "run_id", runID, "steps", out.Steps, "alive", out.Alive, "total_reward", out.TotalReward)
	return out, nil
}
