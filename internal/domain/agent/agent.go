package agent

import (
	"errors"
	"fmt"
	"log/slog"

	"crusoe/internal/domain/economy"
)

var ErrAgentDead = errors.New("agent is dead")

type Reward int32

type RewardConfig struct {
	Leisure Reward
	Death   Reward
}

func DefaultRewards() RewardConfig {
	return RewardConfig{Leisure: 1, Death: -100}
}

type Config struct {
	DailyNutrition uint32
	Rewards        RewardConfig
}

func DefaultConfig() Config {
	return Config{DailyNutrition: 3, Rewards: DefaultRewards()}
}

// Policy picks the next action for an agent. Implementations must not
// mutate the agent.
type Policy interface {
	ChooseAction(a *Agent) economy.Action
}

// State is the persisted part of an agent.
type State struct {
	ID    string
	Stock economy.Stock
	Alive bool
	Steps int64
}

// Agent owns one stock and drives it through time one step at a time.
type Agent struct {
	id             string
	stock          economy.Stock
	alive          bool
	steps          int64
	dailyNutrition uint32
	rewards        RewardConfig
	policy         Policy

	actionHistory []economy.Action
	stockHistory  []economy.Stock
	rewardHistory []Reward
}

func New(id string, stock economy.Stock, cfg Config, policy Policy) *Agent {
	return Restore(State{ID: id, Stock: stock, Alive: true}, cfg, policy)
}

// Restore rebuilds an agent from persisted state. History starts empty.
func Restore(state State, cfg Config, policy Policy) *Agent {
	if cfg.DailyNutrition == 0 {
		panic("agent: daily nutrition must be positive")
	}
	return &Agent{
		id:             state.ID,
		stock:          state.Stock.Clone(),
		alive:          state.Alive,
		steps:          state.Steps,
		dailyNutrition: cfg.DailyNutrition,
		rewards:        cfg.Rewards,
		policy:         policy,
	}
}

func (a *Agent) State() State {
	return State{ID: a.id, Stock: a.stock.Clone(), Alive: a.alive, Steps: a.steps}
}

// Clone returns a disposable copy for what-if simulation. History is not
// copied.
func (a *Agent) Clone() *Agent {
	return &Agent{
		id:             a.id,
		stock:          a.stock.Clone(),
		alive:          a.alive,
		steps:          a.steps,
		dailyNutrition: a.dailyNutrition,
		rewards:        a.rewards,
		policy:         a.policy,
	}
}

func (a *Agent) ID() string             { return a.id }
func (a *Agent) Alive() bool            { return a.alive }
func (a *Agent) Steps() int64           { return a.steps }
func (a *Agent) DailyNutrition() uint32 { return a.dailyNutrition }

// Stock exposes the live stock for reading and in-place edits.
func (a *Agent) Stock() *economy.Stock { return &a.stock }

func (a *Agent) SetStock(s economy.Stock) { a.stock = s }

func (a *Agent) SetPolicy(p Policy) { a.policy = p }

func (a *Agent) Productivity(g economy.Good) economy.Productivity {
	return g.DefaultProductivity(&a.stock)
}

// Acquire adds quantity fresh units of g.
func (a *Agent) Acquire(g economy.Good, quantity uint32) {
	a.stock.Add(economy.NewGoodsUnit(g), quantity)
}

// Act applies the production side of action: output, partial progress and
// input use. It returns the number of finished units added. Time does not
// advance and nothing is eaten. A returned error wraps
// economy.ErrInsufficientStock and means the missing input had no effect.
func (a *Agent) Act(action economy.Action) (uint32, error) {
	g, ok := action.Produced()
	if !ok {
		return 0, nil
	}

	p := a.Productivity(g)
	var produced uint32
	switch p.Kind {
	case economy.ProductivityNone:
		return 0, nil
	case economy.ProductivityImmediate:
		if p.Value > 0 {
			a.stock.Add(economy.NewGoodsUnit(g), p.Value)
			produced = p.Value
		}
	case economy.ProductivityDelayed:
		produced = a.advancePartial(g)
	}

	if err := a.stock.DegradeCapitalStock(action); err != nil {
		return produced, fmt.Errorf("produce %s: %w", g, err)
	}
	return produced, nil
}

func (a *Agent) advancePartial(g economy.Good) uint32 {
	if _, ok := a.stock.Partial(g); ok {
		current := a.stock.RemovePartial(g)
		if next, inProgress := current.IncrementProduction(); inProgress {
			a.stock.AddPartial(next)
			return 0
		}
	} else if started, inProgress := economy.StartPartial(g); inProgress {
		a.stock.AddPartial(started)
		return 0
	}
	a.stock.Add(economy.NewGoodsUnit(g), 1)
	return 1
}

// Consume eats units of nutrition. False means the agent starved.
func (a *Agent) Consume(units uint32) bool {
	return a.stock.Consume(units)
}

func (a *Agent) ChooseAction() economy.Action {
	if a.policy == nil {
		panic("agent: no policy configured for " + a.id)
	}
	return a.policy.ChooseAction(a)
}

// Outcome reports one completed step.
type Outcome struct {
	Step     int64
	Action   economy.Action
	Reward   Reward
	Alive    bool
	Produced uint32
	// Shortfall is the absorbed input error, if any.
	Shortfall error
}

// StepForward runs one step: resolve the action (the policy chooses when
// action is nil), act, eat, record history and reward, then age the stock.
func (a *Agent) StepForward(action *economy.Action) (Outcome, error) {
	if !a.alive {
		return Outcome{}, ErrAgentDead
	}

	var chosen economy.Action
	if action != nil {
		chosen = *action
	} else {
		chosen = a.ChooseAction()
	}

	out := Outcome{Action: chosen}
	produced, err := a.Act(chosen)
	if err != nil {
		slog.Debug("production input missing", "agent_id", a.id, "action", chosen.String(), "error", err)
		out.Shortfall = err
	}
	out.Produced = produced

	alive := a.Consume(a.dailyNutrition)
	reward := a.reward(chosen, alive)

	a.actionHistory = append(a.actionHistory, chosen)
	a.stockHistory = append(a.stockHistory, a.stock.Clone())
	a.rewardHistory = append(a.rewardHistory, reward)

	a.stock = a.stock.StepForward(chosen)
	a.alive = alive
	a.steps++

	out.Step = a.steps
	out.Reward = reward
	out.Alive = alive
	return out, nil
}

func (a *Agent) reward(action economy.Action, alive bool) Reward {
	switch {
	case !alive:
		return a.rewards.Death
	case action.IsLeisure():
		return a.rewards.Leisure
	default:
		return 0
	}
}

func (a *Agent) ActionHistory() []economy.Action {
	return append([]economy.Action(nil), a.actionHistory...)
}

// StockHistory holds the stock after each step's production and meal,
// before aging.
func (a *Agent) StockHistory() []economy.Stock {
	return append([]economy.Stock(nil), a.stockHistory...)
}

func (a *Agent) RewardHistory() []Reward {
	return append([]Reward(nil), a.rewardHistory...)
}
