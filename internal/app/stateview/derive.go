package stateview

import (
	"crusoe/internal/app/ports"
	"crusoe/internal/domain/agent"
	"crusoe/internal/domain/economy"
	"crusoe/internal/domain/valuation"
)

const lowFoodThreshold = 3

type Unit struct {
	Good              economy.Good `json:"good"`
	RemainingLifetime uint32       `json:"remaining_lifetime"`
	Quantity          uint32       `json:"quantity"`
}

type Partial struct {
	Good             economy.Good `json:"good"`
	TimeToCompletion uint32       `json:"time_to_completion"`
}

type View struct {
	AgentID            string            `json:"agent_id"`
	Strategy           string            `json:"strategy"`
	Alive              bool              `json:"alive"`
	Steps              int64             `json:"steps"`
	Version            int64             `json:"version"`
	DailyNutrition     uint32            `json:"daily_nutrition"`
	Counts             map[string]uint32 `json:"counts"`
	Units              []Unit            `json:"units"`
	Partials           []Partial         `json:"partials"`
	Productivity       map[string]string `json:"productivity"`
	TimestepsTillDeath uint32            `json:"timesteps_till_death"`
	StatusEffects      []string          `json:"status_effects"`
}

// AgentFrom restores the agent held by rec. The record's daily nutrition
// wins over cfg when set.
func AgentFrom(rec ports.AgentRecord, cfg agent.Config, policy agent.Policy) *agent.Agent {
	if rec.DailyNutrition > 0 {
		cfg.DailyNutrition = rec.DailyNutrition
	}
	if cfg.DailyNutrition == 0 {
		cfg.DailyNutrition = agent.DefaultConfig().DailyNutrition
	}
	return agent.Restore(rec.AgentState(), cfg, policy)
}

func Derive(rec ports.AgentRecord) View {
	a := AgentFrom(rec, agent.DefaultConfig(), nil)
	stock := a.Stock()

	view := View{
		AgentID:        rec.AgentID,
		Strategy:       rec.Strategy,
		Alive:          rec.Alive,
		Steps:          rec.Steps,
		Version:        rec.Version,
		DailyNutrition: a.DailyNutrition(),
		Counts:         map[string]uint32{},
		Units:          []Unit{},
		Partials:       []Partial{},
		Productivity:   map[string]string{},
	}
	for g, n := range stock.Counts() {
		view.Counts[g.String()] = n
	}
	for _, uq := range stock.Units() {
		view.Units = append(view.Units, Unit{Good: uq.Unit.Good, RemainingLifetime: uq.Unit.RemainingLifetime, Quantity: uq.Quantity})
	}
	for _, p := range stock.Partials() {
		view.Partials = append(view.Partials, Partial{Good: p.Good, TimeToCompletion: p.TimeToCompletion})
	}
	for _, g := range economy.AllGoods() {
		view.Productivity[g.String()] = a.Productivity(g).String()
	}
	view.TimestepsTillDeath = valuation.CountTimestepsTillDeath(*stock, a.DailyNutrition(), nil)
	view.StatusEffects = deriveStatusEffects(view)
	return view
}

func deriveStatusEffects(v View) []string {
	effects := make([]string, 0, 3)
	if !v.Alive {
		return append(effects, "DEAD")
	}
	if v.TimestepsTillDeath == 0 {
		effects = append(effects, "STARVING")
	} else if v.TimestepsTillDeath < lowFoodThreshold {
		effects = append(effects, "LOW_FOOD")
	}
	if len(v.Partials) > 0 {
		effects = append(effects, "IN_PRODUCTION")
	}
	return effects
}
