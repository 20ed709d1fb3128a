// Package valuation estimates what goods and actions are worth to an agent by
// simulating its stock forward on disposable copies.
//
// Values are measured in steps of work: the marginal value of a consumer good
// is the least time any consumer good needs to deliver the same extra
// survival, and a capital good is worth the best value it creates
// downstream over its remaining uses.
package valuation

import (
	"math"

	"crusoe/internal/domain/agent"
	"crusoe/internal/domain/economy"
)

// CountTimestepsTillDeath counts how many steps stock feeds an agent that
// eats dailyNutrition units per step and produces nothing, optionally with one
// extra fresh unit of additional.
func CountTimestepsTillDeath(stock economy.Stock, dailyNutrition uint32, additional *economy.Good) uint32 {
	if dailyNutrition == 0 {
		panic("valuation: daily nutrition must be positive")
	}
	s := stock.Clone()
	if additional != nil {
		s.Add(economy.NewGoodsUnit(*additional), 1)
	}
	var steps uint32
	for s.Consume(dailyNutrition) {
		s = s.StepForward(economy.Leisure())
		steps++
	}
	return steps
}

// Appraiser values goods for a fixed snapshot of an agent. It works on
// clones and never touches the agent it was built from.
type Appraiser struct {
	base *agent.Agent
}

func NewAppraiser(a *agent.Agent) Appraiser {
	return Appraiser{base: a.Clone()}
}

func (v Appraiser) dummy() *agent.Agent {
	return v.base.Clone()
}

func (v Appraiser) stock() *economy.Stock {
	return v.base.Stock()
}

// TimestepsTillDeath is the survival horizon of the snapshot.
func (v Appraiser) TimestepsTillDeath(additional *economy.Good) uint32 {
	return CountTimestepsTillDeath(*v.stock(), v.base.DailyNutrition(), additional)
}

// AdditionalSustenance is the number of extra steps one more unit of g
// keeps the agent alive.
func (v Appraiser) AdditionalSustenance(g economy.Good) uint32 {
	with := v.TimestepsTillDeath(&g)
	without := v.TimestepsTillDeath(nil)
	if with <= without {
		return 0
	}
	return with - without
}

// TimeToProduceUnits is the fractional number of steps needed to produce
// quantity more units of g, counting only the used share of the last step.
// False when production stalls before reaching quantity.
func (v Appraiser) TimeToProduceUnits(g economy.Good, quantity uint32) (float64, bool) {
	if quantity == 0 {
		return 0, true
	}
	d := v.dummy()
	start := d.Stock().CountUnits(g)
	action := economy.ProduceGood(g)
	var steps uint32
	for {
		perStep, ok := d.Productivity(g).PerUnitTime()
		if !ok {
			return 0, false
		}
		_, _ = d.Act(action)
		steps++

		held := d.Stock().CountUnits(g)
		if held < start {
			return 0, false
		}
		if produced := held - start; produced >= quantity {
			excess := float64(produced - quantity)
			return float64(steps-1) + (perStep-excess)/perStep, true
		}
	}
}

// TimeToEquivSustenance is the time alt needs to add target steps of
// survival. The search gives up once the time exceeds limit.
func (v Appraiser) TimeToEquivSustenance(alt economy.Good, target uint32, limit float64) (float64, bool) {
	if !alt.IsConsumer() || target == 0 || v.base.Productivity(alt).IsNone() {
		return 0, false
	}
	nutrition := v.base.DailyNutrition()
	baseline := v.TimestepsTillDeath(nil)
	// Past this many units every extra unit spoils before it is eaten.
	maxUnits := nutrition * (baseline + target + 1)

	d := v.dummy()
	for n := uint32(1); n <= maxUnits; n++ {
		d.Acquire(alt, 1)
		var gained uint32
		if horizon := CountTimestepsTillDeath(*d.Stock(), nutrition, nil); horizon > baseline {
			gained = horizon - baseline
		}
		t, ok := v.TimeToProduceUnits(alt, n)
		if !ok {
			return 0, false
		}
		if gained >= target {
			return t, true
		}
		if t > limit {
			return 0, false
		}
	}
	return 0, false
}

// MarginalUnitValueOfConsumerGood is the cheapest time, over every consumer
// good, to replace the survival one more unit of g adds.
func (v Appraiser) MarginalUnitValueOfConsumerGood(g economy.Good) float64 {
	target := v.AdditionalSustenance(g)
	if target == 0 {
		return 0
	}
	best := math.Inf(1)
	for _, alt := range economy.AllGoods() {
		if !alt.IsConsumer() {
			continue
		}
		if t, ok := v.TimeToEquivSustenance(alt, target, best); ok && t < best {
			best = t
		}
	}
	if math.IsInf(best, 1) {
		return 0
	}
	return best
}

// MarginalBenefitOfProducingConsumerGoods sums the marginal value of every
// unit one action of g yields, adding each unit before valuing the next.
func (v Appraiser) MarginalBenefitOfProducingConsumerGoods(g economy.Good) float64 {
	p := v.base.Productivity(g)
	if p.Kind != economy.ProductivityImmediate {
		return 0
	}
	running := v.dummy()
	if source, ok := g.TransformedFrom(); ok {
		running.Stock().RemoveAll(source)
	}
	var sum float64
	for i := uint32(0); i < p.Value; i++ {
		sum += NewAppraiser(running).MarginalUnitValueOfConsumerGood(g)
		running.Acquire(g, 1)
	}
	return sum
}

func uses(g economy.Good) float64 {
	if g.IsMaterial() {
		return 1
	}
	return float64(g.Lifetime())
}

// MarginalUnitValueOfCapitalGood is the value one more unit of g creates in
// its best downstream use.
func (v Appraiser) MarginalUnitValueOfCapitalGood(g economy.Good) float64 {
	var best float64
	for _, downstream := range g.Produces() {
		if value := v.ValueGeneratedByHigherOrderGood(g, downstream); value > best {
			best = value
		}
	}
	return best
}

// ValueGeneratedByHigherOrderGood values higher as an input to lower: directly
// for consumer goods, otherwise as lower's own capital value times the uses
// higher grants.
func (v Appraiser) ValueGeneratedByHigherOrderGood(higher, lower economy.Good) float64 {
	if lower.IsConsumer() {
		return v.ValueGeneratedByFirstOrderCapitalGood(higher, lower)
	}
	return uses(higher) * v.MarginalUnitValueOfCapitalGood(lower)
}

// ValueGeneratedByFirstOrderCapitalGood values one unit of capital by the
// extra units of consumer it enables per use, over its uses. Units already
// held dilute the value of one more.
func (v Appraiser) ValueGeneratedByFirstOrderCapitalGood(capital, consumer economy.Good) float64 {
	d := v.dummy()
	factor := 1.0
	if held := d.Stock().NextCapitalGoodsUnits(capital); len(held) > 0 {
		var usable float64
		for _, uq := range held {
			usable += float64(uq.Quantity) * float64(uq.Unit.RemainingLifetime)
			if err := d.Stock().Remove(uq.Unit, uq.Quantity); err != nil {
				panic("valuation: " + err.Error())
			}
		}
		fresh := float64(capital.Lifetime())
		factor = fresh / (fresh + usable)
	}

	sans := immediateQuantity(d.Productivity(consumer))
	with := d.Clone()
	with.Acquire(capital, 1)
	enabled := immediateQuantity(with.Productivity(consumer))
	if enabled <= sans {
		return 0
	}

	running := d.Clone()
	if source, ok := consumer.TransformedFrom(); ok {
		running.Stock().RemoveAll(source)
	}
	if sans > 0 {
		running.Acquire(consumer, sans)
	}
	var sum float64
	for i := sans; i < enabled; i++ {
		sum += NewAppraiser(running).MarginalUnitValueOfConsumerGood(consumer)
		running.Acquire(consumer, 1)
	}
	return factor * uses(capital) * sum
}

func immediateQuantity(p economy.Productivity) uint32 {
	if p.Kind == economy.ProductivityImmediate {
		return p.Value
	}
	return 0
}

// IsProducible reports whether the agent can see production of g through:
// the snapshot survives at least one production interval and holds enough
// material inputs for it.
func (v Appraiser) IsProducible(g economy.Good) bool {
	interval, ok := v.base.Productivity(g).Interval()
	if !ok {
		return false
	}
	if g.IsConsumer() {
		return true
	}
	if v.TimestepsTillDeath(nil) < interval {
		return false
	}
	for _, in := range g.RequiredInputs() {
		if in.IsMaterial() && v.stock().CountMaterialUnits(in) < interval {
			return false
		}
	}
	return true
}

// NextMissingInput walks up the inputs of g to the first missing input the
// agent could start producing now.
func (v Appraiser) NextMissingInput(g economy.Good) (economy.Good, bool) {
	interval, ok := v.base.Productivity(g).Interval()
	if !ok {
		interval, ok = g.MultipleTimestepsToComplete()
		if !ok {
			interval = 1
		}
	}
	for _, in := range g.RequiredInputs() {
		short := !v.stock().Contains(in) || (in.IsMaterial() && v.stock().CountMaterialUnits(in) < interval)
		if !short {
			continue
		}
		if !v.base.Productivity(in).IsNone() {
			return in, true
		}
		return v.NextMissingInput(in)
	}
	return 0, false
}

// MarginalBenefitOfProducingCapitalGoods is the capital value produced per
// step, zero when g cannot be seen through.
func (v Appraiser) MarginalBenefitOfProducingCapitalGoods(g economy.Good) float64 {
	perStep, ok := v.base.Productivity(g).PerUnitTime()
	if !ok || !v.IsProducible(g) {
		return 0
	}
	return perStep * v.MarginalUnitValueOfCapitalGood(g)
}

func (v Appraiser) MarginalBenefitOfAction(action economy.Action) float64 {
	g, ok := action.Produced()
	if !ok {
		return 0
	}
	if g.IsConsumer() {
		return v.MarginalBenefitOfProducingConsumerGoods(g)
	}
	return v.MarginalBenefitOfProducingCapitalGoods(g)
}

type ActionBenefit struct {
	Action     economy.Action
	Benefit    float64
	Producible bool
}

// Benefits values every action in AllActions order.
func (v Appraiser) Benefits() []ActionBenefit {
	actions := economy.AllActions()
	out := make([]ActionBenefit, 0, len(actions))
	for _, action := range actions {
		b := ActionBenefit{Action: action, Benefit: v.MarginalBenefitOfAction(action), Producible: true}
		if g, ok := action.Produced(); ok {
			b.Producible = v.IsProducible(g)
		}
		out = append(out, b)
	}
	return out
}
