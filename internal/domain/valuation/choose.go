package valuation

import (
	"crusoe/internal/domain/agent"
	"crusoe/internal/domain/economy"
)

const DefaultLeisureHorizon uint32 = 8

// RationalPolicy chooses actions with an Appraiser.
type RationalPolicy struct {
	LeisureHorizon uint32
}

func (p RationalPolicy) ChooseAction(a *agent.Agent) economy.Action {
	return NewAppraiser(a).ChooseAction(p.LeisureHorizon)
}

// ChooseAction is a greedy one-step heuristic, not a planner:
//
//  1. finish any good already in production;
//  2. rest once the stock alone lasts longer than leisureHorizon steps;
//  3. put held capital to work: build the most valuable downstream capital
//     good not yet held (or its next missing input), else produce the most
//     productive downstream consumer good;
//  4. otherwise produce the good with the highest marginal benefit, berries
//     when nothing beats zero.
func (v Appraiser) ChooseAction(leisureHorizon uint32) economy.Action {
	if partials := v.stock().Partials(); len(partials) > 0 {
		return economy.ProduceGood(partials[0].Good)
	}
	if v.TimestepsTillDeath(nil) > leisureHorizon {
		return economy.Leisure()
	}
	if action, ok := v.downstreamAction(); ok {
		return action
	}

	best := economy.ProduceGood(economy.Berries)
	var bestBenefit float64
	for _, g := range economy.AllGoods() {
		action := economy.ProduceGood(g)
		if benefit := v.MarginalBenefitOfAction(action); benefit > bestBenefit {
			best, bestBenefit = action, benefit
		}
	}
	return best
}

func (v Appraiser) downstreamAction() (economy.Action, bool) {
	var (
		consumer     economy.Good
		consumerRate float64
		haveConsumer bool

		capital      economy.Good
		capitalValue float64
		haveCapital  bool
	)
	for _, held := range v.stock().Goods() {
		if held.IsConsumer() {
			continue
		}
		for _, downstream := range held.Produces() {
			if downstream.IsConsumer() {
				rate, ok := v.base.Productivity(downstream).PerUnitTime()
				if ok && rate > consumerRate {
					consumer, consumerRate, haveConsumer = downstream, rate, true
				}
				continue
			}
			if v.stock().Contains(downstream) {
				continue
			}
			if value := v.MarginalUnitValueOfCapitalGood(downstream); value > capitalValue {
				capital, capitalValue, haveCapital = downstream, value, true
			}
		}
	}

	if haveCapital {
		if v.IsProducible(capital) {
			return economy.ProduceGood(capital), true
		}
		if missing, ok := v.NextMissingInput(capital); ok && v.IsProducible(missing) {
			return economy.ProduceGood(missing), true
		}
	}
	if haveConsumer {
		return economy.ProduceGood(consumer), true
	}
	return economy.Action{}, false
}
