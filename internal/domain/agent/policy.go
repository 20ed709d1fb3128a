package agent

import (
	"math/rand"

	"crusoe/internal/domain/economy"
)

// RandomPolicy picks uniformly among every action.
type RandomPolicy struct {
	Rand *rand.Rand
}

func (p RandomPolicy) ChooseAction(*Agent) economy.Action {
	actions := economy.AllActions()
	return actions[p.Rand.Intn(len(actions))]
}

// WeightedRandomPolicy rests with probability LeisureProbability and
// otherwise produces a uniformly chosen good.
type WeightedRandomPolicy struct {
	Rand               *rand.Rand
	LeisureProbability float64
}

func (p WeightedRandomPolicy) ChooseAction(*Agent) economy.Action {
	if p.Rand.Float64() < p.LeisureProbability {
		return economy.Leisure()
	}
	goods := economy.AllGoods()
	return economy.ProduceGood(goods[p.Rand.Intn(len(goods))])
}

// ActionModel is an externally trained decision model.
type ActionModel interface {
	SelectAction(stock economy.Stock) economy.Action
}

// ModelPolicy delegates the choice to an ActionModel, handing it a copy of
// the stock.
type ModelPolicy struct {
	Model ActionModel
}

func (p ModelPolicy) ChooseAction(a *Agent) economy.Action {
	return p.Model.SelectAction(a.Stock().Clone())
}
