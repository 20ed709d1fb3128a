package economy

// GoodsUnit identifies a quantity bucket: units of one good that share the
// same remaining lifetime are interchangeable.
type GoodsUnit struct {
	Good              Good   `json:"good"`
	RemainingLifetime uint32 `json:"remaining_lifetime"`
}

// NewGoodsUnit returns a freshly produced unit of g.
func NewGoodsUnit(g Good) GoodsUnit {
	return GoodsUnit{Good: g, RemainingLifetime: g.Lifetime()}
}

// UnitQuantity is a bucket together with the number of units it holds.
type UnitQuantity struct {
	Unit     GoodsUnit `json:"unit"`
	Quantity uint32    `json:"quantity"`
}

// PartialGoodsUnit is a multi-step good still in production.
type PartialGoodsUnit struct {
	Good             Good   `json:"good"`
	TimeToCompletion uint32 `json:"time_to_completion"`
}

// StartPartial records the first production action toward g. The returned
// bool is false when g needs only one step, in which case the unit is
// already complete.
func StartPartial(g Good) (PartialGoodsUnit, bool) {
	steps, ok := g.MultipleTimestepsToComplete()
	if !ok {
		panic("economy: partial production of single-step good " + g.String())
	}
	if steps <= 1 {
		return PartialGoodsUnit{}, false
	}
	return PartialGoodsUnit{Good: g, TimeToCompletion: steps - 1}, true
}

// IncrementProduction applies one more production action. It returns false
// when the good is complete.
func (p PartialGoodsUnit) IncrementProduction() (PartialGoodsUnit, bool) {
	if p.TimeToCompletion <= 1 {
		return PartialGoodsUnit{}, false
	}
	p.TimeToCompletion--
	return p, true
}

// StepForward advances the partial through the end of a step. Continuing
// work leaves it unchanged; any other action sets completion back by one
// step and abandons the partial once it is back at the full duration.
func (p PartialGoodsUnit) StepForward(action Action) (PartialGoodsUnit, bool) {
	if g, ok := action.Produced(); ok && g == p.Good {
		return p, true
	}
	steps, _ := p.Good.MultipleTimestepsToComplete()
	p.TimeToCompletion++
	if p.TimeToCompletion >= steps {
		return PartialGoodsUnit{}, false
	}
	return p, true
}
