package economy

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Stock is an agent's inventory: quantity buckets keyed by (good, remaining
// lifetime) plus at most one partial unit per good. A step never mutates a
// Stock in place; StepForward derives the next one.
type Stock struct {
	units    map[GoodsUnit]uint32
	partials []PartialGoodsUnit
}

func NewStock() Stock {
	return Stock{units: make(map[GoodsUnit]uint32)}
}

// Clone returns a deep copy.
func (s Stock) Clone() Stock {
	out := Stock{
		units:    make(map[GoodsUnit]uint32, len(s.units)),
		partials: append([]PartialGoodsUnit(nil), s.partials...),
	}
	for unit, qty := range s.units {
		out.units[unit] = qty
	}
	return out
}

// Add merges quantity units into the bucket for unit. A zero quantity is a
// caller bug.
func (s *Stock) Add(unit GoodsUnit, quantity uint32) {
	if quantity == 0 {
		panic(fmt.Sprintf("economy: add zero quantity of %s", unit.Good))
	}
	if !unit.Good.Valid() {
		panic(unknownGood(unit.Good))
	}
	if unit.RemainingLifetime == 0 {
		panic(fmt.Sprintf("economy: add expired %s", unit.Good))
	}
	if s.units == nil {
		s.units = make(map[GoodsUnit]uint32)
	}
	s.units[unit] += quantity
}

// Remove takes quantity units out of the bucket for unit. The stock is left
// untouched when the bucket is missing or short.
func (s *Stock) Remove(unit GoodsUnit, quantity uint32) error {
	held := s.units[unit]
	if held < quantity || held == 0 {
		return &InsufficientStockError{Unit: unit, Requested: quantity, Held: held}
	}
	if held == quantity {
		delete(s.units, unit)
		return nil
	}
	s.units[unit] = held - quantity
	return nil
}

func (s *Stock) mustRemove(unit GoodsUnit, quantity uint32) {
	if err := s.Remove(unit, quantity); err != nil {
		panic("economy: " + err.Error())
	}
}

// RemoveAll drops every bucket of g and returns how many units were held.
func (s *Stock) RemoveAll(g Good) uint32 {
	var removed uint32
	for unit, qty := range s.units {
		if unit.Good == g {
			removed += qty
			delete(s.units, unit)
		}
	}
	return removed
}

func (s *Stock) AddPartial(p PartialGoodsUnit) {
	if _, ok := s.Partial(p.Good); ok {
		panic("economy: second partial unit for " + p.Good.String())
	}
	if p.TimeToCompletion == 0 {
		panic("economy: partial unit for " + p.Good.String() + " is already complete")
	}
	s.partials = append(s.partials, p)
}

func (s Stock) Partial(g Good) (PartialGoodsUnit, bool) {
	for _, p := range s.partials {
		if p.Good == g {
			return p, true
		}
	}
	return PartialGoodsUnit{}, false
}

// RemovePartial panics when no partial unit of g exists.
func (s *Stock) RemovePartial(g Good) PartialGoodsUnit {
	for i, p := range s.partials {
		if p.Good == g {
			s.partials = append(s.partials[:i:i], s.partials[i+1:]...)
			return p
		}
	}
	panic("economy: no partial unit for " + g.String())
}

// Partials returns the partial units in catalog order.
func (s Stock) Partials() []PartialGoodsUnit {
	out := append([]PartialGoodsUnit(nil), s.partials...)
	sort.Slice(out, func(i, j int) bool { return out[i].Good < out[j].Good })
	return out
}

func (s Stock) Contains(g Good) bool {
	for unit := range s.units {
		if unit.Good == g {
			return true
		}
	}
	return false
}

func (s Stock) CountUnits(g Good) uint32 {
	var n uint32
	for unit, qty := range s.units {
		if unit.Good == g {
			n += qty
		}
	}
	return n
}

// CountMaterialUnits is CountUnits for materials and zero for anything else.
func (s Stock) CountMaterialUnits(g Good) uint32 {
	if !g.IsMaterial() {
		return 0
	}
	return s.CountUnits(g)
}

// IsEmpty reports whether the stock holds neither units nor partials.
func (s Stock) IsEmpty() bool {
	return len(s.units) == 0 && len(s.partials) == 0
}

// Units lists every bucket ordered by good, then remaining lifetime.
func (s Stock) Units() []UnitQuantity {
	out := make([]UnitQuantity, 0, len(s.units))
	for unit, qty := range s.units {
		out = append(out, UnitQuantity{Unit: unit, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Unit.Good != out[j].Unit.Good {
			return out[i].Unit.Good < out[j].Unit.Good
		}
		return out[i].Unit.RemainingLifetime < out[j].Unit.RemainingLifetime
	})
	return out
}

// Goods lists the goods held in catalog order.
func (s Stock) Goods() []Good {
	var out []Good
	for _, g := range AllGoods() {
		if s.Contains(g) {
			out = append(out, g)
		}
	}
	return out
}

// Counts maps each held good to its total quantity.
func (s Stock) Counts() map[Good]uint32 {
	out := make(map[Good]uint32)
	for unit, qty := range s.units {
		out[unit.Good] += qty
	}
	return out
}

// NextConsumables lists consumer-good buckets soonest-to-expire first, ties
// broken by catalog order.
func (s Stock) NextConsumables() []UnitQuantity {
	var out []UnitQuantity
	for unit, qty := range s.units {
		if unit.Good.IsConsumer() {
			out = append(out, UnitQuantity{Unit: unit, Quantity: qty})
		}
	}
	sortByExpiry(out)
	return out
}

// NextCapitalGoodsUnits lists the buckets of capital good g, least remaining
// lifetime first.
func (s Stock) NextCapitalGoodsUnits(g Good) []UnitQuantity {
	if g.IsConsumer() {
		panic("economy: " + g.String() + " is not a capital good")
	}
	var out []UnitQuantity
	for unit, qty := range s.units {
		if unit.Good == g {
			out = append(out, UnitQuantity{Unit: unit, Quantity: qty})
		}
	}
	sortByExpiry(out)
	return out
}

func sortByExpiry(units []UnitQuantity) {
	sort.Slice(units, func(i, j int) bool {
		if units[i].Unit.RemainingLifetime != units[j].Unit.RemainingLifetime {
			return units[i].Unit.RemainingLifetime < units[j].Unit.RemainingLifetime
		}
		return units[i].Unit.Good < units[j].Unit.Good
	})
}

// Consume eats units of nutrition, soonest-to-expire first. It returns false
// when the stock runs out before the requirement is met; whatever was eaten
// stays eaten.
func (s *Stock) Consume(units uint32) bool {
	remaining := units
	for _, next := range s.NextConsumables() {
		if remaining == 0 {
			break
		}
		take := min(next.Quantity, remaining)
		s.mustRemove(next.Unit, take)
		remaining -= take
	}
	return remaining == 0
}

// InputsSatisfied reports whether every required input of g is held.
func (s Stock) InputsSatisfied(g Good) bool {
	for _, in := range g.RequiredInputs() {
		if !s.Contains(in) {
			return false
		}
	}
	return true
}

// IsUsed reports whether capital good g takes part in action: it must
// enable the produced good, be held, and the recipe must be feasible.
func (s Stock) IsUsed(g Good, action Action) bool {
	produced, ok := action.Produced()
	if !ok {
		return false
	}
	return produced.IsProducedUsing(g) && s.Contains(g) && s.InputsSatisfied(produced)
}

// DegradeCapitalStock applies the input side of a production action:
// materials lose one unit, transformed sources are used up and every durable
// capital good in use wears its least-lifetime unit by one use.
func (s *Stock) DegradeCapitalStock(action Action) error {
	produced, ok := action.Produced()
	if !ok {
		return nil
	}

	var materials, worn []Good
	for _, g := range AllGoods() {
		if g.IsConsumer() || !produced.IsProducedUsing(g) {
			continue
		}
		if g.IsMaterial() {
			materials = append(materials, g)
			continue
		}
		if s.IsUsed(g, action) {
			worn = append(worn, g)
		}
	}
	source, transforms := produced.TransformedFrom()
	transforms = transforms && s.InputsSatisfied(produced)

	for _, m := range materials {
		units := s.NextCapitalGoodsUnits(m)
		if len(units) == 0 {
			return &InsufficientStockError{Unit: NewGoodsUnit(m), Requested: 1}
		}
		s.mustRemove(units[0].Unit, 1)
	}
	if transforms {
		s.RemoveAll(source)
	}
	for _, g := range worn {
		unit := s.NextCapitalGoodsUnits(g)[0].Unit
		s.mustRemove(unit, 1)
		if unit.RemainingLifetime > 1 {
			s.Add(GoodsUnit{Good: g, RemainingLifetime: unit.RemainingLifetime - 1}, 1)
		}
	}
	return nil
}

// StepForward derives the stock at the start of the next step. Consumer
// goods and materials spoil by one day, goods kept next to an improver are
// refreshed instead, and durable capital is left alone. Partial units follow
// PartialGoodsUnit.StepForward.
func (s Stock) StepForward(action Action) Stock {
	next := NewStock()
	for unit, qty := range s.units {
		g := unit.Good
		if improver, ok := s.improverOf(g); ok {
			inc := g.LifetimeImprovementIncrement(improver)
			next.Add(GoodsUnit{Good: g, RemainingLifetime: min(unit.RemainingLifetime+inc, g.Lifetime()+inc)}, qty)
			continue
		}
		if g.IsConsumer() || g.IsMaterial() {
			if unit.RemainingLifetime <= 1 {
				continue
			}
			next.Add(GoodsUnit{Good: g, RemainingLifetime: unit.RemainingLifetime - 1}, qty)
			continue
		}
		next.Add(unit, qty)
	}
	for _, p := range s.Partials() {
		if stepped, ok := p.StepForward(action); ok {
			next.partials = append(next.partials, stepped)
		}
	}
	return next
}

func (s Stock) improverOf(g Good) (Good, bool) {
	var (
		best    Good
		bestInc uint32
	)
	for _, h := range AllGoods() {
		if !g.IsImprovedUsing(h) || !s.Contains(h) {
			continue
		}
		if inc := g.LifetimeImprovementIncrement(h); inc > bestInc {
			best, bestInc = h, inc
		}
	}
	return best, bestInc > 0
}

type stockJSON struct {
	Units    []UnitQuantity     `json:"units"`
	Partials []PartialGoodsUnit `json:"partials,omitempty"`
}

func (s Stock) MarshalJSON() ([]byte, error) {
	return json.Marshal(stockJSON{Units: s.Units(), Partials: s.Partials()})
}

func (s *Stock) UnmarshalJSON(data []byte) error {
	var raw stockJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out, err := StockFrom(raw.Units, raw.Partials)
	if err != nil {
		return err
	}
	*s = out
	return nil
}

// StockFrom builds a stock from external input, reporting what Add and
// AddPartial would otherwise panic on.
func StockFrom(units []UnitQuantity, partials []PartialGoodsUnit) (Stock, error) {
	out := NewStock()
	for _, uq := range units {
		if !uq.Unit.Good.Valid() {
			return Stock{}, fmt.Errorf("%w: %d", ErrUnknownGood, uint8(uq.Unit.Good))
		}
		if uq.Quantity == 0 || uq.Unit.RemainingLifetime == 0 {
			return Stock{}, fmt.Errorf("invalid bucket %s@%d x%d", uq.Unit.Good, uq.Unit.RemainingLifetime, uq.Quantity)
		}
		out.Add(uq.Unit, uq.Quantity)
	}
	for _, p := range partials {
		if !p.Good.Valid() {
			return Stock{}, fmt.Errorf("%w: %d", ErrUnknownGood, uint8(p.Good))
		}
		steps, ok := p.Good.MultipleTimestepsToComplete()
		if !ok {
			return Stock{}, fmt.Errorf("invalid partial unit for %s", p.Good)
		}
		if p.TimeToCompletion == 0 || p.TimeToCompletion >= steps {
			return Stock{}, fmt.Errorf("partial %s time to completion %d out of range", p.Good, p.TimeToCompletion)
		}
		if _, dup := out.Partial(p.Good); dup {
			return Stock{}, fmt.Errorf("duplicate partial unit for %s", p.Good)
		}
		out.AddPartial(p)
	}
	return out, nil
}
