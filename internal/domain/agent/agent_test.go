package agent

import (
	"errors"
	"math/rand"
	"testing"

	"crusoe/internal/domain/economy"

	"github.com/google/go-cmp/cmp"
)

type fixedPolicy struct {
	action economy.Action
}

func (p fixedPolicy) ChooseAction(*Agent) economy.Action { return p.action }

func newTestAgent(t *testing.T, units ...economy.UnitQuantity) *Agent {
	t.Helper()
	s := economy.NewStock()
	for _, uq := range units {
		s.Add(uq.Unit, uq.Quantity)
	}
	return New("agent-1", s, DefaultConfig(), fixedPolicy{action: economy.Leisure()})
}

func fresh(g economy.Good, qty uint32) economy.UnitQuantity {
	return economy.UnitQuantity{Unit: economy.NewGoodsUnit(g), Quantity: qty}
}

func TestStepForward_LeisureEatsAndAgesBerries(t *testing.T) {
	a := newTestAgent(t, fresh(economy.Berries, 5))
	leisure := economy.Leisure()

	out, err := a.StepForward(&leisure)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if !out.Alive || out.Reward != 1 || out.Step != 1 {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	want := []economy.UnitQuantity{{Unit: economy.GoodsUnit{Good: economy.Berries, RemainingLifetime: 9}, Quantity: 2}}
	if diff := cmp.Diff(want, a.Stock().Units()); diff != "" {
		t.Fatalf("stock mismatch (-want +got):\n%s", diff)
	}
}

func TestAct_TwoStepSmokerConsumesOneTimberPerAction(t *testing.T) {
	a := newTestAgent(t, fresh(economy.Timber, 3), fresh(economy.Axe, 1))
	build := economy.ProduceGood(economy.Smoker)

	produced, err := a.Act(build)
	if err != nil || produced != 0 {
		t.Fatalf("first action: produced=%d err=%v", produced, err)
	}
	p, ok := a.Stock().Partial(economy.Smoker)
	if !ok || p.TimeToCompletion != 1 {
		t.Fatalf("expected partial smoker with 1 step left, got %+v ok=%v", p, ok)
	}
	if got := a.Stock().CountUnits(economy.Timber); got != 2 {
		t.Fatalf("timber after first action: got=%d want=2", got)
	}

	produced, err = a.Act(build)
	if err != nil || produced != 1 {
		t.Fatalf("second action: produced=%d err=%v", produced, err)
	}
	if _, ok := a.Stock().Partial(economy.Smoker); ok {
		t.Fatalf("partial smoker should be gone after completion")
	}
	if got := a.Stock().CountUnits(economy.Smoker); got != 1 {
		t.Fatalf("smoker count: got=%d want=1", got)
	}
	if got := a.Stock().CountUnits(economy.Timber); got != 1 {
		t.Fatalf("timber after completion: got=%d want=1", got)
	}
	axes := a.Stock().NextCapitalGoodsUnits(economy.Axe)
	if len(axes) != 1 || axes[0].Unit.RemainingLifetime != 5 {
		t.Fatalf("axe must not wear while building a smoker, got %v", axes)
	}
}

func TestStepForward_ContinuedPartialSurvivesTheNight(t *testing.T) {
	a := newTestAgent(t, fresh(economy.Timber, 3), fresh(economy.Berries, 6))
	build := economy.ProduceGood(economy.Smoker)

	if _, err := a.StepForward(&build); err != nil {
		t.Fatalf("step 1: %v", err)
	}
	if p, ok := a.Stock().Partial(economy.Smoker); !ok || p.TimeToCompletion != 1 {
		t.Fatalf("expected partial smoker kept overnight, got %+v ok=%v", p, ok)
	}
	out, err := a.StepForward(&build)
	if err != nil {
		t.Fatalf("step 2: %v", err)
	}
	if out.Produced != 1 || out.Reward != 0 || !out.Alive {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if a.Stock().CountUnits(economy.Smoker) != 1 || a.Stock().CountUnits(economy.Timber) != 1 {
		t.Fatalf("unexpected stock: %v", a.Stock().Units())
	}
}

func TestAct_MultiStepGoodCompletesInExactlyItsDuration(t *testing.T) {
	steps, _ := economy.Boat.MultipleTimestepsToComplete()
	a := newTestAgent(t, fresh(economy.Timber, steps))
	build := economy.ProduceGood(economy.Boat)

	for i := uint32(1); i < steps; i++ {
		if _, err := a.Act(build); err != nil {
			t.Fatalf("action %d: %v", i, err)
		}
		if a.Stock().Contains(economy.Boat) {
			t.Fatalf("boat finished early after %d actions", i)
		}
	}
	if _, err := a.Act(build); err != nil {
		t.Fatalf("final action: %v", err)
	}
	if !a.Stock().Contains(economy.Boat) || a.Stock().Contains(economy.Timber) {
		t.Fatalf("expected boat and no timber, got %v", a.Stock().Units())
	}
}

func TestAct_InfeasibleProductionHasNoEffect(t *testing.T) {
	a := newTestAgent(t, fresh(economy.Berries, 1))
	before := a.Stock().Units()
	produced, err := a.Act(economy.ProduceGood(economy.Timber))
	if err != nil || produced != 0 {
		t.Fatalf("timber without axe: produced=%d err=%v", produced, err)
	}
	if diff := cmp.Diff(before, a.Stock().Units()); diff != "" {
		t.Fatalf("infeasible action changed stock (-want +got):\n%s", diff)
	}
}

func TestAct_SmokingConvertsHeldFish(t *testing.T) {
	a := newTestAgent(t, fresh(economy.Smoker, 1), fresh(economy.Fish, 4))
	produced, err := a.Act(economy.ProduceGood(economy.SmokedFish))
	if err != nil || produced != 4 {
		t.Fatalf("smoke: produced=%d err=%v", produced, err)
	}
	if a.Stock().Contains(economy.Fish) || a.Stock().CountUnits(economy.SmokedFish) != 4 {
		t.Fatalf("unexpected stock: %v", a.Stock().Units())
	}
	smokers := a.Stock().NextCapitalGoodsUnits(economy.Smoker)
	if len(smokers) != 1 || smokers[0].Unit.RemainingLifetime != 4 {
		t.Fatalf("expected worn smoker, got %v", smokers)
	}
}

func TestStepForward_DeathIsFinal(t *testing.T) {
	a := newTestAgent(t, fresh(economy.Berries, 2))
	out, err := a.StepForward(nil)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if out.Alive || out.Reward != DefaultRewards().Death {
		t.Fatalf("expected death, got %+v", out)
	}
	if _, err := a.StepForward(nil); !errors.Is(err, ErrAgentDead) {
		t.Fatalf("expected ErrAgentDead, got %v", err)
	}
	if len(a.ActionHistory()) != 1 || len(a.RewardHistory()) != 1 || len(a.StockHistory()) != 1 {
		t.Fatalf("history should record exactly one step")
	}
}

func TestStepForward_UsesPolicyWhenNoActionGiven(t *testing.T) {
	a := newTestAgent(t, fresh(economy.Berries, 9))
	a.SetPolicy(fixedPolicy{action: economy.ProduceGood(economy.Fish)})

	out, err := a.StepForward(nil)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if out.Action != economy.ProduceGood(economy.Fish) || out.Produced != 2 || out.Reward != 0 {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	// Two fresh fish are eaten before berries.
	if got := a.Stock().CountUnits(economy.Fish); got != 0 {
		t.Fatalf("fish left: got=%d want=0", got)
	}
	if got := a.Stock().CountUnits(economy.Berries); got != 8 {
		t.Fatalf("berries left: got=%d want=8", got)
	}
}

func TestClone_IsIsolated(t *testing.T) {
	a := newTestAgent(t, fresh(economy.Berries, 5))
	c := a.Clone()
	c.Acquire(economy.Basket, 1)
	if _, err := c.Act(economy.ProduceGood(economy.Berries)); err != nil {
		t.Fatalf("act: %v", err)
	}
	if a.Stock().Contains(economy.Basket) || a.Stock().CountUnits(economy.Berries) != 5 {
		t.Fatalf("clone leaked into original: %v", a.Stock().Units())
	}
}

func TestRestore_RoundTripsState(t *testing.T) {
	a := newTestAgent(t, fresh(economy.Berries, 7))
	leisure := economy.Leisure()
	if _, err := a.StepForward(&leisure); err != nil {
		t.Fatalf("step: %v", err)
	}
	state := a.State()
	b := Restore(state, DefaultConfig(), nil)
	if b.Steps() != 1 || !b.Alive() || b.ID() != "agent-1" {
		t.Fatalf("unexpected restored agent: steps=%d alive=%v id=%q", b.Steps(), b.Alive(), b.ID())
	}
	if diff := cmp.Diff(a.Stock().Units(), b.Stock().Units()); diff != "" {
		t.Fatalf("restored stock mismatch (-want +got):\n%s", diff)
	}
}

type cannedModel struct {
	seen []economy.Stock
}

func (m *cannedModel) SelectAction(s economy.Stock) economy.Action {
	m.seen = append(m.seen, s)
	return economy.ProduceGood(economy.Spear)
}

func TestModelPolicy_DelegatesToModel(t *testing.T) {
	model := &cannedModel{}
	a := newTestAgent(t, fresh(economy.Berries, 3))
	a.SetPolicy(ModelPolicy{Model: model})

	if got := a.ChooseAction(); got != economy.ProduceGood(economy.Spear) {
		t.Fatalf("model action mismatch: got=%v", got)
	}
	if len(model.seen) != 1 || model.seen[0].CountUnits(economy.Berries) != 3 {
		t.Fatalf("model should see the stock once")
	}
}

func TestRandomPolicies(t *testing.T) {
	a := newTestAgent(t)
	always := WeightedRandomPolicy{Rand: rand.New(rand.NewSource(7)), LeisureProbability: 1}
	never := WeightedRandomPolicy{Rand: rand.New(rand.NewSource(7)), LeisureProbability: 0}
	uniform := RandomPolicy{Rand: rand.New(rand.NewSource(7))}
	for i := 0; i < 50; i++ {
		if !always.ChooseAction(a).IsLeisure() {
			t.Fatalf("probability 1 must always rest")
		}
		if never.ChooseAction(a).IsLeisure() {
			t.Fatalf("probability 0 must never rest")
		}
		if g, ok := uniform.ChooseAction(a).Produced(); ok && !g.Valid() {
			t.Fatalf("random policy produced an unknown good %d", g)
		}
	}
}
