package strategy

import (
	"errors"
	"testing"

	"crusoe/internal/domain/agent"
	"crusoe/internal/domain/valuation"
)

func TestResolve(t *testing.T) {
	p, err := Resolve("", DefaultSettings())
	if err != nil {
		t.Fatalf("resolve default: %v", err)
	}
	if rp, ok := p.(valuation.RationalPolicy); !ok || rp.LeisureHorizon != valuation.DefaultLeisureHorizon {
		t.Fatalf("expected rational policy, got %#v", p)
	}
	if p, _ := Resolve(" Random ", DefaultSettings()); p == nil {
		t.Fatalf("expected random policy")
	} else if _, ok := p.(agent.RandomPolicy); !ok {
		t.Fatalf("expected RandomPolicy, got %T", p)
	}
	if p, _ := Resolve(Weighted, Settings{LeisureProbability: 0.5}); p.(agent.WeightedRandomPolicy).LeisureProbability != 0.5 {
		t.Fatalf("weighted probability not carried")
	}
	if _, err := Resolve("q-learning", DefaultSettings()); !errors.Is(err, ErrUnknownStrategy) {
		t.Fatalf("expected ErrUnknownStrategy, got %v", err)
	}
}

func TestSeedFor_StableAndStepDependent(t *testing.T) {
	if SeedFor(1, "a", 3) != SeedFor(1, "a", 3) {
		t.Fatalf("seed must be stable")
	}
	if SeedFor(1, "a", 3) == SeedFor(1, "a", 4) {
		t.Fatalf("seed should differ between steps")
	}
}
