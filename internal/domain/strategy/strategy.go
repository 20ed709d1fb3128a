// Package strategy resolves agent policies by name.
package strategy

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"

	"crusoe/internal/domain/agent"
	"crusoe/internal/domain/valuation"
)

const (
	Rational = "rational"
	Random   = "random"
	Weighted = "weighted"
)

var ErrUnknownStrategy = errors.New("unknown strategy")

type Settings struct {
	LeisureHorizon     uint32
	LeisureProbability float64
	Seed               int64
}

func DefaultSettings() Settings {
	return Settings{LeisureHorizon: valuation.DefaultLeisureHorizon, LeisureProbability: 0.2}
}

func Names() []string {
	return []string{Rational, Random, Weighted}
}

// Normalize maps an empty name to Rational and validates the rest.
func Normalize(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Rational, nil
	}
	for _, known := range Names() {
		if name == known {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

func Resolve(name string, s Settings) (agent.Policy, error) {
	name, err := Normalize(name)
	if err != nil {
		return nil, err
	}
	switch name {
	case Random:
		return agent.RandomPolicy{Rand: rand.New(rand.NewSource(s.Seed))}, nil
	case Weighted:
		return agent.WeightedRandomPolicy{Rand: rand.New(rand.NewSource(s.Seed)), LeisureProbability: s.LeisureProbability}, nil
	default:
		return valuation.RationalPolicy{LeisureHorizon: s.LeisureHorizon}, nil
	}
}

// SeedFor derives a per-step seed so a stored agent replays the same random
// choices.
func SeedFor(base int64, agentID string, step int64) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(agentID))
	return base ^ int64(h.Sum64()) ^ (step * 0x9E3779B9)
}
