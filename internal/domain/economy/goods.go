package economy

import (
	"fmt"
	"strings"
)

// Good is an element of the closed catalog of goods. The zero value is Berries.
type Good uint8

const (
	Berries Good = iota
	Fish
	SmokedFish
	Basket
	Spear
	Smoker
	Boat
	Timber
	Axe

	goodCount
)

// AllGoods returns every good in catalog order.
func AllGoods() []Good {
	out := make([]Good, 0, goodCount)
	for g := Berries; g < goodCount; g++ {
		out = append(out, g)
	}
	return out
}

func (g Good) Valid() bool {
	return g < goodCount
}

func (g Good) String() string {
	switch g {
	case Berries:
		return "berries"
	case Fish:
		return "fish"
	case SmokedFish:
		return "smoked_fish"
	case Basket:
		return "basket"
	case Spear:
		return "spear"
	case Smoker:
		return "smoker"
	case Boat:
		return "boat"
	case Timber:
		return "timber"
	case Axe:
		return "axe"
	default:
		return fmt.Sprintf("good(%d)", uint8(g))
	}
}

// ParseGood resolves a catalog name such as "smoked_fish".
func ParseGood(name string) (Good, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, g := range AllGoods() {
		if g.String() == name {
			return g, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownGood, name)
}

func (g Good) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownGood, uint8(g))
	}
	return []byte(g.String()), nil
}

func (g *Good) UnmarshalText(text []byte) error {
	parsed, err := ParseGood(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// IsConsumer reports whether the good is eaten for survival.
func (g Good) IsConsumer() bool {
	switch g {
	case Berries, Fish, SmokedFish:
		return true
	case Basket, Spear, Smoker, Boat, Timber, Axe:
		return false
	default:
		panic(unknownGood(g))
	}
}

// IsMaterial reports whether the good is destroyed by a single use.
func (g Good) IsMaterial() bool {
	switch g {
	case Timber:
		return true
	case Berries, Fish, SmokedFish, Basket, Spear, Smoker, Boat, Axe:
		return false
	default:
		panic(unknownGood(g))
	}
}

// IsCapital reports whether the good is used to produce other goods
// rather than eaten.
func (g Good) IsCapital() bool {
	return !g.IsConsumer()
}

// RequiredInputs lists the goods that must be held for production of g to
// proceed at all.
func (g Good) RequiredInputs() []Good {
	switch g {
	case SmokedFish:
		return []Good{Smoker}
	case Smoker, Boat:
		return []Good{Timber}
	case Timber:
		return []Good{Axe}
	case Berries, Fish, Basket, Spear, Axe:
		return nil
	default:
		panic(unknownGood(g))
	}
}

// IsProducedUsing reports whether holding other enables or increases
// production of g.
func (g Good) IsProducedUsing(other Good) bool {
	switch g {
	case Berries:
		return other == Basket
	case Fish:
		return other == Spear || other == Boat
	case SmokedFish:
		return other == Smoker
	case Smoker, Boat:
		return other == Timber
	case Timber:
		return other == Axe
	case Basket, Spear, Axe:
		return false
	default:
		panic(unknownGood(g))
	}
}

// Produces lists the goods downstream of g, in catalog order.
func (g Good) Produces() []Good {
	var out []Good
	for _, downstream := range AllGoods() {
		if downstream.IsProducedUsing(g) {
			out = append(out, downstream)
		}
	}
	return out
}

// IsImprovedUsing reports whether holding other extends the shelf life of g.
func (g Good) IsImprovedUsing(other Good) bool {
	return g == Fish && other == Smoker
}

// LifetimeImprovementIncrement is the number of days other adds to g when
// g.IsImprovedUsing(other).
func (g Good) LifetimeImprovementIncrement(other Good) uint32 {
	if g.IsImprovedUsing(other) {
		return 20
	}
	return 0
}

// TransformedFrom returns the good whose held units are converted into g when
// g is produced. The produced quantity equals the held source quantity and
// every source unit is used up.
func (g Good) TransformedFrom() (Good, bool) {
	if g == SmokedFish {
		return Fish, true
	}
	return 0, false
}

// MultipleTimestepsToComplete returns the number of consecutive production
// actions g needs, or false when g is finished within one action.
func (g Good) MultipleTimestepsToComplete() (uint32, bool) {
	switch g {
	case Smoker:
		return 2, true
	case Boat:
		return 10, true
	case Axe:
		return 2, true
	case Berries, Fish, SmokedFish, Basket, Spear, Timber:
		return 0, false
	default:
		panic(unknownGood(g))
	}
}

// Lifetime is the remaining lifetime of a freshly produced unit: days for
// consumer goods and materials, uses for durable capital.
func (g Good) Lifetime() uint32 {
	switch g {
	case Berries:
		return 10
	case Fish:
		return 2
	case SmokedFish:
		return 15
	case Basket:
		return 10
	case Spear:
		return 5
	case Smoker:
		return 5
	case Boat:
		return 20
	case Timber:
		return 1000
	case Axe:
		return 5
	default:
		panic(unknownGood(g))
	}
}

// DefaultProductivity is the yield of one production action for g given the
// held stock. Enablers count by presence, strongest first.
func (g Good) DefaultProductivity(s *Stock) Productivity {
	if steps, ok := g.MultipleTimestepsToComplete(); ok {
		for _, in := range g.RequiredInputs() {
			if !s.Contains(in) {
				return NoProductivity()
			}
		}
		return Delayed(steps)
	}

	switch g {
	case Berries:
		if s.Contains(Basket) {
			return Immediate(8)
		}
		return Immediate(4)
	case Fish:
		if s.Contains(Boat) {
			return Immediate(20)
		}
		if s.Contains(Spear) {
			return Immediate(10)
		}
		return Immediate(2)
	case SmokedFish:
		if !s.Contains(Smoker) {
			return NoProductivity()
		}
		if n := s.CountUnits(Fish); n > 0 {
			return Immediate(n)
		}
		return NoProductivity()
	case Basket, Spear:
		return Immediate(1)
	case Timber:
		if s.Contains(Axe) {
			return Immediate(2)
		}
		return NoProductivity()
	default:
		panic(unknownGood(g))
	}
}

func unknownGood(g Good) string {
	return fmt.Sprintf("economy: good %d outside catalog", uint8(g))
}
