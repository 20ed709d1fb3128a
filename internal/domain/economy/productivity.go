package economy

import "fmt"

type ProductivityKind uint8

const (
	ProductivityNone ProductivityKind = iota
	ProductivityImmediate
	ProductivityDelayed
)

// Productivity is the yield of one production action. Immediate carries the
// quantity produced this step, Delayed the number of consecutive steps needed
// for one unit. The zero value means production is infeasible.
type Productivity struct {
	Kind  ProductivityKind
	Value uint32
}

func Immediate(quantity uint32) Productivity {
	return Productivity{Kind: ProductivityImmediate, Value: quantity}
}

func Delayed(interval uint32) Productivity {
	if interval == 0 {
		panic("economy: delayed productivity with zero interval")
	}
	return Productivity{Kind: ProductivityDelayed, Value: interval}
}

func NoProductivity() Productivity {
	return Productivity{}
}

func (p Productivity) IsNone() bool {
	return p.Kind == ProductivityNone
}

// PerUnitTime is units produced per step: q for Immediate(q), 1/n for
// Delayed(n), false for None.
func (p Productivity) PerUnitTime() (float64, bool) {
	switch p.Kind {
	case ProductivityImmediate:
		return float64(p.Value), true
	case ProductivityDelayed:
		return 1 / float64(p.Value), true
	default:
		return 0, false
	}
}

// Interval is the number of steps needed to obtain at least one unit.
func (p Productivity) Interval() (uint32, bool) {
	switch p.Kind {
	case ProductivityImmediate:
		if p.Value == 0 {
			return 0, false
		}
		return 1, true
	case ProductivityDelayed:
		return p.Value, true
	default:
		return 0, false
	}
}

func (p Productivity) String() string {
	switch p.Kind {
	case ProductivityImmediate:
		return fmt.Sprintf("immediate(%d)", p.Value)
	case ProductivityDelayed:
		return fmt.Sprintf("delayed(%d)", p.Value)
	default:
		return "none"
	}
}
