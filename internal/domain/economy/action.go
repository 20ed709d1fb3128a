package economy

import (
	"fmt"
	"strings"
)

type ActionKind uint8

const (
	ActionLeisure ActionKind = iota
	ActionProduce
)

// Action is what the agent does during one step: produce a good or rest.
type Action struct {
	Kind ActionKind
	Good Good
}

func Leisure() Action {
	return Action{Kind: ActionLeisure}
}

func ProduceGood(g Good) Action {
	return Action{Kind: ActionProduce, Good: g}
}

// AllActions lists every action: one per good followed by Leisure.
func AllActions() []Action {
	goods := AllGoods()
	out := make([]Action, 0, len(goods)+1)
	for _, g := range goods {
		out = append(out, ProduceGood(g))
	}
	return append(out, Leisure())
}

// Produced returns the good the action produces.
func (a Action) Produced() (Good, bool) {
	if a.Kind == ActionProduce {
		return a.Good, true
	}
	return 0, false
}

func (a Action) IsLeisure() bool {
	return a.Kind == ActionLeisure
}

// String renders "leisure" or "produce:<good>".
func (a Action) String() string {
	if a.Kind == ActionProduce {
		return "produce:" + a.Good.String()
	}
	return "leisure"
}

// ParseAction accepts "leisure", "produce:<good>" or a bare good name.
func ParseAction(raw string) (Action, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "leisure" {
		return Leisure(), nil
	}
	name := strings.TrimPrefix(raw, "produce:")
	g, err := ParseGood(name)
	if err != nil {
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, raw)
	}
	return ProduceGood(g), nil
}

func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
