package economy

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnknownGood       = errors.New("unknown good")
	ErrUnknownAction     = errors.New("unknown action")
)

// InsufficientStockError describes a removal the stock could not honor.
type InsufficientStockError struct {
	Unit      GoodsUnit
	Requested uint32
	Held      uint32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: %s@%d requested=%d held=%d",
		e.Unit.Good, e.Unit.RemainingLifetime, e.Requested, e.Held)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}
