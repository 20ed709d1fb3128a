package spawn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"crusoe/internal/app/ports"
	"crusoe/internal/app/stateview"
	"crusoe/internal/domain/agent"
	"crusoe/internal/domain/economy"
	"crusoe/internal/domain/strategy"
	"crusoe/internal/domain/valuation"
)

var ErrInvalidRequest = errors.New("invalid spawn request")

type UseCase struct {
	TxManager ports.TxManager
	AgentRepo ports.AgentRepository
	Defaults  agent.Config
	NewID     func() string
	Now       func() time.Time
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	name, err := strategy.Normalize(req.Strategy)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	stock, err := economy.StockFrom(req.Stock, req.Partials)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	nutrition := req.DailyNutrition
	if nutrition == 0 {
		nutrition = u.Defaults.DailyNutrition
	}
	if nutrition == 0 {
		nutrition = agent.DefaultConfig().DailyNutrition
	}
	horizon := req.LeisureHorizon
	if horizon == 0 {
		horizon = valuation.DefaultLeisureHorizon
	}

	newID := u.NewID
	if newID == nil {
		newID = func() string { return uuid.NewString() }
	}
	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}

	now := nowFn()
	rec := ports.AgentRecord{
		AgentID:        newID(),
		Strategy:       name,
		DailyNutrition: nutrition,
		LeisureHorizon: horizon,
		Seed:           req.Seed,
		Alive:          true,
		Stock:          stock,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err = u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		return u.AgentRepo.SaveWithVersion(txCtx, rec, 0)
	})
	if err != nil {
		return Response{}, err
	}
	return Response{Agent: stateview.Derive(rec)}, nil
}
