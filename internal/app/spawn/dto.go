package spawn

import (
	"crusoe/internal/app/stateview"
	"crusoe/internal/domain/economy"
)

type Request struct {
	Strategy       string
	DailyNutrition uint32
	LeisureHorizon uint32
	Seed           int64
	Stock          []economy.UnitQuantity
	Partials       []economy.PartialGoodsUnit
}

type Response struct {
	Agent stateview.View `json:"agent"`
}
