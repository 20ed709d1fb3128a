package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"crusoe/internal/app/observe"
	"crusoe/internal/app/ports"
	"crusoe/internal/app/replay"
	"crusoe/internal/app/spawn"
	"crusoe/internal/app/status"
	"crusoe/internal/app/step"
	"crusoe/internal/domain/agent"
	"crusoe/internal/domain/economy"
	"crusoe/internal/domain/strategy"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const idempotencyKeyHeader = "Idempotency-Key"

type Handler struct {
	SpawnUC   spawn.UseCase
	StepUC    step.UseCase
	StatusUC  status.UseCase
	ObserveUC observe.UseCase
	ReplayUC  replay.UseCase
	KPI       kpiSnapshotProvider
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())

	api := s.Group("/api")
	api.GET("/catalog", h.catalog)

	agents := api.Group("/agents")
	agents.POST("", h.spawn)
	agents.GET("/:id/status", h.status)
	agents.POST("/:id/step", h.step)
	agents.GET("/:id/observe", h.observe)
	agents.GET("/:id/replay", h.replay)

	s.GET("/ops/kpi", h.kpi)
}

type stockEntry struct {
	Good              economy.Good `json:"good"`
	Quantity          uint32       `json:"quantity"`
	RemainingLifetime uint32       `json:"remaining_lifetime,omitempty"`
}

type spawnRequest struct {
	Strategy       string                     `json:"strategy"`
	DailyNutrition uint32                     `json:"daily_nutrition"`
	LeisureHorizon uint32                     `json:"leisure_horizon"`
	Seed           int64                      `json:"seed"`
	Stock          []stockEntry               `json:"stock"`
	Partials       []economy.PartialGoodsUnit `json:"partials"`
}

type stepRequest struct {
	IdempotencyKey string `json:"idempotency_key"`
	Action         string `json:"action,omitempty"`
}

func (h Handler) spawn(c context.Context, ctx *app.RequestContext) {
	var body spawnRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	req := spawn.Request{
		Strategy:       body.Strategy,
		DailyNutrition: body.DailyNutrition,
		LeisureHorizon: body.LeisureHorizon,
		Seed:           body.Seed,
		Partials:       body.Partials,
	}
	for _, e := range body.Stock {
		unit := economy.GoodsUnit{Good: e.Good, RemainingLifetime: e.RemainingLifetime}
		if unit.RemainingLifetime == 0 && e.Good.Valid() {
			unit.RemainingLifetime = e.Good.Lifetime()
		}
		req.Stock = append(req.Stock, economy.UnitQuantity{Unit: unit, Quantity: e.Quantity})
	}

	resp, err := h.SpawnUC.Execute(c, req)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, resp)
}

func (h Handler) step(c context.Context, ctx *app.RequestContext) {
	var body stepRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	key := body.IdempotencyKey
	if key == "" {
		key = string(ctx.GetHeader(idempotencyKeyHeader))
	}

	resp, err := h.StepUC.Execute(c, step.Request{
		AgentID:        ctx.Param("id"),
		IdempotencyKey: key,
		Action:         body.Action,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) status(c context.Context, ctx *app.RequestContext) {
	resp, err := h.StatusUC.Execute(c, status.Request{AgentID: ctx.Param("id")})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) observe(c context.Context, ctx *app.RequestContext) {
	resp, err := h.ObserveUC.Execute(c, observe.Request{AgentID: ctx.Param("id")})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) replay(c context.Context, ctx *app.RequestContext) {
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))
	occurredFrom, _ := strconv.ParseInt(string(ctx.Query("occurred_from")), 10, 64)
	occurredTo, _ := strconv.ParseInt(string(ctx.Query("occurred_to")), 10, 64)
	resp, err := h.ReplayUC.Execute(c, replay.Request{
		AgentID:      ctx.Param("id"),
		Limit:        limit,
		OccurredFrom: occurredFrom,
		OccurredTo:   occurredTo,
		EventType:    string(ctx.Query("type")),
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

type catalogEntry struct {
	Good           economy.Good   `json:"good"`
	Kind           string         `json:"kind"`
	Lifetime       uint32         `json:"lifetime"`
	Steps          uint32         `json:"steps_to_complete"`
	RequiredInputs []economy.Good `json:"required_inputs"`
	Produces       []economy.Good `json:"produces"`
}

func (h Handler) catalog(_ context.Context, ctx *app.RequestContext) {
	out := make([]catalogEntry, 0, len(economy.AllGoods()))
	for _, g := range economy.AllGoods() {
		entry := catalogEntry{
			Good:           g,
			Kind:           goodKind(g),
			Lifetime:       g.Lifetime(),
			Steps:          1,
			RequiredInputs: append([]economy.Good{}, g.RequiredInputs()...),
			Produces:       append([]economy.Good{}, g.Produces()...),
		}
		if steps, ok := g.MultipleTimestepsToComplete(); ok {
			entry.Steps = steps
		}
		out = append(out, entry)
	}
	ctx.JSON(consts.StatusOK, map[string]any{"goods": out, "strategies": strategy.Names()})
}

func goodKind(g economy.Good) string {
	switch {
	case g.IsConsumer():
		return "consumer"
	case g.IsMaterial():
		return "material"
	default:
		return "capital"
	}
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, spawn.ErrInvalidRequest),
		errors.Is(err, step.ErrInvalidRequest),
		errors.Is(err, status.ErrInvalidRequest),
		errors.Is(err, observe.ErrInvalidRequest),
		errors.Is(err, replay.ErrInvalidRequest),
		errors.Is(err, strategy.ErrUnknownStrategy):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, agent.ErrAgentDead):
		writeErrorBody(ctx, consts.StatusConflict, "agent_dead", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
