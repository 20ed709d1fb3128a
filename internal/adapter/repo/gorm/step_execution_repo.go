package gormrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"crusoe/internal/adapter/codec"
	"crusoe/internal/adapter/repo/gorm/model"
	"crusoe/internal/app/ports"
	"crusoe/internal/domain/agent"
	"crusoe/internal/domain/economy"

	"gorm.io/gorm"
)

type StepExecutionRepo struct {
	db *gorm.DB
}

func NewStepExecutionRepo(db *gorm.DB) StepExecutionRepo {
	return StepExecutionRepo{db: db}
}

func (r StepExecutionRepo) GetByIdempotencyKey(ctx context.Context, agentID, key string) (*ports.StepExecutionRecord, error) {
	var m model.StepExecution
	err := getDBFromCtx(ctx, r.db).WithContext(ctx).
		Where(&model.StepExecution{AgentID: agentID, IdempotencyKey: key}).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	result, err := decodeResult(m)
	if err != nil {
		return nil, err
	}
	return &ports.StepExecutionRecord{
		AgentID:        m.AgentID,
		IdempotencyKey: m.IdempotencyKey,
		Action:         m.Action,
		Result:         result,
		AppliedAt:      m.AppliedAt,
	}, nil
}

func (r StepExecutionRepo) SaveExecution(ctx context.Context, execution ports.StepExecutionRecord) error {
	blob, err := codec.EncodeStock(execution.Result.Stock)
	if err != nil {
		return err
	}
	// The stock travels in stock_blob; result keeps the rest.
	result := execution.Result
	resultJSON, err := json.Marshal(resultRow{
		Step:      result.Step,
		Action:    result.Action.String(),
		Reward:    int32(result.Reward),
		Alive:     result.Alive,
		Produced:  result.Produced,
		Shortfall: result.Shortfall,
		Events:    result.Events,
	})
	if err != nil {
		return fmt.Errorf("marshal step result: %w", err)
	}
	m := model.StepExecution{
		AgentID:        execution.AgentID,
		IdempotencyKey: execution.IdempotencyKey,
		Action:         execution.Action,
		Step:           result.Step,
		Result:         resultJSON,
		StockBlob:      blob,
		AppliedAt:      execution.AppliedAt,
	}
	if err := getDBFromCtx(ctx, r.db).WithContext(ctx).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ports.ErrConflict
		}
		return err
	}
	return nil
}

type resultRow struct {
	Step      int64         `json:"step"`
	Action    string        `json:"action"`
	Reward    int32         `json:"reward"`
	Alive     bool          `json:"alive"`
	Produced  uint32        `json:"produced"`
	Shortfall string        `json:"shortfall,omitempty"`
	Events    []agent.Event `json:"events"`
}

func decodeResult(m model.StepExecution) (ports.StepResult, error) {
	var row resultRow
	if err := json.Unmarshal(m.Result, &row); err != nil {
		return ports.StepResult{}, fmt.Errorf("decode step result: %w", err)
	}
	action, err := economy.ParseAction(row.Action)
	if err != nil {
		return ports.StepResult{}, err
	}
	stock, err := codec.DecodeStock(m.StockBlob)
	if err != nil {
		return ports.StepResult{}, err
	}
	return ports.StepResult{
		Step:      row.Step,
		Action:    action,
		Reward:    agent.Reward(row.Reward),
		Alive:     row.Alive,
		Produced:  row.Produced,
		Shortfall: row.Shortfall,
		Stock:     stock,
		Events:    row.Events,
	}, nil
}
