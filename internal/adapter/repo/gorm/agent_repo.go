package gormrepo

import (
	"context"
	"errors"
	"fmt"

	"crusoe/internal/adapter/codec"
	"crusoe/internal/adapter/repo/gorm/model"
	"crusoe/internal/app/ports"

	"gorm.io/gorm"
)

type AgentRepo struct {
	db *gorm.DB
}

func NewAgentRepo(db *gorm.DB) AgentRepo {
	return AgentRepo{db: db}
}

func (r AgentRepo) GetByAgentID(ctx context.Context, agentID string) (ports.AgentRecord, error) {
	var m model.Agent
	if err := getDBFromCtx(ctx, r.db).WithContext(ctx).Where("agent_id = ?", agentID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.AgentRecord{}, ports.ErrNotFound
		}
		return ports.AgentRecord{}, err
	}
	stock, err := codec.DecodeStock(m.StockBlob)
	if err != nil {
		return ports.AgentRecord{}, fmt.Errorf("agent %s stock: %w", agentID, err)
	}
	return ports.AgentRecord{
		AgentID:        m.AgentID,
		Strategy:       m.Strategy,
		DailyNutrition: uint32(m.DailyNutrition),
		LeisureHorizon: uint32(m.LeisureHorizon),
		Seed:           m.Seed,
		Alive:          m.Alive,
		Steps:          m.Steps,
		Stock:          stock,
		Version:        m.Version,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}, nil
}

func (r AgentRepo) SaveWithVersion(ctx context.Context, rec ports.AgentRecord, expectedVersion int64) error {
	db := getDBFromCtx(ctx, r.db).WithContext(ctx)
	blob, err := codec.EncodeStock(rec.Stock)
	if err != nil {
		return err
	}
	if expectedVersion == 0 {
		m := model.Agent{
			AgentID:        rec.AgentID,
			Strategy:       rec.Strategy,
			DailyNutrition: int32(rec.DailyNutrition),
			LeisureHorizon: int32(rec.LeisureHorizon),
			Seed:           rec.Seed,
			Alive:          rec.Alive,
			Steps:          rec.Steps,
			StockBlob:      blob,
			Version:        rec.Version,
			CreatedAt:      rec.CreatedAt,
			UpdatedAt:      rec.UpdatedAt,
		}
		if err := db.Create(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ports.ErrConflict
			}
			return err
		}
		return nil
	}

	updates := map[string]any{
		"alive":      rec.Alive,
		"steps":      rec.Steps,
		"stock_blob": blob,
		"version":    rec.Version,
		"updated_at": rec.UpdatedAt,
	}
	res := db.Model(&model.Agent{}).
		Where("agent_id = ? AND version = ?", rec.AgentID, expectedVersion).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrConflict
	}
	return nil
}
