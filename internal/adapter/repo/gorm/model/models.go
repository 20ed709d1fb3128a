// Package model maps the tables in db/migrations.
package model

import "time"

const (
	TableNameAgent         = "agents"
	TableNameStepExecution = "step_executions"
	TableNameDomainEvent   = "domain_events"
)

type Agent struct {
	AgentID        string    `gorm:"column:agent_id;primaryKey"`
	Strategy       string    `gorm:"column:strategy;not null"`
	DailyNutrition int32     `gorm:"column:daily_nutrition;not null"`
	LeisureHorizon int32     `gorm:"column:leisure_horizon;not null"`
	Seed           int64     `gorm:"column:seed;not null"`
	Alive          bool      `gorm:"column:alive;not null"`
	Steps          int64     `gorm:"column:steps;not null"`
	StockBlob      []byte    `gorm:"column:stock_blob;not null"`
	Version        int64     `gorm:"column:version;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;not null"`
	UpdatedAt      time.Time `gorm:"column:updated_at;not null"`
}

func (*Agent) TableName() string { return TableNameAgent }

type StepExecution struct {
	AgentID        string    `gorm:"column:agent_id;primaryKey"`
	IdempotencyKey string    `gorm:"column:idempotency_key;primaryKey"`
	Action         string    `gorm:"column:action;not null"`
	Step           int64     `gorm:"column:step;not null"`
	Result         []byte    `gorm:"column:result;type:jsonb;not null"`
	StockBlob      []byte    `gorm:"column:stock_blob;not null"`
	AppliedAt      time.Time `gorm:"column:applied_at;not null"`
}

func (*StepExecution) TableName() string { return TableNameStepExecution }

type DomainEvent struct {
	EventID    int64     `gorm:"column:event_id;primaryKey;autoIncrement:true"`
	AgentID    string    `gorm:"column:agent_id;not null"`
	Type       string    `gorm:"column:type;not null"`
	OccurredAt time.Time `gorm:"column:occurred_at;not null"`
	Payload    []byte    `gorm:"column:payload;type:jsonb;not null"`
}

func (*DomainEvent) TableName() string { return TableNameDomainEvent }
