package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"crusoe/db"
	httpadapter "crusoe/internal/adapter/http"
	metricsinmem "crusoe/internal/adapter/metrics/inmemory"
	gormrepo "crusoe/internal/adapter/repo/gorm"
	"crusoe/internal/adapter/repo/memory"
	"crusoe/internal/app/observe"
	"crusoe/internal/app/ports"
	"crusoe/internal/app/replay"
	"crusoe/internal/app/spawn"
	"crusoe/internal/app/status"
	"crusoe/internal/app/step"
	"crusoe/internal/config"
	"crusoe/internal/domain/economy"

	"github.com/cloudwego/hertz/pkg/app/server"
)

const demoAgentID = "demo-agent"

type repos struct {
	agents     ports.AgentRepository
	executions ports.StepExecutionRepository
	events     ports.EventRepository
	tx         ports.TxManager
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(strings.TrimSpace(os.Getenv("CRUSOE_CONFIG")))
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}
	r, err := buildRepos(context.Background(), strings.TrimSpace(os.Getenv("CRUSOE_DB_DSN")))
	if err != nil {
		logger.Error("build repositories", "error", err)
		os.Exit(1)
	}
	if err := seedDemoAgent(context.Background(), r, cfg, time.Now()); err != nil {
		logger.Error("seed demo agent", "error", err)
		os.Exit(1)
	}

	kpiRecorder := metricsinmem.NewRecorder()
	h := httpadapter.Handler{
		SpawnUC: spawn.UseCase{
			TxManager: r.tx,
			AgentRepo: r.agents,
			Defaults:  cfg.AgentConfig(),
			Now:       time.Now,
		},
		StepUC: step.UseCase{
			TxManager:          r.tx,
			AgentRepo:          r.agents,
			ExecutionRepo:      r.executions,
			EventRepo:          r.events,
			Metrics:            kpiRecorder,
			Rewards:            cfg.AgentConfig().Rewards,
			LeisureProbability: cfg.Agent.LeisureProbability,
			Now:                time.Now,
		},
		StatusUC:  status.UseCase{AgentRepo: r.agents},
		ObserveUC: observe.UseCase{AgentRepo: r.agents, LeisureProbability: cfg.Agent.LeisureProbability},
		ReplayUC:  replay.UseCase{Events: r.events},
		KPI:       kpiRecorder,
	}

	addr := stringEnv("CRUSOE_HTTP_ADDR", fmt.Sprintf(":%d", intEnv("CRUSOE_HTTP_PORT", 8080)))
	s := server.Default(server.WithHostPorts(addr))
	h.RegisterRoutes(s)

	logger.Info("crusoe server listening", "addr", addr, "demo_agent", demoAgentID)
	s.Spin()
}

// buildRepos uses Postgres when dsn is set and an in-process store otherwise.
func buildRepos(ctx context.Context, dsn string) (repos, error) {
	if dsn == "" {
		slog.Warn("CRUSOE_DB_DSN not set, using in-memory store")
		store := memory.NewStore()
		return repos{
			agents:     memory.NewAgentRepo(store),
			executions: memory.NewStepExecutionRepo(store),
			events:     memory.NewEventRepo(store),
			tx:         memory.NewTxManager(store),
		}, nil
	}
	gdb, err := gormrepo.OpenPostgres(dsn)
	if err != nil {
		return repos{}, fmt.Errorf("open postgres: %w", err)
	}
	if err := gormrepo.ApplyMigrations(ctx, gdb, db.Migrations, db.MigrationsDir); err != nil {
		return repos{}, fmt.Errorf("apply migrations: %w", err)
	}
	return repos{
		agents:     gormrepo.NewAgentRepo(gdb),
		executions: gormrepo.NewStepExecutionRepo(gdb),
		events:     gormrepo.NewEventRepo(gdb),
		tx:         gormrepo.NewTxManager(gdb),
	}, nil
}

func seedDemoAgent(ctx context.Context, r repos, cfg config.Config, now time.Time) error {
	_, err := r.agents.GetByAgentID(ctx, demoAgentID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ports.ErrNotFound) {
		return err
	}
	stock, err := cfg.Stock()
	if err != nil {
		return err
	}
	if stock.IsEmpty() {
		stock.Add(economy.NewGoodsUnit(economy.Berries), 3*cfg.Agent.DailyNutrition)
	}
	return r.agents.SaveWithVersion(ctx, ports.AgentRecord{
		AgentID:        demoAgentID,
		Strategy:       cfg.Agent.Strategy,
		DailyNutrition: cfg.Agent.DailyNutrition,
		LeisureHorizon: cfg.Agent.LeisureHorizon,
		Seed:           cfg.Simulation.Seed,
		Alive:          true,
		Stock:          stock,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, 0)
}

func stringEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
