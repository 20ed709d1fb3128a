package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	runlogsqlite "crusoe/internal/adapter/runlog/sqlite"
	"crusoe/internal/app/simulate"
	"crusoe/internal/config"

	"github.com/google/uuid"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(ctx, os.Args[1:], os.Stdout, logger); err != nil {
		logger.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer, logger *slog.Logger) error {
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv("CRUSOE_CONFIG"), "path to config.yaml")
	runlogPath := fs.String("runlog", os.Getenv("CRUSOE_RUNLOG_PATH"), "sqlite run log path; empty disables logging")
	strategyName := fs.String("strategy", "", "override agent.strategy")
	maxSteps := fs.Int("steps", 0, "override simulation.max_steps")
	seed := fs.Int64("seed", 0, "override simulation.seed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(strings.TrimSpace(*configPath))
	if err != nil {
		return err
	}
	if *strategyName != "" {
		cfg.Agent.Strategy = *strategyName
	}
	if *maxSteps > 0 {
		cfg.Simulation.MaxSteps = *maxSteps
	}
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}
	stock, err := cfg.Stock()
	if err != nil {
		return err
	}

	uc := simulate.UseCase{Logger: logger}
	if path := strings.TrimSpace(*runlogPath); path != "" {
		rl, err := runlogsqlite.Open(path)
		if err != nil {
			return err
		}
		defer rl.Close()
		uc.RunLog = rl
	}

	resp, err := uc.Execute(ctx, simulate.Request{
		RunID:    uuid.NewString(),
		Strategy: cfg.Agent.Strategy,
		Settings: cfg.StrategySettings(),
		Agent:    cfg.AgentConfig(),
		Stock:    stock,
		MaxSteps: int64(cfg.Simulation.MaxSteps),
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
