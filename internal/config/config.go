package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"crusoe/internal/domain/agent"
	"crusoe/internal/domain/economy"
	"crusoe/internal/domain/strategy"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const schemaURL = "config.schema.json"

//go:embed config.schema.json
var schemaJSON []byte

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Agent      AgentConfig      `yaml:"agent"`
	Rewards    RewardsConfig    `yaml:"rewards"`
	Simulation SimulationConfig `yaml:"simulation"`
	Scenario   ScenarioConfig   `yaml:"scenario"`
}

type AgentConfig struct {
	DailyNutrition     uint32  `yaml:"daily_nutrition"`
	LeisureHorizon     uint32  `yaml:"leisure_horizon"`
	Strategy           string  `yaml:"strategy"`
	LeisureProbability float64 `yaml:"leisure_probability"`
}

type RewardsConfig struct {
	Leisure int32 `yaml:"leisure"`
	Death   int32 `yaml:"death"`
}

type SimulationConfig struct {
	MaxSteps int   `yaml:"max_steps"`
	Seed     int64 `yaml:"seed"`
}

type ScenarioConfig struct {
	Stock    []StockEntry   `yaml:"stock"`
	Partials []PartialEntry `yaml:"partials"`
}

type StockEntry struct {
	Good     string `yaml:"good"`
	Quantity uint32 `yaml:"quantity"`
	// Zero means a freshly produced unit.
	RemainingLifetime uint32 `yaml:"remaining_lifetime"`
}

type PartialEntry struct {
	Good             string `yaml:"good"`
	TimeToCompletion uint32 `yaml:"time_to_completion"`
}

func Default() Config {
	settings := strategy.DefaultSettings()
	rewards := agent.DefaultRewards()
	return Config{
		Agent: AgentConfig{
			DailyNutrition:     agent.DefaultConfig().DailyNutrition,
			LeisureHorizon:     settings.LeisureHorizon,
			Strategy:           strategy.Rational,
			LeisureProbability: settings.LeisureProbability,
		},
		Rewards:    RewardsConfig{Leisure: int32(rewards.Leisure), Death: int32(rewards.Death)},
		Simulation: SimulationConfig{MaxSteps: 100, Seed: 1},
	}
}

// Load reads path, falling back to Default when path is empty.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(raw)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse validates raw against the embedded schema and decodes it over the
// defaults, so omitted keys keep their default values.
func Parse(raw []byte) (Config, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if doc != nil {
		if err := validate(doc); err != nil {
			return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := cfg.Stock(); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

func validate(doc any) error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}
	// yaml decodes to Go ints and nested any maps; the validator wants the
	// encoding/json shapes.
	buf, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var normalized any
	if err := json.Unmarshal(buf, &normalized); err != nil {
		return err
	}
	return s.Validate(normalized)
}

func (c Config) AgentConfig() agent.Config {
	return agent.Config{
		DailyNutrition: c.Agent.DailyNutrition,
		Rewards: agent.RewardConfig{
			Leisure: agent.Reward(c.Rewards.Leisure),
			Death:   agent.Reward(c.Rewards.Death),
		},
	}
}

func (c Config) StrategySettings() strategy.Settings {
	return strategy.Settings{
		LeisureHorizon:     c.Agent.LeisureHorizon,
		LeisureProbability: c.Agent.LeisureProbability,
		Seed:               c.Simulation.Seed,
	}
}

// Stock builds the scenario's starting stock.
func (c Config) Stock() (economy.Stock, error) {
	units := make([]economy.UnitQuantity, 0, len(c.Scenario.Stock))
	for _, e := range c.Scenario.Stock {
		g, err := economy.ParseGood(e.Good)
		if err != nil {
			return economy.Stock{}, err
		}
		unit := economy.GoodsUnit{Good: g, RemainingLifetime: e.RemainingLifetime}
		if unit.RemainingLifetime == 0 {
			unit.RemainingLifetime = g.Lifetime()
		}
		units = append(units, economy.UnitQuantity{Unit: unit, Quantity: e.Quantity})
	}
	partials := make([]economy.PartialGoodsUnit, 0, len(c.Scenario.Partials))
	for _, p := range c.Scenario.Partials {
		g, err := economy.ParseGood(p.Good)
		if err != nil {
			return economy.Stock{}, err
		}
		partials = append(partials, economy.PartialGoodsUnit{Good: g, TimeToCompletion: p.TimeToCompletion})
	}
	return economy.StockFrom(units, partials)
}
