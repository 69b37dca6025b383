// Package voidtable parses host flags and runs the demo table loop.
package voidtable

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/lunargale/voidtable/internal/core/check"
	"github.com/lunargale/voidtable/internal/game/action"
	"github.com/lunargale/voidtable/internal/game/character"
	"github.com/lunargale/voidtable/internal/game/round"
	"github.com/lunargale/voidtable/internal/game/session"
	"github.com/lunargale/voidtable/internal/generator"
	entrypoint "github.com/lunargale/voidtable/internal/platform/cmd"
	"github.com/lunargale/voidtable/internal/platform/id"
	"github.com/lunargale/voidtable/internal/scenario"
	"github.com/lunargale/voidtable/internal/storage"
	sqlitestore "github.com/lunargale/voidtable/internal/storage/sqlite"
)

// Generator modes.
const (
	ModeStatic = "static"
	ModeOpenAI = "openai"
)

// Config holds host configuration.
type Config struct {
	ScenarioPath  string        `env:"VOIDTABLE_SCENARIO"`
	RosterPath    string        `env:"VOIDTABLE_ROSTER"`
	Rounds        int           `env:"VOIDTABLE_ROUNDS" envDefault:"3"`
	StorePath     string        `env:"VOIDTABLE_STORE"`
	Generator     string        `env:"VOIDTABLE_GENERATOR" envDefault:"static"`
	OpenAIURL     string        `env:"VOIDTABLE_OPENAI_URL"`
	OpenAIKey     string        `env:"VOIDTABLE_OPENAI_KEY"`
	OpenAIModel   string        `env:"VOIDTABLE_OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	MaxConcurrent int           `env:"VOIDTABLE_MAX_CONCURRENT" envDefault:"3"`
	MaxAttempts   int           `env:"VOIDTABLE_MAX_ATTEMPTS" envDefault:"4"`
	MinInterval   time.Duration `env:"VOIDTABLE_MIN_INTERVAL" envDefault:"250ms"`
	BaseDelay     time.Duration `env:"VOIDTABLE_BASE_DELAY" envDefault:"500ms"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.ScenarioPath, "scenario", cfg.ScenarioPath, "Path to the scenario YAML (built-in demo when empty)")
	fs.StringVar(&cfg.RosterPath, "roster", cfg.RosterPath, "Path to the character roster YAML (built-in demo when empty)")
	fs.IntVar(&cfg.Rounds, "rounds", cfg.Rounds, "Number of rounds to run")
	fs.StringVar(&cfg.StorePath, "store", cfg.StorePath, "SQLite store path (in-memory when empty)")
	fs.StringVar(&cfg.Generator, "generator", cfg.Generator, "Generator mode: static or openai")
	fs.StringVar(&cfg.OpenAIModel, "model", cfg.OpenAIModel, "OpenAI model name")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run loads the table, wires the generator stack, and plays the configured
// number of rounds.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSession, func(ctx context.Context) error {
		return run(ctx, cfg)
	})
}

func run(ctx context.Context, cfg Config) error {
	scn, err := loadScenario(cfg)
	if err != nil {
		return err
	}
	characters, err := loadRoster(cfg)
	if err != nil {
		return err
	}

	var rounds storage.RoundStore
	var telemetry storage.TelemetryStore
	if cfg.StorePath != "" {
		store, err := sqlitestore.Open(cfg.StorePath)
		if err != nil {
			return err
		}
		defer store.Close()
		rounds, telemetry = store, store
	} else {
		mem := storage.NewMemory()
		rounds, telemetry = mem, mem
	}

	roundCfg, err := buildRoundConfig(cfg)
	if err != nil {
		return err
	}

	table, err := session.New(session.Config{
		ID:         id.MustNewID(),
		Location:   scn.Location,
		Situation:  scn.Situation,
		Characters: characters,
		Round:      roundCfg,
		Rounds:     rounds,
		Telemetry:  telemetry,
	})
	if err != nil {
		return err
	}
	for _, cl := range scn.Clocks {
		if err := table.Board().Create(cl.Name, cl.Max, cl.Advance, cl.Regress, cl.Initial); err != nil {
			return fmt.Errorf("opening clock %q: %w", cl.Name, err)
		}
	}

	log.Printf("session %s: %s — %s", table.ID(), table.Location(), table.Situation())
	for n := 1; n <= cfg.Rounds; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		record, err := table.RunRound(ctx, demoDeclarations(table.Characters(), n), nil)
		if errors.Is(err, round.ErrRoundAborted) {
			log.Printf("round %d aborted (%v), retrying once", n, err)
			record, err = table.RunRound(ctx, demoDeclarations(table.Characters(), n), nil)
		}
		if err != nil {
			return fmt.Errorf("round %d: %w", n, err)
		}
		log.Printf("round %d: %s", record.Round, record.Summary)
	}
	return nil
}

func loadScenario(cfg Config) (scenario.Scenario, error) {
	if cfg.ScenarioPath != "" {
		return scenario.LoadFile(cfg.ScenarioPath)
	}
	return scenario.Scenario{
		Name:      "The Sunken Archive",
		Location:  "flooded stacks beneath the city",
		Situation: "the wards are failing and something stirs below",
		Clocks: []scenario.ClockDef{
			{Name: "alarm", Max: 4, Advance: "guards converge", Regress: "guards relax"},
		},
	}, nil
}

func loadRoster(cfg Config) ([]*character.Character, error) {
	if cfg.RosterPath != "" {
		return scenario.LoadRosterFile(cfg.RosterPath)
	}
	attrs := func(values ...int) map[character.Attribute]int {
		out := make(map[character.Attribute]int, len(character.AllAttributes))
		for i, a := range character.AllAttributes {
			out[a] = values[i]
		}
		return out
	}
	mira, err := character.New("mira", "Mira Vale", character.OriginCoven,
		attrs(2, 4, 3, 3, 2, 4, 1, 3), map[string]int{"stealth": 3, "occult": 2})
	if err != nil {
		return nil, err
	}
	kael, err := character.New("kael", "Kael Durn", character.OriginIndependent,
		attrs(4, 2, 2, 4, 3, 1, 3, 1), map[string]int{"melee": 3, "intimidation": 2})
	if err != nil {
		return nil, err
	}
	return []*character.Character{mira, kael}, nil
}

func buildRoundConfig(cfg Config) (round.Config, error) {
	limiter := generator.LimiterConfig{
		MaxConcurrent: int64(cfg.MaxConcurrent),
		MinInterval:   cfg.MinInterval,
		MaxAttempts:   cfg.MaxAttempts,
		BaseDelay:     cfg.BaseDelay,
	}

	switch cfg.Generator {
	case ModeOpenAI:
		inner, err := generator.NewOpenAI(generator.OpenAIConfig{
			ResponsesURL: cfg.OpenAIURL,
			APIKey:       cfg.OpenAIKey,
			Model:        cfg.OpenAIModel,
		})
		if err != nil {
			return round.Config{}, err
		}
		return round.Config{
			Generator: generator.NewLimited(inner, limiter),
			Prompt:    BuildPrompt,
			Table:     check.DefaultTierTable(),
			Schema:    action.ResolutionSchema(),
		}, nil
	case ModeStatic:
		static := generator.NewStatic(
			"The attempt lands cleanly and the table leans in.",
			"A near thing, but the moment tips their way.",
			"The archive groans; dust sifts from the shelves as they press on.",
			"Something below answers with a slow, deliberate knock.",
		)
		return round.Config{
			Generator: generator.NewLimited(static, limiter),
			Prompt:    BuildPrompt,
			Table:     check.DefaultTierTable(),
		}, nil
	default:
		return round.Config{}, fmt.Errorf("unknown generator mode %q", cfg.Generator)
	}
}
