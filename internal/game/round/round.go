// Package round coordinates one table round through its phase machine:
// Declaring, Resolving, Synthesizing, Sealed. Declarations arrive one at a
// time, resolution fans out across the generator gateway, and synthesis
// applies every resolved effect as a single atomic batch.
package round

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/lunargale/voidtable/internal/core/check"
	"github.com/lunargale/voidtable/internal/game/action"
	"github.com/lunargale/voidtable/internal/game/character"
	"github.com/lunargale/voidtable/internal/game/clock"
	"github.com/lunargale/voidtable/internal/game/economy"
	"github.com/lunargale/voidtable/internal/game/roster"
	"github.com/lunargale/voidtable/internal/game/validate"
	"github.com/lunargale/voidtable/internal/generator"
	perrors "github.com/lunargale/voidtable/internal/platform/errors"
	"github.com/lunargale/voidtable/internal/platform/timeouts"
)

// Phase is one stage of the round lifecycle. Transitions only move forward.
type Phase string

const (
	PhaseDeclaring    Phase = "declaring"
	PhaseResolving    Phase = "resolving"
	PhaseSynthesizing Phase = "synthesizing"
	PhaseSealed       Phase = "sealed"
)

// ErrRoundAborted reports that every actor's generation failed. The round is
// not sealed, the counter must not advance, and the host retries from
// Declaring with declarations cleared.
var ErrRoundAborted = perrors.New(perrors.CodeRoundAborted, "all resolutions degraded, round aborted")

// Event kinds emitted to the sink.
const (
	EventDegraded   = "resolution_degraded"
	EventWarning    = "validation_warning"
	EventClockFill  = "clock_filled"
	EventRoundAbort = "round_aborted"
)

// EventSink receives advisory round events. Implementations must be safe for
// the single resolving goroutine that reports them after the barrier.
type EventSink interface {
	Event(kind, actorID, detail string)
}

// NopSink discards events.
type NopSink struct{}

func (NopSink) Event(string, string, string) {}

// Snapshot is the read-only view of table state handed to prompt builders.
type Snapshot struct {
	Location   string
	Situation  string
	Characters []character.Character
	Clocks     []clock.Clock
	Enemies    []roster.Enemy
	Economy    map[string]economy.State
}

// PromptBuilder renders the generation prompt for one declaration after its
// dice outcome is known. It must treat the snapshot as immutable.
type PromptBuilder func(snap Snapshot, decl action.Declaration, outcome check.Outcome) string

// State gathers the mutable table state a round operates on. The coordinator
// is the sole writer of all of it during Synthesizing.
type State struct {
	Location   string
	Situation  string
	Characters map[string]*character.Character
	Ledger     *economy.Ledger
	Board      *clock.Board
	Roster     *roster.Roster
}

// Config wires the collaborators a coordinator needs.
type Config struct {
	Generator generator.Generator
	Prompt    PromptBuilder
	Checker   *validate.Checker
	Table     check.TierTable
	Rng       *rand.Rand
	// Timeout bounds the whole Resolving phase. Zero means
	// timeouts.Round.
	Timeout time.Duration
	Sink    EventSink
	// Schema constrains structured generator output. Nil accepts raw
	// narration text as a resolution.
	Schema *jsonschema.Schema
}

// resolved pairs a declaration with its outcome and resolution, preserving
// declaration order through the concurrent phase.
type resolved struct {
	decl       action.Declaration
	outcome    check.Outcome
	resolution action.Resolution
}

// Coordinator drives a single round. It is not safe for concurrent use; the
// host calls its methods from one goroutine and only Resolving fans out
// internally.
type Coordinator struct {
	state State

	gen     generator.Generator
	prompt  PromptBuilder
	checker *validate.Checker
	table   check.TierTable
	rng     *rand.Rand
	timeout time.Duration
	sink    EventSink
	schema  *jsonschema.Schema

	phase    Phase
	declared []action.Declaration
	mains    map[string]bool
	results  []resolved
	warnings []validate.Warning
	summary  string
}

// New builds a coordinator in the Declaring phase.
func New(state State, cfg Config) (*Coordinator, error) {
	if cfg.Generator == nil {
		return nil, fmt.Errorf("round: generator is required")
	}
	if cfg.Prompt == nil {
		return nil, fmt.Errorf("round: prompt builder is required")
	}
	if err := cfg.Table.Validate(); err != nil {
		return nil, fmt.Errorf("round: tier table: %w", err)
	}
	if cfg.Rng == nil {
		cfg.Rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = timeouts.Round
	}
	if cfg.Checker == nil {
		cfg.Checker = validate.NewChecker(0, 0)
	}
	if cfg.Sink == nil {
		cfg.Sink = NopSink{}
	}
	return &Coordinator{
		state:   state,
		gen:     cfg.Generator,
		prompt:  cfg.Prompt,
		checker: cfg.Checker,
		table:   cfg.Table,
		rng:     cfg.Rng,
		timeout: cfg.Timeout,
		sink:    cfg.Sink,
		schema:  cfg.Schema,
		phase:   PhaseDeclaring,
		mains:   make(map[string]bool),
	}, nil
}

// Phase returns the current phase.
func (c *Coordinator) Phase() Phase { return c.phase }

// Declare records one actor's action for the round. Main actions are limited
// to one per actor; free and communication actions are unbounded.
func (c *Coordinator) Declare(decl action.Declaration) error {
	if c.phase != PhaseDeclaring {
		return perrors.Newf(perrors.CodeRoundPhase, "cannot declare during %s", c.phase)
	}
	ch, ok := c.state.Characters[decl.ActorID]
	if !ok {
		return perrors.Newf(perrors.CodeRoundUnknownActor, "unknown actor %q", decl.ActorID)
	}
	if ch.Incapacitated {
		return perrors.Newf(perrors.CodeRoundUnknownActor, "actor %q is incapacitated", decl.ActorID)
	}
	if _, ok := ch.Attributes[decl.Attribute]; !ok {
		return perrors.Newf(perrors.CodeRoundUnknownAttribute, "actor %q has no attribute %q", decl.ActorID, decl.Attribute)
	}
	if decl.Kind == action.KindMain {
		if c.mains[decl.ActorID] {
			return perrors.Newf(perrors.CodeRoundDuplicateMain, "actor %q already declared a main action", decl.ActorID)
		}
		c.mains[decl.ActorID] = true
	}
	c.declared = append(c.declared, decl)
	return nil
}

// ReadyToResolve reports whether every active actor has declared a main
// action.
func (c *Coordinator) ReadyToResolve() bool {
	for id, ch := range c.state.Characters {
		if ch.Incapacitated {
			continue
		}
		if !c.mains[id] {
			return false
		}
	}
	return len(c.declared) > 0
}

// Declarations returns a copy of the declarations in arrival order.
func (c *Coordinator) Declarations() []action.Declaration {
	out := make([]action.Declaration, len(c.declared))
	copy(out, c.declared)
	return out
}

// Resolutions returns a copy of the resolutions in declaration order. Empty
// until Resolving completes.
func (c *Coordinator) Resolutions() []action.Resolution {
	out := make([]action.Resolution, 0, len(c.results))
	for _, r := range c.results {
		out = append(out, r.resolution)
	}
	return out
}

// Warnings returns the advisory findings collected after Resolving.
func (c *Coordinator) Warnings() []validate.Warning {
	out := make([]validate.Warning, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// Summary returns the folded narration. Empty until the round seals.
func (c *Coordinator) Summary() string { return c.summary }

// Location and Situation reflect any story advance applied at synthesis.
func (c *Coordinator) Location() string  { return c.state.Location }
func (c *Coordinator) Situation() string { return c.state.Situation }

// snapshot copies the table state for prompt building. Taken once, before
// resolution goroutines start; nothing mutates state until Synthesizing.
func (c *Coordinator) snapshot() Snapshot {
	snap := Snapshot{
		Location:  c.state.Location,
		Situation: c.state.Situation,
		Clocks:    c.state.Board.Snapshot(),
		Enemies:   c.state.Roster.Snapshot(),
		Economy:   c.state.Ledger.Snapshot(),
	}
	for _, ch := range c.state.Characters {
		snap.Characters = append(snap.Characters, *ch.Clone())
	}
	return snap
}

// Resolve rolls dice for every declaration, fans generation out across the
// gateway, and waits for all of it before advancing the phase. Individual
// failures degrade to fallback resolutions; if every declaration degrades the
// round aborts back to Declaring.
func (c *Coordinator) Resolve(ctx context.Context) error {
	if c.phase != PhaseDeclaring {
		return perrors.Newf(perrors.CodeRoundPhase, "cannot resolve during %s", c.phase)
	}
	if len(c.declared) == 0 {
		return perrors.New(perrors.CodeRoundEmptyDeclaring, "no declarations to resolve")
	}
	c.phase = PhaseResolving

	// Dice are rolled sequentially so a seeded rng stays deterministic;
	// only generation runs concurrently.
	results := make([]resolved, len(c.declared))
	for i, decl := range c.declared {
		ch := c.state.Characters[decl.ActorID] // validated at Declare
		results[i] = resolved{
			decl:    decl,
			outcome: check.Resolve(c.table, ch.Attributes[decl.Attribute], ch.Skill(decl.Skill), decl.Difficulty, c.rng),
		}
	}

	snap := c.snapshot()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type degradation struct {
		actorID string
		reason  string
	}
	degradations := make([]degradation, len(results))

	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := &results[i]
			req := generator.Request{
				Prompt: c.prompt(snap, r.decl, r.outcome),
				Schema: c.schema,
			}
			out, err := c.gen.Generate(ctx, req)
			if err == nil {
				r.resolution, err = action.FromGeneratorResult(out, r.decl, r.outcome)
			}
			if err != nil {
				reason := err.Error()
				r.resolution = action.Fallback(r.decl, reason)
				degradations[i] = degradation{actorID: r.decl.ActorID, reason: reason}
			}
		}(i)
	}
	wg.Wait()

	allDegraded := true
	for i, r := range results {
		if d := degradations[i]; d.actorID != "" {
			c.sink.Event(EventDegraded, d.actorID, d.reason)
		}
		if !r.resolution.Degraded {
			allDegraded = false
		}
	}
	if allDegraded {
		c.sink.Event(EventRoundAbort, "", fmt.Sprintf("%d declarations, all degraded", len(results)))
		c.reset()
		return ErrRoundAborted
	}

	c.results = results
	c.collectWarnings()
	c.phase = PhaseSynthesizing
	return nil
}

// reset returns an aborted round to Declaring with declarations cleared.
func (c *Coordinator) reset() {
	c.phase = PhaseDeclaring
	c.declared = nil
	c.mains = make(map[string]bool)
	c.results = nil
	c.warnings = nil
}

func (c *Coordinator) collectWarnings() {
	known := validate.KnownState{
		ClockNames:   make(map[string]bool),
		CharacterIDs: make(map[string]bool),
		EnemyIDs:     make(map[string]bool),
	}
	for _, name := range c.state.Board.Names() {
		known.ClockNames[name] = true
	}
	for id := range c.state.Characters {
		known.CharacterIDs[id] = true
	}
	for _, id := range c.state.Roster.ActiveIDs() {
		known.EnemyIDs[id] = true
	}
	for _, r := range c.results {
		ws := c.checker.Check(r.resolution, r.decl, known)
		for _, w := range ws {
			c.sink.Event(EventWarning, w.ActorID, w.String())
		}
		c.warnings = append(c.warnings, ws...)
	}
}

// foldSummary joins narrations in declaration order.
func foldSummary(results []resolved) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		n := strings.TrimSpace(r.resolution.Narration)
		if n != "" {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, " ")
}
