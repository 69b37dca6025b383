// Package session owns the long-lived table state across rounds: the
// character sheets, the economy ledger, the clock board, the enemy roster,
// and the append-only round history.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/lunargale/voidtable/internal/game/action"
	"github.com/lunargale/voidtable/internal/game/character"
	"github.com/lunargale/voidtable/internal/game/clock"
	"github.com/lunargale/voidtable/internal/game/economy"
	"github.com/lunargale/voidtable/internal/game/roster"
	"github.com/lunargale/voidtable/internal/game/round"
	perrors "github.com/lunargale/voidtable/internal/platform/errors"
	"github.com/lunargale/voidtable/internal/platform/id"
	"github.com/lunargale/voidtable/internal/storage"
	"github.com/lunargale/voidtable/internal/telemetry"
)

// Config assembles a session.
type Config struct {
	// ID identifies the session in storage. Generated when empty.
	ID        string
	Location  string
	Situation string
	// Characters join the table at creation; the session registers each
	// with the ledger.
	Characters []*character.Character
	// Round carries the per-round collaborators (generator, prompt
	// builder, tier table). Its Sink is replaced by the session's
	// telemetry adapter.
	Round round.Config
	// Rounds and Telemetry persist sealed rounds and advisory events.
	// Nil values fall back to an in-memory store.
	Rounds    storage.RoundStore
	Telemetry storage.TelemetryStore
}

// Session drives rounds against shared table state. Not safe for concurrent
// use; one goroutine runs the table.
type Session struct {
	id        string
	location  string
	situation string

	characters map[string]*character.Character
	ledger     *economy.Ledger
	board      *clock.Board
	roster     *roster.Roster

	roundCfg  round.Config
	rounds    storage.RoundStore
	telemetry storage.TelemetryStore

	roundNum int
	history  []storage.RoundRecord
}

// New builds a session, registering every character with a fresh ledger.
func New(cfg Config) (*Session, error) {
	if len(cfg.Characters) == 0 {
		return nil, fmt.Errorf("session: at least one character is required")
	}
	sessionID := cfg.ID
	if sessionID == "" {
		generated, err := id.NewID()
		if err != nil {
			return nil, fmt.Errorf("session id: %w", err)
		}
		sessionID = generated
	}
	if cfg.Rounds == nil || cfg.Telemetry == nil {
		mem := storage.NewMemory()
		if cfg.Rounds == nil {
			cfg.Rounds = mem
		}
		if cfg.Telemetry == nil {
			cfg.Telemetry = mem
		}
	}

	s := &Session{
		id:         sessionID,
		location:   cfg.Location,
		situation:  cfg.Situation,
		characters: make(map[string]*character.Character, len(cfg.Characters)),
		ledger:     economy.NewLedger(),
		board:      clock.NewBoard(),
		roster:     roster.NewRoster(),
		roundCfg:   cfg.Round,
		rounds:     cfg.Rounds,
		telemetry:  cfg.Telemetry,
	}
	for _, ch := range cfg.Characters {
		if _, dup := s.characters[ch.ID]; dup {
			return nil, fmt.Errorf("session: duplicate character %q", ch.ID)
		}
		s.characters[ch.ID] = ch
		if err := s.ledger.Register(ch.ID, ch.Void, ch.Soulcredit); err != nil {
			return nil, fmt.Errorf("register %q: %w", ch.ID, err)
		}
	}
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// RoundNum returns the number of sealed rounds.
func (s *Session) RoundNum() int { return s.roundNum }

// Location and Situation expose the current fiction.
func (s *Session) Location() string  { return s.location }
func (s *Session) Situation() string { return s.situation }

// Board exposes the clock board for host setup (opening clocks).
func (s *Session) Board() *clock.Board { return s.board }

// Roster exposes the enemy roster for host setup.
func (s *Session) Roster() *roster.Roster { return s.roster }

// Ledger exposes the economy ledger read paths.
func (s *Session) Ledger() *economy.Ledger { return s.ledger }

// Character returns the live sheet for an actor.
func (s *Session) Character(actorID string) (*character.Character, bool) {
	ch, ok := s.characters[actorID]
	return ch, ok
}

// Characters returns copies of every sheet.
func (s *Session) Characters() []character.Character {
	out := make([]character.Character, 0, len(s.characters))
	for _, ch := range s.characters {
		out = append(out, *ch.Clone())
	}
	return out
}

// History returns copies of the sealed round records in order.
func (s *Session) History() []storage.RoundRecord {
	out := make([]storage.RoundRecord, len(s.history))
	copy(out, s.history)
	return out
}

// telemetrySink adapts the telemetry emitter to the round event interface.
// Emit failures are dropped: telemetry is advisory and must never stall a
// round mid-resolution.
type telemetrySink struct {
	ctx       context.Context
	emitter   *telemetry.Emitter
	sessionID string
	round     int
}

func (t telemetrySink) Event(kind, actorID, detail string) {
	_ = t.emitter.Emit(t.ctx, storage.TelemetryEvent{
		SessionID: t.sessionID,
		Round:     t.round,
		Kind:      kind,
		ActorID:   actorID,
		Detail:    detail,
	})
}

// RunRound drives one full round: declarations in, resolution through the
// generator, synthesis, seal, persistence. On round.ErrRoundAborted the
// counter does not advance and nothing persists; the host retries with fresh
// declarations.
func (s *Session) RunRound(ctx context.Context, declarations []action.Declaration, advance *round.StoryAdvance) (storage.RoundRecord, error) {
	cfg := s.roundCfg
	cfg.Sink = telemetrySink{
		ctx:       ctx,
		emitter:   telemetry.NewEmitter(s.telemetry),
		sessionID: s.id,
		round:     s.roundNum + 1,
	}
	coordinator, err := round.New(s.roundState(), cfg)
	if err != nil {
		return storage.RoundRecord{}, err
	}

	for _, decl := range declarations {
		if err := coordinator.Declare(decl); err != nil {
			return storage.RoundRecord{}, err
		}
	}
	if err := coordinator.Resolve(ctx); err != nil {
		return storage.RoundRecord{}, err
	}

	// Conditions decay only once the round is committed to resolving;
	// an aborted round must not burn their durations.
	for _, ch := range s.characters {
		ch.TickConditions()
	}

	if err := coordinator.Synthesize(advance); err != nil {
		return storage.RoundRecord{}, err
	}

	s.location = coordinator.Location()
	s.situation = coordinator.Situation()
	s.roundNum++

	record := storage.RoundRecord{
		SessionID:    s.id,
		Round:        s.roundNum,
		Location:     s.location,
		Situation:    s.situation,
		Summary:      coordinator.Summary(),
		Declarations: coordinator.Declarations(),
		Resolutions:  coordinator.Resolutions(),
		Clocks:       s.board.Snapshot(),
		Enemies:      s.roster.Snapshot(),
		Economy:      s.ledger.Snapshot(),
		SealedAt:     time.Now().UTC(),
	}
	s.history = append(s.history, record)

	if err := s.rounds.AppendRound(ctx, record); err != nil {
		return record, perrors.Wrap(perrors.CodeStorageAppend, "persist sealed round", err)
	}
	return record, nil
}

func (s *Session) roundState() round.State {
	return round.State{
		Location:   s.location,
		Situation:  s.situation,
		Characters: s.characters,
		Ledger:     s.ledger,
		Board:      s.board,
		Roster:     s.roster,
	}
}
