// Package economy tracks per-character void (corruption) and soulcredit
// (reputation) with a replayable audit trail.
//
// Void policy: void clamps to the hard [0, 10] range and the clamp is always
// recorded in the audit entry. There is no soft ceiling at 8 — instead the
// 8+ band is surfaced through State.VoidRising so narrative layers can react
// without the ledger mutating anything behind the caller's back. Soulcredit
// is a signed score and is never clamped.
package economy

import (
	"strings"
	"time"

	perrors "github.com/lunargale/voidtable/internal/platform/errors"
)

// Void bounds and the rising-band threshold.
const (
	VoidMin    = 0
	VoidMax    = 10
	VoidRising = 8
)

// State is a character's current economy position.
type State struct {
	Void       int
	Soulcredit int
}

// VoidRising reports whether void has entered the 8+ band where corruption
// consequences start to bite.
func (s State) VoidRising() bool {
	return s.Void >= VoidRising
}

// Entry is one audit record. VoidDelta/SoulDelta are the requested deltas;
// VoidAfter/SoulAfter the resulting state, so replays need no other input.
type Entry struct {
	CharacterID string
	VoidDelta   int
	SoulDelta   int
	VoidAfter   int
	SoulAfter   int
	Clamped     bool
	Reason      string
	At          time.Time
}

// Ledger holds economy state for every registered character.
//
// The ledger has exactly one writer — round synthesis — so it carries no
// internal locking; concurrent readers must hold a snapshot instead.
type Ledger struct {
	states map[string]State
	log    []Entry
	clock  func() time.Time
}

// NewLedger builds an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		states: make(map[string]State),
		clock:  time.Now,
	}
}

// Register adds a character at the given starting position. Registering an
// already-known character is a no-op so session setup is idempotent.
func (l *Ledger) Register(characterID string, void, soulcredit int) error {
	if void < VoidMin || void > VoidMax {
		return perrors.Newf(perrors.CodeEconomyVoidRange, "starting void %d outside [%d, %d]", void, VoidMin, VoidMax)
	}
	if _, ok := l.states[characterID]; ok {
		return nil
	}
	l.states[characterID] = State{Void: void, Soulcredit: soulcredit}
	return nil
}

// Apply records a void/soulcredit change for a character and returns the new
// state. The reason must be non-empty — every change, an explicit zero-delta
// included, must be justified.
func (l *Ledger) Apply(characterID string, voidDelta, soulDelta int, reason string) (State, error) {
	if strings.TrimSpace(reason) == "" {
		return State{}, perrors.New(perrors.CodeEconomyEmptyReason, "economy change requires a reason")
	}
	state, ok := l.states[characterID]
	if !ok {
		return State{}, perrors.Newf(perrors.CodeEconomyUnknownActor, "unknown character %q", characterID)
	}

	newVoid, clamped := clampVoid(state.Void + voidDelta)
	state.Void = newVoid
	state.Soulcredit += soulDelta
	l.states[characterID] = state

	l.log = append(l.log, Entry{
		CharacterID: characterID,
		VoidDelta:   voidDelta,
		SoulDelta:   soulDelta,
		VoidAfter:   state.Void,
		SoulAfter:   state.Soulcredit,
		Clamped:     clamped,
		Reason:      reason,
		At:          l.clock().UTC(),
	})
	return state, nil
}

// State returns the current position for a character.
func (l *Ledger) State(characterID string) (State, bool) {
	state, ok := l.states[characterID]
	return state, ok
}

// Log returns a copy of the audit trail.
func (l *Ledger) Log() []Entry {
	return append([]Entry(nil), l.log...)
}

// Snapshot returns a copy of all current states.
func (l *Ledger) Snapshot() map[string]State {
	out := make(map[string]State, len(l.states))
	for id, state := range l.states {
		out[id] = state
	}
	return out
}

// Replay rebuilds final states from an audit trail. Because entries carry the
// resulting values, replay just takes the last entry per character; it exists
// so stores and tests can verify a trail against live state.
func Replay(entries []Entry) map[string]State {
	out := make(map[string]State)
	for _, entry := range entries {
		out[entry.CharacterID] = State{Void: entry.VoidAfter, Soulcredit: entry.SoulAfter}
	}
	return out
}

func clampVoid(value int) (int, bool) {
	switch {
	case value < VoidMin:
		return VoidMin, true
	case value > VoidMax:
		return VoidMax, true
	default:
		return value, false
	}
}
