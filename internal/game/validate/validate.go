// Package validate runs advisory completeness checks over resolved actions.
// Warnings never block synthesis; they surface through telemetry so drifting
// generator output is visible before it becomes a table problem.
package validate

import (
	"fmt"
	"strings"

	"github.com/lunargale/voidtable/internal/game/action"
)

// Warning codes. Stable strings so telemetry queries can group on them.
const (
	WarnNarrationTooShort    = "NARRATION_TOO_SHORT"
	WarnNarrationTooLong     = "NARRATION_TOO_LONG"
	WarnMissingSoulcredit    = "MISSING_SOULCREDIT_ENTRY"
	WarnMarginOutOfRange     = "MARGIN_OUT_OF_RANGE"
	WarnDamageWithoutTarget  = "DAMAGE_WITHOUT_TARGET"
	WarnZeroPenaltyCondition = "ZERO_PENALTY_CONDITION"
	WarnForeignVoidDelta     = "FOREIGN_VOID_DELTA"
	WarnUnknownClock         = "UNKNOWN_CLOCK"
)

// Margin bounds beyond which a resolution is almost certainly corrupt: a d20
// against ability values in normal play cannot reach them.
const (
	MarginFloor = -40
	MarginCeil  = 40
)

// Default narration bounds, in runes.
const (
	DefaultMinNarration = 20
	DefaultMaxNarration = 2000
)

// Warning is one advisory finding on a resolution.
type Warning struct {
	Code    string
	ActorID string
	Detail  string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s (%s): %s", w.Code, w.ActorID, w.Detail)
}

// KnownState is a read-only snapshot of names the checker resolves
// references against. Builders populate it once per round.
type KnownState struct {
	ClockNames   map[string]bool
	CharacterIDs map[string]bool
	EnemyIDs     map[string]bool
}

// Checker holds the configurable narration bounds. The zero value is not
// usable; construct with NewChecker.
type Checker struct {
	minNarration int
	maxNarration int
}

// NewChecker builds a checker with the given narration bounds in runes.
// Non-positive bounds fall back to the defaults.
func NewChecker(minNarration, maxNarration int) *Checker {
	if minNarration <= 0 {
		minNarration = DefaultMinNarration
	}
	if maxNarration <= 0 {
		maxNarration = DefaultMaxNarration
	}
	return &Checker{minNarration: minNarration, maxNarration: maxNarration}
}

// Check inspects one resolution against its declaration and the known state.
// It never mutates its inputs and never rejects; an empty slice means clean.
func (c *Checker) Check(res action.Resolution, decl action.Declaration, known KnownState) []Warning {
	var warnings []Warning
	warn := func(code, format string, args ...any) {
		warnings = append(warnings, Warning{
			Code:    code,
			ActorID: res.ActorID,
			Detail:  fmt.Sprintf(format, args...),
		})
	}

	narration := []rune(strings.TrimSpace(res.Narration))
	if len(narration) < c.minNarration {
		warn(WarnNarrationTooShort, "narration is %d runes, minimum %d", len(narration), c.minNarration)
	} else if len(narration) > c.maxNarration {
		warn(WarnNarrationTooLong, "narration is %d runes, maximum %d", len(narration), c.maxNarration)
	}

	if !hasSoulcreditEntry(res, res.ActorID) {
		warn(WarnMissingSoulcredit, "no soulcredit entry for declaring actor")
	}

	if res.Margin < MarginFloor || res.Margin > MarginCeil {
		warn(WarnMarginOutOfRange, "margin %d outside [%d, %d]", res.Margin, MarginFloor, MarginCeil)
	}

	for _, d := range res.Effects.Damage {
		if strings.TrimSpace(d.TargetID) == "" {
			warn(WarnDamageWithoutTarget, "damage of %d names no target", d.Amount)
		}
	}

	for _, cond := range res.Effects.Conditions {
		if cond.Penalty == 0 {
			warn(WarnZeroPenaltyCondition, "condition %q carries no penalty", cond.Name)
		}
	}

	for _, v := range res.Effects.Void {
		if v.CharacterID != decl.ActorID {
			warn(WarnForeignVoidDelta, "void delta targets %q, declared by %q", v.CharacterID, decl.ActorID)
		}
	}

	for _, cu := range res.Effects.Clocks {
		if !known.ClockNames[cu.Name] {
			warn(WarnUnknownClock, "clock %q does not exist", cu.Name)
		}
	}

	return warnings
}

// hasSoulcreditEntry reports whether the bundle carries an entry for the
// actor. A zero-delta entry counts; the completeness rule is about the entry
// existing, not about value moving.
func hasSoulcreditEntry(res action.Resolution, actorID string) bool {
	for _, s := range res.Effects.Soulcredit {
		if s.CharacterID == actorID {
			return true
		}
	}
	return false
}
