// Package action defines declared actions, resolved outcomes, and the
// structured effect bundles applied during round synthesis.
package action

import (
	"strings"

	"github.com/lunargale/voidtable/internal/core/check"
	"github.com/lunargale/voidtable/internal/game/character"
	"github.com/lunargale/voidtable/internal/game/roster"
)

// Kind distinguishes budgeted main actions from unbounded free ones.
type Kind string

const (
	// KindMain actions are limited to one per character per round.
	KindMain Kind = "main"
	// KindFree actions are unbounded side activity.
	KindFree Kind = "free"
	// KindCommunication actions are unbounded table talk.
	KindCommunication Kind = "communication"
)

// Declaration is one actor's stated intent for the round.
type Declaration struct {
	ActorID    string
	Kind       Kind
	Intent     string
	Attribute  character.Attribute
	Skill      string // empty means unskilled
	Difficulty int
	TargetID   string
	IsRitual   bool
}

// DamageEffect deals damage to a target.
type DamageEffect struct {
	TargetID string
	Amount   int
}

// CharacterDelta moves a character's void or soulcredit.
type CharacterDelta struct {
	CharacterID string
	Delta       int
	Reason      string
}

// ClockUpdate advances or regresses an existing clock.
type ClockUpdate struct {
	Name   string
	Delta  int
	Reason string
}

// ClockSpec requests creation of a new clock.
type ClockSpec struct {
	Name           string
	Max            int
	AdvanceMeaning string
	RegressMeaning string
}

// SpawnSpec requests new enemies.
type SpawnSpec struct {
	Tier      roster.Tier
	Faction   string
	Archetype string
	Count     int
	Position  string
}

// RemovalSpec retires an enemy.
type RemovalSpec struct {
	EnemyID string
	Kind    roster.RemovalKind
}

// ConditionEffect applies a status effect to a target.
type ConditionEffect struct {
	TargetID string
	Name     string
	Penalty  int
	Duration int
}

// PositionChange moves a character.
type PositionChange struct {
	CharacterID string
	To          string
}

// Effects is the structured bundle a resolution wants applied at synthesis.
type Effects struct {
	Damage     []DamageEffect
	Void       []CharacterDelta
	Soulcredit []CharacterDelta
	Clocks     []ClockUpdate
	NewClocks  []ClockSpec
	Spawns     []SpawnSpec
	Removals   []RemovalSpec
	Conditions []ConditionEffect
	Positions  []PositionChange
	Notes      []string
}

// Resolution is the resolved outcome of one declaration.
type Resolution struct {
	ActorID   string
	Narration string
	Tier      check.Tier
	Margin    int
	Effects   Effects
	// Degraded marks a documented fallback produced after generation failed;
	// it is an expected path, not an error.
	Degraded       bool
	DegradedReason string
}

// FallbackReason explains the neutral narration used for degraded outcomes.
const fallbackNarration = "The attempt unfolds without flourish; the table notes the outcome and moves on."

// Fallback builds the documented degraded resolution for an actor whose
// generation failed. The tier defaults to a neutral moderate outcome and the
// bundle carries only the mandatory zero-delta soulcredit entry.
func Fallback(decl Declaration, reason string) Resolution {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "generation unavailable"
	}
	return Resolution{
		ActorID:   decl.ActorID,
		Narration: fallbackNarration,
		Tier:      check.TierModerate,
		Margin:    0,
		Effects: Effects{
			Soulcredit: []CharacterDelta{{
				CharacterID: decl.ActorID,
				Delta:       0,
				Reason:      "degraded resolution: " + reason,
			}},
		},
		Degraded:       true,
		DegradedReason: reason,
	}
}
