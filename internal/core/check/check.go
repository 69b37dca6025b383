// Package check implements skill-check arithmetic and outcome-tier
// classification.
//
// The core formula is attribute × skill + d20 against a difficulty. An
// unskilled attempt (skill 0) uses attribute − 5 instead of the product.
// Classification into outcome tiers is a pure, monotonic function of the
// margin, driven by a TierTable that is configurable but fixed for a given
// ruleset.
package check

import (
	"errors"
	"math/rand"
	"sort"

	"github.com/lunargale/voidtable/internal/core/dice"
)

// Tier is the categorical outcome label derived from a roll's margin.
type Tier string

const (
	TierCriticalFailure Tier = "critical_failure"
	TierFailure         Tier = "failure"
	TierModerate        Tier = "moderate"
	TierGood            Tier = "good"
	TierExcellent       Tier = "excellent"
	TierExceptional     Tier = "exceptional"
)

// UnskilledPenalty is subtracted from the attribute when no skill applies.
const UnskilledPenalty = 5

var (
	// ErrEmptyTierTable indicates a table with no bands.
	ErrEmptyTierTable = errors.New("tier table requires at least one band")
	// ErrTierTableOrder indicates band floors that are not strictly increasing.
	ErrTierTableOrder = errors.New("tier table floors must be strictly increasing")
	// ErrTierTableSuccess indicates a table missing the margin-zero success boundary.
	ErrTierTableSuccess = errors.New("tier table must contain a band starting at margin 0")
)

// Band maps every margin at or above Floor (and below the next band's floor)
// to a tier.
type Band struct {
	Floor int
	Tier  Tier
}

// TierTable classifies margins into tiers. Margins below the lowest band's
// floor fall into Base.
type TierTable struct {
	Base  Tier
	Bands []Band
}

// DefaultTierTable returns the standard ruleset boundaries:
// < −10 critical_failure, [−10,0) failure, [0,5) moderate, [5,10) good,
// [10,15) excellent, ≥ 15 exceptional.
func DefaultTierTable() TierTable {
	return TierTable{
		Base: TierCriticalFailure,
		Bands: []Band{
			{Floor: -10, Tier: TierFailure},
			{Floor: 0, Tier: TierModerate},
			{Floor: 5, Tier: TierGood},
			{Floor: 10, Tier: TierExcellent},
			{Floor: 15, Tier: TierExceptional},
		},
	}
}

// Validate reports whether the table is contiguous and monotonic: bands in
// strictly increasing floor order with a band starting exactly at margin 0,
// so the success boundary coincides with a tier boundary.
func (t TierTable) Validate() error {
	if len(t.Bands) == 0 {
		return ErrEmptyTierTable
	}
	hasZero := false
	for i, band := range t.Bands {
		if i > 0 && band.Floor <= t.Bands[i-1].Floor {
			return ErrTierTableOrder
		}
		if band.Floor == 0 {
			hasZero = true
		}
	}
	if !hasZero {
		return ErrTierTableSuccess
	}
	return nil
}

// Classify returns the tier for a margin.
func (t TierTable) Classify(margin int) Tier {
	// Bands are in increasing floor order; find the highest floor <= margin.
	idx := sort.Search(len(t.Bands), func(i int) bool {
		return t.Bands[i].Floor > margin
	})
	if idx == 0 {
		return t.Base
	}
	return t.Bands[idx-1].Tier
}

// Outcome is the full result of a skill check.
type Outcome struct {
	Roll    int
	Ability int
	Total   int
	Margin  int
	Success bool
	Tier    Tier
}

// Ability computes the flat bonus for a check: attribute × skill, or
// attribute − UnskilledPenalty when skill is 0.
func Ability(attribute, skill int) int {
	if skill == 0 {
		return attribute - UnskilledPenalty
	}
	return attribute * skill
}

// Margin calculates the margin of success or failure.
func Margin(total, difficulty int) int {
	return total - difficulty
}

// MeetsDifficulty returns true if total >= difficulty.
func MeetsDifficulty(total, difficulty int) bool {
	return total >= difficulty
}

// Evaluate classifies a check from an already-rolled d20. Pure: replaying the
// same inputs yields the same outcome.
func Evaluate(table TierTable, attribute, skill, d20, difficulty int) Outcome {
	ability := Ability(attribute, skill)
	total := ability + d20
	margin := Margin(total, difficulty)
	return Outcome{
		Roll:    d20,
		Ability: ability,
		Total:   total,
		Margin:  margin,
		Success: MeetsDifficulty(total, difficulty),
		Tier:    table.Classify(margin),
	}
}

// Resolve rolls a d20 from rng and evaluates the check.
func Resolve(table TierTable, attribute, skill, difficulty int, rng *rand.Rand) Outcome {
	return Evaluate(table, attribute, skill, dice.D20(rng), difficulty)
}
