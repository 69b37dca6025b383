// Package dice implements deterministic dice rolling.
//
// All randomness in the engine flows through this package so a recorded seed
// reproduces every roll of a session exactly.
package dice

import (
	"errors"
	"math/rand"
)

var (
	// ErrMissingDice indicates a request carried no dice specs.
	ErrMissingDice = errors.New("at least one dice spec is required")
	// ErrInvalidDiceSpec indicates a spec with non-positive sides or count.
	ErrInvalidDiceSpec = errors.New("dice spec must have positive sides and count")
)

// Spec describes a homogeneous group of dice, e.g. 2d6.
type Spec struct {
	Sides int
	Count int
}

// Roll holds the individual results for one Spec.
type Roll struct {
	Sides   int
	Results []int
	Total   int
}

// Result aggregates the rolls for a whole request.
type Result struct {
	Rolls []Roll
	Total int
}

// Request asks for a set of dice rolls driven by a seed.
type Request struct {
	Dice []Spec
	Seed int64
}

// RollDice rolls the requested dice.
//
// The result is deterministic with respect to Request.Seed: the same seed and
// the same specs (including order) always produce the same Result. Specs are
// processed in slice order and Result.Rolls preserves that order.
func RollDice(request Request) (Result, error) {
	rng := rand.New(rand.NewSource(request.Seed))
	return RollWithRng(rng, request.Dice)
}

// RollWithRng rolls dice using a caller-provided random source. Useful when
// several rolls must share one rng stream, as in round resolution.
func RollWithRng(rng *rand.Rand, specs []Spec) (Result, error) {
	if len(specs) == 0 {
		return Result{}, ErrMissingDice
	}

	rolls := make([]Roll, 0, len(specs))
	total := 0
	for _, spec := range specs {
		if spec.Sides <= 0 || spec.Count <= 0 {
			return Result{}, ErrInvalidDiceSpec
		}

		results := make([]int, spec.Count)
		rollTotal := 0
		for i := 0; i < spec.Count; i++ {
			value := rng.Intn(spec.Sides) + 1
			results[i] = value
			rollTotal += value
		}

		rolls = append(rolls, Roll{
			Sides:   spec.Sides,
			Results: results,
			Total:   rollTotal,
		})
		total += rollTotal
	}

	return Result{Rolls: rolls, Total: total}, nil
}

// D20 rolls a single twenty-sided die from the provided source.
func D20(rng *rand.Rand) int {
	return rng.Intn(20) + 1
}
