// Package clock implements named bounded progress counters ("clocks")
// representing rising scene tension or task completion.
package clock

import (
	"sort"
	"strings"

	perrors "github.com/lunargale/voidtable/internal/platform/errors"
)

// Clock is one bounded counter. AdvanceMeaning/RegressMeaning document what
// moving the clock in each direction represents in the fiction.
type Clock struct {
	Name           string
	Current        int
	Max            int
	AdvanceMeaning string
	RegressMeaning string
	// Filled latches true the first time Current reaches Max and never
	// resets, so snapshots keep the history of a clock that later
	// regressed. Only Update writes it; consumers treat it as read-only.
	Filled bool
}

// Board holds all live clocks. Like the economy ledger it has exactly one
// writer — round synthesis — and therefore no internal locking.
type Board struct {
	clocks map[string]*Clock
}

// NewBoard builds an empty board.
func NewBoard() *Board {
	return &Board{clocks: make(map[string]*Clock)}
}

// Create adds a clock. Duplicate names are rejected; max must be positive and
// initial must already sit inside [0, max].
func (b *Board) Create(name string, max int, advanceMeaning, regressMeaning string, initial int) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return perrors.New(perrors.CodeClockEmptyName, "clock name is required")
	}
	if _, ok := b.clocks[name]; ok {
		return perrors.Newf(perrors.CodeClockDuplicate, "clock %q already exists", name)
	}
	if max <= 0 {
		return perrors.Newf(perrors.CodeClockInvalidMax, "clock %q max must be positive, got %d", name, max)
	}
	if initial < 0 || initial > max {
		return perrors.Newf(perrors.CodeClockOutOfRange, "clock %q initial %d outside [0, %d]", name, initial, max)
	}
	b.clocks[name] = &Clock{
		Name:           name,
		Current:        initial,
		Max:            max,
		AdvanceMeaning: advanceMeaning,
		RegressMeaning: regressMeaning,
		Filled:         initial == max,
	}
	return nil
}

// Update moves a clock by delta, clamped to [0, max], and returns the new
// current value. The filled return is true exactly once: on the update that
// first brings the clock to its max.
func (b *Board) Update(name string, delta int, reason string) (current int, filled bool, err error) {
	if strings.TrimSpace(reason) == "" {
		return 0, false, perrors.Newf(perrors.CodeClockEmptyReason, "clock %q update requires a reason", name)
	}
	c, ok := b.clocks[name]
	if !ok {
		return 0, false, perrors.Newf(perrors.CodeClockUnknown, "unknown clock %q", name)
	}

	next := c.Current + delta
	if next < 0 {
		next = 0
	}
	if next > c.Max {
		next = c.Max
	}
	c.Current = next

	if next == c.Max && !c.Filled {
		c.Filled = true
		return next, true, nil
	}
	return next, false, nil
}

// Get returns a copy of the named clock.
func (b *Board) Get(name string) (Clock, bool) {
	c, ok := b.clocks[name]
	if !ok {
		return Clock{}, false
	}
	return *c, true
}

// Delete removes a clock, typically after it fills or expires.
func (b *Board) Delete(name string) error {
	if _, ok := b.clocks[name]; !ok {
		return perrors.Newf(perrors.CodeClockUnknown, "unknown clock %q", name)
	}
	delete(b.clocks, name)
	return nil
}

// ClearAll removes every clock. Used on a major story pivot. Callers whose
// synthesis step also creates new clocks must clear before creating, or use
// ClearNamed — see the ordering contract in the round package.
func (b *Board) ClearAll() {
	b.clocks = make(map[string]*Clock)
}

// ClearNamed removes only the named clocks. Unknown names are ignored so a
// minor scene pivot can clear optimistically.
func (b *Board) ClearNamed(names []string) {
	for _, name := range names {
		delete(b.clocks, name)
	}
}

// Names returns the live clock names, sorted.
func (b *Board) Names() []string {
	names := make([]string, 0, len(b.clocks))
	for name := range b.clocks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns copies of all clocks in name order.
func (b *Board) Snapshot() []Clock {
	out := make([]Clock, 0, len(b.clocks))
	for _, name := range b.Names() {
		out = append(out, *b.clocks[name])
	}
	return out
}
