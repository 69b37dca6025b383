package round

import (
	"fmt"
	"strings"

	"github.com/lunargale/voidtable/internal/game/action"
	"github.com/lunargale/voidtable/internal/game/character"
	"github.com/lunargale/voidtable/internal/game/clock"
	"github.com/lunargale/voidtable/internal/game/economy"
	"github.com/lunargale/voidtable/internal/game/roster"
	perrors "github.com/lunargale/voidtable/internal/platform/errors"
)

// StoryAdvance moves the fiction forward after effects commit. ClearAll wipes
// the whole board and roster; otherwise only the named clocks and enemies are
// cleared, so enemies spawned during the same synthesis survive.
type StoryAdvance struct {
	Location     string
	Situation    string
	ClearAll     bool
	ClearClocks  []string
	ClearEnemies []string
}

// targets is the set of mutable sinks effect application writes to. The
// staged pass uses throwaway copies; the commit pass uses live state.
type targets struct {
	state State
	// sink is nil during staging so signals fire only on commit.
	sink EventSink
}

// Synthesize applies every resolution's effects as one atomic batch, then the
// optional story advance, and seals the round. Effects are first replayed
// against a staged copy of the table; any invariant violation surfaces with
// nothing committed.
func (c *Coordinator) Synthesize(advance *StoryAdvance) error {
	switch c.phase {
	case PhaseSynthesizing:
	case PhaseSealed:
		return perrors.New(perrors.CodeRoundSealed, "round already sealed")
	default:
		return perrors.Newf(perrors.CodeRoundPhase, "cannot synthesize during %s", c.phase)
	}

	staged, err := c.stage()
	if err != nil {
		return fmt.Errorf("stage table state: %w", err)
	}
	for _, r := range c.results {
		if err := applyEffects(staged, r.resolution); err != nil {
			return fmt.Errorf("effects for %s rejected: %w", r.decl.ActorID, err)
		}
	}

	live := targets{state: c.state, sink: c.sink}
	for _, r := range c.results {
		// Staging already proved the batch; a commit failure here
		// would mean the stage diverged from live state.
		if err := applyEffects(live, r.resolution); err != nil {
			return fmt.Errorf("commit effects for %s: %w", r.decl.ActorID, err)
		}
	}
	c.syncCharacterEconomy()

	if advance != nil {
		c.applyAdvance(*advance)
	}

	c.summary = foldSummary(c.results)
	c.phase = PhaseSealed
	return nil
}

// stage builds disposable copies of the ledger, board, and roster seeded from
// live state. Character sheets are cloned so condition and position effects
// stay off the live table until commit.
func (c *Coordinator) stage() (targets, error) {
	ledger := economy.NewLedger()
	for id, st := range c.state.Ledger.Snapshot() {
		if err := ledger.Register(id, st.Void, st.Soulcredit); err != nil {
			return targets{}, err
		}
	}

	board := clock.NewBoard()
	for _, cl := range c.state.Board.Snapshot() {
		if err := board.Create(cl.Name, cl.Max, cl.AdvanceMeaning, cl.RegressMeaning, cl.Current); err != nil {
			return targets{}, err
		}
	}

	characters := make(map[string]*character.Character, len(c.state.Characters))
	for id, ch := range c.state.Characters {
		characters[id] = ch.Clone()
	}

	return targets{state: State{
		Location:   c.state.Location,
		Situation:  c.state.Situation,
		Characters: characters,
		Ledger:     ledger,
		Board:      board,
		Roster:     roster.FromSnapshot(c.state.Roster.Snapshot()),
	}}, nil
}

// applyAdvance updates the fiction and clears what the advance names. Order
// matters: clearing runs after effect commit, so ClearNamed never touches
// enemies spawned this round unless explicitly listed.
func (c *Coordinator) applyAdvance(adv StoryAdvance) {
	if loc := strings.TrimSpace(adv.Location); loc != "" {
		c.state.Location = loc
	}
	if sit := strings.TrimSpace(adv.Situation); sit != "" {
		c.state.Situation = sit
	}
	if adv.ClearAll {
		c.state.Board.ClearAll()
		c.state.Roster.ClearAll()
		return
	}
	if len(adv.ClearClocks) > 0 {
		c.state.Board.ClearNamed(adv.ClearClocks)
	}
	if len(adv.ClearEnemies) > 0 {
		c.state.Roster.ClearNamed(adv.ClearEnemies)
	}
}

// syncCharacterEconomy mirrors ledger state back onto character sheets so
// snapshots show current void and soulcredit.
func (c *Coordinator) syncCharacterEconomy() {
	for id, ch := range c.state.Characters {
		if st, ok := c.state.Ledger.State(id); ok {
			ch.Void = st.Void
			ch.Soulcredit = st.Soulcredit
		}
	}
}

// applyEffects writes one resolution's bundle into the given targets in a
// fixed order: economy, clocks, roster, then character-local effects.
func applyEffects(t targets, res action.Resolution) error {
	for _, v := range res.Effects.Void {
		if _, err := t.state.Ledger.Apply(v.CharacterID, v.Delta, 0, effectReason(v.Reason, res.ActorID)); err != nil {
			return err
		}
	}
	for _, s := range res.Effects.Soulcredit {
		if _, err := t.state.Ledger.Apply(s.CharacterID, 0, s.Delta, effectReason(s.Reason, res.ActorID)); err != nil {
			return err
		}
	}
	for _, spec := range res.Effects.NewClocks {
		if err := t.state.Board.Create(spec.Name, spec.Max, spec.AdvanceMeaning, spec.RegressMeaning, 0); err != nil {
			return err
		}
	}
	for _, cu := range res.Effects.Clocks {
		_, filled, err := t.state.Board.Update(cu.Name, cu.Delta, effectReason(cu.Reason, res.ActorID))
		if err != nil {
			return err
		}
		if filled && t.sink != nil {
			t.sink.Event(EventClockFill, res.ActorID, cu.Name)
		}
	}
	for _, sp := range res.Effects.Spawns {
		if _, err := t.state.Roster.Spawn(sp.Tier, sp.Faction, sp.Archetype, sp.Count, sp.Position, effectReason("", res.ActorID)); err != nil {
			return err
		}
	}
	for _, rm := range res.Effects.Removals {
		if err := t.state.Roster.Remove(rm.EnemyID, rm.Kind, effectReason("", res.ActorID)); err != nil {
			return err
		}
	}
	for _, cond := range res.Effects.Conditions {
		if ch, ok := t.state.Characters[cond.TargetID]; ok {
			ch.AddCondition(conditionOf(cond))
		}
	}
	for _, pos := range res.Effects.Positions {
		if ch, ok := t.state.Characters[pos.CharacterID]; ok {
			ch.Position = pos.To
		}
	}
	return nil
}

func conditionOf(cond action.ConditionEffect) character.Condition {
	return character.Condition{Name: cond.Name, Penalty: cond.Penalty, Duration: cond.Duration}
}

// effectReason guarantees the non-empty reasons the ledger and board demand,
// even when generator output omitted one.
func effectReason(reason, actorID string) string {
	if r := strings.TrimSpace(reason); r != "" {
		return r
	}
	return "effect of " + actorID + "'s action"
}
