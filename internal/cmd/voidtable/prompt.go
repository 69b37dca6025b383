package voidtable

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lunargale/voidtable/internal/core/check"
	"github.com/lunargale/voidtable/internal/game/action"
	"github.com/lunargale/voidtable/internal/game/character"
	"github.com/lunargale/voidtable/internal/game/roster"
	"github.com/lunargale/voidtable/internal/game/round"
)

// BuildPrompt renders the generation prompt for one declaration. The dice
// outcome is already decided; the generator narrates it and proposes effects,
// it never re-rolls.
func BuildPrompt(snap round.Snapshot, decl action.Declaration, outcome check.Outcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You narrate one action in a dark-fantasy tabletop round.\n")
	fmt.Fprintf(&b, "Location: %s\nSituation: %s\n", snap.Location, snap.Situation)

	for _, ch := range snap.Characters {
		if ch.ID != decl.ActorID {
			continue
		}
		state := snap.Economy[ch.ID]
		fmt.Fprintf(&b, "Actor: %s (void %d, soulcredit %d, position %q)\n",
			ch.Name, state.Void, state.Soulcredit, ch.Position)
	}

	if len(snap.Clocks) > 0 {
		b.WriteString("Clocks:\n")
		for _, cl := range snap.Clocks {
			fmt.Fprintf(&b, "  - %s %d/%d\n", cl.Name, cl.Current, cl.Max)
		}
	}
	active := make([]string, 0, len(snap.Enemies))
	for _, e := range snap.Enemies {
		if e.State == roster.StateActive {
			active = append(active, fmt.Sprintf("%s %s (%s)", e.Tier, e.Archetype, e.Position))
		}
	}
	if len(active) > 0 {
		sort.Strings(active)
		fmt.Fprintf(&b, "Enemies: %s\n", strings.Join(active, "; "))
	}

	fmt.Fprintf(&b, "Intent: %s\n", decl.Intent)
	if decl.TargetID != "" {
		fmt.Fprintf(&b, "Target: %s\n", decl.TargetID)
	}
	if decl.IsRitual {
		b.WriteString("The action is a ritual; void consequences are in play.\n")
	}
	fmt.Fprintf(&b, "Dice outcome: %s (margin %+d). Narrate this result faithfully.\n", outcome.Tier, outcome.Margin)
	return b.String()
}

// demoIntents rotate so repeated demo rounds read differently.
var demoIntents = []string{
	"press deeper into the stacks",
	"search the drowned shelves for the binding ledger",
	"hold the narrow stair against whatever follows",
	"trace the failing ward lines to their anchor",
}

// demoDeclarations builds one main action per character. This is host-side
// demo scripting; real tables declare through their own front end.
func demoDeclarations(characters []character.Character, roundNum int) []action.Declaration {
	sort.Slice(characters, func(i, j int) bool { return characters[i].ID < characters[j].ID })
	out := make([]action.Declaration, 0, len(characters))
	for i, ch := range characters {
		attr, skill := bestAbility(ch)
		out = append(out, action.Declaration{
			ActorID:    ch.ID,
			Kind:       action.KindMain,
			Intent:     demoIntents[(roundNum+i)%len(demoIntents)],
			Attribute:  attr,
			Skill:      skill,
			Difficulty: 10 + roundNum,
		})
	}
	return out
}

// bestAbility picks the character's highest attribute and best skill.
func bestAbility(ch character.Character) (character.Attribute, string) {
	best := character.AllAttributes[0]
	for _, a := range character.AllAttributes[1:] {
		if ch.Attributes[a] > ch.Attributes[best] {
			best = a
		}
	}
	var skill string
	for name, value := range ch.Skills {
		if skill == "" || value > ch.Skills[skill] || (value == ch.Skills[skill] && name < skill) {
			skill = name
		}
	}
	return best, skill
}
