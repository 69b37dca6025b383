package action

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lunargale/voidtable/internal/core/check"
	"github.com/lunargale/voidtable/internal/game/roster"
	"github.com/lunargale/voidtable/internal/generator"
)

// resolutionPayload is the wire shape structured generator output must take.
// It exists only inside the conversion function; nothing else reads generator
// maps field by field.
type resolutionPayload struct {
	Narration string `json:"narration"`
	Effects   struct {
		Damage []struct {
			Target string `json:"target"`
			Amount int    `json:"amount"`
		} `json:"damage"`
		Void []struct {
			Character string `json:"character"`
			Delta     int    `json:"delta"`
			Reason    string `json:"reason"`
		} `json:"void"`
		Soulcredit []struct {
			Character string `json:"character"`
			Delta     int    `json:"delta"`
			Reason    string `json:"reason"`
		} `json:"soulcredit"`
		Clocks []struct {
			Name   string `json:"name"`
			Delta  int    `json:"delta"`
			Reason string `json:"reason"`
		} `json:"clocks"`
		NewClocks []struct {
			Name    string `json:"name"`
			Max     int    `json:"max"`
			Advance string `json:"advance"`
			Regress string `json:"regress"`
		} `json:"new_clocks"`
		Spawns []struct {
			Tier      string `json:"tier"`
			Faction   string `json:"faction"`
			Archetype string `json:"archetype"`
			Count     int    `json:"count"`
			Position  string `json:"position"`
		} `json:"spawns"`
		Removals []struct {
			Enemy string `json:"enemy"`
			Kind  string `json:"kind"`
		} `json:"removals"`
		Conditions []struct {
			Target   string `json:"target"`
			Name     string `json:"name"`
			Penalty  int    `json:"penalty"`
			Duration int    `json:"duration"`
		} `json:"conditions"`
		Positions []struct {
			Character string `json:"character"`
			To        string `json:"to"`
		} `json:"positions"`
		Notes []string `json:"notes"`
	} `json:"effects"`
}

// FromGeneratorResult converts the tagged generator variant into a
// Resolution. It is the single conversion point between generator output and
// round state.
//
// Raw text becomes a narration-only resolution; the mechanical outcome still
// comes from the dice, and the bundle carries the mandatory zero soulcredit
// entry so downstream completeness checks hold for both variants.
func FromGeneratorResult(result generator.Result, decl Declaration, outcome check.Outcome) (Resolution, error) {
	switch result.Kind {
	case generator.KindRaw:
		return Resolution{
			ActorID:   decl.ActorID,
			Narration: strings.TrimSpace(result.Raw),
			Tier:      outcome.Tier,
			Margin:    outcome.Margin,
			Effects: Effects{
				Soulcredit: []CharacterDelta{{
					CharacterID: decl.ActorID,
					Delta:       0,
					Reason:      "raw narration carries no economy change",
				}},
			},
		}, nil

	case generator.KindStructured:
		data, err := json.Marshal(result.Structured)
		if err != nil {
			return Resolution{}, fmt.Errorf("re-encode structured result: %w", err)
		}
		var payload resolutionPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return Resolution{}, fmt.Errorf("decode resolution payload: %w", err)
		}
		return fromPayload(payload, decl, outcome), nil

	default:
		return Resolution{}, fmt.Errorf("unknown generator result kind %q", result.Kind)
	}
}

func fromPayload(payload resolutionPayload, decl Declaration, outcome check.Outcome) Resolution {
	res := Resolution{
		ActorID:   decl.ActorID,
		Narration: strings.TrimSpace(payload.Narration),
		Tier:      outcome.Tier,
		Margin:    outcome.Margin,
	}

	for _, d := range payload.Effects.Damage {
		res.Effects.Damage = append(res.Effects.Damage, DamageEffect{TargetID: d.Target, Amount: d.Amount})
	}
	for _, v := range payload.Effects.Void {
		res.Effects.Void = append(res.Effects.Void, CharacterDelta{CharacterID: v.Character, Delta: v.Delta, Reason: v.Reason})
	}
	for _, s := range payload.Effects.Soulcredit {
		res.Effects.Soulcredit = append(res.Effects.Soulcredit, CharacterDelta{CharacterID: s.Character, Delta: s.Delta, Reason: s.Reason})
	}
	for _, c := range payload.Effects.Clocks {
		res.Effects.Clocks = append(res.Effects.Clocks, ClockUpdate{Name: c.Name, Delta: c.Delta, Reason: c.Reason})
	}
	for _, c := range payload.Effects.NewClocks {
		res.Effects.NewClocks = append(res.Effects.NewClocks, ClockSpec{
			Name: c.Name, Max: c.Max, AdvanceMeaning: c.Advance, RegressMeaning: c.Regress,
		})
	}
	for _, s := range payload.Effects.Spawns {
		res.Effects.Spawns = append(res.Effects.Spawns, SpawnSpec{
			Tier: roster.Tier(s.Tier), Faction: s.Faction, Archetype: s.Archetype,
			Count: s.Count, Position: s.Position,
		})
	}
	for _, rm := range payload.Effects.Removals {
		res.Effects.Removals = append(res.Effects.Removals, RemovalSpec{
			EnemyID: rm.Enemy, Kind: roster.RemovalKind(rm.Kind),
		})
	}
	for _, c := range payload.Effects.Conditions {
		res.Effects.Conditions = append(res.Effects.Conditions, ConditionEffect{
			TargetID: c.Target, Name: c.Name, Penalty: c.Penalty, Duration: c.Duration,
		})
	}
	for _, p := range payload.Effects.Positions {
		res.Effects.Positions = append(res.Effects.Positions, PositionChange{CharacterID: p.Character, To: p.To})
	}
	res.Effects.Notes = append(res.Effects.Notes, payload.Effects.Notes...)

	return res
}
