package action

import (
	"encoding/json"
	"testing"

	"github.com/lunargale/voidtable/internal/core/check"
	"github.com/lunargale/voidtable/internal/game/character"
	"github.com/lunargale/voidtable/internal/game/roster"
	"github.com/lunargale/voidtable/internal/generator"
)

func TestFallback(t *testing.T) {
	decl := Declaration{ActorID: "kael", Kind: KindMain, Intent: "pick the lock", Attribute: character.AttrGrace}

	res := Fallback(decl, "generator timeout")

	if !res.Degraded {
		t.Fatal("Fallback() Degraded = false, want true")
	}
	if res.DegradedReason != "generator timeout" {
		t.Errorf("DegradedReason = %q, want %q", res.DegradedReason, "generator timeout")
	}
	if res.Tier != check.TierModerate {
		t.Errorf("Tier = %q, want %q", res.Tier, check.TierModerate)
	}
	if res.Margin != 0 {
		t.Errorf("Margin = %d, want 0", res.Margin)
	}
	if res.Narration == "" {
		t.Error("Narration is empty, want neutral text")
	}
	if len(res.Effects.Soulcredit) != 1 {
		t.Fatalf("Soulcredit entries = %d, want exactly 1", len(res.Effects.Soulcredit))
	}
	entry := res.Effects.Soulcredit[0]
	if entry.CharacterID != "kael" || entry.Delta != 0 {
		t.Errorf("soulcredit entry = %+v, want zero delta for kael", entry)
	}
	if entry.Reason == "" {
		t.Error("soulcredit entry has no reason")
	}
	if len(res.Effects.Damage) != 0 || len(res.Effects.Clocks) != 0 || len(res.Effects.Spawns) != 0 {
		t.Error("fallback carries mechanical effects beyond the soulcredit entry")
	}
}

func TestFallbackDefaultReason(t *testing.T) {
	res := Fallback(Declaration{ActorID: "kael"}, "  ")
	if res.DegradedReason != "generation unavailable" {
		t.Errorf("DegradedReason = %q, want default", res.DegradedReason)
	}
}

func TestFromGeneratorResultRaw(t *testing.T) {
	decl := Declaration{ActorID: "mira", Kind: KindMain}
	outcome := check.Outcome{Tier: check.TierGood, Margin: 7, Success: true}

	res, err := FromGeneratorResult(generator.Result{Kind: generator.KindRaw, Raw: "  She slips past the ward.  "}, decl, outcome)
	if err != nil {
		t.Fatalf("FromGeneratorResult() error = %v", err)
	}
	if res.Narration != "She slips past the ward." {
		t.Errorf("Narration = %q, want trimmed raw text", res.Narration)
	}
	if res.Tier != check.TierGood || res.Margin != 7 {
		t.Errorf("outcome carried = (%q, %d), want (good, 7)", res.Tier, res.Margin)
	}
	if res.Degraded {
		t.Error("raw resolution marked degraded")
	}
	if len(res.Effects.Soulcredit) != 1 {
		t.Fatalf("Soulcredit entries = %d, want the mandatory zero entry", len(res.Effects.Soulcredit))
	}
	if got := res.Effects.Soulcredit[0]; got.CharacterID != "mira" || got.Delta != 0 {
		t.Errorf("soulcredit entry = %+v, want zero delta for mira", got)
	}
}

func TestFromGeneratorResultStructured(t *testing.T) {
	raw := `{
		"narration": "The sigil cracks and the chamber floods with pale light.",
		"effects": {
			"damage": [{"target": "enemy-1", "amount": 4}],
			"void": [{"character": "mira", "delta": 1, "reason": "channeled the breach"}],
			"soulcredit": [{"character": "mira", "delta": 2, "reason": "ward broken cleanly"}],
			"clocks": [{"name": "alarm", "delta": -1, "reason": "silenced the chime"}],
			"new_clocks": [{"name": "ritual", "max": 6, "advance": "ritual nears completion", "regress": "ritual disrupted"}],
			"spawns": [{"tier": "grunt", "faction": "husks", "archetype": "drone", "count": 2, "position": "east hall"}],
			"removals": [{"enemy": "enemy-2", "kind": "convinced"}],
			"conditions": [{"target": "mira", "name": "dazzled", "penalty": 2, "duration": 1}],
			"positions": [{"character": "mira", "to": "inner sanctum"}],
			"notes": ["the light marks her aura"]
		}
	}`
	var structured map[string]any
	if err := json.Unmarshal([]byte(raw), &structured); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}

	decl := Declaration{ActorID: "mira", Kind: KindMain, IsRitual: true}
	outcome := check.Outcome{Tier: check.TierExceptional, Margin: 12, Success: true}

	res, err := FromGeneratorResult(generator.Result{Kind: generator.KindStructured, Structured: structured}, decl, outcome)
	if err != nil {
		t.Fatalf("FromGeneratorResult() error = %v", err)
	}

	if res.Narration != "The sigil cracks and the chamber floods with pale light." {
		t.Errorf("Narration = %q", res.Narration)
	}
	if res.Tier != check.TierExceptional || res.Margin != 12 {
		t.Errorf("outcome carried = (%q, %d), want (exceptional, 12)", res.Tier, res.Margin)
	}
	if got := res.Effects.Damage; len(got) != 1 || got[0] != (DamageEffect{TargetID: "enemy-1", Amount: 4}) {
		t.Errorf("Damage = %+v", got)
	}
	if got := res.Effects.Void; len(got) != 1 || got[0] != (CharacterDelta{CharacterID: "mira", Delta: 1, Reason: "channeled the breach"}) {
		t.Errorf("Void = %+v", got)
	}
	if got := res.Effects.Soulcredit; len(got) != 1 || got[0].Delta != 2 {
		t.Errorf("Soulcredit = %+v", got)
	}
	if got := res.Effects.Clocks; len(got) != 1 || got[0] != (ClockUpdate{Name: "alarm", Delta: -1, Reason: "silenced the chime"}) {
		t.Errorf("Clocks = %+v", got)
	}
	if got := res.Effects.NewClocks; len(got) != 1 || got[0].Name != "ritual" || got[0].Max != 6 {
		t.Errorf("NewClocks = %+v", got)
	}
	if got := res.Effects.Spawns; len(got) != 1 || got[0].Tier != roster.TierGrunt || got[0].Count != 2 {
		t.Errorf("Spawns = %+v", got)
	}
	if got := res.Effects.Removals; len(got) != 1 || got[0] != (RemovalSpec{EnemyID: "enemy-2", Kind: roster.RemovedConvinced}) {
		t.Errorf("Removals = %+v", got)
	}
	if got := res.Effects.Conditions; len(got) != 1 || got[0].Name != "dazzled" || got[0].Penalty != 2 {
		t.Errorf("Conditions = %+v", got)
	}
	if got := res.Effects.Positions; len(got) != 1 || got[0] != (PositionChange{CharacterID: "mira", To: "inner sanctum"}) {
		t.Errorf("Positions = %+v", got)
	}
	if got := res.Effects.Notes; len(got) != 1 || got[0] != "the light marks her aura" {
		t.Errorf("Notes = %+v", got)
	}
}

func TestFromGeneratorResultUnknownKind(t *testing.T) {
	_, err := FromGeneratorResult(generator.Result{Kind: "mystery"}, Declaration{ActorID: "mira"}, check.Outcome{})
	if err == nil {
		t.Fatal("FromGeneratorResult() error = nil, want unknown kind error")
	}
}

func TestResolutionSchemaAcceptsAndRejects(t *testing.T) {
	schema := ResolutionSchema()

	valid := map[string]any{
		"narration": "The door yields.",
		"effects": map[string]any{
			"soulcredit": []any{map[string]any{"character": "mira", "delta": float64(1)}},
		},
	}
	if err := schema.Validate(valid); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}

	missingNarration := map[string]any{"effects": map[string]any{}}
	if err := schema.Validate(missingNarration); err == nil {
		t.Error("payload without narration accepted")
	}

	badTier := map[string]any{
		"narration": "x",
		"effects": map[string]any{
			"spawns": []any{map[string]any{"tier": "titan", "count": float64(1)}},
		},
	}
	if err := schema.Validate(badTier); err == nil {
		t.Error("spawn with unknown tier accepted")
	}
}
