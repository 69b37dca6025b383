package validate

import (
	"strings"
	"testing"

	"github.com/lunargale/voidtable/internal/game/action"
)

func knownFixture() KnownState {
	return KnownState{
		ClockNames:   map[string]bool{"alarm": true},
		CharacterIDs: map[string]bool{"mira": true, "kael": true},
		EnemyIDs:     map[string]bool{"enemy-1": true},
	}
}

func cleanResolution(actorID string) action.Resolution {
	return action.Resolution{
		ActorID:   actorID,
		Narration: strings.Repeat("the ward flickers and fades. ", 3),
		Margin:    4,
		Effects: action.Effects{
			Soulcredit: []action.CharacterDelta{{CharacterID: actorID, Delta: 0, Reason: "steady work"}},
		},
	}
}

func TestCheckCleanResolution(t *testing.T) {
	c := NewChecker(0, 0)
	decl := action.Declaration{ActorID: "mira"}

	warnings := c.Check(cleanResolution("mira"), decl, knownFixture())
	if len(warnings) != 0 {
		t.Fatalf("Check() = %v, want no warnings", warnings)
	}
}

func TestCheckWarnings(t *testing.T) {
	c := NewChecker(20, 100)
	decl := action.Declaration{ActorID: "mira"}
	known := knownFixture()

	tests := []struct {
		name   string
		mutate func(*action.Resolution)
		want   string
	}{
		{
			name:   "short narration",
			mutate: func(r *action.Resolution) { r.Narration = "too short" },
			want:   WarnNarrationTooShort,
		},
		{
			name:   "long narration",
			mutate: func(r *action.Resolution) { r.Narration = strings.Repeat("x", 101) },
			want:   WarnNarrationTooLong,
		},
		{
			name:   "missing soulcredit entry",
			mutate: func(r *action.Resolution) { r.Effects.Soulcredit = nil },
			want:   WarnMissingSoulcredit,
		},
		{
			name: "soulcredit entry for wrong actor",
			mutate: func(r *action.Resolution) {
				r.Effects.Soulcredit = []action.CharacterDelta{{CharacterID: "kael", Delta: 1}}
			},
			want: WarnMissingSoulcredit,
		},
		{
			name:   "margin below floor",
			mutate: func(r *action.Resolution) { r.Margin = -41 },
			want:   WarnMarginOutOfRange,
		},
		{
			name:   "margin above ceiling",
			mutate: func(r *action.Resolution) { r.Margin = 41 },
			want:   WarnMarginOutOfRange,
		},
		{
			name: "damage without target",
			mutate: func(r *action.Resolution) {
				r.Effects.Damage = []action.DamageEffect{{TargetID: "  ", Amount: 3}}
			},
			want: WarnDamageWithoutTarget,
		},
		{
			name: "zero penalty condition",
			mutate: func(r *action.Resolution) {
				r.Effects.Conditions = []action.ConditionEffect{{TargetID: "mira", Name: "winded"}}
			},
			want: WarnZeroPenaltyCondition,
		},
		{
			name: "void delta for another character",
			mutate: func(r *action.Resolution) {
				r.Effects.Void = []action.CharacterDelta{{CharacterID: "kael", Delta: 1}}
			},
			want: WarnForeignVoidDelta,
		},
		{
			name: "unknown clock",
			mutate: func(r *action.Resolution) {
				r.Effects.Clocks = []action.ClockUpdate{{Name: "doom", Delta: 1}}
			},
			want: WarnUnknownClock,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := cleanResolution("mira")
			tc.mutate(&res)

			warnings := c.Check(res, decl, known)
			if len(warnings) != 1 {
				t.Fatalf("Check() = %v, want exactly one warning", warnings)
			}
			if warnings[0].Code != tc.want {
				t.Errorf("warning code = %q, want %q", warnings[0].Code, tc.want)
			}
			if warnings[0].ActorID != "mira" {
				t.Errorf("warning actor = %q, want mira", warnings[0].ActorID)
			}
		})
	}
}

func TestCheckZeroDeltaSoulcreditCounts(t *testing.T) {
	c := NewChecker(0, 0)
	res := cleanResolution("mira")
	res.Effects.Soulcredit[0].Delta = 0

	warnings := c.Check(res, action.Declaration{ActorID: "mira"}, knownFixture())
	for _, w := range warnings {
		if w.Code == WarnMissingSoulcredit {
			t.Fatal("zero-delta entry reported as missing")
		}
	}
}

func TestCheckVoidDeltaOnSelfAccepted(t *testing.T) {
	c := NewChecker(0, 0)
	res := cleanResolution("mira")
	res.Effects.Void = []action.CharacterDelta{{CharacterID: "mira", Delta: 2, Reason: "ritual surge"}}

	warnings := c.Check(res, action.Declaration{ActorID: "mira"}, knownFixture())
	if len(warnings) != 0 {
		t.Fatalf("Check() = %v, want no warnings for self void delta", warnings)
	}
}

func TestNewCheckerDefaults(t *testing.T) {
	c := NewChecker(-1, 0)
	if c.minNarration != DefaultMinNarration || c.maxNarration != DefaultMaxNarration {
		t.Errorf("bounds = (%d, %d), want defaults (%d, %d)",
			c.minNarration, c.maxNarration, DefaultMinNarration, DefaultMaxNarration)
	}
}
