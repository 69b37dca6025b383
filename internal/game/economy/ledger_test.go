package economy

import (
	"testing"

	perrors "github.com/lunargale/voidtable/internal/platform/errors"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l := NewLedger()
	if err := l.Register("pc-1", 0, 0); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return l
}

func TestApply(t *testing.T) {
	tests := []struct {
		name      string
		voidDelta int
		soulDelta int
		reason    string
		wantVoid  int
		wantSoul  int
		wantCode  perrors.Code
	}{
		{"gain void and soulcredit", 2, 3, "ritual backlash", 2, 3, ""},
		{"zero delta with reason", 0, 0, "bookkeeping checkpoint", 0, 0, ""},
		{"empty reason rejected", 1, 0, "", 0, 0, perrors.CodeEconomyEmptyReason},
		{"whitespace reason rejected", 1, 0, "   ", 0, 0, perrors.CodeEconomyEmptyReason},
		{"negative soulcredit allowed", 0, -7, "broken oath", 0, -7, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLedger(t)
			state, err := l.Apply("pc-1", tt.voidDelta, tt.soulDelta, tt.reason)
			if tt.wantCode != "" {
				if perrors.CodeOf(err) != tt.wantCode {
					t.Fatalf("Apply() error = %v, want code %q", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if state.Void != tt.wantVoid || state.Soulcredit != tt.wantSoul {
				t.Errorf("state = %+v, want void %d soul %d", state, tt.wantVoid, tt.wantSoul)
			}
		})
	}
}

func TestApplyClampsVoid(t *testing.T) {
	l := newTestLedger(t)

	state, err := l.Apply("pc-1", 15, 0, "catastrophic rift")
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if state.Void != VoidMax {
		t.Errorf("void = %d, want clamp at %d", state.Void, VoidMax)
	}

	state, err = l.Apply("pc-1", -99, 0, "purification rite")
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if state.Void != VoidMin {
		t.Errorf("void = %d, want clamp at %d", state.Void, VoidMin)
	}

	log := l.Log()
	if len(log) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(log))
	}
	for i, entry := range log {
		if !entry.Clamped {
			t.Errorf("entry %d should record the clamp: %+v", i, entry)
		}
	}
}

func TestApplyUnknownActor(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.Apply("ghost", 1, 0, "haunting")
	if perrors.CodeOf(err) != perrors.CodeEconomyUnknownActor {
		t.Errorf("expected unknown actor error, got %v", err)
	}
}

func TestVoidRisingBand(t *testing.T) {
	l := newTestLedger(t)
	state, err := l.Apply("pc-1", 8, 0, "pact sealed")
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !state.VoidRising() {
		t.Errorf("void %d should report rising", state.Void)
	}
	state, err = l.Apply("pc-1", -1, 0, "small mercy")
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if state.VoidRising() {
		t.Errorf("void %d should not report rising", state.Void)
	}
}

func TestRegisterValidatesVoid(t *testing.T) {
	l := NewLedger()
	if err := l.Register("pc-1", 11, 0); perrors.CodeOf(err) != perrors.CodeEconomyVoidRange {
		t.Errorf("expected void range error, got %v", err)
	}
}

func TestReplayMatchesLiveState(t *testing.T) {
	l := NewLedger()
	for _, id := range []string{"pc-1", "pc-2"} {
		if err := l.Register(id, 0, 0); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
	}

	steps := []struct {
		id         string
		void, soul int
		reason     string
	}{
		{"pc-1", 3, 1, "first ritual"},
		{"pc-2", 1, -2, "theft witnessed"},
		{"pc-1", 9, 0, "rift exposure"}, // clamps at 10
		{"pc-1", -2, 4, "cleansing"},
	}
	for _, s := range steps {
		if _, err := l.Apply(s.id, s.void, s.soul, s.reason); err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
	}

	replayed := Replay(l.Log())
	for id, want := range l.Snapshot() {
		if got := replayed[id]; got != want {
			t.Errorf("replay mismatch for %s: got %+v, want %+v", id, got, want)
		}
	}
}
