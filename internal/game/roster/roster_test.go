package roster

import (
	"testing"

	perrors "github.com/lunargale/voidtable/internal/platform/errors"
)

func TestSpawn(t *testing.T) {
	tests := []struct {
		name     string
		tier     Tier
		count    int
		reason   string
		wantIDs  int
		wantCode perrors.Code
	}{
		{"single grunt", TierGrunt, 1, "ambush", 1, ""},
		{"three elites", TierElite, 3, "reinforcements", 3, ""},
		{"boss", TierBoss, 1, "the warden arrives", 1, ""},
		{"invalid tier", Tier("titan"), 1, "x", 0, perrors.CodeEnemyInvalidTier},
		{"zero count", TierGrunt, 0, "x", 0, perrors.CodeEnemyInvalidCount},
		{"empty reason", TierGrunt, 1, "  ", 0, perrors.CodeEnemyEmptyReason},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRoster()
			ids, err := r.Spawn(tt.tier, "wardens", "enforcer", tt.count, "gate", tt.reason)
			if tt.wantCode != "" {
				if perrors.CodeOf(err) != tt.wantCode {
					t.Fatalf("Spawn() error = %v, want code %q", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("Spawn() error = %v", err)
			}
			if len(ids) != tt.wantIDs {
				t.Fatalf("got %d ids, want %d", len(ids), tt.wantIDs)
			}
			if got := len(r.Active()); got != tt.wantIDs {
				t.Errorf("Active() = %d enemies, want %d", got, tt.wantIDs)
			}
		})
	}
}

func TestRemoveAllKinds(t *testing.T) {
	kinds := []struct {
		kind RemovalKind
		want LifecycleState
	}{
		{RemovedFled, StateFled},
		{RemovedConvinced, StateConvinced},
		{RemovedNeutralized, StateNeutralized},
		{RemovedDefeated, StateDefeated},
	}

	for _, tt := range kinds {
		t.Run(string(tt.kind), func(t *testing.T) {
			r := NewRoster()
			ids, err := r.Spawn(TierGrunt, "wardens", "enforcer", 1, "gate", "ambush")
			if err != nil {
				t.Fatalf("Spawn() error = %v", err)
			}

			if err := r.Remove(ids[0], tt.kind, "resolved"); err != nil {
				t.Fatalf("Remove() error = %v", err)
			}
			enemy, ok := r.Get(ids[0])
			if !ok {
				t.Fatal("removed enemy should stay on record")
			}
			if enemy.State != tt.want {
				t.Errorf("state = %q, want %q", enemy.State, tt.want)
			}
			if len(r.Active()) != 0 {
				t.Errorf("removed enemy still active")
			}
		})
	}
}

func TestRemoveValidation(t *testing.T) {
	r := NewRoster()
	ids, err := r.Spawn(TierGrunt, "wardens", "enforcer", 1, "gate", "ambush")
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}

	if err := r.Remove("missing", RemovedFled, "x"); perrors.CodeOf(err) != perrors.CodeEnemyUnknown {
		t.Errorf("expected unknown enemy error, got %v", err)
	}
	if err := r.Remove(ids[0], RemovalKind("vaporized"), "x"); perrors.CodeOf(err) != perrors.CodeEnemyInvalidRemoval {
		t.Errorf("expected invalid removal kind error, got %v", err)
	}
}

func TestClearNamed(t *testing.T) {
	r := NewRoster()
	ids, err := r.Spawn(TierGrunt, "wardens", "enforcer", 3, "gate", "ambush")
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}

	r.ClearNamed([]string{ids[1], "not-there"})
	if len(r.Snapshot()) != 2 {
		t.Fatalf("expected 2 enemies after ClearNamed, got %d", len(r.Snapshot()))
	}
	if _, ok := r.Get(ids[1]); ok {
		t.Error("cleared enemy still present")
	}

	r.ClearAll()
	if len(r.Snapshot()) != 0 {
		t.Error("ClearAll left enemies behind")
	}
}

func TestSnapshotPreservesSpawnOrder(t *testing.T) {
	r := NewRoster()
	first, err := r.Spawn(TierGrunt, "wardens", "enforcer", 2, "gate", "ambush")
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	second, err := r.Spawn(TierBoss, "wardens", "warden", 1, "hall", "alarm raised")
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}

	snapshot := r.Snapshot()
	want := append(append([]string(nil), first...), second...)
	if len(snapshot) != len(want) {
		t.Fatalf("snapshot size %d, want %d", len(snapshot), len(want))
	}
	for i, enemy := range snapshot {
		if enemy.ID != want[i] {
			t.Errorf("snapshot[%d] = %s, want %s", i, enemy.ID, want[i])
		}
	}
}

func TestFromSnapshotKeepsIDsAndOrder(t *testing.T) {
	r := NewRoster()
	ids, err := r.Spawn(TierGrunt, "wardens", "enforcer", 2, "gate", "ambush")
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	if err := r.Remove(ids[0], RemovedFled, "broke and ran"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	restored := FromSnapshot(r.Snapshot())
	snapshot := restored.Snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("restored snapshot size %d, want 2", len(snapshot))
	}
	for i, enemy := range snapshot {
		if enemy.ID != ids[i] {
			t.Errorf("restored[%d] = %s, want %s", i, enemy.ID, ids[i])
		}
	}
	if snapshot[0].State != StateFled {
		t.Errorf("restored state = %s, want %s", snapshot[0].State, StateFled)
	}

	// The restore is a copy: removals there never leak back.
	if err := restored.Remove(ids[1], RemovedDefeated, "cut down"); err != nil {
		t.Fatalf("Remove() on restore error = %v", err)
	}
	if enemy, _ := r.Get(ids[1]); enemy.State != StateActive {
		t.Errorf("original roster state = %s, want %s", enemy.State, StateActive)
	}
}
