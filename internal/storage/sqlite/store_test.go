package sqlite

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/lunargale/voidtable/internal/core/check"
	"github.com/lunargale/voidtable/internal/game/action"
	"github.com/lunargale/voidtable/internal/game/economy"
	"github.com/lunargale/voidtable/internal/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "voidtable.db"))
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close(): %v", err)
		}
	})
	return s
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("Open(blank) succeeded, want error")
	}
}

func TestRoundRecordRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	record := storage.RoundRecord{
		SessionID: "s1",
		Round:     3,
		Location:  "the sunken archive",
		Situation: "wards failing",
		Summary:   "Mira slips through; Kael holds the door.",
		Declarations: []action.Declaration{
			{ActorID: "mira", Kind: action.KindMain, Intent: "slip past", Difficulty: 12},
		},
		Resolutions: []action.Resolution{
			{
				ActorID:   "mira",
				Narration: "She slips through unseen.",
				Tier:      check.TierGood,
				Margin:    6,
				Effects: action.Effects{
					Soulcredit: []action.CharacterDelta{{CharacterID: "mira", Delta: 1, Reason: "clean work"}},
				},
			},
		},
		Economy:  map[string]economy.State{"mira": {Void: 2, Soulcredit: 4}},
		SealedAt: time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC),
	}

	if err := s.AppendRound(ctx, record); err != nil {
		t.Fatalf("AppendRound(): %v", err)
	}

	rounds, err := s.ListRounds(ctx, "s1")
	if err != nil {
		t.Fatalf("ListRounds(): %v", err)
	}
	if len(rounds) != 1 {
		t.Fatalf("ListRounds() = %d records, want 1", len(rounds))
	}
	if !reflect.DeepEqual(rounds[0], record) {
		t.Errorf("round-trip mismatch:\n got %+v\nwant %+v", rounds[0], record)
	}
}

func TestListRoundsOrdersByRound(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, n := range []int{2, 1, 3} {
		rec := storage.RoundRecord{SessionID: "s1", Round: n, SealedAt: time.Now().UTC()}
		if err := s.AppendRound(ctx, rec); err != nil {
			t.Fatalf("AppendRound(%d): %v", n, err)
		}
	}

	rounds, err := s.ListRounds(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	for i, r := range rounds {
		if r.Round != i+1 {
			t.Errorf("position %d holds round %d, want %d", i, r.Round, i+1)
		}
	}
}

func TestAppendRoundRequiresSession(t *testing.T) {
	s := openTestStore(t)
	if err := s.AppendRound(context.Background(), storage.RoundRecord{Round: 1}); err == nil {
		t.Fatal("AppendRound without session id succeeded")
	}
}

func TestTelemetryEventRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	evt := storage.TelemetryEvent{
		SessionID: "s1",
		Round:     2,
		Kind:      "resolution_degraded",
		ActorID:   "kael",
		Detail:    "generator exhausted retry budget",
		At:        time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC),
	}
	if err := s.AppendTelemetryEvent(ctx, evt); err != nil {
		t.Fatalf("AppendTelemetryEvent(): %v", err)
	}
	if err := s.AppendTelemetryEvent(ctx, storage.TelemetryEvent{SessionID: "other", Kind: "x"}); err != nil {
		t.Fatal(err)
	}

	events, err := s.ListTelemetryEvents(ctx, "s1")
	if err != nil {
		t.Fatalf("ListTelemetryEvents(): %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("ListTelemetryEvents() = %d events, want 1", len(events))
	}
	if !reflect.DeepEqual(events[0], evt) {
		t.Errorf("round-trip mismatch:\n got %+v\nwant %+v", events[0], evt)
	}
}

func TestAppendTelemetryEventRequiresKind(t *testing.T) {
	s := openTestStore(t)
	if err := s.AppendTelemetryEvent(context.Background(), storage.TelemetryEvent{SessionID: "s1"}); err == nil {
		t.Fatal("AppendTelemetryEvent without kind succeeded")
	}
}
