// Package roster manages the lifecycle of non-player combatants.
//
// Enemies enter through explicit spawn requests and leave through explicit
// removal requests — combat defeat is only one of four removal kinds, since
// narrative resolutions (fleeing, persuasion, arrest) are first-class
// outcomes. Nothing is ever silently dropped: removed enemies stay on record
// with their lifecycle state, and only the clear operations discard them.
package roster

import (
	"sort"
	"strings"

	perrors "github.com/lunargale/voidtable/internal/platform/errors"
	"github.com/lunargale/voidtable/internal/platform/id"
)

// Tier is the enemy template tier.
type Tier string

const (
	TierGrunt Tier = "grunt"
	TierElite Tier = "elite"
	TierBoss  Tier = "boss"
)

// LifecycleState tracks where an enemy is in its lifecycle.
type LifecycleState string

const (
	StateActive      LifecycleState = "active"
	StateFled        LifecycleState = "fled"
	StateConvinced   LifecycleState = "convinced"
	StateNeutralized LifecycleState = "neutralized"
	StateDefeated    LifecycleState = "defeated"
)

// RemovalKind names why an enemy left play.
type RemovalKind string

const (
	RemovedFled        RemovalKind = "fled"
	RemovedConvinced   RemovalKind = "convinced"
	RemovedNeutralized RemovalKind = "neutralized"
	RemovedDefeated    RemovalKind = "defeated"
)

var removalStates = map[RemovalKind]LifecycleState{
	RemovedFled:        StateFled,
	RemovedConvinced:   StateConvinced,
	RemovedNeutralized: StateNeutralized,
	RemovedDefeated:    StateDefeated,
}

// Enemy is one non-player combatant.
type Enemy struct {
	ID        string
	Tier      Tier
	Faction   string
	Archetype string
	Position  string
	State     LifecycleState
	// SpawnReason and RemovalReason keep the roster auditable.
	SpawnReason   string
	RemovalReason string
}

// Roster holds every enemy of a session, active or removed. Single-writer
// like the other boards: only round synthesis mutates it.
type Roster struct {
	enemies map[string]*Enemy
	order   []string // spawn order, for stable snapshots
	newID   func() (string, error)
}

// NewRoster builds an empty roster.
func NewRoster() *Roster {
	return &Roster{
		enemies: make(map[string]*Enemy),
		newID:   id.NewID,
	}
}

// FromSnapshot rebuilds a roster from a snapshot, keeping ids and order.
// Used for staged effect validation and for replaying stored rounds.
func FromSnapshot(enemies []Enemy) *Roster {
	r := NewRoster()
	for _, e := range enemies {
		copied := e
		r.enemies[e.ID] = &copied
		r.order = append(r.order, e.ID)
	}
	return r
}

// Spawn creates count enemies from a template and returns their ids in
// creation order.
func (r *Roster) Spawn(tier Tier, faction, archetype string, count int, position, reason string) ([]string, error) {
	switch tier {
	case TierGrunt, TierElite, TierBoss:
	default:
		return nil, perrors.Newf(perrors.CodeEnemyInvalidTier, "unknown enemy tier %q", tier)
	}
	if count < 1 {
		return nil, perrors.Newf(perrors.CodeEnemyInvalidCount, "spawn count must be >= 1, got %d", count)
	}
	if strings.TrimSpace(reason) == "" {
		return nil, perrors.New(perrors.CodeEnemyEmptyReason, "spawn requires a reason")
	}

	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		enemyID, err := r.newID()
		if err != nil {
			return nil, err
		}
		r.enemies[enemyID] = &Enemy{
			ID:          enemyID,
			Tier:        tier,
			Faction:     faction,
			Archetype:   archetype,
			Position:    position,
			State:       StateActive,
			SpawnReason: reason,
		}
		r.order = append(r.order, enemyID)
		ids = append(ids, enemyID)
	}
	return ids, nil
}

// Remove retires an enemy with one of the four removal kinds. The enemy
// stays on record in its terminal lifecycle state.
func (r *Roster) Remove(enemyID string, kind RemovalKind, reason string) error {
	state, ok := removalStates[kind]
	if !ok {
		return perrors.Newf(perrors.CodeEnemyInvalidRemoval, "unknown removal kind %q", kind)
	}
	enemy, ok := r.enemies[enemyID]
	if !ok {
		return perrors.Newf(perrors.CodeEnemyUnknown, "unknown enemy %q", enemyID)
	}
	enemy.State = state
	enemy.RemovalReason = reason
	return nil
}

// Get returns a copy of the enemy.
func (r *Roster) Get(enemyID string) (Enemy, bool) {
	enemy, ok := r.enemies[enemyID]
	if !ok {
		return Enemy{}, false
	}
	return *enemy, true
}

// Active returns copies of enemies still in play, in spawn order.
func (r *Roster) Active() []Enemy {
	out := make([]Enemy, 0, len(r.order))
	for _, enemyID := range r.order {
		if enemy := r.enemies[enemyID]; enemy != nil && enemy.State == StateActive {
			out = append(out, *enemy)
		}
	}
	return out
}

// Snapshot returns copies of all enemies, active and removed, in spawn order.
func (r *Roster) Snapshot() []Enemy {
	out := make([]Enemy, 0, len(r.order))
	for _, enemyID := range r.order {
		if enemy := r.enemies[enemyID]; enemy != nil {
			out = append(out, *enemy)
		}
	}
	return out
}

// ActiveIDs returns sorted ids of active enemies.
func (r *Roster) ActiveIDs() []string {
	ids := make([]string, 0, len(r.enemies))
	for enemyID, enemy := range r.enemies {
		if enemy.State == StateActive {
			ids = append(ids, enemyID)
		}
	}
	sort.Strings(ids)
	return ids
}

// ClearAll discards every enemy. Used on a major story pivot.
func (r *Roster) ClearAll() {
	r.enemies = make(map[string]*Enemy)
	r.order = nil
}

// ClearNamed discards only the named enemies. Unknown ids are ignored.
func (r *Roster) ClearNamed(enemyIDs []string) {
	for _, enemyID := range enemyIDs {
		if _, ok := r.enemies[enemyID]; !ok {
			continue
		}
		delete(r.enemies, enemyID)
	}
	kept := r.order[:0]
	for _, enemyID := range r.order {
		if _, ok := r.enemies[enemyID]; ok {
			kept = append(kept, enemyID)
		}
	}
	r.order = kept
}
