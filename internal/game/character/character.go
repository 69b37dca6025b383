// Package character models player and non-player actors.
//
// Characters are created at session init and never deleted; incapacitation
// flips a flag instead. All mutation happens during round synthesis.
package character

import (
	"strings"

	perrors "github.com/lunargale/voidtable/internal/platform/errors"
)

// Attribute names one of the eight character attributes.
type Attribute string

const (
	AttrVigor      Attribute = "vigor"
	AttrGrace      Attribute = "grace"
	AttrIntellect  Attribute = "intellect"
	AttrResolve    Attribute = "resolve"
	AttrPresence   Attribute = "presence"
	AttrLore       Attribute = "lore"
	AttrCraft      Attribute = "craft"
	AttrAttunement Attribute = "attunement"
)

// AllAttributes lists every attribute a character sheet must carry.
var AllAttributes = []Attribute{
	AttrVigor, AttrGrace, AttrIntellect, AttrResolve,
	AttrPresence, AttrLore, AttrCraft, AttrAttunement,
}

// Origin tags where a character comes from, which constrains bonds.
type Origin string

const (
	// OriginCoven members carry up to MaxBonds bonds.
	OriginCoven Origin = "coven"
	// OriginIndependent characters carry at most one bond.
	OriginIndependent Origin = "independent"
)

// Bond caps per origin.
const (
	MaxBonds            = 3
	MaxBondsIndependent = 1
)

// Void bounds. Void is the per-character corruption score.
const (
	VoidMin = 0
	VoidMax = 10
)

// Condition is a named status effect with a mechanical penalty.
type Condition struct {
	Name     string
	Penalty  int
	Duration int // rounds remaining; 0 means until cleared
}

// Character is an actor's full sheet and mutable state.
type Character struct {
	ID            string
	Name          string
	Origin        Origin
	Attributes    map[Attribute]int
	Skills        map[string]int
	Void          int
	Soulcredit    int
	Bonds         []string
	Position      string
	Conditions    []Condition
	Incapacitated bool
}

// New validates and builds a character.
func New(id, name string, origin Origin, attributes map[Attribute]int, skills map[string]int) (*Character, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, perrors.New(perrors.CodeCharacterEmptyID, "character id is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, perrors.New(perrors.CodeCharacterEmptyName, "character name is required")
	}
	if origin == "" {
		origin = OriginCoven
	}

	attrs := make(map[Attribute]int, len(AllAttributes))
	for _, attr := range AllAttributes {
		value, ok := attributes[attr]
		if !ok {
			return nil, perrors.Newf(perrors.CodeCharacterMissingAttribute, "attribute %q is required", attr)
		}
		attrs[attr] = value
	}

	sk := make(map[string]int, len(skills))
	for name, value := range skills {
		if value < 0 {
			return nil, perrors.Newf(perrors.CodeCharacterInvalidSkill, "skill %q must be >= 0", name)
		}
		sk[name] = value
	}

	return &Character{
		ID:         id,
		Name:       name,
		Origin:     origin,
		Attributes: attrs,
		Skills:     sk,
	}, nil
}

// BondCap returns the maximum bonds this character may hold.
func (c *Character) BondCap() int {
	if c.Origin == OriginIndependent {
		return MaxBondsIndependent
	}
	return MaxBonds
}

// AddBond records a bond, rejecting duplicates and over-cap additions.
func (c *Character) AddBond(target string) error {
	target = strings.TrimSpace(target)
	for _, existing := range c.Bonds {
		if existing == target {
			return perrors.Newf(perrors.CodeCharacterBondDuplicate, "bond with %q already exists", target)
		}
	}
	if len(c.Bonds) >= c.BondCap() {
		return perrors.Newf(perrors.CodeCharacterBondCapReached, "bond cap %d reached", c.BondCap())
	}
	c.Bonds = append(c.Bonds, target)
	return nil
}

// Skill returns the character's rating for a skill, 0 when untrained.
func (c *Character) Skill(name string) int {
	return c.Skills[name]
}

// AddCondition appends a status effect.
func (c *Character) AddCondition(cond Condition) {
	c.Conditions = append(c.Conditions, cond)
}

// TickConditions decrements durations and drops expired conditions.
// Conditions with Duration 0 persist until explicitly cleared.
func (c *Character) TickConditions() {
	kept := c.Conditions[:0]
	for _, cond := range c.Conditions {
		if cond.Duration == 0 {
			kept = append(kept, cond)
			continue
		}
		cond.Duration--
		if cond.Duration > 0 {
			kept = append(kept, cond)
		}
	}
	c.Conditions = kept
}

// Clone returns a deep copy, used for read-only snapshots during resolution.
func (c *Character) Clone() *Character {
	clone := *c
	clone.Attributes = make(map[Attribute]int, len(c.Attributes))
	for k, v := range c.Attributes {
		clone.Attributes[k] = v
	}
	clone.Skills = make(map[string]int, len(c.Skills))
	for k, v := range c.Skills {
		clone.Skills[k] = v
	}
	clone.Bonds = append([]string(nil), c.Bonds...)
	clone.Conditions = append([]Condition(nil), c.Conditions...)
	return &clone
}
