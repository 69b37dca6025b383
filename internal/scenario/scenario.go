// Package scenario loads YAML scenario and roster documents into the
// in-memory values a session starts from. It is a host-side boundary; the
// round engine never reads files.
package scenario

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lunargale/voidtable/internal/game/character"
	perrors "github.com/lunargale/voidtable/internal/platform/errors"
)

// ClockDef is one opening clock.
type ClockDef struct {
	Name    string `yaml:"name"`
	Max     int    `yaml:"max"`
	Initial int    `yaml:"initial"`
	Advance string `yaml:"advance"`
	Regress string `yaml:"regress"`
}

// Scenario is the opening table state.
type Scenario struct {
	Name      string     `yaml:"name"`
	Location  string     `yaml:"location"`
	Situation string     `yaml:"situation"`
	Clocks    []ClockDef `yaml:"clocks"`
}

// CharacterDef is one roster entry.
type CharacterDef struct {
	ID         string         `yaml:"id"`
	Name       string         `yaml:"name"`
	Origin     string         `yaml:"origin"`
	Attributes map[string]int `yaml:"attributes"`
	Skills     map[string]int `yaml:"skills"`
	Bonds      []string       `yaml:"bonds"`
	Position   string         `yaml:"position"`
}

// Load decodes and validates a scenario document.
func Load(r io.Reader) (Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return Scenario{}, perrors.Wrap(perrors.CodeScenarioInvalid, "decode scenario", err)
	}
	if s.Location == "" {
		return Scenario{}, perrors.New(perrors.CodeScenarioInvalid, "scenario requires a location")
	}
	for _, c := range s.Clocks {
		if c.Name == "" || c.Max <= 0 {
			return Scenario{}, perrors.Newf(perrors.CodeScenarioInvalid, "clock %q requires a name and positive max", c.Name)
		}
		if c.Initial < 0 || c.Initial > c.Max {
			return Scenario{}, perrors.Newf(perrors.CodeScenarioInvalid, "clock %q initial %d outside [0, %d]", c.Name, c.Initial, c.Max)
		}
	}
	return s, nil
}

// LoadFile loads a scenario from disk.
func LoadFile(path string) (Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// LoadRoster decodes a roster document and builds live character sheets,
// applying bonds through the domain rules so caps hold at load time.
func LoadRoster(r io.Reader) ([]*character.Character, error) {
	var defs []CharacterDef
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&defs); err != nil {
		return nil, perrors.Wrap(perrors.CodeScenarioInvalid, "decode roster", err)
	}
	if len(defs) == 0 {
		return nil, perrors.New(perrors.CodeScenarioInvalid, "roster requires at least one character")
	}

	out := make([]*character.Character, 0, len(defs))
	for _, def := range defs {
		attrs := make(map[character.Attribute]int, len(def.Attributes))
		for name, value := range def.Attributes {
			attrs[character.Attribute(name)] = value
		}
		ch, err := character.New(def.ID, def.Name, character.Origin(def.Origin), attrs, def.Skills)
		if err != nil {
			return nil, perrors.Wrap(perrors.CodeScenarioInvalid, fmt.Sprintf("character %q", def.ID), err)
		}
		for _, bond := range def.Bonds {
			if err := ch.AddBond(bond); err != nil {
				return nil, perrors.Wrap(perrors.CodeScenarioInvalid, fmt.Sprintf("character %q bonds", def.ID), err)
			}
		}
		ch.Position = def.Position
		out = append(out, ch)
	}
	return out, nil
}

// LoadRosterFile loads a roster from disk.
func LoadRosterFile(path string) ([]*character.Character, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()
	return LoadRoster(f)
}
