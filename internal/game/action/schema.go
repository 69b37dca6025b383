package action

import "github.com/santhosh-tekuri/jsonschema/v5"

// resolutionSchema constrains structured generator output to the payload
// shape fromPayload understands. The generator gateway validates against it
// before the conversion function ever runs.
const resolutionSchema = `{
	"type": "object",
	"required": ["narration"],
	"properties": {
		"narration": {"type": "string", "minLength": 1},
		"effects": {
			"type": "object",
			"properties": {
				"damage": {"type": "array", "items": {
					"type": "object",
					"required": ["target", "amount"],
					"properties": {
						"target": {"type": "string"},
						"amount": {"type": "integer"}
					}
				}},
				"void": {"type": "array", "items": {
					"type": "object",
					"required": ["character", "delta"],
					"properties": {
						"character": {"type": "string"},
						"delta": {"type": "integer"},
						"reason": {"type": "string"}
					}
				}},
				"soulcredit": {"type": "array", "items": {
					"type": "object",
					"required": ["character", "delta"],
					"properties": {
						"character": {"type": "string"},
						"delta": {"type": "integer"},
						"reason": {"type": "string"}
					}
				}},
				"clocks": {"type": "array", "items": {
					"type": "object",
					"required": ["name", "delta"],
					"properties": {
						"name": {"type": "string"},
						"delta": {"type": "integer"},
						"reason": {"type": "string"}
					}
				}},
				"new_clocks": {"type": "array", "items": {
					"type": "object",
					"required": ["name", "max"],
					"properties": {
						"name": {"type": "string"},
						"max": {"type": "integer", "minimum": 1},
						"advance": {"type": "string"},
						"regress": {"type": "string"}
					}
				}},
				"spawns": {"type": "array", "items": {
					"type": "object",
					"required": ["tier", "count"],
					"properties": {
						"tier": {"type": "string", "enum": ["grunt", "elite", "boss"]},
						"faction": {"type": "string"},
						"archetype": {"type": "string"},
						"count": {"type": "integer", "minimum": 1},
						"position": {"type": "string"}
					}
				}},
				"removals": {"type": "array", "items": {
					"type": "object",
					"required": ["enemy", "kind"],
					"properties": {
						"enemy": {"type": "string"},
						"kind": {"type": "string", "enum": ["fled", "convinced", "neutralized", "defeated"]}
					}
				}},
				"conditions": {"type": "array", "items": {
					"type": "object",
					"required": ["target", "name"],
					"properties": {
						"target": {"type": "string"},
						"name": {"type": "string"},
						"penalty": {"type": "integer"},
						"duration": {"type": "integer"}
					}
				}},
				"positions": {"type": "array", "items": {
					"type": "object",
					"required": ["character", "to"],
					"properties": {
						"character": {"type": "string"},
						"to": {"type": "string"}
					}
				}},
				"notes": {"type": "array", "items": {"type": "string"}}
			}
		}
	}
}`

// ResolutionSchema returns the compiled schema for structured resolutions.
func ResolutionSchema() *jsonschema.Schema {
	return compiledResolutionSchema
}

var compiledResolutionSchema = jsonschema.MustCompileString("resolution.json", resolutionSchema)
