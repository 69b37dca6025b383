// Package generator provides the gateway to the external text/structured
// generator: the Generator contract, failure classification, the tagged
// result variant, and the rate-limited retrying wrapper every round goes
// through.
package generator

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Kind tags the two shapes a generator result can take.
type Kind string

const (
	// KindStructured carries a decoded JSON object, schema-validated when a
	// schema was supplied.
	KindStructured Kind = "structured"
	// KindRaw carries free-form text that did not decode as a JSON object.
	KindRaw Kind = "raw"
)

// Result is the tagged variant StructuredResolution | RawText. Exactly one of
// Structured and Raw is populated, selected by Kind. Results are produced
// only by DecodeResult; callers must never reconstruct one by field poking.
type Result struct {
	Kind       Kind
	Structured map[string]any
	Raw        string
}

// Request asks the external generator for one completion.
type Request struct {
	// Prompt is the full prompt text.
	Prompt string
	// Schema, when set, is validated against structured output. A structural
	// mismatch classifies as a malformed failure.
	Schema *jsonschema.Schema
	// MaxTokens bounds the completion length. Zero means provider default.
	MaxTokens int
}

// Generator produces one completion per request. Implementations classify
// their failures with *Error so callers can distinguish retryable overload
// from terminal rejection.
type Generator interface {
	Generate(ctx context.Context, req Request) (Result, error)
}

// DecodeResult is the single conversion point from generator output bytes to
// the tagged Result variant.
//
// A JSON object becomes KindStructured; when a schema is supplied the object
// must validate against it, otherwise the output classifies as malformed.
// Anything that is not a JSON object becomes KindRaw — unless a schema was
// required, in which case non-JSON output is also malformed.
func DecodeResult(data []byte, schema *jsonschema.Schema) (Result, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return Result{}, newError(ClassMalformed, "generator returned empty output", nil)
	}

	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		if schema != nil {
			return Result{}, newError(ClassMalformed, "expected structured output, got non-JSON text", err)
		}
		return Result{Kind: KindRaw, Raw: trimmed}, nil
	}

	obj, ok := decoded.(map[string]any)
	if !ok {
		if schema != nil {
			return Result{}, newError(ClassMalformed, "expected JSON object, got other JSON value", nil)
		}
		return Result{Kind: KindRaw, Raw: trimmed}, nil
	}

	if schema != nil {
		if err := schema.Validate(decoded); err != nil {
			return Result{}, newError(ClassMalformed, "structured output failed schema validation", err)
		}
	}
	return Result{Kind: KindStructured, Structured: obj}, nil
}
