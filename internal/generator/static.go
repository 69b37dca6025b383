package generator

import (
	"context"
	"sync"
)

// Static is an offline Generator that replays canned outputs in order,
// looping when it runs out. It backs the host's offline mode and tests.
type Static struct {
	mu      sync.Mutex
	outputs []string
	next    int
}

// NewStatic builds a Static generator from raw output documents. Each entry
// goes through DecodeResult exactly like live generator output would.
func NewStatic(outputs ...string) *Static {
	if len(outputs) == 0 {
		outputs = []string{"The moment passes without consequence."}
	}
	return &Static{outputs: outputs}
}

// Generate returns the next canned output.
func (s *Static) Generate(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	s.mu.Lock()
	output := s.outputs[s.next%len(s.outputs)]
	s.next++
	s.mu.Unlock()
	return DecodeResult([]byte(output), req.Schema)
}
