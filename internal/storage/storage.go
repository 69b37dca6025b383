// Package storage defines the persistence interfaces for sealed rounds and
// telemetry events, plus in-memory implementations for tests and default
// host wiring.
package storage

import (
	"context"
	"sync"
	"time"

	"github.com/lunargale/voidtable/internal/game/action"
	"github.com/lunargale/voidtable/internal/game/clock"
	"github.com/lunargale/voidtable/internal/game/economy"
	"github.com/lunargale/voidtable/internal/game/roster"
)

// RoundRecord is the durable shape of one sealed round.
type RoundRecord struct {
	SessionID    string                   `json:"session_id"`
	Round        int                      `json:"round"`
	Location     string                   `json:"location"`
	Situation    string                   `json:"situation"`
	Summary      string                   `json:"summary"`
	Declarations []action.Declaration     `json:"declarations"`
	Resolutions  []action.Resolution      `json:"resolutions"`
	Clocks       []clock.Clock            `json:"clocks"`
	Enemies      []roster.Enemy           `json:"enemies"`
	Economy      map[string]economy.State `json:"economy"`
	SealedAt     time.Time                `json:"sealed_at"`
}

// TelemetryEvent is one advisory event from round coordination.
type TelemetryEvent struct {
	SessionID string    `json:"session_id"`
	Round     int       `json:"round"`
	Kind      string    `json:"kind"`
	ActorID   string    `json:"actor_id"`
	Detail    string    `json:"detail"`
	At        time.Time `json:"at"`
}

// RoundStore persists sealed rounds.
type RoundStore interface {
	AppendRound(ctx context.Context, record RoundRecord) error
	ListRounds(ctx context.Context, sessionID string) ([]RoundRecord, error)
}

// TelemetryStore persists advisory events.
type TelemetryStore interface {
	AppendTelemetryEvent(ctx context.Context, evt TelemetryEvent) error
	ListTelemetryEvents(ctx context.Context, sessionID string) ([]TelemetryEvent, error)
}

// Memory implements both stores in process. Safe for concurrent use.
type Memory struct {
	mu     sync.Mutex
	rounds []RoundRecord
	events []TelemetryEvent
}

// NewMemory builds an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// AppendRound stores the record in append order.
func (m *Memory) AppendRound(ctx context.Context, record RoundRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rounds = append(m.rounds, record)
	return nil
}

// ListRounds returns the session's rounds in append order.
func (m *Memory) ListRounds(ctx context.Context, sessionID string) ([]RoundRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []RoundRecord
	for _, r := range m.rounds {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

// AppendTelemetryEvent stores the event in append order.
func (m *Memory) AppendTelemetryEvent(ctx context.Context, evt TelemetryEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
	return nil
}

// ListTelemetryEvents returns the session's events in append order.
func (m *Memory) ListTelemetryEvents(ctx context.Context, sessionID string) ([]TelemetryEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []TelemetryEvent
	for _, e := range m.events {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}
