// Package telemetry records advisory round events against a telemetry store.
package telemetry

import (
	"context"
	"time"

	"github.com/lunargale/voidtable/internal/storage"
)

// Emitter records round telemetry events. The zero value and a nil store are
// both safe no-ops: telemetry must never stall a round.
type Emitter struct {
	store storage.TelemetryStore
	clock func() time.Time
}

// NewEmitter creates an emitter over the given store.
func NewEmitter(store storage.TelemetryStore) *Emitter {
	return &Emitter{store: store, clock: time.Now}
}

// Emit records a telemetry event, stamping the time when unset.
func (e *Emitter) Emit(ctx context.Context, evt storage.TelemetryEvent) error {
	if e == nil || e.store == nil {
		return nil
	}
	if evt.At.IsZero() {
		if e.clock == nil {
			evt.At = time.Now().UTC()
		} else {
			evt.At = e.clock().UTC()
		}
	}
	return e.store.AppendTelemetryEvent(ctx, evt)
}
