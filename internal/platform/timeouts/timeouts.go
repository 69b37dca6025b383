// Package timeouts defines shared timeout constants used across the engine.
// Centralizing these values prevents drift between component boundaries and
// makes the durations discoverable.
package timeouts

import "time"

// Round caps how long a single round may spend in the Resolving phase before
// outstanding generator calls are cancelled and degraded to fallbacks.
const Round = 2 * time.Minute

// GeneratorCall caps one HTTP attempt against the external generator.
const GeneratorCall = 45 * time.Second

// GeneratorRetry caps the total time a call may spend inside the retry
// sequence, backoff delays included.
const GeneratorRetry = 90 * time.Second

// Shutdown limits how long the host waits for telemetry flush on exit.
const Shutdown = 5 * time.Second
