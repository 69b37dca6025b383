package generator

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/lunargale/voidtable/internal/platform/timeouts"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"
)

// LimiterConfig tunes the rate-limited gateway.
type LimiterConfig struct {
	// MaxConcurrent caps generator calls in flight across the whole process
	// sharing this limiter. Zero means DefaultMaxConcurrent.
	MaxConcurrent int64
	// MinInterval is the minimum spacing between call starts. Zero means
	// DefaultMinInterval.
	MinInterval time.Duration
	// MaxAttempts bounds attempts per call, the first included. Zero means
	// DefaultMaxAttempts.
	MaxAttempts int
	// BaseDelay anchors the backoff schedule: the delay before retry attempt
	// n lands in [BaseDelay·2ⁿ/2, BaseDelay·2ⁿ]. Zero means DefaultBaseDelay.
	BaseDelay time.Duration
	// MaxDelay caps a single backoff wait. Zero means DefaultMaxDelay.
	MaxDelay time.Duration
	// MaxElapsed caps the total wall-clock time a call may spend inside the
	// retry sequence, backoff delays included. Zero means DefaultMaxElapsed.
	MaxElapsed time.Duration
}

// Defaults for LimiterConfig zero values.
const (
	DefaultMaxConcurrent = 3
	DefaultMinInterval   = 250 * time.Millisecond
	DefaultMaxAttempts   = 4
	DefaultBaseDelay     = 500 * time.Millisecond
	DefaultMaxDelay      = 10 * time.Second
	DefaultMaxElapsed    = timeouts.GeneratorRetry
)

func (c LimiterConfig) withDefaults() LimiterConfig {
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = DefaultMaxConcurrent
	}
	if c.MinInterval <= 0 {
		c.MinInterval = DefaultMinInterval
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = DefaultBaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = DefaultMaxDelay
	}
	if c.MaxElapsed <= 0 {
		c.MaxElapsed = DefaultMaxElapsed
	}
	return c
}

// Limited wraps a Generator with a global concurrency cap, minimum spacing
// between call starts, and exponential-backoff retries for retryable
// failures.
//
// The concurrency slot is acquired once per Generate call and held for the
// whole retry sequence, so total in-flight upstream calls stay bounded even
// while individual calls are backing off. The limiter is an explicit
// collaborator: sessions that should not cross-throttle get their own
// instance; sessions that deliberately share an upstream budget share one.
type Limited struct {
	inner  Generator
	cfg    LimiterConfig
	sem    *semaphore.Weighted
	tracer trace.Tracer

	mu        sync.Mutex
	nextStart time.Time
}

// NewLimited wraps inner with the gateway policy in cfg.
func NewLimited(inner Generator, cfg LimiterConfig) *Limited {
	cfg = cfg.withDefaults()
	return &Limited{
		inner:  inner,
		cfg:    cfg,
		sem:    semaphore.NewWeighted(cfg.MaxConcurrent),
		tracer: otel.Tracer("voidtable/generator"),
	}
}

// Generate submits one request through the gateway.
//
// Retryable failures (overloaded, rate-limited) are retried with exponential
// backoff plus jitter up to MaxAttempts; malformed output is retried exactly
// once; auth and rejection failures fail immediately. When the budget runs
// out the last failure is wrapped in a ClassExhausted error.
func (l *Limited) Generate(ctx context.Context, req Request) (Result, error) {
	ctx, span := l.tracer.Start(ctx, "generator.Generate")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, l.cfg.MaxElapsed)
	defer cancel()

	if err := l.sem.Acquire(ctx, 1); err != nil {
		return Result{}, err
	}
	defer l.sem.Release(1)

	// InitialInterval 3·base/4 with randomization factor 1/3 yields delays in
	// [base·2ⁿ/2, base·2ⁿ], the documented jitter window.
	wait := &backoff.ExponentialBackOff{
		InitialInterval:     3 * l.cfg.BaseDelay / 4,
		RandomizationFactor: 1.0 / 3.0,
		Multiplier:          2,
		MaxInterval:         l.cfg.MaxDelay,
	}
	wait.Reset()

	var lastErr error
	retriedMalformed := false
	for attempt := 0; attempt < l.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, wait.NextBackOff()); err != nil {
				return Result{}, err
			}
		}
		if err := l.pace(ctx); err != nil {
			return Result{}, err
		}

		result, err := l.inner.Generate(ctx, req)
		if err == nil {
			span.SetAttributes(attribute.Int("generator.attempts", attempt+1))
			return result, nil
		}
		lastErr = err

		if Retryable(err) {
			continue
		}
		if ClassOf(err) == ClassMalformed && !retriedMalformed {
			retriedMalformed = true
			continue
		}
		return Result{}, err
	}

	return Result{}, newError(ClassExhausted, "retry budget exhausted", lastErr)
}

// pace reserves the next call-start slot under the spacing policy and sleeps
// until it arrives. The reservation happens under the lock so concurrent
// callers line up rather than bursting together.
func (l *Limited) pace(ctx context.Context) error {
	l.mu.Lock()
	now := time.Now()
	start := l.nextStart
	if start.Before(now) {
		start = now
	}
	l.nextStart = start.Add(l.cfg.MinInterval)
	l.mu.Unlock()

	return sleepCtx(ctx, time.Until(start))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
