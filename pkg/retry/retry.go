// Package retry provides retry with exponential backoff for read-path
// requests. Mutations and poll ticks run single-attempt (see None).
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// Config holds retry configuration.
type Config struct {
	Attempts   int           // total attempts; 1 = no retry
	BaseWait   time.Duration // wait before the second attempt
	MaxWait    time.Duration // backoff ceiling
	Multiplier float64
	Jitter     float64 // 0-1, fraction of the wait randomized
}

// Default returns the read-path configuration.
func Default() Config {
	return Config{
		Attempts:   3,
		BaseWait:   100 * time.Millisecond,
		MaxWait:    5 * time.Second,
		Multiplier: 2.0,
		Jitter:     0.1,
	}
}

// None returns a single-attempt configuration. Poll ticks use this: the
// next tick is the retry.
func None() Config {
	return Config{Attempts: 1}
}

// markedError wraps an error that is worth retrying.
type markedError struct {
	err error
}

func (e markedError) Error() string { return e.err.Error() }
func (e markedError) Unwrap() error { return e.err }

// Mark flags an error as retryable.
func Mark(err error) error {
	if err == nil {
		return nil
	}
	return markedError{err: err}
}

// IsRetryable reports whether err was flagged by Mark.
func IsRetryable(err error) bool {
	var m markedError
	return errors.As(err, &m)
}

// Do executes fn up to cfg.Attempts times, backing off between attempts.
// Non-retryable errors and context cancellation return immediately.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	_, err := Result(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// Result is Do for functions that produce a value.
func Result[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		v, err := fn()
		if err == nil {
			return v, nil
		}
		lastErr = err

		if !IsRetryable(err) || attempt == attempts {
			break
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		wait := float64(cfg.BaseWait) * math.Pow(cfg.Multiplier, float64(attempt-1))
		if max := float64(cfg.MaxWait); cfg.MaxWait > 0 && wait > max {
			wait = max
		}
		if cfg.Jitter > 0 {
			wait += wait * cfg.Jitter * (rand.Float64()*2 - 1)
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(time.Duration(wait)):
		}
	}

	return zero, lastErr
}
