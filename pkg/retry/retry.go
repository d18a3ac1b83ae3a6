// Package retry provides retry logic with exponential backoff and jitter.
// It supports configurable retry policies, context cancellation,
// and distinguishing between retryable and permanent errors.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// RetryableError wraps an error to mark it as retryable.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable: %v", e.Err)
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// Retryable wraps an error to mark it as retryable.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// PermanentError wraps an error to mark it as permanent (non-retryable).
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent: %v", e.Err)
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent wraps an error to mark it as permanent.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent checks if an error is marked as permanent.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// Config holds retry configuration.
type Config struct {
	// MaxAttempts is the maximum number of attempts (including the first).
	MaxAttempts int
	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration
	// MaxDelay caps the delay between retries.
	MaxDelay time.Duration
	// Multiplier is the backoff multiplier.
	Multiplier float64
	// JitterFactor adds randomness to delays (0.0 to 1.0).
	JitterFactor float64
	// RetryIf determines if an error should be retried.
	// If nil, all errors except PermanentError are retried.
	RetryIf func(error) bool
	// OnRetry is called before each retry attempt.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultConfig returns a sensible default retry configuration.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.2,
	}
}

// Option configures a retry Config.
type Option func(*Config)

// WithMaxAttempts sets the maximum number of attempts.
func WithMaxAttempts(n int) Option {
	return func(c *Config) { c.MaxAttempts = n }
}

// WithInitialDelay sets the initial delay.
func WithInitialDelay(d time.Duration) Option {
	return func(c *Config) { c.InitialDelay = d }
}

// WithMaxDelay sets the maximum delay.
func WithMaxDelay(d time.Duration) Option {
	return func(c *Config) { c.MaxDelay = d }
}

// WithMultiplier sets the backoff multiplier.
func WithMultiplier(m float64) Option {
	return func(c *Config) { c.Multiplier = m }
}

// WithJitter sets the jitter factor.
func WithJitter(f float64) Option {
	return func(c *Config) { c.JitterFactor = f }
}

// WithRetryIf sets the retry predicate.
func WithRetryIf(f func(error) bool) Option {
	return func(c *Config) { c.RetryIf = f }
}

// WithOnRetry sets the retry callback.
func WithOnRetry(f func(attempt int, err error, delay time.Duration)) Option {
	return func(c *Config) { c.OnRetry = f }
}

// Retrier executes operations with retry logic.
type Retrier struct {
	config Config
}

// New creates a new Retrier with the given options.
func New(opts ...Option) *Retrier {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return &Retrier{config: config}
}

// Do executes the operation with retries.
func (r *Retrier) Do(ctx context.Context, operation func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		// Check context before attempting
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context cancelled before attempt %d: %w", attempt, err)
		}

		lastErr = operation(ctx)
		if lastErr == nil {
			return nil
		}

		// Check if the error is permanent
		if IsPermanent(lastErr) {
			var pe *PermanentError
			errors.As(lastErr, &pe)
			return pe.Err
		}

		// Check custom retry predicate
		if r.config.RetryIf != nil && !r.config.RetryIf(lastErr) {
			return lastErr
		}

		// Don't sleep after the last attempt
		if attempt == r.config.MaxAttempts {
			break
		}

		delay := r.calculateDelay(attempt)

		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, lastErr, delay)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during retry wait: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("all %d attempts failed, last error: %w", r.config.MaxAttempts, lastErr)
}

// calculateDelay computes the delay for the given attempt with exponential backoff and jitter.
func (r *Retrier) calculateDelay(attempt int) time.Duration {
	delay := float64(r.config.InitialDelay) * math.Pow(r.config.Multiplier, float64(attempt-1))

	if delay > float64(r.config.MaxDelay) {
		delay = float64(r.config.MaxDelay)
	}

	// Apply jitter: delay ± (delay * jitterFactor * random)
	if r.config.JitterFactor > 0 {
		jitter := delay * r.config.JitterFactor * (2*rand.Float64() - 1)
		delay += jitter
		if delay < 0 {
			delay = float64(r.config.InitialDelay)
		}
	}

	return time.Duration(delay)
}

// DoWithData executes an operation that returns data, with retries.
func DoWithData[T any](ctx context.Context, r *Retrier, operation func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := r.Do(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = operation(ctx)
		return opErr
	})
	return result, err
}

// StorageReadRetrier returns a retrier for read-only storage queries.
// Reads are retried exactly once with a short backoff; transient
// failures that persist are surfaced to the caller.
func StorageReadRetrier(retryIf func(error) bool) *Retrier {
	return New(
		WithMaxAttempts(2),
		WithInitialDelay(50*time.Millisecond),
		WithMaxDelay(200*time.Millisecond),
		WithMultiplier(2.0),
		WithJitter(0.1),
		WithRetryIf(retryIf),
	)
}

// DatabaseRetrier returns a retrier configured for write-path database operations.
func DatabaseRetrier() *Retrier {
	return New(
		WithMaxAttempts(3),
		WithInitialDelay(100*time.Millisecond),
		WithMaxDelay(2*time.Second),
		WithMultiplier(2.0),
		WithJitter(0.1),
	)
}

// CacheRetrier returns a retrier for cache operations.
// Cache failures are cheap to retry but should give up quickly.
func CacheRetrier() *Retrier {
	return New(
		WithMaxAttempts(2),
		WithInitialDelay(20*time.Millisecond),
		WithMaxDelay(100*time.Millisecond),
		WithMultiplier(2.0),
		WithJitter(0.2),
	)
}
