// Package circuitbreaker implements the Circuit Breaker pattern for
// protecting the system against cascading failures of external
// dependencies such as the cache layer.
package circuitbreaker

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means requests flow normally.
	StateClosed State = iota
	// StateOpen means requests are rejected immediately.
	StateOpen
	// StateHalfOpen means a limited number of test requests are allowed.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Errors returned by the circuit breaker.
var (
	// ErrOpenState is returned when the circuit breaker is open.
	ErrOpenState = errors.New("circuit breaker is open")
	// ErrTooManyRequests is returned when too many requests are made in half-open state.
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

// Counts holds statistics about requests.
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

// onSuccess updates counts after a successful request.
func (c *Counts) onSuccess() {
	c.TotalSuccesses++
	c.ConsecutiveSuccesses++
	c.ConsecutiveFailures = 0
}

// onFailure updates counts after a failed request.
func (c *Counts) onFailure() {
	c.TotalFailures++
	c.ConsecutiveFailures++
	c.ConsecutiveSuccesses = 0
}

// clear resets all counts.
func (c *Counts) clear() {
	c.Requests = 0
	c.TotalSuccesses = 0
	c.TotalFailures = 0
	c.ConsecutiveSuccesses = 0
	c.ConsecutiveFailures = 0
}

// Config holds circuit breaker configuration.
type Config struct {
	// Name identifies the circuit breaker for logging.
	Name string
	// MaxRequests is the max number of requests allowed in half-open state.
	MaxRequests uint32
	// Interval is the cyclic period to clear counts in closed state.
	// If 0, counts are never cleared in closed state.
	Interval time.Duration
	// Timeout is how long the circuit stays open before transitioning to half-open.
	Timeout time.Duration
	// ReadyToTrip determines when the circuit should open.
	// If nil, trips after 5 consecutive failures.
	ReadyToTrip func(counts Counts) bool
	// OnStateChange is called when the state changes.
	OnStateChange func(name string, from State, to State)
	// IsSuccessful determines if an error counts as a failure.
	// If nil, any non-nil error is a failure.
	IsSuccessful func(err error) bool
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig(name string) Config {
	return Config{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
	}
}

// Option configures a circuit breaker.
type Option func(*Config)

// WithMaxRequests sets the max requests in half-open state.
func WithMaxRequests(n uint32) Option {
	return func(c *Config) { c.MaxRequests = n }
}

// WithInterval sets the count-clearing interval.
func WithInterval(d time.Duration) Option {
	return func(c *Config) { c.Interval = d }
}

// WithTimeout sets the open state timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithReadyToTrip sets the trip condition.
func WithReadyToTrip(f func(counts Counts) bool) Option {
	return func(c *Config) { c.ReadyToTrip = f }
}

// WithOnStateChange sets the state change callback.
func WithOnStateChange(f func(name string, from State, to State)) Option {
	return func(c *Config) { c.OnStateChange = f }
}

// WithIsSuccessful sets the success predicate.
func WithIsSuccessful(f func(err error) bool) Option {
	return func(c *Config) { c.IsSuccessful = f }
}

// CircuitBreaker implements the circuit breaker pattern.
type CircuitBreaker struct {
	name          string
	maxRequests   uint32
	interval      time.Duration
	timeout       time.Duration
	readyToTrip   func(counts Counts) bool
	onStateChange func(name string, from State, to State)
	isSuccessful  func(err error) bool

	mu         sync.Mutex
	state      State
	generation uint64
	counts     Counts
	expiry     time.Time
}

// New creates a new CircuitBreaker with the given name and options.
func New(name string, opts ...Option) *CircuitBreaker {
	config := DefaultConfig(name)
	for _, opt := range opts {
		opt(&config)
	}

	cb := &CircuitBreaker{
		name:          config.Name,
		maxRequests:   config.MaxRequests,
		interval:      config.Interval,
		timeout:       config.Timeout,
		readyToTrip:   config.ReadyToTrip,
		onStateChange: config.OnStateChange,
		isSuccessful:  config.IsSuccessful,
	}

	if cb.maxRequests == 0 {
		cb.maxRequests = 1
	}
	if cb.timeout == 0 {
		cb.timeout = 30 * time.Second
	}
	if cb.readyToTrip == nil {
		cb.readyToTrip = func(counts Counts) bool {
			return counts.ConsecutiveFailures >= 5
		}
	}
	if cb.isSuccessful == nil {
		cb.isSuccessful = func(err error) bool {
			return err == nil
		}
	}

	cb.toNewGeneration(time.Now())
	return cb
}

// Name returns the circuit breaker name.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// State returns the current state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := time.Now()
	state, _ := cb.currentState(now)
	return state
}

// Counts returns a copy of the current counts.
func (cb *CircuitBreaker) Counts() Counts {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.counts
}

// Execute runs the operation if the circuit breaker allows it.
func (cb *CircuitBreaker) Execute(operation func() (any, error)) (any, error) {
	generation, err := cb.beforeRequest()
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			cb.afterRequest(generation, false)
			panic(r)
		}
	}()

	result, err := operation()
	cb.afterRequest(generation, cb.isSuccessful(err))
	return result, err
}

// ExecuteWithFallback runs the operation, falling back if the circuit is open.
func (cb *CircuitBreaker) ExecuteWithFallback(
	operation func() (any, error),
	fallback func(err error) (any, error),
) (any, error) {
	result, err := cb.Execute(operation)
	if err != nil && (errors.Is(err, ErrOpenState) || errors.Is(err, ErrTooManyRequests)) {
		return fallback(err)
	}
	return result, err
}

// beforeRequest checks if a request is allowed.
func (cb *CircuitBreaker) beforeRequest() (uint64, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := time.Now()
	state, generation := cb.currentState(now)

	if state == StateOpen {
		return generation, ErrOpenState
	}

	if state == StateHalfOpen && cb.counts.Requests >= cb.maxRequests {
		return generation, ErrTooManyRequests
	}

	cb.counts.Requests++
	return generation, nil
}

// afterRequest records the result of a request.
func (cb *CircuitBreaker) afterRequest(before uint64, success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := time.Now()
	state, generation := cb.currentState(now)
	if generation != before {
		return
	}

	if success {
		cb.onSuccess(state, now)
	} else {
		cb.onFailure(state, now)
	}
}

// onSuccess handles a successful request.
func (cb *CircuitBreaker) onSuccess(state State, now time.Time) {
	switch state {
	case StateClosed:
		cb.counts.onSuccess()
	case StateHalfOpen:
		cb.counts.onSuccess()
		if cb.counts.ConsecutiveSuccesses >= cb.maxRequests {
			cb.setState(StateClosed, now)
		}
	}
}

// onFailure handles a failed request.
func (cb *CircuitBreaker) onFailure(state State, now time.Time) {
	switch state {
	case StateClosed:
		cb.counts.onFailure()
		if cb.readyToTrip(cb.counts) {
			cb.setState(StateOpen, now)
		}
	case StateHalfOpen:
		cb.setState(StateOpen, now)
	}
}

// currentState returns the current state, handling timeout transitions.
func (cb *CircuitBreaker) currentState(now time.Time) (State, uint64) {
	switch cb.state {
	case StateClosed:
		if !cb.expiry.IsZero() && cb.expiry.Before(now) {
			cb.toNewGeneration(now)
		}
	case StateOpen:
		if cb.expiry.Before(now) {
			cb.setState(StateHalfOpen, now)
		}
	}
	return cb.state, cb.generation
}

// setState transitions to a new state.
func (cb *CircuitBreaker) setState(state State, now time.Time) {
	if cb.state == state {
		return
	}

	prev := cb.state
	cb.state = state
	cb.toNewGeneration(now)

	if cb.onStateChange != nil {
		cb.onStateChange(cb.name, prev, state)
	}
}

// toNewGeneration starts a new generation.
func (cb *CircuitBreaker) toNewGeneration(now time.Time) {
	cb.generation++
	cb.counts.clear()

	var zero time.Time
	switch cb.state {
	case StateClosed:
		if cb.interval == 0 {
			cb.expiry = zero
		} else {
			cb.expiry = now.Add(cb.interval)
		}
	case StateOpen:
		cb.expiry = now.Add(cb.timeout)
	default: // StateHalfOpen
		cb.expiry = zero
	}
}

// CacheBreaker returns a circuit breaker tuned for the cache layer.
// The cache is an optimisation, so the breaker trips fast and the
// caller falls back to the primary store.
func CacheBreaker(onStateChange func(name string, from State, to State)) *CircuitBreaker {
	return New("cache",
		WithMaxRequests(2),
		WithInterval(30*time.Second),
		WithTimeout(15*time.Second),
		WithReadyToTrip(func(counts Counts) bool {
			return counts.ConsecutiveFailures >= 3
		}),
		WithOnStateChange(onStateChange),
	)
}

// DatabaseBreaker returns a circuit breaker tuned for the primary store.
func DatabaseBreaker(onStateChange func(name string, from State, to State)) *CircuitBreaker {
	return New("database",
		WithMaxRequests(1),
		WithInterval(60*time.Second),
		WithTimeout(30*time.Second),
		WithReadyToTrip(func(counts Counts) bool {
			return counts.ConsecutiveFailures >= 5
		}),
		WithOnStateChange(onStateChange),
	)
}

// Wrap returns an error annotated with the breaker name.
func Wrap(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("circuit breaker %q: %w", name, err)
}
