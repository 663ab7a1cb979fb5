package app

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/streamship/internal/domain"
	"github.com/bft-labs/streamship/internal/ports"
)

// ShutdownTimeout is the maximum time to wait for a subscription to wind down.
const ShutdownTimeout = 30 * time.Second

// State represents the lifecycle state of a subscription.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateStreaming
	StateStopping
	StateStopped
	StateFailed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateConnecting:
		return "Connecting"
	case StateStreaming:
		return "Streaming"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateStopped || s == StateFailed
}

// Lifecycle manages the state machine of one subscription. A subscription
// is single use: once Stopped or Failed the caller must open a new one.
type Lifecycle struct {
	mu           sync.RWMutex
	id           string
	state        State
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	logger       ports.Logger
	eventEmitter EventEmitter
}

// EventEmitter is called when a subscription changes state.
type EventEmitter interface {
	OnStateChange(subscriptionID string, previous, current State, reason string)
}

// NewLifecycle creates a new lifecycle manager in StateIdle.
func NewLifecycle(id string, logger ports.Logger, emitter EventEmitter) *Lifecycle {
	return &Lifecycle{
		id:           id,
		state:        StateIdle,
		logger:       logger,
		eventEmitter: emitter,
	}
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// TransitionTo attempts to transition to a new state.
// Returns an error if the transition is not valid.
func (l *Lifecycle) TransitionTo(newState State, reason string) error {
	l.mu.Lock()
	oldState := l.state

	switch oldState {
	case StateIdle:
		if newState != StateConnecting {
			l.mu.Unlock()
			return domain.ErrNotRunning
		}
	case StateConnecting:
		if newState != StateStreaming && newState != StateStopping && newState != StateFailed {
			l.mu.Unlock()
			return domain.ErrAlreadyRunning
		}
	case StateStreaming:
		if newState != StateStopping && newState != StateStopped && newState != StateFailed {
			l.mu.Unlock()
			return domain.ErrAlreadyRunning
		}
	case StateStopping:
		if newState != StateStopped && newState != StateFailed {
			l.mu.Unlock()
			return domain.ErrAlreadyRunning
		}
	case StateStopped, StateFailed:
		l.mu.Unlock()
		return domain.ErrNotRunning
	}

	l.state = newState
	l.mu.Unlock()

	// Emit event outside of lock
	if l.eventEmitter != nil {
		l.eventEmitter.OnStateChange(l.id, oldState, newState, reason)
	}

	l.logger.Info("state transition",
		ports.String("subscription", l.id),
		ports.String("from", oldState.String()),
		ports.String("to", newState.String()),
		ports.String("reason", reason),
	)

	return nil
}

// CanStop returns true if Stop can be requested.
func (l *Lifecycle) CanStop() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateConnecting || l.state == StateStreaming
}

// SetCancel stores the cancel function used to close the connection.
func (l *Lifecycle) SetCancel(cancel context.CancelFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cancel = cancel
}

// Cancel closes the connection by cancelling the request context.
func (l *Lifecycle) Cancel() {
	l.mu.Lock()
	cancel := l.cancel
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// AddWorker increments the worker count.
func (l *Lifecycle) AddWorker() {
	l.wg.Add(1)
}

// WorkerDone decrements the worker count.
func (l *Lifecycle) WorkerDone() {
	l.wg.Done()
}

// WaitWithTimeout waits for all workers to finish with a timeout.
// Returns ErrShutdownTimeout if the timeout expires.
func (l *Lifecycle) WaitWithTimeout(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		l.logger.Warn("shutdown timeout",
			ports.String("subscription", l.id),
			ports.Duration("timeout", timeout),
		)
		return domain.ErrShutdownTimeout
	}
}
