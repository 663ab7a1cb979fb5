package app

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/streamship/internal/domain"
	"github.com/bft-labs/streamship/internal/ports"
)

// SinkState is the handshake state of a Sink.
type SinkState int

const (
	SinkAwaitingInit SinkState = iota
	SinkReadyToSend
	SinkAwaitingAck
	SinkTerminated
)

// String returns a human-readable representation of the state.
func (s SinkState) String() string {
	switch s {
	case SinkAwaitingInit:
		return "AwaitingInit"
	case SinkReadyToSend:
		return "ReadyToSend"
	case SinkAwaitingAck:
		return "AwaitingAck"
	case SinkTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// Sink delivers batches to a Receiver one at a time. After handing over a
// batch it waits for SignalAcknowledge before taking the next one from
// upstream, so the receiver never holds more than one unacknowledged batch.
//
// The receiver gets SignalStart first and must reply with SignalInit before
// any batch is delivered. SignalComplete is sent exactly once, when upstream
// is exhausted (after the last acknowledgment), fails, or is cancelled.
type Sink struct {
	topic    string
	receiver ports.Receiver
	logger   ports.Logger
	observer ports.Observer

	inbox      chan domain.Signal
	terminated chan struct{}
	once       sync.Once

	mu    sync.RWMutex
	state SinkState
}

// NewSink creates a sink in SinkAwaitingInit.
func NewSink(topic string, receiver ports.Receiver, logger ports.Logger, observer ports.Observer) *Sink {
	if observer == nil {
		observer = ports.NoopObserver{}
	}
	return &Sink{
		topic:      topic,
		receiver:   receiver,
		logger:     logger,
		observer:   observer,
		inbox:      make(chan domain.Signal, 1),
		terminated: make(chan struct{}),
		state:      SinkAwaitingInit,
	}
}

// Tell implements ports.Mailbox.
func (s *Sink) Tell(sig domain.Signal) bool {
	select {
	case <-s.terminated:
		return false
	default:
	}

	select {
	case s.inbox <- sig:
		return true
	default:
		s.logger.Warn("sink mailbox full, signal dropped",
			ports.String("topic", s.topic),
			ports.String("signal", sig.String()),
		)
		return false
	}
}

// State returns the current handshake state.
func (s *Sink) State() SinkState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Terminated is closed once the sink has sent SignalComplete.
func (s *Sink) Terminated() <-chan struct{} {
	return s.terminated
}

// Run drives the handshake until batches is closed and drained, failed is
// closed, or ctx is done. It blocks; call it from its own goroutine.
func (s *Sink) Run(ctx context.Context, batches <-chan domain.EventBatch, failed <-chan struct{}) {
	defer s.terminate()

	s.receiver.Receive(ports.Message{Signal: domain.SignalStart, From: s})

	var (
		deliveredAt time.Time
		// pending holds a batch taken from upstream before Init arrived.
		pending *domain.EventBatch
	)
	for {
		// Failure and cancellation win over pending batches.
		select {
		case <-ctx.Done():
			return
		case <-failed:
			return
		default:
		}

		switch s.State() {
		case SinkAwaitingInit:
			// Watch upstream too so an empty, closed stream still completes.
			upstream := batches
			if pending != nil {
				upstream = nil
			}
			select {
			case <-ctx.Done():
				return
			case <-failed:
				return
			case sig := <-s.inbox:
				s.handle(sig, deliveredAt)
			case batch, ok := <-upstream:
				if !ok {
					return
				}
				pending = &batch
			}

		case SinkAwaitingAck:
			select {
			case <-ctx.Done():
				return
			case <-failed:
				return
			case sig := <-s.inbox:
				s.handle(sig, deliveredAt)
			}

		case SinkReadyToSend:
			if pending != nil {
				batch := *pending
				pending = nil
				deliveredAt = s.deliver(batch)
				continue
			}
			select {
			case <-ctx.Done():
				return
			case <-failed:
				return
			case sig := <-s.inbox:
				s.unexpected(sig)
			case batch, ok := <-batches:
				if !ok {
					return
				}
				deliveredAt = s.deliver(batch)
			}

		default:
			return
		}
	}
}

// deliver hands batch to the receiver and returns the delivery time.
func (s *Sink) deliver(batch domain.EventBatch) time.Time {
	s.setState(SinkAwaitingAck)
	at := time.Now()
	s.receiver.Receive(ports.Message{Batch: batch, From: s})
	s.observer.OnBatchDelivered(s.topic, batch.Size())
	return at
}

func (s *Sink) handle(sig domain.Signal, deliveredAt time.Time) {
	switch {
	case sig == domain.SignalInit && s.State() == SinkAwaitingInit:
		s.setState(SinkReadyToSend)
	case sig == domain.SignalAcknowledge && s.State() == SinkAwaitingAck:
		s.observer.OnBatchAcknowledged(s.topic, time.Since(deliveredAt))
		s.setState(SinkReadyToSend)
	default:
		s.unexpected(sig)
	}
}

func (s *Sink) unexpected(sig domain.Signal) {
	s.logger.Warn("unexpected signal ignored",
		ports.String("topic", s.topic),
		ports.String("signal", sig.String()),
		ports.String("state", s.State().String()),
	)
}

func (s *Sink) setState(state SinkState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Sink) terminate() {
	s.once.Do(func() {
		s.setState(SinkTerminated)
		close(s.terminated)
		s.receiver.Receive(ports.Message{Signal: domain.SignalComplete, From: s})
	})
}

var _ ports.Mailbox = (*Sink)(nil)
