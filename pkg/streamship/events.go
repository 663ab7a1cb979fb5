package streamship

import (
	"time"

	"github.com/bft-labs/streamship/internal/app"
	"github.com/bft-labs/streamship/internal/ports"
)

// State is the lifecycle state of a subscription.
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

// StateChangeEvent is emitted when a subscription changes state.
type StateChangeEvent struct {
	SubscriptionID string
	Previous       State
	Current        State
	Reason         string
}

// PublishEvent is emitted once per published event.
type PublishEvent struct {
	Topic      string
	StatusCode int
	Err        error
	Duration   time.Duration
}

// EventHandler receives streamship events. Calls are synchronous: state
// changes come from the subscription goroutine, publish events from the
// per-event send goroutines. Implementations must return quickly.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnPublish(event PublishEvent)
}

// BaseEventHandler implements EventHandler with no-ops. Embed it to handle
// only some events.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent) {}
func (BaseEventHandler) OnPublish(PublishEvent)         {}

// eventEmitterWrapper adapts EventHandler to app.EventEmitter.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(id string, previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		SubscriptionID: id,
		Previous:       convertState(previous),
		Current:        convertState(current),
		Reason:         reason,
	})
}

// eventObserver forwards publish outcomes to the handler and everything to
// the wrapped observer.
type eventObserver struct {
	ports.Observer
	handler EventHandler
}

func (o eventObserver) OnPublish(topic string, status int, err error, duration time.Duration) {
	o.Observer.OnPublish(topic, status, err, duration)
	if o.handler != nil {
		o.handler.OnPublish(PublishEvent{Topic: topic, StatusCode: status, Err: err, Duration: duration})
	}
}

func convertState(s app.State) State {
	switch s {
	case app.StateIdle:
		return StateIdle
	case app.StateConnecting:
		return StateConnecting
	case app.StateStreaming:
		return StateStreaming
	case app.StateStopping:
		return StateStopping
	case app.StateStopped:
		return StateStopped
	case app.StateFailed:
		return StateFailed
	default:
		return StateIdle
	}
}
