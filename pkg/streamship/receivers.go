package streamship

import (
	"context"
	"sync"
)

// HandlerFunc processes one batch.
type HandlerFunc func(ctx context.Context, batch EventBatch) error

// HandlerReceiver runs a function for every batch and acknowledges it when
// the function returns, whether or not it failed. The first error is kept.
type HandlerReceiver struct {
	ctx     context.Context
	handler HandlerFunc

	mu   sync.Mutex
	err  error
	done chan struct{}
}

// NewHandlerReceiver creates a receiver calling handler with ctx.
func NewHandlerReceiver(ctx context.Context, handler HandlerFunc) *HandlerReceiver {
	return &HandlerReceiver{
		ctx:     ctx,
		handler: handler,
		done:    make(chan struct{}),
	}
}

// Receive implements Receiver.
func (r *HandlerReceiver) Receive(msg Message) {
	switch msg.Signal {
	case SignalStart:
		msg.From.Tell(SignalInit)
	case SignalComplete:
		close(r.done)
	case 0:
		if err := r.handler(r.ctx, msg.Batch); err != nil {
			r.mu.Lock()
			if r.err == nil {
				r.err = err
			}
			r.mu.Unlock()
		}
		msg.From.Tell(SignalAcknowledge)
	}
}

// Done is closed when the subscription has sent SignalComplete.
func (r *HandlerReceiver) Done() <-chan struct{} {
	return r.done
}

// Err returns the first handler error.
func (r *HandlerReceiver) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Delivery is a batch received through a ChannelReceiver.
type Delivery struct {
	Batch EventBatch

	from Mailbox
	once *sync.Once
}

// Ack acknowledges the batch so the next one can be delivered.
// Calling it more than once has no effect.
func (d Delivery) Ack() {
	d.once.Do(func() { d.from.Tell(SignalAcknowledge) })
}

// ChannelReceiver exposes batches on a channel. Each Delivery must be
// acknowledged before the next one arrives. The channel is closed when the
// subscription completes.
type ChannelReceiver struct {
	deliveries chan Delivery
}

// NewChannelReceiver creates a channel receiver.
func NewChannelReceiver() *ChannelReceiver {
	// At most one batch is unacknowledged, so a single slot never blocks
	// the sink.
	return &ChannelReceiver{deliveries: make(chan Delivery, 1)}
}

// Receive implements Receiver.
func (r *ChannelReceiver) Receive(msg Message) {
	switch msg.Signal {
	case SignalStart:
		msg.From.Tell(SignalInit)
	case SignalComplete:
		close(r.deliveries)
	case 0:
		r.deliveries <- Delivery{Batch: msg.Batch, from: msg.From, once: new(sync.Once)}
	}
}

// Deliveries returns the channel of batches.
func (r *ChannelReceiver) Deliveries() <-chan Delivery {
	return r.deliveries
}

var (
	_ Receiver = (*HandlerReceiver)(nil)
	_ Receiver = (*ChannelReceiver)(nil)
)
