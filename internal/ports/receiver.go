package ports

import "github.com/bft-labs/streamship/internal/domain"

// Message is handed to a Receiver. It carries either a control signal
// (Start or Complete) or, when Signal is zero, a batch.
type Message struct {
	Signal domain.Signal
	Batch  domain.EventBatch

	// From is where replies (Init, Acknowledge) go.
	From Mailbox
}

// IsBatch reports whether the message carries a batch.
func (m Message) IsBatch() bool {
	return m.Signal == 0
}

// Mailbox accepts control signals addressed to the sink.
type Mailbox interface {
	// Tell enqueues sig. It never blocks and returns false if the sink has
	// terminated or already holds an unprocessed signal.
	Tell(sig domain.Signal) bool
}

// Receiver is the downstream consumer of the acknowledgment sink.
//
// Receive is called from the sink's goroutine, one message at a time.
// A receiver answers Start with Init and each batch with Acknowledge,
// either from inside Receive or later from another goroutine.
type Receiver interface {
	Receive(msg Message)
}

// ReceiverFunc adapts a function to Receiver.
type ReceiverFunc func(msg Message)

// Receive calls f.
func (f ReceiverFunc) Receive(msg Message) {
	f(msg)
}
