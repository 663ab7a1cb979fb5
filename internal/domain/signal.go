package domain

// Signal is a control message of the acknowledgment handshake between the
// sink and a receiver. Signals are transient and never persisted.
type Signal int

const (
	// SignalStart is sent by the sink to the receiver when delivery begins.
	SignalStart Signal = iota + 1

	// SignalInit is sent by the receiver once it is ready for the first batch.
	SignalInit

	// SignalAcknowledge is sent by the receiver after handling a batch.
	SignalAcknowledge

	// SignalComplete is sent by the sink exactly once when delivery ends.
	SignalComplete
)

// String returns a human-readable representation of the signal.
func (s Signal) String() string {
	switch s {
	case SignalStart:
		return "Start"
	case SignalInit:
		return "Init"
	case SignalAcknowledge:
		return "Acknowledge"
	case SignalComplete:
		return "Complete"
	default:
		return "Unknown"
	}
}
