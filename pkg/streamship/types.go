package streamship

import (
	"github.com/bft-labs/streamship/internal/app"
	"github.com/bft-labs/streamship/internal/domain"
	"github.com/bft-labs/streamship/internal/ports"
	"github.com/bft-labs/streamship/pkg/log"
)

// Re-exported domain types.
type (
	// EventBatch is one decoded unit of a consumption stream.
	EventBatch = domain.EventBatch

	// Cursor is the position carried by a batch.
	Cursor = domain.Cursor

	// StreamParams parameterizes one consumption request.
	StreamParams = domain.StreamParams

	// Signal is a control message of the acknowledgment handshake.
	Signal = domain.Signal

	// StatusError is returned for non-2xx broker responses.
	StatusError = domain.StatusError
)

// Handshake signals.
const (
	SignalStart       = domain.SignalStart
	SignalInit        = domain.SignalInit
	SignalAcknowledge = domain.SignalAcknowledge
	SignalComplete    = domain.SignalComplete
)

// EmptyBatch is delivered in place of a frame that could not be decoded.
var EmptyBatch = domain.EmptyBatch

// Errors returned by streamship. Check them with errors.Is.
var (
	ErrInvalidConfig   = domain.ErrInvalidConfig
	ErrShutdownTimeout = domain.ErrShutdownTimeout
	ErrDecode          = domain.ErrDecode
	ErrTransport       = domain.ErrTransport
	ErrProtocol        = domain.ErrProtocol
)

// Collaborator interfaces.
type (
	// Receiver consumes batches delivered by a subscription.
	Receiver = ports.Receiver

	// ReceiverFunc adapts a function to Receiver.
	ReceiverFunc = ports.ReceiverFunc

	// Message is handed to a Receiver.
	Message = ports.Message

	// Mailbox is where a Receiver sends Init and Acknowledge.
	Mailbox = ports.Mailbox

	// HTTPClient performs requests. *http.Client satisfies it.
	HTTPClient = ports.HTTPClient

	// TokenProvider supplies the bearer token for each request.
	TokenProvider = ports.TokenProvider

	// TokenFunc adapts a function to TokenProvider.
	TokenFunc = ports.TokenFunc

	// Endpoints resolves broker URLs for a topic.
	Endpoints = ports.Endpoints

	// Observer receives pipeline events, e.g. for metrics.
	Observer = ports.Observer

	// Logger is the structured logger interface from pkg/log.
	Logger = log.Logger

	// Outcome is the result of publishing one event.
	Outcome = app.Outcome
)
