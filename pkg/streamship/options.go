package streamship

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bft-labs/streamship/internal/adapters/metrics"
	"github.com/bft-labs/streamship/pkg/log"
)

// Option configures optional behavior of Streamship.
type Option func(*options)

// options holds the optional configuration for a Streamship instance.
type options struct {
	consumeClient HTTPClient
	publishClient HTTPClient
	logger        Logger
	tokens        TokenProvider
	endpoints     Endpoints
	observer      Observer
	eventHandler  EventHandler
}

func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
	}
}

// WithHTTPClient sets the client used for both consuming and publishing.
// The client must not impose an overall timeout, or long streams are cut.
// If not provided, otelhttp-instrumented clients are used.
func WithHTTPClient(client HTTPClient) Option {
	return func(o *options) {
		o.consumeClient = client
		o.publishClient = client
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTokenProvider sets the bearer token source. It takes precedence over
// Config.AuthToken.
func WithTokenProvider(tokens TokenProvider) Option {
	return func(o *options) {
		o.tokens = tokens
	}
}

// WithEndpoints overrides URL templating. Config.ServiceURL is then unused.
func WithEndpoints(endpoints Endpoints) Option {
	return func(o *options) {
		o.endpoints = endpoints
	}
}

// WithObserver sets an observer for pipeline events.
func WithObserver(observer Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithPrometheus registers streamship metrics on reg and records into them.
func WithPrometheus(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.observer = metrics.NewObserver(reg)
	}
}

// WithEventHandler sets a handler for subscription state changes and
// publish outcomes. If not provided, no events are emitted.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}
