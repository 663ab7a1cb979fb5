package streamship

import (
	"context"
	"fmt"

	"github.com/bft-labs/streamship/internal/adapters/auth"
	httpAdapter "github.com/bft-labs/streamship/internal/adapters/http"
	"github.com/bft-labs/streamship/internal/app"
	"github.com/bft-labs/streamship/internal/domain"
	"github.com/bft-labs/streamship/internal/ports"
	"github.com/bft-labs/streamship/pkg/framing"
	"github.com/bft-labs/streamship/pkg/log"
)

// Streamship consumes and publishes events against one broker.
// It is safe for concurrent use; each Consume opens an independent stream.
type Streamship struct {
	config    Config
	consumer  *app.Consumer
	publisher *app.Publisher
	logger    Logger
}

// New creates a client with the given configuration.
// Returns an error if the configuration is invalid.
func New(cfg Config, opts ...Option) (*Streamship, error) {
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := validateModuleVersions(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.NewNoopLogger()
	}

	endpoints := o.endpoints
	if endpoints == nil {
		if cfg.ServiceURL == "" {
			return nil, fmt.Errorf("%w: service url is required", domain.ErrInvalidConfig)
		}
		endpoints = httpAdapter.NewBrokerEndpoints(cfg.ServiceURL)
	}

	tokens := o.tokens
	if tokens == nil {
		if cfg.AuthToken == "" {
			return nil, fmt.Errorf("%w: auth token or token provider is required", domain.ErrInvalidConfig)
		}
		tokens = auth.StaticToken(cfg.AuthToken)
	}

	consumeClient := o.consumeClient
	if consumeClient == nil {
		consumeClient = httpAdapter.NewClient(0)
	}
	publishClient := o.publishClient
	if publishClient == nil {
		publishClient = httpAdapter.NewClient(cfg.PublishTimeout)
	}

	var observer ports.Observer = ports.NoopObserver{}
	if o.observer != nil {
		observer = o.observer
	}
	if o.eventHandler != nil {
		observer = eventObserver{Observer: observer, handler: o.eventHandler}
	}

	var emitter app.EventEmitter
	if o.eventHandler != nil {
		emitter = &eventEmitterWrapper{handler: o.eventHandler}
	}

	consumer := app.NewConsumer(app.ConsumerConfig{
		BufferSize:  cfg.BufferSize,
		ChunkSize:   cfg.ChunkSize,
		EscapeAware: cfg.EscapeAware,
	}, consumeClient, endpoints, tokens, o.logger, observer, emitter)

	publisher := app.NewPublisher(app.PublisherConfig{
		Rate:  cfg.PublishRate,
		Burst: cfg.PublishBurst,
	}, publishClient, endpoints, tokens, o.logger, observer)

	return &Streamship{
		config:    cfg,
		consumer:  consumer,
		publisher: publisher,
		logger:    o.logger,
	}, nil
}

// Consume opens a stream on topic with the stream parameters from Config
// and delivers batches to receiver. It returns immediately. Failures are
// logged; the returned handle cancels the stream and reports its state.
func (s *Streamship) Consume(ctx context.Context, topic string, receiver Receiver) *Subscription {
	return s.Stream(ctx, s.config.streamParams(topic), receiver)
}

// Stream is Consume with explicit stream parameters.
func (s *Streamship) Stream(ctx context.Context, params StreamParams, receiver Receiver) *Subscription {
	return &Subscription{sub: s.consumer.Stream(ctx, params, receiver)}
}

// Publish sends each event to topic as its own request and returns without
// waiting. Outcomes are only logged. correlationID is sent as X-Flow-Id; an
// empty one is generated. Cancelling ctx aborts sends still in flight.
func (s *Streamship) Publish(ctx context.Context, topic string, events [][]byte, correlationID string) {
	s.publisher.Publish(ctx, topic, events, correlationID)
}

// PublishWithOutcomes is Publish that also reports one Outcome per event on
// the returned channel, which is closed after the last one.
func (s *Streamship) PublishWithOutcomes(ctx context.Context, topic string, events [][]byte, correlationID string) <-chan Outcome {
	return s.publisher.PublishWithOutcomes(ctx, topic, events, correlationID)
}

// Subscription is the handle of a running stream.
type Subscription struct {
	sub *app.Subscription
}

// ID returns the subscription identifier used in logs and events.
func (s *Subscription) ID() string { return s.sub.ID() }

// Topic returns the consumed topic.
func (s *Subscription) Topic() string { return s.sub.Topic() }

// State returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (s *Subscription) State() State { return convertState(s.sub.State()) }

// Done is closed once the stream has ended and the receiver got SignalComplete.
func (s *Subscription) Done() <-chan struct{} { return s.sub.Done() }

// Err returns what ended the stream, or nil for a normal end or cancellation.
func (s *Subscription) Err() error { return s.sub.Err() }

// Cancel closes the connection and terminates delivery without waiting.
func (s *Subscription) Cancel() { s.sub.Cancel() }

// Stop cancels and waits up to 30 seconds for the stream to wind down.
// Returns ErrShutdownTimeout if it does not.
func (s *Subscription) Stop() error { return s.sub.Stop() }

// validateModuleVersions checks that all module versions are compatible.
// Returns an error if any module version is below its minimum compatible version.
func validateModuleVersions() error {
	modules := map[string]struct {
		version    string
		minVersion string
	}{
		"framing": {framing.Version, framing.MinCompatibleVersion},
		"log":     {log.Version, log.MinCompatibleVersion},
	}

	for name, m := range modules {
		if !isVersionCompatible(m.version, m.minVersion) {
			return fmt.Errorf("module %s version %s is below minimum compatible version %s",
				name, m.version, m.minVersion)
		}
	}

	return nil
}

// isVersionCompatible checks if version >= minVersion using semantic versioning.
// Assumes versions are in format "major.minor.patch".
func isVersionCompatible(version, minVersion string) bool {
	var vMajor, vMinor, vPatch int
	var mMajor, mMinor, mPatch int

	_, _ = fmt.Sscanf(version, "%d.%d.%d", &vMajor, &vMinor, &vPatch)
	_, _ = fmt.Sscanf(minVersion, "%d.%d.%d", &mMajor, &mMinor, &mPatch)

	if vMajor != mMajor {
		return vMajor > mMajor
	}
	if vMinor != mMinor {
		return vMinor > mMinor
	}
	return vPatch >= mPatch
}
