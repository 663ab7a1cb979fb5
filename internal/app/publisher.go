package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/bft-labs/streamship/internal/domain"
	"github.com/bft-labs/streamship/internal/ports"
)

// maxLoggedBody caps how much of a publish response is logged.
const maxLoggedBody = 4 << 10

// PublisherConfig contains configuration for the publisher.
type PublisherConfig struct {
	// Rate limits sends per second across all publish calls. Zero disables pacing.
	Rate float64

	// Burst is the limiter bucket size. Defaults to 1 when Rate is set.
	Burst int
}

// Outcome is the result of sending one event.
type Outcome struct {
	Index         int
	Topic         string
	CorrelationID string
	StatusCode    int
	Err           error
	Duration      time.Duration
}

// OK reports whether the event was accepted.
func (o Outcome) OK() bool {
	return o.Err == nil && successful(o.StatusCode)
}

// Publisher sends events to the broker, one independent request per event.
type Publisher struct {
	client    ports.HTTPClient
	endpoints ports.Endpoints
	tokens    ports.TokenProvider
	logger    ports.Logger
	observer  ports.Observer
	limiter   *rate.Limiter
}

// NewPublisher creates a publisher with the given dependencies.
func NewPublisher(
	config PublisherConfig,
	client ports.HTTPClient,
	endpoints ports.Endpoints,
	tokens ports.TokenProvider,
	logger ports.Logger,
	observer ports.Observer,
) *Publisher {
	if observer == nil {
		observer = ports.NoopObserver{}
	}
	var limiter *rate.Limiter
	if config.Rate > 0 {
		burst := config.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.Rate), burst)
	}
	return &Publisher{
		client:    client,
		endpoints: endpoints,
		tokens:    tokens,
		logger:    logger,
		observer:  observer,
		limiter:   limiter,
	}
}

// Publish schedules one send per event and returns without waiting for any
// of them. Outcomes are only logged. An empty correlationID is replaced by a
// generated one shared by all events of the call.
//
// Sends run under ctx; cancelling it aborts sends still in flight.
func (p *Publisher) Publish(ctx context.Context, topic string, events [][]byte, correlationID string) {
	p.PublishWithOutcomes(ctx, topic, events, correlationID)
}

// PublishWithOutcomes behaves like Publish and additionally reports one
// Outcome per event, in completion order. The channel is buffered for all
// events and closed after the last one, so ignoring it leaks nothing.
func (p *Publisher) PublishWithOutcomes(ctx context.Context, topic string, events [][]byte, correlationID string) <-chan Outcome {
	out := make(chan Outcome, len(events))
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	endpoint := p.endpoints.PublishURL(topic)

	var wg sync.WaitGroup
	for i, payload := range events {
		wg.Add(1)
		go func(i int, payload []byte) {
			defer wg.Done()
			out <- p.send(ctx, endpoint, topic, i, payload, correlationID)
		}(i, payload)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

func (p *Publisher) send(ctx context.Context, endpoint, topic string, index int, payload []byte, correlationID string) (outcome Outcome) {
	start := time.Now()
	outcome = Outcome{Index: index, Topic: topic, CorrelationID: correlationID}
	defer func() {
		outcome.Duration = time.Since(start)
		p.observer.OnPublish(topic, outcome.StatusCode, outcome.Err, outcome.Duration)
	}()

	fields := []ports.Field{
		ports.String("topic", topic),
		ports.Int("index", index),
		ports.String("correlation_id", correlationID),
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			outcome.Err = err
			p.logger.Error("publish aborted", append(fields, ports.Err(err))...)
			return outcome
		}
	}

	token, err := p.tokens.Token()
	if err != nil {
		outcome.Err = fmt.Errorf("%w: acquire token: %v", domain.ErrTransport, err)
		p.logger.Error("publish failed", append(fields, ports.Err(outcome.Err))...)
		return outcome
	}

	req, err := newPublishRequest(ctx, endpoint, payload, token, correlationID)
	if err != nil {
		outcome.Err = err
		p.logger.Error("publish failed", append(fields, ports.Err(err))...)
		return outcome
	}

	resp, err := p.client.Do(req)
	if err != nil {
		outcome.Err = fmt.Errorf("%w: %v", domain.ErrTransport, err)
		p.logger.Error("publish failed", append(fields, ports.Err(outcome.Err))...)
		return outcome
	}
	defer resp.Body.Close()

	outcome.StatusCode = resp.StatusCode
	if !successful(resp.StatusCode) {
		outcome.Err = statusError(resp)
		p.logger.Warn("publish rejected", append(fields, ports.Int("status", resp.StatusCode), ports.Err(outcome.Err))...)
		return outcome
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBody))
	p.logger.Debug("event published", append(fields, ports.Int("status", resp.StatusCode), ports.Bytes("response", body))...)
	return outcome
}
