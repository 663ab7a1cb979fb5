package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/bft-labs/streamship/internal/decode"
	"github.com/bft-labs/streamship/internal/domain"
	"github.com/bft-labs/streamship/internal/ports"
	"github.com/bft-labs/streamship/pkg/framing"
)

// ConsumerConfig contains configuration for the consumption pipeline.
type ConsumerConfig struct {
	BufferSize  int
	ChunkSize   int
	EscapeAware bool
}

// Consumer opens streaming subscriptions against the broker.
type Consumer struct {
	config    ConsumerConfig
	client    ports.HTTPClient
	endpoints ports.Endpoints
	tokens    ports.TokenProvider
	logger    ports.Logger
	observer  ports.Observer
	emitter   EventEmitter
}

// NewConsumer creates a consumer with the given dependencies.
func NewConsumer(
	config ConsumerConfig,
	client ports.HTTPClient,
	endpoints ports.Endpoints,
	tokens ports.TokenProvider,
	logger ports.Logger,
	observer ports.Observer,
	emitter EventEmitter,
) *Consumer {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultBufferSize
	}
	if observer == nil {
		observer = ports.NoopObserver{}
	}
	return &Consumer{
		config:    config,
		client:    client,
		endpoints: endpoints,
		tokens:    tokens,
		logger:    logger,
		observer:  observer,
		emitter:   emitter,
	}
}

// Subscription is the handle of one running stream. The stream ends when
// the broker closes it, on the first transport or protocol failure, or when
// Cancel is called. There is no reconnect: open a new subscription instead.
type Subscription struct {
	id        string
	topic     string
	lifecycle *Lifecycle
	done      chan struct{}

	mu  sync.Mutex
	err error
}

// ID returns the subscription identifier used in logs and events.
func (s *Subscription) ID() string { return s.id }

// Topic returns the consumed topic.
func (s *Subscription) Topic() string { return s.topic }

// State returns the current lifecycle state.
func (s *Subscription) State() State { return s.lifecycle.State() }

// Done is closed when the stream has ended and the receiver got SignalComplete.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Err returns the failure that ended the stream, or nil if it ended normally
// or was cancelled. Only meaningful after Done is closed.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Cancel closes the connection and terminates the sink.
func (s *Subscription) Cancel() {
	s.lifecycle.Cancel()
	if s.lifecycle.CanStop() {
		_ = s.lifecycle.TransitionTo(StateStopping, "cancel requested")
	}
}

// Stop cancels the stream and waits for it to wind down.
func (s *Subscription) Stop() error {
	s.Cancel()
	return s.lifecycle.WaitWithTimeout(ShutdownTimeout)
}

func (s *Subscription) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Stream starts consuming params.Topic and delivering batches to receiver.
// It returns immediately; failures are logged and reported through the
// subscription handle only.
func (c *Consumer) Stream(ctx context.Context, params domain.StreamParams, receiver ports.Receiver) *Subscription {
	sub := &Subscription{
		id:    uuid.NewString(),
		topic: params.Topic,
		done:  make(chan struct{}),
	}
	sub.lifecycle = NewLifecycle(sub.id, c.logger, c.emitter)

	runCtx, cancel := context.WithCancel(ctx)
	sub.lifecycle.SetCancel(cancel)

	_ = sub.lifecycle.TransitionTo(StateConnecting, "stream requested")

	sub.lifecycle.AddWorker()
	go func() {
		defer sub.lifecycle.WorkerDone()
		defer close(sub.done)
		defer cancel()

		err := c.run(runCtx, sub, params, receiver)
		c.finish(runCtx, sub, err)
	}()

	return sub
}

func (c *Consumer) run(ctx context.Context, sub *Subscription, params domain.StreamParams, receiver ports.Receiver) error {
	sink := NewSink(params.Topic, receiver, c.logger, c.observer)
	buffer := NewBuffer[domain.EventBatch](c.config.BufferSize)
	failed := make(chan struct{})

	sinkDone := make(chan struct{})
	go func() {
		defer close(sinkDone)
		sink.Run(ctx, buffer.Out(), failed)
	}()

	err := c.read(ctx, sub, params, buffer)
	if err != nil && ctx.Err() == nil {
		close(failed)
	} else if err == nil {
		buffer.Close()
	}

	<-sinkDone
	return err
}

// read performs the request and pumps the body through the splitter and
// decoder into buffer until the body ends.
func (c *Consumer) read(ctx context.Context, sub *Subscription, params domain.StreamParams, buffer *Buffer[domain.EventBatch]) error {
	if err := params.Validate(); err != nil {
		return err
	}

	token, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("%w: acquire token: %v", domain.ErrTransport, err)
	}

	req, err := newConsumeRequest(ctx, c.endpoints.ConsumeURL(params.Topic), params, token)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if !successful(resp.StatusCode) {
		return statusError(resp)
	}

	// Closing the body is what unblocks a read stuck on the socket.
	stopWatch := closeOnDone(ctx, resp.Body)
	defer stopWatch()

	if err := sub.lifecycle.TransitionTo(StateStreaming, "connected"); err != nil {
		// Cancelled while connecting.
		return ctx.Err()
	}

	c.logger.Info("stream opened",
		ports.String("subscription", sub.id),
		ports.String("topic", params.Topic),
		ports.Bool("escape_aware", c.config.EscapeAware),
	)

	splitter := c.newSplitter()
	decoder := decode.New(params.Topic, c.logger, c.observer)

	err = splitter.Scan(ctx, resp.Body, func(frame framing.Frame) error {
		c.observer.OnFrame(params.Topic, len(frame))
		if err := buffer.Put(ctx, decoder.Decode(frame)); err != nil {
			return err
		}
		c.observer.OnBufferDepth(params.Topic, buffer.Len())
		return nil
	})

	if pending := splitter.Pending(); pending > 0 && err == nil {
		c.logger.Debug("discarded trailing partial frame",
			ports.String("topic", params.Topic),
			ports.Int("bytes", pending),
		)
	}

	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: read stream: %v", domain.ErrTransport, err)
	}
	return nil
}

func (c *Consumer) newSplitter() *framing.Splitter {
	var opts []framing.Option
	if c.config.EscapeAware {
		opts = append(opts, framing.EscapeAware())
	}
	if c.config.ChunkSize > 0 {
		opts = append(opts, framing.WithChunkSize(c.config.ChunkSize))
	}
	return framing.NewSplitter(opts...)
}

// finish records the outcome and moves the lifecycle to its terminal state.
func (c *Consumer) finish(ctx context.Context, sub *Subscription, err error) {
	canceled := errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil

	switch {
	case err != nil && !canceled:
		sub.setErr(err)
		c.logger.Error("stream failed",
			ports.String("subscription", sub.id),
			ports.String("topic", sub.topic),
			ports.Err(err),
		)
		_ = sub.lifecycle.TransitionTo(StateFailed, err.Error())
	case canceled:
		c.logger.Info("stream cancelled",
			ports.String("subscription", sub.id),
			ports.String("topic", sub.topic),
		)
		if sub.lifecycle.CanStop() {
			_ = sub.lifecycle.TransitionTo(StateStopping, "context done")
		}
		_ = sub.lifecycle.TransitionTo(StateStopped, "cancelled")
		err = nil
	default:
		c.logger.Info("stream ended",
			ports.String("subscription", sub.id),
			ports.String("topic", sub.topic),
		)
		_ = sub.lifecycle.TransitionTo(StateStopped, "stream closed by broker")
	}

	c.observer.OnStreamEnd(sub.topic, err)
}

// closeOnDone closes body when ctx is done. The returned func stops the watch.
func closeOnDone(ctx context.Context, body io.Closer) func() {
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = body.Close()
		case <-stop:
		}
	}()
	return func() { close(stop) }
}
