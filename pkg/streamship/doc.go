// Package streamship is an embeddable client for append-only event brokers
// that stream batches as back-to-back JSON objects over a long-lived HTTP
// response.
//
// # Basic Usage
//
//	client, err := streamship.New(streamship.Config{
//	    ServiceURL: "https://broker.example",
//	    AuthToken:  "your-token",
//	    BatchLimit: 100,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	receiver := streamship.NewHandlerReceiver(ctx, func(ctx context.Context, b streamship.EventBatch) error {
//	    for _, event := range b.Events {
//	        fmt.Println(string(event))
//	    }
//	    return nil
//	})
//	sub := client.Consume(ctx, "order.created", receiver)
//	<-sub.Done()
//
// # Acknowledgment Protocol
//
// A [Receiver] gets [SignalStart] first and answers with [SignalInit] through
// [Message.From]. Every batch must then be answered with [SignalAcknowledge]
// before the next one is delivered, so at most one batch is in flight.
// [SignalComplete] is sent exactly once when the stream ends. While the
// receiver holds a batch, decoded batches queue up to Config.BufferSize and
// then the network read stalls; nothing is dropped.
//
// [HandlerReceiver] and [ChannelReceiver] implement the protocol for the
// common cases.
//
// # Failures
//
// Streams are not retried. A transport error or a non-2xx response ends the
// subscription in [StateFailed]; [Subscription.Err] reports the cause and
// errors.Is matches [ErrTransport] or [ErrProtocol]. A frame that fails to
// decode is logged and delivered as [EmptyBatch].
//
// Publish is fire-and-forget: each event is its own request and outcomes are
// logged. [Streamship.PublishWithOutcomes] reports them on a channel.
//
// # Dependency Injection
//
//	client, err := streamship.New(cfg,
//	    streamship.WithHTTPClient(mockClient),
//	    streamship.WithLogger(customLogger),
//	    streamship.WithTokenProvider(tokens),
//	)
package streamship
