// Package streamship consumes and publishes events on an append-only event
// broker that streams batches as concatenated JSON objects.
//
// Example usage:
//
//	client, err := streamship.New(streamship.Config{
//	    ServiceURL: "https://broker.example.com",
//	    AuthToken:  "your-token",
//	    BatchLimit: 100,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	receiver := streamship.NewHandlerReceiver(ctx, func(ctx context.Context, b streamship.EventBatch) error {
//	    return process(b.Events)
//	})
//	sub := client.Consume(ctx, "order.created", receiver)
//	<-sub.Done()
//
// The full API, including options and event hooks, lives in
// github.com/bft-labs/streamship/pkg/streamship.
package streamship

import (
	"context"

	ss "github.com/bft-labs/streamship/pkg/streamship"
)

// Config holds the client configuration.
type Config = ss.Config

// Client consumes and publishes events.
type Client = ss.Streamship

// Subscription is a running consumption.
type Subscription = ss.Subscription

// EventBatch is one decoded batch.
type EventBatch = ss.EventBatch

// Receiver accepts batches and control signals from a subscription.
type Receiver = ss.Receiver

// Option configures a Client.
type Option = ss.Option

// HandlerFunc processes one batch.
type HandlerFunc = ss.HandlerFunc

// DefaultBufferSize is the number of decoded batches held ahead of the receiver.
const DefaultBufferSize = ss.DefaultBufferSize

// New creates a client.
func New(cfg Config, opts ...Option) (*Client, error) {
	return ss.New(cfg, opts...)
}

// NewHandlerReceiver returns a receiver that calls handler for every batch
// and acknowledges it afterwards.
func NewHandlerReceiver(ctx context.Context, handler HandlerFunc) *ss.HandlerReceiver {
	return ss.NewHandlerReceiver(ctx, handler)
}

// NewChannelReceiver returns a receiver exposing batches on a channel.
func NewChannelReceiver() *ss.ChannelReceiver {
	return ss.NewChannelReceiver()
}
