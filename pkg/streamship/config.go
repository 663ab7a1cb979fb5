package streamship

import (
	"fmt"
	"time"

	"github.com/bft-labs/streamship/internal/domain"
)

// Default configuration values.
const (
	DefaultBufferSize     = 1000
	DefaultPublishTimeout = 30 * time.Second
)

// Config holds the configuration of a Streamship client.
type Config struct {
	// ServiceURL is the broker base URL. Required unless WithEndpoints is used.
	ServiceURL string

	// AuthToken is a static bearer token, used when no WithTokenProvider
	// option is given.
	AuthToken string

	// Stream parameters applied by Consume. Zero values are omitted from the
	// request and the broker defaults apply.
	BatchLimit           int
	BatchFlushTimeout    time.Duration
	StreamLimit          int
	StreamTimeout        time.Duration
	StreamKeepAliveLimit int

	// BufferSize bounds the decoded batches held between the network reader
	// and the receiver. Default: 1000.
	BufferSize int

	// ChunkSize is the read size on the stream body. Zero selects the
	// framing default.
	ChunkSize int

	// EscapeAware makes the frame splitter honour backslash escapes inside
	// strings. Off by default.
	EscapeAware bool

	// PublishTimeout bounds one publish request. Default: 30s.
	PublishTimeout time.Duration

	// PublishRate limits publish requests per second. Zero disables pacing.
	PublishRate  float64
	PublishBurst int
}

// SetDefaults fills zero values with defaults.
func (c *Config) SetDefaults() {
	if c.BufferSize <= 0 {
		c.BufferSize = DefaultBufferSize
	}
	if c.PublishTimeout <= 0 {
		c.PublishTimeout = DefaultPublishTimeout
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.BatchLimit < 0 || c.StreamLimit < 0 || c.StreamKeepAliveLimit < 0 {
		return fmt.Errorf("%w: stream limits must not be negative", domain.ErrInvalidConfig)
	}
	if c.BatchFlushTimeout < 0 || c.StreamTimeout < 0 {
		return fmt.Errorf("%w: stream timeouts must not be negative", domain.ErrInvalidConfig)
	}
	if c.ChunkSize < 0 {
		return fmt.Errorf("%w: chunk size must not be negative", domain.ErrInvalidConfig)
	}
	if c.PublishRate < 0 || c.PublishBurst < 0 {
		return fmt.Errorf("%w: publish rate must not be negative", domain.ErrInvalidConfig)
	}
	return nil
}

// streamParams returns the stream parameters for topic.
func (c Config) streamParams(topic string) StreamParams {
	return StreamParams{
		Topic:                topic,
		BatchLimit:           c.BatchLimit,
		BatchFlushTimeout:    c.BatchFlushTimeout,
		StreamLimit:          c.StreamLimit,
		StreamTimeout:        c.StreamTimeout,
		StreamKeepAliveLimit: c.StreamKeepAliveLimit,
	}
}
