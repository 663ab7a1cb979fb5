package domain

import (
	"fmt"
	"time"
)

// StreamParams parameterizes one consumption request.
// Zero values are omitted from the request and the broker defaults apply.
type StreamParams struct {
	Topic                string
	BatchLimit           int
	BatchFlushTimeout    time.Duration
	StreamLimit          int
	StreamTimeout        time.Duration
	StreamKeepAliveLimit int
}

// Validate checks the parameters before a request is built.
func (p StreamParams) Validate() error {
	if p.Topic == "" {
		return fmt.Errorf("%w: topic is required", ErrInvalidConfig)
	}
	if p.BatchLimit < 0 || p.StreamLimit < 0 || p.StreamKeepAliveLimit < 0 {
		return fmt.Errorf("%w: limits must not be negative", ErrInvalidConfig)
	}
	if p.BatchFlushTimeout < 0 || p.StreamTimeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)
	}
	return nil
}
