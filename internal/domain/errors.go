package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent error conditions in the streamship domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when a subscription is started twice.
	ErrAlreadyRunning = errors.New("streamship: already running")

	// ErrNotRunning is returned when a stopped subscription is stopped again.
	ErrNotRunning = errors.New("streamship: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("streamship: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("streamship: invalid configuration")

	// ErrDecode marks a frame that could not be decoded into a batch.
	ErrDecode = errors.New("streamship: decode error")

	// ErrTransport marks connection level failures (DNS, TLS, reset, read).
	ErrTransport = errors.New("streamship: transport error")

	// ErrProtocol marks an unexpected non-success response status.
	ErrProtocol = errors.New("streamship: protocol violation")
)

// StatusError represents an HTTP response with a non-2xx status code.
// It matches ErrProtocol with errors.Is.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http status %d", e.Code)
	}
	return fmt.Sprintf("http status %d: %s", e.Code, e.Body)
}

// Is lets errors.Is(err, ErrProtocol) match any StatusError.
func (e *StatusError) Is(target error) bool {
	return target == ErrProtocol
}
