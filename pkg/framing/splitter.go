package framing

import (
	"context"
	"errors"
	"io"
)

// DefaultChunkSize is the read size used by Scan.
const DefaultChunkSize = 32 << 10

// Frame is the raw text of one balanced top-level JSON object.
type Frame []byte

// Option configures a Splitter.
type Option func(*Splitter)

// EscapeAware makes the splitter ignore quotes preceded by a backslash
// inside string literals.
func EscapeAware() Option {
	return func(s *Splitter) {
		s.escapeAware = true
	}
}

// WithChunkSize sets the read size used by Scan.
func WithChunkSize(n int) Option {
	return func(s *Splitter) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// Splitter is a byte-at-a-time scanner that emits complete JSON objects.
type Splitter struct {
	depth    int
	inString bool
	escaped  bool
	buf      []byte

	escapeAware bool
	chunkSize   int
}

// NewSplitter creates a splitter with empty state.
func NewSplitter(opts ...Option) *Splitter {
	s := &Splitter{chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Feed advances the scanner by one byte. It returns a frame and true when b
// closes a top-level object.
func (s *Splitter) Feed(b byte) (Frame, bool) {
	s.buf = append(s.buf, b)

	if s.escapeAware && s.inString {
		if s.escaped {
			s.escaped = false
			return nil, false
		}
		if b == '\\' {
			s.escaped = true
			return nil, false
		}
	}

	switch {
	case b == '"':
		s.inString = !s.inString
	case b == '{' && !s.inString:
		s.depth++
	case b == '}' && !s.inString:
		if s.depth == 0 {
			// Unbalanced close. Depth is clamped at zero instead of going
			// negative, and the bytes buffered so far are dropped, so the
			// next balanced object still frames. See "Stray closing brace"
			// in DESIGN.md.
			s.buf = s.buf[:0]
			return nil, false
		}
		s.depth--
		if s.depth == 0 && len(s.buf) > 0 {
			frame := make(Frame, len(s.buf))
			copy(frame, s.buf)
			s.buf = s.buf[:0]
			return frame, true
		}
	}
	return nil, false
}

// Write feeds a whole chunk and returns the frames it completed, in order.
func (s *Splitter) Write(chunk []byte) []Frame {
	var frames []Frame
	for _, b := range chunk {
		if f, ok := s.Feed(b); ok {
			frames = append(frames, f)
		}
	}
	return frames
}

// Scan reads r chunk by chunk and calls emit for every complete frame.
// It returns nil when r reaches EOF; a trailing partial frame is dropped.
// Read errors, emit errors and context cancellation are returned as is.
func (s *Splitter) Scan(ctx context.Context, r io.Reader, emit func(Frame) error) error {
	chunk := make([]byte, s.chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := r.Read(chunk)
		for _, b := range chunk[:n] {
			f, ok := s.Feed(b)
			if !ok {
				continue
			}
			if emitErr := emit(f); emitErr != nil {
				return emitErr
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// Pending returns the number of buffered bytes of an incomplete frame.
func (s *Splitter) Pending() int {
	return len(s.buf)
}

// Depth returns the current brace depth.
func (s *Splitter) Depth() int {
	return s.depth
}

// Reset clears all scanner state.
func (s *Splitter) Reset() {
	s.depth = 0
	s.inString = false
	s.escaped = false
	s.buf = s.buf[:0]
}
