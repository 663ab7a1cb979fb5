package domain

import "encoding/json"

// Cursor marks a resumable position in a partition of the stream.
// It is opaque to streamship and only carried alongside the batch.
type Cursor struct {
	Partition   string `json:"partition"`
	Offset      string `json:"offset"`
	EventType   string `json:"event_type,omitempty"`
	CursorToken string `json:"cursor_token,omitempty"`
}

// IsZero reports whether the cursor carries no position.
func (c Cursor) IsZero() bool {
	return c == Cursor{}
}

// EventBatch is the decoded unit of the consumption stream.
// Exactly one EventBatch is produced per frame.
type EventBatch struct {
	// Cursor is the position of the last event in Events
	Cursor Cursor `json:"cursor"`

	// Events holds the raw event payloads in stream order
	Events []json.RawMessage `json:"events,omitempty"`

	// Info carries optional broker statistics or debug data
	Info json.RawMessage `json:"info,omitempty"`
}

// EmptyBatch is returned in place of a batch whose frame could not be decoded.
var EmptyBatch = EventBatch{}

// Size returns the number of events in the batch.
func (b EventBatch) Size() int {
	return len(b.Events)
}

// Empty returns true if the batch has no events.
// Keep-alive batches and the decode sentinel are both empty.
func (b EventBatch) Empty() bool {
	return len(b.Events) == 0
}

// IsSentinel reports whether b is the decode-failure sentinel.
func (b EventBatch) IsSentinel() bool {
	return b.Cursor.IsZero() && b.Events == nil && b.Info == nil
}
