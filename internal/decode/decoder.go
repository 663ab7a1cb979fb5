// Package decode turns frames from the consumption stream into event batches.
package decode

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bft-labs/streamship/internal/domain"
	"github.com/bft-labs/streamship/internal/ports"
)

// previewLen caps how much of a malformed frame is logged.
const previewLen = 256

// Decoder parses frames into EventBatch values. Decode never fails: a frame
// that cannot be parsed is logged and replaced by domain.EmptyBatch.
type Decoder struct {
	topic    string
	logger   ports.Logger
	observer ports.Observer
}

// New creates a decoder for the given topic.
func New(topic string, logger ports.Logger, observer ports.Observer) *Decoder {
	if observer == nil {
		observer = ports.NoopObserver{}
	}
	return &Decoder{topic: topic, logger: logger, observer: observer}
}

// Decode parses frame. It always returns exactly one batch.
func (d *Decoder) Decode(frame []byte) (batch domain.EventBatch) {
	defer func() {
		if r := recover(); r != nil {
			d.fail(frame, fmt.Errorf("%w: panic: %v", domain.ErrDecode, r))
			batch = domain.EmptyBatch
		}
	}()

	b, err := Parse(frame)
	if err != nil {
		d.fail(frame, err)
		return domain.EmptyBatch
	}
	return b
}

func (d *Decoder) fail(frame []byte, err error) {
	preview := frame
	if len(preview) > previewLen {
		preview = preview[:previewLen]
	}
	d.logger.Error("failed to decode batch",
		ports.Err(err),
		ports.String("topic", d.topic),
		ports.Int("frame_bytes", len(frame)),
		ports.Bytes("frame", preview),
	)
	d.observer.OnDecodeError(d.topic)
}

// Parse decodes a single frame, returning an error wrapping domain.ErrDecode
// on malformed input.
func Parse(frame []byte) (domain.EventBatch, error) {
	var b domain.EventBatch
	if len(bytes.TrimSpace(frame)) == 0 {
		return domain.EmptyBatch, fmt.Errorf("%w: empty frame", domain.ErrDecode)
	}
	if err := json.Unmarshal(frame, &b); err != nil {
		return domain.EmptyBatch, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	return b, nil
}
