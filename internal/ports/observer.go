package ports

import "time"

// Observer is notified of pipeline events. Implementations must be safe for
// concurrent use and must not block.
type Observer interface {
	OnFrame(topic string, size int)
	OnDecodeError(topic string)
	OnBatchDelivered(topic string, events int)
	OnBatchAcknowledged(topic string, wait time.Duration)
	OnBufferDepth(topic string, depth int)
	OnStreamEnd(topic string, err error)
	OnPublish(topic string, status int, err error, duration time.Duration)
}

// NoopObserver discards all events.
type NoopObserver struct{}

func (NoopObserver) OnFrame(string, int)                         {}
func (NoopObserver) OnDecodeError(string)                        {}
func (NoopObserver) OnBatchDelivered(string, int)                {}
func (NoopObserver) OnBatchAcknowledged(string, time.Duration)   {}
func (NoopObserver) OnBufferDepth(string, int)                   {}
func (NoopObserver) OnStreamEnd(string, error)                   {}
func (NoopObserver) OnPublish(string, int, error, time.Duration) {}
