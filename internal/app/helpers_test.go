package app

import (
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/streamship/internal/domain"
	"github.com/bft-labs/streamship/internal/ports"
)

// recordingLogger counts messages per level.
type recordingLogger struct {
	mu     sync.Mutex
	warns  []string
	errors []string
}

func (l *recordingLogger) Debug(msg string, fields ...ports.Field) {}
func (l *recordingLogger) Info(msg string, fields ...ports.Field)  {}

func (l *recordingLogger) Warn(msg string, fields ...ports.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *recordingLogger) Error(msg string, fields ...ports.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func (l *recordingLogger) Warns() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.warns)
}

func (l *recordingLogger) Errors() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.errors)
}

// recordingReceiver forwards every message to a channel. With auto set it
// answers Start with Init and every batch with Acknowledge.
type recordingReceiver struct {
	auto     bool
	messages chan ports.Message
}

func newRecordingReceiver(auto bool) *recordingReceiver {
	return &recordingReceiver{auto: auto, messages: make(chan ports.Message, 128)}
}

func (r *recordingReceiver) Receive(msg ports.Message) {
	r.messages <- msg
	if !r.auto {
		return
	}
	switch {
	case msg.Signal == domain.SignalStart:
		msg.From.Tell(domain.SignalInit)
	case msg.IsBatch():
		msg.From.Tell(domain.SignalAcknowledge)
	}
}

// next waits for the next message or fails the test.
func (r *recordingReceiver) next(t *testing.T) ports.Message {
	t.Helper()
	select {
	case msg := <-r.messages:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return ports.Message{}
	}
}

// quiet asserts that no message arrives for a short while.
func (r *recordingReceiver) quiet(t *testing.T) {
	t.Helper()
	select {
	case msg := <-r.messages:
		t.Fatalf("unexpected message: signal=%v batch=%v", msg.Signal, msg.IsBatch())
	case <-time.After(50 * time.Millisecond):
	}
}

// recordingObserver counts observer callbacks.
type recordingObserver struct {
	ports.NoopObserver

	mu           sync.Mutex
	frames       int
	decodeErrors int
	delivered    int
	acknowledged int
	streamEnds   []error
	publishes    []int
}

func (o *recordingObserver) OnFrame(string, int) {
	o.mu.Lock()
	o.frames++
	o.mu.Unlock()
}

func (o *recordingObserver) OnDecodeError(string) {
	o.mu.Lock()
	o.decodeErrors++
	o.mu.Unlock()
}

func (o *recordingObserver) OnBatchDelivered(string, int) {
	o.mu.Lock()
	o.delivered++
	o.mu.Unlock()
}

func (o *recordingObserver) OnBatchAcknowledged(string, time.Duration) {
	o.mu.Lock()
	o.acknowledged++
	o.mu.Unlock()
}

func (o *recordingObserver) OnStreamEnd(_ string, err error) {
	o.mu.Lock()
	o.streamEnds = append(o.streamEnds, err)
	o.mu.Unlock()
}

func (o *recordingObserver) OnPublish(_ string, status int, _ error, _ time.Duration) {
	o.mu.Lock()
	o.publishes = append(o.publishes, status)
	o.mu.Unlock()
}

// testEndpoints resolves broker URLs under base.
type testEndpoints struct {
	base string
}

func (e testEndpoints) ConsumeURL(topic string) string {
	return e.base + "/event-types/" + topic + "/events"
}

func (e testEndpoints) PublishURL(topic string) string {
	return e.base + "/event-types/" + topic + "/events"
}

func staticToken(token string) ports.TokenProvider {
	return ports.TokenFunc(func() (string, error) { return token, nil })
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
