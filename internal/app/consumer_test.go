package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/streamship/internal/domain"
	"github.com/bft-labs/streamship/internal/ports"
)

func newTestConsumer(base string, tokens ports.TokenProvider, logger ports.Logger, observer ports.Observer, emitter EventEmitter) *Consumer {
	return NewConsumer(ConsumerConfig{BufferSize: 4}, http.DefaultClient, testEndpoints{base: base}, tokens, logger, observer, emitter)
}

func waitSubscription(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case <-sub.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("subscription did not finish")
	}
}

// drain collects all messages up to and including Complete.
func drain(t *testing.T, r *recordingReceiver) []ports.Message {
	t.Helper()
	var msgs []ports.Message
	for {
		msg := r.next(t)
		msgs = append(msgs, msg)
		if msg.Signal == domain.SignalComplete {
			return msgs
		}
	}
}

func TestConsumer_StreamsBatchesAcrossChunks(t *testing.T) {
	var reqMu sync.Mutex
	var gotPath, gotQuery, gotAuth, gotAccept string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqMu.Lock()
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		reqMu.Unlock()

		flusher := w.(http.Flusher)
		w.WriteHeader(http.StatusOK)

		chunks := []string{
			`{"cursor":{"parti`,
			`tion":"0","offset":"1"},"events":[{"id":"a"},{"id":"b"}]}` + "\n",
			`{"cursor":{"partition":"0","offset":"1"}}` + "\n" + `{"cursor":oops}`,
			"\n" + `{"cursor":{"partition":"0","offset":"2"},"events":[{"text":"}{"}]}`,
			`{"cursor":{"partition":"0"`,
		}
		for _, c := range chunks {
			_, _ = io.WriteString(w, c)
			flusher.Flush()
			time.Sleep(5 * time.Millisecond)
		}
	}))
	defer srv.Close()

	observer := &recordingObserver{}
	emitter := &mockEmitter{}
	c := newTestConsumer(srv.URL, staticToken("secret"), &recordingLogger{}, observer, emitter)
	receiver := newRecordingReceiver(true)

	sub := c.Stream(context.Background(), domain.StreamParams{
		Topic:             "orders",
		BatchLimit:        10,
		BatchFlushTimeout: 5 * time.Second,
	}, receiver)

	msgs := drain(t, receiver)
	waitSubscription(t, sub)

	reqMu.Lock()
	defer reqMu.Unlock()
	if gotPath != "/event-types/orders/events" {
		t.Errorf("path = %s", gotPath)
	}
	if gotQuery != "batch_flush_timeout=5&batch_limit=10" {
		t.Errorf("query = %s", gotQuery)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %s", gotAuth)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %s", gotAccept)
	}

	// Start, four batches, Complete. The trailing partial frame is dropped.
	if len(msgs) != 6 {
		t.Fatalf("got %d messages, want 6", len(msgs))
	}
	if msgs[0].Signal != domain.SignalStart {
		t.Errorf("first message = %v, want Start", msgs[0].Signal)
	}

	first := msgs[1].Batch
	if first.Cursor.Offset != "1" || first.Size() != 2 {
		t.Errorf("first batch = %+v", first)
	}
	if keepAlive := msgs[2].Batch; !keepAlive.Empty() || keepAlive.Cursor.Offset != "1" {
		t.Errorf("keep-alive batch = %+v", keepAlive)
	}
	if !msgs[3].Batch.IsSentinel() {
		t.Errorf("malformed frame should decode to the sentinel, got %+v", msgs[3].Batch)
	}
	if last := msgs[4].Batch; last.Cursor.Offset != "2" || last.Size() != 1 {
		t.Errorf("last batch = %+v", last)
	}

	if sub.State() != StateStopped {
		t.Errorf("State() = %v, want Stopped", sub.State())
	}
	if sub.Err() != nil {
		t.Errorf("Err() = %v, want nil", sub.Err())
	}

	observer.mu.Lock()
	if observer.frames != 4 || observer.decodeErrors != 1 {
		t.Errorf("frames=%d decodeErrors=%d, want 4/1", observer.frames, observer.decodeErrors)
	}
	if len(observer.streamEnds) != 1 || observer.streamEnds[0] != nil {
		t.Errorf("streamEnds = %v", observer.streamEnds)
	}
	observer.mu.Unlock()

	var states []State
	for _, e := range emitter.Events() {
		if e.id != sub.ID() {
			t.Errorf("event id = %s, want %s", e.id, sub.ID())
		}
		states = append(states, e.current)
	}
	want := []State{StateConnecting, StateStreaming, StateStopped}
	if fmt.Sprint(states) != fmt.Sprint(want) {
		t.Errorf("transitions = %v, want %v", states, want)
	}
}

func TestConsumer_NonSuccessStatusFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"title":"Unauthorized"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	logger := &recordingLogger{}
	c := newTestConsumer(srv.URL, staticToken("bad"), logger, nil, nil)
	receiver := newRecordingReceiver(true)

	sub := c.Stream(context.Background(), domain.StreamParams{Topic: "orders"}, receiver)
	msgs := drain(t, receiver)
	waitSubscription(t, sub)

	if len(msgs) != 2 || msgs[0].Signal != domain.SignalStart {
		t.Fatalf("messages = %d, want Start then Complete", len(msgs))
	}
	if sub.State() != StateFailed {
		t.Errorf("State() = %v, want Failed", sub.State())
	}

	err := sub.Err()
	if !errors.Is(err, domain.ErrProtocol) {
		t.Fatalf("Err() = %v, want ErrProtocol", err)
	}
	var statusErr *domain.StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusUnauthorized {
		t.Errorf("Err() = %#v, want StatusError 401", err)
	}
	if !strings.Contains(statusErr.Body, "Unauthorized") {
		t.Errorf("Body = %q", statusErr.Body)
	}
	if logger.Errors() != 1 {
		t.Errorf("errors logged = %d, want 1", logger.Errors())
	}
}

func TestConsumer_FailsBeforeConnecting(t *testing.T) {
	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	tests := []struct {
		name    string
		base    string
		topic   string
		tokens  ports.TokenProvider
		wantErr error
	}{
		{"missing topic", closedURL, "", staticToken("t"), domain.ErrInvalidConfig},
		{"token failure", closedURL, "orders", ports.TokenFunc(func() (string, error) {
			return "", errors.New("no credentials")
		}), domain.ErrTransport},
		{"connection refused", closedURL, "orders", staticToken("t"), domain.ErrTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestConsumer(tt.base, tt.tokens, &recordingLogger{}, nil, nil)
			receiver := newRecordingReceiver(true)

			sub := c.Stream(context.Background(), domain.StreamParams{Topic: tt.topic}, receiver)
			drain(t, receiver)
			waitSubscription(t, sub)

			if !errors.Is(sub.Err(), tt.wantErr) {
				t.Errorf("Err() = %v, want %v", sub.Err(), tt.wantErr)
			}
			if sub.State() != StateFailed {
				t.Errorf("State() = %v, want Failed", sub.State())
			}
		})
	}
}

func TestConsumer_Cancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"cursor":{"partition":"0","offset":"1"},"events":[{}]}`)
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	c := newTestConsumer(srv.URL, staticToken("t"), &recordingLogger{}, nil, nil)
	receiver := newRecordingReceiver(true)

	sub := c.Stream(context.Background(), domain.StreamParams{Topic: "orders"}, receiver)

	receiver.next(t) // Start
	if msg := receiver.next(t); !msg.IsBatch() {
		t.Fatalf("got %v, want batch", msg.Signal)
	}
	if sub.State() != StateStreaming {
		t.Fatalf("State() = %v, want Streaming", sub.State())
	}

	if err := sub.Stop(); err != nil {
		t.Fatalf("Stop() = %v", err)
	}
	waitSubscription(t, sub)

	if msg := receiver.next(t); msg.Signal != domain.SignalComplete {
		t.Errorf("got %v, want Complete", msg.Signal)
	}
	if sub.State() != StateStopped {
		t.Errorf("State() = %v, want Stopped", sub.State())
	}
	if sub.Err() != nil {
		t.Errorf("Err() = %v, want nil", sub.Err())
	}
}

func TestConsumer_Backpressure(t *testing.T) {
	// Frames large enough that loopback socket buffers cannot absorb the
	// whole body while a batch is held.
	const (
		total     = 64
		frameSize = 512 << 10
	)
	pad := strings.Repeat("x", frameSize)

	var mu sync.Mutex
	written := 0
	writtenFrames := func() int {
		mu.Lock()
		defer mu.Unlock()
		return written
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for i := 0; i < total; i++ {
			if _, err := fmt.Fprintf(w, `{"cursor":{"partition":"0","offset":"%d"},"events":[{"pad":"%s"}]}`, i, pad); err != nil {
				return
			}
			w.(http.Flusher).Flush()
			mu.Lock()
			written++
			mu.Unlock()
		}
	}))
	defer srv.Close()

	c := NewConsumer(ConsumerConfig{BufferSize: 2}, http.DefaultClient, testEndpoints{base: srv.URL}, staticToken("t"), &mockLogger{}, nil, nil)

	var batches []domain.EventBatch
	receiver := newRecordingReceiver(false)

	sub := c.Stream(context.Background(), domain.StreamParams{Topic: "orders"}, receiver)
	receiver.next(t).From.Tell(domain.SignalInit)

	// Hold the first batch unacknowledged until the server stops making
	// progress.
	first := receiver.next(t)
	batches = append(batches, first.Batch)

	stalled := writtenFrames()
	for deadline := time.Now().Add(5 * time.Second); time.Now().Before(deadline); {
		time.Sleep(200 * time.Millisecond)
		now := writtenFrames()
		if now == stalled {
			break
		}
		stalled = now
	}
	if stalled >= total {
		t.Fatalf("server wrote all %d frames while a batch was unacknowledged", total)
	}
	receiver.quiet(t)

	first.From.Tell(domain.SignalAcknowledge)
	for {
		msg := receiver.next(t)
		if msg.Signal == domain.SignalComplete {
			break
		}
		batches = append(batches, msg.Batch)
		msg.From.Tell(domain.SignalAcknowledge)
	}
	waitSubscription(t, sub)

	if len(batches) != total {
		t.Fatalf("received %d batches, want %d", len(batches), total)
	}
	for i, b := range batches {
		if b.Cursor.Offset != fmt.Sprint(i) {
			t.Errorf("batch %d offset = %s", i, b.Cursor.Offset)
		}
	}
	if got := writtenFrames(); got != total {
		t.Errorf("server wrote %d frames, want %d", got, total)
	}
}
