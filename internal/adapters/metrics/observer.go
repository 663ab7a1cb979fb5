// Package metrics exports pipeline events as Prometheus metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bft-labs/streamship/internal/ports"
)

// Observer implements ports.Observer on Prometheus collectors.
type Observer struct {
	FramesTotal       *prometheus.CounterVec
	FrameBytes        *prometheus.HistogramVec
	DecodeErrorsTotal *prometheus.CounterVec
	BatchesDelivered  *prometheus.CounterVec
	EventsDelivered   *prometheus.CounterVec
	AckWait           *prometheus.HistogramVec
	BufferDepth       *prometheus.GaugeVec
	StreamsEndedTotal *prometheus.CounterVec
	PublishTotal      *prometheus.CounterVec
	PublishDuration   *prometheus.HistogramVec
}

// NewObserver creates and registers all streamship metrics on reg.
func NewObserver(reg prometheus.Registerer) *Observer {
	f := promauto.With(reg)
	return &Observer{
		FramesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "streamship_frames_total",
			Help: "Frames split from consumption streams.",
		}, []string{"topic"}),
		FrameBytes: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "streamship_frame_bytes",
			Help:    "Size of split frames in bytes.",
			Buckets: prometheus.ExponentialBuckets(64, 4, 8),
		}, []string{"topic"}),
		DecodeErrorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "streamship_decode_errors_total",
			Help: "Frames that could not be decoded into a batch.",
		}, []string{"topic"}),
		BatchesDelivered: f.NewCounterVec(prometheus.CounterOpts{
			Name: "streamship_batches_delivered_total",
			Help: "Batches handed to receivers.",
		}, []string{"topic"}),
		EventsDelivered: f.NewCounterVec(prometheus.CounterOpts{
			Name: "streamship_events_delivered_total",
			Help: "Events handed to receivers.",
		}, []string{"topic"}),
		AckWait: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "streamship_ack_wait_seconds",
			Help:    "Time between delivering a batch and its acknowledgment.",
			Buckets: prometheus.DefBuckets,
		}, []string{"topic"}),
		BufferDepth: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "streamship_buffer_depth",
			Help: "Decoded batches waiting between reader and sink.",
		}, []string{"topic"}),
		StreamsEndedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "streamship_streams_ended_total",
			Help: "Consumption streams that ended, by outcome.",
		}, []string{"topic", "outcome"}),
		PublishTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "streamship_publish_total",
			Help: "Publish requests by response status.",
		}, []string{"topic", "status"}),
		PublishDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "streamship_publish_duration_seconds",
			Help:    "Publish request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"topic"}),
	}
}

func (o *Observer) OnFrame(topic string, size int) {
	o.FramesTotal.WithLabelValues(topic).Inc()
	o.FrameBytes.WithLabelValues(topic).Observe(float64(size))
}

func (o *Observer) OnDecodeError(topic string) {
	o.DecodeErrorsTotal.WithLabelValues(topic).Inc()
}

func (o *Observer) OnBatchDelivered(topic string, events int) {
	o.BatchesDelivered.WithLabelValues(topic).Inc()
	o.EventsDelivered.WithLabelValues(topic).Add(float64(events))
}

func (o *Observer) OnBatchAcknowledged(topic string, wait time.Duration) {
	o.AckWait.WithLabelValues(topic).Observe(wait.Seconds())
}

func (o *Observer) OnBufferDepth(topic string, depth int) {
	o.BufferDepth.WithLabelValues(topic).Set(float64(depth))
}

func (o *Observer) OnStreamEnd(topic string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	o.StreamsEndedTotal.WithLabelValues(topic, outcome).Inc()
}

// OnPublish records the outcome. Transport failures carry status "error".
func (o *Observer) OnPublish(topic string, status int, err error, duration time.Duration) {
	label := strconv.Itoa(status)
	if status == 0 && err != nil {
		label = "error"
	}
	o.PublishTotal.WithLabelValues(topic, label).Inc()
	o.PublishDuration.WithLabelValues(topic).Observe(duration.Seconds())
}

var _ ports.Observer = (*Observer)(nil)
