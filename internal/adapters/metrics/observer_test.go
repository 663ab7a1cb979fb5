package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := make(map[string]*dto.MetricFamily, len(mfs))
	for _, mf := range mfs {
		out[mf.GetName()] = mf
	}
	return out
}

func counterValue(mf *dto.MetricFamily, labels map[string]string) float64 {
	for _, m := range mf.GetMetric() {
		match := true
		for _, lp := range m.GetLabel() {
			if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
				match = false
			}
		}
		if match {
			return m.GetCounter().GetValue()
		}
	}
	return -1
}

func TestNewObserver_RegistersWithoutPanic(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := NewObserver(reg)
	if o.FramesTotal == nil || o.PublishTotal == nil || o.BufferDepth == nil {
		t.Error("collectors not initialized")
	}
}

func TestObserver_ConsumptionEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := NewObserver(reg)

	o.OnFrame("orders", 120)
	o.OnFrame("orders", 80)
	o.OnDecodeError("orders")
	o.OnBatchDelivered("orders", 3)
	o.OnBatchAcknowledged("orders", 10*time.Millisecond)
	o.OnBufferDepth("orders", 7)
	o.OnStreamEnd("orders", nil)
	o.OnStreamEnd("orders", errors.New("reset"))

	mfs := gather(t, reg)

	if v := counterValue(mfs["streamship_frames_total"], nil); v != 2 {
		t.Errorf("frames_total = %v, want 2", v)
	}
	if v := counterValue(mfs["streamship_events_delivered_total"], nil); v != 3 {
		t.Errorf("events_delivered_total = %v, want 3", v)
	}
	if v := counterValue(mfs["streamship_streams_ended_total"], map[string]string{"outcome": "error"}); v != 1 {
		t.Errorf("streams_ended_total{outcome=error} = %v, want 1", v)
	}
	if g := mfs["streamship_buffer_depth"].GetMetric()[0].GetGauge().GetValue(); g != 7 {
		t.Errorf("buffer_depth = %v, want 7", g)
	}
}

func TestObserver_PublishStatusLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := NewObserver(reg)

	o.OnPublish("orders", 200, nil, time.Millisecond)
	o.OnPublish("orders", 200, nil, time.Millisecond)
	o.OnPublish("orders", 422, errors.New("rejected"), time.Millisecond)
	o.OnPublish("orders", 0, errors.New("refused"), time.Millisecond)

	mf := gather(t, reg)["streamship_publish_total"]

	tests := []struct {
		status string
		want   float64
	}{
		{"200", 2},
		{"422", 1},
		{"error", 1},
	}
	for _, tt := range tests {
		if v := counterValue(mf, map[string]string{"status": tt.status}); v != tt.want {
			t.Errorf("publish_total{status=%s} = %v, want %v", tt.status, v, tt.want)
		}
	}
}
