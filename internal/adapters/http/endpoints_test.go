package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestBrokerEndpoints(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		topic string
		want  string
	}{
		{"plain", "https://broker.example", "orders", "https://broker.example/event-types/orders/events"},
		{"trailing slash", "https://broker.example/", "orders", "https://broker.example/event-types/orders/events"},
		{"base path", "http://localhost:8080/api", "order.created", "http://localhost:8080/api/event-types/order.created/events"},
		{"escaped topic", "http://b", "a/b c", "http://b/event-types/a%2Fb%20c/events"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewBrokerEndpoints(tt.base)
			if got := e.ConsumeURL(tt.topic); got != tt.want {
				t.Errorf("ConsumeURL() = %s, want %s", got, tt.want)
			}
			if got := e.PublishURL(tt.topic); got != tt.want {
				t.Errorf("PublishURL() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNewClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	client := NewClient(time.Second)
	if client.Timeout != time.Second {
		t.Errorf("Timeout = %v, want 1s", client.Timeout)
	}

	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok" {
		t.Errorf("body = %q", body)
	}
}
