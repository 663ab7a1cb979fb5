package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bft-labs/streamship/internal/domain"
)

// HeaderFlowID carries the correlation identifier of a publish call.
const HeaderFlowID = "X-Flow-Id"

// maxErrorBody caps how much of an error response body is read.
const maxErrorBody = 4 << 10

// newConsumeRequest builds the streaming GET for params.
func newConsumeRequest(ctx context.Context, endpoint string, params domain.StreamParams, token string) (*http.Request, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse consume url: %w", err)
	}

	q := u.Query()
	setPositive(q, "batch_limit", params.BatchLimit)
	setPositive(q, "batch_flush_timeout", seconds(params.BatchFlushTimeout))
	setPositive(q, "stream_limit", params.StreamLimit)
	setPositive(q, "stream_timeout", seconds(params.StreamTimeout))
	setPositive(q, "stream_keep_alive_limit", params.StreamKeepAliveLimit)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// newPublishRequest builds the POST carrying one serialized event.
func newPublishRequest(ctx context.Context, endpoint string, payload []byte, token, flowID string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	if flowID != "" {
		req.Header.Set(HeaderFlowID, flowID)
	}
	return req, nil
}

// statusError drains a non-2xx response into a *domain.StatusError.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &domain.StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
}

func successful(code int) bool {
	return code/100 == 2
}

func setPositive(q url.Values, key string, v int) {
	if v > 0 {
		q.Set(key, strconv.Itoa(v))
	}
}

func seconds(d time.Duration) int {
	return int(d / time.Second)
}
