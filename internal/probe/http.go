package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/jobguard/pkg/logger"
)

// HTTPClient talks to the inference API.
type HTTPClient struct {
	client  *http.Client
	baseURL string
	retries atomic.Int64
}

// NewHTTPClient creates a new HTTP client with timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Health fetches GET /healthz. A 503 still decodes the body.
func (c *HTTPClient) Health(ctx context.Context) (Health, int, error) {
	var h Health
	status, body, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return h, status, err
	}
	if err := json.Unmarshal(body, &h); err != nil {
		return h, status, fmt.Errorf("decode health: %w", err)
	}
	return h, status, nil
}

// Predict posts one posting.
func (c *HTTPClient) Predict(ctx context.Context, job JobPosting) (Prediction, error) {
	var out Prediction
	body, err := c.post(ctx, "/predict", job)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("%w: decode prediction: %w", ErrRequest, err)
	}
	return out, nil
}

// PredictBatch posts postings as one batch. The raw body is returned so
// callers can check the exact JSON shape.
func (c *HTTPClient) PredictBatch(ctx context.Context, jobs []JobPosting) ([]Prediction, []byte, error) {
	body, err := c.post(ctx, "/predict/batch", jobs)
	if err != nil {
		return nil, nil, err
	}
	var out []Prediction
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, body, fmt.Errorf("%w: decode batch: %w", ErrRequest, err)
	}
	return out, body, nil
}

// Retries returns how many 429 responses were retried.
func (c *HTTPClient) Retries() int64 {
	return c.retries.Load()
}

// post sends v and retries backpressure responses with a linear backoff.
func (c *HTTPClient) post(ctx context.Context, path string, v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	for attempt := 1; ; attempt++ {
		status, body, err := c.do(ctx, http.MethodPost, path, payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrRequest, path, err)
		}
		if status == http.StatusOK {
			return body, nil
		}
		if status != http.StatusTooManyRequests || attempt == maxAttempts {
			return nil, fmt.Errorf("%w: %s: status %d: %s", ErrRequest, path, status, bytes.TrimSpace(body))
		}

		c.retries.Add(1)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	id := uuid.NewString()
	req.Header.Set("X-Request-ID", id)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(ctx, "failed to close response body", logger.Error(err))
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	logger.Get().Debug(logger.WithRequestID(ctx, id), "response received",
		logger.String("method", method),
		logger.String("path", path),
		logger.Int("status", resp.StatusCode),
	)
	return resp.StatusCode, data, nil
}
