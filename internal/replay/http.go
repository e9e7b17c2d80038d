package replay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/carelog/internal/adapters/stream"
)

// HTTPClient wraps http.Client with the replay base URL.
type HTTPClient struct {
	client  *http.Client
	baseURL string
	replay  string
}

func newHTTPClient(baseURL, replayID string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		replay:  replayID,
	}
}

type pipelineRequest struct {
	Messages []stream.Record `json:"messages"`
}

// Health returns the status code of /healthz.
func (c *HTTPClient) Health(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// Pipeline posts records to /v1/pipeline and returns the status and body.
func (c *HTTPClient) Pipeline(ctx context.Context, records []stream.Record) (int, []byte, error) {
	payload, err := json.Marshal(pipelineRequest{Messages: records})
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/pipeline", bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Replay-ID", c.replay)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}
