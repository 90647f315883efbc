package seeder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/diamond/internal/domain/types"
)

// outcome of a single submission.
type outcome int

const (
	outcomeFailed outcome = iota
	outcomeCreated
	outcomeDuplicate
)

// client wraps http.Client with the API paths the seeder uses.
type client struct {
	http    *http.Client
	baseURL string
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{http: &http.Client{Timeout: timeout}, baseURL: baseURL}
}

func (c *client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	if out == nil {
		_, err = io.Copy(io.Discard, resp.Body)
		return err
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// submit posts one evaluation and classifies the response.
func (c *client) submit(ctx context.Context, r types.SubmitRequest) (outcome, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return outcomeFailed, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/evaluations", bytes.NewReader(body))
	if err != nil {
		return outcomeFailed, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return outcomeFailed, err
	}
	defer resp.Body.Close()

	var ack submitResponse
	_ = json.NewDecoder(resp.Body).Decode(&ack)
	switch {
	case resp.StatusCode == http.StatusCreated:
		return outcomeCreated, nil
	case resp.StatusCode == http.StatusOK && ack.Duplicate:
		return outcomeDuplicate, nil
	}
	return outcomeFailed, fmt.Errorf("POST /evaluations: status %d", resp.StatusCode)
}
