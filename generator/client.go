package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"gridiron/models"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

// maxResponseBytes caps how much of an upstream response is read
const maxResponseBytes = 1 << 20

type generateRequest struct {
	Plays   []models.Play `json:"plays"`
	Options int           `json:"options"`
}

// HTTPClient calls an upstream generation endpoint that answers with
// {"question": ..., "options": [...], "answer": n}
type HTTPClient struct {
	url        string
	httpClient *http.Client
	maxRetries uint64
	backoff    func() backoff.BackOff
}

// NewHTTPClient creates a client for url retrying failed calls up to maxRetries times
func NewHTTPClient(url string, maxRetries int) *HTTPClient {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &HTTPClient{
		url:        url,
		httpClient: &http.Client{},
		maxRetries: uint64(maxRetries),
		backoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			b.MaxInterval = 2 * time.Second
			return b
		},
	}
}

// Generate posts the window upstream. Retries stop when ctx is done.
func (c *HTTPClient) Generate(ctx context.Context, window []models.Play) (*models.GeneratedQuestion, error) {
	body, err := json.Marshal(generateRequest{Plays: window, Options: models.OptionCount})
	if err != nil {
		return nil, fmt.Errorf("failed to encode generation request: %w", err)
	}

	var result *models.GeneratedQuestion
	attempt := 0
	operation := func() error {
		attempt++
		q, err := c.call(ctx, body)
		if err != nil {
			log.WithError(err).WithField("attempt", attempt).Debug("Generation attempt failed")
			return err
		}
		result = q
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(c.backoff(), c.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("%w after %d attempts: %w", ErrGenerationFailure, attempt, err)
	}
	return result, nil
}

func (c *HTTPClient) call(ctx context.Context, body []byte) (*models.GeneratedQuestion, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read generation response: %w", err)
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("generator returned status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, backoff.Permanent(fmt.Errorf("generator returned status %d", resp.StatusCode))
	}

	var q models.GeneratedQuestion
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("malformed generation response: %w", err)
	}
	if err := Validate(&q); err != nil {
		return nil, err
	}
	return &q, nil
}
