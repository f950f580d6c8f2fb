package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ReadyCheck polls GET /health on a running server.
type ReadyCheck struct {
	// Client defaults to one with a two second timeout.
	Client   *http.Client
	Interval time.Duration
	// Attempts bounds the number of polls. Zero polls until ctx is done.
	Attempts int
	// OnRetry, when set, is called after every failed poll.
	OnRetry func(attempt int, err error)
}

// Wait returns nil once baseURL/health answers 200.
func (c ReadyCheck) Wait(ctx context.Context, baseURL string) error {
	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Second}
	}
	url := strings.TrimSuffix(baseURL, "/") + "/health"

	var lastErr error
	for attempt := 1; c.Attempts == 0 || attempt <= c.Attempts; attempt++ {
		lastErr = probe(ctx, client, url)
		if lastErr == nil {
			return nil
		}
		if c.OnRetry != nil {
			c.OnRetry(attempt, lastErr)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s not ready: %w (last error: %v)", baseURL, ctx.Err(), lastErr)
		case <-time.After(c.Interval):
		}
	}
	return fmt.Errorf("%s not ready after %d attempts: %w", baseURL, c.Attempts, lastErr)
}

func probe(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health returned %d", resp.StatusCode)
	}
	return nil
}
