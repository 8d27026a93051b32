// Package steward keeps a running hexgrid service backed up.
// It observes the grid via the public API, decides whether the grid changed
// since the last cycle, and asks the admin API for a snapshot when it did.
package steward

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/talgya/hexgrid/internal/terrain"
)

// Observation holds all data collected during an observation cycle.
type Observation struct {
	Status GridStatus         `json:"status"`
	Hexes  map[string]HexInfo `json:"hexes"`
}

// GridStatus mirrors GET /api/v1/status.
type GridStatus struct {
	Hexes       int     `json:"hexes"`
	Layout      string  `json:"layout"`
	Orientation string  `json:"orientation"`
	Radius      float64 `json:"radius"`
}

// HexInfo mirrors values from GET /api/v1/hexes.
type HexInfo struct {
	Key       string        `json:"key"`
	X         int           `json:"x"`
	Z         int           `json:"z"`
	Satellite *terrain.Tile `json:"satellite,omitempty"`
}

// Observer fetches grid state from the API.
type Observer struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewObserver creates an Observer targeting the given API base URL.
func NewObserver(baseURL string) *Observer {
	return &Observer{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Observe fetches the status and every cell.
func (o *Observer) Observe(ctx context.Context) (*Observation, error) {
	obs := &Observation{}

	if err := o.fetchJSON(ctx, "/api/v1/status", &obs.Status); err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}
	if err := o.fetchJSON(ctx, "/api/v1/hexes", &obs.Hexes); err != nil {
		return nil, fmt.Errorf("fetch hexes: %w", err)
	}
	return obs, nil
}

// WaitReady polls the status endpoint with exponential backoff until it
// responds, ctx is done, or maxWait elapses.
func (o *Observer) WaitReady(ctx context.Context, maxWait time.Duration) error {
	backoff := 2 * time.Second
	maxBackoff := 30 * time.Second
	deadline := time.Now().Add(maxWait)

	for {
		var status GridStatus
		err := o.fetchJSON(ctx, "/api/v1/status", &status)
		if err == nil {
			slog.Info("hexgrid API is ready", "hexes", status.Hexes)
			return nil
		}
		if time.Now().Add(backoff).After(deadline) {
			return fmt.Errorf("API not ready after %s: %w", maxWait, err)
		}
		slog.Info("hexgrid API not ready, retrying...", "backoff", backoff)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (o *Observer) fetchJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
