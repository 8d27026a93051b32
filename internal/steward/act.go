package steward

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SnapshotResult is the response from POST /api/v1/snapshot.
type SnapshotResult struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	HexCount  int       `json:"hex_count"`
	Layout    string    `json:"layout"`
}

// Actor calls the admin API.
type Actor struct {
	BaseURL    string
	AdminKey   string
	HTTPClient *http.Client
}

// NewActor creates an Actor targeting the given API base URL with admin auth.
func NewActor(baseURL, adminKey string) *Actor {
	return &Actor{
		BaseURL:  baseURL,
		AdminKey: adminKey,
		HTTPClient: &http.Client{
			Timeout: 2 * time.Minute, // large grids take a while to write
		},
	}
}

// Snapshot asks the server to persist its grid.
func (a *Actor) Snapshot(ctx context.Context) (*SnapshotResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+"/api/v1/snapshot", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.AdminKey)

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST snapshot: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snapshot failed (%d): %s", resp.StatusCode, string(respBody))
	}

	var result SnapshotResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}
