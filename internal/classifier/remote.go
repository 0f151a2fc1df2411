package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"endurance-planner/internal/analysis"
)

// Remote asks an HTTP classification service for the athlete's tier.
type Remote struct {
	URL    string
	Client *http.Client
}

type remoteRequest struct {
	UserID       string `json:"user_id"`
	LookbackDays int    `json:"lookback_days"`
}

type remoteResponse struct {
	Success bool   `json:"success"`
	Level   string `json:"level"`
	Error   string `json:"error,omitempty"`
}

// NewRemote returns a provider for url. A nil client uses http.DefaultClient.
func NewRemote(url string, client *http.Client) *Remote {
	if client == nil {
		client = http.DefaultClient
	}
	return &Remote{URL: url, Client: client}
}

func (r *Remote) Name() string { return analysis.TierSourceRemote }

func (r *Remote) Classify(ctx context.Context, athleteID string, lookbackDays int) (analysis.Tier, error) {
	if r.URL == "" {
		return "", ErrUnavailable
	}

	body, err := json.Marshal(remoteRequest{UserID: athleteID, LookbackDays: lookbackDays})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling classifier: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("classifier returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding classifier response: %w", err)
	}
	if !out.Success || out.Level == "" {
		return "", ErrUnavailable
	}

	tier, err := analysis.ParseTier(out.Level)
	if err != nil {
		return "", fmt.Errorf("classifier answer: %w", err)
	}
	return tier, nil
}
