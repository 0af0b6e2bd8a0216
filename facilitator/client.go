// Package facilitator queries a facilitator's capability endpoint to
// resolve the fee payer account when a 402 challenge does not already
// supply one.
package facilitator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// Capability is one entry of a facilitator's /supported response.
type Capability struct {
	X402Version int
	Scheme      string
	Network     string
	FeePayer    string
}

// supportedResponse mirrors the facilitator's /supported wire shape.
type supportedResponse struct {
	Kinds []struct {
		X402Version int                    `json:"x402Version"`
		Scheme      string                 `json:"scheme"`
		Network     string                 `json:"network"`
		Extra       map[string]interface{} `json:"extra"`
	} `json:"kinds"`
}

// Client probes a facilitator's /supported endpoint.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// New constructs a facilitator Client.
func New(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{BaseURL: baseURL, HTTPClient: httpClient, Logger: logger}
}

// Supported fetches and parses the facilitator's /supported response.
func (c *Client) Supported(ctx context.Context) ([]Capability, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/supported", nil)
	if err != nil {
		return nil, fmt.Errorf("facilitator: building /supported request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("facilitator: /supported request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("facilitator: reading /supported body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("facilitator: /supported returned status %d", resp.StatusCode)
	}

	var parsed supportedResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("facilitator: /supported body is not valid JSON: %w", err)
	}

	caps := make([]Capability, 0, len(parsed.Kinds))
	for _, k := range parsed.Kinds {
		entry := Capability{X402Version: k.X402Version, Scheme: k.Scheme, Network: k.Network}
		if fp, ok := k.Extra["feePayer"].(string); ok {
			entry.FeePayer = fp
		}
		caps = append(caps, entry)
	}

	c.Logger.Debug("facilitator capabilities resolved", "count", len(caps))
	return caps, nil
}

// FeePayerFor selects the fee payer for the given network from caps, or
// reports ok=false when no entry matches.
func FeePayerFor(caps []Capability, network string) (string, bool) {
	for _, c := range caps {
		if c.Network == network && c.FeePayer != "" {
			return c.FeePayer, true
		}
	}
	return "", false
}
