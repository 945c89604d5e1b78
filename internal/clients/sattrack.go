// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

/*
sattrack.go - Satellite Tracking REST API Client

Wraps the satellite tracking provider used for live spacecraft positions,
TLE sets and conjunction (collision risk) summaries. The provider enforces
an hourly transaction quota (~1000 calls/hour, 0.28 req/s sustained) which
is configured on the matching ratelimit gate, not here.
*/

package clients

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
)

// Fetch kinds understood by the satellite tracking provider.
const (
	KindPositions    = "positions"
	KindTLE          = "tle"
	KindConjunctions = "conjunctions"
	KindAbove        = "above"
)

// SatTrackClient provides access to the satellite tracking REST API.
type SatTrackClient struct {
	name       string
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewSatTrackClient creates a client for the satellite tracking provider.
//
// Parameters:
//   - name: provider label used in health snapshots (e.g. "sattrack")
//   - baseURL: provider root URL, trailing slash tolerated
//   - apiKey: account API key, sent as a query parameter
func NewSatTrackClient(name, baseURL, apiKey string) *SatTrackClient {
	return &SatTrackClient{
		name:    name,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: FetchTimeout,
		},
	}
}

// Name implements Client.
func (c *SatTrackClient) Name() string { return c.name }

// Fetch implements Client. The kind selects the endpoint; params are
// appended as query values (satellite id, observer coordinates, ...).
func (c *SatTrackClient) Fetch(ctx context.Context, kind string, params map[string]string) (json.RawMessage, error) {
	endpoint, err := c.endpointFor(kind, params)
	if err != nil {
		return nil, err
	}

	body, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("sattrack %s fetch failed: %w", kind, err)
	}

	// Validate the body is well-formed JSON before handing it downstream.
	if !json.Valid(body) {
		return nil, &APIError{Provider: c.name, StatusCode: http.StatusOK, Body: "malformed JSON body"}
	}

	return json.RawMessage(body), nil
}

// TestConnection implements Client with a minimal positions probe.
func (c *SatTrackClient) TestConnection(ctx context.Context) error {
	// 25544 is the ISS NORAD id; a single-position request is the cheapest
	// authenticated call the provider offers.
	endpoint, err := c.endpointFor(KindPositions, map[string]string{"satid": "25544", "seconds": "1"})
	if err != nil {
		return err
	}
	_, err = c.doRequest(ctx, endpoint)
	return err
}

// endpointFor maps a fetch kind to a provider path.
func (c *SatTrackClient) endpointFor(kind string, params map[string]string) (string, error) {
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	q.Set("apiKey", c.apiKey)

	var path string
	switch kind {
	case KindPositions:
		path = "/rest/v1/satellite/positions"
	case KindTLE:
		path = "/rest/v1/satellite/tle"
	case KindConjunctions:
		path = "/rest/v1/satellite/conjunctions"
	case KindAbove:
		path = "/rest/v1/satellite/above"
	default:
		return "", fmt.Errorf("sattrack: unknown fetch kind %q", kind)
	}

	return path + "?" + q.Encode(), nil
}

func (c *SatTrackClient) doRequest(ctx context.Context, endpoint string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("sattrack request build failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("sattrack response read failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Provider: c.name, StatusCode: resp.StatusCode, Body: excerpt(body)}
	}

	return body, nil
}

// excerpt truncates an error body for inclusion in error messages.
func excerpt(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

var _ Client = (*SatTrackClient)(nil)
