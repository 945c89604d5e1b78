// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

/*
horizons.go - Planetary Data REST API Client

Wraps the planetary-data provider used for ephemerides and body metadata.
This provider has a much tighter quota than the satellite tracker
(~1000 calls/day, 0.012 req/s sustained), configured on its ratelimit gate.
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

// Fetch kinds understood by the planetary-data provider.
const (
	KindEphemeris = "ephemeris"
	KindBodyInfo  = "body-info"
)

// HorizonsClient provides access to the planetary-data REST API.
type HorizonsClient struct {
	name       string
	baseURL    string
	httpClient *http.Client
}

// NewHorizonsClient creates a client for the planetary-data provider.
// The provider is unauthenticated; abuse protection is quota-based.
func NewHorizonsClient(name, baseURL string) *HorizonsClient {
	return &HorizonsClient{
		name:    name,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: FetchTimeout,
		},
	}
}

// Name implements Client.
func (c *HorizonsClient) Name() string { return c.name }

// Fetch implements Client.
func (c *HorizonsClient) Fetch(ctx context.Context, kind string, params map[string]string) (json.RawMessage, error) {
	var path string
	switch kind {
	case KindEphemeris:
		path = "/api/horizons.api"
	case KindBodyInfo:
		path = "/api/bodies"
	default:
		return nil, fmt.Errorf("horizons: unknown fetch kind %q", kind)
	}

	q := url.Values{}
	q.Set("format", "json")
	for k, v := range params {
		q.Set(k, v)
	}

	body, err := c.doRequest(ctx, path+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("horizons %s fetch failed: %w", kind, err)
	}

	if !json.Valid(body) {
		return nil, &APIError{Provider: c.name, StatusCode: http.StatusOK, Body: "malformed JSON body"}
	}

	return json.RawMessage(body), nil
}

// TestConnection implements Client with the cheapest ephemeris request the
// provider accepts.
func (c *HorizonsClient) TestConnection(ctx context.Context) error {
	_, err := c.doRequest(ctx, "/api/horizons.api?format=json&COMMAND='499'&OBJ_DATA='YES'&MAKE_EPHEM='NO'")
	return err
}

func (c *HorizonsClient) doRequest(ctx context.Context, endpoint string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("horizons request build failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("horizons response read failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Provider: c.name, StatusCode: resp.StatusCode, Body: excerpt(body)}
	}

	return body, nil
}

var _ Client = (*HorizonsClient)(nil)
