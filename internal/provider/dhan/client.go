// Package dhan is a minimal client for the Dhan v2 historical chart
// APIs, scoped to the index series this service tracks. Responses are
// normalized at this boundary; see normalize.go.
package dhan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/arunpanwar240-bot/apna-screener/internal/model"
)

const (
	defaultBaseURL = "https://api.dhan.co/v2"
	defaultTimeout = 10 * time.Second

	// Provider responses are small; cap reads defensively.
	maxResponseBytes = 4 << 20
)

// Config configures the client.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// Credentials returns the current (client id, access token) pair.
	// Read per request so runtime settings changes take effect without
	// a restart.
	Credentials func() (clientID, accessToken string)
}

// Client talks to the Dhan chart APIs with bounded timeouts.
type Client struct {
	baseURL string
	creds   func() (string, string)
	http    *http.Client
}

// New creates a Dhan client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	creds := cfg.Credentials
	if creds == nil {
		creds = func() (string, string) { return "", "" }
	}
	return &Client{
		baseURL: cfg.BaseURL,
		creds:   creds,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

// chartRequest is the shared body of both chart endpoints.
type chartRequest struct {
	SecurityID      string `json:"securityId"`
	ExchangeSegment string `json:"exchangeSegment"`
	InstrumentType  string `json:"instrumentType"`
	Interval        int    `json:"interval,omitempty"`
	FromDate        string `json:"fromDate"`
	ToDate          string `json:"toDate"`
}

// IntradayBars fetches native minute bars (interval in minutes: 1, 5,
// 15 or 60) for [from, to] and normalizes the response.
func (c *Client) IntradayBars(ctx context.Context, inst model.Instrument, interval int, from, to time.Time) ([]model.RawBar, error) {
	req := chartRequest{
		SecurityID:      inst.SecurityID(),
		ExchangeSegment: model.ExchangeSegment,
		InstrumentType:  model.InstrumentType,
		Interval:        interval,
		FromDate:        from.Format("2006-01-02"),
		ToDate:          to.Format("2006-01-02"),
	}
	return c.fetch(ctx, "charts/intraday", req)
}

// DailyBars fetches daily bars for [from, to].
func (c *Client) DailyBars(ctx context.Context, inst model.Instrument, from, to time.Time) ([]model.RawBar, error) {
	req := chartRequest{
		SecurityID:      inst.SecurityID(),
		ExchangeSegment: model.ExchangeSegment,
		InstrumentType:  model.InstrumentType,
		FromDate:        from.Format("2006-01-02"),
		ToDate:          to.Format("2006-01-02"),
	}
	return c.fetch(ctx, "charts/historical", req)
}

func (c *Client) fetch(ctx context.Context, path string, body chartRequest) ([]model.RawBar, error) {
	clientID, token := c.creds()
	if clientID == "" || token == "" {
		return nil, &FetchError{Kind: KindNotConfigured, Op: path}
	}
	if body.SecurityID == "" {
		return nil, formatErr(path, fmt.Errorf("unknown security id"))
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, formatErr(path, err)
	}

	url := c.baseURL + "/" + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, transientErr(path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("access-token", token)
	req.Header.Set("client-id", clientID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transientErr(path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, transientErr(path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, transientErr(path, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	bars, err := ExtractBars(raw)
	if err != nil {
		return nil, err
	}
	return bars, nil
}
