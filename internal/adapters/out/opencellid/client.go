// Package opencellid looks up a rider's position from the OpenCellID cell API.
package opencellid

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

const (
	DefaultBaseURL = "https://opencellid.org/api"
	DefaultMCC     = 621
	DefaultTimeout = 3 * time.Second

	userAgent                   = "DLVApp/1.0"
	responseBodyReadLimit int64 = 1024
)

var (
	ErrAPIKeyRequired    = errors.New("opencellid api key is required")
	ErrRiderIsRequired   = errors.New("rider number is required")
	ErrUnexpectedStatus  = errors.New("opencellid returned a non-2xx status")
	ErrMissingCoordinate = errors.New("opencellid response has no usable coordinates")
)

var _ ports.LocationProvider = (*Client)(nil)

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	mcc        int
}

type Option func(*Client)

// WithHTTPClient overrides the default HTTP client. The client's Timeout still applies.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout, Transport: c.httpClient.Transport}
		}
	}
}

// WithMCC sets the mobile country code sent with every lookup.
func WithMCC(mcc int) Option {
	return func(c *Client) {
		if mcc > 0 {
			c.mcc = mcc
		}
	}
}

func NewClient(apiKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, ErrAPIKeyRequired
	}

	client := &Client{
		apiKey:     trimmedKey,
		baseURL:    DefaultBaseURL,
		mcc:        DefaultMCC,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// Locate asks the cell API where the handset identified by riderNumber is.
// Any transport failure, non-2xx status, or response without valid coordinates is an error;
// the caller decides how to fall back.
func (c *Client) Locate(ctx context.Context, riderNumber string) (kernel.Location, error) {
	rider := strings.TrimSpace(riderNumber)
	if rider == "" {
		return kernel.Location{}, ErrRiderIsRequired
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cellURL(rider), nil)
	if err != nil {
		return kernel.Location{}, fmt.Errorf("build cell request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return kernel.Location{}, fmt.Errorf("execute cell request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return kernel.Location{}, fmt.Errorf("%w: status %d: %s",
			ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var apiResp struct {
		Lat coordinate `json:"lat"`
		Lon coordinate `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return kernel.Location{}, fmt.Errorf("decode cell response: %w", err)
	}
	if !apiResp.Lat.set || !apiResp.Lon.set || (apiResp.Lat.value == 0 && apiResp.Lon.value == 0) {
		return kernel.Location{}, ErrMissingCoordinate
	}

	loc, err := kernel.NewLocation(apiResp.Lat.value, apiResp.Lon.value)
	if err != nil {
		return kernel.Location{}, fmt.Errorf("%w: %w", ErrMissingCoordinate, err)
	}
	return loc, nil
}

func (c *Client) cellURL(rider string) string {
	query := url.Values{}
	query.Set("mcc", strconv.Itoa(c.mcc))
	query.Set("format", "json")
	query.Set("msisdn", rider)
	return fmt.Sprintf("%s/cell?%s", strings.TrimRight(c.baseURL, "/"), query.Encode())
}

// coordinate accepts both 6.52 and "6.52"; anything else leaves it unset.
type coordinate struct {
	value float64
	set   bool
}

func (c *coordinate) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		raw = []byte(strings.TrimSpace(s))
	}
	v, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return nil
	}
	c.value = v
	c.set = true
	return nil
}
