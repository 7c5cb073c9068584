package mobsf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mobsf-sidecar/internal/domain"
)

const (
	reportPath        = "/api/v1/report_json"
	defaultTimeout    = 30 * time.Second
	maxReportBytes    = 64 << 20
	maxErrorBodyBytes = 64 << 10
)

// UpstreamError is returned when the scanning service answers with a
// non-200 status.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("MobSF Error: %d %s", e.StatusCode, e.Body)
}

func (e *UpstreamError) HTTPStatusCode() int {
	return e.StatusCode
}

// TransportError is returned when the scanning service could not be reached
// or its response could not be read or parsed.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("mobsf: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Client fetches scan reports from a MobSF instance.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// NewClient creates a Client for the MobSF instance at baseURL.
func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("mobsf: base URL must not be empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("mobsf: parse base URL: %w", err)
	}
	c := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) reportURL() string {
	return c.baseURL + reportPath
}

// FetchReport retrieves the JSON report for one completed scan. It makes a
// single attempt; failures are never retried.
func (c *Client) FetchReport(ctx context.Context, scanHash string) (domain.Report, error) {
	if strings.TrimSpace(scanHash) == "" {
		return nil, errors.New("mobsf: scan hash must not be empty")
	}

	form := url.Values{"hash": {scanHash}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.reportURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &TransportError{Op: "create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", c.apiKey)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "request failed", Err: err}
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBodyBytes))
		return nil, &UpstreamError{StatusCode: res.StatusCode, Body: string(buf)}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, maxReportBytes))
	if err != nil {
		return nil, &TransportError{Op: "read response body", Err: err}
	}
	report, err := domain.ParseReport(buf)
	if err != nil {
		return nil, &TransportError{Op: "parse report", Err: err}
	}
	return report, nil
}
