package entsoe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"entsoe-feeder/internal/observability/metrics"
	series "entsoe-feeder/internal/series/domain"
)

// DefaultEndpoint is the public transparency platform API.
const DefaultEndpoint = "https://web-api.tp.entsoe.eu/api"

const (
	documentLoad       = "A65"
	documentGeneration = "A75"
	documentFlows      = "A11"
	processRealised    = "A16"

	periodLayout = "200601021500"
	window       = 24 * time.Hour
	maxBodyBytes = 32 << 20
)

// Client is a minimal ENTSO-E transparency REST client.
type Client struct {
	endpoint string
	token    string
	client   *http.Client
	limiter  *rate.Limiter
	now      func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// WithRatePerMinute caps outgoing requests. Zero or less disables the limit.
func WithRatePerMinute(perMinute int) Option {
	return func(c *Client) {
		if perMinute <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60), 1)
	}
}

// WithNow overrides the instant used to build query windows.
func WithNow(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient constructs an ENTSO-E client.
func NewClient(endpoint, token string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if token == "" {
		return nil, errors.New("entsoe: empty security token")
	}
	c := &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		token:    token,
		client:   &http.Client{Timeout: 30 * time.Second},
		limiter:  rate.NewLimiter(rate.Limit(400.0/60), 1),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// QueryConsumption fetches actual total load for a domain.
func (c *Client) QueryConsumption(ctx context.Context, domain string) ([]series.Block, error) {
	params := url.Values{}
	params.Set("documentType", documentLoad)
	params.Set("processType", processRealised)
	params.Set("outBiddingZone_Domain", domain)
	return c.query(ctx, documentLoad, params, false)
}

// QueryProduction fetches actual generation of one psrType for a domain.
func (c *Client) QueryProduction(ctx context.Context, psrType, domain string) ([]series.Block, error) {
	params := url.Values{}
	params.Set("psrType", psrType)
	params.Set("documentType", documentGeneration)
	params.Set("processType", processRealised)
	params.Set("in_Domain", domain)
	return c.query(ctx, documentGeneration, params, true)
}

// QueryExchange fetches physical flows with the given in and out domains.
func (c *Client) QueryExchange(ctx context.Context, inDomain, outDomain string) ([]series.Block, error) {
	params := url.Values{}
	params.Set("documentType", documentFlows)
	params.Set("in_Domain", inDomain)
	params.Set("out_Domain", outDomain)
	return c.query(ctx, documentFlows, params, false)
}

func (c *Client) query(ctx context.Context, document string, params url.Values, directional bool) ([]series.Block, error) {
	now := c.now().UTC()
	params.Set("periodStart", now.Add(-window).Format(periodLayout))
	params.Set("periodEnd", now.Add(window).Format(periodLayout))
	params.Set("securityToken", c.token)

	started := time.Now()
	body, err := c.do(ctx, params)
	if err != nil {
		metrics.ObserveUpstream(document, metrics.ResultError, time.Since(started))
		return nil, err
	}
	blocks, err := ParseDocument(body, directional)
	if err != nil {
		metrics.ObserveUpstream(document, metrics.ResultError, time.Since(started))
		return nil, err
	}
	metrics.ObserveUpstream(document, metrics.ResultSuccess, time.Since(started))
	return blocks, nil
}

func (c *Client) do(ctx context.Context, params url.Values) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("entsoe: read body: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Reason: ParseReason(body)}
	}
	return body, nil
}
