//go:generate go run github.com/golang/mock/mockgen -destination=./mocks/fetcher.go -package=mocks . Fetcher

// Package api performs authenticated GET requests against the monitoring API
// and decodes the JSON body.
//
// The client does not retry. Any non-2xx status, network failure or
// undecodable body is returned as a *TransportError.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/tejusbharadwaj/solarmon/internal/endpoint"
)

// DefaultBaseURL is the vendor's monitoring API root.
const DefaultBaseURL = "https://monitoringapi.solaredge.com"

var (
	ErrRequest = errors.New("error making monitoring API request")
	ErrStatus  = errors.New("error status from monitoring API")
	ErrDecode  = errors.New("error decoding monitoring API response")
)

// TransportError wraps one of ErrRequest, ErrStatus or ErrDecode.
type TransportError struct {
	Endpoint   endpoint.Name
	StatusCode int
	Kind       error
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s: got %d: %v", e.Kind, e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Fetcher retrieves the decoded JSON body for a built request.
type Fetcher interface {
	Fetch(ctx context.Context, req endpoint.Request) (map[string]interface{}, error)
}

// Client is the HTTP Fetcher.
type Client struct {
	http    *resty.Client
	logger  *logrus.Logger
	limiter *rate.Limiter
	metrics *Metrics

	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient makes the client send requests through hc.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithLogger(logger *logrus.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit spaces requests to at most rps per second with the given
// burst. The vendor's daily quota is still the caller's to respect.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logrus.StandardLogger()
	}

	if c.httpClient != nil {
		c.http = resty.NewWithClient(c.httpClient)
	} else {
		c.http = resty.New()
	}
	c.http.
		SetTimeout(c.timeout).
		SetHeader("Accept", "application/json")

	return c
}

// Fetch issues the GET for req and decodes the JSON object it returns.
func (c *Client) Fetch(ctx context.Context, req endpoint.Request) (map[string]interface{}, error) {
	log := c.logger.WithFields(logrus.Fields{
		"request_id": uuid.NewString(),
		"endpoint":   req.Endpoint,
		"path":       req.Path,
	})

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Endpoint: req.Endpoint, Kind: ErrRequest, Err: err}
		}
	}

	start := time.Now()
	// the query is passed pre-encoded so api_key stays first
	resp, err := c.http.R().
		SetContext(ctx).
		Get(req.URL(c.baseURL))
	c.metrics.observe(req.Endpoint, resp, time.Since(start))
	if err != nil {
		err = c.redact(err, req)
		log.WithError(err).Error("Request failed")
		return nil, &TransportError{Endpoint: req.Endpoint, Kind: ErrRequest, Err: err}
	}

	log = log.WithFields(logrus.Fields{
		"status":   resp.StatusCode(),
		"duration": time.Since(start),
	})

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		log.Warn("Unexpected response status")
		return nil, &TransportError{
			Endpoint:   req.Endpoint,
			StatusCode: resp.StatusCode(),
			Kind:       ErrStatus,
			Err:        errors.New(truncate(string(resp.Body()), 256)),
		}
	}

	var body map[string]interface{}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		log.WithError(err).Warn("Undecodable response body")
		return nil, &TransportError{Endpoint: req.Endpoint, StatusCode: resp.StatusCode(), Kind: ErrDecode, Err: err}
	}

	log.Debug("Request completed")
	return body, nil
}

// redact drops the query, and with it the api key, from the URL a failed
// request reports.
func (c *Client) redact(err error, req endpoint.Request) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return &url.Error{Op: uerr.Op, URL: strings.TrimRight(c.baseURL, "/") + req.Path, Err: uerr.Err}
	}
	if req.APIKey != "" && strings.Contains(err.Error(), req.APIKey) {
		return errors.New(strings.ReplaceAll(err.Error(), req.APIKey, "<redacted>"))
	}
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var _ Fetcher = (*Client)(nil)
