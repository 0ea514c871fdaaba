package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

var errServerFailure = errors.New("remote server error")

// Config tunes the outbound client
type Config struct {
	Timeout    time.Duration
	MaxRetries int
	MinWait    time.Duration
	MaxWait    time.Duration
	UserAgent  string
	// RateLimit is requests per second; zero means unlimited
	RateLimit float64
}

// DefaultConfig returns the client defaults used for import lookups
func DefaultConfig() Config {
	return Config{
		Timeout:    15 * time.Second,
		MaxRetries: 2,
		MinWait:    500 * time.Millisecond,
		MaxWait:    5 * time.Second,
		UserAgent:  "AppLauncher/1.0",
	}
}

// Client wraps resty with retries, rate limiting and a circuit breaker
type Client struct {
	Resty   *resty.Client
	Breaker *resilience.Breaker

	mu      sync.RWMutex
	limiter *rate.Limiter
	metrics *monitoring.Metrics
}

// NewClient builds a client whose transport retries through retryablehttp
func NewClient(cfg Config) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.MinWait
	retryClient.RetryWaitMax = cfg.MaxWait
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil

	restyClient := resty.NewWithClient(retryClient.StandardClient()).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent)

	breaker := resilience.New("remote-lookups", resilience.Settings{
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 10 ||
				(counts.Requests >= 20 && float64(counts.TotalFailures)/float64(counts.Requests) > 0.7)
		},
	})

	c := &Client{
		Resty:   restyClient,
		Breaker: breaker,
		limiter: rate.NewLimiter(rate.Inf, 0),
	}
	c.SetRateLimit(cfg.RateLimit)
	return c
}

// WithMetrics attaches metrics for outbound calls
func (c *Client) WithMetrics(m *monitoring.Metrics) *Client {
	c.metrics = m
	return c
}

// SetRateLimit configures requests per second; zero or less disables limiting
func (c *Client) SetRateLimit(rps float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rps <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 0)
		return
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// Request creates a request bound to ctx once the limiter admits it
func (c *Client) Request(ctx context.Context) (*resty.Request, error) {
	if c.Breaker.State() == resilience.StateOpen {
		return nil, fmt.Errorf("%w: %w", types.ErrNetworkUnavailable, resilience.ErrCircuitOpen)
	}

	c.mu.RLock()
	limiter := c.limiter
	c.mu.RUnlock()
	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	return c.Resty.R().SetContext(ctx), nil
}

// Do sends a request built by send. Transport failures and 5xx responses
// count against the breaker; transport failures are reported as
// ErrNetworkUnavailable. Non-2xx responses are returned without error.
func (c *Client) Do(ctx context.Context, purpose string, send func(*resty.Request) (*resty.Response, error)) (*resty.Response, error) {
	req, err := c.Request(ctx)
	if err != nil {
		c.metrics.RecordRemoteCall(purpose, "rejected")
		return nil, err
	}

	var resp *resty.Response
	err = c.Breaker.Execute(func() error {
		var sendErr error
		resp, sendErr = send(req)
		if sendErr != nil {
			return sendErr
		}
		if resp.StatusCode() >= 500 {
			return errServerFailure
		}
		return nil
	})

	switch {
	case err == nil:
		c.metrics.RecordRemoteCall(purpose, "ok")
		return resp, nil
	case errors.Is(err, errServerFailure):
		c.metrics.RecordRemoteCall(purpose, "server_error")
		return resp, nil
	default:
		c.metrics.RecordRemoteCall(purpose, "unreachable")
		return nil, fmt.Errorf("%w: %w", types.ErrNetworkUnavailable, err)
	}
}

// Get fetches url
func (c *Client) Get(ctx context.Context, purpose, url string) (*resty.Response, error) {
	return c.Do(ctx, purpose, func(r *resty.Request) (*resty.Response, error) {
		return r.Get(url)
	})
}

// Head probes url
func (c *Client) Head(ctx context.Context, purpose, url string) (*resty.Response, error) {
	return c.Do(ctx, purpose, func(r *resty.Request) (*resty.Response, error) {
		return r.Head(url)
	})
}

// BreakerState returns the current circuit breaker state
func (c *Client) BreakerState() resilience.State {
	return c.Breaker.State()
}
