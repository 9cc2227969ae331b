package resilience

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned when the provider's circuit breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// ClientConfig holds settings for a resilient provider client.
type ClientConfig struct {
	// Name identifies the provider this client talks to.
	Name string

	// Timeout bounds each HTTP call. Default: 10 seconds.
	Timeout time.Duration

	// MaxRetries is the number of additional attempts after the first.
	// Zero means a failed call surfaces immediately; the aggregation
	// pipeline relies on that so a failed upstream fetch fails the whole
	// request instead of stalling it.
	MaxRetries uint64

	// InitialInterval and MaxInterval shape the exponential backoff between
	// retries. Ignored when MaxRetries is zero.
	InitialInterval time.Duration
	MaxInterval     time.Duration

	// Breaker configures the circuit breaker. Name defaults to ClientConfig.Name.
	Breaker BreakerConfig
}

// Client executes HTTP requests through a circuit breaker. Server errors
// (5xx) count as breaker failures but the response is still handed back to
// the caller, because provider error envelopes ride on non-2xx statuses and
// must be read, not discarded.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	cfg        ClientConfig
}

// NewClient creates a resilient client for one provider.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 200 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 5 * time.Second
	}
	if cfg.Breaker.Name == "" {
		cfg.Breaker.Name = cfg.Name
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    newBreaker[*http.Response](cfg.Breaker),
		cfg:        cfg,
	}
}

// serverError marks a 5xx response as a breaker failure.
type serverError struct {
	statusCode int
}

func (e *serverError) Error() string {
	return "server error: " + http.StatusText(e.statusCode)
}

// Do executes the request. With MaxRetries zero (the default) the request is
// attempted exactly once; otherwise transient failures are retried with
// exponential backoff. The caller owns the response body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.cfg.MaxRetries == 0 {
		return c.attempt(req)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.InitialInterval
	bo.MaxInterval = c.cfg.MaxInterval
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.cfg.MaxRetries), req.Context())

	var resp *http.Response
	operation := func() error {
		r, err := c.attempt(req)
		if err != nil {
			if errors.Is(err, ErrCircuitOpen) {
				return backoff.Permanent(err)
			}
			return err
		}
		if r.StatusCode >= 500 {
			// Retryable; remember the response in case retries run out.
			resp = r
			return &serverError{statusCode: r.StatusCode}
		}
		resp = r
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		if resp != nil {
			return resp, nil
		}
		return nil, err
	}
	return resp, nil
}

// attempt executes a single request through the circuit breaker.
func (c *Client) attempt(req *http.Request) (*http.Response, error) {
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		r, doErr := c.httpClient.Do(req.Clone(req.Context()))
		if doErr != nil {
			return nil, doErr
		}
		if r.StatusCode >= 500 {
			// Counts as a failure for the breaker; response still returned.
			return r, &serverError{statusCode: r.StatusCode}
		}
		return r, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s", ErrCircuitOpen, c.cfg.Breaker.Name)
		}
		var srvErr *serverError
		if errors.As(err, &srvErr) && resp != nil {
			return resp, nil
		}
		return nil, err
	}
	return resp, nil
}

// State reports the circuit breaker state for observability endpoints.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}
