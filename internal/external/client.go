// Package external is the anti-corruption layer between brandgate domain
// logic and the payment processor. Outbound HTTP calls are routed through
// BaseClient, which enforces circuit breaking, trace propagation, and error
// mapping. There is deliberately no retry logic anywhere in this layer:
// failed calls surface immediately and callers degrade to absent/false.
package external

import (
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"brandgate/internal/types"
)

// BaseClient wraps an *http.Client and a circuit breaker. Provider clients
// embed BaseClient to inherit this behavior.
type BaseClient struct {
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker[*http.Response]
	userAgent string
}

// NewBaseClient creates a BaseClient with the given http client, breaker
// name, and user agent.
func NewBaseClient(httpClient *http.Client, breakerName, userAgent string) *BaseClient {
	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
	})

	return &BaseClient{
		client:    httpClient,
		breaker:   cb,
		userAgent: userAgent,
	}
}

// Do executes the HTTP request through the circuit breaker with User-Agent
// and trace header injection. Each call is attempted exactly once; a 5xx
// response counts as a breaker failure but is returned to the caller as-is.
//
// The caller is responsible for closing the response body. When the breaker
// is open, Do returns an upstream_stripe_unavailable AppError without
// touching the network.
func (c *BaseClient) Do(req *http.Request) (*http.Response, error) {
	if traceID := types.GetRequestID(req.Context()); traceID != "" {
		req.Header.Set("X-Request-Id", traceID)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			// Count server errors against the breaker but hand the
			// response back so the caller can read the error body.
			return resp, errServerStatus
		}
		return resp, nil
	})

	switch {
	case err == nil:
		return resp, nil
	case errors.Is(err, errServerStatus):
		return resp, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, types.NewAppError(
			types.ErrCodeUpstreamStripe,
			"payment processor circuit open",
			err,
		)
	default:
		return nil, types.NewAppError(
			types.ErrCodeUpstreamStripe,
			"payment processor request failed",
			err,
		)
	}
}

// errServerStatus is a sentinel used to feed 5xx responses to the breaker
// while still returning the response to the caller.
var errServerStatus = errors.New("upstream server error status")
