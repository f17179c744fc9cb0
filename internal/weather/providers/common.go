package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
}

var (
	errRateLimited   = errors.New("rate limited")
	errServerError   = errors.New("server error")
	errUnexpected    = errors.New("unexpected status code")
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

func defaultHTTPConfig(client *http.Client) HTTPClientConfig {
	return HTTPClientConfig{
		Client: client,
		Backoff: BackoffConfig{
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
	}
}

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// doRequestWithResilience executes the HTTP request with retries, exponential backoff,
// and a circuit breaker. Client errors (4xx other than 429) are not retried.
func doRequestWithResilience(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}
	if cfg.Backoff.MaxRetries < 0 || cfg.Backoff.InitialInterval <= 0 {
		return nil, errInvalidConfig
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = cfg.Backoff.InitialInterval
	if cfg.Backoff.MaxInterval > 0 {
		eb.MaxInterval = cfg.Backoff.MaxInterval
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(cfg.Backoff.MaxRetries)), ctx)

	var resp *http.Response
	operation := func() error {
		req, err := buildRequest()
		if err != nil {
			return backoff.Permanent(err)
		}
		req = req.WithContext(ctx)

		result, err := cb.Execute(func() (interface{}, error) {
			r, execErr := cfg.Client.Do(req)
			if execErr != nil {
				return nil, execErr
			}
			if r.StatusCode >= 200 && r.StatusCode < 300 {
				return r, nil
			}

			drain(r)
			switch {
			case r.StatusCode == http.StatusTooManyRequests:
				return nil, errRateLimited
			case r.StatusCode >= 500:
				return nil, errServerError
			default:
				return nil, backoff.Permanent(fmt.Errorf("%w: %d", errUnexpected, r.StatusCode))
			}
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(fmt.Errorf("%w: %v", errCircuitOpen, err))
			}
			return err
		}

		r, ok := result.(*http.Response)
		if !ok {
			return backoff.Permanent(fmt.Errorf("unexpected result type from circuit breaker"))
		}
		resp = r
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return resp, nil
}

func drain(r *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r.Body, 1<<16))
	_ = r.Body.Close()
}
