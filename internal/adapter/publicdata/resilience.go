package publicdata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// Backoff controls the retry schedule for upstream calls.
type Backoff struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

var (
	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errInvalidRetry = errors.New("invalid backoff configuration")
	errAbandoned    = errors.New("request abandoned by caller")

	// ErrCircuitOpen is returned without retrying while the breaker for a
	// provider is open.
	ErrCircuitOpen = errors.New("circuit breaker open")
)

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:         name,
		MaxRequests:  5,
		Interval:     time.Minute,
		Timeout:      2 * time.Minute,
		IsSuccessful: providerHealthy,
	})
}

// providerHealthy reports whether err leaves the provider's health untouched.
// Only transport failures and 429/5xx responses count against the breaker;
// a caller giving up or a rejected request (other 4xx) does not.
func providerHealthy(err error) bool {
	return err == nil || errors.Is(err, errAbandoned) || errors.Is(err, errUnexpected)
}

// doWithRetry executes the request built by buildRequest behind cb, retrying
// transport errors, 429s and 5xx responses with exponential backoff. Other
// non-2xx statuses fail immediately. The caller owns the returned body.
func doWithRetry(
	ctx context.Context,
	client *http.Client,
	backoff Backoff,
	cb *gobreaker.CircuitBreaker,
	buildRequest func(ctx context.Context) (*http.Request, error),
) (*http.Response, error) {
	if backoff.MaxRetries < 0 || backoff.InitialInterval <= 0 {
		return nil, errInvalidRetry
	}

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := buildRequest(ctx)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		result, err := cb.Execute(func() (any, error) {
			resp, doErr := client.Do(req)
			if doErr != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, fmt.Errorf("%w: %w", errAbandoned, ctxErr)
				}
				return nil, doErr
			}
			if statusErr := checkStatus(resp.StatusCode); statusErr != nil {
				_, _ = io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				return nil, statusErr
			}
			return resp, nil
		})
		if err == nil {
			return result.(*http.Response), nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		if errors.Is(err, errAbandoned) || errors.Is(err, errUnexpected) || attempt >= backoff.MaxRetries {
			return nil, err
		}

		if err := sleepWithContext(ctx, retryDelay(backoff, attempt)); err != nil {
			return nil, err
		}
	}
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusTooManyRequests:
		return errRateLimited
	case code >= 500:
		return fmt.Errorf("%w: %d", errServerError, code)
	case code < 200 || code >= 300:
		return fmt.Errorf("%w: %d", errUnexpected, code)
	}
	return nil
}

func retryDelay(b Backoff, attempt int) time.Duration {
	delay := b.InitialInterval
	for range attempt {
		if b.MaxInterval > 0 && delay >= b.MaxInterval {
			break
		}
		delay *= 2
	}
	if b.MaxInterval > 0 && delay > b.MaxInterval {
		delay = b.MaxInterval
	}
	return delay
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
