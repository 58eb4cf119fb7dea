package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/i474232898/hourly-forecast/internal/weather"
)

// maxBodyBytes caps how much of a response body is read; a larger body fails
// with weather.ErrPayloadTooLarge.
var maxBodyBytes int64 = 16 << 20

// statusBodySnippet caps how much of an error body is kept in a StatusError.
const statusBodySnippet = 512

// BreakerConfig controls the circuit breaker wrapped around outbound calls.
// A zero MaxConsecutiveFailures disables the breaker.
type BreakerConfig struct {
	MaxConsecutiveFailures uint32
	OpenTimeout            time.Duration
}

var errNoHTTPClient = errors.New("http client not configured")

func newCircuitBreaker(name string, cfg BreakerConfig) *gobreaker.CircuitBreaker {
	if cfg.MaxConsecutiveFailures == 0 {
		return nil
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithField("provider", name).Warnf("circuit breaker %s -> %s", from, to)
		},
	})
}

// fetchBody executes exactly one request built by buildRequest and returns the
// response body. Transport failures come back as *weather.TransportError and
// non-2xx responses as *weather.StatusError; an open breaker short-circuits
// with weather.ErrUpstreamUnavailable before any request is made.
func fetchBody(
	ctx context.Context,
	provider string,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	buildRequest func(ctx context.Context) (*http.Request, error),
) ([]byte, error) {
	if client == nil {
		return nil, errNoHTTPClient
	}

	req, err := buildRequest(ctx)
	if err != nil {
		return nil, err
	}

	do := func() (interface{}, error) {
		resp, err := client.Do(req)
		if err != nil {
			return nil, &weather.TransportError{Provider: provider, Err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, statusBodySnippet))
			return nil, &weather.StatusError{
				Provider:   provider,
				StatusCode: resp.StatusCode,
				Body:       strings.TrimSpace(string(snippet)),
			}
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
		if err != nil {
			return nil, &weather.TransportError{Provider: provider, Err: err}
		}
		if int64(len(body)) > maxBodyBytes {
			return nil, fmt.Errorf("%w: %s: more than %d bytes", weather.ErrPayloadTooLarge, provider, maxBodyBytes)
		}
		return body, nil
	}

	if cb == nil {
		result, err := do()
		if err != nil {
			return nil, err
		}
		return result.([]byte), nil
	}

	result, err := cb.Execute(do)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s: %v", weather.ErrUpstreamUnavailable, provider, err)
		}
		return nil, err
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return body, nil
}
