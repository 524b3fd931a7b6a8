package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxErrorBody = 512

// endpoint is a JSON resource served on a single URL: GET lists, POST appends.
type endpoint struct {
	name       string
	url        string
	httpClient *http.Client
	timeout    time.Duration
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

func newEndpoint(name, url string, timeout time.Duration) *endpoint {
	return &endpoint{
		name: name,
		url:  url,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		timeout: timeout,
		breaker: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:    name,
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Printf("circuit breaker %s: %s -> %s", name, from, to)
			},
			IsSuccessful: func(err error) bool {
				// the caller gave up; says nothing about the service
				if errors.Is(err, context.Canceled) {
					return true
				}
				// a 4xx means the service is up and answering
				var statusErr *StatusError
				if errors.As(err, &statusErr) {
					return statusErr.StatusCode < 500
				}
				return err == nil
			},
		}),
	}
}

func (e *endpoint) get(ctx context.Context) ([]byte, error) {
	return e.call(ctx, http.MethodGet, nil)
}

func (e *endpoint) post(ctx context.Context, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", e.name, err)
	}
	return e.call(ctx, http.MethodPost, body)
}

func (e *endpoint) call(ctx context.Context, method string, body []byte) ([]byte, error) {
	data, err := e.breaker.Execute(func() ([]byte, error) {
		return e.roundTrip(ctx, method, body)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%s: %w", e.name, ErrServiceUnavailable)
	}
	return data, err
}

func (e *endpoint) roundTrip(ctx context.Context, method string, body []byte) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, e.url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", e.name, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, e.name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", e.name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(data))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, &StatusError{Service: e.name, StatusCode: resp.StatusCode, Body: msg}
	}
	return data, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
}

// parseTimestamp accepts RFC 3339 as well as ISO-8601 strings without an offset.
// Null or unparseable values yield the zero time.
func parseTimestamp(s *string) time.Time {
	if s == nil || *s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, *s); err == nil {
			return t
		}
	}
	log.Printf("unparseable timestamp %q", *s)
	return time.Time{}
}
