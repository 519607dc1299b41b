package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storefront/internal/models"
	"storefront/internal/util"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	maxErrorBody       = 1 << 20
	breakerTripAfter   = 5
	breakerOpenTimeout = 30 * time.Second
)

// errorBody mirrors the error responses written by the services
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// response is what the breaker hands back from one round trip
type response struct {
	status int
	header http.Header
	body   []byte
}

// base is a JSON-over-HTTP client for one upstream guarded by a circuit breaker.
// Upstream client errors (invalid input, not found, empty cart) do not count as breaker failures.
type base struct {
	name    string
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[response]
	logger  *zap.Logger
}

func newBase(name, baseURL string, timeout time.Duration) *base {
	b := &base{
		name:    name,
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: util.GetLogger(),
	}

	b.breaker = gobreaker.NewCircuitBreaker[response](gobreaker.Settings{
		Name:    name,
		Timeout: breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTripAfter
		},
		IsSuccessful: func(err error) bool {
			return err == nil || models.IsClientError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			util.UpstreamBreakerState.WithLabelValues(name).Set(float64(to))
			b.logger.Warn("Circuit breaker state changed",
				zap.String("upstream", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	util.UpstreamBreakerState.WithLabelValues(name).Set(float64(gobreaker.StateClosed))

	return b
}

// do sends body as JSON and decodes a successful response into out when out is not nil
func (b *base) do(ctx context.Context, method, path string, body interface{}, header http.Header, out interface{}) (response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return response{}, fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	res, err := b.breaker.Execute(func() (response, error) {
		return b.roundTrip(ctx, method, path, payload, header)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return response{}, fmt.Errorf("%w: %s circuit breaker is open", models.ErrUnavailable, b.name)
	}
	if err != nil {
		return response{}, err
	}

	if out == nil || len(res.body) == 0 {
		return res, nil
	}
	if err := json.Unmarshal(res.body, out); err != nil {
		return response{}, fmt.Errorf("%w: failed to decode %s response: %v", models.ErrUnavailable, b.name, err)
	}
	return res, nil
}

func (b *base) roundTrip(ctx context.Context, method, path string, payload []byte, header http.Header) (response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return response{}, fmt.Errorf("failed to build %s request: %w", b.name, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	res, err := b.http.Do(req)
	if err != nil {
		return response{}, fmt.Errorf("%w: %s request failed: %v", models.ErrUnavailable, b.name, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	if err != nil {
		return response{}, fmt.Errorf("%w: failed to read %s response: %v", models.ErrUnavailable, b.name, err)
	}

	if res.StatusCode >= http.StatusBadRequest {
		return response{}, b.decodeError(res.StatusCode, data)
	}
	return response{status: res.StatusCode, header: res.Header, body: data}, nil
}

// decodeError maps an error response back to its error kind
func (b *base) decodeError(status int, data []byte) error {
	var body errorBody
	_ = json.Unmarshal(data, &body)

	msg := body.Error
	if msg == "" {
		msg = strings.TrimSpace(string(data))
	}

	kind := models.KindForCode(body.Code)
	if kind == nil {
		switch {
		case status == http.StatusNotFound:
			kind = models.ErrNotFound
		case status < http.StatusInternalServerError:
			kind = models.ErrInvalidInput
		default:
			kind = models.ErrUnavailable
		}
	}
	return fmt.Errorf("%w: %s responded %d: %s", kind, b.name, status, msg)
}
