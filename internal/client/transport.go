// Package client talks to the analytics backend over HTTP. It maps wire failures onto the
// application error catalogue and never touches session state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/elearning-analytics-console/pkg/config"
	appErrors "github.com/noah-isme/elearning-analytics-console/pkg/errors"
	"github.com/noah-isme/elearning-analytics-console/pkg/middleware/requestid"
)

const maxErrorBody = 64 << 10

// Observer receives backend call latency. *service.MetricsService implements it.
type Observer interface {
	ObserveBackendRequest(operation string, status int, duration time.Duration)
}

// TokenSource exposes the current bearer token without granting write access.
type TokenSource interface {
	Token() string
}

// Transport is the shared HTTP plumbing of the auth and data clients.
type Transport struct {
	baseURL  string
	http     *http.Client
	logger   *zap.Logger
	observer Observer
}

// NewTransport builds a transport for the configured backend.
func NewTransport(cfg config.BackendConfig, logger *zap.Logger, observer Observer) *Transport {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Transport{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
		observer: observer,
	}
}

// WithHTTPClient swaps the underlying client, mainly for tests.
func (t *Transport) WithHTTPClient(c *http.Client) *Transport {
	if c != nil {
		t.http = c
	}
	return t
}

// BaseURL returns the backend root.
func (t *Transport) BaseURL() string {
	return t.baseURL
}

type call struct {
	operation string
	method    string
	path      string
	query     url.Values
	token     string
	body      interface{}
	out       interface{}
}

func (t *Transport) do(ctx context.Context, c call) error {
	target := t.baseURL + c.path
	if len(c.query) > 0 {
		target += "?" + c.query.Encode()
	}

	var payload io.Reader
	if c.body != nil {
		raw, err := json.Marshal(c.body)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode request")
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, c.method, target, payload)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")
	if c.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.HeaderKey, id)
	}

	start := time.Now()
	resp, err := t.http.Do(req)
	if err != nil {
		t.observe(c.operation, 0, start)
		t.logger.Debug("backend request failed", zap.String("operation", c.operation), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, appErrors.ErrTransport.Message)
	}
	defer resp.Body.Close() //nolint:errcheck
	t.observe(c.operation, resp.StatusCode, start)
	t.logger.Debug("backend request",
		zap.String("operation", c.operation),
		zap.String("method", c.method),
		zap.String("path", c.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if c.out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(c.out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, "invalid response from the analytics backend")
	}
	return nil
}

func (t *Transport) observe(operation string, status int, start time.Time) {
	if t.observer != nil {
		t.observer.ObserveBackendRequest(operation, status, time.Since(start))
	}
}

// statusError maps a non-2xx backend response onto the error catalogue.
func statusError(resp *http.Response) error {
	message := serverMessage(resp.Body)
	cause := fmt.Errorf("backend responded %d", resp.StatusCode)
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return appErrors.Wrap(cause, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, orDefault(message, appErrors.ErrUnauthorized.Message))
	case resp.StatusCode == http.StatusForbidden:
		return appErrors.Wrap(cause, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, orDefault(message, appErrors.ErrForbidden.Message))
	case resp.StatusCode == http.StatusNotFound:
		return appErrors.Wrap(cause, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, orDefault(message, appErrors.ErrNotFound.Message))
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return appErrors.Wrap(cause, appErrors.ErrValidation.Code, resp.StatusCode, orDefault(message, appErrors.ErrValidation.Message))
	default:
		return appErrors.Wrap(cause, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, orDefault(message, appErrors.ErrTransport.Message))
	}
}

// serverMessage extracts the human message of an error body: {"error"}, {"message"} or {"msg"}.
func serverMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var envelope struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
		Msg     string          `json:"msg"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return ""
	}
	if len(envelope.Error) > 0 {
		var text string
		if json.Unmarshal(envelope.Error, &text) == nil && text != "" {
			return text
		}
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(envelope.Error, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	return envelope.Msg
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
