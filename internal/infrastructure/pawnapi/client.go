// Package pawnapi is the console's only way to talk to the pawn-api backend.
// Every call carries the browser's bearer token and selected company, and
// every failure comes back as one of APIError, NetworkError or
// ErrSessionExpired.
package pawnapi

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

	"github.com/pawnfin/console/internal/domain/session"
	"github.com/pawnfin/console/internal/infrastructure/logger"
	"github.com/pawnfin/console/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Header names the client fills in from the session.
const (
	HeaderAuthorization = "Authorization"
	HeaderCompanyID     = "x-company-id"
	HeaderContentType   = "Content-Type"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:4000"

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client // overrides Timeout when set
	Meter      metric.Meter // defaults to the global meter provider
}

// RequestOptions describes one call. Body is already-serialized JSON (or a
// multipart payload whose Content-Type the caller supplies); the client never
// marshals it.
type RequestOptions struct {
	Method    string
	Body      []byte
	Headers   http.Header
	Multipart bool
}

// Client calls the pawn-api on behalf of a browser session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	requests   *telemetry.Counter
	latency    *telemetry.Histogram
}

// New creates a Client.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	meter := opts.Meter
	if meter == nil {
		meter = otel.GetMeterProvider().Meter("pawnapi")
	}
	requests, err := telemetry.NewCounter(meter, "pawnapi_requests_total", "Calls made to the pawn-api", "{request}")
	if err != nil {
		return nil, err
	}
	latency, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "pawnapi_request_duration_seconds",
		Description: "Latency of pawn-api calls",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		requests:   requests,
		latency:    latency,
	}, nil
}

// BaseURL returns the normalized base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL joins path to the base URL, dropping any leading slashes from path.
func (c *Client) URL(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// Request performs a call and returns the decoded body: nil for 204 or an
// empty body, the parsed JSON value, or the raw text when the body is not JSON.
func (c *Client) Request(ctx context.Context, sess *session.Handle, path string, opts RequestOptions) (any, error) {
	body, err := c.send(ctx, sess, path, opts)
	if err != nil || len(body) == 0 {
		return nil, err
	}
	var v any
	if json.Unmarshal(body, &v) != nil {
		return string(body), nil
	}
	return v, nil
}

// Do performs a call and decodes a JSON reply into out. out is left untouched
// for empty replies. A non-JSON reply is stored only when out is a *string
// and is otherwise ignored, since the call itself succeeded.
func (c *Client) Do(ctx context.Context, sess *session.Handle, path string, opts RequestOptions, out any) error {
	body, err := c.send(ctx, sess, path, opts)
	if err != nil || len(body) == 0 || out == nil {
		return err
	}
	if !json.Valid(body) {
		if s, ok := out.(*string); ok {
			*s = string(body)
		}
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode pawn-api %s: %w", path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, sess *session.Handle, path string, opts RequestOptions) ([]byte, error) {
	method := strings.ToUpper(opts.Method)
	if method == "" {
		method = http.MethodGet
	}
	endpoint := endpointOf(path)

	ctx, span := telemetry.StartSpan(ctx, "pawnapi "+method+" "+endpoint, trace.SpanKindClient,
		telemetry.AttrHTTPMethod.String(method),
		telemetry.AttrEndpoint.String(endpoint),
	)
	defer span.End()

	var reader io.Reader
	if opts.Body != nil {
		reader = bytes.NewReader(opts.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), reader)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("build pawn-api request: %w", err)
	}
	for k, vs := range opts.Headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if method != http.MethodGet && method != http.MethodHead && opts.Body != nil &&
		!opts.Multipart && req.Header.Get(HeaderContentType) == "" {
		req.Header.Set(HeaderContentType, "application/json")
	}
	injectSession(req.Header, sess)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	log := logger.L(ctx).With(zap.String("method", method), zap.String("endpoint", endpoint))
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.observe(ctx, method, endpoint, 0, "network_error", elapsed)
		telemetry.RecordError(span, err)
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, ctxErr
		}
		log.Warn("pawn-api unreachable", zap.Error(err), zap.Duration("latency", elapsed))
		return nil, &NetworkError{Cause: err}
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	span.SetAttributes(telemetry.AttrHTTPStatusCode.Int(resp.StatusCode))
	log = log.With(zap.Int("status", resp.StatusCode), zap.Duration("latency", elapsed))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.observe(ctx, method, endpoint, resp.StatusCode, "unauthorized", elapsed)
		log.Info("pawn-api rejected the session token")
		if sess != nil {
			if err := sess.Clear(ctx); err != nil {
				log.Error("Failed to clear expired session", zap.Error(err))
			}
		}
		telemetry.RecordError(span, ErrSessionExpired)
		return nil, ErrSessionExpired

	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.observe(ctx, method, endpoint, resp.StatusCode, "api_error", elapsed)
		apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(resp, body, readErr)}
		log.Warn("pawn-api call failed", zap.String("message", apiErr.Message))
		telemetry.RecordError(span, apiErr)
		return nil, apiErr
	}

	c.observe(ctx, method, endpoint, resp.StatusCode, "ok", elapsed)
	if readErr != nil {
		telemetry.RecordError(span, readErr)
		return nil, &NetworkError{Cause: readErr}
	}
	log.Debug("pawn-api call")
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	return body, nil
}

// injectSession adds the bearer token and company header unless the caller
// already set them.
func injectSession(h http.Header, sess *session.Handle) {
	if sess == nil {
		return
	}
	if tok := sess.Token(); tok != "" && h.Get(HeaderAuthorization) == "" {
		h.Set(HeaderAuthorization, "Bearer "+tok)
	}
	if id := sess.CompanyID(); id != "" && h.Get(HeaderCompanyID) == "" {
		h.Set(HeaderCompanyID, id)
	}
}

// errorMessage picks the text shown to the user for a failed call:
// message, then detail, then the JSON itself for JSON replies; the raw text
// otherwise; a generic status line when nothing usable came back.
func errorMessage(resp *http.Response, body []byte, readErr error) string {
	fallback := fmt.Sprintf("Request failed with status %d", resp.StatusCode)
	if readErr != nil {
		return fallback
	}
	if !strings.Contains(resp.Header.Get(HeaderContentType), "application/json") {
		if len(body) == 0 {
			return fallback
		}
		return string(body)
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return fallback
	}
	if obj, ok := v.(map[string]any); ok {
		for _, key := range []string{"message", "detail"} {
			if msg := truthyText(obj[key]); msg != "" {
				return msg
			}
		}
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, body); err != nil {
		return fallback
	}
	return compact.String()
}

// truthyText renders a non-empty JSON value as text. Strings are used as is,
// other non-zero values as their JSON encoding.
func truthyText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if !t {
			return ""
		}
	case float64:
		if t == 0 {
			return ""
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// endpointOf is the first path segment, used as a low-cardinality label.
func endpointOf(path string) string {
	path = strings.TrimLeft(path, "/")
	if i := strings.IndexAny(path, "/?"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	return path
}

func (c *Client) observe(ctx context.Context, method, endpoint string, status int, outcome string, elapsed time.Duration) {
	attrs := []attribute.KeyValue{
		telemetry.AttrHTTPMethod.String(method),
		telemetry.AttrEndpoint.String(endpoint),
		telemetry.AttrHTTPStatusCode.Int(status),
		telemetry.AttrOutcome.String(outcome),
	}
	c.requests.Inc(ctx, attrs...)
	c.latency.RecordDuration(ctx, elapsed, attrs...)
}

func jsonBody(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode pawn-api request: %w", err)
	}
	return b, nil
}
