package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Request is the interface for building and executing HTTP requests.
type Request interface {
	Get(ctx context.Context, path string) (*Response, error)
	Post(ctx context.Context, path string) (*Response, error)

	SetBody(body any) Request
	SetHeader(key, value string) Request
	SetQueryParam(key, value string) Request
	SetResult(result any) Request
}

// Response wraps http.Response with the buffered body.
type Response struct {
	*http.Response
	body []byte
}

// Body returns the response body as bytes.
func (r *Response) Body() []byte {
	return r.body
}

// String returns the response body as string.
func (r *Response) String() string {
	return string(r.body)
}

// IsError returns true if the status code indicates an error (>= 400).
func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}

// requestBuilder implements Request.
type requestBuilder struct {
	client           *http.Client
	requestCounter   metric.Int64Counter
	providerName     string
	tracer           trace.Tracer
	baseURL          string
	headers          map[string]string
	query            url.Values
	body             any
	result           any
	errorHandler     ResponseErrorHandler
	labels           []*Label
	excludeHeaders   []string
	enableLogHeaders bool
	logRequest       bool
	logResponse      bool
}

// Get executes a GET request.
func (r *requestBuilder) Get(ctx context.Context, path string) (*Response, error) {
	return r.execute(ctx, http.MethodGet, path)
}

// Post executes a POST request.
func (r *requestBuilder) Post(ctx context.Context, path string) (*Response, error) {
	return r.execute(ctx, http.MethodPost, path)
}

// SetBody sets the request body. Values other than []byte, string and
// io.Reader are JSON encoded.
func (r *requestBuilder) SetBody(body any) Request {
	r.body = body
	return r
}

// SetHeader sets a single header.
func (r *requestBuilder) SetHeader(key, value string) Request {
	r.headers[key] = value
	return r
}

// SetQueryParam sets a single query parameter.
func (r *requestBuilder) SetQueryParam(key, value string) Request {
	if r.query == nil {
		r.query = url.Values{}
	}
	r.query.Set(key, value)
	return r
}

// SetResult sets the destination for JSON decoding of a successful body.
func (r *requestBuilder) SetResult(result any) Request {
	r.result = result
	return r
}

func (r *requestBuilder) buildURL(path string) string {
	full := path
	if r.baseURL != "" && !strings.HasPrefix(path, "http") {
		full = strings.TrimSuffix(r.baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
	}
	if len(r.query) > 0 {
		sep := "?"
		if strings.Contains(full, "?") {
			sep = "&"
		}
		full += sep + r.query.Encode()
	}
	return full
}

func (r *requestBuilder) bodyReader() (io.Reader, error) {
	switch b := r.body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(b), nil
	case string:
		return strings.NewReader(b), nil
	case io.Reader:
		return b, nil
	default:
		encoded, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		if _, ok := r.headers["Content-Type"]; !ok {
			r.headers["Content-Type"] = "application/json"
		}
		return bytes.NewReader(encoded), nil
	}
}

// execute performs the HTTP request with instrumentation.
func (r *requestBuilder) execute(ctx context.Context, method, path string) (*Response, error) {
	fullURL := r.buildURL(path)

	ctx, span := r.tracer.Start(ctx, "http.request",
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", fullURL),
			attribute.String("provider", r.providerName),
		),
	)
	defer span.End()

	body, err := r.bodyReader()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to marshal body")
		return nil, err
	}
	if r.logRequest {
		if s, ok := r.body.(string); ok {
			span.AddEvent("request.body", trace.WithAttributes(attribute.String("http.request_body", s)))
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create request")
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	if r.enableLogHeaders {
		r.logHeaders(span, req.Header)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.recordError(ctx, span, err)
		return nil, err
	}

	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		r.recordError(ctx, span, err)
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if r.logResponse {
		span.AddEvent("response.body", trace.WithAttributes(
			attribute.String("http.response_body", string(raw)),
		))
	}

	response := &Response{Response: resp, body: raw}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if r.errorHandler != nil {
		if handlerErr := r.errorHandler(resp.StatusCode, raw); handlerErr != nil {
			r.recordMetrics(ctx, false)
			span.SetStatus(codes.Error, handlerErr.Error())
			return response, handlerErr
		}
	}

	if r.result != nil && !response.IsError() && len(raw) > 0 {
		if err := json.Unmarshal(raw, r.result); err != nil {
			r.recordError(ctx, span, err)
			return response, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	r.recordMetrics(ctx, !response.IsError())

	return response, nil
}

// recordError logs network errors to the span.
func (r *requestBuilder) recordError(ctx context.Context, span trace.Span, err error) {
	span.RecordError(err)

	var netErr net.Error
	if errors.Is(err, context.Canceled) {
		span.SetAttributes(attribute.Bool("context.cancelled", true))
	}
	if errors.As(err, &netErr) && netErr.Timeout() {
		span.SetAttributes(attribute.Bool("request.timeout", true))
	}

	span.SetStatus(codes.Error, err.Error())
	r.recordMetrics(ctx, false)
}

// recordMetrics increments the request counter.
func (r *requestBuilder) recordMetrics(ctx context.Context, success bool) {
	attrs := []attribute.KeyValue{
		attribute.String("provider", r.providerName),
		attribute.Bool("success", success),
	}

	for _, label := range r.labels {
		attrs = append(attrs, attribute.String(label.Key, label.Value))
	}

	r.requestCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// logHeaders adds request headers to the trace span.
func (r *requestBuilder) logHeaders(span trace.Span, headers http.Header) {
	excluded := make(map[string]bool, len(r.excludeHeaders))
	for _, h := range r.excludeHeaders {
		excluded[strings.ToLower(h)] = true
	}

	attrs := make([]attribute.KeyValue, 0, len(headers))
	for k, values := range headers {
		key := strings.ToLower(k)
		val := ""
		if len(values) > 0 {
			val = values[0]
		}
		if excluded[key] {
			val = "*****"
		}
		attrs = append(attrs, attribute.String("http.request.header."+key, val))
	}

	if len(attrs) > 0 {
		span.AddEvent("request.headers", trace.WithAttributes(attrs...))
	}
}
