package httpclient

import (
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

// Request builds and executes one HTTP request.
type Request interface {
	Get(ctx context.Context, url string) (*Response, error)
	Post(ctx context.Context, url string) (*Response, error)

	SetHeader(key, value string) Request
	SetBasicAuth(username, password string) Request
	SetQueryParam(key, value string) Request
	SetQueryParams(params map[string]string) Request
	SetFormData(data map[string]string) Request
	SetResult(result any) Request
}

// Response wraps http.Response with a pre-read body.
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

// IsError reports whether the status code is >= 400.
func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}

type requestBuilder struct {
	client         *http.Client
	requestCounter metric.Int64Counter
	providerName   string
	tracer         trace.Tracer
	baseURL        string
	headers        map[string]string
	queryParams    url.Values
	formData       url.Values
	basicUser      string
	basicPass      string
	hasBasicAuth   bool
	result         any
	errorHandler   ResponseErrorHandler
	labels         []Label
}

func (r *requestBuilder) Get(ctx context.Context, url string) (*Response, error) {
	return r.execute(ctx, http.MethodGet, url)
}

func (r *requestBuilder) Post(ctx context.Context, url string) (*Response, error) {
	return r.execute(ctx, http.MethodPost, url)
}

func (r *requestBuilder) SetHeader(key, value string) Request {
	if r.headers == nil {
		r.headers = make(map[string]string)
	}
	r.headers[key] = value
	return r
}

func (r *requestBuilder) SetBasicAuth(username, password string) Request {
	r.basicUser, r.basicPass = username, password
	r.hasBasicAuth = true
	return r
}

func (r *requestBuilder) SetQueryParam(key, value string) Request {
	if r.queryParams == nil {
		r.queryParams = make(url.Values)
	}
	r.queryParams.Set(key, value)
	return r
}

func (r *requestBuilder) SetQueryParams(params map[string]string) Request {
	for k, v := range params {
		r.SetQueryParam(k, v)
	}
	return r
}

// SetFormData sets an application/x-www-form-urlencoded request body.
func (r *requestBuilder) SetFormData(data map[string]string) Request {
	r.formData = make(url.Values, len(data))
	for k, v := range data {
		r.formData.Set(k, v)
	}
	return r
}

// SetResult sets the struct the response JSON is unmarshaled into.
func (r *requestBuilder) SetResult(result any) Request {
	r.result = result
	return r
}

func (r *requestBuilder) execute(ctx context.Context, method, rawURL string) (*Response, error) {
	ctx, span := r.tracer.Start(ctx, "http.request",
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", rawURL),
			attribute.String("provider", r.providerName),
		),
	)
	defer span.End()

	fullURL := rawURL
	if r.baseURL != "" && !strings.HasPrefix(rawURL, "http") {
		fullURL = strings.TrimSuffix(r.baseURL, "/") + "/" + strings.TrimPrefix(rawURL, "/")
	}

	if len(r.queryParams) > 0 {
		separator := "?"
		if strings.Contains(fullURL, "?") {
			separator = "&"
		}
		fullURL += separator + r.queryParams.Encode()
	}

	var bodyReader io.Reader
	if len(r.formData) > 0 {
		bodyReader = strings.NewReader(r.formData.Encode())
		r.SetHeader("Content-Type", "application/x-www-form-urlencoded")
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create request")
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if r.hasBasicAuth {
		req.SetBasicAuth(r.basicUser, r.basicPass)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.recordError(ctx, span, err)
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read body")
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	response := &Response{Response: resp, body: body}

	if resp.StatusCode >= 400 {
		span.SetAttributes(
			attribute.Int("http.status_code", resp.StatusCode),
			attribute.String("http.error.status", resp.Status),
		)
	}

	if r.errorHandler != nil {
		if handlerErr := r.errorHandler(resp.StatusCode, body); handlerErr != nil {
			r.recordMetrics(ctx, false)
			span.SetStatus(codes.Error, handlerErr.Error())
			return response, handlerErr
		}
	}

	if r.result != nil && len(body) > 0 && !response.IsError() {
		if err := json.Unmarshal(body, r.result); err != nil {
			span.RecordError(err)
			r.recordMetrics(ctx, false)
			return response, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	r.recordMetrics(ctx, !response.IsError())

	return response, nil
}

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
