// Package httpclient provides an instrumented HTTP client with OTEL tracing
// and metrics.
package httpclient

import (
	"context"
	"net"
	"net/http"
	"net/http/httptrace"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/httptrace/otelhttptrace"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultDialKeepAlive         = 10 * time.Second
	defaultRequestTimeout        = 10 * time.Second
	defaultMaxConnsPerHost       = 5
	defaultIdleConnTimeout       = 2 * time.Minute
	defaultExpectContinueTimeout = 100 * time.Millisecond

	metricRequestCounter = "http_client_requests_total"
)

// Client builds and executes instrumented HTTP requests.
type Client interface {
	// NewRequest creates a request builder with default options.
	NewRequest() Request
	// NewRequestWithOptions creates a request builder with custom options.
	NewRequestWithOptions(opts ...RequestOption) Request
}

// InstrumentedClient wraps http.Client with OTEL instrumentation.
type InstrumentedClient struct {
	client         *http.Client
	requestCounter metric.Int64Counter
	providerName   string
	tracer         trace.Tracer
	baseURL        string
	defaultHeaders map[string]string
}

// ClientOptions holds configuration for the instrumented HTTP client.
type ClientOptions struct {
	meterProvider  metric.MeterProvider
	providerName   string
	requestTimeout time.Duration
	headers        map[string]string
	baseURL        string
}

// ClientOption configures ClientOptions.
type ClientOption func(*ClientOptions)

// WithMeterProvider sets the OTEL meter provider.
func WithMeterProvider(mp metric.MeterProvider) ClientOption {
	return func(o *ClientOptions) { o.meterProvider = mp }
}

// WithProviderName tags metrics and spans with the upstream provider name.
func WithProviderName(name string) ClientOption {
	return func(o *ClientOptions) { o.providerName = name }
}

// WithRequestTimeout sets the request timeout.
func WithRequestTimeout(timeout time.Duration) ClientOption {
	return func(o *ClientOptions) { o.requestTimeout = timeout }
}

// WithHeaders sets default headers for all requests.
func WithHeaders(headers map[string]string) ClientOption {
	return func(o *ClientOptions) { o.headers = headers }
}

// WithBaseURL sets the base URL prepended to relative request paths.
func WithBaseURL(url string) ClientOption {
	return func(o *ClientOptions) { o.baseURL = url }
}

// NewInstrumentedClient creates a new instrumented HTTP client.
func NewInstrumentedClient(opts ...ClientOption) (Client, error) {
	options := &ClientOptions{}
	for _, o := range opts {
		o(options)
	}

	timeout := options.requestTimeout
	if timeout == 0 {
		timeout = defaultRequestTimeout
	}

	transport := otelhttp.NewTransport(
		&http.Transport{
			DialContext: (&net.Dialer{
				KeepAlive: defaultDialKeepAlive,
			}).DialContext,
			MaxConnsPerHost:       defaultMaxConnsPerHost,
			IdleConnTimeout:       defaultIdleConnTimeout,
			ExpectContinueTimeout: defaultExpectContinueTimeout,
		},
		otelhttp.WithClientTrace(func(ctx context.Context) *httptrace.ClientTrace {
			return otelhttptrace.NewClientTrace(ctx)
		}),
	)

	providerName := options.providerName
	if providerName == "" {
		providerName = "default"
	}

	meterProvider := options.meterProvider
	if meterProvider == nil {
		meterProvider = otel.GetMeterProvider()
	}

	meter := meterProvider.Meter(
		"instrumented_http_client",
		metric.WithInstrumentationAttributes(attribute.String("provider", providerName)),
	)

	requestCounter, err := meter.Int64Counter(
		metricRequestCounter,
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	return &InstrumentedClient{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		requestCounter: requestCounter,
		providerName:   providerName,
		tracer:         otel.GetTracerProvider().Tracer("instrumented_http_client"),
		baseURL:        options.baseURL,
		defaultHeaders: options.headers,
	}, nil
}

// NewRequest creates a request builder with default options.
func (c *InstrumentedClient) NewRequest() Request {
	return c.NewRequestWithOptions()
}

// NewRequestWithOptions creates a request builder with custom options.
func (c *InstrumentedClient) NewRequestWithOptions(opts ...RequestOption) Request {
	reqOpts := &RequestOptions{}
	for _, o := range opts {
		o(reqOpts)
	}

	return &requestBuilder{
		client:         c.client,
		requestCounter: c.requestCounter,
		providerName:   c.providerName,
		tracer:         c.tracer,
		baseURL:        c.baseURL,
		headers:        copyHeaders(c.defaultHeaders),
		errorHandler:   reqOpts.responseErrorHandler,
		labels:         reqOpts.labels,
	}
}

// RequestOptions holds per-request configuration.
type RequestOptions struct {
	responseErrorHandler ResponseErrorHandler
	labels               []Label
}

// RequestOption configures a single request.
type RequestOption func(*RequestOptions)

// ResponseErrorHandler determines whether a response is an error.
type ResponseErrorHandler func(statusCode int, body []byte) error

// WithResponseErrorHandler sets a custom error handler for responses.
func WithResponseErrorHandler(handler ResponseErrorHandler) RequestOption {
	return func(o *RequestOptions) { o.responseErrorHandler = handler }
}

// Label is a key-value pair attached to request metrics.
type Label struct {
	Key   string
	Value string
}

// WithLabels sets metric labels for the request.
func WithLabels(labels ...Label) RequestOption {
	return func(o *RequestOptions) { o.labels = labels }
}

func copyHeaders(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
