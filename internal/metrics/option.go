package metrics

// Provider identifies a metrics backend.
type Provider string

const (
	PrometheusProvider Provider = "prometheus"
	OTLPCollector      Provider = "otlp"
)

// Config holds meter provider configuration.
type Config struct {
	ServiceName string
	Providers   []ProviderCfg
}

// ProviderCfg configures one metrics backend.
type ProviderCfg struct {
	Provider Provider
	Endpoint string
	Headers  map[string]string
	Insecure bool
}

// OptionFn mutates the metrics Config.
type OptionFn func(config Config) Config

// WithServiceName sets the service name attached to all metrics.
func WithServiceName(serviceName string) OptionFn {
	return func(config Config) Config {
		config.ServiceName = serviceName
		return config
	}
}

// WithProviderConfig registers a metrics backend.
func WithProviderConfig(provider ProviderCfg) OptionFn {
	return func(config Config) Config {
		config.Providers = append(config.Providers, provider)
		return config
	}
}

// NewPrometheusConfig returns the config for the in-process Prometheus reader.
func NewPrometheusConfig() ProviderCfg {
	return ProviderCfg{Provider: PrometheusProvider}
}

// NewOTLPConfig returns the config for an OTLP gRPC collector.
func NewOTLPConfig(endpoint string, headers map[string]string, insecure bool) ProviderCfg {
	return ProviderCfg{
		Provider: OTLPCollector,
		Endpoint: endpoint,
		Headers:  headers,
		Insecure: insecure,
	}
}
