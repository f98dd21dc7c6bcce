package observability

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Enabled           bool
	TracesEnabled     bool
	MetricsEnabled    bool
	ServiceName       string
	ServiceVersion    string
	Environment       string
	OTLPEndpoint      string
	TraceSamplingRate float64
}

// ResolveConfig builds the observability config from QUERYGATE_OTEL_*
// environment variables. environment is the resolved deployment
// environment of the service.
func ResolveConfig(environment string) Config {
	cfg := Config{
		Enabled:           false,
		TracesEnabled:     true,
		MetricsEnabled:    true,
		ServiceName:       "querygate",
		ServiceVersion:    "dev",
		Environment:       "development",
		OTLPEndpoint:      "localhost:4317",
		TraceSamplingRate: 1.0,
	}
	if environment != "" {
		cfg.Environment = environment
	}

	overrideBool("QUERYGATE_OTEL_ENABLED", &cfg.Enabled)
	overrideBool("QUERYGATE_OTEL_TRACES_ENABLED", &cfg.TracesEnabled)
	overrideBool("QUERYGATE_OTEL_METRICS_ENABLED", &cfg.MetricsEnabled)
	overrideString("QUERYGATE_OTEL_SERVICE_NAME", &cfg.ServiceName)
	overrideString("QUERYGATE_OTEL_SERVICE_VERSION", &cfg.ServiceVersion)
	overrideString("QUERYGATE_OTEL_ENDPOINT", &cfg.OTLPEndpoint)
	overrideFloat("QUERYGATE_OTEL_TRACE_SAMPLING_RATIO", &cfg.TraceSamplingRate)

	cfg.OTLPEndpoint = strings.TrimPrefix(strings.TrimPrefix(cfg.OTLPEndpoint, "http://"), "https://")

	if cfg.TraceSamplingRate < 0 {
		cfg.TraceSamplingRate = 0
	}
	if cfg.TraceSamplingRate > 1 {
		cfg.TraceSamplingRate = 1
	}

	return cfg
}

func overrideString(name string, target *string) {
	if value := os.Getenv(name); value != "" {
		*target = value
	}
}

func overrideBool(name string, target *bool) {
	value := os.Getenv(name)
	if value == "" {
		return
	}
	parsed, err := strconv.ParseBool(value)
	if err == nil {
		*target = parsed
	}
}

func overrideFloat(name string, target *float64) {
	value := os.Getenv(name)
	if value == "" {
		return
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err == nil {
		*target = parsed
	}
}
