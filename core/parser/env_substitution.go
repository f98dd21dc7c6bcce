package parser

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/hyperterse/querygate/core/domain"
)

var (
	// Environment variable pattern: {{ env.VARIABLE_NAME }}
	envVarPattern = regexp.MustCompile(`\{\{\s*env\.(\w+)\s*\}\}`)
)

// SubstituteEnvVars replaces {{ env.VARIABLE_NAME }} placeholders with environment variable values
func SubstituteEnvVars(value string) (string, error) {
	result := value
	matches := envVarPattern.FindAllStringSubmatch(value, -1)
	seen := make(map[string]bool)

	for _, match := range matches {
		if len(match) < 2 {
			continue
		}
		envVarName := match[1]
		placeholder := match[0]

		// Avoid processing the same placeholder multiple times
		if seen[placeholder] {
			continue
		}
		seen[placeholder] = true

		envValue, exists := os.LookupEnv(envVarName)
		if !exists {
			return "", fmt.Errorf("environment variable '%s' not found (required at server startup)", envVarName)
		}

		result = strings.ReplaceAll(result, placeholder, envValue)
	}

	return result, nil
}

// SubstituteEnvVarsInConfig performs environment variable substitution on
// every string setting of the config. Inline query definitions are handled
// by SubstituteEnvVarsInDocument.
func SubstituteEnvVarsInConfig(cfg *domain.Config) error {
	fields := []struct {
		name  string
		value *string
	}{
		{"environment", &cfg.Environment},
		{"server.port", &cfg.Server.Port},
		{"server.grpc_port", &cfg.Server.GRPCPort},
		{"adapter.connection_string", &cfg.Adapter.ConnectionString},
		{"auth.secret", &cfg.Auth.Secret},
		{"auth.issuer", &cfg.Auth.Issuer},
		{"registry.file", &cfg.Registry.File},
	}

	for _, field := range fields {
		substituted, err := SubstituteEnvVars(*field.value)
		if err != nil {
			return fmt.Errorf("configuration error at server startup: failed to substitute environment variables in %s: %w", field.name, err)
		}
		*field.value = substituted
	}

	connector, err := SubstituteEnvVars(string(cfg.Adapter.Connector))
	if err != nil {
		return fmt.Errorf("configuration error at server startup: failed to substitute environment variables in adapter.connector: %w", err)
	}
	cfg.Adapter.Connector = domain.Connector(strings.ToLower(connector))

	for key, value := range cfg.Adapter.Options {
		substituted, err := SubstituteEnvVars(value)
		if err != nil {
			return fmt.Errorf("configuration error at server startup: failed to substitute environment variables in option '%s': %w", key, err)
		}
		cfg.Adapter.Options[key] = substituted
	}

	for i, doc := range cfg.Queries {
		substituted, err := SubstituteEnvVarsInDocument(doc)
		if err != nil {
			return fmt.Errorf("configuration error at server startup: queries[%d]: %w", i, err)
		}
		cfg.Queries[i] = substituted
	}

	return nil
}

// SubstituteEnvVarsInDocument substitutes placeholders in every string
// value of a query definition, at any depth
func SubstituteEnvVarsInDocument(doc domain.Document) (domain.Document, error) {
	out, err := substituteValue(doc)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, nil
	}
	return out.(map[string]any), nil
}

func substituteValue(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return SubstituteEnvVars(v)
	case map[string]any:
		if v == nil {
			return nil, nil
		}
		out := make(map[string]any, len(v))
		for key, item := range v {
			substituted, err := substituteValue(item)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			out[key] = substituted
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			substituted, err := substituteValue(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = substituted
		}
		return out, nil
	default:
		return v, nil
	}
}
