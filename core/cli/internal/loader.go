package internal

import (
	"os"
	"strconv"

	"github.com/hyperterse/querygate/core/domain"
	"github.com/hyperterse/querygate/core/infrastructure/logging"
	"github.com/hyperterse/querygate/core/parser"
)

// DefaultConfigFile is read when no --file flag is given
const DefaultConfigFile = "querygate.yaml"

// EnvironmentVariable selects the environment when neither the flag nor the
// config file does
const EnvironmentVariable = "QUERYGATE_ENV"

// LoadConfig reads, substitutes and validates a configuration file
func LoadConfig(filePath string) (*domain.Config, error) {
	if filePath == "" {
		filePath = DefaultConfigFile
	}

	cfg, err := parser.ParseConfigFile(filePath)
	if err != nil {
		return nil, logging.WithTag("config", err)
	}
	if err := parser.ValidateConfig(cfg); err != nil {
		return nil, logging.WithTag("config", err)
	}
	return cfg, nil
}

// ResolvePort resolves the port from CLI flag, config file, env var, or default
func ResolvePort(cliPort string, cfg *domain.Config) string {
	if cliPort != "" {
		return cliPort
	}
	if cfg != nil && cfg.Server.Port != "" {
		return cfg.Server.Port
	}
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8080"
}

// ResolveGRPCPort resolves the gRPC port from CLI flag, config file or env
// var. An empty result disables the gRPC listener.
func ResolveGRPCPort(cliPort string, cfg *domain.Config) string {
	if cliPort != "" {
		return cliPort
	}
	if cfg != nil && cfg.Server.GRPCPort != "" {
		return cfg.Server.GRPCPort
	}
	return os.Getenv("GRPC_PORT")
}

// ResolveLogLevel resolves the log level from verbose flag, CLI flag, config
// file, env var, or default
func ResolveLogLevel(verbose bool, cliLogLevel int, cfg *domain.Config) int {
	if verbose {
		return logging.LogLevelDebug
	}
	if cliLogLevel > 0 {
		return cliLogLevel
	}
	if cfg != nil && cfg.Server.LogLevel > 0 {
		return cfg.Server.LogLevel
	}
	if level, err := strconv.Atoi(os.Getenv("QUERYGATE_LOG_LEVEL")); err == nil && level > 0 {
		return level
	}
	return logging.LogLevelInfo
}

// ResolveEnvironment resolves the environment from CLI flag, config file,
// env var, or default
func ResolveEnvironment(cliEnv string, cfg *domain.Config) string {
	if cliEnv != "" {
		return cliEnv
	}
	if cfg != nil && cfg.Environment != "" {
		return cfg.Environment
	}
	if env := os.Getenv(EnvironmentVariable); env != "" {
		return env
	}
	return "development"
}
