package domain

import "strings"

// Connector identifies the database driver backing the query executor
type Connector string

const (
	ConnectorPostgres Connector = "postgres"
	ConnectorMySQL    Connector = "mysql"
	ConnectorSQLite   Connector = "sqlite"
	ConnectorMongoDB  Connector = "mongodb"
	ConnectorRedis    Connector = "redis"
)

// ValidConnectors returns the supported connector names
func ValidConnectors() []string {
	return []string{
		string(ConnectorPostgres),
		string(ConnectorMySQL),
		string(ConnectorSQLite),
		string(ConnectorMongoDB),
		string(ConnectorRedis),
	}
}

// EnvironmentProduction suppresses failure details in responses
const EnvironmentProduction = "production"

// Config is the service configuration loaded from the config file
type Config struct {
	Name        string         `yaml:"name" validate:"required,lowercase"`
	Environment string         `yaml:"environment"`
	Server      ServerConfig   `yaml:"server"`
	Adapter     AdapterConfig  `yaml:"adapter"`
	Auth        AuthConfig     `yaml:"auth"`
	Registry    RegistryConfig `yaml:"registry"`

	// Queries holds inline definitions; they are merged with the registry
	// file, if any.
	Queries []Document `yaml:"queries"`

	// Dir is the directory of the config file, used to resolve relative paths
	Dir string `yaml:"-"`
}

// IsProduction reports whether failure details must be withheld
func (c *Config) IsProduction() bool {
	return c != nil && strings.EqualFold(strings.TrimSpace(c.Environment), EnvironmentProduction)
}

// ServerConfig holds listener settings
type ServerConfig struct {
	Port     string `yaml:"port" validate:"omitempty,numeric"`
	GRPCPort string `yaml:"grpc_port" validate:"omitempty,numeric"`
	LogLevel int    `yaml:"log_level" validate:"omitempty,min=1,max=4"`
}

// AdapterConfig describes the database the executor talks to
type AdapterConfig struct {
	Connector        Connector         `yaml:"connector" validate:"required,oneof=postgres mysql sqlite mongodb redis"`
	ConnectionString string            `yaml:"connection_string" validate:"required"`
	Options          map[string]string `yaml:"options"`
}

// AuthConfig holds bearer token verification settings
type AuthConfig struct {
	Secret string `yaml:"secret" validate:"required,min=16"`
	Issuer string `yaml:"issuer"`
}

// RegistryConfig points at the allow-list of query definitions
type RegistryConfig struct {
	File  string `yaml:"file"`
	Watch bool   `yaml:"watch"`
}
