// Package config holds connection configuration for the executor
// adapters. Values come from a YAML file, environment variables, or
// both; environment variables win, and secrets are env-only.
package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Default ports per dialect.
const (
	DefaultSQLServerPort = 1433
	DefaultMySQLPort     = 3306
)

// Connection describes how to reach one database.
type Connection struct {
	Dialect  string `yaml:"dialect" env:"SQLBRIDGE_DIALECT" env-default:"mysql"`
	Host     string `yaml:"host" env:"SQLBRIDGE_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"SQLBRIDGE_PORT" env-default:"0"`
	Database string `yaml:"database" env:"SQLBRIDGE_DATABASE"`
	Username string `yaml:"username" env:"SQLBRIDGE_USERNAME"`
	Password string `yaml:"-" env:"SQLBRIDGE_PASSWORD"` // Secret - not in YAML

	// SQL Server transport options.
	Encrypt                bool `yaml:"encrypt" env:"SQLBRIDGE_ENCRYPT" env-default:"false"`
	TrustServerCertificate bool `yaml:"trust_server_certificate" env:"SQLBRIDGE_TRUST_SERVER_CERTIFICATE" env-default:"false"`

	// ConnectionTimeout is in seconds; zero means driver default.
	ConnectionTimeout int `yaml:"connection_timeout" env:"SQLBRIDGE_CONNECTION_TIMEOUT" env-default:"30"`
}

// Load reads configuration from a YAML file with environment overrides.
func Load(path string) (*Connection, error) {
	var cfg Connection
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// LoadEnv reads configuration from environment variables only.
func LoadEnv() (*Connection, error) {
	var cfg Connection
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config from environment: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills in the dialect's default port when none was set.
func (c *Connection) ApplyDefaults() {
	if c.Port == 0 {
		switch c.Dialect {
		case "sqlserver":
			c.Port = DefaultSQLServerPort
		case "mysql":
			c.Port = DefaultMySQLPort
		}
	}
}

// Validate checks that the connection is usable.
func (c *Connection) Validate() error {
	switch c.Dialect {
	case "sqlserver", "mysql":
	default:
		return fmt.Errorf("unsupported dialect: %q", c.Dialect)
	}
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Database == "" {
		return fmt.Errorf("database is required")
	}
	if c.Username == "" {
		return fmt.Errorf("username is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	return nil
}
