package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "connection.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dialect: sqlserver
host: db.example.com
database: app
username: svc
`), 0o600))
	t.Setenv("SQLBRIDGE_PASSWORD", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlserver", cfg.Dialect)
	assert.Equal(t, "db.example.com", cfg.Host)
	assert.Equal(t, DefaultSQLServerPort, cfg.Port)
	assert.Equal(t, "secret", cfg.Password)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("SQLBRIDGE_DIALECT", "mysql")
	t.Setenv("SQLBRIDGE_HOST", "10.0.0.5")
	t.Setenv("SQLBRIDGE_DATABASE", "app")
	t.Setenv("SQLBRIDGE_USERNAME", "svc")
	t.Setenv("SQLBRIDGE_PASSWORD", "secret")

	cfg, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Dialect)
	assert.Equal(t, DefaultMySQLPort, cfg.Port)
	assert.NoError(t, cfg.Validate())
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Connection{Dialect: "sqlserver"}
	cfg.ApplyDefaults()
	assert.Equal(t, DefaultSQLServerPort, cfg.Port)

	cfg = &Connection{Dialect: "mysql", Port: 13306}
	cfg.ApplyDefaults()
	assert.Equal(t, 13306, cfg.Port)
}

func TestValidate(t *testing.T) {
	valid := Connection{
		Dialect:  "mysql",
		Host:     "localhost",
		Port:     3306,
		Database: "app",
		Username: "svc",
	}

	tests := []struct {
		name    string
		mutate  func(c *Connection)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Connection) {}},
		{
			name:    "unknown dialect",
			mutate:  func(c *Connection) { c.Dialect = "oracle" },
			wantErr: "unsupported dialect",
		},
		{
			name:    "missing host",
			mutate:  func(c *Connection) { c.Host = "" },
			wantErr: "host is required",
		},
		{
			name:    "missing database",
			mutate:  func(c *Connection) { c.Database = "" },
			wantErr: "database is required",
		},
		{
			name:    "missing username",
			mutate:  func(c *Connection) { c.Username = "" },
			wantErr: "username is required",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Connection) { c.Port = 70000 },
			wantErr: "out of range",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
