package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadExampleConfig(t *testing.T) {
	cfg, err := Load("../../../config.example.yaml")
	if err != nil {
		t.Skip("config.example.yaml not found")
	}

	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, 6, cfg.Reports.DefaultHours)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("ORDERS_DB_PATH", "test.db")
	t.Setenv("STORAGE_DRIVER", "MONGO")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("REPORT_DEFAULT_HOURS", "12")
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("NODE_ENV", "development")

	cfg := LoadFromEnv()
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "test.db", cfg.Storage.DatabasePath)
	assert.Equal(t, DriverMongo, cfg.Storage.Driver)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Storage.MongoURI)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 12, cfg.Reports.DefaultHours)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadFromEnv_AppEnvWins(t *testing.T) {
	t.Setenv("NODE_ENV", "development")
	t.Setenv("APP_ENV", "production")

	assert.False(t, LoadFromEnv().IsDevelopment())
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "ORDERS_DB_PATH", "STORAGE_DRIVER", "REPORT_DEFAULT_HOURS", "APP_ENV", "NODE_ENV", "LOG_LEVEL", "ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg := LoadFromEnv()
	assert.Equal(t, 5001, cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "orders.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "orders", cfg.Storage.MongoCollection)
	assert.Equal(t, 6, cfg.Reports.DefaultHours)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
	assert.Len(t, cfg.Server.AllowedOrigins, 2)
	assert.False(t, cfg.IsDevelopment())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileOverridesAndExpandsEnv(t *testing.T) {
	t.Setenv("TEST_MONGO_URI", "mongodb://db:27017")
	t.Setenv("PORT", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  environment: development
storage:
  driver: mongo
  mongo_uri: ${TEST_MONGO_URI}
reports:
  default_hours: 24
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mongodb://db:27017", cfg.Storage.MongoURI)
	assert.Equal(t, 24, cfg.Reports.DefaultHours)
	assert.True(t, cfg.IsDevelopment())
	// Settings absent from the file keep their defaults.
	assert.Equal(t, 5001, cfg.Server.Port)
	assert.Equal(t, "orders", cfg.Storage.MongoDatabase)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestLoadOrEnv_FallbackToEnv(t *testing.T) {
	t.Setenv("ORDERS_DB_PATH", "fallback.db")

	cfg := LoadOrEnvWithPath(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Equal(t, "fallback.db", cfg.Storage.DatabasePath)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "postgres" }},
		{name: "sqlite without path", mutate: func(c *Config) { c.Storage.DatabasePath = "" }},
		{name: "mongo without uri", mutate: func(c *Config) { c.Storage.Driver = DriverMongo; c.Storage.MongoURI = "" }},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }},
		{name: "bad hours", mutate: func(c *Config) { c.Reports.DefaultHours = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Server:  ServerConfig{Port: 5001},
				Storage: StorageConfig{Driver: DriverSQLite, DatabasePath: "orders.db"},
				Reports: ReportsConfig{DefaultHours: 6},
			}
			require.NoError(t, cfg.Validate())
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
