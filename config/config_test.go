package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/helloapi"
	"github.com/sagarc03/helloapi/config"
	helloapihttp "github.com/sagarc03/helloapi/http"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	// Load with no config files should use defaults
	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, helloapi.Production, cfg.Environment())
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.True(t, cfg.Server.RequestID)
	assert.True(t, cfg.Server.AccessLog)
	assert.Equal(t, "/Home/Error", cfg.Errors.Path)
	assert.Equal(t, "reexecute", cfg.Errors.Mode)
	assert.Equal(t, 30*24*time.Hour, cfg.HSTS.MaxAge)
	assert.False(t, cfg.HSTS.IncludeSubDomains)
	assert.False(t, cfg.CORS.Enabled)
	assert.Equal(t, "none", cfg.Database.Type)
	assert.False(t, cfg.Database.Enabled())
	assert.Equal(t, "helloapi_incidents", cfg.Database.Tables.Incidents)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "helloapi", cfg.Telemetry.ServiceName)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
env: development
server:
  port: 8080
  read_timeout: 5s
  request_id: false
errors:
  path: /oops
  mode: redirect
hsts:
  max_age: 8760h
  include_subdomains: true
  preload: true
  excluded_hosts:
    - localhost
database:
  type: sqlite
  dsn: helloapi.db
  tables:
    incidents: custom_incidents
telemetry:
  enabled: true
  service_name: greeter
log:
  level: debug
`)

	cfg, err := config.Load([]string{configPath}, nil)
	require.NoError(t, err)

	assert.Equal(t, helloapi.Development, cfg.Environment())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.False(t, cfg.Server.RequestID)
	assert.Equal(t, "/oops", cfg.Errors.Path)
	assert.Equal(t, "redirect", cfg.Errors.Mode)
	assert.Equal(t, 8760*time.Hour, cfg.HSTS.MaxAge)
	assert.True(t, cfg.HSTS.IncludeSubDomains)
	assert.True(t, cfg.HSTS.Preload)
	assert.Equal(t, []string{"localhost"}, cfg.HSTS.ExcludedHosts)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "helloapi.db", cfg.Database.DSN)
	assert.Equal(t, "custom_incidents", cfg.Database.Tables.Incidents)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "greeter", cfg.Telemetry.ServiceName)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_ConfigFileMerge(t *testing.T) {
	basePath := writeConfig(t, "base.yaml", `
env: production
server:
  port: 5000
errors:
  mode: reexecute
log:
  level: info
`)
	overridePath := writeConfig(t, "override.yaml", `
server:
  port: 9000
log:
  level: warn
`)

	// Later files override earlier
	cfg, err := config.Load([]string{basePath, overridePath}, nil)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Log.Level)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "reexecute", cfg.Errors.Mode)
}

func TestLoad_UnknownEnvironmentIsProduction(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", "env: staging\n")

	cfg, err := config.Load([]string{configPath}, nil)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Env)
	assert.Equal(t, helloapi.Production, cfg.Environment())
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "invalid port", content: "server:\n  port: 99999\n"},
		{name: "invalid error mode", content: "errors:\n  mode: bounce\n"},
		{name: "relative error path", content: "errors:\n  path: Home/Error\n"},
		{name: "invalid log level", content: "log:\n  level: loud\n"},
		{name: "invalid database type", content: "database:\n  type: mysql\n  dsn: x\n"},
		{name: "missing dsn", content: "database:\n  type: sqlite\n"},
		{name: "invalid table name", content: "database:\n  tables:\n    incidents: Bad-Name\n"},
		{name: "negative cors max age", content: "cors:\n  max_age: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := writeConfig(t, "config.yaml", tt.content)

			_, err := config.Load([]string{configPath}, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validate config")
		})
	}
}

func TestLoad_WithCORS(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
cors:
  enabled: true
  allowed_origins:
    - https://example.com
    - https://app.example.com
  allowed_methods:
    - GET
    - POST
  allowed_headers:
    - Content-Type
  max_age: 600
`)

	cfg, err := config.Load([]string{configPath}, nil)
	require.NoError(t, err)

	assert.True(t, cfg.CORS.Enabled)
	assert.Equal(t, []string{"https://example.com", "https://app.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, []string{"GET", "POST"}, cfg.CORS.AllowedMethods)
	assert.Equal(t, []string{"Content-Type"}, cfg.CORS.AllowedHeaders)
	assert.Equal(t, 600, cfg.CORS.MaxAge)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("HELLOAPI_ENV", "development")
	t.Setenv("HELLOAPI_SERVER_PORT", "9090")
	t.Setenv("HELLOAPI_ERRORS_MODE", "redirect")
	t.Setenv("HELLOAPI_DATABASE_TYPE", "postgres")
	t.Setenv("HELLOAPI_DATABASE_DSN", "postgres://localhost/helloapi")

	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, helloapi.Development, cfg.Environment())
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "redirect", cfg.Errors.Mode)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "postgres://localhost/helloapi", cfg.Database.DSN)
}

func TestLoad_Flags(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", "env: production\nserver:\n  port: 8080\n")
	t.Setenv("HELLOAPI_SERVER_PORT", "9090")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("env", "", "")
	flags.Int("port", 0, "")
	flags.String("log-level", "", "")
	require.NoError(t, flags.Parse([]string{"--env", "development", "--port", "7070"}))

	cfg, err := config.Load([]string{configPath}, flags)
	require.NoError(t, err)

	// flags > env > file
	assert.Equal(t, helloapi.Development, cfg.Environment())
	assert.Equal(t, 7070, cfg.Server.Port)
	// unset flags do not override defaults
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_MissingConfigFileFallsBackToDefaults(t *testing.T) {
	cfg, err := config.Load([]string{filepath.Join(t.TempDir(), "missing.yaml")}, nil)
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Server.Port)
}

func TestConfig_PipelineOptions(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
server:
  request_id: true
  access_log: false
errors:
  path: /oops
  mode: redirect
hsts:
  max_age: 1h
  include_subdomains: true
  excluded_hosts: [localhost]
cors:
  enabled: true
  allowed_origins: ["*"]
telemetry:
  enabled: true
  service_name: greeter
`)

	cfg, err := config.Load([]string{configPath}, nil)
	require.NoError(t, err)

	opts := cfg.PipelineOptions()
	assert.Equal(t, "/oops", opts.ErrorPath)
	assert.Equal(t, helloapihttp.ErrorModeRedirect, opts.ErrorMode)
	assert.Equal(t, time.Hour, opts.HSTS.MaxAge)
	assert.True(t, opts.HSTS.IncludeSubDomains)
	assert.Equal(t, []string{"localhost"}, opts.HSTS.ExcludedHosts)
	assert.True(t, opts.RequestID)
	assert.False(t, opts.AccessLog)
	assert.True(t, opts.CORS.Enabled)
	assert.Equal(t, []string{"*"}, opts.CORS.AllowedOrigins)
	assert.True(t, opts.Tracing)
	assert.Equal(t, "greeter", opts.ServiceName)
}

func TestFromContext(t *testing.T) {
	_, err := config.FromContext(context.Background())
	require.Error(t, err)

	cfg := &config.Config{Env: "development"}
	got, err := config.FromContext(config.WithContext(context.Background(), cfg))
	require.NoError(t, err)
	assert.Same(t, cfg, got)
}
