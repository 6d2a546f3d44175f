package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/helloapi"
	"github.com/sagarc03/helloapi/database"
	helloapihttp "github.com/sagarc03/helloapi/http"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for helloapi.
type Config struct {
	// Env is the raw environment flag. Use Environment to interpret it.
	Env       string                  `mapstructure:"env"`
	Server    ServerConfig            `mapstructure:"server"`
	Errors    ErrorsConfig            `mapstructure:"errors"`
	HSTS      HSTSConfig              `mapstructure:"hsts"`
	CORS      helloapihttp.CORSConfig `mapstructure:"cors"`
	Database  database.Config         `mapstructure:"database"`
	Telemetry TelemetryConfig         `mapstructure:"telemetry"`
	Log       LogConfig               `mapstructure:"log"`
}

// Environment returns the environment flag. Anything other than
// "development" is Production.
func (c *Config) Environment() helloapi.Environment {
	return helloapi.ParseEnvironment(c.Env)
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port              int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" validate:"min=0"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" validate:"min=0"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout" validate:"min=0"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" validate:"min=0"`
	RequestID         bool          `mapstructure:"request_id"`
	AccessLog         bool          `mapstructure:"access_log"`
}

// ErrorsConfig configures the production error handler.
type ErrorsConfig struct {
	Path string `mapstructure:"path" validate:"required,startswith=/"`
	Mode string `mapstructure:"mode" validate:"required,oneof=reexecute redirect"`
}

// HSTSConfig configures the Strict-Transport-Security header.
type HSTSConfig struct {
	MaxAge            time.Duration `mapstructure:"max_age" validate:"min=0"`
	IncludeSubDomains bool          `mapstructure:"include_subdomains"`
	Preload           bool          `mapstructure:"preload"`
	ExcludedHosts     []string      `mapstructure:"excluded_hosts"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name" validate:"required"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// PipelineOptions maps the configuration onto the request pipeline options.
// Logger and incident recording are wired by the caller.
func (c *Config) PipelineOptions() helloapihttp.PipelineOptions {
	return helloapihttp.PipelineOptions{
		ErrorPath: c.Errors.Path,
		ErrorMode: helloapihttp.ErrorMode(c.Errors.Mode),
		HSTS: helloapihttp.HSTSConfig{
			MaxAge:            c.HSTS.MaxAge,
			IncludeSubDomains: c.HSTS.IncludeSubDomains,
			Preload:           c.HSTS.Preload,
			ExcludedHosts:     c.HSTS.ExcludedHosts,
		},
		Tracing:     c.Telemetry.Enabled,
		ServiceName: c.Telemetry.ServiceName,
		RequestID:   c.Server.RequestID,
		AccessLog:   c.Server.AccessLog,
		CORS:        c.CORS,
	}
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"env":        "env",
	"db-type":    "database.type",
	"db-dsn":     "database.dsn",
	"port":       "server.port",
	"error-mode": "errors.mode",
	"log-level":  "log.level",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", string(helloapi.Production))

	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_header_timeout", 10*time.Second)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.request_id", true)
	v.SetDefault("server.access_log", true)

	v.SetDefault("errors.path", helloapihttp.DefaultErrorPath)
	v.SetDefault("errors.mode", string(helloapihttp.ErrorModeReexecute))

	v.SetDefault("hsts.max_age", helloapihttp.DefaultHSTSMaxAge)
	v.SetDefault("hsts.include_subdomains", false)
	v.SetDefault("hsts.preload", false)
	v.SetDefault("hsts.excluded_hosts", []string{})

	v.SetDefault("cors.enabled", false)

	v.SetDefault("database.type", database.TypeNone)
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.tables.incidents", "helloapi_incidents")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "helloapi")

	v.SetDefault("log.level", "info")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("HELLOAPI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if err := cfg.Database.Tables.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
