// Package config provides configuration loading and validation for helloapi.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (HELLOAPI_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	pipeline := helloapihttp.BuildPipeline(cfg.Environment(), routes, cfg.PipelineOptions())
//
// # Environment Variables
//
// All config keys map to environment variables with HELLOAPI_ prefix:
//   - env → HELLOAPI_ENV
//   - server.port → HELLOAPI_SERVER_PORT
//   - errors.mode → HELLOAPI_ERRORS_MODE
//
// # Environment
//
// The env key selects the request pipeline. "development" enables the
// detailed error page. Any other value, including an empty one, is
// treated as production.
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Error mode must be reexecute or redirect, and the error path must be absolute
//   - Database type must be none, sqlite, or postgres, with a DSN unless none
//   - Log level must be debug, info, warn, or error
package config
