// Package config provides configuration loading and validation for contentd.
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
//  3. Environment variables (CONTENTD_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with CONTENTD_ prefix:
//   - server.port → CONTENTD_SERVER_PORT
//   - storage.path → CONTENTD_STORAGE_PATH
//   - storage.extension → CONTENTD_STORAGE_EXTENSION
//
// # Configuration Structure
//
// The Config struct contains:
//   - Server: host, port, max_upload_size and timeouts
//   - Storage: content root path and the extension appended to identifiers
//   - Download: query parameter name and its default value
//   - Attachment: optional fixed file served as application/octet-stream
//   - CORS: cross-origin resource sharing settings
//   - Log: level and format (text or json)
//   - Diagnostics: gops agent toggle
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Storage path and download param are required
//   - Extension, when set, must start with "." and contain no "/"
//   - Log level must be debug, info, warn, or error
//   - Log format must be text or json
package config
