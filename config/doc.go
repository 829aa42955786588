// Package config provides configuration loading and validation for filedrop.
//
// Configuration is assembled from an ordered list of sources, each producing
// a partial map of dotted keys. Sources are merged with last-writer-wins
// semantics into a single viper instance, unmarshaled into Config and
// validated using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. .env file in the working directory
//  3. Environment variables (FILEDROP_ prefix)
//  4. Configuration file(s) - multiple files merged left-to-right
//  5. CLI flags
//
// A malformed value (a bad port or size limit, an unknown log level or format,
// an empty ip, host or storage path) is dropped from the source that supplied
// it, so the next lower source (ultimately the default) provides the value.
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags(), config.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//
//	addr, err := cfg.ListenSocketAddress()
//
// # Environment Variables
//
//   - FILEDROP_IP, FILEDROP_PORT: listen address
//   - FILEDROP_HOST, FILEDROP_PUBLIC_PORT: host and port used in generated URLs
//   - FILEDROP_STORAGE: storage directory
//   - FILEDROP_SIZE_LIMIT: upload limit, "52428800" or "50MiB"
//   - FILEDROP_ALLOW_UPLOAD, FILEDROP_ALLOW_DOWNLOAD: route switches
//   - FILEDROP_LOG_LEVEL, FILEDROP_LOG_FORMAT: logging
//
// # Validation
//
// The merged configuration is validated using struct tags:
//   - Ports must be 1-65535
//   - Host and storage path must be set
//   - Size limit must be positive
//   - Log level must be debug, info, warn, or error
package config
