// Package config handles configuration loading and management for ultralite.
//
// It provides functionality for:
//   - Loading configuration from .ultralite.json or .ultralite.yaml files
//   - Default configuration values
//   - .env files and ULTRALITE_* environment overrides
package config
