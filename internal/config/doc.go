// Package config handles configuration loading, parsing, and validation
// from defaults, an optional config file and MISE_* environment variables.
// It provides type-safe access to the settings needed by the scheduler,
// generation clients, stores and object storage while keeping configuration
// details separate from business logic.
package config
