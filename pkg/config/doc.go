// Package config provides configuration management for casino.
//
// Configuration is loaded from defaults, then the YAML file casino.yml in
// CASINO_CONFIG_PATH (default /etc/casino/config), then environment
// variables. The source of every attribute is tracked so that
// "casinoctl configuration show" can report it.
//
// # Environment Variables
//
//   - CASINO_LOG_LEVEL: debug, info, warn or error
//   - CASINO_LOG_FORMAT: json or console
//   - CASINO_LOG_OUTPUT: stdout, stderr or a file path
//   - CASINO_BIND_ADDRESS, CASINO_PORT: server listen address
//   - CASINO_AUDIT_ENABLED: audit trail on or off
//
// # Authenticators
//
// The authenticators and external_authenticators groups are ordered
// mappings. Their order is the order in which the chain tries each backend.
// A *CasinoConfig is an authenticator.EntrySource; Watch reloads it when the
// file changes.
package config
