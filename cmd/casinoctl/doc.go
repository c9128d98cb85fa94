// casinoctl is the command line entry point of casino, a central login
// service that validates credentials against a chain of pluggable
// authenticators.
//
// # Architecture
//
// The service is organized into several packages:
//
//   - pkg/authenticator: resolver, registry and validation chain executor
//   - pkg/authenticator/static, database, jwt: built-in backends
//   - pkg/authenticator/backends: registration of the built-in backends
//   - pkg/server: HTTP server and routing
//   - pkg/server/endpoints: login, status and metrics handlers
//   - pkg/config: configuration management
//   - pkg/db: database connection utilities
//   - pkg/audit: audit logging
//   - pkg/logging: structured logging
//   - pkg/metrics: Prometheus collectors
//
// # Quick Start
//
//	# Show the effective configuration
//	casinoctl configuration show
//
//	# List built-in and configured authenticators
//	casinoctl authenticators list
//
//	# Try a username and password against the local chain
//	casinoctl validate local alice --password secret
//
//	# Start the server, reloading casino.yml when it changes
//	casinoctl server --watch
//
// # Environment Variables
//
//   - CASINO_CONFIG_PATH: directory holding casino.yml (default: /etc/casino/config)
//   - CASINO_LOG_LEVEL: Log level (debug, info, warn, error)
//   - CASINO_LOG_FORMAT: Log format (json, console)
//   - CASINO_BIND_ADDRESS, CASINO_PORT: Server address (default: 0.0.0.0:8000)
//   - CASINO_AUDIT_ENABLED: Audit trail on or off (default: true)
package main
