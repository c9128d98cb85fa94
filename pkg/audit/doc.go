// Package audit writes the security audit trail of credential validation.
//
// Events are rendered as RFC5424 syslog lines with structured data, one line
// per event:
//
//	<86>1 2024-01-15T10:00:00.000Z host casino 4242 authn [auth@43868 authenticator="db" chain="authenticators" user="alice"] credentials for alice validated by authenticator db
//
// # Usage
//
//	logger := audit.NewLogger(os.Stdout, true)
//	logger.Log(audit.ValidationEvent{Authenticator: "db", Username: "alice", Success: true})
//
// A nil *Logger is valid and discards every event.
package audit
