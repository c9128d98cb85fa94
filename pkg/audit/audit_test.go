package audit

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLogger(buf *bytes.Buffer, enabled bool) *Logger {
	l := NewLogger(buf, enabled)
	l.hostname = "testhost"
	l.pid = 42
	l.now = func() time.Time { return time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC) }
	return l
}

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, true)

	logger.Log(ValidationEvent{
		Chain:         "authenticators",
		Authenticator: "db",
		Username:      "alice",
		Success:       true,
	})

	assert.Equal(t,
		`<86>1 2024-01-15T10:00:00.000Z testhost casino 42 authn [auth@43868 authenticator="db" chain="authenticators" user="alice"] credentials for alice validated by authenticator db`+"\n",
		buf.String(),
	)
}

func TestLoggerDisabled(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, false)

	logger.Log(ValidationEvent{Authenticator: "db", Success: true})
	assert.Empty(t, buf.String())

	var nilLogger *Logger
	assert.NotPanics(t, func() { nilLogger.Log(ValidationEvent{}) })
	assert.False(t, nilLogger.Enabled())
}

func TestValidationEvent(t *testing.T) {
	tests := []struct {
		name    string
		event   ValidationEvent
		wantMsg string
		wantSev Severity
	}{
		{
			name:    "success",
			event:   ValidationEvent{Authenticator: "db", Username: "alice", Success: true},
			wantMsg: "credentials for alice validated by authenticator db",
			wantSev: SeverityInfo,
		},
		{
			name:    "failure with error",
			event:   ValidationEvent{Authenticator: "ldap", ErrorMessage: "connection refused"},
			wantMsg: "authenticator ldap failed to validate credentials: connection refused",
			wantSev: SeverityError,
		},
		{
			name:    "failure without error",
			event:   ValidationEvent{Authenticator: "ldap"},
			wantMsg: "authenticator ldap failed to validate credentials",
			wantSev: SeverityError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.event.Message())
			assert.Equal(t, tt.wantSev, tt.event.Severity())
			assert.Equal(t, FacilityAuthPriv, tt.event.Facility())
			assert.Equal(t, "authn", tt.event.MessageID())
		})
	}
}

func TestValidationEventStructuredData(t *testing.T) {
	sd := ValidationEvent{
		Chain:         "external_authenticators",
		Authenticator: "github",
		Class:         "casino-jwt_authenticator.JwtAuthenticator",
		ClientIP:      "10.0.0.1",
	}.StructuredData()

	assert.Equal(t, "github", sd[SDIDAuth]["authenticator"])
	assert.Equal(t, "casino-jwt_authenticator.JwtAuthenticator", sd[SDIDAuth]["class"])
	assert.NotContains(t, sd[SDIDAuth], "user")
	assert.Equal(t, "10.0.0.1", sd[SDIDClient]["ip"])
}

func TestEscapeSDValue(t *testing.T) {
	assert.Equal(t, `"a\"b\\c\]"`, escapeSDValue(`a"b\c]`))
}
