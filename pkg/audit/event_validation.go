package audit

import (
	"context"
	"fmt"
)

// ValidationEvent records the verdict of one authenticator in a chain.
// Success is false when the authenticator raised an error and was skipped.
type ValidationEvent struct {
	Chain         string
	Authenticator string
	Class         string
	Username      string
	ClientIP      string
	Success       bool
	ErrorMessage  string
}

func (e ValidationEvent) MessageID() string {
	return "authn"
}

func (e ValidationEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("credentials for %s validated by authenticator %s", e.Username, e.Authenticator)
	}
	msg := fmt.Sprintf("authenticator %s failed to validate credentials", e.Authenticator)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e ValidationEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityError
}

func (e ValidationEvent) Facility() int {
	return FacilityAuthPriv
}

func (e ValidationEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"authenticator": e.Authenticator,
			"chain":         e.Chain,
		},
	}
	if e.Class != "" {
		sd[SDIDAuth]["class"] = e.Class
	}
	if e.Username != "" {
		sd[SDIDAuth]["user"] = e.Username
	}
	if e.ClientIP != "" {
		sd[SDIDClient] = map[string]string{"ip": e.ClientIP}
	}
	return sd
}

type clientIPKey struct{}

// WithClientIP returns a context carrying the address of the client whose
// credentials are being validated
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientIP returns the client address stored by WithClientIP, or ""
func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}
