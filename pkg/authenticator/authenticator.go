package authenticator

import (
	"context"
	"net/url"
)

// Authenticator is implemented by every credential validation backend.
//
// Validate returns (data, nil) when the credentials are valid, (nil, nil) when
// the backend declines them, and an error wrapping *AuthenticatorError when it
// could not complete validation. Any other error is treated as a contract
// violation by the Executor and is returned to the caller.
type Authenticator interface {
	Validate(ctx context.Context, creds Credentials) (UserData, error)
}

// StatusChecker is implemented by backends that can report their health.
type StatusChecker interface {
	Status(ctx context.Context) error
}

// AuthenticatorFunc adapts a function to the Authenticator interface.
type AuthenticatorFunc func(ctx context.Context, creds Credentials) (UserData, error)

// Validate calls f.
func (f AuthenticatorFunc) Validate(ctx context.Context, creds Credentials) (UserData, error) {
	return f(ctx, creds)
}

// Credentials holds the input handed to a backend. Local validation fills
// Username and Password, external validation fills Params and Cookies.
type Credentials struct {
	Username string
	Password string

	Params  url.Values
	Cookies map[string]string
}

// RequestContext is the opaque bundle passed through to an external
// authenticator.
type RequestContext struct {
	Params  url.Values
	Cookies map[string]string
}

// UserData is produced by a successful backend. It always carries a
// "username" key; anything else is backend specific.
type UserData map[string]any

// Username returns the "username" value, or "" when it is missing.
func (d UserData) Username() string {
	if d == nil {
		return ""
	}
	switch v := d["username"].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return toString(v)
	}
}

// Result is the outcome of a successful validation.
type Result struct {
	Authenticator string   `json:"authenticator"`
	Class         string   `json:"-"`
	UserData      UserData `json:"user_data"`
}

// Options is the opaque configuration payload of an authenticator entry.
type Options map[string]any

// Entry is one configured authenticator. Record is false for values of the
// configuration group that are not mappings; those are skipped.
type Entry struct {
	Name          string
	Class         string
	Authenticator string
	Options       Options
	Record        bool
}

// EntrySource provides the configured entries of a chain, in order.
type EntrySource interface {
	Entries(chain ChainType) []Entry
}

// Entries is a static EntrySource.
type Entries map[ChainType][]Entry

// Entries returns the entries configured for chain.
func (e Entries) Entries(chain ChainType) []Entry {
	return e[chain]
}
