// Package static validates credentials against users listed in the
// authenticator options.
//
//	authenticators:
//	  static:
//	    authenticator: static
//	    options:
//	      users:
//	        alice:
//	          password: "$2a$10$..."   # bcrypt hash or plain text
//	          email: alice@example.com
//
// Every attribute other than password is returned in the user data.
package static

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/doodlesbykumbi/casino-in-go/pkg/authenticator"
)

// Options configures the static authenticator
type Options struct {
	Users map[string]map[string]any `mapstructure:"users" validate:"required,min=1"`
}

type user struct {
	password   string
	attributes map[string]any
}

// Authenticator checks passwords of statically configured users
type Authenticator struct {
	users map[string]user
}

// New creates a static authenticator from entry options
func New(opts authenticator.Options) (authenticator.Authenticator, error) {
	var o Options
	if err := authenticator.DecodeOptions(opts, &o); err != nil {
		return nil, err
	}

	users := make(map[string]user, len(o.Users))
	for name, attrs := range o.Users {
		password, ok := attrs["password"].(string)
		if !ok || password == "" {
			return nil, fmt.Errorf("user %q has no password", name)
		}
		u := user{password: password, attributes: make(map[string]any)}
		for k, v := range attrs {
			if k != "password" {
				u.attributes[k] = v
			}
		}
		users[name] = u
	}
	return &Authenticator{users: users}, nil
}

// Validate returns the user's attributes when username and password match
func (a *Authenticator) Validate(_ context.Context, creds authenticator.Credentials) (authenticator.UserData, error) {
	u, ok := a.users[creds.Username]
	if !ok {
		return nil, nil
	}

	match, err := passwordMatches(u.password, creds.Password)
	if err != nil {
		return nil, authenticator.WrapError(err, fmt.Sprintf("stored password of %q is unusable", creds.Username))
	}
	if !match {
		return nil, nil
	}

	data := authenticator.UserData{"username": creds.Username}
	for k, v := range u.attributes {
		data[k] = v
	}
	return data, nil
}

func passwordMatches(stored, given string) (bool, error) {
	if isBcrypt(stored) {
		err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(given))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return err == nil, err
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1, nil
}

func isBcrypt(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
