// Package backends registers the authenticators shipped with casino.
package backends

import (
	"github.com/doodlesbykumbi/casino-in-go/pkg/authenticator"
	"github.com/doodlesbykumbi/casino-in-go/pkg/authenticator/database"
	"github.com/doodlesbykumbi/casino-in-go/pkg/authenticator/jwt"
	"github.com/doodlesbykumbi/casino-in-go/pkg/authenticator/static"
)

// Backend describes a built-in authenticator
type Backend struct {
	Name     string
	Chain    authenticator.ChainType
	Factory  authenticator.Factory
	Legacy   bool
	Synopsis string
}

var builtin = []Backend{
	{
		Name:     "static",
		Chain:    authenticator.Local,
		Factory:  static.New,
		Legacy:   true,
		Synopsis: "users and passwords listed in the options",
	},
	{
		Name:     "active_record",
		Chain:    authenticator.Local,
		Factory:  database.New,
		Synopsis: "users table of a SQL database (alias of database)",
	},
	{
		Name:     "database",
		Chain:    authenticator.Local,
		Factory:  database.New,
		Synopsis: "users table of a SQL database",
	},
	{
		Name:     "jwt",
		Chain:    authenticator.External,
		Factory:  jwt.New,
		Synopsis: "bearer tokens signed by an OIDC provider",
	},
}

// Builtin returns the built-in backends in registration order
func Builtin() []Backend {
	return append([]Backend(nil), builtin...)
}

// Register adds every built-in backend to r
func Register(r *authenticator.Resolver) {
	for _, b := range builtin {
		r.RegisterAuthenticator(b.Name, b.Factory)
		if b.Legacy {
			r.RegisterLegacyAuthenticator(b.Name, b.Factory)
		}
	}
}

// NewResolver returns a resolver holding the built-in backends
func NewResolver() *authenticator.Resolver {
	r := authenticator.NewResolver()
	Register(r)
	return r
}
