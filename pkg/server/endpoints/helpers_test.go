package endpoints

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/casino-in-go/pkg/authenticator"
	"github.com/doodlesbykumbi/casino-in-go/pkg/authenticator/backends"
	"github.com/doodlesbykumbi/casino-in-go/pkg/config"
	"github.com/doodlesbykumbi/casino-in-go/pkg/metrics"
	"github.com/doodlesbykumbi/casino-in-go/pkg/server"
)

// tokenAuthenticator accepts the "token" parameter "good-token" and reports
// status failures on demand
type tokenAuthenticator struct {
	statusErr error
}

func (a *tokenAuthenticator) Validate(_ context.Context, creds authenticator.Credentials) (authenticator.UserData, error) {
	switch creds.Params.Get("token") {
	case "good-token":
		return authenticator.UserData{"username": "octocat", "session": creds.Cookies["session"]}, nil
	case "panic":
		return nil, errors.New("unexpected backend failure")
	default:
		return nil, nil
	}
}

func (a *tokenAuthenticator) Status(context.Context) error {
	return a.statusErr
}

var staticUsers = authenticator.Options{
	"users": map[string]any{
		"alice": map[string]any{"password": "secret", "email": "alice@example.com"},
	},
}

func newTestServer(t *testing.T, entries authenticator.Entries, token *tokenAuthenticator) *server.Server {
	t.Helper()

	resolver := backends.NewResolver()
	resolver.RegisterAuthenticator("token", func(authenticator.Options) (authenticator.Authenticator, error) {
		return token, nil
	})

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	validator := authenticator.NewValidator(
		authenticator.NewRegistry(resolver, entries),
		&authenticator.Executor{Logger: zerolog.Nop(), Metrics: m},
	)

	cfg := &config.CasinoConfig{BindAddress: "127.0.0.1", Port: 8000}
	s := server.NewServer(cfg, validator, reg, zerolog.Nop())
	RegisterAll(s)
	return s
}

func defaultEntries() authenticator.Entries {
	return authenticator.Entries{
		authenticator.Local: {
			{Name: "users", Authenticator: "static", Options: staticUsers, Record: true},
		},
		authenticator.External: {
			{Name: "github", Authenticator: "token", Record: true},
		},
	}
}
