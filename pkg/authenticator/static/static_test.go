package static

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/doodlesbykumbi/casino-in-go/pkg/authenticator"
)

func newTestAuthenticator(t *testing.T) authenticator.Authenticator {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	a, err := New(authenticator.Options{
		"users": map[string]any{
			"alice": map[string]any{"password": string(hash), "email": "alice@example.com"},
			"bob":   map[string]any{"password": "plain"},
			"eve":   map[string]any{"password": "$2a$10$broken"},
		},
	})
	require.NoError(t, err)
	return a
}

func TestValidate(t *testing.T) {
	a := newTestAuthenticator(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		want     authenticator.UserData
	}{
		{"bcrypt match", "alice", "s3cret", authenticator.UserData{"username": "alice", "email": "alice@example.com"}},
		{"bcrypt mismatch", "alice", "wrong", nil},
		{"plain match", "bob", "plain", authenticator.UserData{"username": "bob"}},
		{"plain mismatch", "bob", "Plain", nil},
		{"unknown user", "carol", "s3cret", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := a.Validate(ctx, authenticator.Credentials{Username: tt.username, Password: tt.password})
			require.NoError(t, err)
			assert.Equal(t, tt.want, data)
		})
	}
}

func TestValidate_BrokenHash(t *testing.T) {
	a := newTestAuthenticator(t)

	_, err := a.Validate(context.Background(), authenticator.Credentials{Username: "eve", Password: "x"})
	require.Error(t, err)
	assert.True(t, authenticator.IsAuthenticatorError(err))
}

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts authenticator.Options
	}{
		{"no users", authenticator.Options{}},
		{"empty users", authenticator.Options{"users": map[string]any{}}},
		{"missing password", authenticator.Options{"users": map[string]any{"alice": map[string]any{"email": "a@b"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			assert.Error(t, err)
		})
	}
}
