package authenticator

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testOptions struct {
	URL     string        `mapstructure:"url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Retries int           `mapstructure:"retries" validate:"gte=0"`
	Scopes  []string      `mapstructure:"scopes"`
}

func TestDecodeOptions(t *testing.T) {
	var opts testOptions
	err := DecodeOptions(Options{
		"url":     "https://idp.example.com",
		"timeout": "5s",
		"retries": "3",
		"scopes":  "openid,email",
	}, &opts)
	require.NoError(t, err)

	assert.Equal(t, "https://idp.example.com", opts.URL)
	assert.Equal(t, 5*time.Second, opts.Timeout)
	assert.Equal(t, 3, opts.Retries)
	assert.Equal(t, []string{"openid", "email"}, opts.Scopes)
}

func TestDecodeOptions_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"missing required", Options{}},
		{"nil options", nil},
		{"unknown key", Options{"url": "https://idp.example.com", "color": "blue"}},
		{"invalid url", Options{"url": "not a url"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts testOptions
			err := DecodeOptions(tt.opts, &opts)
			assert.ErrorContains(t, err, "invalid options")
		})
	}
}

func TestUserDataUsername(t *testing.T) {
	assert.Equal(t, "alice", UserData{"username": "alice"}.Username())
	assert.Equal(t, "42", UserData{"username": 42}.Username())
	assert.Equal(t, "", UserData{"email": "a@b"}.Username())
	assert.Equal(t, "", UserData(nil).Username())
}

func TestAuthenticatorError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := WrapError(cause, "database unavailable")

	assert.Equal(t, "database unavailable: dial tcp: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsAuthenticatorError(err))
	assert.False(t, IsAuthenticatorError(cause))
	assert.Nil(t, WrapError(nil, "ignored"))
	assert.Equal(t, "down", NewError("down").Error())
}

func TestParseChainType(t *testing.T) {
	for _, s := range []string{"authenticators", "local"} {
		c, err := ParseChainType(s)
		require.NoError(t, err)
		assert.Equal(t, Local, c)
	}
	for _, s := range []string{"external_authenticators", "external"} {
		c, err := ParseChainType(s)
		require.NoError(t, err)
		assert.Equal(t, External, c)
	}

	_, err := ParseChainType("remote")
	assert.ErrorIs(t, err, ErrUnknownChainType)
	assert.Equal(t, "ChainType(9)", ChainType(9).String())
}
