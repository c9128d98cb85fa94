package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/casino-in-go/pkg/authenticator"
)

func TestHandleAuthenticators(t *testing.T) {
	s := newTestServer(t, defaultEntries(), &tokenAuthenticator{})

	req := httptest.NewRequest("GET", "/authenticators", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response AuthenticatorsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, []string{"users"}, response.Authenticators)
	assert.Equal(t, []string{"github"}, response.ExternalAuthenticators)
	assert.Contains(t, response.Installed, "casino-static_authenticator")
	assert.Contains(t, response.Installed, "casino-token_authenticator")
}

func TestHandleStatus(t *testing.T) {
	t.Run("all backends healthy", func(t *testing.T) {
		s := newTestServer(t, defaultEntries(), &tokenAuthenticator{})

		req := httptest.NewRequest("GET", "/status", nil)
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response StatusResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "ok", response.Status)
		assert.Equal(t, map[string]string{
			"authenticators.users":           "ok",
			"external_authenticators.github": "ok",
		}, response.Authenticators)
	})

	t.Run("backend unhealthy", func(t *testing.T) {
		s := newTestServer(t, defaultEntries(), &tokenAuthenticator{statusErr: errors.New("JWKS unreachable")})

		req := httptest.NewRequest("GET", "/status", nil)
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "JWKS unreachable")
	})

	t.Run("chain cannot be built", func(t *testing.T) {
		entries := authenticator.Entries{
			authenticator.External: {{Name: "corp", Class: "acme.SSO", Record: true}},
		}
		s := newTestServer(t, entries, &tokenAuthenticator{})

		req := httptest.NewRequest("GET", "/status", nil)
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"error"`)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, defaultEntries(), &tokenAuthenticator{})

	login := httptest.NewRequest("POST", "/login", strings.NewReader("username=alice&password=secret"))
	login.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	s.Handler().ServeHTTP(httptest.NewRecorder(), login)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `casino_validations_total{chain="authenticators",outcome="success"} 1`)
}
