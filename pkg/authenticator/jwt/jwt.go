// Package jwt validates bearer tokens issued by an OIDC provider. It is an
// external authenticator: the token is read from a request parameter or a
// cookie rather than from a username and password.
//
//	external_authenticators:
//	  corp:
//	    authenticator: jwt
//	    options:
//	      provider_uri: https://idp.example.com
//	      audience: casino
//	      username_claim: email
//	      extra_claims: [name, groups]
package jwt

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/doodlesbykumbi/casino-in-go/pkg/authenticator"
)

const (
	defaultTokenParam    = "token"
	defaultUsernameClaim = "sub"
	defaultCacheTTL      = time.Hour
	defaultMinRefresh    = time.Minute
	defaultTimeout       = 10 * time.Second
)

// Options configures the JWT authenticator. Exactly one key source must be
// set: JWKSURI, ProviderURI or PublicKeys.
type Options struct {
	// JWKSURI is a direct URI to fetch JWKS from
	JWKSURI string `mapstructure:"jwks_uri" validate:"omitempty,url"`

	// ProviderURI is the OIDC provider URI, JWKS is discovered from
	// {provider_uri}/.well-known/openid-configuration
	ProviderURI string `mapstructure:"provider_uri" validate:"omitempty,url"`

	// PublicKeys is an inline JWKS, either as a JSON string or a mapping
	PublicKeys any `mapstructure:"public_keys"`

	Issuer   string `mapstructure:"issuer"`
	Audience string `mapstructure:"audience"`

	TokenParam    string   `mapstructure:"token_param"`
	TokenCookie   string   `mapstructure:"token_cookie"`
	UsernameClaim string   `mapstructure:"username_claim"`
	ExtraClaims   []string `mapstructure:"extra_claims"`

	CacheTTL time.Duration `mapstructure:"cache_ttl" validate:"gte=0"`
	// MinRefreshInterval bounds how often a token with an unknown kid can
	// trigger a key fetch
	MinRefreshInterval time.Duration `mapstructure:"min_refresh_interval" validate:"gte=0"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gte=0"`
	Leeway   time.Duration `mapstructure:"leeway" validate:"gte=0"`
}

// Authenticator implements JWT validation
type Authenticator struct {
	opts   Options
	keys   *keySet
	parser *jwt.Parser
}

// New creates a JWT authenticator from entry options
func New(opts authenticator.Options) (authenticator.Authenticator, error) {
	var o Options
	if err := authenticator.DecodeOptions(opts, &o); err != nil {
		return nil, err
	}
	a, err := NewWithClient(o, &http.Client{Timeout: orDefault(o.Timeout, defaultTimeout)})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// NewWithClient creates a JWT authenticator that fetches keys with client
func NewWithClient(o Options, client *http.Client) (*Authenticator, error) {
	inline, err := inlineKeys(o.PublicKeys)
	if err != nil {
		return nil, err
	}

	sources := 0
	for _, s := range []string{o.JWKSURI, o.ProviderURI, inline} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		return nil, errors.New("invalid options: exactly one of jwks_uri, provider_uri or public_keys is required")
	}

	if o.TokenParam == "" {
		o.TokenParam = defaultTokenParam
	}
	if o.UsernameClaim == "" {
		o.UsernameClaim = defaultUsernameClaim
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
		jwt.WithLeeway(o.Leeway),
	}
	if o.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(o.Issuer))
	}
	if o.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(o.Audience))
	}

	return &Authenticator{
		opts: o,
		keys: &keySet{
			keys:        make(map[string]*rsa.PublicKey),
			client:      client,
			jwksURI:     o.JWKSURI,
			providerURI: o.ProviderURI,
			inline:      inline,
			ttl:         orDefault(o.CacheTTL, defaultCacheTTL),
			minRefresh:  orDefault(o.MinRefreshInterval, defaultMinRefresh),
			now:         time.Now,
		},
		parser: jwt.NewParser(parserOpts...),
	}, nil
}

// Validate checks the token carried by the request. A missing or invalid
// token is declined; unavailable signing keys are reported as an
// authenticator error.
func (a *Authenticator) Validate(ctx context.Context, creds authenticator.Credentials) (authenticator.UserData, error) {
	tokenString := a.token(creds)
	if tokenString == "" {
		return nil, nil
	}

	claims := jwt.MapClaims{}
	_, err := a.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok {
			return nil, errors.New("missing kid in token header")
		}
		key, err := a.keys.key(ctx, kid)
		if err != nil && !errors.Is(err, errUnknownKey) {
			return nil, authenticator.WrapError(err, "signing keys unavailable")
		}
		return key, err
	})
	if err != nil {
		var authErr *authenticator.AuthenticatorError
		if errors.As(err, &authErr) {
			return nil, authErr
		}
		return nil, nil
	}

	username, ok := claims[a.opts.UsernameClaim].(string)
	if !ok || username == "" {
		return nil, nil
	}

	data := authenticator.UserData{"username": username}
	for _, name := range a.opts.ExtraClaims {
		if v, ok := claims[name]; ok {
			data[name] = v
		}
	}
	return data, nil
}

// Status reports whether the signing keys can be loaded
func (a *Authenticator) Status(ctx context.Context) error {
	a.keys.refreshMu.Lock()
	defer a.keys.refreshMu.Unlock()
	return a.keys.refresh(ctx)
}

func (a *Authenticator) token(creds authenticator.Credentials) string {
	if t := creds.Params.Get(a.opts.TokenParam); t != "" {
		return t
	}
	if a.opts.TokenCookie != "" {
		return creds.Cookies[a.opts.TokenCookie]
	}
	return ""
}

// inlineKeys accepts public_keys as a JSON document or as a decoded mapping
func inlineKeys(v any) (string, error) {
	switch keys := v.(type) {
	case nil:
		return "", nil
	case string:
		return keys, nil
	default:
		b, err := json.Marshal(normalize(keys))
		if err != nil {
			return "", fmt.Errorf("invalid options: public_keys: %w", err)
		}
		return string(b), nil
	}
}

// normalize converts map[any]any values produced by some YAML decoders into
// map[string]any so they can be encoded as JSON
func normalize(v any) any {
	switch t := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalize(val)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = normalize(val)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = normalize(val)
		}
		return s
	default:
		return v
	}
}

func orDefault(d, def time.Duration) time.Duration {
	if d == 0 {
		return def
	}
	return d
}
