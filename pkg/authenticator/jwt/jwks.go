package jwt

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// keySet caches the RSA signing keys of an identity provider
type keySet struct {
	mu          sync.RWMutex
	keys        map[string]*rsa.PublicKey
	expiresAt   time.Time
	attemptedAt time.Time

	// refreshMu serialises fetches
	refreshMu sync.Mutex

	client      *http.Client
	jwksURI     string
	providerURI string
	inline      string
	ttl         time.Duration
	// minRefresh limits how often an unknown kid may force a fetch
	// before the set expires
	minRefresh time.Duration
	now        func() time.Time
}

// key returns the key for kid. An expired set is always refreshed; an
// unknown kid forces a refresh at most once per minRefresh.
func (s *keySet) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	key, refresh := s.lookup(kid)
	if key != nil || !refresh {
		return key, s.unknown(key, kid)
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	// another caller may have refreshed while this one waited
	key, refresh = s.lookup(kid)
	if key != nil || !refresh {
		return key, s.unknown(key, kid)
	}
	if err := s.refresh(ctx); err != nil {
		return nil, err
	}

	key, _ = s.lookup(kid)
	return key, s.unknown(key, kid)
}

// lookup returns the cached key for kid, or whether a fetch is allowed
func (s *keySet) lookup(kid string) (*rsa.PublicKey, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	if now.After(s.expiresAt) {
		return nil, true
	}
	if key, ok := s.keys[kid]; ok {
		return key, false
	}
	return nil, !now.Before(s.attemptedAt.Add(s.minRefresh))
}

func (s *keySet) unknown(key *rsa.PublicKey, kid string) error {
	if key != nil {
		return nil
	}
	return fmt.Errorf("%w: key %s not found", errUnknownKey, kid)
}

var errUnknownKey = errors.New("unknown signing key")

// refresh loads the inline key set or fetches it from the provider
func (s *keySet) refresh(ctx context.Context) error {
	s.mu.Lock()
	s.attemptedAt = s.now()
	s.mu.Unlock()

	var body []byte
	if s.inline != "" {
		body = []byte(s.inline)
	} else {
		jwksURI, err := s.discover(ctx)
		if err != nil {
			return err
		}
		body, err = s.get(ctx, jwksURI)
		if err != nil {
			return fmt.Errorf("failed to fetch JWKS: %w", err)
		}
	}

	keys, err := parseJWKS(body)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.keys = keys
	s.expiresAt = s.now().Add(s.ttl)
	s.mu.Unlock()
	return nil
}

// discover returns the JWKS URI, reading the OIDC discovery document when
// only a provider URI is configured
func (s *keySet) discover(ctx context.Context) (string, error) {
	if s.jwksURI != "" {
		return s.jwksURI, nil
	}

	discoveryURL := strings.TrimSuffix(s.providerURI, "/") + "/.well-known/openid-configuration"
	body, err := s.get(ctx, discoveryURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch OIDC discovery: %w", err)
	}

	var discovery struct {
		JWKSURI string `json:"jwks_uri"`
	}
	if err := json.Unmarshal(body, &discovery); err != nil {
		return "", fmt.Errorf("failed to parse OIDC discovery: %w", err)
	}
	if discovery.JWKSURI == "" {
		return "", errors.New("OIDC discovery document has no jwks_uri")
	}
	return discovery.JWKSURI, nil
}

func (s *keySet) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}

// jwk holds the members of a JSON Web Key used for RSA signature checks
type jwk struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// parseJWKS parses a JWKS document into RSA keys by kid. Keys of other types
// and RSA keys with unusable parameters are left out. A document of the form
// {"type": "jwks", "value": {...}} is unwrapped first.
func parseJWKS(body []byte) (map[string]*rsa.PublicKey, error) {
	var wrapped struct {
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Type != "" {
		if wrapped.Type != "jwks" {
			return nil, fmt.Errorf("unsupported public-keys type: %s", wrapped.Type)
		}
		body = wrapped.Value
	}

	var set struct {
		Keys []jwk `json:"keys"`
	}
	if err := json.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("failed to parse JWKS: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" {
			continue
		}
		pub, err := parseRSAPublicKey(k.N, k.E)
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}
	return keys, nil
}

// parseRSAPublicKey builds a key from the base64url modulus and exponent.
// The exponent must fit in 4 bytes and lie in [3, 2^31-1].
func parseRSAPublicKey(n, e string) (*rsa.PublicKey, error) {
	p := jwt.NewParser()
	modulus, err := p.DecodeSegment(n)
	if err != nil {
		return nil, fmt.Errorf("invalid modulus: %w", err)
	}
	if len(modulus) == 0 {
		return nil, errors.New("invalid modulus: empty")
	}

	exponent, err := p.DecodeSegment(e)
	if err != nil {
		return nil, fmt.Errorf("invalid exponent: %w", err)
	}
	if len(exponent) == 0 || len(exponent) > 4 {
		return nil, fmt.Errorf("invalid exponent: %d bytes", len(exponent))
	}
	exp := new(big.Int).SetBytes(exponent)
	if exp.Cmp(minExponent) < 0 || exp.Cmp(maxExponent) > 0 {
		return nil, fmt.Errorf("invalid exponent: %s", exp)
	}

	return &rsa.PublicKey{N: new(big.Int).SetBytes(modulus), E: int(exp.Int64())}, nil
}

var (
	minExponent = big.NewInt(3)
	maxExponent = big.NewInt(math.MaxInt32)
)
