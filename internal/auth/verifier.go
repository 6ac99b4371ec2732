// Package auth verifies bearer tokens issued by the hosted identity provider.
// No tokens are minted here; the provider's JWKS is the only trust anchor.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Identity is the verified caller extracted from a token.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Role    string
}

// KeyProvider supplies the current JWKS.
type KeyProvider interface {
	Get(ctx context.Context) (jwk.Set, error)
}

// JWKSProvider fetches and caches the provider's key set.
type JWKSProvider struct {
	url   string
	cache *jwk.Cache
}

// NewJWKSProvider registers the JWKS URL with a refreshing cache.
func NewJWKSProvider(ctx context.Context, url string) (*JWKSProvider, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("auth: jwks url is empty")
	}
	cache := jwk.NewCache(ctx)
	if err := cache.Register(url, jwk.WithMinRefreshInterval(15*time.Minute)); err != nil {
		return nil, fmt.Errorf("auth: register jwks: %w", err)
	}
	return &JWKSProvider{url: url, cache: cache}, nil
}

// Get returns the cached key set, refreshing when stale.
func (p *JWKSProvider) Get(ctx context.Context) (jwk.Set, error) {
	return p.cache.Get(ctx, p.url)
}

// StaticKeys wraps a fixed jwk.Set. Used in tests.
type StaticKeys struct {
	Set jwk.Set
}

// Get implements KeyProvider.
func (s StaticKeys) Get(context.Context) (jwk.Set, error) {
	if s.Set == nil {
		return nil, errors.New("auth: no key set")
	}
	return s.Set, nil
}

// Verifier validates signatures and claims on incoming tokens.
type Verifier struct {
	Issuer    string
	Audience  string
	ClockSkew time.Duration
	Keys      KeyProvider
}

// Verify parses and validates a raw token, returning the caller identity.
func (v *Verifier) Verify(ctx context.Context, raw string) (Identity, error) {
	if v == nil || v.Keys == nil {
		return Identity{}, errors.New("auth: verifier not configured")
	}
	set, err := v.Keys.Get(ctx)
	if err != nil {
		return Identity{}, fmt.Errorf("auth: fetch keys: %w", err)
	}

	opts := []jwt.ParseOption{
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
	}
	if v.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.Issuer))
	}
	if v.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.Audience))
	}
	if v.ClockSkew > 0 {
		opts = append(opts, jwt.WithAcceptableSkew(v.ClockSkew))
	}

	tok, err := jwt.Parse([]byte(raw), opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("auth: invalid token: %w", err)
	}
	if strings.TrimSpace(tok.Subject()) == "" {
		return Identity{}, errors.New("auth: token missing subject")
	}
	return Identity{
		Subject: tok.Subject(),
		Email:   stringClaim(tok, "email"),
		Name:    stringClaim(tok, "name"),
		Role:    stringClaim(tok, "role"),
	}, nil
}

func stringClaim(tok jwt.Token, name string) string {
	v, ok := tok.Get(name)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
