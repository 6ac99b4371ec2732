package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/require"

	"github.com/craftmart/storefront/internal/common"
)

type signer struct {
	key jwk.Key
	set jwk.Set
}

func newSigner(t *testing.T) signer {
	t.Helper()
	raw, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	key, err := jwk.FromRaw(raw)
	require.NoError(t, err)
	require.NoError(t, key.Set(jwk.KeyIDKey, "test-key"))
	require.NoError(t, key.Set(jwk.AlgorithmKey, jwa.RS256))
	pub, err := key.PublicKey()
	require.NoError(t, err)
	set := jwk.NewSet()
	require.NoError(t, set.AddKey(pub))
	return signer{key: key, set: set}
}

func (s signer) token(t *testing.T, mutate func(b *jwt.Builder)) string {
	t.Helper()
	now := time.Now()
	b := jwt.NewBuilder().
		Issuer("https://id.example.com").
		Audience([]string{"storefront"}).
		Subject("user-1").
		IssuedAt(now).
		Expiration(now.Add(time.Hour))
	if mutate != nil {
		mutate(b)
	}
	tok, err := b.Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.RS256, s.key))
	require.NoError(t, err)
	return string(signed)
}

func newVerifier(s signer) *Verifier {
	return &Verifier{
		Issuer:   "https://id.example.com",
		Audience: "storefront",
		Keys:     StaticKeys{Set: s.set},
	}
}

func TestVerifyExtractsIdentity(t *testing.T) {
	s := newSigner(t)
	raw := s.token(t, func(b *jwt.Builder) {
		b.Claim("role", common.RoleSeller).Claim("email", "seller@example.com").Claim("name", "Asha")
	})

	id, err := newVerifier(s).Verify(context.Background(), raw)
	require.NoError(t, err)
	require.Equal(t, "user-1", id.Subject)
	require.Equal(t, common.RoleSeller, id.Role)
	require.Equal(t, "seller@example.com", id.Email)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	s := newSigner(t)
	raw := s.token(t, func(b *jwt.Builder) { b.Issuer("https://evil.example.com") })

	_, err := newVerifier(s).Verify(context.Background(), raw)
	require.Error(t, err)
}

func TestVerifyRejectsExpired(t *testing.T) {
	s := newSigner(t)
	raw := s.token(t, func(b *jwt.Builder) {
		b.IssuedAt(time.Now().Add(-2 * time.Hour)).Expiration(time.Now().Add(-time.Hour))
	})

	_, err := newVerifier(s).Verify(context.Background(), raw)
	require.Error(t, err)
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	s := newSigner(t)
	mw := Middleware{Verifier: newVerifier(s)}
	h := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireSellerChecksRole(t *testing.T) {
	s := newSigner(t)
	mw := Middleware{Verifier: newVerifier(s)}

	var reached bool
	h := mw.RequireSeller(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/seller/orders", nil)
	req.Header.Set("Authorization", "Bearer "+s.token(t, nil))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.False(t, reached)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/seller/orders", nil)
	req.Header.Set("Authorization", "Bearer "+s.token(t, func(b *jwt.Builder) { b.Claim("role", common.RoleSeller) }))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, reached)
}
