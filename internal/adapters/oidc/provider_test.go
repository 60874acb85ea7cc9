package oidc

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/piragi/knowledge-shell/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// fakeIdP serves discovery, JWKS, token and userinfo endpoints for one RSA key.
type fakeIdP struct {
	t        *testing.T
	server   *httptest.Server
	key      *rsa.PrivateKey
	claims   jwt.MapClaims
	userInfo map[string]any
}

func newFakeIdP(t *testing.T) *fakeIdP {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	idp := &fakeIdP{t: t, key: key}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /.well-known/openid-configuration", func(w http.ResponseWriter, _ *http.Request) {
		base := idp.server.URL
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                                base,
			"authorization_endpoint":                base + "/authorize",
			"token_endpoint":                        base + "/token",
			"userinfo_endpoint":                     base + "/userinfo",
			"jwks_uri":                              base + "/jwks",
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	})
	mux.HandleFunc("GET /jwks", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"keys": []map[string]string{{
			"kty": "RSA",
			"kid": "test-key",
			"alg": "RS256",
			"use": "sig",
			"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}}})
	})
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, _ *http.Request) {
		tok := jwt.NewWithClaims(jwt.SigningMethodRS256, idp.claims)
		tok.Header["kid"] = "test-key"
		raw, signErr := tok.SignedString(key)
		require.NoError(t, signErr)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access-123",
			"token_type":   "Bearer",
			"expires_in":   3600,
			"id_token":     raw,
		})
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(idp.userInfo)
	})
	idp.server = httptest.NewServer(mux)
	t.Cleanup(idp.server.Close)
	return idp
}

func (f *fakeIdP) baseClaims(nonce string) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"iss":   f.server.URL,
		"aud":   "test-client",
		"sub":   "user-42",
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
		"nonce": nonce,
	}
}

func newTestProvider(t *testing.T, idp *fakeIdP) *Provider {
	t.Helper()
	provider, err := NewProvider(context.Background(), ProviderConfig{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		RedirectURL:  "http://localhost:8080/auth/callback",
		Scope:        "openid profile email",
		DiscoveryURL: idp.server.URL + "/.well-known/openid-configuration",
	})
	require.NoError(t, err)
	return provider
}

func TestNewProvider_Discovery(t *testing.T) {
	idp := newFakeIdP(t)
	provider := newTestProvider(t, idp)

	assert.Equal(t, idp.server.URL+"/authorize", provider.config.Endpoint.AuthURL)
	assert.Equal(t, idp.server.URL+"/token", provider.config.Endpoint.TokenURL)
}

func TestNewProvider_ValidationErrors(t *testing.T) {
	valid := ProviderConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/callback",
		DiscoveryURL: "http://example.com",
	}
	tests := []struct {
		name   string
		mutate func(*ProviderConfig)
		errMsg string
	}{
		{name: "missing client ID", mutate: func(c *ProviderConfig) { c.ClientID = "" }, errMsg: "client ID is required"},
		{name: "missing client secret", mutate: func(c *ProviderConfig) { c.ClientSecret = "" }, errMsg: "client secret is required"},
		{name: "missing redirect URL", mutate: func(c *ProviderConfig) { c.RedirectURL = "" }, errMsg: "redirect URL is required"},
		{name: "missing discovery URL", mutate: func(c *ProviderConfig) { c.DiscoveryURL = "" }, errMsg: "discovery URL is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			_, err := NewProvider(context.Background(), cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestIssuerFromDiscoveryURL(t *testing.T) {
	assert.Equal(t, "https://idp.example.com", issuerFromDiscoveryURL("https://idp.example.com/.well-known/openid-configuration"))
	assert.Equal(t, "https://idp.example.com", issuerFromDiscoveryURL("https://idp.example.com/"))
}

func TestProvider_Begin(t *testing.T) {
	provider := newTestProvider(t, newFakeIdP(t))

	authURL, state, nonce, err := provider.Begin(context.Background(), ports.BeginInput{RedirectURL: "/chat"})
	require.NoError(t, err)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "test-client", q.Get("client_id"))
	assert.Equal(t, state, q.Get("state"))
	assert.Equal(t, nonce, q.Get("nonce"))
	assert.Equal(t, "http://localhost:8080/auth/callback", q.Get("redirect_uri"))

	_, _, _, err = provider.Begin(context.Background(), ports.BeginInput{})
	require.Error(t, err)
}

func TestProvider_Exchange_ValidationErrors(t *testing.T) {
	provider := newTestProvider(t, newFakeIdP(t))

	tests := []struct {
		name   string
		input  ports.ExchangeInput
		errMsg string
	}{
		{name: "missing code", input: ports.ExchangeInput{State: "state", Nonce: "nonce"}, errMsg: "authorization code is required"},
		{name: "missing state", input: ports.ExchangeInput{Code: "code", Nonce: "nonce"}, errMsg: "state is required"},
		{name: "missing nonce", input: ports.ExchangeInput{Code: "code", State: "state"}, errMsg: "nonce is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := provider.Exchange(context.Background(), tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestProvider_Exchange_ProfileFromIDToken(t *testing.T) {
	idp := newFakeIdP(t)
	provider := newTestProvider(t, idp)
	idp.claims = idp.baseClaims("n-1")
	idp.claims["email"] = "ada@example.com"
	idp.claims["name"] = "Ada Lovelace"
	idp.claims["picture"] = "https://cdn.example.com/ada.png"

	id, err := provider.Exchange(context.Background(), ports.ExchangeInput{Code: "c", State: "s", Nonce: "n-1"})

	require.NoError(t, err)
	assert.Equal(t, "user-42", id.UserID)
	assert.Equal(t, "Ada Lovelace", *id.FullName)
	assert.Equal(t, "ada@example.com", *id.Email)
	assert.Equal(t, "https://cdn.example.com/ada.png", *id.AvatarURL)
	assert.WithinDuration(t, time.Now().Add(time.Hour), id.ExpiresAt, time.Minute)
}

func TestProvider_Exchange_FillsFromUserInfo(t *testing.T) {
	idp := newFakeIdP(t)
	provider := newTestProvider(t, idp)
	idp.claims = idp.baseClaims("n-2")
	idp.userInfo = map[string]any{
		"sub":         "user-42",
		"email":       "bob@co.io",
		"given_name":  "Bob",
		"family_name": "Builder",
	}

	id, err := provider.Exchange(context.Background(), ports.ExchangeInput{Code: "c", State: "s", Nonce: "n-2"})

	require.NoError(t, err)
	assert.Equal(t, "Bob Builder", *id.FullName)
	assert.Equal(t, "bob@co.io", *id.Email)
	assert.Nil(t, id.AvatarURL)
}

func TestProvider_Exchange_NonceMismatch(t *testing.T) {
	idp := newFakeIdP(t)
	provider := newTestProvider(t, idp)
	idp.claims = idp.baseClaims("other")

	_, err := provider.Exchange(context.Background(), ports.ExchangeInput{Code: "c", State: "s", Nonce: "n-3"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid nonce")
}

func TestProfileClaims(t *testing.T) {
	c := profileClaims{GivenName: "Ada"}
	assert.Equal(t, "Ada", c.fullName())
	assert.True(t, c.incomplete())

	merged := profileClaims{Subject: "keep", Email: "keep@example.com"}.merge(profileClaims{
		Subject: "other",
		Email:   "other@example.com",
		Name:    "Filled",
	})
	assert.Equal(t, "keep", merged.Subject)
	assert.Equal(t, "keep@example.com", merged.Email)
	assert.Equal(t, "Filled", merged.Name)
	assert.False(t, merged.incomplete())
}

func TestGenerateRandomString(t *testing.T) {
	a, err := generateRandomString(16)
	require.NoError(t, err)
	assert.Len(t, a, 16)

	b, err := generateRandomString(32)
	require.NoError(t, err)
	assert.Len(t, b, 32)
	assert.NotEqual(t, a, b[:16])
}

func TestGetIDTokenFromToken(t *testing.T) {
	tok := (&oauth2.Token{}).WithExtra(map[string]any{"id_token": "abc.def.ghi"})
	raw, err := getIDTokenFromToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", raw)

	_, err = getIDTokenFromToken((&oauth2.Token{}).WithExtra(map[string]any{"not_id": "x"}))
	require.ErrorContains(t, err, "missing id_token")

	_, err = getIDTokenFromToken(nil)
	require.ErrorContains(t, err, "nil token")
}
