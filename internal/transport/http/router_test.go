package http

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-auth-gate/internal/config"
	jwtinfra "github.com/go-auth-gate/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privKey)})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0600))

	pubBytes, err := x509.MarshalPKIXPublicKey(&privKey.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0600))

	return &config.Config{
		JWTPrivateKeyPath: privPath,
		JWTPublicKeyPath:  pubPath,
		JWTExpiry:         24 * time.Hour,
		CodeTTL:           10 * time.Minute,
		ResendCooldown:    60 * time.Second,
		MaxCodeAttempts:   5,
		PendingAuthTTL:    15 * time.Minute,
		RefreshTokenDur:   30 * 24 * time.Hour,
	}
}

func TestNewRouter_NilJWTProviderPanics(t *testing.T) {
	cfg := testConfig(t)

	// A nil *jwtinfra.Provider wired into the token-signer interfaces would
	// only blow up on the first signed response; the router must refuse it
	// at construction instead.
	assert.Panics(t, func() {
		NewRouter(cfg, &Deps{JWTProvider: nil})
	})
}

func TestNewRouter_ServesHealthCheck(t *testing.T) {
	cfg := testConfig(t)

	p, err := jwtinfra.NewProvider(cfg)
	require.NoError(t, err)

	r := NewRouter(cfg, &Deps{JWTProvider: p})

	req := httptest.NewRequest(http.MethodGet, "/v1/health-check/ping", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}
