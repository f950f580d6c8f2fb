package authn_jwt

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sridhar-Quarlets/model-registry/pkg/authenticator"
	"github.com/Sridhar-Quarlets/model-registry/pkg/config"
	"github.com/Sridhar-Quarlets/model-registry/pkg/model"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server/store/memory"
)

var testSecret = []byte("test-secret-key-that-is-long-enough")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func setupAuthenticator(t *testing.T, alg string) (*Authenticator, *memory.Store) {
	t.Helper()
	users := memory.New()
	require.NoError(t, users.CreateUser(context.Background(), model.User{
		Email:  "alice@example.com",
		Active: true,
		Role:   model.DefaultRole,
	}))
	require.NoError(t, users.CreateUser(context.Background(), model.User{
		Email: "disabled@example.com",
		Role:  model.DefaultRole,
	}))

	auth, err := New(users, Config{Secret: testSecret, Algorithm: alg, TTL: 30 * time.Minute})
	require.NoError(t, err)
	return auth, users
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{"unknown algorithm", Config{Secret: testSecret, Algorithm: "RS256", TTL: time.Minute}, "unsupported token algorithm"},
		{"none algorithm", Config{Secret: testSecret, Algorithm: "none", TTL: time.Minute}, "unsupported token algorithm"},
		{"missing secret", Config{Algorithm: "HS256", TTL: time.Minute}, "secret is required"},
		{"zero ttl", Config{Secret: testSecret, Algorithm: "HS256"}, "must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(memory.New(), tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigFrom(t *testing.T) {
	cfg := config.Default()
	cfg.SecretKey = "abc"
	cfg.Algorithm = "HS384"
	cfg.AccessTokenExpireMinutes = 15

	c := ConfigFrom(cfg)
	assert.Equal(t, []byte("abc"), c.Secret)
	assert.Equal(t, "HS384", c.Algorithm)
	assert.Equal(t, 15*time.Minute, c.TTL)
}

func TestAuthenticator_IssueAndResolve(t *testing.T) {
	for _, alg := range []string{"HS256", "HS384", "HS512"} {
		t.Run(alg, func(t *testing.T) {
			auth, _ := setupAuthenticator(t, alg)
			assert.Equal(t, "authn-jwt", auth.Name())

			token, expiresAt, err := auth.Issue("alice@example.com")
			require.NoError(t, err)
			assert.Equal(t, 3, len(strings.Split(token, ".")))

			principal, err := auth.Resolve(context.Background(), token)
			require.NoError(t, err)
			assert.Equal(t, "alice@example.com", principal.Identity)
			assert.Equal(t, model.DefaultRole, principal.Role)
			assert.True(t, principal.Active)
			assert.Equal(t, expiresAt.Unix(), principal.ExpiresAt.Unix())

			via, err := auth.Authenticate(context.Background(), authenticator.AuthenticatorInput{Credentials: []byte(token)})
			require.NoError(t, err)
			assert.Equal(t, principal, via)
		})
	}
}

func TestAuthenticator_Claims(t *testing.T) {
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	auth, _ := setupAuthenticator(t, "HS256")
	auth.WithClock(fixedClock(issued))

	token, expiresAt, err := auth.Issue("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, issued.Add(30*time.Minute), expiresAt)

	claims, err := auth.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Subject)
	assert.Equal(t, issued, claims.IssuedAt.Time.UTC())
	assert.Equal(t, expiresAt, claims.ExpiresAt.Time.UTC())
}

func TestAuthenticator_Expired(t *testing.T) {
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	auth, _ := setupAuthenticator(t, "HS256")
	auth.WithClock(fixedClock(issued))

	token, _, err := auth.Issue("alice@example.com")
	require.NoError(t, err)

	auth.WithClock(fixedClock(issued.Add(31 * time.Minute)))
	_, err = auth.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, authenticator.ErrUnauthenticated)
}

func TestAuthenticator_Rejects(t *testing.T) {
	auth, _ := setupAuthenticator(t, "HS256")

	other, err := New(memory.New(), Config{Secret: []byte("another-secret"), Algorithm: "HS256", TTL: time.Hour})
	require.NoError(t, err)
	foreign, _, err := other.Issue("alice@example.com")
	require.NoError(t, err)

	hs512, err := New(memory.New(), Config{Secret: testSecret, Algorithm: "HS512", TTL: time.Hour})
	require.NoError(t, err)
	wrongAlg, _, err := hs512.Issue("alice@example.com")
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "alice@example.com"}).SignedString(testSecret)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(testSecret)
	require.NoError(t, err)

	unknown, _, err := auth.Issue("bob@example.com")
	require.NoError(t, err)
	inactive, _, err := auth.Issue("disabled@example.com")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"foreign signature", foreign},
		{"different algorithm", wrongAlg},
		{"no expiry", noExpiry},
		{"no subject", noSubject},
		{"unknown subject", unknown},
		{"inactive subject", inactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Resolve(context.Background(), tt.token)
			assert.ErrorIs(t, err, authenticator.ErrUnauthenticated)
		})
	}
}

func TestAuthenticator_Status(t *testing.T) {
	auth, _ := setupAuthenticator(t, "HS256")
	assert.NoError(t, auth.Status(context.Background()))
}
