package authn

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Sridhar-Quarlets/model-registry/pkg/authenticator"
	"github.com/Sridhar-Quarlets/model-registry/pkg/model"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server/store"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server/store/memory"
)

func setupAuthenticator(t *testing.T) (*Authenticator, *memory.Store) {
	t.Helper()
	users := memory.New()
	auth := New(users).WithCost(bcrypt.MinCost)
	return auth, users
}

// failingUsers is a users store whose backend is unreachable.
type failingUsers struct{}

func (failingUsers) CreateUser(context.Context, model.User) error {
	return errors.New("connection refused")
}

func (failingUsers) GetUserByEmail(context.Context, string) (model.User, error) {
	return model.User{}, errors.New("connection refused")
}

func TestAuthenticator_Name(t *testing.T) {
	auth, _ := setupAuthenticator(t)
	assert.Equal(t, "authn", auth.Name())
}

func TestAuthenticator_Register(t *testing.T) {
	ctx := context.Background()
	auth, users := setupAuthenticator(t)

	user, err := auth.Register(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.True(t, user.Active)
	assert.Equal(t, model.DefaultRole, user.Role)
	assert.NotEqual(t, "s3cret", user.HashedPassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("s3cret")))

	stored, err := users.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)

	_, err = auth.Register(ctx, "alice@example.com", "other")
	assert.ErrorIs(t, err, store.ErrUserExists)
}

func TestAuthenticator_RegisterValidation(t *testing.T) {
	auth, _ := setupAuthenticator(t)

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"empty email", "", "pw", ErrInvalidEmail},
		{"no domain", "alice", "pw", ErrInvalidEmail},
		{"display name form", "Alice <alice@example.com>", "pw", ErrInvalidEmail},
		{"empty password", "alice@example.com", "", ErrInvalidPassword},
		{"oversized password", "alice@example.com", strings.Repeat("p", 73), ErrInvalidPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Register(context.Background(), tt.email, tt.password)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthenticator_Authenticate_Success(t *testing.T) {
	ctx := context.Background()
	auth, _ := setupAuthenticator(t)
	_, err := auth.Register(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)

	principal, err := auth.Authenticate(ctx, authenticator.AuthenticatorInput{
		Login:       "alice@example.com",
		Credentials: []byte("s3cret"),
	})
	require.NoError(t, err)
	assert.Equal(t, authenticator.Principal{Identity: "alice@example.com", Role: model.DefaultRole, Active: true}, principal)
}

func TestAuthenticator_Authenticate_Failures(t *testing.T) {
	ctx := context.Background()
	auth, users := setupAuthenticator(t)
	_, err := auth.Register(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)

	digest, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, users.CreateUser(ctx, model.User{Email: "inactive@example.com", HashedPassword: string(digest)}))

	tests := []struct {
		name  string
		input authenticator.AuthenticatorInput
	}{
		{"wrong password", authenticator.AuthenticatorInput{Login: "alice@example.com", Credentials: []byte("wrong")}},
		{"unknown user", authenticator.AuthenticatorInput{Login: "bob@example.com", Credentials: []byte("s3cret")}},
		{"missing login", authenticator.AuthenticatorInput{Credentials: []byte("s3cret")}},
		{"inactive user", authenticator.AuthenticatorInput{Login: "inactive@example.com", Credentials: []byte("pw")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Authenticate(ctx, tt.input)
			assert.ErrorIs(t, err, authenticator.ErrUnauthenticated)
		})
	}
}

func TestAuthenticator_Authenticate_StoreError(t *testing.T) {
	auth := New(failingUsers{})

	_, err := auth.Authenticate(context.Background(), authenticator.AuthenticatorInput{
		Login:       "alice@example.com",
		Credentials: []byte("s3cret"),
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, authenticator.ErrUnauthenticated)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestAuthenticator_Status(t *testing.T) {
	auth, _ := setupAuthenticator(t)
	assert.NoError(t, auth.Status(context.Background()))
	assert.NoError(t, New(failingUsers{}).Status(context.Background()))
}
