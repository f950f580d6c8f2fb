package authenticator

import (
	"context"
	"errors"
	"time"
)

// ErrUnauthenticated is returned when credentials are missing, malformed,
// expired, or do not resolve to an active account.
var ErrUnauthenticated = errors.New("could not validate credentials")

// Principal is the authenticated actor a request is attributed to.
type Principal struct {
	// Identity is the account email. It becomes created_by on registration.
	Identity string
	Role     string
	Active   bool

	// ExpiresAt is set when the principal was resolved from a bearer token.
	ExpiresAt time.Time
}

// Authenticator defines the interface for all authenticators
type Authenticator interface {
	// Name returns the authenticator name (e.g., "authn", "authn-jwt")
	Name() string

	// Authenticate validates credentials and returns the principal on success
	Authenticate(ctx context.Context, input AuthenticatorInput) (Principal, error)

	// Status checks if the authenticator is healthy
	Status(ctx context.Context) error
}

// AuthenticatorInput contains the input for authentication
type AuthenticatorInput struct {
	Login       string
	Credentials []byte
	ClientIP    string
}

// Resolver turns a bearer token into a Principal.
type Resolver interface {
	Resolve(ctx context.Context, token string) (Principal, error)
}
