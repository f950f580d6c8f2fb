package authn_jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Sridhar-Quarlets/model-registry/pkg/authenticator"
	"github.com/Sridhar-Quarlets/model-registry/pkg/config"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server/store"
)

// Config holds JWT authenticator configuration
type Config struct {
	// Secret is the HMAC key tokens are signed with
	Secret []byte

	// Algorithm is one of HS256, HS384, HS512
	Algorithm string

	// TTL is the lifetime of an issued token
	TTL time.Duration
}

// ConfigFrom extracts the token settings of cfg.
func ConfigFrom(cfg *config.RegistryConfig) Config {
	return Config{
		Secret:    []byte(cfg.SecretKey),
		Algorithm: cfg.Algorithm,
		TTL:       cfg.TokenTTL(),
	}
}

// Authenticator issues and verifies bearer tokens
type Authenticator struct {
	users  store.UsersStore
	config Config
	method jwt.SigningMethod
	now    func() time.Time
}

// New creates a bearer token authenticator. users is consulted on every
// resolution so that deactivated accounts lose access before their tokens
// expire.
func New(users store.UsersStore, config Config) (*Authenticator, error) {
	method, err := signingMethod(config.Algorithm)
	if err != nil {
		return nil, err
	}
	if len(config.Secret) == 0 {
		return nil, errors.New("token secret is required")
	}
	if config.TTL <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive, got %s", config.TTL)
	}
	return &Authenticator{
		users:  users,
		config: config,
		method: method,
		now:    time.Now,
	}, nil
}

// WithClock replaces time.Now for issuing and verifying.
func (a *Authenticator) WithClock(now func() time.Time) *Authenticator {
	a.now = now
	return a
}

func signingMethod(alg string) (jwt.SigningMethod, error) {
	switch alg {
	case "HS256":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	}
	return nil, fmt.Errorf("unsupported token algorithm %q", alg)
}

// Name returns the authenticator name
func (a *Authenticator) Name() string {
	return "authn-jwt"
}

// Issue signs a token for subject valid for the configured TTL.
func (a *Authenticator) Issue(subject string) (string, time.Time, error) {
	now := a.now()
	expiresAt := now.Add(a.config.TTL)
	token := jwt.NewWithClaims(a.method, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})

	signed, err := token.SignedString(a.config.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks the signature and expiry of tokenString and returns its
// claims. Every failure wraps authenticator.ErrUnauthenticated.
func (a *Authenticator) Verify(tokenString string) (*jwt.RegisteredClaims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: token is required", authenticator.ErrUnauthenticated)
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return a.config.Secret, nil
	},
		jwt.WithValidMethods([]string{a.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", authenticator.ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", authenticator.ErrUnauthenticated)
	}
	return claims, nil
}

// Resolve verifies token and loads the active account it names.
func (a *Authenticator) Resolve(ctx context.Context, token string) (authenticator.Principal, error) {
	claims, err := a.Verify(token)
	if err != nil {
		return authenticator.Principal{}, err
	}

	user, err := a.users.GetUserByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return authenticator.Principal{}, fmt.Errorf("%w: unknown subject", authenticator.ErrUnauthenticated)
		}
		return authenticator.Principal{}, fmt.Errorf("failed to resolve token subject: %w", err)
	}
	if !user.Active {
		return authenticator.Principal{}, fmt.Errorf("%w: inactive user", authenticator.ErrUnauthenticated)
	}

	return authenticator.Principal{
		Identity:  user.Email,
		Role:      user.Role,
		Active:    true,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Authenticate resolves the token carried in input.Credentials.
func (a *Authenticator) Authenticate(ctx context.Context, input authenticator.AuthenticatorInput) (authenticator.Principal, error) {
	return a.Resolve(ctx, string(input.Credentials))
}

// Status reports whether tokens can be issued.
func (a *Authenticator) Status(context.Context) error {
	_, _, err := a.Issue("status-check")
	return err
}
