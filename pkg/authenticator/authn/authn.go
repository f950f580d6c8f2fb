package authn

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Sridhar-Quarlets/model-registry/pkg/authenticator"
	"github.com/Sridhar-Quarlets/model-registry/pkg/model"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server/store"
)

var (
	// ErrInvalidEmail is returned by Register for a malformed address.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrInvalidPassword is returned by Register for an empty or oversized password.
	ErrInvalidPassword = errors.New("invalid password")
)

// bcrypt ignores input past this length.
const maxPasswordBytes = 72

// Authenticator implements email and password authentication
type Authenticator struct {
	users store.UsersStore
	cost  int
	now   func() time.Time
}

// New creates a password authenticator backed by users.
func New(users store.UsersStore) *Authenticator {
	return &Authenticator{
		users: users,
		cost:  bcrypt.DefaultCost,
		now:   time.Now,
	}
}

// WithCost sets the bcrypt cost used for new digests.
func (a *Authenticator) WithCost(cost int) *Authenticator {
	a.cost = cost
	return a
}

// Name returns the authenticator name
func (a *Authenticator) Name() string {
	return "authn"
}

// Authenticate checks input.Credentials against the stored digest of the
// account named by input.Login.
func (a *Authenticator) Authenticate(ctx context.Context, input authenticator.AuthenticatorInput) (authenticator.Principal, error) {
	if input.Login == "" {
		return authenticator.Principal{}, fmt.Errorf("%w: login is required", authenticator.ErrUnauthenticated)
	}

	user, err := a.users.GetUserByEmail(ctx, input.Login)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return authenticator.Principal{}, authenticator.ErrUnauthenticated
		}
		return authenticator.Principal{}, fmt.Errorf("authentication failed: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), input.Credentials); err != nil {
		return authenticator.Principal{}, authenticator.ErrUnauthenticated
	}
	if !user.Active {
		return authenticator.Principal{}, fmt.Errorf("%w: inactive user", authenticator.ErrUnauthenticated)
	}

	return authenticator.Principal{Identity: user.Email, Role: user.Role, Active: true}, nil
}

// Register creates an active account with the default role. The password is
// stored only as a bcrypt digest. store.ErrUserExists is returned unchanged
// for a taken address.
func (a *Authenticator) Register(ctx context.Context, email, password string) (model.User, error) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return model.User{}, fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	if password == "" || len(password) > maxPasswordBytes {
		return model.User{}, fmt.Errorf("%w: must be 1 to %d bytes", ErrInvalidPassword, maxPasswordBytes)
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := model.User{
		ID:             uuid.New(),
		Email:          email,
		HashedPassword: string(digest),
		Active:         true,
		Role:           model.DefaultRole,
		CreatedAt:      a.now().UTC().Truncate(time.Microsecond),
	}
	if err := a.users.CreateUser(ctx, user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// Status reports store connectivity when the users store can check it.
func (a *Authenticator) Status(ctx context.Context) error {
	if h, ok := a.users.(store.HealthStore); ok {
		return h.CheckConnectivity(ctx)
	}
	return nil
}
