package identity

import (
	"context"
	"net"
	"time"

	"github.com/Sridhar-Quarlets/model-registry/pkg/authenticator"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// Key is the context key for Identity.
	Key ContextKey = "identity"
)

// Identity represents the authenticated identity for a request.
// It combines the resolved principal with request-specific context.
type Identity struct {
	// Principal claims
	Login     string
	Role      string
	ExpiresAt time.Time

	// Request context
	RemoteIP net.IP
}

// FromPrincipal creates an Identity from a resolved principal.
func FromPrincipal(p authenticator.Principal) *Identity {
	return &Identity{
		Login:     p.Identity,
		Role:      p.Role,
		ExpiresAt: p.ExpiresAt,
	}
}

// WithRemoteIP sets the remote IP address.
func (i *Identity) WithRemoteIP(ip net.IP) *Identity {
	i.RemoteIP = ip
	return i
}

// ClientIP renders RemoteIP for audit records, empty when unknown.
func (i *Identity) ClientIP() string {
	if i.RemoteIP == nil {
		return ""
	}
	return i.RemoteIP.String()
}

// Get retrieves Identity from context.
func Get(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(Key).(*Identity)
	return id, ok
}

// Set stores Identity in context.
func Set(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, Key, id)
}

// Login returns the login of the identity in ctx, empty when unauthenticated.
func Login(ctx context.Context) string {
	if id, ok := Get(ctx); ok {
		return id.Login
	}
	return ""
}
