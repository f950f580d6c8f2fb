package middleware

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Sridhar-Quarlets/model-registry/pkg/authenticator"
	"github.com/Sridhar-Quarlets/model-registry/pkg/identity"
)

var bearerRegex = regexp.MustCompile(`^(?i:bearer) +(\S+)$`)

// JWTAuthenticator is middleware that resolves bearer tokens to an identity
type JWTAuthenticator struct {
	Resolver authenticator.Resolver
	Log      zerolog.Logger
}

// NewJWTAuthenticator creates a new bearer token middleware
func NewJWTAuthenticator(resolver authenticator.Resolver, log zerolog.Logger) *JWTAuthenticator {
	return &JWTAuthenticator{Resolver: resolver, Log: log}
}

// Middleware returns an HTTP middleware that requires a valid bearer token
// and stores the resolved identity in the request context.
func (j *JWTAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w, "Not authenticated")
			return
		}

		tokenMatches := bearerRegex.FindStringSubmatch(authHeader)
		if len(tokenMatches) != 2 {
			unauthorized(w, "Could not validate credentials")
			return
		}

		principal, err := j.Resolver.Resolve(r.Context(), tokenMatches[1])
		if err != nil {
			if errors.Is(err, authenticator.ErrUnauthenticated) {
				unauthorized(w, "Could not validate credentials")
				return
			}
			j.Log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to resolve bearer token")
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		id := identity.FromPrincipal(principal).WithRemoteIP(ClientIP(r))
		next.ServeHTTP(w, r.WithContext(identity.Set(r.Context(), id)))
	})
}

// ClientIP returns the first X-Forwarded-For address, falling back to the
// connection's remote address. It returns nil when neither parses.
func ClientIP(r *http.Request) net.IP {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if ip := net.ParseIP(first); ip != nil {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return net.ParseIP(host)
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, message)
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{"message": message},
	})
}
