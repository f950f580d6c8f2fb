package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Sridhar-Quarlets/model-registry/pkg/authenticator"
	"github.com/Sridhar-Quarlets/model-registry/pkg/identity"
)

// MockResolver implements authenticator.Resolver for testing using testify/mock
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, token string) (authenticator.Principal, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(authenticator.Principal), args.Error(1)
}

func rejectHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Message
}

func TestMiddleware_MissingAuthorization(t *testing.T) {
	auth := NewJWTAuthenticator(&MockResolver{}, zerolog.Nop())
	handler := auth.Middleware(rejectHandler(t))

	req := httptest.NewRequest("GET", "/models", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	assert.Equal(t, "Not authenticated", errorMessage(t, rec))
}

func TestMiddleware_MalformedAuthorizationHeader(t *testing.T) {
	resolver := &MockResolver{}
	auth := NewJWTAuthenticator(resolver, zerolog.Nop())
	handler := auth.Middleware(rejectHandler(t))

	tests := []struct {
		name   string
		header string
	}{
		{"basic auth", "Basic dXNlcjpwYXNz"},
		{"token scheme", `Token token="abc"`},
		{"bearer without token", "Bearer "},
		{"random string", "something random"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/models", nil)
			req.Header.Set("Authorization", tt.header)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
		})
	}
	resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
}

func TestMiddleware_RejectedToken(t *testing.T) {
	resolver := &MockResolver{}
	resolver.On("Resolve", mock.Anything, "expired").
		Return(authenticator.Principal{}, authenticator.ErrUnauthenticated)
	auth := NewJWTAuthenticator(resolver, zerolog.Nop())

	req := httptest.NewRequest("GET", "/models", nil)
	req.Header.Set("Authorization", "Bearer expired")
	rec := httptest.NewRecorder()
	auth.Middleware(rejectHandler(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Could not validate credentials", errorMessage(t, rec))
	resolver.AssertExpectations(t)
}

func TestMiddleware_ResolverFailure(t *testing.T) {
	resolver := &MockResolver{}
	resolver.On("Resolve", mock.Anything, "tok").
		Return(authenticator.Principal{}, errors.New("connection refused"))
	auth := NewJWTAuthenticator(resolver, zerolog.Nop())

	req := httptest.NewRequest("GET", "/models", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	auth.Middleware(rejectHandler(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestMiddleware_ValidToken(t *testing.T) {
	resolver := &MockResolver{}
	resolver.On("Resolve", mock.Anything, "good-token").
		Return(authenticator.Principal{Identity: "alice@example.com", Role: "consumer", Active: true}, nil)
	auth := NewJWTAuthenticator(resolver, zerolog.Nop())

	var got *identity.Identity
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = identity.Get(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest("GET", "/models", nil)
	req.Header.Set("Authorization", "bearer good-token")
	req.RemoteAddr = "192.0.2.10:54321"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "alice@example.com", got.Login)
	assert.Equal(t, "consumer", got.Role)
	assert.Equal(t, "192.0.2.10", got.ClientIP())
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name      string
		remote    string
		forwarded string
		expected  net.IP
	}{
		{"remote with port", "192.0.2.1:1234", "", net.ParseIP("192.0.2.1")},
		{"remote without port", "192.0.2.1", "", net.ParseIP("192.0.2.1")},
		{"forwarded chain", "10.0.0.1:1234", "203.0.113.5, 10.0.0.1", net.ParseIP("203.0.113.5")},
		{"bad forwarded header", "10.0.0.1:1234", "unknown", net.ParseIP("10.0.0.1")},
		{"unparsable", "pipe", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.True(t, tt.expected.Equal(ClientIP(req)), "got %v", ClientIP(req))
		})
	}
}
