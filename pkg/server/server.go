package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Sridhar-Quarlets/model-registry/pkg/audit"
	"github.com/Sridhar-Quarlets/model-registry/pkg/authenticator/authn"
	"github.com/Sridhar-Quarlets/model-registry/pkg/authenticator/authn_jwt"
	"github.com/Sridhar-Quarlets/model-registry/pkg/config"
	"github.com/Sridhar-Quarlets/model-registry/pkg/policy"
	"github.com/Sridhar-Quarlets/model-registry/pkg/registry"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server/middleware"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server/store"
)

// Stores groups the persistence backends a Server is wired to.
type Stores struct {
	Entries  store.EntriesStore
	Users    store.UsersStore
	Policies store.PoliciesStore
	Health   store.HealthStore
}

type Server struct {
	Config   *config.RegistryConfig
	Router   *mux.Router
	Log      zerolog.Logger
	Registry *registry.Service
	Policies *policy.Service

	UsersStore    store.UsersStore
	PoliciesStore store.PoliciesStore
	HealthStore   store.HealthStore

	Passwords     *authn.Authenticator
	Tokens        *authn_jwt.Authenticator
	JWTMiddleware *middleware.JWTAuthenticator
	Auditor       *audit.Auditor

	entries store.EntriesStore
	srv     *http.Server
}

// Option customizes a Server.
type Option func(*Server)

// WithAccessLog sends the combined access log to w instead of stdout.
func WithAccessLog(w io.Writer) Option {
	return func(s *Server) {
		s.srv.Handler = s.handler(w)
	}
}

// WithRegistryOptions passes opts to the registry service.
func WithRegistryOptions(opts ...registry.Option) Option {
	return func(s *Server) {
		s.Registry = registry.NewService(s.entries, append([]registry.Option{registry.WithLogger(s.Log)}, opts...)...)
	}
}

func NewServer(
	cfg *config.RegistryConfig,
	stores Stores,
	auditor *audit.Auditor,
	log zerolog.Logger,
	host string,
	port string,
	opts ...Option,
) (*Server, error) {
	tokens, err := authn_jwt.New(stores.Users, authn_jwt.ConfigFrom(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to configure token authenticator: %w", err)
	}

	router := mux.NewRouter().UseEncodedPath()
	router.Use(middleware.Recovery(log))

	s := &Server{
		Config:        cfg,
		Router:        router,
		Log:           log,
		Registry:      registry.NewService(stores.Entries, registry.WithLogger(log)),
		Policies:      policy.NewService(stores.Policies),
		UsersStore:    stores.Users,
		PoliciesStore: stores.Policies,
		HealthStore:   stores.Health,
		Passwords:     authn.New(stores.Users),
		Tokens:        tokens,
		JWTMiddleware: middleware.NewJWTAuthenticator(tokens, log),
		Auditor:       auditor,
		entries:       stores.Entries,
	}
	s.srv = &http.Server{
		Addr: net.JoinHostPort(host, port),
		// Good practice: enforce timeouts for servers you create!
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	s.srv.Handler = s.handler(os.Stdout)

	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// handler wraps the router with CORS and access logging.
func (s *Server) handler(accessLog io.Writer) http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins(s.Config.AllowedHosts),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)
	return handlers.LoggingHandler(accessLog, cors(s.Router))
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.srv.Addr
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// StartWithListener serves on an already bound listener.
func (s *Server) StartWithListener(l net.Listener) error {
	return s.srv.Serve(l)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
