package endpoints

import (
	"net/http"
	"os"
	"sort"

	"github.com/Sridhar-Quarlets/model-registry/pkg/authenticator"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server/store"
)

// StatusResponse is returned by GET /
type StatusResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// AuthenticatorsResponse represents the response from /authenticators
type AuthenticatorsResponse struct {
	Installed []string `json:"installed"`
	Enabled   []string `json:"enabled"`
}

// RegisterStatusEndpoints registers the status and health endpoints
func RegisterStatusEndpoints(s *server.Server) {
	// GET / - Service banner (no auth required)
	s.Router.HandleFunc("/", handleStatus()).Methods("GET")

	// GET /health - Store connectivity (no auth required)
	s.Router.HandleFunc("/health", handleHealth(s.HealthStore)).Methods("GET")

	// GET /authenticators - Installed and healthy authenticators (no auth required)
	s.Router.HandleFunc("/authenticators", handleAuthenticators(s.Passwords, s.Tokens)).Methods("GET")
}

func handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version := os.Getenv("MODEL_REGISTRY_VERSION")
		if version == "" {
			version = "1.0.0"
		}
		respondWithJSON(w, http.StatusOK, StatusResponse{
			Message: "Quarlets Model Registry API",
			Version: version,
		})
	}
}

func handleHealth(healthStore store.HealthStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := healthStore.CheckConnectivity(r.Context()); err != nil {
			respondWithJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status: "unhealthy",
				Error:  "database connectivity check failed",
			})
			return
		}
		respondWithJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
	}
}

func handleAuthenticators(authenticators ...authenticator.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := AuthenticatorsResponse{Installed: []string{}, Enabled: []string{}}
		for _, a := range authenticators {
			response.Installed = append(response.Installed, a.Name())
			if a.Status(r.Context()) == nil {
				response.Enabled = append(response.Enabled, a.Name())
			}
		}

		// Sort for consistent output
		sort.Strings(response.Installed)
		sort.Strings(response.Enabled)

		respondWithJSON(w, http.StatusOK, response)
	}
}
