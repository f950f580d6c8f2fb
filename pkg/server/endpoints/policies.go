package endpoints

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Sridhar-Quarlets/model-registry/pkg/audit"
	"github.com/Sridhar-Quarlets/model-registry/pkg/model"
	"github.com/Sridhar-Quarlets/model-registry/pkg/policy"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server"
)

// PolicyListResponse is returned by GET /policies
type PolicyListResponse struct {
	Policies []model.AccessPolicy `json:"policies"`
}

// RegisterPoliciesEndpoints registers the access policy endpoints
func RegisterPoliciesEndpoints(s *server.Server) {
	policiesRouter := s.Router.PathPrefix("/policies").Subrouter()
	policiesRouter.Use(s.JWTMiddleware.Middleware)

	// POST /policies - Create a policy
	policiesRouter.HandleFunc("", handleCreatePolicy(s.Policies, s.Auditor, s.Log)).Methods("POST")

	// GET /policies - List policies, newest first
	policiesRouter.HandleFunc("", handleListPolicies(s.Policies, s.Log)).Methods("GET")

	// GET /policies/{id} - Fetch one policy
	policiesRouter.HandleFunc("/{id:"+uuidPattern+"}", handleGetPolicy(s.Policies, s.Log)).Methods("GET")
}

func handleCreatePolicy(svc *policy.Service, auditor *audit.Auditor, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		event := audit.PolicyEvent{User: principal(r), ClientIP: clientIP(r)}

		var doc policy.Document
		if err := decodeJSON(w, r, &doc); err != nil {
			event.ErrorMessage = failure(err)
			auditor.Log(event)
			respondWithServiceError(w, log, err, "")
			return
		}
		event.PolicyName = doc.Name

		created, err := svc.Create(r.Context(), doc, principal(r))
		if err != nil {
			event.ErrorMessage = failure(err)
			auditor.Log(event)
			respondWithServiceError(w, log, err, "")
			return
		}

		event.PolicyID = created.ID.String()
		event.Success = true
		auditor.Log(event)
		respondWithJSON(w, http.StatusCreated, created)
	}
}

func handleListPolicies(svc *policy.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		policies, err := svc.List(r.Context())
		if err != nil {
			respondWithServiceError(w, log, err, "")
			return
		}
		respondWithJSON(w, http.StatusOK, PolicyListResponse{Policies: policies})
	}
}

func handleGetPolicy(svc *policy.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondWithServiceError(w, log, err, "")
			return
		}

		p, err := svc.Get(r.Context(), id)
		if err != nil {
			respondWithServiceError(w, log, err, "Policy not found")
			return
		}
		respondWithJSON(w, http.StatusOK, p)
	}
}
