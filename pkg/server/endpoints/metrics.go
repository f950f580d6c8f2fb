package endpoints

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Sridhar-Quarlets/model-registry/pkg/audit"
	"github.com/Sridhar-Quarlets/model-registry/pkg/registry"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server"
)

// RegisterMetricsEndpoints registers the usage and evaluation endpoints
func RegisterMetricsEndpoints(s *server.Server) {
	metricsRouter := s.Router.PathPrefix("/metrics").Subrouter()
	metricsRouter.Use(s.JWTMiddleware.Middleware)

	// GET /metrics/{id} - Metrics snapshot
	metricsRouter.HandleFunc("/{id:"+uuidPattern+"}", handleGetMetrics(s.Registry, s.Log)).Methods("GET")

	// POST /metrics/{id}/access - Record one access
	metricsRouter.HandleFunc("/{id:"+uuidPattern+"}/access", handleRecordAccess(s.Registry, s.Auditor, s.Log)).Methods("POST")
}

func handleGetMetrics(svc *registry.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondWithServiceError(w, log, err, "Model not found")
			return
		}

		snapshot, err := svc.GetMetricsSnapshot(r.Context(), id)
		if err != nil {
			respondWithServiceError(w, log, err, "Model not found")
			return
		}
		respondWithJSON(w, http.StatusOK, snapshot)
	}
}

func handleRecordAccess(svc *registry.Service, auditor *audit.Auditor, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		event := audit.EntryEvent{
			User:      principal(r),
			ClientIP:  clientIP(r),
			Operation: audit.OperationAccess,
		}

		id, err := pathID(r)
		if err == nil {
			event.EntryID = id.String()
			err = svc.RecordAccess(r.Context(), id)
		}
		if err != nil {
			event.ErrorMessage = failure(err)
			auditor.Log(event)
			respondWithServiceError(w, log, err, "Model not found")
			return
		}

		event.Success = true
		auditor.Log(event)
		respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Access recorded"})
	}
}
