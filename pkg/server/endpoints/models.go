package endpoints

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Sridhar-Quarlets/model-registry/pkg/audit"
	"github.com/Sridhar-Quarlets/model-registry/pkg/config"
	"github.com/Sridhar-Quarlets/model-registry/pkg/registry"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server"
)

// uuidPattern constrains {id} so that /models/latest and /models/search are
// never captured as identifiers.
const uuidPattern = "[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}"

// RegisterModelsEndpoints registers the registry entry endpoints
func RegisterModelsEndpoints(s *server.Server) {
	svc := s.Registry
	auditor := s.Auditor
	log := s.Log
	cfg := s.Config

	modelsRouter := s.Router.PathPrefix("/models").Subrouter()
	modelsRouter.Use(s.JWTMiddleware.Middleware)

	// POST /models/register - Register a new entry
	modelsRouter.HandleFunc("/register", handleRegisterModel(svc, auditor, log)).Methods("POST")

	// GET /models - List entries
	modelsRouter.HandleFunc("", handleListModels(svc, cfg, log)).Methods("GET")
	modelsRouter.HandleFunc("/", handleListModels(svc, cfg, log)).Methods("GET")

	// GET /models/search?q= - Free-text search
	modelsRouter.HandleFunc("/search", handleSearchModels(svc, cfg, log)).Methods("GET")

	// GET /models/latest - Latest production entry
	modelsRouter.HandleFunc("/latest", handleLatestModel(svc, log)).Methods("GET")

	// POST /models/promote/{id}?target_status= - Change lifecycle status
	modelsRouter.HandleFunc("/promote/{id:"+uuidPattern+"}", handlePromoteModel(svc, auditor, log)).Methods("POST")

	// GET|PUT|DELETE /models/{id}
	modelsRouter.HandleFunc("/{id:"+uuidPattern+"}", handleGetModel(svc, log)).Methods("GET")
	modelsRouter.HandleFunc("/{id:"+uuidPattern+"}", handleUpdateModel(svc, auditor, log)).Methods("PUT")
	modelsRouter.HandleFunc("/{id:"+uuidPattern+"}", handleDeleteModel(svc, auditor, log)).Methods("DELETE")
}

// failure renders err for the audit trail.
func failure(err error) string {
	var verr *registry.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, registry.ErrNotFound):
		return "model not found"
	default:
		return "internal error"
	}
}

func handleRegisterModel(svc *registry.Service, auditor *audit.Auditor, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft registry.Draft
		err := decodeJSON(w, r, &draft)

		event := audit.EntryEvent{
			User:      principal(r),
			ClientIP:  clientIP(r),
			Operation: audit.OperationRegister,
		}
		if draft.ModelName != "" {
			event.Detail = draft.ModelName + " " + draft.Version
		}
		if err != nil {
			event.ErrorMessage = failure(err)
			auditor.Log(event)
			respondWithServiceError(w, log, err, "Model not found")
			return
		}

		entry, err := svc.Register(r.Context(), draft, principal(r))
		if err != nil {
			event.ErrorMessage = failure(err)
			auditor.Log(event)
			respondWithServiceError(w, log, err, "Model not found")
			return
		}

		event.EntryID = entry.ModelID.String()
		event.Success = true
		auditor.Log(event)
		respondWithJSON(w, http.StatusCreated, entry)
	}
}

func handleGetModel(svc *registry.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondWithServiceError(w, log, err, "Model not found")
			return
		}

		entry, err := svc.GetByID(r.Context(), id)
		if err != nil {
			respondWithServiceError(w, log, err, "Model not found")
			return
		}
		respondWithJSON(w, http.StatusOK, entry)
	}
}

func handleLatestModel(svc *registry.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		modelType, err := queryModelType(r)
		if err != nil {
			respondWithServiceError(w, log, err, "No models found")
			return
		}

		entry, err := svc.GetLatestProduction(r.Context(), modelType, queryString(r, "domain"))
		if err != nil {
			respondWithServiceError(w, log, err, "No models found")
			return
		}
		respondWithJSON(w, http.StatusOK, entry)
	}
}

func handleListModels(svc *registry.Service, cfg *config.RegistryConfig, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := registry.ListQuery{
			Domain: queryString(r, "domain"),
			Tags:   queryString(r, "tags"),
		}
		var err error
		if q.ModelType, err = queryModelType(r); err != nil {
			respondWithServiceError(w, log, err, "")
			return
		}
		if q.Status, err = queryStatus(r, "status"); err != nil {
			respondWithServiceError(w, log, err, "")
			return
		}
		if q.Page, q.Size, err = paging(r, cfg); err != nil {
			respondWithServiceError(w, log, err, "")
			return
		}

		page, err := svc.List(r.Context(), q)
		if err != nil {
			respondWithServiceError(w, log, err, "")
			return
		}
		respondWithJSON(w, http.StatusOK, page)
	}
}

func handleSearchModels(svc *registry.Service, cfg *config.RegistryConfig, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := registry.SearchQuery{
			Query:  r.URL.Query().Get("q"),
			Domain: queryString(r, "domain"),
		}
		var err error
		if q.ModelType, err = queryModelType(r); err != nil {
			respondWithServiceError(w, log, err, "")
			return
		}
		if q.Page, q.Size, err = paging(r, cfg); err != nil {
			respondWithServiceError(w, log, err, "")
			return
		}

		page, err := svc.Search(r.Context(), q)
		if err != nil {
			respondWithServiceError(w, log, err, "")
			return
		}
		respondWithJSON(w, http.StatusOK, page)
	}
}

func handlePromoteModel(svc *registry.Service, auditor *audit.Auditor, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		event := audit.EntryEvent{
			User:      principal(r),
			ClientIP:  clientIP(r),
			Operation: audit.OperationPromote,
		}

		id, err := pathID(r)
		if err == nil {
			event.EntryID = id.String()
		}
		target, statusErr := queryStatus(r, "target_status")
		if err == nil && statusErr != nil {
			err = statusErr
		}
		if err == nil && target == nil {
			err = &registry.ValidationError{Field: "target_status", Message: "is required"}
		}
		if err != nil {
			event.ErrorMessage = failure(err)
			auditor.Log(event)
			respondWithServiceError(w, log, err, "Model not found")
			return
		}
		event.Detail = "to " + target.String()

		if _, err := svc.Promote(r.Context(), id, *target, principal(r)); err != nil {
			event.ErrorMessage = failure(err)
			auditor.Log(event)
			respondWithServiceError(w, log, err, "Model not found")
			return
		}

		event.Success = true
		auditor.Log(event)
		respondWithJSON(w, http.StatusOK, MessageResponse{Message: fmt.Sprintf("Model promoted to %s", target.String())})
	}
}

func handleUpdateModel(svc *registry.Service, auditor *audit.Auditor, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		event := audit.EntryEvent{
			User:      principal(r),
			ClientIP:  clientIP(r),
			Operation: audit.OperationUpdate,
		}

		id, err := pathID(r)
		var patch registry.Patch
		if err == nil {
			event.EntryID = id.String()
			err = decodeJSON(w, r, &patch)
		}
		if err != nil {
			event.ErrorMessage = failure(err)
			auditor.Log(event)
			respondWithServiceError(w, log, err, "Model not found")
			return
		}

		entry, err := svc.Update(r.Context(), id, patch)
		if err != nil {
			event.ErrorMessage = failure(err)
			auditor.Log(event)
			respondWithServiceError(w, log, err, "Model not found")
			return
		}

		event.Success = true
		auditor.Log(event)
		respondWithJSON(w, http.StatusOK, entry)
	}
}

func handleDeleteModel(svc *registry.Service, auditor *audit.Auditor, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		event := audit.EntryEvent{
			User:      principal(r),
			ClientIP:  clientIP(r),
			Operation: audit.OperationDelete,
		}

		id, err := pathID(r)
		if err == nil {
			event.EntryID = id.String()
			err = svc.Delete(r.Context(), id)
		}
		if err != nil {
			event.ErrorMessage = failure(err)
			auditor.Log(event)
			respondWithServiceError(w, log, err, "Model not found")
			return
		}

		event.Success = true
		auditor.Log(event)
		respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Model deleted successfully"})
	}
}
