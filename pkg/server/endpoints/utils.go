package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Sridhar-Quarlets/model-registry/pkg/authenticator"
	"github.com/Sridhar-Quarlets/model-registry/pkg/config"
	"github.com/Sridhar-Quarlets/model-registry/pkg/identity"
	"github.com/Sridhar-Quarlets/model-registry/pkg/model"
	"github.com/Sridhar-Quarlets/model-registry/pkg/policy"
	"github.com/Sridhar-Quarlets/model-registry/pkg/registry"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server/store"
)

// Request bodies larger than this are rejected.
const maxBodyBytes = 1 << 20

// MessageResponse is returned by operations that have no entity to show.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorBody is the payload under "error" in every error response.
type ErrorBody struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func respondWithError(w http.ResponseWriter, code int, payload interface{}) {
	respondWithJSON(w, code, map[string]interface{}{"error": payload})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func respondWithMessage(w http.ResponseWriter, code int, message string) {
	respondWithError(w, code, ErrorBody{Message: message})
}

// respondWithServiceError maps a service error onto a status code. notFound
// is the message used for a 404. Unexpected errors are logged and answered
// with a generic body.
func respondWithServiceError(w http.ResponseWriter, log zerolog.Logger, err error, notFound string) {
	var verr *registry.ValidationError
	switch {
	case errors.As(err, &verr):
		respondWithError(w, http.StatusBadRequest, ErrorBody{Message: verr.Message, Field: verr.Field})
	case errors.Is(err, registry.ErrNotFound), errors.Is(err, policy.ErrNotFound):
		respondWithMessage(w, http.StatusNotFound, notFound)
	case errors.Is(err, authenticator.ErrUnauthenticated):
		w.Header().Set("WWW-Authenticate", "Bearer")
		respondWithMessage(w, http.StatusUnauthorized, "Could not validate credentials")
	case errors.Is(err, store.ErrUserExists):
		respondWithMessage(w, http.StatusBadRequest, "Email already registered")
	default:
		log.Error().Err(err).Msg("request failed")
		respondWithMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSON reads a single JSON value from the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return &registry.ValidationError{Field: "body", Message: "request body is required"}
		}
		return &registry.ValidationError{Field: "body", Message: fmt.Sprintf("malformed JSON: %v", err)}
	}
	return nil
}

// pathID parses the {id} path variable. Routes constrain it to UUID syntax.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, &registry.ValidationError{Field: "id", Message: "must be a UUID"}
	}
	return id, nil
}

// principal returns the login of the authenticated caller.
func principal(r *http.Request) string {
	return identity.Login(r.Context())
}

// clientIP returns the caller address recorded by the bearer middleware.
func clientIP(r *http.Request) string {
	if id, ok := identity.Get(r.Context()); ok {
		return id.ClientIP()
	}
	return ""
}

// queryString returns the named query parameter, nil when absent or empty.
func queryString(r *http.Request, name string) *string {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil
	}
	return &v
}

func queryModelType(r *http.Request) (*model.ModelType, error) {
	raw := queryString(r, "model_type")
	if raw == nil {
		return nil, nil
	}
	mt, err := model.ModelTypeString(*raw)
	if err != nil {
		return nil, &registry.ValidationError{Field: "model_type", Message: fmt.Sprintf("unknown model type %q", *raw)}
	}
	return &mt, nil
}

func queryStatus(r *http.Request, name string) (*model.Status, error) {
	raw := queryString(r, name)
	if raw == nil {
		return nil, nil
	}
	s, err := model.StatusString(*raw)
	if err != nil {
		return nil, &registry.ValidationError{Field: name, Message: fmt.Sprintf("unknown status %q", *raw)}
	}
	return &s, nil
}

// paging reads page and size, applying the configured default and bound.
func paging(r *http.Request, cfg *config.RegistryConfig) (int, int, error) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		return 0, 0, err
	}
	size, err := queryInt(r, "size", cfg.ListPageSizeDefault)
	if err != nil {
		return 0, 0, err
	}
	if page < 1 {
		return 0, 0, &registry.ValidationError{Field: "page", Message: "must be at least 1"}
	}
	if size < 1 || size > cfg.ListPageSizeMax {
		return 0, 0, &registry.ValidationError{Field: "size", Message: fmt.Sprintf("must be between 1 and %d", cfg.ListPageSizeMax)}
	}
	return page, size, nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &registry.ValidationError{Field: name, Message: "must be an integer"}
	}
	return v, nil
}
