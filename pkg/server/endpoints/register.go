package endpoints

import (
	"github.com/Sridhar-Quarlets/model-registry/pkg/server"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterStatusEndpoints(srv)
	RegisterAuthEndpoints(srv)
	RegisterModelsEndpoints(srv)
	RegisterMetricsEndpoints(srv)
	RegisterPoliciesEndpoints(srv)
}
