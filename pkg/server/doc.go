// Package server provides the HTTP server of the model registry.
//
// A Server bundles the router, the registry service, the stores it is
// backed by, the authenticators, and the auditor. It uses gorilla/mux for
// routing; every request passes through panic recovery, CORS restricted to
// the configured allowed hosts, and a combined-format access log.
//
// # Server Setup
//
//	srv, err := server.NewServer(cfg, stores, auditor, log, "0.0.0.0", "8000")
//	if err != nil {
//	    return err
//	}
//	endpoints.RegisterAll(srv)
//	err = srv.Start()
//
// # Endpoints
//
// API endpoints are registered via the endpoints subpackage and include:
//
//   - /auth/register, /auth/token, /auth/me - accounts and bearer tokens
//   - /models/... - registration, lookup, listing, search, promotion, deletion
//   - /metrics/{id} - metrics snapshot and access recording
//   - /policies - access policy documents
//   - / and /health - liveness and store connectivity
package server
