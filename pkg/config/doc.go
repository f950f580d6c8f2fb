// Package config provides configuration management for the model registry.
//
// A RegistryConfig is loaded once at startup and passed explicitly to the
// server, the token issuer, the database connection and the auditor. There is
// no package-level configuration state.
//
// # Configuration Sources
//
// Values are resolved in order, later sources winning:
//
//   - Built-in defaults
//   - $MODEL_REGISTRY_CONFIG_PATH/registry.yml (default /etc/model-registry)
//   - Environment variables
//
// # Key Configuration Options
//
//   - DATABASE_URL: Catalog database connection
//   - SECRET_KEY: Bearer token signing key
//   - ALGORITHM: HS256, HS384 or HS512
//   - ACCESS_TOKEN_EXPIRE_MINUTES: Bearer token lifetime
//   - ALLOWED_HOSTS: Comma separated CORS origins
//   - LOG_LEVEL: zerolog level
//   - AUDIT_DATABASE_URL: Where audit lines are persisted
package config
