// Package middleware holds the gorilla/mux middlewares shared by all routes:
// bearer token authentication and panic recovery.
package middleware
