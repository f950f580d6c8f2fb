// Package endpoints maps HTTP requests onto the registry, policy and
// account services.
//
// Handlers decode query parameters and bodies, call exactly one service
// operation, record an audit event for every write, and translate errors:
// validation failures become 400 with the offending field, unknown
// identifiers 404, missing or rejected credentials 401, and anything else
// 500 with a generic body. Error responses have the shape
//
//	{"error": {"message": "...", "field": "..."}}
package endpoints
