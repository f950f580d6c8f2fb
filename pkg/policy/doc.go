// Package policy manages access policy documents.
//
// A policy is a named JSON object of rules that registry entries may
// reference through access_policy_id. Rules are stored as written; no
// authorization decision is derived from them.
//
// Policies arrive either as JSON over HTTP or as YAML through
// `registryctl policy load`:
//
//	name: finance-readers
//	description: Read access for the finance team
//	rules:
//	  allow:
//	    - action: read
//	      domain: finance
package policy
