// Package authenticator defines how callers of the model registry are
// authenticated.
//
// Two authenticators are provided in subpackages:
//
//   - authn: email and password checked against a bcrypt digest - see [github.com/Sridhar-Quarlets/model-registry/pkg/authenticator/authn]
//   - authn-jwt: signed bearer tokens whose subject is the account email - see [github.com/Sridhar-Quarlets/model-registry/pkg/authenticator/authn_jwt]
//
// The password authenticator is used once, to obtain a token. Every other
// request presents the token and is resolved to a [Principal] by the
// bearer authenticator, which also implements [Resolver].
//
// Failures are reported as [ErrUnauthenticated] regardless of whether the
// account is unknown, inactive, or the secret is wrong.
package authenticator
