// Package identity carries the authenticated caller of a request through its
// context.
//
// The bearer middleware resolves a token to an [authenticator.Principal],
// wraps it in an Identity together with the client address and stores it:
//
//	id := identity.FromPrincipal(principal).WithRemoteIP(clientIP)
//	ctx = identity.Set(ctx, id)
//
// Handlers read it back to attribute writes:
//
//	id, ok := identity.Get(ctx)
package identity
