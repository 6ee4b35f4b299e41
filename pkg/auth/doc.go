// Package auth owns user accounts and the ways a request becomes
// authenticated.
//
// PasswordService signs users up and in with a username and password hashed
// by pkg/password. FederationService runs the OAuth2 authorization code flow
// with PKCE against a ProviderAdapter (Google via OpenID Connect discovery)
// and provisions first-time users in a single transaction together with
// their registration in the downstream chat service. Both end by creating a
// session through pkg/session.
//
// Resolver turns the session cookie on a request into an Identity, at most
// once per request:
//
//	r.Use(resolver.Middleware)
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//		id, err := auth.CurrentIdentity(r.Context())
//		if err != nil {
//			// storage failure
//		}
//		if !id.Authenticated() {
//			// anonymous
//		}
//	}
//
// Errors returned to callers are the sentinels in errors.go; conflicts wrap
// ErrConflict so both the generic and the field-specific check work with
// errors.Is.
package auth
