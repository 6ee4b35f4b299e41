// Package session issues and validates opaque server-side sessions.
//
// A session token is 32 random bytes, base64url encoded, and travels only in
// the session cookie. Stores never see it: rows are keyed by the SHA-256 of
// the token, so a leaked sessions table cannot be replayed as cookies.
//
// Sessions use a sliding window. Each successful [Manager.Validate] checks the
// remaining lifetime and, once less than half of Config.Lifetime is left,
// pushes ExpiresAt to now+Lifetime and marks the session Fresh so the caller
// reissues the cookie. Expired sessions are deleted when they are found.
//
// Three stores are provided: [MemoryStore] for tests and single-process use,
// [PostgresStore] backed by the sessions table, and [RedisStore] that lets
// Redis expire keys on its own.
//
//	mgr := session.New(
//		session.WithStore(session.NewPostgresStore(pool)),
//		session.WithCookieManager(cookies),
//		session.WithConfig(cfg),
//		session.WithLogger(log),
//	)
//
//	token, sess, err := mgr.Create(ctx, userID)
//	mgr.Issue(w, token)
package session
