// Package mocks provides shared test doubles for the store and auth
// interfaces.
//
// Store mocks keep their data in memory so a service can be exercised end to
// end without a database. Every method can be overridden with a function
// field when a test needs a specific result:
//
//	sessions := mocks.NewSessionStore()
//	sessions.UpdateFn = func(ctx context.Context, s *domain.Session) error {
//	    return store.ErrSessionNotFound
//	}
//
// WithTx returns the receiver, so writes made inside a transaction are
// visible immediately and are not undone on rollback.
package mocks
