// Package guard provides route protection driven by the auth state machine.
//
// RequireAuth is standard net/http middleware, composable with chi:
//
//	r := chi.NewRouter()
//	r.Use(guard.RequireAuth(mgr, guard.WithSignInPath("/signin")))
//
// Unauthenticated requests are redirected to the sign-in surface with the
// original target preserved in a return_to parameter; requests arriving
// before the initial session fetch resolves pass through to avoid redirect
// flicker. Handlers behind the guard read the user with UserFromContext.
package guard
