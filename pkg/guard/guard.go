package guard

import (
	"net/http"
	"net/url"

	"github.com/kingsocial/authkit/pkg/authstate"
)

const (
	defaultSignInPath  = "/signin"
	defaultReturnParam = "return_to"
)

// StateSource supplies the current auth state. *session.Manager satisfies it.
type StateSource interface {
	State() authstate.State
}

// Config tunes the guard's redirect behavior.
type Config struct {
	SignInPath  string // where unauthenticated requests are sent; defaults to /signin
	ReturnParam string // query parameter carrying the original target; defaults to return_to
}

// Option configures the guard.
type Option func(*Config)

// WithSignInPath overrides the sign-in surface unauthenticated requests are
// redirected to.
func WithSignInPath(path string) Option {
	return func(c *Config) {
		c.SignInPath = path
	}
}

// WithReturnParam overrides the query parameter name that preserves the
// original target path across the redirect.
func WithReturnParam(name string) Option {
	return func(c *Config) {
		c.ReturnParam = name
	}
}

// RequireAuth redirects unauthenticated requests to the sign-in surface,
// preserving the original target as a return-to parameter. While the state
// is still idle or loading the request passes through untouched — redirecting
// before the initial session fetch resolves would bounce users who are in
// fact signed in. Authenticated requests get the user injected into their
// context.
func RequireAuth(states StateSource, opts ...Option) func(next http.Handler) http.Handler {
	cfg := Config{SignInPath: defaultSignInPath, ReturnParam: defaultReturnParam}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st := states.State()
			switch st.Status {
			case authstate.StatusAuthenticated:
				next.ServeHTTP(w, r.WithContext(SetUser(r.Context(), st.User)))
			case authstate.StatusIdle, authstate.StatusLoading:
				next.ServeHTTP(w, r)
			default:
				target := r.URL.Path
				if r.URL.RawQuery != "" {
					target += "?" + r.URL.RawQuery
				}
				q := url.Values{cfg.ReturnParam: {target}}
				http.Redirect(w, r, cfg.SignInPath+"?"+q.Encode(), http.StatusFound)
			}
		})
	}
}
