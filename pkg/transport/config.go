package transport

import "time"

// Config is the process-level configuration surface of the auth transport.
// Values are fixed for the process lifetime.
type Config struct {
	BaseURL string `env:"AUTH_BASE_URL,required"` // BaseURL is the auth service endpoint, e.g. https://project.example.co/auth/v1.
	APIKey  string `env:"AUTH_API_KEY,required"`  // APIKey is the public (anon) API key sent with every request.

	RedirectBaseURL string `env:"AUTH_REDIRECT_BASE_URL"` // RedirectBaseURL prefixes relative redirect targets for email and OAuth callbacks.

	HTTPTimeout time.Duration `env:"AUTH_HTTP_TIMEOUT" envDefault:"10s"` // HTTPTimeout bounds each request to the auth service.

	AutoRefresh   bool          `env:"AUTH_AUTO_REFRESH" envDefault:"true"`    // AutoRefresh enables background token refresh for the adopted session.
	RefreshMargin time.Duration `env:"AUTH_REFRESH_MARGIN" envDefault:"1m"`    // RefreshMargin is how long before expiry a refresh is attempted.
	StoreTTL      time.Duration `env:"AUTH_SESSION_STORE_TTL" envDefault:"0s"` // StoreTTL bounds persisted session lifetime; zero means no bound.
}

// Validate reports whether the required fields are set.
func (c Config) Validate() error {
	if c.BaseURL == "" || c.APIKey == "" {
		return ErrInvalidConfig
	}
	return nil
}

// redirectTarget resolves a redirect path against the configured base URL.
// Absolute targets pass through untouched.
func (c Config) redirectTarget(to string) string {
	if to == "" || c.RedirectBaseURL == "" {
		return to
	}
	if len(to) > 0 && to[0] == '/' {
		return c.RedirectBaseURL + to
	}
	return to
}
