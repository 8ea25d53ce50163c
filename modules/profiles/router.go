package profiles

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kingsocial/authkit/pkg/guard"
)

// Option configures the profiles router.
type Option func(*handlers)

// WithLogger sets the logger used for storage failures. Defaults to a
// discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *handlers) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewRouter builds the profile CRUD routes. Every route sits behind the auth
// guard: unauthenticated requests are redirected to the sign-in surface
// before any handler runs.
func NewRouter(storage Storage, states guard.StateSource, opts ...Option) http.Handler {
	h := &handlers{
		storage: storage,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}

	r := chi.NewRouter()
	r.Use(guard.RequireAuth(states))

	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/me", h.me)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)

	return r
}
