package httpserver

import (
	"context"
	"net/http"
	"time"
)

// HealthFunc probes one dependency. Non-nil means unhealthy.
type HealthFunc func(context.Context) error

// HealthHandler runs the given probes and reports 200 when all pass, 503
// otherwise. Each probe gets a bounded slice of the request context.
func HealthHandler(probes map[string]HealthFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		for name, probe := range probes {
			if err := probe(ctx); err != nil {
				http.Error(w, name+": unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}
