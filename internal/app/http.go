package app

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Router assembles the full HTTP surface: operational endpoints plus the
// API routes, under logging and metrics middleware.
func (a *App) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(a.metrics.Middleware)
	r.Use(func(next http.Handler) http.Handler {
		return WithRequestLogging(next, a.log)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if a.cfg.ReadinessRequireDB && a.pool != nil {
			if err := PingDB(req.Context(), a.pool, 2*time.Second); err != nil {
				a.log.Info("readyz.db.not_ready", "err", err)
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready\n"))
	})

	r.Method(http.MethodGet, "/metrics", a.metrics.Handler())

	a.handler.Routes(r)
	return r
}
