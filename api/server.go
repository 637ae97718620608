/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions. This is
  the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the frontend

STATIC FILE SERVING:
  When a static dir is configured, serves the built frontend with an
  index.html fallback for client-side routing.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig carries the router-level options.
type RouterConfig struct {
	CORSOrigins []string
	// StaticDir serves the built frontend when non-empty.
	StaticDir string
}

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/clients", func(r chi.Router) {
			r.Get("/", h.ListClients)
			r.Post("/", h.CreateClient)
			r.Get("/{id}", h.GetClient)
			r.Put("/{id}", h.UpdateClient)
			r.Delete("/{id}", h.DeleteClient)
			r.Post("/{id}/bulk-schedule", h.BulkSchedule)
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", h.ListJobs)
			r.Post("/", h.ScheduleJob)
			r.Delete("/{id}", h.DeleteJob)
			r.Put("/{id}/status", h.SetJobStatus)
			r.Put("/{id}/amount", h.SetJobAmount)
			r.Put("/{id}/time", h.SetJobTime)
			r.Post("/{id}/paid", h.ToggleJobPaid)
			r.Post("/{id}/tithe-paid", h.ToggleTithePaid)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.GetSettings)
			r.Put("/", h.UpdateSettings)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/dashboard", h.Dashboard)
			r.Get("/range", h.RangeReport)
			r.Get("/forecast", h.Forecast)
			r.Get("/tithing", h.Tithing)
		})

		r.Get("/export", h.Export)
		r.Post("/import", h.Import)
		r.Post("/reset", h.Reset)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})
	})

	if cfg.StaticDir != "" {
		serveStatic(r, cfg.StaticDir)
	}

	return r
}

// serveStatic serves files from dir with an index.html fallback so
// client-side routes resolve.
func serveStatic(r *chi.Mux, dir string) {
	fs := http.FileServer(http.Dir(dir))
	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		path := filepath.Join(dir, filepath.Clean(req.URL.Path))
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			http.ServeFile(w, req, filepath.Join(dir, "index.html"))
			return
		}
		fs.ServeHTTP(w, req)
	})
}
