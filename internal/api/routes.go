package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ignite/adpulse/internal/observability"
)

// SetupRoutes configures the HTTP surface. The Prometheus handler and
// metrics middleware are skipped when obs is nil.
func SetupRoutes(h *Handlers, obs *observability.Metrics, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)
	if obs != nil {
		r.Method(http.MethodGet, "/metrics", obs.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/clients/{clientID}", func(r chi.Router) {
			r.Post("/runs", wrap(obs, "/api/clients/{clientID}/runs", h.TriggerRun))
			r.Get("/classifications", wrap(obs, "/api/clients/{clientID}/classifications", h.GetClassifications))
			r.Get("/findings", wrap(obs, "/api/clients/{clientID}/findings", h.GetFindings))

			r.Route("/creative", func(r chi.Router) {
				r.Get("/buckets", wrap(obs, "/api/clients/{clientID}/creative/buckets", h.GetCreativeBuckets))
				r.Get("/patterns", wrap(obs, "/api/clients/{clientID}/creative/patterns", h.GetCreativePatterns))
			})

			r.Get("/engine-config", wrap(obs, "/api/clients/{clientID}/engine-config", h.GetEngineConfig))
			r.Put("/engine-config", wrap(obs, "/api/clients/{clientID}/engine-config", h.PutEngineConfig))
		})
	})

	return r
}

func wrap(obs *observability.Metrics, route string, fn http.HandlerFunc) http.HandlerFunc {
	if obs == nil {
		return fn
	}
	return obs.WrapHandler(route, fn).ServeHTTP
}
