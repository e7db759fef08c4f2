package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes builds the HTTP router for the API.
func (h *Handler) Routes(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/players", func(r chi.Router) {
			r.Get("/", h.ListPlayers)
			r.Post("/", h.CreatePlayer)
			r.Post("/aliases", h.CreateAlias)
			r.Get("/{id}", h.GetPlayer)
			r.Patch("/{id}", h.UpdatePlayer)
			r.Delete("/{id}", h.DeletePlayer)
		})

		r.Route("/matches", func(r chi.Router) {
			r.Get("/", h.ListMatches)
			r.Post("/analyze", h.AnalyzeMatch)
			r.Get("/{id}/predictions", h.GetMatchPredictions)
			r.Post("/{id}/outcome", h.RecordOutcome)
		})

		r.Post("/predictions/preview", h.PreviewPrediction)
		r.Post("/predictions/{id}/feedback", h.SubmitFeedback)

		r.Route("/model-weights", func(r chi.Router) {
			r.Get("/", h.ListModelWeights)
			r.Post("/", h.CreateModelWeights)
			r.Post("/{id}/activate", h.ActivateModelWeights)
		})

		r.Get("/compliance", h.ListCompliance)
		r.Post("/compliance", h.CreateCompliance)

		r.Get("/accuracy", h.GetAccuracy)
		r.Get("/accuracy/trend", h.GetAccuracyTrend)

		r.Get("/datasource", h.GetDataSource)
		r.Post("/datasource", h.SwitchDataSource)

		r.Post("/system/install", h.InstallSchema)
	})

	return r
}
