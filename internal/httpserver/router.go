package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"hof-narrator/internal/handlers"
	"hof-narrator/internal/metrics"
	"hof-narrator/internal/middleware"
)

func SetupRouter(r *chi.Mux, baseLogger *zap.Logger, hofHandler *handlers.HallOfFameHandler) {

	r.Use(metrics.Middleware)

	// base middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)

	r.Use(middleware.LoggingContext(baseLogger))
	r.Use(middleware.Recoverer())               // panic recovery
	r.Use(middleware.Timeout(60 * time.Second)) // covers search + completion round-trips
	r.Use(middleware.MaxBodySize(64 * 1024))    // 64 KB max body

	// routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/hall-of-fame-narrative", hofHandler.Report)
		r.Post("/hall-of-fame-narrative", hofHandler.Generate)
	})

	// health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/metrics", metrics.Handler())
}
