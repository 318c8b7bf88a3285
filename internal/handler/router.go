package handler

import (
	"net/http"

	"github.com/boddenberg/masrofi-bfa-go/internal/infra/observability"
	"github.com/boddenberg/masrofi-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// statusSvc may be nil, in which case the status routes answer 503.
func NewRouter(advisor *service.Advisor, statusSvc *service.StatusService, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	var probe *storeProbe
	if statusSvc != nil {
		probe = newStoreProbe(statusSvc, logger)
	}

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(advisor, probe))
	r.Get("/readyz", readyzHandler(probe))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API ---
	r.Route("/api", func(r chi.Router) {
		r.Get("/", rootHandler())

		r.Post("/ai/analyze", analyzeHandler(advisor, logger))
		r.Post("/ai/tips", tipsHandler(advisor, logger))

		r.Post("/status", createStatusHandler(statusSvc, logger))
		r.Get("/status", listStatusHandler(statusSvc, logger))

		r.Get("/metrics/ai", aiMetricsHandler(metrics))
	})

	return r
}
