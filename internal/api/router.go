package api

import (
	"credit-api/internal/api/handler"
	mw "credit-api/internal/api/middleware"
	"credit-api/internal/config"
	"credit-api/internal/domain/credit"
	"credit-api/internal/domain/customer"
	"log/slog"
	"net/http"
	"time"

	_ "credit-api/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker func(r *http.Request) error

func SetupRouter(
	customerService customer.CustomerService,
	creditService credit.CreditService,
	rateLimiter *mw.RateLimiterMiddleware,
	health HealthChecker,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, rateLimiter, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupAuthRoutes(router, cfg, customerService, logger)
	setupCustomerRoutes(router, cfg, customerService, logger)
	setupCreditRoutes(router, cfg, creditService, logger)
	router.Get("/health", healthHandler(health, logger))
	setupSwaggerEndpoint(router, logger)

	return router
}

func setupMiddleware(router *chi.Mux, rateLimiter *mw.RateLimiterMiddleware, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(60 * time.Second))
	if rateLimiter != nil {
		router.Use(rateLimiter.Middleware)
	}
	router.Use(mw.MetricsMiddleware())
}

func healthHandler(check HealthChecker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if check != nil {
			if err := check(r); err != nil {
				logger.WarnContext(r.Context(), "Health check failed", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupAuthRoutes(router *chi.Mux, cfg *config.Config, svc customer.CustomerService, logger *slog.Logger) {
	authHandler := handler.NewAuthHandler(cfg.Server.Auth, svc, logger)
	router.Route("/auth", func(r chi.Router) {
		r.Post("/token", authHandler.GenerateBearerToken)
	})
}

func setupCustomerRoutes(router *chi.Mux, cfg *config.Config, svc customer.CustomerService, logger *slog.Logger) {
	h := handler.NewCustomerHandler(svc, logger)

	router.Route("/customers", func(r chi.Router) {
		// Registration stays public so a new customer can obtain a token.
		r.Post("/", h.CreateCustomer)
		r.Group(func(r chi.Router) {
			r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
			r.Route("/{customerID}", func(r chi.Router) {
				r.Get("/", h.GetCustomer)
				r.Patch("/", h.UpdateCustomer)
				r.Delete("/", h.DeleteCustomer)
			})
		})
	})
}

func setupCreditRoutes(router *chi.Mux, cfg *config.Config, svc credit.CreditService, logger *slog.Logger) {
	h := handler.NewCreditHandler(svc, logger)

	router.Route("/credits", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/", h.CreateCredit)
		r.Get("/", h.ListCredits)
		r.Get("/{creditCode}", h.GetCredit)
	})
}
