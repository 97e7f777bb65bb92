package api

import (
	"context"
	"customer-management/internal/api/handler"
	mw "customer-management/internal/api/middleware"
	"customer-management/internal/config"
	"customer-management/internal/domain/customer"
	"customer-management/internal/domain/user"
	"log/slog"
	"net/http"
	"time"

	_ "customer-management/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

const requestTimeout = 60 * time.Second

// SetupRouter builds the HTTP surface. ctx bounds background work owned by the
// middleware chain, such as the rate limiter janitor.
func SetupRouter(ctx context.Context, customerService customer.CustomerService, userService user.UserService, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(ctx, router, cfg, logger)
	setupMetricsEndpoint(router, cfg, logger)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	setupSwaggerEndpoint(router, logger)

	router.Route("/api", func(r chi.Router) {
		setupPublicRoutes(r)
		setupAuthRoutes(r, cfg, userService, logger)
		setupCustomerRoutes(r, cfg, customerService, logger)
	})

	return router
}

func setupMiddleware(ctx context.Context, router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(requestTimeout))
	router.Use(mw.NewRateLimiterMiddleware(ctx, cfg.Server.RateLimit, logger).Middleware)
	router.Use(mw.MetricsMiddleware())
	router.Use(mw.CORS(cfg.Server.CORS))
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

func setupPublicRoutes(r chi.Router) {
	h := handler.NewPublicHandler()
	r.Route("/public", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/info", h.Info)
	})
}

func setupAuthRoutes(r chi.Router, cfg *config.Config, svc user.UserService, logger *slog.Logger) {
	h := handler.NewAuthHandler(svc, cfg.Server.Auth, logger)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
	})
}

func setupCustomerRoutes(r chi.Router, cfg *config.Config, svc customer.CustomerService, logger *slog.Logger) {
	h := handler.NewCustomerHandler(svc, logger)

	r.Route("/customers", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Get("/", h.ListCustomers)
		r.Post("/", h.CreateCustomer)
		r.Route("/{customerID}", func(r chi.Router) {
			r.Get("/", h.GetCustomer)
			r.Put("/", h.UpdateCustomer)
			r.Delete("/", h.DeleteCustomer)
		})
	})
}
