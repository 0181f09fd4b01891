package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/straye-as/sales-assistant-api/internal/auth"
	"github.com/straye-as/sales-assistant-api/internal/config"
	"github.com/straye-as/sales-assistant-api/internal/http/handler"
	"github.com/straye-as/sales-assistant-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	_ "github.com/straye-as/sales-assistant-api/docs" // registers the swagger document
)

type Router struct {
	cfg                 *config.Config
	logger              *zap.Logger
	authMiddleware      *auth.Middleware
	rateLimiter         *middleware.RateLimiter
	healthHandler       *handler.HealthHandler
	intelligenceHandler *handler.IntelligenceHandler
	alertHandler        *handler.AlertHandler
	runHandler          *handler.RunHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	healthHandler *handler.HealthHandler,
	intelligenceHandler *handler.IntelligenceHandler,
	alertHandler *handler.AlertHandler,
	runHandler *handler.RunHandler,
) *Router {
	return &Router{
		cfg:                 cfg,
		logger:              logger,
		authMiddleware:      authMiddleware,
		rateLimiter:         rateLimiter,
		healthHandler:       healthHandler,
		intelligenceHandler: intelligenceHandler,
		alertHandler:        alertHandler,
		runHandler:          runHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	if rt.cfg.Server.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(rt.cfg.Server.RequestTimeoutDuration()))
	}

	r.Get("/health", rt.healthHandler.Health)
	r.Get("/health/db", rt.healthHandler.Database)

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.authMiddleware.Authenticate)
		r.Use(rt.rateLimiter.Limit)

		r.With(rt.authMiddleware.RequireSystem).Post("/intelligence/run", rt.runHandler.Trigger)

		r.Route("/tenants/{tenantId}", func(r chi.Router) {
			r.Use(rt.authMiddleware.RequireTenantAccess("tenantId"))

			r.Get("/intelligence/overdue", rt.intelligenceHandler.GetOverdueCustomers)
			r.Get("/intelligence/runs", rt.runHandler.List)
			r.Get("/alerts", rt.alertHandler.List)

			r.Route("/customers/{customerId}", func(r chi.Router) {
				r.Get("/purchase-frequency", rt.intelligenceHandler.GetPurchaseFrequency)
				r.Get("/product-affinity", rt.intelligenceHandler.GetProductAffinity)
				r.Post("/order-anomalies", rt.intelligenceHandler.CheckOrderAnomalies)
			})
		})
	})

	return r
}
