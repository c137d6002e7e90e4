package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meatlab/lims-api/internal/auth"
	"github.com/meatlab/lims-api/internal/config"
	"github.com/meatlab/lims-api/internal/http/handler"
	"github.com/meatlab/lims-api/internal/http/middleware"
	"github.com/meatlab/lims-api/internal/metrics"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	_ "github.com/meatlab/lims-api/docs" // registers the swagger spec
)

// Handlers groups every HTTP handler mounted by the router
type Handlers struct {
	Health    *handler.HealthHandler
	Dashboard *handler.DashboardHandler
	Client    *handler.ClientHandler
	Sample    *handler.SampleHandler
	Report    *handler.ReportHandler
	Settings  *handler.LabSettingsHandler
	Profile   *handler.ProfileHandler
	// Telegram is nil when the bot is disabled
	Telegram *handler.TelegramHandler
}

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	authMiddleware *auth.Middleware
	rateLimiter    *middleware.RateLimiter
	metrics        *metrics.Metrics
	handlers       Handlers
}

// NewRouter creates the router. m may be nil when metrics are disabled.
func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	m *metrics.Metrics,
	handlers Handlers,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		metrics:        m,
		handlers:       handlers,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()
	h := rt.handlers

	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	if rt.metrics != nil {
		r.Use(rt.metrics.Middleware)
	}
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	r.Get("/health", h.Health.Live)
	r.Get("/health/db", h.Health.Database)
	r.Get("/health/ready", h.Health.Ready)

	if rt.metrics != nil {
		r.Method(http.MethodGet, rt.cfg.Metrics.Path, rt.metrics.Handler())
	}

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// The bot authenticates with its webhook secret header
		if h.Telegram != nil {
			r.Post("/telegram/webhook", h.Telegram.Webhook)
		}

		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.rateLimiter.Limit)

			r.Get("/auth/me", h.Profile.Me)
			r.Get("/dashboard", h.Dashboard.Get)

			r.Route("/clients", func(r chi.Router) {
				r.Get("/", h.Client.List)
				r.Get("/export", h.Client.Export)
				r.Get("/{id}", h.Client.GetByID)
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireEditor)
					r.Post("/", h.Client.Create)
					r.Put("/{id}", h.Client.Update)
				})
				r.With(rt.authMiddleware.RequireAdmin).Delete("/{id}", h.Client.Delete)
			})

			r.Route("/samples", func(r chi.Router) {
				r.Get("/", h.Sample.List)
				r.Get("/types", h.Sample.Types)
				r.Get("/{id}", h.Sample.GetByID)
				r.Get("/{id}/result", h.Sample.GetResult)
				r.Get("/{id}/report", h.Sample.GenerateReport)
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireEditor)
					r.Post("/", h.Sample.Create)
					r.Put("/{id}", h.Sample.Update)
					r.Put("/{id}/result", h.Sample.SaveResult)
				})
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireAdmin)
					r.Delete("/{id}", h.Sample.Delete)
					r.Post("/bulk-delete", h.Sample.BulkDelete)
				})
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/", h.Report.List)
				r.Get("/templates", h.Report.Template)
				r.Get("/{id}", h.Report.GetByID)
				r.Get("/{id}/pdf", h.Report.Download)
				r.With(rt.authMiddleware.RequireEditor).Post("/", h.Report.Create)
				r.With(rt.authMiddleware.RequireAdmin).Delete("/{id}", h.Report.Delete)
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", h.Settings.Get)
				r.With(rt.authMiddleware.RequireAdmin).Put("/", h.Settings.Update)
			})

			r.Route("/profiles", func(r chi.Router) {
				r.Get("/analysts", h.Profile.Analysts)
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireAdmin)
					r.Get("/", h.Profile.List)
					r.Put("/{id}/role", h.Profile.UpdateRole)
				})
			})
		})
	})

	return r
}
