package server

import (
	"fmt"

	"contacts/internal/config"
	"contacts/internal/handlers"
	"contacts/internal/middleware"
	"contacts/internal/repositories"
	"contacts/internal/services"
	"contacts/internal/uploads"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Dependencies are the collaborators the HTTP app is built on.
type Dependencies struct {
	Repo      repositories.ContactRepository
	Publisher services.EventPublisher // optional
	Logger    *zap.Logger             // optional
	Registry  *prometheus.Registry    // optional, a fresh one is used when nil
}

// NewApp assembles the fiber app: middleware, static avatars, metrics,
// health and the contact routes.
func NewApp(cfg *config.Config, deps Dependencies) (*fiber.App, error) {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	avatars, err := uploads.NewAvatarStore(cfg.AssetsDir)
	if err != nil {
		return nil, err
	}
	metrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	contactService := services.NewContactService(deps.Repo, avatars, deps.Publisher, log)
	contactHandler := handlers.NewContactHandler(contactService, log)
	healthHandler := handlers.NewHealthHandler(contactService, log)

	app := fiber.New(fiber.Config{
		AppName:      "contacts",
		BodyLimit:    cfg.BodyLimitMB * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(metrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	healthHandler.RegisterRoutes(app)

	// Uploaded avatars are served from the root; requests for anything else
	// fall through to the contact routes.
	app.Static("/", avatars.Dir())

	contactHandler.RegisterRoutes(app, middleware.Owner(cfg.DefaultOwner, cfg.JWTSecret))

	return app, nil
}
