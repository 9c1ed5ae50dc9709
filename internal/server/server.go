package server

import (
	"context"
	"log"

	"companion-bot-be/internal/bootstrap"
	"companion-bot-be/internal/config"
	"companion-bot-be/internal/pkg/serverutils"
	"companion-bot-be/internal/service"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(AppConfig())

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: cfg.App.CorsAllowedOrigins != "*", // fiber rejects credentials with a wildcard origin
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, " + serverutils.AnonymousUserHeader,
		AllowMethods:     "GET, POST, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Content-Disposition",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware(
		serverutils.ErrorStatus{Err: service.ErrSessionNotFound, Status: fiber.StatusNotFound},
		serverutils.ErrorStatus{Err: service.ErrSessionForbidden, Status: fiber.StatusForbidden},
		serverutils.ErrorStatus{Err: service.ErrArchiveNotFound, Status: fiber.StatusNotFound},
	))

	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

// AppConfig is the fiber configuration of the API. Route params must stay valid
// after the handler returns.
func AppConfig() fiber.Config {
	return fiber.Config{
		BodyLimit: 64 * 1024, // utterances are short
		Immutable: true,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	app.Get("/healthz", func(ctx *fiber.Ctx) error {
		return ctx.JSON(serverutils.SuccessResponse("ok", fiber.Map{"status": "up"}))
	})

	api := app.Group("/api")
	c.CompanionController.RegisterRoutes(api)
	if c.ArchiveController != nil {
		c.ArchiveController.RegisterRoutes(api)
	}

	c.CompanionHandler.RegisterRoutes(app)
}
