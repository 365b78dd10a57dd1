package server

import (
	"context"
	"path/filepath"

	"notekeeper-be/internal/bootstrap"
	"notekeeper-be/internal/config"
	"notekeeper-be/internal/pkg/serverutils"
	"notekeeper-be/internal/view"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serverModule = "Server"

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	fiberCfg := fiber.Config{
		AppName:               "notekeeper",
		BodyLimit:             1 * 1024 * 1024,
		DisableStartupMessage: true,
		ErrorHandler:          serverutils.FiberErrorHandler(container.Logger),
	}
	if cfg.App.RenderMode == config.RenderModeHTML {
		fiberCfg.Views = view.NewEngine()
	}
	app := fiber.New(fiberCfg)

	// Middleware
	app.Use(serverutils.RequestLogger(container.Logger, container.Metrics))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type",
	}))
	app.Use(otelfiber.Middleware())

	app.Get("/healthz", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(container.Registry, promhttp.HandlerOpts{})))

	registerRoutes(app, cfg, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	s.container.Logger.Info(serverModule, "Server is running", map[string]interface{}{
		"addr":        ":" + s.cfg.App.Port,
		"render_mode": s.cfg.App.RenderMode,
	})
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func registerRoutes(app *fiber.App, cfg *config.Config, c *bootstrap.Container) {
	jwt := serverutils.JwtMiddleware(c.AuthService)

	api := app.Group(cfg.App.APIPrefix, serverutils.ErrorHandlerMiddleware(c.Logger))
	c.AuthController.RegisterRoutes(api, jwt)
	c.NoteController.RegisterRoutes(api, jwt)
	// unknown API paths never fall through to the client app
	api.All("/*", func(*fiber.Ctx) error { return fiber.ErrNotFound })

	switch cfg.App.RenderMode {
	case config.RenderModeHTML:
		c.NotePageController.RegisterRoutes(app)
	default:
		registerClientApp(app, cfg.App.ClientDir)
	}
}

// registerClientApp serves the built client and returns its entry point for
// every other GET so client-side routes survive a reload.
func registerClientApp(app *fiber.App, dir string) {
	index := filepath.Join(dir, "index.html")
	app.Static("/", dir, fiber.Static{Index: "index.html"})
	app.Get("/*", func(ctx *fiber.Ctx) error {
		return ctx.SendFile(index)
	})
}
