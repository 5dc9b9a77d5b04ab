// Package api wires the HTTP and WebSocket surface of the comparison service.
package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/aura-dashboard/backend/internal/api/handlers"
	"github.com/aura-dashboard/backend/internal/comparison"
	"github.com/aura-dashboard/backend/internal/metrics"
	"github.com/aura-dashboard/backend/internal/middleware/ratelimit"
	"github.com/aura-dashboard/backend/internal/middleware/security"
	"github.com/aura-dashboard/backend/internal/middleware/validation"
	"github.com/aura-dashboard/backend/internal/report"
	"github.com/aura-dashboard/backend/internal/storage/reports"
	"github.com/aura-dashboard/backend/pkg/config"
	"github.com/aura-dashboard/backend/pkg/logger"
)

type Deps struct {
	Config       *config.Config
	Orchestrator *comparison.Orchestrator
	Store        *reports.Store
	Exporter     *report.Exporter
	IDs          reports.IDGenerator
	// RequestLog enables fiber's access log middleware.
	RequestLog bool
}

// Server owns the fiber app and the background resources its middleware starts.
type Server struct {
	App     *fiber.App
	limiter *ratelimit.RateLimiter
}

func NewServer(d Deps) *Server {
	cfg := d.Config

	app := fiber.New(fiber.Config{
		AppName:               "aura",
		ReadTimeout:           time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:          time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:             cfg.Server.BodyLimit,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	if d.RequestLog {
		app.Use(fiberlogger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins(cfg.Server.AllowedOrigins),
		AllowHeaders: "Origin, Content-Type, Accept, X-Client-ID",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		IsDevelopment:  cfg.Server.Development,
	}))

	validationCfg := validation.Config{Logger: logger.GetLogger()}
	app.Use(validation.Middleware(validationCfg))

	limiter := ratelimit.New(ratelimit.Config{
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		Burst:             cfg.RateLimit.Burst,
		Logger:            logger.GetLogger(),
	})

	comparisonHandler := handlers.NewComparisonHandler(d.Orchestrator, d.Store, d.Exporter, d.IDs)
	reportsHandler := handlers.NewReportsHandler(d.Store, d.Exporter)
	wsHandler := handlers.NewWebSocketHandler(d.Orchestrator)

	app.Get("/metrics", metrics.MetricsHandler())

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/comparisons", websocket.New(wsHandler.HandleConnection))

	api := app.Group("/api/v1")

	api.Post("/comparisons", limiter.Middleware(), validation.Submission(validationCfg), comparisonHandler.Submit)
	api.Get("/comparisons/current", comparisonHandler.Current)
	api.Post("/comparisons/current/save", comparisonHandler.Save)
	api.Get("/comparisons/current/export", comparisonHandler.Export)

	api.Get("/reports", reportsHandler.List)
	api.Delete("/reports", reportsHandler.Clear)
	api.Get("/reports/:id/export", reportsHandler.Export)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		if _, err := d.Store.LoadAll(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
				"error":  "report storage unreachable",
			})
		}
		return c.JSON(fiber.Map{
			"status":     "ready",
			"comparison": d.Orchestrator.State().String(),
		})
	})

	return &Server{App: app, limiter: limiter}
}

func (s *Server) Listen(addr string) error {
	return s.App.Listen(addr)
}

func (s *Server) Shutdown() error {
	s.limiter.Stop()
	return s.App.Shutdown()
}

func allowOrigins(origins []string) string {
	if len(origins) == 0 {
		return "*"
	}
	return strings.Join(origins, ",")
}
