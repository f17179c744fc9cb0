package httpapi

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/weather-measurements/internal/metrics"
	"github.com/i474232898/weather-measurements/internal/weather"
)

const serviceName = "weather-measurements"

// Options tunes the Fiber app built by NewApp.
type Options struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// AccessLog receives one line per request; nil disables the access log.
	AccessLog io.Writer
}

// NewApp builds the Fiber app with middleware, health, metrics and API routes.
func NewApp(service *weather.Service, log logrus.FieldLogger, opts Options) *fiber.App {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 10 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 10 * time.Second
	}

	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           opts.ReadTimeout,
		WriteTimeout:          opts.WriteTimeout,
		// Timestamps in the path may arrive with percent-encoded colons.
		UnescapePath: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			if code >= fiber.StatusInternalServerError {
				log.WithError(err).WithFields(logrus.Fields{
					"request_id": c.Locals("requestid"),
					"path":       c.Path(),
				}).Error("request failed")
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	if opts.AccessLog != nil {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
			Output: opts.AccessLog,
		}))
	}
	app.Use(metrics.Middleware())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": serviceName,
		})
	})
	app.Get("/metrics", metrics.Handler())

	// API routes.
	RegisterRoutes(app, service)

	return app
}
