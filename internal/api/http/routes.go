package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-measurements/internal/weather"
)

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	app.Post("/measurements", func(c *fiber.Ctx) error {
		p, err := decodeMeasurement(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		in := p.measurement()
		m := service.Save(in.Timestamp, in.Fields)

		c.Location("/measurements/" + weather.FormatInstant(m.Timestamp))
		c.Status(fiber.StatusCreated)
		return nil
	})

	app.Get("/measurements/:timestamp", func(c *fiber.Ctx) error {
		res, err := service.Find(c.Params("timestamp"))
		if err != nil {
			return toHTTPError(err)
		}
		if res.Exact != nil {
			return c.JSON(res.Exact)
		}
		return c.JSON(res.Day)
	})

	app.Put("/measurements/:timestamp", func(c *fiber.Ctx) error {
		p, err := decodeMeasurement(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		in := p.measurement()
		if err := service.Replace(c.Params("timestamp"), in.Timestamp, in.Fields); err != nil {
			return toHTTPError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	app.Patch("/measurements/:timestamp", func(c *fiber.Ctx) error {
		p, err := decodeMeasurement(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		in := p.measurement()
		if err := service.Merge(c.Params("timestamp"), in.Timestamp, in.Fields); err != nil {
			return toHTTPError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	app.Delete("/measurements/:timestamp", func(c *fiber.Ctx) error {
		if err := service.Delete(c.Params("timestamp")); err != nil {
			return toHTTPError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	app.Get("/stats", func(c *fiber.Ctx) error {
		var q statsQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		res, err := service.Stats(q.toQuery())
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(res)
	})
}

// toHTTPError maps service errors onto HTTP status codes.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, weather.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, weather.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, weather.ErrBadRequest):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return err
	}
}
