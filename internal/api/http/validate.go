package httpapi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-measurements/internal/weather"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// instant: the field must parse as an RFC 3339 timestamp.
	_ = v.RegisterValidation("instant", func(fl validator.FieldLevel) bool {
		return weather.IsValidInstant(fl.Field().String())
	})
	return v
}

// measurementPayload is a request body split into its timestamp and metrics.
type measurementPayload struct {
	Timestamp string         `validate:"required,instant"`
	Metrics   weather.Fields `validate:"required,min=1"`
}

// measurement converts a validated payload, canonicalizing its timestamp.
func (p measurementPayload) measurement() weather.Measurement {
	ts, _ := weather.ParseInstant(p.Timestamp)
	return weather.Measurement{Timestamp: ts, Fields: p.Metrics}
}

// decodeMeasurement reads a flat JSON object: a "timestamp" string plus at
// least one numeric metric. Any non-numeric metric value rejects the body.
func decodeMeasurement(c *fiber.Ctx) (measurementPayload, error) {
	var raw map[string]any
	if err := c.App().Config().JSONDecoder(c.Body(), &raw); err != nil {
		return measurementPayload{}, errors.New("body must be a JSON object")
	}

	p := measurementPayload{Metrics: make(weather.Fields, len(raw))}
	for k, v := range raw {
		if k == "timestamp" {
			s, ok := v.(string)
			if !ok {
				return measurementPayload{}, errors.New("timestamp must be a string")
			}
			p.Timestamp = s
			continue
		}
		f, ok := isNumeric(v)
		if !ok {
			return measurementPayload{}, fmt.Errorf("metric %q must be a number", k)
		}
		p.Metrics[k] = f
	}

	if err := validate.Struct(p); err != nil {
		return measurementPayload{}, err
	}
	return p, nil
}

func isNumeric(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

// statsQuery holds query parameters for the stats endpoint.
type statsQuery struct {
	Stats   []string `validate:"required,min=1"`
	Metrics []string `validate:"required,min=1"`
	From    string   `validate:"required,instant"`
	To      string   `validate:"required,instant"`
}

func (q *statsQuery) bind(c *fiber.Ctx) error {
	args := c.Context().QueryArgs()
	q.Stats = splitMulti(args.PeekMulti("stat"))
	q.Metrics = splitMulti(args.PeekMulti("metric"))
	q.From = c.Query("fromDateTime")
	q.To = c.Query("toDateTime")
	return validate.Struct(q)
}

// splitMulti flattens repeated query values, also splitting on commas.
func splitMulti(values [][]byte) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(string(v), ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (q statsQuery) toQuery() weather.StatsQuery {
	from, _ := weather.ParseInstant(q.From)
	to, _ := weather.ParseInstant(q.To)
	return weather.StatsQuery{
		Stats:   q.Stats,
		Metrics: q.Metrics,
		From:    from,
		To:      to,
	}
}
