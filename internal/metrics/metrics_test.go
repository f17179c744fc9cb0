package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLabelsByRouteAndStatus(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/things/:id", func(c *fiber.Ctx) error {
		if c.Params("id") == "missing" {
			return fiber.NewError(fiber.StatusNotFound, "nope")
		}
		return c.SendString("ok")
	})

	ok := HTTPRequestsTotal.WithLabelValues("GET", "/things/:id", "200")
	missing := HTTPRequestsTotal.WithLabelValues("GET", "/things/:id", "404")
	okBefore, missingBefore := testutil.ToFloat64(ok), testutil.ToFloat64(missing)

	for _, target := range []string{"/things/1", "/things/2", "/things/missing"} {
		resp, err := app.Test(httptest.NewRequest("GET", target, nil))
		require.NoError(t, err)
		resp.Body.Close()
	}

	assert.Equal(t, okBefore+2, testutil.ToFloat64(ok))
	assert.Equal(t, missingBefore+1, testutil.ToFloat64(missing))
}

func TestStoreSizeGaugeSwapsSource(t *testing.T) {
	RegisterStoreSize(func() int { return 3 })
	assert.Equal(t, 3.0, testutil.ToFloat64(storeGauge))

	RegisterStoreSize(func() int { return 7 })
	assert.Equal(t, 7.0, testutil.ToFloat64(storeGauge))
}
