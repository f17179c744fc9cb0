package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-measurements/internal/weather"
)

// openMeteoTimeLayout is the "iso8601" time format Open-Meteo returns (GMT, no zone suffix).
const openMeteoTimeLayout = "2006-01-02T15:04"

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
// It needs station coordinates; see ResolveCoordinates.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: defaultHTTPConfig(client),
		circuit: newCircuitBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, station weather.Station) (weather.Reading, error) {
	if !station.HasCoordinates() {
		return weather.Reading{}, fmt.Errorf("openmeteo requires latitude and longitude")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", *station.Lat))
		values.Set("longitude", fmt.Sprintf("%f", *station.Lon))
		values.Set("current", "temperature_2m,dew_point_2m,precipitation")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Reading{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Current struct {
			Time          string   `json:"time"`
			Temperature   *float64 `json:"temperature_2m"`
			DewPoint      *float64 `json:"dew_point_2m"`
			Precipitation *float64 `json:"precipitation"`
		} `json:"current"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Reading{}, err
	}

	ts, err := time.Parse(openMeteoTimeLayout, payload.Current.Time)
	if err != nil {
		ts = time.Now().UTC()
	}

	// Open-Meteo returns null for variables it has no data for; leave those out.
	fields := weather.Fields{}
	if v := payload.Current.Temperature; v != nil {
		fields[string(weather.MetricTemperature)] = *v
	}
	if v := payload.Current.DewPoint; v != nil {
		fields[string(weather.MetricDewPoint)] = *v
	}
	if v := payload.Current.Precipitation; v != nil {
		fields[string(weather.MetricPrecipitation)] = *v
	}

	return weather.Reading{
		ProviderName: p.name,
		Timestamp:    ts.UTC(),
		Fields:       fields,
	}, nil
}
