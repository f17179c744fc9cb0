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

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/current.json",
		httpCfg: defaultHTTPConfig(client),
		circuit: newCircuitBreaker("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, station weather.Station) (weather.Reading, error) {
	if p.apiKey == "" {
		return weather.Reading{}, fmt.Errorf("weatherapi api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		// WeatherAPI uses "q" for location; it accepts "city,country" or "lat,lon".
		if station.HasCoordinates() {
			values.Set("q", fmt.Sprintf("%f,%f", *station.Lat, *station.Lon))
		} else {
			q := station.City
			if station.Country != "" {
				q = fmt.Sprintf("%s,%s", station.City, station.Country)
			}
			values.Set("q", q)
		}

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
			LastUpdatedEpoch int64    `json:"last_updated_epoch"`
			TempC            float64  `json:"temp_c"`
			Humidity         float64  `json:"humidity"`
			DewpointC        *float64 `json:"dewpoint_c"`
			PrecipMm         float64  `json:"precip_mm"`
		} `json:"current"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Reading{}, err
	}

	ts := time.Now().UTC()
	if payload.Current.LastUpdatedEpoch > 0 {
		ts = time.Unix(payload.Current.LastUpdatedEpoch, 0).UTC()
	}

	dewPoint := weather.DewPoint(payload.Current.TempC, payload.Current.Humidity)
	if payload.Current.DewpointC != nil {
		dewPoint = *payload.Current.DewpointC
	}

	return weather.Reading{
		ProviderName: p.name,
		Timestamp:    ts,
		Fields: weather.Fields{
			string(weather.MetricTemperature):   payload.Current.TempC,
			string(weather.MetricDewPoint):      dewPoint,
			string(weather.MetricPrecipitation): payload.Current.PrecipMm,
		},
	}, nil
}
