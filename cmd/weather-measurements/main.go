package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	httpapi "github.com/i474232898/weather-measurements/internal/api/http"
	"github.com/i474232898/weather-measurements/internal/config"
	"github.com/i474232898/weather-measurements/internal/logging"
	"github.com/i474232898/weather-measurements/internal/metrics"
	"github.com/i474232898/weather-measurements/internal/scheduler"
	"github.com/i474232898/weather-measurements/internal/store"
	"github.com/i474232898/weather-measurements/internal/weather"
	"github.com/i474232898/weather-measurements/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.WithError(err).Fatal("failed to configure logger")
	}

	memStore := store.NewMemoryStore()
	metrics.RegisterStoreSize(memStore.Len)

	stats := weather.NewStatsEngine(memStore, cfg.MedianMode)
	log.WithField("median_mode", string(stats.MedianMode())).Info("stats engine ready")

	var provs []weather.Provider
	station := cfg.Ingest.Station
	if cfg.Ingest.Enabled {
		provs, station = buildProviders(cfg.Ingest, log)
	}

	// Core service orchestrating store, stats and providers.
	service := weather.NewService(memStore, stats, provs, log)

	sched := scheduler.New(service, scheduler.Options{
		Ingest:            cfg.Ingest.Enabled && len(provs) > 0,
		Station:           station,
		IngestInterval:    cfg.Ingest.Interval,
		FetchTimeout:      cfg.Ingest.RunTimeout,
		MaxAge:            cfg.StoreMaxAge,
		RetentionInterval: cfg.RetentionInterval,
	}, log)
	if err := sched.Start(); err != nil {
		log.WithError(err).Fatal("failed to start scheduler")
	}
	defer sched.Stop()

	app := httpapi.NewApp(service, log, httpapi.Options{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		AccessLog:    os.Stdout,
	})

	go func() {
		log.WithField("port", cfg.Port).Info("listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.WithError(err).Error("fiber server stopped")
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.WithError(err).Error("error during shutdown")
	}
	log.Info("shutdown complete")
}

// buildProviders returns the providers that can serve the configured station,
// resolving coordinates first when a geocoder key is available.
func buildProviders(ic config.IngestConfig, log logrus.FieldLogger) ([]weather.Provider, weather.Station) {
	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{Timeout: ic.HTTPTimeout}

	station := ic.Station
	if !station.HasCoordinates() && ic.GeocoderAPIKey != "" {
		resolved, err := providers.ResolveCoordinates(station, ic.GeocoderAPIKey)
		if err != nil {
			log.WithError(err).Warn("geocoding failed; open-meteo disabled")
		} else {
			station = resolved
		}
	}

	var provs []weather.Provider
	if ic.OpenWeatherAPIKey != "" {
		provs = append(provs, providers.NewOpenWeatherProvider(httpClient, ic.OpenWeatherAPIKey))
	}
	if ic.WeatherAPIKey != "" {
		provs = append(provs, providers.NewWeatherAPIProvider(httpClient, ic.WeatherAPIKey))
	}
	// Open-Meteo needs no API key, only coordinates.
	if station.HasCoordinates() {
		provs = append(provs, providers.NewOpenMeteoProvider(httpClient))
	}

	if len(provs) == 0 {
		log.Warn("ingest enabled but no provider is usable; ingestion disabled")
	}
	for _, p := range provs {
		log.WithField("provider", p.Name()).Info("provider enabled")
	}
	return provs, station
}
