package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/weather-measurements/internal/weather"
)

type AppConfig struct {
	Port      string `envconfig:"PORT" default:"8080" validate:"required,numeric"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn warning error fatal panic"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=text json"`

	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"10s" validate:"gt=0"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"10s" validate:"gt=0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" validate:"gt=0"`

	// MedianMode selects how /stats picks the median; see weather.MedianMode.
	MedianMode weather.MedianMode `envconfig:"STATS_MEDIAN_MODE" default:"legacy"`

	// In-memory store retention (0 = unlimited).
	StoreMaxAge       time.Duration `envconfig:"STORE_MAX_AGE" default:"0" validate:"gte=0"`
	RetentionInterval time.Duration `envconfig:"RETENTION_INTERVAL" default:"1h" validate:"gt=0"`

	Ingest IngestConfig
}

// IngestConfig controls the optional provider ingestion job.
type IngestConfig struct {
	Enabled     bool          `envconfig:"INGEST_ENABLED" default:"false"`
	Interval    time.Duration `envconfig:"INGEST_INTERVAL" default:"15m" validate:"gt=0"`
	HTTPTimeout time.Duration `envconfig:"INGEST_HTTP_TIMEOUT" default:"10s" validate:"gt=0"`
	// RunTimeout bounds one ingest run across all providers and retries.
	RunTimeout time.Duration `envconfig:"INGEST_RUN_TIMEOUT" default:"30s" validate:"gt=0"`

	City        string   `envconfig:"STATION_CITY"`
	Country     string   `envconfig:"STATION_COUNTRY"`
	Lat         *float64 `envconfig:"STATION_LAT" validate:"omitempty,latitude"`
	Lon         *float64 `envconfig:"STATION_LON" validate:"omitempty,longitude"`
	StationFile string   `envconfig:"STATION_FILE"`

	OpenWeatherAPIKey string `envconfig:"OPENWEATHER_API_KEY"`
	WeatherAPIKey     string `envconfig:"WEATHERAPI_API_KEY"`
	GeocoderAPIKey    string `envconfig:"GEOCODER_API_KEY"`

	// Station is resolved from the STATION_* variables or StationFile.
	Station weather.Station `ignored:"true"`
}

var validate = validator.New()

// Load reads configuration from the environment (and an optional .env file).
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.WithError(err).Warn("failed to load .env file")
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	mode, err := weather.ParseMedianMode(string(cfg.MedianMode))
	if err != nil {
		return nil, fmt.Errorf("invalid STATS_MEDIAN_MODE: %w", err)
	}
	cfg.MedianMode = mode

	station, err := loadStation(cfg.Ingest)
	if err != nil {
		return nil, err
	}
	cfg.Ingest.Station = station

	if cfg.Ingest.Enabled && station.City == "" && !station.HasCoordinates() {
		return nil, fmt.Errorf("ingest enabled but no station configured: set STATION_CITY or STATION_FILE")
	}

	return &cfg, nil
}

func loadStation(ic IngestConfig) (weather.Station, error) {
	st := weather.Station{
		City:    ic.City,
		Country: ic.Country,
		Lat:     ic.Lat,
		Lon:     ic.Lon,
	}
	if ic.StationFile == "" {
		return st, nil
	}

	data, err := os.ReadFile(ic.StationFile)
	if err != nil {
		return st, fmt.Errorf("read station file: %w", err)
	}

	var file struct {
		Station weather.Station `yaml:"station"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return st, fmt.Errorf("parse station file %s: %w", ic.StationFile, err)
	}

	// File values override the environment.
	if file.Station.City != "" {
		st.City = file.Station.City
	}
	if file.Station.Country != "" {
		st.Country = file.Station.Country
	}
	if file.Station.Lat != nil {
		st.Lat = file.Station.Lat
	}
	if file.Station.Lon != nil {
		st.Lon = file.Station.Lon
	}
	return st, nil
}
