package providers

import (
	"errors"
	"fmt"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-measurements/internal/weather"
)

var errNoGeocoderKey = errors.New("geocoder api key not configured")

// geocodeFunc is swapped out in tests.
var geocodeFunc = geocoder.Geocoding

// ResolveCoordinates fills in the station's latitude and longitude using the
// Google geocoding API when they are not already configured.
func ResolveCoordinates(station weather.Station, apiKey string) (weather.Station, error) {
	if station.HasCoordinates() {
		return station, nil
	}
	if apiKey == "" {
		return station, errNoGeocoderKey
	}
	if station.City == "" {
		return station, fmt.Errorf("geocode: station city is empty")
	}

	geocoder.ApiKey = apiKey
	loc, err := geocodeFunc(geocoder.Address{
		City:    station.City,
		Country: station.Country,
	})
	if err != nil {
		return station, fmt.Errorf("geocode %s: %w", station.Key(), err)
	}

	lat, lon := loc.Latitude, loc.Longitude
	station.Lat = &lat
	station.Lon = &lon
	return station, nil
}
