package shared

import (
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	koanfenv "github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Settings holds the domain tunables, as opposed to Config which wires
// addresses and credentials. Layering, low to high:
//  1. DefaultSettings
//  2. YAML file named by DISCOVERY_SETTINGS, when set
//  3. DISCOVERY_* environment variables
type Settings struct {
	// SearchRadiusKm bounds the proximity query around the client location.
	SearchRadiusKm float64 `koanf:"search_radius_km"`

	// NearbyLimit caps how many rows a single proximity query may return.
	NearbyLimit int `koanf:"nearby_limit"`

	// TravelBudgetMS bounds how long one ranking pass waits for travel
	// times before falling back to distance order.
	TravelBudgetMS int `koanf:"travel_budget_ms"`

	// EventsEnabled folds the events feed into the collection when true.
	EventsEnabled bool `koanf:"events_enabled"`

	// IngestBatch sets how many places one upsert statement carries.
	IngestBatch int `koanf:"ingest_batch"`
}

func DefaultSettings() Settings {
	return Settings{
		SearchRadiusKm: 5,
		NearbyLimit:    500,
		TravelBudgetMS: 5000,
		EventsEnabled:  true,
		IngestBatch:    200,
	}
}

func LoadSettings() (Settings, error) {
	s := DefaultSettings()
	k := koanf.New(".")

	if path := os.Getenv("DISCOVERY_SETTINGS"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Settings{}, err
		}
	}

	// Environment variables: DISCOVERY_SEARCH_RADIUS_KM, DISCOVERY_NEARBY_LIMIT, ...
	// Preserve underscores to match the koanf tags on the struct.
	envProvider := koanfenv.Provider("DISCOVERY_", ".", func(key string) string {
		key = strings.ToLower(key)
		return strings.TrimPrefix(key, "discovery_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Settings{}, err
	}

	if err := k.UnmarshalWithConf("", &s, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Settings{}, err
	}

	if s.SearchRadiusKm <= 0 {
		return Settings{}, errors.New("search_radius_km must be positive")
	}
	if s.NearbyLimit <= 0 {
		return Settings{}, errors.New("nearby_limit must be positive")
	}
	if s.TravelBudgetMS <= 0 {
		return Settings{}, errors.New("travel_budget_ms must be positive")
	}
	if s.IngestBatch <= 0 {
		return Settings{}, errors.New("ingest_batch must be positive")
	}
	return s, nil
}
