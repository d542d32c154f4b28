package shared_test

import (
	"os"
	"path/filepath"
	"testing"

	"place_discovery/internal/shared"
)

func TestLoadSettings_Defaults(t *testing.T) {
	t.Setenv("DISCOVERY_SETTINGS", "")

	s, err := shared.LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.SearchRadiusKm != 5 || s.NearbyLimit != 500 || !s.EventsEnabled || s.IngestBatch != 200 {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if s.TravelBudgetMS != 5000 {
		t.Fatalf("travel budget = %d, want 5000", s.TravelBudgetMS)
	}
}

func TestLoadSettings_FileAndEnvLayering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	body := "search_radius_km: 2.5\nnearby_limit: 50\nevents_enabled: false\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write settings file: %v", err)
	}
	t.Setenv("DISCOVERY_SETTINGS", path)
	t.Setenv("DISCOVERY_NEARBY_LIMIT", "75")

	s, err := shared.LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.SearchRadiusKm != 2.5 {
		t.Fatalf("radius = %v, want 2.5 from file", s.SearchRadiusKm)
	}
	if s.NearbyLimit != 75 {
		t.Fatalf("nearby limit = %d, want env override 75", s.NearbyLimit)
	}
	if s.EventsEnabled {
		t.Fatal("events_enabled should be false from file")
	}
	if s.IngestBatch != 200 {
		t.Fatalf("ingest batch = %d, want untouched default", s.IngestBatch)
	}
}

func TestLoadSettings_RejectsNonPositiveRadius(t *testing.T) {
	t.Setenv("DISCOVERY_SETTINGS", "")
	t.Setenv("DISCOVERY_SEARCH_RADIUS_KM", "0")

	if _, err := shared.LoadSettings(); err == nil {
		t.Fatal("expected error for zero radius")
	}
}
