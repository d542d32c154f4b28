package events_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"place_discovery/internal/adapters/events"
	"place_discovery/internal/domain"
)

func TestSearchEvents_MapsPayload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Path; got != "/events/search" {
			t.Errorf("path: %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"events":[
			{"id":"55","name":"Open Air","venue":"Stadtpark","lat":53.56,"lon":10.01,"categories":["live_music"]},
			{"name":"No ID Show","lat":53.55,"lon":10.00}
		]}`))
	}))
	defer ts.Close()

	cl, err := events.New(ts.URL, "test-key", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	evs, err := cl.SearchEvents(context.Background(), domain.Coordinate{Lat: 53.55, Lon: 10.0})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(evs) != 2 {
		t.Fatalf("want 2 events, got %d", len(evs))
	}

	first := evs[0]
	if first.ID != "55" || first.Name != "Open Air" {
		t.Fatalf("first event: %+v", first)
	}
	if first.Venue == nil || *first.Venue != "Stadtpark" {
		t.Fatalf("venue: %v", first.Venue)
	}
	if len(first.Categories) != 1 || first.Categories[0] != "live_music" {
		t.Fatalf("categories: %v", first.Categories)
	}

	// missing provider id gets a synthesized one
	if evs[1].ID == "" {
		t.Fatal("expected synthesized id")
	}
	if evs[1].ID == evs[0].ID {
		t.Fatal("ids must be distinct")
	}
}

func TestSearchEvents_UpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer ts.Close()

	cl, _ := events.New(ts.URL, "", 100)
	if _, err := cl.SearchEvents(context.Background(), domain.Coordinate{}); err == nil {
		t.Fatal("expected error from 502")
	}
}

func TestNew_RequiresBase(t *testing.T) {
	if _, err := events.New("", "key", 5); err == nil {
		t.Fatal("expected error for missing base URL")
	}
}
