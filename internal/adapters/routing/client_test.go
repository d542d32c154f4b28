package routing_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"place_discovery/internal/adapters/routing"
	"place_discovery/internal/domain"
)

func TestComputeTravelTimes_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(500)
		default:
			w.WriteHeader(200)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"walking_seconds": 300.0,
				"driving_seconds": 120.0,
			})
		}
	}))
	defer ts.Close()

	cl, err := routing.New(ts.URL, "test-key", 100) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p := domain.Place{ID: "p1", Coord: domain.Coordinate{Lat: 52.52, Lon: 13.405}}
	entry, err := cl.ComputeTravelTimes(ctx, p, domain.Coordinate{Lat: 52.51, Lon: 13.40},
		[]domain.TravelMode{domain.ModeWalking, domain.ModeDriving})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if entry.PlaceID != "p1" {
		t.Fatalf("place id: %q", entry.PlaceID)
	}
	if entry.Walking == nil || *entry.Walking != 5*time.Minute {
		t.Fatalf("walking: %v", entry.Walking)
	}
	if entry.Driving == nil || *entry.Driving != 2*time.Minute {
		t.Fatalf("driving: %v", entry.Driving)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestComputeTravelTimes_PartialModes(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"walking_seconds": 60.0})
	}))
	defer ts.Close()

	cl, _ := routing.New(ts.URL, "", 100)
	p := domain.Place{ID: "p1"}
	entry, err := cl.ComputeTravelTimes(context.Background(), p, domain.Coordinate{},
		[]domain.TravelMode{domain.ModeWalking})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if entry.Walking == nil || *entry.Walking != time.Minute {
		t.Fatalf("walking: %v", entry.Walking)
	}
	if entry.Driving != nil {
		t.Fatalf("driving should stay unresolved, got %v", entry.Driving)
	}
}

func TestComputeTravelTimes_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	cl, err := routing.New(ts.URL, "test-key", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err = cl.ComputeTravelTimes(ctx, domain.Place{ID: "x"}, domain.Coordinate{},
		[]domain.TravelMode{domain.ModeWalking})
	if !errors.Is(err, routing.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestNew_RequiresBase(t *testing.T) {
	if _, err := routing.New("", "key", 5); err == nil {
		t.Fatal("expected error for missing base URL")
	}
}
