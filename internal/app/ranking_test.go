package app_test

import (
	"context"
	"testing"
	"time"

	"place_discovery/internal/app"
	"place_discovery/internal/domain"
)

func rated(id string, metres, rating float64, reviews int) domain.Place {
	p := place(id, offset(metres).Lat, origin.Lon, "restaurant")
	r := rating
	p.Ratings = []domain.ProviderRating{
		{Provider: domain.ProviderYelp, Rating: &r, ReviewCount: reviews},
	}
	return p
}

func ids(ps []domain.Place) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func wantOrder(t *testing.T, got []domain.Place, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("order: want %v, got %v", want, ids(got))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("order: want %v, got %v", want, ids(got))
		}
	}
}

func TestSortByDistance(t *testing.T) {
	ps := []domain.Place{
		place("c", offset(300).Lat, origin.Lon),
		place("a", offset(100).Lat, origin.Lon),
		place("b", offset(200).Lat, origin.Lon),
	}

	asc := app.SortByDistance(ps, origin, true)
	wantOrder(t, asc, "a", "b", "c")

	desc := app.SortByDistance(ps, origin, false)
	wantOrder(t, desc, "c", "b", "a")

	// input untouched
	wantOrder(t, ps, "c", "a", "b")
}

func TestSortByDistance_StableOnTies(t *testing.T) {
	ps := []domain.Place{
		place("first", offset(100).Lat, origin.Lon),
		place("second", offset(100).Lat, origin.Lon),
	}
	out := app.SortByDistance(ps, origin, true)
	wantOrder(t, out, "first", "second")
}

func TestSortByTravelTime_OrdersByKnownTime(t *testing.T) {
	src := &fakeTravelSource{
		times: map[string]time.Duration{
			"near": 10 * time.Minute, // close by but slow to reach
			"far":  2 * time.Minute,
		},
		errs: map[string]error{"mid": context.DeadlineExceeded},
	}
	c := app.NewTravelTimeCache(src, 0)
	ps := []domain.Place{
		place("near", offset(100).Lat, origin.Lon),
		place("mid", offset(200).Lat, origin.Lon),
		place("far", offset(300).Lat, origin.Lon),
	}

	out := app.SortByTravelTime(context.Background(), ps, origin, c)
	// far wins on travel time; the failed fetch ranks last
	wantOrder(t, out, "far", "near", "mid")
}

func TestSortByTravelTime_AllUnresolvedFallsBackToDistance(t *testing.T) {
	gate := make(chan struct{})
	t.Cleanup(func() { close(gate) })
	src := &fakeTravelSource{
		block: map[string]chan struct{}{"a": gate, "b": gate, "c": gate},
	}
	c := app.NewTravelTimeCache(src, 0)
	ps := []domain.Place{
		place("c", offset(300).Lat, origin.Lon),
		place("a", offset(100).Lat, origin.Lon),
		place("b", offset(200).Lat, origin.Lon),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // every fetch hangs past the budget

	out := app.SortByTravelTime(ctx, ps, origin, c)
	wantOrder(t, out, "a", "b", "c")
}

func TestSortByTravelTime_KeepsAllElements(t *testing.T) {
	src := &fakeTravelSource{times: map[string]time.Duration{"a": time.Minute}}
	c := app.NewTravelTimeCache(src, 0)
	ps := []domain.Place{
		place("a", offset(100).Lat, origin.Lon),
		place("b", offset(200).Lat, origin.Lon),
	}
	out := app.SortByTravelTime(context.Background(), ps, origin, c)
	if len(out) != len(ps) {
		t.Fatalf("ranking must never drop places: in=%d out=%d", len(ps), len(out))
	}
}

func TestSortByRating(t *testing.T) {
	ps := []domain.Place{
		rated("cold", 100, 0, 0),
		rated("good", 200, 4.5, 120),
		rated("okay", 300, 3.0, 40),
	}
	out := app.SortByRating(ps)
	wantOrder(t, out, "good", "okay", "cold")
}

func TestSortByRating_StableWhenAllZero(t *testing.T) {
	ps := []domain.Place{
		rated("x", 100, 0, 0),
		rated("y", 200, 0, 0),
	}
	out := app.SortByRating(ps)
	wantOrder(t, out, "x", "y")
}
