package domain_test

import (
	"math"
	"testing"

	"place_discovery/internal/domain"
)

func pf(f float64) *float64 { return &f }

func ratedPlace(id string, rating float64, yelp, ta int) domain.Place {
	return domain.Place{
		ID: id,
		Ratings: []domain.ProviderRating{
			{Provider: domain.ProviderYelp, Rating: pf(rating), ReviewCount: yelp},
			{Provider: domain.ProviderTripAdvisor, Rating: pf(rating), ReviewCount: ta},
		},
	}
}

func TestCompositeScore_Range(t *testing.T) {
	cands := []domain.Place{
		ratedPlace("a", 5.0, 1000, 500),
		ratedPlace("b", 0.0, 0, 0),
		ratedPlace("c", 2.5, 3, 7),
	}
	max := domain.MaxReviewCount(cands)
	for _, p := range cands {
		s := domain.CompositeScore(p, max)
		if s < 0 || s > 1 {
			t.Fatalf("score out of range for %s: %f", p.ID, s)
		}
	}
}

func TestCompositeScore_ZeroReviews(t *testing.T) {
	p := ratedPlace("empty", 0, 0, 0)
	if s := domain.CompositeScore(p, 0); s != 0 {
		t.Fatalf("expected 0 for no reviews, got %f", s)
	}
	// a lone 5-star rating with zero counts still scores 0
	q := domain.Place{Ratings: []domain.ProviderRating{
		{Provider: domain.ProviderYelp, Rating: pf(5.0), ReviewCount: 0},
	}}
	if s := domain.CompositeScore(q, 100); s != 0 {
		t.Fatalf("expected 0 for zero counts, got %f", s)
	}
}

func TestCompositeScore_MonotonicInReviews(t *testing.T) {
	const max = 10000
	prev := -1.0
	for _, n := range []int{0, 1, 5, 50, 500, 5000, 10000} {
		p := ratedPlace("m", 4.0, n, 0)
		s := domain.CompositeScore(p, max)
		if s < prev {
			t.Fatalf("score decreased at %d reviews: %f < %f", n, s, prev)
		}
		prev = s
	}
}

func TestCompositeScore_MonotonicInRating(t *testing.T) {
	const max = 200
	prev := -1.0
	for _, r := range []float64{0, 1, 2.5, 4, 5} {
		p := ratedPlace("m", r, 100, 100)
		s := domain.CompositeScore(p, max)
		if s < prev {
			t.Fatalf("score decreased at rating %.1f: %f < %f", r, s, prev)
		}
		prev = s
	}
}

func TestRatingScore_WeightedMean(t *testing.T) {
	// 4.0 over 30 yelp reviews + 5.0 over 10 ta reviews = 4.25 avg = 0.85
	p := domain.Place{Ratings: []domain.ProviderRating{
		{Provider: domain.ProviderYelp, Rating: pf(4.0), ReviewCount: 30},
		{Provider: domain.ProviderTripAdvisor, Rating: pf(5.0), ReviewCount: 10},
	}}
	got := domain.RatingScore(p)
	if math.Abs(got-0.85) > 1e-9 {
		t.Fatalf("weighted mean: want 0.85, got %f", got)
	}
}

func TestRatingScore_NilRatingCountsAsZero(t *testing.T) {
	// missing rating drags the mean down instead of erroring
	p := domain.Place{Ratings: []domain.ProviderRating{
		{Provider: domain.ProviderYelp, Rating: pf(5.0), ReviewCount: 10},
		{Provider: domain.ProviderTripAdvisor, Rating: nil, ReviewCount: 10},
	}}
	got := domain.RatingScore(p)
	if math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("want 0.5, got %f", got)
	}
}

func TestReviewScore_MaxGuards(t *testing.T) {
	p := ratedPlace("p", 4.0, 1, 0)
	if s := domain.ReviewScore(p, 0); s != 0 {
		t.Fatalf("max=0: want 0, got %f", s)
	}
	if s := domain.ReviewScore(p, 1); s != 0 {
		t.Fatalf("max=1: want 0, got %f", s)
	}
	best := ratedPlace("best", 4.0, 120, 80)
	if s := domain.ReviewScore(best, 200); math.Abs(s-1) > 1e-9 {
		t.Fatalf("best-reviewed place should score 1, got %f", s)
	}
}

func TestMaxReviewCount(t *testing.T) {
	ps := []domain.Place{
		ratedPlace("a", 3, 10, 5),
		ratedPlace("b", 3, 0, 40),
		ratedPlace("c", 3, 0, 0),
	}
	if m := domain.MaxReviewCount(ps); m != 40 {
		t.Fatalf("want 40, got %d", m)
	}
	if m := domain.MaxReviewCount(nil); m != 0 {
		t.Fatalf("empty set: want 0, got %d", m)
	}
}
