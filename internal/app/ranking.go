package app

import (
	"context"
	"sort"

	"place_discovery/internal/domain"
)

// SortByDistance orders places by great-circle distance from the reference
// location. The sort is stable so equal distances keep input order across
// repeated refreshes.
func SortByDistance(ps []domain.Place, from domain.Coordinate, ascending bool) []domain.Place {
	out := make([]domain.Place, len(ps))
	copy(out, ps)
	dist := make(map[string]float64, len(out))
	for _, p := range out {
		dist[p.ID] = p.Coord.DistanceTo(from)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if ascending {
			return dist[out[i].ID] < dist[out[j].ID]
		}
		return dist[out[j].ID] < dist[out[i].ID]
	})
	return out
}

// SortByTravelTime ranks places by shortest known walking time from the
// reference location. The distance order seeds the result so a place whose
// fetch never settles keeps a sane position: unresolved times sort last and
// retain their distance-ranked relative order. The output always holds
// exactly the input elements, reordered.
func SortByTravelTime(ctx context.Context, ps []domain.Place, from domain.Coordinate, cache *TravelTimeCache) []domain.Place {
	seed := SortByDistance(ps, from, true)
	times := cache.Prime(ctx, seed, from)
	sort.SliceStable(seed, func(i, j int) bool {
		ti, iok := times[seed[i].ID]
		tj, jok := times[seed[j].ID]
		switch {
		case iok && jok:
			return ti < tj
		case iok:
			return true
		default:
			return false
		}
	})
	return seed
}

// SortByRating orders places by composite score, best first. The review
// volume normalizer is taken from this candidate set, so the same place can
// score differently against different candidates.
func SortByRating(ps []domain.Place) []domain.Place {
	out := make([]domain.Place, len(ps))
	copy(out, ps)
	max := domain.MaxReviewCount(out)
	score := make(map[string]float64, len(out))
	for _, p := range out {
		score[p.ID] = domain.CompositeScore(p, max)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return score[out[i].ID] > score[out[j].ID]
	})
	return out
}
