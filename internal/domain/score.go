package domain

import "math"

// Composite score weights. Review volume is weighted twice as heavily as
// absolute rating so a well-reviewed 4.2 outranks a single 5.0.
const (
	ratingWeight = 1.0
	reviewWeight = 2.0
)

// RatingScore is the review-count-weighted mean rating normalized to [0,1].
// Places with no reviews score 0.
func RatingScore(p Place) float64 {
	var sum float64
	var count int
	for _, r := range p.Ratings {
		if r.ReviewCount <= 0 {
			continue
		}
		rating := 0.0
		if r.Rating != nil {
			rating = *r.Rating
		}
		sum += rating * float64(r.ReviewCount)
		count += r.ReviewCount
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count) / 5
}

// ReviewScore is log-scaled review volume relative to the best-reviewed
// place in the candidate set. maxReviews is computed once per ranking call
// (see MaxReviewCount); when it is 0 or 1 every place scores 0, since log10
// of the max would be 0 and the ratio undefined.
func ReviewScore(p Place, maxReviews int) float64 {
	if maxReviews <= 1 {
		return 0
	}
	total := p.TotalReviews()
	if total <= 0 {
		return 0
	}
	s := math.Log10(float64(total)) / math.Log10(float64(maxReviews))
	if s > 1 {
		s = 1
	}
	return s
}

// CompositeScore blends rating quality and review volume into [0,1].
func CompositeScore(p Place, maxReviews int) float64 {
	return (RatingScore(p)*ratingWeight + ReviewScore(p, maxReviews)*reviewWeight) /
		(ratingWeight + reviewWeight)
}

// MaxReviewCount returns the largest per-place review total across the
// candidate set. Callers compute this once per ranking pass.
func MaxReviewCount(ps []Place) int {
	max := 0
	for _, p := range ps {
		if n := p.TotalReviews(); n > max {
			max = n
		}
	}
	return max
}
