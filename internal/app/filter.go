package app

import (
	"time"

	"place_discovery/internal/domain"
)

// ApplyFilter reduces a place list to the entries matching the enabled
// buckets. The hours gate runs first: a place with a schedule that is closed
// now and has no next opening is dropped regardless of filter settings, while
// a place with no schedule is never gated. Places whose tags map to no bucket
// are dropped.
func ApplyFilter(ps []domain.Place, f domain.FilterSet, now time.Time) []domain.Place {
	out := make([]domain.Place, 0, len(ps))
	for _, p := range ps {
		if p.Hours != nil && !p.Hours.IsOpenAt(now) && p.Hours.NextOpeningAfter(now) == nil {
			continue
		}
		b, ok := domain.ClassifyPlace(p)
		if !ok {
			continue
		}
		if !f.Enabled(b) {
			continue
		}
		out = append(out, p)
	}
	return out
}
