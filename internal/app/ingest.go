package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"place_discovery/internal/domain"
)

// IngestionService normalizes raw provider payloads and persists them as
// place records.
type IngestionService struct {
	repo  domain.PlaceSource
	cache domain.Cache
}

func NewIngestionService(r domain.PlaceSource, cache domain.Cache) *IngestionService {
	return &IngestionService{repo: r, cache: cache}
}

// IngestPlaces maps raw payloads into place records and upserts them.
// Payloads that cannot be mapped are skipped and counted, never fatal. The
// cache entry of every upserted place is evicted so lookups stop serving the
// old snapshot.
func (s *IngestionService) IngestPlaces(ctx context.Context, raw []map[string]any) (int, error) {
	ps := make([]domain.Place, 0, len(raw))
	skipped := 0
	for _, r := range raw {
		p, ok := mapPlace(r)
		if !ok {
			skipped++
			continue
		}
		ps = append(ps, p)
	}
	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Msg("dropped payloads with no coordinate or identity")
	}
	if len(ps) == 0 {
		return 0, nil
	}

	if err := s.repo.UpsertPlaces(ctx, ps); err != nil {
		return 0, fmt.Errorf("upsert places: %w", err)
	}
	if s.cache != nil {
		for _, p := range ps {
			_ = s.cache.Del(ctx, "place:"+p.ID)
		}
	}
	return len(ps), nil
}
