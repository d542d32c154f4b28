package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"place_discovery/internal/adapters/observability"
	"place_discovery/internal/domain"
)

// Client queries the events provider. Events are additive to search results,
// so the client stays deliberately simple: one attempt per search, no retry
// loop; a failed call just means an update without events.
type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("events base URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 10 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

type eventPayload struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Venue      string     `json:"venue"`
	Lat        float64    `json:"lat"`
	Lon        float64    `json:"lon"`
	StartsAt   *time.Time `json:"starts_at"`
	EndsAt     *time.Time `json:"ends_at"`
	Categories []string   `json:"categories"`
	URL        string     `json:"url"`
}

type searchResponse struct {
	Events []eventPayload `json:"events"`
}

func (c *Client) SearchEvents(ctx context.Context, near domain.Coordinate) ([]domain.Event, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/events/search?near=%f,%f", c.base, near.Lat, near.Lon)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if c.key != "" {
		req.Header.Set("X-API-Key", c.key)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "place-discovery/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("events", "/events/search", 0, time.Since(start))
		return nil, err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("events", "/events/search", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("events search: status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, err
	}

	out := make([]domain.Event, 0, len(sr.Events))
	for _, e := range sr.Events {
		id := e.ID
		if id == "" {
			// some feeds omit ids; synthesize one so the entry stays addressable
			id = uuid.NewString()
		}
		ev := domain.Event{
			ID:         id,
			Name:       e.Name,
			Coord:      domain.Coordinate{Lat: e.Lat, Lon: e.Lon},
			EndsAt:     e.EndsAt,
			Categories: e.Categories,
		}
		if e.StartsAt != nil {
			ev.StartsAt = *e.StartsAt
		}
		if e.Venue != "" {
			v := e.Venue
			ev.Venue = &v
		}
		if e.URL != "" {
			link := e.URL
			ev.URL = &link
		}
		out = append(out, ev)
	}
	return out, nil
}
