package app

import (
	"context"
	"sync"
	"time"

	"place_discovery/internal/adapters/observability"
	"place_discovery/internal/domain"
)

// travelFetchBudget bounds how long one ranking pass waits for travel times.
// The routing backend has been observed to hang, so batches resolve at the
// deadline with whatever settled in time instead of failing.
const travelFetchBudget = 5 * time.Second

// originEpsilonMetres: origins closer together than this share one cache
// generation; Rebase beyond it discards every entry.
const originEpsilonMetres = 25

type travelFuture struct {
	done  chan struct{}
	entry domain.TravelTimeEntry
	err   error
}

// TravelTimeCache memoizes travel-time lookups per place id. Concurrent
// requests for the same place share one in-flight fetch; completed results
// stay cached until the next Rebase. Entries accumulate per place id for the
// life of the cache generation, bounded only by the candidate set size.
type TravelTimeCache struct {
	source domain.TravelTimeSource
	budget time.Duration

	mu      sync.Mutex
	origin  domain.Coordinate
	based   bool
	entries map[string]*travelFuture
}

// NewTravelTimeCache builds a cache over src. A budget of zero or less
// falls back to the 5s default.
func NewTravelTimeCache(src domain.TravelTimeSource, budget time.Duration) *TravelTimeCache {
	if budget <= 0 {
		budget = travelFetchBudget
	}
	return &TravelTimeCache{source: src, budget: budget, entries: make(map[string]*travelFuture)}
}

// Rebase sets the reference location. Moves within the epsilon keep the
// cached entries; anything farther discards them all.
func (c *TravelTimeCache) Rebase(origin domain.Coordinate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.based && c.origin.DistanceTo(origin) <= originEpsilonMetres {
		return
	}
	c.origin = origin
	c.based = true
	c.entries = make(map[string]*travelFuture)
}

// lookup returns the future for a place, starting a fetch when none exists.
// The fetch deliberately outlives its caller: a result that misses one
// ranking pass is still usable by the next. Entries are keyed by place id
// within one origin class, so a caller whose origin no longer matches the
// cache's (a superseded pipeline priming after a far rebase) gets a detached
// future instead of inserting wrong-origin times into the current class.
// No lock is held while waiting on the backend.
func (c *TravelTimeCache) lookup(p domain.Place, from domain.Coordinate) *travelFuture {
	c.mu.Lock()
	if c.based && c.origin.DistanceTo(from) > originEpsilonMetres {
		c.mu.Unlock()
		f := &travelFuture{done: make(chan struct{})}
		go c.fetch(f, p, from)
		return f
	}
	if f, ok := c.entries[p.ID]; ok {
		c.mu.Unlock()
		return f
	}
	f := &travelFuture{done: make(chan struct{})}
	c.entries[p.ID] = f
	c.mu.Unlock()

	go c.fetch(f, p, from)
	return f
}

func (c *TravelTimeCache) fetch(f *travelFuture, p domain.Place, from domain.Coordinate) {
	entry, err := c.source.ComputeTravelTimes(context.Background(), p, from,
		[]domain.TravelMode{domain.ModeWalking})
	if err != nil {
		observability.ObserveTravelFetch("error")
	} else {
		observability.ObserveTravelFetch("resolved")
	}
	f.entry, f.err = entry, err
	close(f.done)
}

// Resolved reports the completed entry for a place id, if one has settled
// successfully. It never blocks.
func (c *TravelTimeCache) Resolved(id string) (domain.TravelTimeEntry, bool) {
	c.mu.Lock()
	f, ok := c.entries[id]
	c.mu.Unlock()
	if !ok {
		return domain.TravelTimeEntry{}, false
	}
	return settled(f)
}

// Prime requests travel times for every place and waits until all settle or
// the fetch budget expires, whichever comes first. The returned map holds
// walking times for the places that resolved; absent ids simply never made
// it in time and their fetches keep running.
func (c *TravelTimeCache) Prime(ctx context.Context, ps []domain.Place, from domain.Coordinate) map[string]time.Duration {
	futures := make([]*travelFuture, len(ps))
	for i, p := range ps {
		futures[i] = c.lookup(p, from)
	}

	deadline := time.NewTimer(c.budget)
	defer deadline.Stop()

	out := make(map[string]time.Duration, len(ps))
	expired := false
	for i, f := range futures {
		if !expired {
			select {
			case <-f.done:
			case <-deadline.C:
				expired = true
			case <-ctx.Done():
				expired = true
			}
		}
		select {
		case <-f.done:
			// settled in time; the fetch goroutine recorded its outcome
			if f.err == nil && f.entry.Walking != nil {
				out[ps[i].ID] = *f.entry.Walking
			}
		default:
			observability.ObserveTravelFetch("timeout")
		}
	}
	return out
}

func settled(f *travelFuture) (domain.TravelTimeEntry, bool) {
	select {
	case <-f.done:
		if f.err != nil {
			return domain.TravelTimeEntry{}, false
		}
		return f.entry, true
	default:
		return domain.TravelTimeEntry{}, false
	}
}
