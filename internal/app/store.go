package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"place_discovery/internal/adapters/observability"
	"place_discovery/internal/domain"
)

// Listener receives the displayed collection after every committed mutation,
// exactly once per commit, in commit order. Callbacks run on the store's
// dispatcher goroutine, never under the store lock.
type Listener func(displayed []domain.Place)

// PlaceStore holds the full place collection and the filtered, ranked subset
// currently displayed. One lock guards allPlaces, displayed and the index map
// as a unit, so readers never observe fields from two different commits. The
// lock is never held across a network call.
type PlaceStore struct {
	source   domain.PlaceSource
	events   domain.EventSource
	travel   *TravelTimeCache
	cache    domain.Cache
	radiusKm float64
	cacheTTL time.Duration

	mu        sync.RWMutex
	all       []domain.Place
	displayed []domain.Place
	indexByID map[string]int
	filters   domain.FilterSet
	location  domain.Coordinate
	located   bool
	gen       uint64 // bumped per pipeline run; stale commits are discarded

	lookups singleflight.Group

	notifyMu  sync.Mutex
	listeners map[int]Listener
	nextSub   int
	pending   [][]domain.Place

	wake      chan struct{}
	quit      chan struct{}
	drained   chan struct{}
	closeOnce sync.Once
}

// NewPlaceStore wires a store over its collaborators and starts the
// notification dispatcher. events, travel and cache may be nil; the store
// degrades to places-only results, distance ranking and uncached lookups.
func NewPlaceStore(src domain.PlaceSource, events domain.EventSource, travel *TravelTimeCache,
	cache domain.Cache, radiusKm float64, cacheTTL time.Duration) *PlaceStore {
	s := &PlaceStore{
		source:    src,
		events:    events,
		travel:    travel,
		cache:     cache,
		radiusKm:  radiusKm,
		cacheTTL:  cacheTTL,
		indexByID: map[string]int{},
		filters:   domain.DefaultFilterSet(),
		listeners: map[int]Listener{},
		wake:      make(chan struct{}, 1),
		quit:      make(chan struct{}),
		drained:   make(chan struct{}),
	}
	go s.dispatch()
	return s
}

// UpdateFromLocation runs the full pipeline for a new reference location:
// fetch places and events, filter, rank, then atomically replace the
// collection. An events failure drops events from this update rather than
// failing it; a places failure fails the whole update.
func (s *PlaceStore) UpdateFromLocation(ctx context.Context, loc domain.Coordinate) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.location = loc
	s.located = true
	filters := s.filters.Clone()
	s.mu.Unlock()

	if s.travel != nil {
		s.travel.Rebase(loc)
	}

	var (
		places []domain.Place
		events []domain.Event
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ps, err := s.source.GetPlaces(gctx, loc, s.radiusKm)
		if err != nil {
			return err
		}
		places = ps
		return nil
	})
	if s.events != nil {
		g.Go(func() error {
			evs, err := s.events.SearchEvents(gctx, loc)
			if err != nil {
				log.Warn().Err(err).Msg("events fetch failed, continuing without events")
				return nil
			}
			events = evs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, ev := range events {
		places = append(places, ev.AsPlace())
	}

	displayed := s.rank(ctx, ApplyFilter(places, filters, time.Now()), loc, true, filters)
	return s.commit(gen, places, displayed, "location")
}

// Refresh re-applies filtering and ranking to the places already held,
// without contacting the geo source.
func (s *PlaceStore) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	all := append([]domain.Place(nil), s.all...)
	loc, located := s.location, s.located
	filters := s.filters.Clone()
	s.mu.Unlock()

	displayed := s.rank(ctx, ApplyFilter(all, filters, time.Now()), loc, located, filters)
	return s.commit(gen, all, displayed, "refresh")
}

// SetFilters replaces the filter configuration and recomputes the displayed
// subset from the places already held.
func (s *PlaceStore) SetFilters(ctx context.Context, f domain.FilterSet) error {
	f = f.Clone()
	s.mu.Lock()
	s.filters = f
	s.gen++
	gen := s.gen
	all := append([]domain.Place(nil), s.all...)
	loc, located := s.location, s.located
	s.mu.Unlock()

	displayed := s.rank(ctx, ApplyFilter(all, f, time.Now()), loc, located, f)
	return s.commit(gen, all, displayed, "filters")
}

func (s *PlaceStore) rank(ctx context.Context, ps []domain.Place, from domain.Coordinate,
	located bool, f domain.FilterSet) []domain.Place {
	start := time.Now()
	switch {
	case f.TopRated:
		ps = SortByRating(ps)
		observability.ObserveRerank("top_rated", time.Since(start))
	case located && s.travel != nil:
		ps = SortByTravelTime(ctx, ps, from, s.travel)
		observability.ObserveRerank("travel_time", time.Since(start))
	case located:
		ps = SortByDistance(ps, from, true)
		observability.ObserveRerank("distance", time.Since(start))
	}
	return ps
}

// commit atomically replaces the collection and queues the notification. A
// commit whose pipeline generation has been superseded is discarded, so an
// older slow fetch can never clobber newer state.
func (s *PlaceStore) commit(gen uint64, all, displayed []domain.Place, trigger string) error {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		log.Debug().Str("trigger", trigger).Msg("discarding superseded commit")
		return nil
	}
	s.all = all
	s.displayed = displayed
	idx := make(map[string]int, len(displayed))
	for i, p := range displayed {
		idx[p.ID] = i
	}
	s.indexByID = idx
	s.enqueue(append([]domain.Place(nil), displayed...))
	s.mu.Unlock()

	observability.ObserveCommit(trigger)
	return nil
}

// PlaceAt returns the displayed element at index i, or ErrOutOfRange when i
// is outside [0, Count).
func (s *PlaceStore) PlaceAt(i int) (domain.Place, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.displayed) {
		return domain.Place{}, domain.ErrOutOfRange
	}
	return s.displayed[i], nil
}

// PlaceByKey resolves a place by id. Displayed places answer from the index
// map without touching the network; anything else goes through the shared
// cache and then the geo source, with concurrent lookups for the same id
// collapsed onto one flight.
func (s *PlaceStore) PlaceByKey(ctx context.Context, id string) (domain.Place, error) {
	s.mu.RLock()
	if i, ok := s.indexByID[id]; ok {
		p := s.displayed[i]
		s.mu.RUnlock()
		return p, nil
	}
	s.mu.RUnlock()

	v, err, _ := s.lookups.Do(id, func() (any, error) {
		key := "place:" + id
		if s.cache != nil {
			var p domain.Place
			if ok, _ := s.cache.Get(ctx, key, &p); ok {
				return p, nil
			}
		}
		got, err := s.source.GetPlace(ctx, id)
		if err != nil {
			return domain.Place{}, err
		}
		if s.cache != nil {
			_ = s.cache.Set(ctx, key, got, int(s.cacheTTL.Seconds()))
		}
		return got, nil
	})
	if err != nil {
		return domain.Place{}, err
	}
	return v.(domain.Place), nil
}

// Next returns the element after p in the displayed order, nil at the end.
// When p is no longer displayed the first element is returned instead, so a
// detail view stays navigable after the list changed under it.
func (s *PlaceStore) Next(p domain.Place) *domain.Place {
	n, _ := s.Adjacent(p, 1)
	return n
}

// Previous returns the element before p, nil at the start or when p is not
// displayed.
func (s *PlaceStore) Previous(p domain.Place) *domain.Place {
	n, _ := s.Adjacent(p, -1)
	return n
}

// Adjacent resolves the displayed neighbour of p in direction dir (positive
// for next, negative for previous) together with the displayed collection it
// was resolved against, from one critical section. Callers deriving anything
// from the neighbour (scores, positions) must use the returned collection,
// not a later read that may see another commit. The unknown-id fallback is
// asymmetric: forward navigation restarts at the first element, backward
// stops.
func (s *PlaceStore) Adjacent(p domain.Place, dir int) (*domain.Place, []domain.Place) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	displayed := append([]domain.Place(nil), s.displayed...)
	i, ok := s.indexByID[p.ID]
	if !ok {
		if dir > 0 && len(displayed) > 0 {
			first := displayed[0]
			return &first, displayed
		}
		return nil, displayed
	}
	j := i + dir
	if j < 0 || j >= len(displayed) {
		return nil, displayed
	}
	n := displayed[j]
	return &n, displayed
}

// Count reports how many places are currently displayed.
func (s *PlaceStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.displayed)
}

// IndexOf reports the displayed position of a place.
func (s *PlaceStore) IndexOf(p domain.Place) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.indexByID[p.ID]
	return i, ok
}

// Snapshot returns copies of the full and displayed collections taken in one
// critical section, never a mix of two commits.
func (s *PlaceStore) Snapshot() (all, displayed []domain.Place) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all = append([]domain.Place(nil), s.all...)
	displayed = append([]domain.Place(nil), s.displayed...)
	return all, displayed
}

// Filters returns a copy of the current filter configuration.
func (s *PlaceStore) Filters() domain.FilterSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters.Clone()
}

// TravelTimes reports the resolved travel-time entry for a place id, if the
// fetcher has completed one for the current reference location.
func (s *PlaceStore) TravelTimes(id string) (domain.TravelTimeEntry, bool) {
	if s.travel == nil {
		return domain.TravelTimeEntry{}, false
	}
	return s.travel.Resolved(id)
}

// Subscribe registers a listener for committed mutations. The returned
// function removes the registration; the store never owns its listeners.
func (s *PlaceStore) Subscribe(fn Listener) func() {
	s.notifyMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	s.notifyMu.Unlock()
	return func() {
		s.notifyMu.Lock()
		delete(s.listeners, id)
		s.notifyMu.Unlock()
	}
}

// enqueue runs with the write lock held so notifications queue in commit
// order. Delivery happens on the dispatcher goroutine.
func (s *PlaceStore) enqueue(snap []domain.Place) {
	s.notifyMu.Lock()
	s.pending = append(s.pending, snap)
	s.notifyMu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *PlaceStore) dispatch() {
	defer close(s.drained)
	for {
		select {
		case <-s.wake:
			s.flush()
		case <-s.quit:
			s.flush()
			return
		}
	}
}

func (s *PlaceStore) flush() {
	for {
		s.notifyMu.Lock()
		if len(s.pending) == 0 {
			s.notifyMu.Unlock()
			return
		}
		snap := s.pending[0]
		s.pending = s.pending[1:]
		fns := make([]Listener, 0, len(s.listeners))
		for _, fn := range s.listeners {
			fns = append(fns, fn)
		}
		s.notifyMu.Unlock()
		for _, fn := range fns {
			fn(snap)
		}
	}
}

// Close stops the dispatcher after delivering queued notifications.
func (s *PlaceStore) Close() {
	s.closeOnce.Do(func() { close(s.quit) })
	<-s.drained
}
