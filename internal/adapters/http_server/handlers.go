package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"place_discovery/internal/app"
	"place_discovery/internal/domain"
)

type Handlers struct{ Store *app.PlaceStore }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/places", h.listPlaces)
	s.mux.Get("/v1/places/at/{index}", h.placeAt)
	s.mux.Get("/v1/places/{id}", h.getPlace)
	s.mux.Get("/v1/places/{id}/next", h.nextPlace)
	s.mux.Get("/v1/places/{id}/previous", h.previousPlace)
	s.mux.Get("/v1/filters", h.getFilters)
	s.mux.Put("/v1/filters", h.putFilters)
	s.mux.Put("/v1/location", h.putLocation)
}

// ---- wire types ----

type placeView struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Lat            float64  `json:"lat"`
	Lon            float64  `json:"lon"`
	Bucket         string   `json:"bucket,omitempty"`
	Address        *string  `json:"address,omitempty"`
	ImageURL       *string  `json:"image_url,omitempty"`
	Score          float64  `json:"score"`
	WalkingSeconds *float64 `json:"walking_seconds,omitempty"`
	DrivingSeconds *float64 `json:"driving_seconds,omitempty"`
}

type ratingView struct {
	Provider string   `json:"provider"`
	Rating   *float64 `json:"rating,omitempty"`
	Reviews  int      `json:"reviews"`
}

type placeDetail struct {
	placeView
	Categories   []string     `json:"categories,omitempty"`
	Ratings      []ratingView `json:"ratings,omitempty"`
	TotalReviews int          `json:"total_reviews"`
	OpenNow      *bool        `json:"open_now,omitempty"`
}

type listResponse struct {
	Count  int         `json:"count"`
	Places []placeView `json:"places"`
}

type locationPayload struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type filtersPayload struct {
	Buckets  []string `json:"buckets"`
	TopRated bool     `json:"top_rated"`
}

type statusResponse struct {
	Displayed int `json:"displayed"`
}

func (h *Handlers) view(p domain.Place, maxReviews int) placeView {
	v := placeView{
		ID:       p.ID,
		Name:     p.Name,
		Lat:      p.Coord.Lat,
		Lon:      p.Coord.Lon,
		Address:  p.Address,
		ImageURL: p.ImageURL,
		Score:    domain.CompositeScore(p, maxReviews),
	}
	if b, ok := domain.ClassifyPlace(p); ok {
		v.Bucket = string(b)
	}
	if tt, ok := h.Store.TravelTimes(p.ID); ok {
		v.WalkingSeconds = secondsOf(tt.Walking)
		v.DrivingSeconds = secondsOf(tt.Driving)
	}
	return v
}

func (h *Handlers) detail(p domain.Place) placeDetail {
	_, displayed := h.Store.Snapshot()
	d := placeDetail{
		placeView:    h.view(p, domain.MaxReviewCount(displayed)),
		Categories:   p.Categories,
		TotalReviews: p.TotalReviews(),
	}
	for _, pr := range p.Ratings {
		d.Ratings = append(d.Ratings, ratingView{Provider: pr.Provider, Rating: pr.Rating, Reviews: pr.ReviewCount})
	}
	if p.Hours != nil {
		open := p.Hours.IsOpenAt(time.Now())
		d.OpenNow = &open
	}
	return d
}

func secondsOf(d *time.Duration) *float64 {
	if d == nil {
		return nil
	}
	s := d.Seconds()
	return &s
}

func parseBucket(s string) (domain.Bucket, bool) {
	for _, b := range domain.AllBuckets {
		if string(b) == s {
			return b, true
		}
	}
	return "", false
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		// Log but don't fail the whole response; return empty ETag and best-effort body.
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func (h *Handlers) listPlaces(w http.ResponseWriter, r *http.Request) {
	_, displayed := h.Store.Snapshot()
	maxReviews := domain.MaxReviewCount(displayed)

	views := make([]placeView, 0, len(displayed))
	for _, p := range displayed {
		views = append(views, h.view(p, maxReviews))
	}
	out := listResponse{Count: len(views), Places: views}

	etag, body := calcETagAndBody(out)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write listPlaces body")
	}
}

func (h *Handlers) placeAt(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || idx < 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid index", "index must be a non-negative integer")
		return
	}

	// one snapshot serves both the element and its score normalizer, so a
	// commit landing mid-request cannot mix two candidate sets
	_, displayed := h.Store.Snapshot()
	if idx >= len(displayed) {
		writeProblem(w, http.StatusNotFound, "Not Found", "no place at that position")
		return
	}
	writeJSON(w, http.StatusOK, h.view(displayed[idx], domain.MaxReviewCount(displayed)))
}

func (h *Handlers) getPlace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.Store.PlaceByKey(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "place not found")
			return
		}
		writeProblem(w, http.StatusBadGateway, "Upstream failure", "place lookup failed")
		return
	}

	resp := h.detail(p)
	etag, body := calcETagAndBody(resp)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getPlace body")
	}
}

func (h *Handlers) nextPlace(w http.ResponseWriter, r *http.Request) {
	h.adjacent(w, r, 1)
}

func (h *Handlers) previousPlace(w http.ResponseWriter, r *http.Request) {
	h.adjacent(w, r, -1)
}

// adjacent resolves the displayed neighbour of the place named in the URL.
// A missing neighbour is not an error; it answers 204 so clients can stop
// paging. The neighbour and its score normalizer come from one store read.
func (h *Handlers) adjacent(w http.ResponseWriter, r *http.Request, dir int) {
	id := chi.URLParam(r, "id")
	p, displayed := h.Store.Adjacent(domain.Place{ID: id}, dir)
	if p == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, h.view(*p, domain.MaxReviewCount(displayed)))
}

func (h *Handlers) getFilters(w http.ResponseWriter, r *http.Request) {
	f := h.Store.Filters()
	out := filtersPayload{TopRated: f.TopRated, Buckets: make([]string, 0, len(f.Buckets))}
	for _, b := range domain.AllBuckets {
		if f.Enabled(b) {
			out.Buckets = append(out.Buckets, string(b))
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) putFilters(w http.ResponseWriter, r *http.Request) {
	var req filtersPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "body must be JSON with buckets and top_rated")
		return
	}

	f := domain.FilterSet{Buckets: make(map[domain.Bucket]bool, len(req.Buckets)), TopRated: req.TopRated}
	for _, raw := range req.Buckets {
		b, ok := parseBucket(raw)
		if !ok {
			writeProblem(w, http.StatusBadRequest, "Unknown bucket", "unknown bucket "+strconv.Quote(raw))
			return
		}
		f.Buckets[b] = true
	}

	if err := h.Store.SetFilters(r.Context(), f); err != nil {
		writeProblem(w, http.StatusInternalServerError, "Filter update failed", "could not apply the new filters")
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Displayed: h.Store.Count()})
}

func (h *Handlers) putLocation(w http.ResponseWriter, r *http.Request) {
	var req locationPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "body must be JSON with lat and lon")
		return
	}
	if req.Lat < -90 || req.Lat > 90 || req.Lon < -180 || req.Lon > 180 {
		writeProblem(w, http.StatusBadRequest, "Invalid coordinates", "lat must be in [-90,90] and lon in [-180,180]")
		return
	}

	loc := domain.Coordinate{Lat: req.Lat, Lon: req.Lon}
	if err := h.Store.UpdateFromLocation(r.Context(), loc); err != nil {
		writeProblem(w, http.StatusBadGateway, "Upstream failure", "could not refresh places for the new location")
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Displayed: h.Store.Count()})
}
