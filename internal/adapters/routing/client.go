package routing

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"place_discovery/internal/adapters/observability"
	"place_discovery/internal/domain"
)

// Client talks to the transit-routing backend. The backend is known to hang
// under load, so on top of the usual rate limiting and retries a circuit
// breaker fails calls fast once the backend stops answering, instead of
// letting every ranking pass soak up its full fetch budget.
type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
	cb   *gobreaker.CircuitBreaker[domain.TravelTimeEntry]
}

func New(base, key string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("routing base URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	c := &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}
	c.cb = gobreaker.NewCircuitBreaker[domain.TravelTimeEntry](gobreaker.Settings{
		Name:    "routing-api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 10 &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("routing breaker state change")
		},
	})
	return c, nil
}

type routeResponse struct {
	WalkingSeconds *float64 `json:"walking_seconds"`
	DrivingSeconds *float64 `json:"driving_seconds"`
}

// ComputeTravelTimes resolves travel durations for one place. Modes the
// backend did not answer stay nil in the entry.
func (c *Client) ComputeTravelTimes(ctx context.Context, p domain.Place, from domain.Coordinate,
	modes []domain.TravelMode) (domain.TravelTimeEntry, error) {
	return c.cb.Execute(func() (domain.TravelTimeEntry, error) {
		return c.fetch(ctx, p, from, modes)
	})
}

func (c *Client) fetch(ctx context.Context, p domain.Place, from domain.Coordinate,
	modes []domain.TravelMode) (domain.TravelTimeEntry, error) {
	ms := make([]string, len(modes))
	for i, m := range modes {
		ms[i] = string(m)
	}
	q := url.Values{}
	q.Set("from", fmt.Sprintf("%f,%f", from.Lat, from.Lon))
	q.Set("to", fmt.Sprintf("%f,%f", p.Coord.Lat, p.Coord.Lon))
	q.Set("modes", strings.Join(ms, ","))

	start := time.Now()
	var rr routeResponse
	err := c.get(ctx, c.base+"/routes?"+q.Encode(), &rr)
	observability.ObserveExternal("routing", "/routes", statusOf(err), time.Since(start))
	if err != nil {
		return domain.TravelTimeEntry{}, err
	}

	entry := domain.TravelTimeEntry{PlaceID: p.ID}
	if rr.WalkingSeconds != nil {
		d := time.Duration(*rr.WalkingSeconds * float64(time.Second))
		entry.Walking = &d
	}
	if rr.DrivingSeconds != nil {
		d := time.Duration(*rr.DrivingSeconds * float64(time.Second))
		entry.Driving = &d
	}
	return entry, nil
}

// ---- Internals ----

var (
	ErrNotFound     = errors.New("routing: not found")
	ErrUnauthorized = errors.New("routing: unauthorized")
	ErrForbidden    = errors.New("routing: forbidden")
)

func statusOf(err error) int {
	switch {
	case err == nil:
		return 200
	case errors.Is(err, ErrNotFound):
		return 404
	case errors.Is(err, ErrUnauthorized):
		return 401
	case errors.Is(err, ErrForbidden):
		return 403
	default:
		return 0
	}
}

// get performs a GET with client-side rate limiting, retries, and JSON decode
// into out. Retries on 429 and transient 5xx, honoring Retry-After when
// provided.
func (c *Client) get(ctx context.Context, url string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		if c.key != "" {
			req.Header.Set("X-API-Key", c.key)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "place-discovery/1.0")

		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated, http.StatusAccepted:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusNoContent:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil

		case http.StatusNotFound:
			resp.Body.Close()
			return ErrNotFound

		case http.StatusUnauthorized:
			resp.Body.Close()
			return ErrUnauthorized

		case http.StatusForbidden:
			resp.Body.Close()
			return ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential backoff delay with concurrency-safe jitter.
// i = retry attempt (0,1,2,...). Base doubles each attempt (200ms, 400ms, 800ms...),
// with up to +50% random jitter to avoid thundering herds.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
