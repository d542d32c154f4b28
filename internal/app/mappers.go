package app

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"place_discovery/internal/domain"
)

/********** alias registry (single source of truth) **********/

var placeAliases = map[string][]string{
	"id":      {"id", "place_id", "placeId", "fsq_id", "reference"},
	"name":    {"name", "title", "place_name"},
	"address": {"address", "formatted_address", "vicinity", "location.address", "address.line"},
	"image":   {"image_url", "image", "photo_url", "thumbnail"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) *string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return &s
		}
	}
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// getFloatFlexible: number from several paths (float64/int/string like "8,0").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// firstInt64Flexible: int64 from several paths (float64/int/string).
func firstInt64Flexible(m map[string]any, paths ...string) *int64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			x := int64(v)
			return &x
		case int:
			x := int64(v)
			return &x
		case int64:
			x := v
			return &x
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				continue
			}
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return &n
			}
		}
	}
	return nil
}

// firstSliceStrings: accept []any with either strings or {name/label/title}.
func firstSliceStrings(m map[string]any, paths ...string) []string {
	for _, k := range paths {
		if raw, ok := lookupAny(m, k).([]any); ok {
			out := make([]string, 0, len(raw))
			for _, it := range raw {
				switch t := it.(type) {
				case string:
					if t != "" {
						out = append(out, t)
					}
				case map[string]any:
					if n, ok := t["name"].(string); ok && n != "" {
						out = append(out, n)
						continue
					}
					if n, ok := t["label"].(string); ok && n != "" {
						out = append(out, n)
						continue
					}
					if n, ok := t["title"].(string); ok && n != "" {
						out = append(out, n)
					}
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

/********** weekly hours **********/

var dayKeys = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday,
	"wed": time.Wednesday, "thu": time.Thursday, "fri": time.Friday,
	"sat": time.Saturday,
}

// parseHours reads a weekly schedule shaped like {"mon": [[540, 1020]], ...}
// with ranges as minutes from midnight or "HH:MM" strings. Returns nil when
// no usable range is present, which keeps the place outside the hours gate.
func parseHours(v any) *domain.WeekSchedule {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return nil
	}
	var ws domain.WeekSchedule
	found := false
	for k, raw := range m {
		day, ok := dayKeys[strings.ToLower(k)]
		if !ok {
			continue
		}
		ranges, ok := raw.([]any)
		if !ok {
			continue
		}
		for _, rr := range ranges {
			pair, ok := rr.([]any)
			if !ok || len(pair) != 2 {
				continue
			}
			open, ok1 := asMinutes(pair[0])
			cls, ok2 := asMinutes(pair[1])
			if !ok1 || !ok2 {
				continue
			}
			ws.Days[day] = append(ws.Days[day], domain.OpenRange{Open: open, Close: cls})
			found = true
		}
	}
	if !found {
		return nil
	}
	return &ws
}

// asMinutes accepts a number of minutes or an "HH:MM" string.
func asMinutes(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case string:
		parts := strings.SplitN(t, ":", 2)
		if len(parts) != 2 {
			return 0, false
		}
		h, err1 := strconv.Atoi(parts[0])
		m, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			return 0, false
		}
		return h*60 + m, true
	}
	return 0, false
}

/********** place mapper **********/

// mapPlace normalizes one raw provider payload into a Place. ok is false when
// the payload carries no coordinate, or no id and nothing to synthesize one
// from.
func mapPlace(p map[string]any) (domain.Place, bool) {
	lat := getFloatFlexible(p, "latitude", "lat", "location.lat", "coordinates.latitude")
	lon := getFloatFlexible(p, "longitude", "lon", "lng", "location.lon", "location.lng", "coordinates.longitude")
	if lat == nil || lon == nil {
		return domain.Place{}, false
	}

	id := deref(firstNonEmptyAlias(p, placeAliases, "id"))
	name := deref(firstNonEmptyAlias(p, placeAliases, "name"))
	if id == "" {
		if name == "" {
			return domain.Place{}, false
		}
		// stable synthetic id from identity-ish fields
		sig := fmt.Sprintf("%s|%.6f|%.6f", name, *lat, *lon)
		sum := sha1.Sum([]byte(sig))
		id = hex.EncodeToString(sum[:])
	}

	raw, err := json.Marshal(p)
	if err != nil {
		log.Error().Err(err).Str("context", "mapPlace").Msg("failed to marshal place payload")
	}

	out := domain.Place{
		ID:         id,
		Name:       name,
		Coord:      domain.Coordinate{Lat: *lat, Lon: *lon},
		Categories: firstSliceStrings(p, "categories", "tags", "types"),
		Hours:      parseHours(lookupAny(p, "hours")),
		Address:    firstNonEmptyAlias(p, placeAliases, "address"),
		ImageURL:   firstNonEmptyAlias(p, placeAliases, "image"),
		RawJSON:    raw,
	}

	for _, prov := range []string{domain.ProviderYelp, domain.ProviderTripAdvisor} {
		rating := getFloatFlexible(p, prov+".rating", "ratings."+prov+".rating", prov+"_rating")
		count := firstInt64Flexible(p, prov+".review_count", prov+".reviews", "ratings."+prov+".count", prov+"_review_count")
		if rating == nil && count == nil {
			continue
		}
		pr := domain.ProviderRating{Provider: prov, Rating: rating}
		if count != nil {
			pr.ReviewCount = int(*count)
		}
		out.Ratings = append(out.Ratings, pr)
	}
	return out, true
}
