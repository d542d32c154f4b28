package domain

import "math"

// Rating provider names known to the scoring model. The provider set may
// grow; scoring folds over whatever providers a place carries.
const (
	ProviderYelp        = "yelp"
	ProviderTripAdvisor = "tripadvisor"
)

type Place struct {
	ID         string // stable provider key, globally unique
	Name       string
	Coord      Coordinate
	Categories []string // ordered raw tags as delivered by the provider
	Hours      *WeekSchedule
	Ratings    []ProviderRating
	Address    *string
	ImageURL   *string
	RawJSON    []byte // full provider payload
}

type ProviderRating struct {
	Provider    string
	Rating      *float64 // 0..5, nil when the provider reported none
	ReviewCount int
}

// TotalReviews sums review counts across all providers.
func (p Place) TotalReviews() int {
	n := 0
	for _, r := range p.Ratings {
		n += r.ReviewCount
	}
	return n
}

type Coordinate struct{ Lat, Lon float64 }

// DistanceTo returns the great-circle distance in metres.
func (c Coordinate) DistanceTo(o Coordinate) float64 {
	const earthRadius = 6371000 // metres
	toRad := math.Pi / 180
	lat1 := c.Lat * toRad
	lat2 := o.Lat * toRad
	dLat := (o.Lat - c.Lat) * toRad
	dLon := (o.Lon - c.Lon) * toRad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadius * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
