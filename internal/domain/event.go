package domain

import "time"

// Event is a record from the events provider. It is never stored as-is;
// the discovery pipeline adapts it to a Place for ranking and filtering.
type Event struct {
	ID         string
	Name       string
	Venue      *string
	Coord      Coordinate
	StartsAt   time.Time
	EndsAt     *time.Time
	Categories []string
	URL        *string
}

// AsPlace adapts the event to a place-shaped record. The synthetic id
// prefix routes it to the events bucket regardless of category tags, and
// the empty schedule keeps it clear of the business-hours gate.
func (e Event) AsPlace() Place {
	return Place{
		ID:         "event:" + e.ID,
		Name:       e.Name,
		Coord:      e.Coord,
		Categories: e.Categories,
		Address:    e.Venue,
	}
}
