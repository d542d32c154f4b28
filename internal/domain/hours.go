package domain

import "time"

// WeekSchedule holds opening ranges per weekday, minutes from midnight in
// the place's local time. A range with Close <= Open spills into the next
// day (e.g. 18:00-02:00).
type WeekSchedule struct {
	Days [7][]OpenRange // indexed by time.Weekday (Sunday = 0)
}

type OpenRange struct {
	Open  int // minutes from midnight, 0..1439
	Close int
}

func (r OpenRange) overnight() bool { return r.Close <= r.Open }

// IsOpenAt reports whether the schedule is open at t, including overnight
// ranges begun the previous day.
func (s *WeekSchedule) IsOpenAt(t time.Time) bool {
	day := int(t.Weekday())
	min := t.Hour()*60 + t.Minute()

	for _, r := range s.Days[day] {
		if r.overnight() {
			if min >= r.Open {
				return true
			}
		} else if min >= r.Open && min < r.Close {
			return true
		}
	}
	// spill-over from yesterday's overnight ranges
	prev := (day + 6) % 7
	for _, r := range s.Days[prev] {
		if r.overnight() && min < r.Close {
			return true
		}
	}
	return false
}

// NextOpeningAfter returns the earliest opening time strictly after t, or
// nil when the schedule contains no ranges at all.
func (s *WeekSchedule) NextOpeningAfter(t time.Time) *time.Time {
	if s.empty() {
		return nil
	}
	day := int(t.Weekday())
	min := t.Hour()*60 + t.Minute()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())

	// scan a full week starting today; today only counts ranges still ahead
	for offset := 0; offset < 8; offset++ {
		d := (day + offset) % 7
		best := -1
		for _, r := range s.Days[d] {
			if offset == 0 && r.Open <= min {
				continue
			}
			if best < 0 || r.Open < best {
				best = r.Open
			}
		}
		if best >= 0 {
			at := midnight.AddDate(0, 0, offset).Add(time.Duration(best) * time.Minute)
			return &at
		}
	}
	return nil
}

func (s *WeekSchedule) empty() bool {
	for _, ranges := range s.Days {
		if len(ranges) > 0 {
			return false
		}
	}
	return true
}
