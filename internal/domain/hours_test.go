package domain_test

import (
	"testing"
	"time"

	"place_discovery/internal/domain"
)

// mondayAt builds a timestamp on a known Monday in UTC.
func mondayAt(hour, min int) time.Time {
	return time.Date(2024, time.March, 4, hour, min, 0, 0, time.UTC)
}

func TestIsOpenAt_RegularHours(t *testing.T) {
	var ws domain.WeekSchedule
	ws.Days[time.Monday] = []domain.OpenRange{{Open: 9 * 60, Close: 17 * 60}}

	cases := []struct {
		at   time.Time
		want bool
	}{
		{mondayAt(8, 59), false},
		{mondayAt(9, 0), true},
		{mondayAt(12, 30), true},
		{mondayAt(16, 59), true},
		{mondayAt(17, 0), false},
	}
	for _, c := range cases {
		if got := ws.IsOpenAt(c.at); got != c.want {
			t.Fatalf("IsOpenAt(%v) = %v, want %v", c.at, got, c.want)
		}
	}
}

func TestIsOpenAt_OvernightSpill(t *testing.T) {
	// Sunday 22:00 until 02:00 Monday.
	var ws domain.WeekSchedule
	ws.Days[time.Sunday] = []domain.OpenRange{{Open: 22 * 60, Close: 2 * 60}}

	if !ws.IsOpenAt(mondayAt(1, 30)) {
		t.Fatal("Monday 01:30 should still be inside Sunday's overnight range")
	}
	if ws.IsOpenAt(mondayAt(2, 0)) {
		t.Fatal("Monday 02:00 is past close")
	}
	sundayNight := mondayAt(23, 0).AddDate(0, 0, -1)
	if !ws.IsOpenAt(sundayNight) {
		t.Fatal("Sunday 23:00 should be open")
	}
}

func TestNextOpeningAfter(t *testing.T) {
	var ws domain.WeekSchedule
	ws.Days[time.Wednesday] = []domain.OpenRange{{Open: 10 * 60, Close: 18 * 60}}

	next := ws.NextOpeningAfter(mondayAt(12, 0))
	if next == nil {
		t.Fatal("expected an opening time")
	}
	want := time.Date(2024, time.March, 6, 10, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("next opening: want %v, got %v", want, next)
	}

	// later the same day
	ws2 := domain.WeekSchedule{}
	ws2.Days[time.Monday] = []domain.OpenRange{{Open: 18 * 60, Close: 22 * 60}}
	next = ws2.NextOpeningAfter(mondayAt(12, 0))
	if next == nil || next.Hour() != 18 || next.Weekday() != time.Monday {
		t.Fatalf("same-day opening: got %v", next)
	}
}

func TestNextOpeningAfter_EmptySchedule(t *testing.T) {
	var ws domain.WeekSchedule
	if next := ws.NextOpeningAfter(mondayAt(12, 0)); next != nil {
		t.Fatalf("empty schedule: want nil, got %v", next)
	}
}
