package booking

import (
	"testing"
	"time"

	"barberhive/models"
)

func at(clock string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", "2024-06-10 "+clock, testLoc)
	if err != nil {
		panic(err)
	}
	return t
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"touching end to start", NewInterval(at("09:30"), 30), NewInterval(at("10:00"), 45), false},
		{"touching start to end", NewInterval(at("10:00"), 30), NewInterval(at("09:00"), 60), false},
		{"identical", NewInterval(at("14:00"), 30), NewInterval(at("14:00"), 30), true},
		{"partial", NewInterval(at("14:00"), 30), NewInterval(at("14:15"), 30), true},
		{"contained", NewInterval(at("14:00"), 90), NewInterval(at("14:30"), 15), true},
		{"different start longer service", NewInterval(at("13:45"), 30), NewInterval(at("14:00"), 30), true},
		{"disjoint", NewInterval(at("08:00"), 30), NewInterval(at("17:00"), 30), false},
		{"zero width inside", NewInterval(at("14:10"), 0), NewInterval(at("14:00"), 30), true},
		{"zero width at start", NewInterval(at("14:00"), 0), NewInterval(at("14:00"), 30), false},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.a, tt.b); got != tt.want {
				t.Fatalf("Overlaps(a, b)=%v, want %v", got, tt.want)
			}
			if got := Overlaps(tt.b, tt.a); got != tt.want {
				t.Fatalf("Overlaps(b, a)=%v, want %v (not symmetric)", got, tt.want)
			}
		})
	}
}

func TestOverlapsSymmetricGrid(t *testing.T) {
	durations := []int{0, 5, 15, 30, 45, 90}
	var intervals []Interval
	for m := 0; m <= 180; m += 15 {
		for _, d := range durations {
			intervals = append(intervals, NewInterval(at("12:00").Add(time.Duration(m)*time.Minute), d))
		}
	}
	for _, a := range intervals {
		for _, b := range intervals {
			if Overlaps(a, b) != Overlaps(b, a) {
				t.Fatalf("asymmetric overlap for %v and %v", a, b)
			}
		}
	}
}

func TestAvailableIgnoresNonOccupying(t *testing.T) {
	candidate := NewInterval(at("14:00"), 30)
	mk := func(status models.BookingStatus) models.Booking {
		return models.Booking{StartAt: at("14:00"), EndAt: at("14:30"), DurationMinutes: 30, Status: status}
	}

	for _, status := range []models.BookingStatus{models.BookingCancelled, models.BookingCompleted} {
		if !Available(candidate, []models.Booking{mk(status)}) {
			t.Fatalf("%s booking must not block", status)
		}
	}
	for _, status := range []models.BookingStatus{models.BookingPending, models.BookingConfirmed} {
		if Available(candidate, []models.Booking{mk(status)}) {
			t.Fatalf("%s booking must block", status)
		}
	}
}
