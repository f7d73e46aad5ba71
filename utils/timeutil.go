package utils

import (
	"fmt"
	"time"

	"barberhive/config"

	"go.uber.org/zap"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Location returns the single local time zone bookings are expressed in.
// An unknown zone name falls back to UTC.
func Location() *time.Location {
	name := config.AppConfig.Timezone
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		GetLogger().Warn("unknown TIMEZONE, falling back to UTC", zap.String("timezone", name), zap.Error(err))
		return time.UTC
	}
	return loc
}

// LocalDateTime combines a "2006-01-02" date and a "15:04" wall-clock time in loc.
func LocalDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time %q %q: %w", date, clock, err)
	}
	return t, nil
}

// ParseDate parses a "2006-01-02" calendar date at local midnight.
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t, nil
}

// ParseClock returns minutes after midnight for a "15:04" string.
func ParseClock(clock string) (int, error) {
	t, err := time.Parse(ClockLayout, clock)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", clock, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes after midnight as "15:04".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", (minutes/60)%24, minutes%60)
}
