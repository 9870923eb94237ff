package clock

import (
	"fmt"
	"time"
)

const (
	dateLayout  = "02/01/2006"
	clockLayout = "15:04:05"
	stampLayout = "2006-01-02 15:04:05"
)

// DefaultZone is used when no timezone is configured.
const DefaultZone = "Europe/Berlin"

// DateKey renders a time as the DD/MM/YYYY key used in timesheet rows.
func DateKey(t time.Time) string {
	return t.Format(dateLayout)
}

// ParseDateKey parses a DD/MM/YYYY key. Record ordering must go through
// this rather than comparing key strings, which mis-order across months.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.Parse(dateLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date key %q: %w", key, err)
	}
	return t, nil
}

// ClockString renders a wall-clock HH:MM:SS string.
func ClockString(t time.Time) string {
	return t.Format(clockLayout)
}

// ParseClock parses an HH:MM:SS string.
func ParseClock(s string) (time.Time, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad clock string %q: %w", s, err)
	}
	return t, nil
}

// Stamp renders the "Last Updated" timestamp format.
func Stamp(t time.Time) string {
	return t.Format(stampLayout)
}

// FormatDuration renders a duration as "{H}h {M}m", floored to whole
// minutes. Negative durations (clock skew) clamp to "0h 0m".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d.Seconds())
	return fmt.Sprintf("%dh %dm", total/3600, (total%3600)/60)
}

// Between computes the worked duration from a row's clock strings. The
// clock-out is assumed to follow the clock-in on the same day; a pair that
// parses but runs backwards yields a negative duration for FormatDuration
// to clamp.
func Between(inClock, outClock string) (time.Duration, error) {
	in, err := ParseClock(inClock)
	if err != nil {
		return 0, err
	}
	out, err := ParseClock(outClock)
	if err != nil {
		return 0, err
	}
	return out.Sub(in), nil
}

// Zone resolves the timezone used to stamp records. Coordinates are
// accepted so a coordinate-aware resolver can be dropped in; the default
// implementation ignores them and always answers its configured zone.
type Zone interface {
	Locate(lat, lon float64) *time.Location
}

type fixedZone struct {
	loc *time.Location
}

// FixedZone returns a Zone pinned to the named IANA zone, falling back to
// DefaultZone and then UTC if the name does not resolve.
func FixedZone(name string) Zone {
	if name == "" {
		name = DefaultZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		loc, err = time.LoadLocation(DefaultZone)
		if err != nil {
			loc = time.UTC
		}
	}
	return fixedZone{loc: loc}
}

func (z fixedZone) Locate(lat, lon float64) *time.Location {
	return z.loc
}
