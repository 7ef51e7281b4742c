// Package circular implements circular (time-of-day) statistics for
// camera-trap activity analysis: clock-to-angle conversion, von Mises
// kernel density estimation on the circle, the Rayleigh uniformity test,
// and the coefficient of overlap between two activity distributions with
// bootstrap confidence intervals.
package circular

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const twoPi = 2 * math.Pi

// Normalize converts a wall-clock time of day to an angle in [0, 2π).
// Midnight maps to 0 and the mapping is linear in elapsed seconds, so
// 06:00:00 maps to π/2 and 18:00:00 to 3π/2. Hour 24 is not accepted;
// it is the same instant as hour 0 of the next day.
func Normalize(hour, minute, second int) (float64, error) {
	if hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%w: hour %d out of range [0,24)", ErrInvalidTime, hour)
	}
	if minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: minute %d out of range [0,60)", ErrInvalidTime, minute)
	}
	if second < 0 || second > 59 {
		return 0, fmt.Errorf("%w: second %d out of range [0,60)", ErrInvalidTime, second)
	}

	decimalHours := float64(hour) + float64(minute)/60.0 + float64(second)/3600.0
	return decimalHours / 24.0 * twoPi, nil
}

// ParseClock parses a "HH:MM:SS" or "HH:MM" string and returns its angle.
// Malformed strings are rejected rather than propagated as NaN; the whole
// string must be consumed, so trailing text such as an AM/PM suffix or a
// fractional second is an error, not a truncated parse.
func ParseClock(s string) (float64, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: cannot parse %q as HH:MM[:SS]", ErrInvalidTime, s)
	}

	fields := [3]int{}
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil {
			return 0, fmt.Errorf("%w: cannot parse %q as HH:MM[:SS]", ErrInvalidTime, s)
		}
		fields[i] = v
	}

	return Normalize(fields[0], fields[1], fields[2])
}

// FromTime returns the angle for the time-of-day component of t,
// including fractional seconds.
func FromTime(t time.Time) float64 {
	secs := float64(t.Hour()*3600+t.Minute()*60+t.Second()) + float64(t.Nanosecond())/1e9
	return secs / 86400.0 * twoPi
}

// ClockString renders an angle back into "HH:MM:SS" form, for reports.
func ClockString(angle float64) string {
	a := math.Mod(angle, twoPi)
	if a < 0 {
		a += twoPi
	}
	secs := int(math.Round(a / twoPi * 86400))
	secs %= 86400
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}

// Distance returns the circular distance between two angles: the shorter
// of the two arcs between them, always in [0, π].
func Distance(a, b float64) float64 {
	d := math.Abs(a - b)
	d = math.Mod(d, twoPi)
	if d > math.Pi {
		d = twoPi - d
	}
	return d
}

// wrap maps any angle onto [0, 2π).
func wrap(a float64) float64 {
	a = math.Mod(a, twoPi)
	if a < 0 {
		a += twoPi
	}
	return a
}
