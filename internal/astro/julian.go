// Package astro provides the solar ephemeris, sidereal time and coordinate
// frame math used to orient Sun and Moon lighting vectors.
package astro

import (
	"math"
	"time"
)

// JulianDay is a continuous day count with a fractional time-of-day component.
type JulianDay float64

// J2000 is the Julian Day of the J2000.0 epoch (2000-01-01 12:00 UTC).
const J2000 JulianDay = 2451545.0

// ToJulianDay converts a time to a fractional Julian Day.
//
// The day number comes from the integer Gregorian algorithm; the day starts at
// noon, so civil midnight is .5. Leap seconds are ignored.
func ToJulianDay(t time.Time) JulianDay {
	t = t.UTC()

	month := int(t.Month())
	a := (14 - month) / 12
	y := t.Year() + 4800 - a
	m := month + 12*a - 3

	jdn := t.Day() + (153*m+2)/5 + 365*y + floorDiv(y, 4) - floorDiv(y, 100) + floorDiv(y, 400) - 32045

	dayFrac := (float64(t.Hour()) +
		float64(t.Minute())/60 +
		float64(t.Second())/3600 +
		float64(t.Nanosecond())/3600e9) / 24.0

	return JulianDay(float64(jdn) - 0.5 + dayFrac)
}

// Centuries returns Julian centuries elapsed since J2000.0.
func (jd JulianDay) Centuries() float64 {
	return float64(jd-J2000) / 36525.0
}

// DaysSinceJ2000 returns days elapsed since J2000.0.
func (jd JulianDay) DaysSinceJ2000() float64 {
	return float64(jd - J2000)
}

// floorDiv divides rounding toward negative infinity, so years before 4800 BC
// still land on the right day.
func floorDiv(a, b int) int {
	return int(math.Floor(float64(a) / float64(b)))
}
