package astro

import (
	"math"
	"time"
)

// TerminatorCalculator locates the day/night boundary meridian.
//
// The result depends only on the instant; the observer arguments exist so
// callers can pass a birth point or render observer without special-casing.
type TerminatorCalculator struct {
	Sun      SolarModel     // defaults to LowPrecisionSun
	Sidereal SiderealSource // nil forces the simplified estimate
}

// DefaultTerminator uses the low-precision Sun and mean sidereal time.
func DefaultTerminator() TerminatorCalculator {
	return TerminatorCalculator{Sun: LowPrecisionSun{}, Sidereal: MeanSidereal}
}

// Longitude returns the terminator longitude in [-180, 180) degrees, and
// whether the simplified estimate had to be used because sidereal time was
// unavailable.
func (c TerminatorCalculator) Longitude(t time.Time, latDeg, lonDeg float64) (float64, bool) {
	if c.Sidereal == nil {
		return EstimatedTerminator(t), true
	}

	jd := ToJulianDay(t)
	gstHours, err := c.Sidereal(jd)
	if err != nil || math.IsNaN(gstHours) || math.IsInf(gstHours, 0) {
		return EstimatedTerminator(t), true
	}

	sun := c.Sun
	if sun == nil {
		sun = LowPrecisionSun{}
	}
	ra := sun.Equatorial(jd).RADeg()
	return SubSolarTerminator(ra, gstHours), false
}

// TerminatorLongitude is DefaultTerminator().Longitude without the fallback flag.
func TerminatorLongitude(t time.Time, latDeg, lonDeg float64) float64 {
	lon, _ := DefaultTerminator().Longitude(t, latDeg, lonDeg)
	return lon
}

// SubSolarLongitude returns the longitude where the Sun is overhead.
func SubSolarLongitude(raDeg, gstHours float64) float64 {
	return NormalizeLongitude(raDeg - gstHours*15)
}

// SubSolarTerminator returns the morning/evening boundary, 90° west of the
// sub-solar meridian.
func SubSolarTerminator(raDeg, gstHours float64) float64 {
	return NormalizeLongitude(SubSolarLongitude(raDeg, gstHours) - 90)
}

// EstimatedTerminator approximates the terminator from UTC time of day alone.
func EstimatedTerminator(t time.Time) float64 {
	t = t.UTC()
	hours := float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
	return NormalizeLongitude(hours*15 + 90)
}

// NormalizeLongitude wraps degrees into [-180, 180).
func NormalizeLongitude(deg float64) float64 {
	a := math.Mod(deg+180, 360)
	if a < 0 {
		a += 360
	}
	return a - 180
}
