package astro

import "math"

// GMST returns Greenwich Mean Sidereal Time in degrees, normalized to [0, 360).
// Uses the linear IAU term only; the T² and T³ corrections are below this
// model's accuracy.
func GMST(jd JulianDay) float64 {
	return normalizeAngle360(280.46061837 + 360.98564736629*jd.DaysSinceJ2000())
}

// LST returns Local Sidereal Time in degrees for an east-positive longitude.
func LST(gmstDeg, lonDeg float64) float64 {
	return normalizeAngle360(gmstDeg + lonDeg)
}

// HourAngle returns LST − RA in radians, wrapped into (−π, π].
// Positive values are west of the meridian.
func HourAngle(lstDeg, raRad float64) float64 {
	return wrapPi(degToRad(lstDeg) - raRad)
}

// SiderealSource returns Greenwich sidereal time in hours for a Julian Day.
type SiderealSource func(jd JulianDay) (float64, error)

// MeanSidereal is the default SiderealSource, backed by GMST.
func MeanSidereal(jd JulianDay) (float64, error) {
	return GMST(jd) / 15, nil
}

// wrapPi wraps an angle in radians into (−π, π].
func wrapPi(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}
