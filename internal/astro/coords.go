package astro

import (
	"math"
	"time"
)

// DegenerateProjection is the horizontal-projection magnitude below which the
// azimuth is considered undefined (about 0.06° from zenith or nadir).
const DegenerateProjection = 1e-3

// HorizontalPosition is an observer-relative altitude/azimuth.
//
// Azimuth: 0° = North, 90° = East, 180° = South, 270° = West.
// When AzimuthDefined is false the azimuth is a placeholder that only keeps
// NaN out of downstream math; it has no physical meaning.
type HorizontalPosition struct {
	AltitudeDeg    float64
	AzimuthDeg     float64
	AzimuthDefined bool
}

// Observer is a geographic coordinate on the Earth's surface.
type Observer struct {
	LatDeg float64 // north positive, [-90, 90]
	LonDeg float64 // east positive, (-180, 180]
	Name   string  // optional label
}

// ToHorizontal converts declination and hour angle to altitude/azimuth for an
// observer at latDeg.
//
// Azimuth uses the vector form atan2(east, north), which has no division by
// cos(altitude). Within DegenerateProjection of the zenith or nadir the
// azimuth is undefined and a placeholder is returned (see placeholderAzimuth).
func ToHorizontal(latDeg, decRad, hourAngleRad float64) HorizontalPosition {
	lat := degToRad(latDeg)
	sinLat, cosLat := math.Sincos(lat)
	sinDec, cosDec := math.Sincos(decRad)
	sinH, cosH := math.Sincos(hourAngleRad)

	sinAlt := sinLat*sinDec + cosLat*cosDec*cosH
	alt := radToDeg(math.Asin(clampUnit(sinAlt)))

	// Hour angle grows westward, so the east component carries a minus sign.
	xEast := -cosDec * sinH
	yNorth := cosLat*sinDec - sinLat*cosDec*cosH

	if math.Hypot(xEast, yNorth) < DegenerateProjection {
		return HorizontalPosition{
			AltitudeDeg:    alt,
			AzimuthDeg:     placeholderAzimuth(latDeg, hourAngleRad),
			AzimuthDefined: false,
		}
	}

	az := normalizeAngle360(radToDeg(math.Atan2(xEast, yNorth)))

	return HorizontalPosition{
		AltitudeDeg:    alt,
		AzimuthDeg:     az,
		AzimuthDefined: true,
	}
}

// placeholderAzimuth picks 0° or 180° from the latitude and hour-angle signs:
// a northern observer with the body near upper culmination faces south.
// This is a compatibility heuristic, not a physical azimuth.
func placeholderAzimuth(latDeg, hourAngleRad float64) float64 {
	nearUpper := math.Abs(hourAngleRad) <= math.Pi/2
	if (latDeg >= 0) == nearUpper {
		return 180
	}
	return 0
}

// SunHorizontal computes the Sun's horizontal position for an observer with
// the default low-precision model.
func SunHorizontal(t time.Time, obs Observer) HorizontalPosition {
	jd := ToJulianDay(t)
	sun := SolarEquatorialPosition(jd)
	ha := HourAngle(LST(GMST(jd), obs.LonDeg), sun.RightAscensionRad)
	return ToHorizontal(obs.LatDeg, sun.DeclinationRad, ha)
}
