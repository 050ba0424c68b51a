package astro

import (
	"math"
)

// EquatorialPosition is an of-date right ascension and declination.
type EquatorialPosition struct {
	RightAscensionRad float64
	DeclinationRad    float64
}

// RADeg returns the right ascension in degrees, normalized to [0, 360).
func (p EquatorialPosition) RADeg() float64 {
	return normalizeAngle360(radToDeg(p.RightAscensionRad))
}

// DecDeg returns the declination in degrees.
func (p EquatorialPosition) DecDeg() float64 {
	return radToDeg(p.DeclinationRad)
}

// SolarModel computes the Sun's equatorial position for a Julian Day.
type SolarModel interface {
	Name() string
	Equatorial(jd JulianDay) EquatorialPosition
}

// LowPrecisionSun is the default SolarModel.
type LowPrecisionSun struct{}

// Name implements SolarModel.
func (LowPrecisionSun) Name() string { return "low-precision" }

// Equatorial implements SolarModel.
func (LowPrecisionSun) Equatorial(jd JulianDay) EquatorialPosition {
	return SolarEquatorialPosition(jd)
}

// SolarEquatorialPosition calculates the Sun's geometric equatorial coordinates
// using the closed-form low-precision model from the Astronomical Almanac.
// Accuracy is about 0.01°. Nutation and aberration are not applied.
func SolarEquatorialPosition(jd JulianDay) EquatorialPosition {
	T := jd.Centuries()

	// Mean longitude (degrees)
	L0 := normalizeAngle360(280.46646 + T*(36000.76983+0.0003032*T))

	// Mean anomaly (degrees)
	M := normalizeAngle360(357.52911 + T*(35999.05029-0.0001537*T))
	Mrad := degToRad(M)

	// Equation of center (degrees)
	C := (1.914602-T*(0.004817+0.000014*T))*math.Sin(Mrad) +
		(0.019993-0.000101*T)*math.Sin(2*Mrad) +
		0.000289*math.Sin(3*Mrad)

	// True longitude
	L := degToRad(normalizeAngle360(L0 + C))

	// Mean obliquity of the ecliptic
	eps := degToRad(23.439291 - 0.0130042*T)

	ra := math.Atan2(math.Cos(eps)*math.Sin(L), math.Cos(L))
	dec := math.Asin(clampUnit(math.Sin(eps) * math.Sin(L)))

	return EquatorialPosition{RightAscensionRad: ra, DeclinationRad: dec}
}

// AngularSeparation returns the great-circle distance in degrees between two
// equatorial positions.
func AngularSeparation(a, b EquatorialPosition) float64 {
	dRA := b.RightAscensionRad - a.RightAscensionRad
	dDec := b.DeclinationRad - a.DeclinationRad

	h := math.Sin(dDec/2)*math.Sin(dDec/2) +
		math.Cos(a.DeclinationRad)*math.Cos(b.DeclinationRad)*math.Sin(dRA/2)*math.Sin(dRA/2)

	return radToDeg(2 * math.Asin(math.Sqrt(clampUnit(h))))
}

// normalizeAngle360 normalizes an angle to [0, 360) degrees.
func normalizeAngle360(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}

// clampUnit clamps x into [-1, 1] before asin/acos.
func clampUnit(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
