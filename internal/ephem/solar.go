package ephem

import (
	"strings"

	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"

	"github.com/litescript/ls-skylight/internal/astro"
)

// MeeusSun is the alternate solar model: apparent coordinates from the
// Meeus ch. 25 solar theory, including nutation and aberration.
type MeeusSun struct{}

// Name implements astro.SolarModel.
func (MeeusSun) Name() string { return "meeus" }

// Equatorial implements astro.SolarModel.
func (MeeusSun) Equatorial(jd astro.JulianDay) astro.EquatorialPosition {
	ra, dec := solar.ApparentEquatorial(float64(jd))
	return astro.EquatorialPosition{RightAscensionRad: ra.Rad(), DeclinationRad: dec.Rad()}
}

// MeeusSidereal is an astro.SiderealSource returning apparent Greenwich
// sidereal time in hours.
func MeeusSidereal(jd astro.JulianDay) (float64, error) {
	return sidereal.Apparent(float64(jd)).Hour(), nil
}

// ParseSolarModel maps a name to a solar model. Unknown input selects the
// default low-precision model.
func ParseSolarModel(s string) astro.SolarModel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "meeus":
		return MeeusSun{}
	default:
		return astro.LowPrecisionSun{}
	}
}

// CrossValidate returns the angular separation in degrees between the
// default and the Meeus solar positions at jd.
func CrossValidate(jd astro.JulianDay) float64 {
	return astro.AngularSeparation(astro.LowPrecisionSun{}.Equatorial(jd), MeeusSun{}.Equatorial(jd))
}
