package ephem

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/coord"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/moonillum"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"

	"github.com/litescript/ls-skylight/internal/astro"
)

const (
	// deltaT approximates TT − UT for the current era.
	deltaT = 69 * time.Second

	// earthRadiusKm is the equatorial radius used for lunar parallax.
	earthRadiusKm = 6378.14
)

// MeeusProvider computes lunar positions from the ELP-2000/82 truncation in
// Meeus, Astronomical Algorithms ch. 47. It holds no state.
type MeeusProvider struct{}

// NewMeeusProvider creates a new Meeus lunar provider.
func NewMeeusProvider() *MeeusProvider {
	return &MeeusProvider{}
}

// Name implements Provider.
func (p *MeeusProvider) Name() string {
	return "meeus"
}

// MoonEquatorial implements Provider.
func (p *MeeusProvider) MoonEquatorial(t time.Time) (astro.EquatorialPosition, error) {
	ra, dec, _ := moonApparent(julianEphemerisDay(t))
	return astro.EquatorialPosition{RightAscensionRad: ra.Rad(), DeclinationRad: dec.Rad()}, nil
}

// MoonHorizontal implements Provider.
//
// The altitude is topocentric: geocentric altitude less the horizontal
// parallax, which reaches about 1° at the horizon.
func (p *MeeusProvider) MoonHorizontal(t time.Time, obs astro.Observer) (astro.HorizontalPosition, error) {
	jd := julian.TimeToJD(t.UTC())
	ra, dec, distKm := moonApparent(jd + deltaT.Hours()/24)

	gst := sidereal.Apparent(jd).Angle().Deg()
	ha := astro.HourAngle(astro.LST(gst, obs.LonDeg), ra.Rad())
	pos := astro.ToHorizontal(obs.LatDeg, dec.Rad(), ha)

	pos.AltitudeDeg = topocentricAltitude(pos.AltitudeDeg, distKm)
	return pos, nil
}

// MoonIllumination implements Provider. The phase angle is derived from the
// Sun–Moon elongation, so the fraction grows monotonically with elongation.
func (p *MeeusProvider) MoonIllumination(t time.Time) (float64, error) {
	jde := julianEphemerisDay(t)
	ra, dec, _ := moonApparent(jde)
	sunRA, sunDec := solar.ApparentEquatorial(jde)

	i := moonillum.PhaseAngleEq2(ra, dec, sunRA, sunDec)
	return base.Illuminated(i), nil
}

func julianEphemerisDay(t time.Time) float64 {
	return julian.TimeToJD(t.UTC().Add(deltaT))
}

// moonApparent returns apparent RA/Dec and geocentric distance in km.
func moonApparent(jde float64) (unit.RA, unit.Angle, float64) {
	lambda, beta, dist := moonposition.Position(jde)
	dPsi, dEps := nutation.Nutation(jde)
	eps := nutation.MeanObliquity(jde) + dEps

	sEps, cEps := eps.Sincos()
	ra, dec := coord.EclToEq(lambda+dPsi, beta, sEps, cEps)
	return ra, dec, dist
}

func topocentricAltitude(geoAltDeg, distKm float64) float64 {
	if distKm <= earthRadiusKm {
		return geoAltDeg
	}
	sinPi := earthRadiusKm / distKm
	cosAlt := math.Cos(geoAltDeg * math.Pi / 180)
	return geoAltDeg - math.Asin(sinPi*cosAlt)*180/math.Pi
}
