// Package validate runs physical-plausibility checks over a fixed table of
// dates and locations.
package validate

import (
	"fmt"
	"math"
	"time"

	"github.com/litescript/ls-skylight/internal/astro"
)

// Case is one date/location with expected solar altitude bounds.
type Case struct {
	Name      string
	Time      time.Time
	LatDeg    float64
	LonDeg    float64
	MinAltDeg float64
	MaxAltDeg float64
}

func (c Case) String() string {
	return fmt.Sprintf("%s @ %s (%.2f, %.2f)", c.Name, c.Time.Format(time.RFC3339), c.LatDeg, c.LonDeg)
}

// LocalSolarNoon approximates local mean noon in UTC for a date and
// east-positive longitude.
func LocalSolarNoon(year int, month time.Month, day int, lonDeg float64) time.Time {
	noon := time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
	return noon.Add(-time.Duration(lonDeg / 15 * float64(time.Hour)))
}

// TransitNoon returns apparent solar noon in UTC: the instant of maximum
// solar altitude for the observer on that date.
func TransitNoon(year int, month time.Month, day int, latDeg, lonDeg float64) time.Time {
	at, _ := astro.SolarTransit(time.Date(year, month, day, 0, 0, 0, 0, time.UTC), astro.Observer{LatDeg: latDeg, LonDeg: lonDeg})
	return at.UTC()
}

func bounded(name string, t time.Time, lat, lon, minAlt, maxAlt float64) Case {
	return Case{Name: name, Time: t, LatDeg: lat, LonDeg: lon, MinAltDeg: minAlt, MaxAltDeg: maxAlt}
}

// DefaultCases returns the regression table: the near-zenith, polar day and
// polar twilight scenarios, northern summer noons, and solstice/equinox
// checks across latitudes.
func DefaultCases() []Case {
	inf := math.Inf(1)

	cases := []Case{
		bounded("near-zenith equinox noon", time.Date(2024, 3, 21, 12, 0, 0, 0, time.UTC), 0, 0, 80, inf),
		bounded("polar day midnight", time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC), 66.55, 0, -5, inf),
		bounded("polar twilight noon", time.Date(2024, 12, 21, 12, 0, 0, 0, time.UTC), 66.55, 0, -inf, 1),
		bounded("equinox mid-latitude noon", LocalSolarNoon(2024, time.March, 20, 0), 45, 0, 43, 47),
		bounded("southern summer solstice noon", TransitNoon(2024, time.December, 21, -33.9, 151.2), -33.9, 151.2, 70, 90),
		bounded("antarctic circle winter noon", LocalSolarNoon(2024, time.June, 21, 0), -66.55, 0, -inf, 1),
		bounded("equator equinox dusk", time.Date(2024, 9, 22, 18, 0, 0, 0, time.UTC), 0, 0, -5, 5),
		bounded("north pole midsummer", time.Date(2025, 6, 21, 6, 0, 0, 0, time.UTC), 90, 0, 22, 24),
		bounded("north pole midwinter", time.Date(2025, 12, 21, 18, 0, 0, 0, time.UTC), 90, 0, -24, -22),
	}

	for _, month := range []time.Month{time.June, time.July, time.August} {
		for _, lat := range []float64{10, 35, 51.5, 66.55} {
			for _, lon := range []float64{-120, 0, 139.7} {
				name := fmt.Sprintf("summer noon %s lat %.2f", month.String()[:3], lat)
				cases = append(cases, bounded(name, TransitNoon(2024, month, 15, lat, lon), lat, lon, 0, inf))
			}
		}
	}

	return cases
}
