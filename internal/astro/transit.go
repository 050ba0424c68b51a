package astro

import (
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// transitStep is the sampling interval used to bracket solar transit.
const transitStep = 10 * time.Minute

// SolarTransit finds local solar noon on the UTC date of day: the instant of
// maximum solar altitude for obs. It returns the transit time and altitude.
//
// The search samples ±3 h around transitEstimate and refines the discrete
// maximum with a parabola through its neighbours.
func SolarTransit(day time.Time, obs Observer) (time.Time, float64) {
	approx := transitEstimate(day, obs)

	start := approx.Add(-3 * time.Hour)
	n := int((6*time.Hour)/transitStep) + 1

	alts := make([]float64, n)
	maxIdx := 0
	for i := 0; i < n; i++ {
		alts[i] = SunHorizontal(start.Add(time.Duration(i)*transitStep), obs).AltitudeDeg
		if alts[i] > alts[maxIdx] {
			maxIdx = i
		}
	}

	maxTime := start.Add(time.Duration(maxIdx) * transitStep)
	if maxIdx == 0 || maxIdx == n-1 {
		return maxTime, alts[maxIdx]
	}

	// Parabola through t = -1, 0, +1
	y0, y1, y2 := alts[maxIdx-1], alts[maxIdx], alts[maxIdx+1]
	c := y1
	a := (y0+y2)/2 - c
	b := (y2 - y0) / 2
	if a >= 0 {
		return maxTime, y1
	}

	tMax := -b / (2 * a)
	if tMax < -1 {
		tMax = -1
	} else if tMax > 1 {
		tMax = 1
	}

	refined := maxTime.Add(time.Duration(float64(transitStep) * tMax))
	return refined, a*tMax*tMax + b*tMax + c
}

// transitEstimate returns the midpoint of sunrise and sunset from go-sunrise,
// or mean noon (12:00 − lon/15 h) when the Sun does not rise and set that day
// or the midpoint lands more than an hour from mean noon.
func transitEstimate(day time.Time, obs Observer) time.Time {
	day = day.UTC()
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	mean := midnight.Add(12*time.Hour - time.Duration(obs.LonDeg/15*float64(time.Hour)))

	rise, set := sunrise.SunriseSunset(obs.LatDeg, obs.LonDeg, day.Year(), day.Month(), day.Day())
	if rise.IsZero() || set.IsZero() || !set.After(rise) {
		return mean
	}
	mid := rise.Add(set.Sub(rise) / 2).UTC()
	if d := mid.Sub(mean); d > time.Hour || d < -time.Hour {
		return mean
	}
	return mid
}

// SunPhase categorizes the Sun's altitude for display.
type SunPhase int

const (
	PhaseNight                SunPhase = iota // below -18°
	PhaseAstronomicalTwilight                 // [-18°, -12°)
	PhaseNauticalTwilight                     // [-12°, -6°)
	PhaseCivilTwilight                        // [-6°, 0°)
	PhaseDay                                  // 0° and above
)

// String returns the phase name.
func (p SunPhase) String() string {
	switch p {
	case PhaseNight:
		return "night"
	case PhaseAstronomicalTwilight:
		return "astronomical twilight"
	case PhaseNauticalTwilight:
		return "nautical twilight"
	case PhaseCivilTwilight:
		return "civil twilight"
	case PhaseDay:
		return "day"
	default:
		return "unknown"
	}
}

// GetSunPhase returns the phase for a solar altitude in degrees. Each band
// includes its lower bound, so -6° is still civil twilight.
func GetSunPhase(altDeg float64) SunPhase {
	switch {
	case altDeg < -18:
		return PhaseNight
	case altDeg < -12:
		return PhaseAstronomicalTwilight
	case altDeg < -6:
		return PhaseNauticalTwilight
	case altDeg < 0:
		return PhaseCivilTwilight
	default:
		return PhaseDay
	}
}
