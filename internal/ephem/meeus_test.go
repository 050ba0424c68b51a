package ephem

import (
	"math"
	"testing"
	"time"

	"github.com/litescript/ls-skylight/internal/astro"
)

// Meeus, Astronomical Algorithms, example 47.a: 1992 April 12, 0h TD.
func TestMoonApparent_MeeusExample(t *testing.T) {
	ra, dec, dist := moonApparent(2448724.5)

	if d := math.Abs(ra.Deg() - 134.688470); d > 1e-3 {
		t.Errorf("RA = %.6f, want 134.688470", ra.Deg())
	}
	if d := math.Abs(dec.Deg() - 13.768368); d > 1e-3 {
		t.Errorf("Dec = %.6f, want 13.768368", dec.Deg())
	}
	if math.Abs(dist-368409.7) > 1 {
		t.Errorf("distance = %.1f km, want 368409.7", dist)
	}
}

func TestMeeusProvider_IlluminationPhases(t *testing.T) {
	p := NewMeeusProvider()

	tests := []struct {
		name   string
		t      time.Time
		lo, hi float64
	}{
		{"new moon 2024-04-08", time.Date(2024, 4, 8, 18, 21, 0, 0, time.UTC), 0, 0.01},
		{"first quarter 2024-04-15", time.Date(2024, 4, 15, 19, 13, 0, 0, time.UTC), 0.45, 0.55},
		{"full moon 2024-04-23", time.Date(2024, 4, 23, 23, 49, 0, 0, time.UTC), 0.99, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := p.MoonIllumination(tt.t)
			if err != nil {
				t.Fatal(err)
			}
			if k < tt.lo || k > tt.hi {
				t.Errorf("illumination = %.4f, want in [%v, %v]", k, tt.lo, tt.hi)
			}
		})
	}
}

// Between new and full moon the elongation grows, and so must the fraction.
func TestMeeusProvider_IlluminationWaxes(t *testing.T) {
	p := NewMeeusProvider()
	start := time.Date(2024, 4, 9, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 23, 12, 0, 0, 0, time.UTC)

	prev := -1.0
	for ts := start; ts.Before(end); ts = ts.Add(12 * time.Hour) {
		k, _ := p.MoonIllumination(ts)
		if k <= prev {
			t.Fatalf("%s: illumination %.5f did not increase from %.5f", ts, k, prev)
		}
		prev = k
	}
}

func TestMeeusProvider_HorizontalParallax(t *testing.T) {
	p := NewMeeusProvider()
	obs := astro.Observer{LatDeg: 40, LonDeg: -75}

	for h := 0; h < 48; h += 5 {
		ts := time.Date(2025, 2, 1, h%24, 0, 0, 0, time.UTC).Add(time.Duration(h/24) * 24 * time.Hour)

		eq, _ := p.MoonEquatorial(ts)
		jd := astro.ToJulianDay(ts)
		geo := astro.ToHorizontal(obs.LatDeg, eq.DeclinationRad,
			astro.HourAngle(astro.LST(astro.GMST(jd), obs.LonDeg), eq.RightAscensionRad))

		topo, err := p.MoonHorizontal(ts, obs)
		if err != nil {
			t.Fatal(err)
		}

		dAlt := geo.AltitudeDeg - topo.AltitudeDeg
		if dAlt < -0.01 || dAlt > 1.1 {
			t.Errorf("%s: parallax %.3f°, want in [0, 1.1]", ts, dAlt)
		}
		if topo.AzimuthDeg < 0 || topo.AzimuthDeg >= 360 {
			t.Errorf("%s: azimuth %v out of range", ts, topo.AzimuthDeg)
		}
	}
}

func TestMeeusProvider_FullMoonOpposesSun(t *testing.T) {
	p := NewMeeusProvider()
	ts := time.Date(2024, 4, 23, 23, 49, 0, 0, time.UTC)

	moon, _ := p.MoonEquatorial(ts)
	sun := MeeusSun{}.Equatorial(astro.ToJulianDay(ts))

	if sep := astro.AngularSeparation(moon, sun); sep < 170 {
		t.Errorf("Sun–Moon separation at full moon = %.2f°, want > 170°", sep)
	}
}

func TestMeeusProvider_Deterministic(t *testing.T) {
	p := NewMeeusProvider()
	ts := time.Date(2030, 7, 4, 3, 2, 1, 0, time.UTC)
	obs := astro.Observer{LatDeg: -12, LonDeg: 77}

	a, _ := p.MoonHorizontal(ts, obs)
	b, _ := p.MoonHorizontal(ts, obs)
	if a != b {
		t.Errorf("MoonHorizontal not deterministic: %+v vs %+v", a, b)
	}
}

func TestTopocentricAltitude(t *testing.T) {
	tests := []struct {
		name     string
		alt      float64
		dist     float64
		min, max float64
	}{
		{"zenith has no parallax", 90, 384400, 89.999, 90},
		{"horizon at mean distance", 0, 384400, -0.96, -0.94},
		{"inside the Earth is ignored", 10, 1000, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := topocentricAltitude(tt.alt, tt.dist)
			if got < tt.min || got > tt.max {
				t.Errorf("topocentricAltitude(%v, %v) = %v, want in [%v, %v]", tt.alt, tt.dist, got, tt.min, tt.max)
			}
		})
	}
}
