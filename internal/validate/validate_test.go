package validate

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/litescript/ls-skylight/internal/astro"
	"github.com/litescript/ls-skylight/internal/ephem"
	"github.com/litescript/ls-skylight/internal/ephemeris"
)

func TestDefaultCases_Pass(t *testing.T) {
	engines := map[string]*ephemeris.Engine{
		"fixed lunar": ephemeris.New(ephemeris.WithLunarProvider(ephem.NewFixedProvider())),
		"meeus lunar": ephemeris.New(),
		"meeus sun":   ephemeris.New(ephemeris.WithSolarModel(ephem.MeeusSun{})),
	}

	for name, eng := range engines {
		t.Run(name, func(t *testing.T) {
			results, err := Run(context.Background(), eng, DefaultCases(), 4)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			for _, r := range results {
				if !r.OK() {
					t.Errorf("%s: %v", r.Case, r.Violations)
				}
			}
		})
	}
}

func TestDefaultCases_Table(t *testing.T) {
	cases := DefaultCases()
	if len(cases) < 9+36 {
		t.Fatalf("got %d cases, want at least 45", len(cases))
	}
	for _, c := range cases {
		if c.MinAltDeg > c.MaxAltDeg {
			t.Errorf("%s: min %v > max %v", c.Name, c.MinAltDeg, c.MaxAltDeg)
		}
		if c.Time.Location() != time.UTC {
			t.Errorf("%s: time not in UTC", c.Name)
		}
	}
}

func TestRun_SolarSeparation(t *testing.T) {
	cases := DefaultCases()
	results, err := Run(context.Background(), ephemeris.New(ephemeris.WithLunarProvider(ephem.NewFixedProvider())), cases, 2)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i, r := range results {
		want := ephem.CrossValidate(astro.ToJulianDay(cases[i].Time))
		if r.SolarSeparationDeg != want {
			t.Errorf("%s: separation %v, want %v", r.Case.Name, r.SolarSeparationDeg, want)
		}
	}
	if maxSep := MaxSolarSeparation(results); maxSep <= 0 || maxSep > 0.05 {
		t.Errorf("max separation = %.4f°, want in (0, 0.05]", maxSep)
	}
}

func TestTransitNoon(t *testing.T) {
	eng := ephemeris.New(ephemeris.WithLunarProvider(ephem.NewFixedProvider()))
	for _, lat := range []float64{10, 51.5, 66.55} {
		for _, lon := range []float64{-120, 0, 139.7} {
			at := TransitNoon(2024, time.July, 15, lat, lon)
			mean := LocalSolarNoon(2024, time.July, 15, lon)
			if d := at.Sub(mean); math.Abs(d.Minutes()) > 20 {
				t.Errorf("lat %v lon %v: transit %s is %v from mean noon", lat, lon, at, d)
			}
			peak := eng.Compute(at, lat, lon).AltDeg
			for _, off := range []time.Duration{-20 * time.Minute, 20 * time.Minute} {
				if alt := eng.Compute(at.Add(off), lat, lon).AltDeg; alt > peak+1e-2 {
					t.Errorf("lat %v lon %v: altitude %+v from transit %.3f exceeds %.3f", lat, lon, off, alt, peak)
				}
			}
		}
	}
}

func TestLocalSolarNoon(t *testing.T) {
	tests := []struct {
		lon  float64
		want time.Time
	}{
		{0, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)},
		{90, time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC)},
		{-150, time.Date(2024, 6, 1, 22, 0, 0, 0, time.UTC)},
		{180, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		if got := LocalSolarNoon(2024, time.June, 1, tt.lon); !got.Equal(tt.want) {
			t.Errorf("LocalSolarNoon(lon=%v) = %s, want %s", tt.lon, got, tt.want)
		}
	}
}

func goodEphemeris() ephemeris.Ephemeris {
	return ephemeris.Ephemeris{
		SunWorld:       astro.Vec3{X: 1},
		MoonWorld:      astro.Vec3{Y: 1},
		ObserverWorld:  astro.Vec3{Z: 1},
		AltDeg:         30,
		AzDeg:          120,
		AzimuthDefined: true,
		Illumination:   0.4,
	}
}

func TestCheck(t *testing.T) {
	open := Case{MinAltDeg: math.Inf(-1), MaxAltDeg: math.Inf(1)}

	tests := []struct {
		name   string
		mutate func(*ephemeris.Ephemeris)
		c      Case
		want   string
	}{
		{"ok", func(*ephemeris.Ephemeris) {}, open, ""},
		{"altitude NaN", func(e *ephemeris.Ephemeris) { e.AltDeg = math.NaN() }, open, "altitude NaN"},
		{"azimuth 360", func(e *ephemeris.Ephemeris) { e.AzDeg = 360 }, open, "azimuth 360.0000"},
		{"short moon vector", func(e *ephemeris.Ephemeris) { e.MoonWorld = astro.Vec3{Y: 0.5} }, open, "moon vector norm"},
		{"illumination > 1", func(e *ephemeris.Ephemeris) { e.Illumination = 1.2 }, open, "illumination"},
		{"below minimum", func(*ephemeris.Ephemeris) {}, Case{MinAltDeg: 80, MaxAltDeg: 90}, "below minimum"},
		{"above maximum", func(*ephemeris.Ephemeris) {}, Case{MinAltDeg: -90, MaxAltDeg: 1}, "above maximum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := goodEphemeris()
			tt.mutate(&e)
			got := Check(e, tt.c)

			if tt.want == "" {
				if len(got) != 0 {
					t.Errorf("unexpected violations: %v", got)
				}
				return
			}
			if len(got) != 1 || !strings.Contains(got[0], tt.want) {
				t.Errorf("violations = %v, want one containing %q", got, tt.want)
			}
		})
	}
}

type countingComputer struct {
	calls atomic.Int64
}

func (c *countingComputer) Compute(t time.Time, lat, lon float64) ephemeris.Ephemeris {
	c.calls.Add(1)
	e := goodEphemeris()
	e.Time = t
	e.AltDeg = lat
	return e
}

func TestRun_PreservesOrder(t *testing.T) {
	var cases []Case
	for i := 0; i < 50; i++ {
		cases = append(cases, Case{
			Name:      "c",
			Time:      time.Date(2024, 1, 1, 0, i, 0, 0, time.UTC),
			LatDeg:    float64(i),
			MinAltDeg: -90,
			MaxAltDeg: 40,
		})
	}

	comp := &countingComputer{}
	results, err := Run(context.Background(), comp, cases, 3)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if comp.calls.Load() != 50 {
		t.Errorf("Compute called %d times, want 50", comp.calls.Load())
	}
	for i, r := range results {
		if r.Ephemeris.AltDeg != float64(i) {
			t.Fatalf("result %d holds case with lat %v", i, r.Ephemeris.AltDeg)
		}
		if wantOK := i <= 40; r.OK() != wantOK {
			t.Errorf("result %d OK = %v, want %v", i, r.OK(), wantOK)
		}
	}
	if got := Failed(results); got != 9 {
		t.Errorf("Failed = %d, want 9", got)
	}
}

func TestRun_DefaultWorkers(t *testing.T) {
	results, err := Run(context.Background(), &countingComputer{}, DefaultCases()[:3], 0)
	if err != nil || len(results) != 3 {
		t.Fatalf("Run = %d results, %v", len(results), err)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, &countingComputer{}, DefaultCases(), 2)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run error = %v, want context.Canceled", err)
	}
}

func TestReport(t *testing.T) {
	results := []Result{
		{Case: Case{Name: "good"}, Ephemeris: goodEphemeris(), SolarSeparationDeg: 0.0042},
		{Case: Case{Name: "a very long case name that will not fit the column"}, Violations: []string{"altitude 95.00 outside [-90, 90]"}},
	}

	var buf bytes.Buffer
	Report(&buf, results, false)
	out := buf.String()

	for _, want := range []string{"PASS  good", "FAIL  a very long case name that will not ..", "- altitude 95.00", "2 cases, 1 failed", "Δsun 0.0042°", "solar separation 0.0042°"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("plain report contains ANSI escapes")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"longer than ten", 10, "longer t.."},
		{"abcdef", 3, "abc"},
	}

	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
