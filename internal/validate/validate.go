package validate

import (
	"context"
	"fmt"
	"io"
	"math"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/litescript/ls-skylight/internal/astro"
	"github.com/litescript/ls-skylight/internal/ephem"
	"github.com/litescript/ls-skylight/internal/ephemeris"
)

// Computer produces an ephemeris for an instant and observer.
// *ephemeris.Engine satisfies it.
type Computer interface {
	Compute(t time.Time, latDeg, lonDeg float64) ephemeris.Ephemeris
}

// Result is the outcome of one case. SolarSeparationDeg is the angle between
// the low-precision and Meeus solar positions at the case instant.
type Result struct {
	Case               Case
	Ephemeris          ephemeris.Ephemeris
	Violations         []string
	SolarSeparationDeg float64
}

// OK reports whether the case passed.
func (r Result) OK() bool { return len(r.Violations) == 0 }

// Check returns the plausibility violations of e for c.
func Check(e ephemeris.Ephemeris, c Case) []string {
	var v []string

	if math.IsNaN(e.AltDeg) || math.Abs(e.AltDeg) > 90 {
		v = append(v, fmt.Sprintf("altitude %.4f outside [-90, 90]", e.AltDeg))
	}
	if math.IsNaN(e.AzDeg) || e.AzDeg < 0 || e.AzDeg >= 360 {
		v = append(v, fmt.Sprintf("azimuth %.4f outside [0, 360)", e.AzDeg))
	}
	for _, vec := range []struct {
		name string
		v    astro.Vec3
	}{
		{"sun", e.SunWorld},
		{"moon", e.MoonWorld},
		{"observer", e.ObserverWorld},
	} {
		if !vec.v.IsUnit() {
			v = append(v, fmt.Sprintf("%s vector norm %.6f not within %.0e of 1", vec.name, vec.v.Norm(), astro.UnitTolerance))
		}
	}
	if math.IsNaN(e.Illumination) || e.Illumination < 0 || e.Illumination > 1 {
		v = append(v, fmt.Sprintf("illumination %.4f outside [0, 1]", e.Illumination))
	}
	if e.AltDeg < c.MinAltDeg {
		v = append(v, fmt.Sprintf("altitude %.2f below minimum %.2f", e.AltDeg, c.MinAltDeg))
	}
	if e.AltDeg > c.MaxAltDeg {
		v = append(v, fmt.Sprintf("altitude %.2f above maximum %.2f", e.AltDeg, c.MaxAltDeg))
	}

	return v
}

// Run computes and checks every case using up to workers goroutines
// (runtime.NumCPU when workers <= 0). Results keep the order of cases.
// The returned error is non-nil only when ctx is cancelled.
func Run(ctx context.Context, eng Computer, cases []Case, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]Result, len(cases))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, c := range cases {
		if gctx.Err() != nil {
			break
		}
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e := eng.Compute(c.Time, c.LatDeg, c.LonDeg)
			results[i] = Result{
				Case:               c,
				Ephemeris:          e,
				Violations:         Check(e, c),
				SolarSeparationDeg: ephem.CrossValidate(astro.ToJulianDay(c.Time)),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("validation cancelled: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("validation cancelled: %w", err)
	}
	return results, nil
}

// Failed counts the results with violations.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.OK() {
			n++
		}
	}
	return n
}

var (
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27")).Bold(true)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
)

// Report writes one line per result and a summary. With styled set the
// status column is colored for a terminal.
func Report(w io.Writer, results []Result, styled bool) {
	render := func(s lipgloss.Style, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}

	fmt.Fprintln(w, render(headerStyle, "Ephemeris validation"))
	fmt.Fprintln(w, strings.Repeat("─", 80))

	for _, r := range results {
		status := render(passStyle, "PASS")
		if !r.OK() {
			status = render(failStyle, "FAIL")
		}
		fmt.Fprintf(w, "%s  %-38s %s\n", status, truncate(r.Case.Name, 38),
			render(dimStyle, fmt.Sprintf("alt %7.2f°  az %7.2f°  Δsun %.4f°", r.Ephemeris.AltDeg, r.Ephemeris.AzDeg, r.SolarSeparationDeg)))
		for _, v := range r.Violations {
			fmt.Fprintf(w, "      - %s\n", v)
		}
	}

	fmt.Fprintln(w, strings.Repeat("─", 80))
	fmt.Fprintf(w, "%d cases, %d failed\n", len(results), Failed(results))
	fmt.Fprintf(w, "max low-precision/meeus solar separation %.4f°\n", MaxSolarSeparation(results))
}

// MaxSolarSeparation returns the largest SolarSeparationDeg in results.
func MaxSolarSeparation(results []Result) float64 {
	maxSep := 0.0
	for _, r := range results {
		maxSep = math.Max(maxSep, r.SolarSeparationDeg)
	}
	return maxSep
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-2] + ".."
}
