package ui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-skylight/internal/astro"
	"github.com/litescript/ls-skylight/internal/ephemeris"
	"github.com/litescript/ls-skylight/internal/state"
)

const (
	// Vertical extent of the panorama in degrees of altitude.
	panoramaMaxAlt = 90.0
	panoramaMinAlt = -30.0

	// Camera pan step in degrees of azimuth.
	panStep = 15.0

	glyphSun        = '☼'
	glyphObserver   = '▲'
	colorSunUp      = "220" // gold
	colorSunDown    = "94"  // dim amber
	colorMoonUp     = "255"
	colorMoonDown   = "243"
	colorFallback   = "#E84A27"
	colorHorizon    = "60" // muted purple
	colorCardinal   = "252"
	colorDayStrip   = "#3478c0"
	colorNightStrip = "236"
)

// SkyViewModel renders a full-circle horizon panorama with the Sun and Moon.
type SkyViewModel struct {
	width  int
	height int

	// Azimuth at the center of the panorama; 180 faces south.
	camAz float64

	snapshot state.Snapshot
}

// NewSkyViewModel creates a new sky view model facing south.
func NewSkyViewModel() SkyViewModel {
	return SkyViewModel{camAz: 180}
}

// SetSize updates the view dimensions.
func (m SkyViewModel) SetSize(width, height int) SkyViewModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData replaces the displayed snapshot.
func (m SkyViewModel) UpdateData(snapshot state.Snapshot) SkyViewModel {
	m.snapshot = snapshot
	return m
}

// Update handles panning keys.
func (m SkyViewModel) Update(msg tea.Msg) (SkyViewModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "left", "h":
			m.camAz = normalizeAzimuth(m.camAz - panStep)
		case "right", "l":
			m.camAz = normalizeAzimuth(m.camAz + panStep)
		case "0":
			m.camAz = 180
		case "c":
			if e := m.snapshot.Current; e != nil {
				m.camAz = e.AzDeg
			}
		}
	}
	return m, nil
}

// View renders the panorama, the body table and the altitude history.
func (m SkyViewModel) View() string {
	e := m.snapshot.Current
	if e == nil {
		dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
		return dimStyle.Render("  Computing ephemeris...")
	}

	width := m.width - 4
	if width < 24 {
		width = 24
	}
	canvasHeight := m.height - 12
	if canvasHeight < 6 {
		canvasHeight = 6
	}

	var b strings.Builder
	b.WriteString(m.renderHeader(*e))
	b.WriteString("\n")
	b.WriteString(indent(m.renderPanorama(*e, width, canvasHeight)))
	b.WriteString("\n\n")
	b.WriteString(m.renderBodies(*e))
	b.WriteString("\n")
	b.WriteString("  " + renderTerminatorStrip(m.snapshot.TerminatorLonDeg, e.Observer.LonDeg, SparklineWidth+6))
	b.WriteString("\n\n")
	b.WriteString("  " + renderAltitudeSparkline("Sun", sunAltitudes(m.snapshot.History)))
	b.WriteString("\n")
	b.WriteString("  " + renderAltitudeSparkline("Moon", moonAltitudes(m.snapshot.History)))

	return b.String()
}

func (m SkyViewModel) renderHeader(e ephemeris.Ephemeris) string {
	header := fmt.Sprintf("Sky @ %s  (%.4f, %.4f)",
		e.Time.Format("2006-01-02 15:04:05 MST"), e.Observer.LatDeg, e.Observer.LonDeg)
	if e.Observer.Name != "" {
		header += "  " + e.Observer.Name
	}
	return "  " + titleStyle.Render(header)
}

// renderPanorama draws azimuth across the width and altitude down the rows.
func (m SkyViewModel) renderPanorama(e ephemeris.Ephemeris, width, height int) string {
	canvas := make([][]rune, height)
	colors := make([][]lipgloss.Color, height)
	for y := 0; y < height; y++ {
		canvas[y] = make([]rune, width)
		colors[y] = make([]lipgloss.Color, width)
		for x := 0; x < width; x++ {
			canvas[y][x] = ' '
			colors[y][x] = "236"
		}
	}

	_, horizonY := m.projectToScreen(0, 0, width, height)
	for x := 0; x < width; x++ {
		canvas[horizonY][x] = '─'
		colors[horizonY][x] = colorHorizon
	}

	m.drawCardinal(canvas, colors, width, height, "N", 0)
	m.drawCardinal(canvas, colors, width, height, "E", 90)
	m.drawCardinal(canvas, colors, width, height, "S", 180)
	m.drawCardinal(canvas, colors, width, height, "W", 270)

	moonColor := lipgloss.Color(colorMoonUp)
	switch {
	case e.LunarFallback:
		moonColor = colorFallback
	case e.MoonAltDeg < 0:
		moonColor = colorMoonDown
	}
	m.plot(canvas, colors, width, height, e.MoonAzDeg, e.MoonAltDeg, moonGlyph(e.Illumination), moonColor)

	sunColor := lipgloss.Color(colorSunUp)
	if e.AltDeg < 0 {
		sunColor = colorSunDown
	}
	m.plot(canvas, colors, width, height, e.AzDeg, e.AltDeg, glyphSun, sunColor)

	var b strings.Builder
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			style := lipgloss.NewStyle().Foreground(colors[y][x])
			b.WriteString(style.Render(string(canvas[y][x])))
		}
		if y < height-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m SkyViewModel) plot(canvas [][]rune, colors [][]lipgloss.Color, width, height int, az, alt float64, glyph rune, color lipgloss.Color) {
	x, y := m.projectToScreen(az, alt, width, height)
	canvas[y][x] = glyph
	colors[y][x] = color
}

func (m SkyViewModel) drawCardinal(canvas [][]rune, colors [][]lipgloss.Color, width, height int, label string, az float64) {
	x, y := m.projectToScreen(az, 0, width, height)
	canvas[y][x] = rune(label[0])
	colors[y][x] = colorCardinal
}

// projectToScreen maps azimuth/altitude to a canvas cell. The panorama
// always spans 360° of azimuth centered on camAz, so every azimuth is
// visible; altitudes outside the panorama are pinned to its edges.
func (m SkyViewModel) projectToScreen(az, alt float64, width, height int) (int, int) {
	dAz := normalizeAngle(az - m.camAz)
	x := int((dAz + 180) / 360 * float64(width))
	if x >= width {
		x = width - 1
	}
	if x < 0 {
		x = 0
	}

	if alt > panoramaMaxAlt {
		alt = panoramaMaxAlt
	}
	if alt < panoramaMinAlt {
		alt = panoramaMinAlt
	}
	span := panoramaMaxAlt - panoramaMinAlt
	y := int(math.Round((panoramaMaxAlt - alt) / span * float64(height-1)))

	return x, y
}

func (m SkyViewModel) renderBodies(e ephemeris.Ephemeris) string {
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorFallback))

	header := fmt.Sprintf("%-6s %9s %9s  %-22s %s", "Body", "Alt", "Az", "Detail", "World")
	var b strings.Builder
	b.WriteString("  " + headerStyle.Render(header))
	b.WriteString("\n")

	sunAz := fmt.Sprintf("%8.2f°", e.AzDeg)
	if !e.AzimuthDefined {
		sunAz = fmt.Sprintf("%9s", "n/a")
	}
	sunRow := fmt.Sprintf("%-6s %+8.2f° %s  %-22s %s",
		"Sun", e.AltDeg, sunAz, e.SunPhase().String(), formatWorld(e.SunWorld))
	b.WriteString("  " + rowStyle.Render(sunRow))
	b.WriteString("\n")

	detail := fmt.Sprintf("%.0f%% lit", e.Illumination*100)
	moonRow := fmt.Sprintf("%-6s %+8.2f° %8.2f°  %-22s %s",
		"Moon", e.MoonAltDeg, e.MoonAzDeg, detail, formatWorld(e.MoonWorld))
	if e.LunarFallback {
		b.WriteString("  " + warnStyle.Render(moonRow+"  fallback"))
	} else {
		b.WriteString("  " + rowStyle.Render(moonRow))
	}
	b.WriteString("\n")

	b.WriteString("  " + labelStyle.Render(fmt.Sprintf("Terminator %s   solar %s   lunar %s",
		ephemeris.FormatLongitude(m.snapshot.TerminatorLonDeg), e.SolarModel, e.LunarProvider)))

	return b.String()
}

// renderTerminatorStrip draws one row of longitudes from -180 to 180 lit by
// the Sun on the equator, with the observer's meridian marked.
func renderTerminatorStrip(terminatorLon, observerLon float64, width int) string {
	if width <= 0 {
		return ""
	}
	subSolar := astro.NormalizeLongitude(terminatorLon + 90)
	obsX := int((astro.NormalizeLongitude(observerLon) + 180) / 360 * float64(width))
	if obsX >= width {
		obsX = width - 1
	}

	dayStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorDayStrip))
	nightStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorNightStrip))
	obsStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("46"))

	var b strings.Builder
	for x := 0; x < width; x++ {
		if x == obsX {
			b.WriteString(obsStyle.Render(string(glyphObserver)))
			continue
		}
		lon := -180 + (float64(x)+0.5)/float64(width)*360
		if isDaylit(lon, subSolar) {
			b.WriteString(dayStyle.Render("█"))
		} else {
			b.WriteString(nightStyle.Render("█"))
		}
	}
	return b.String()
}

// isDaylit reports whether an equatorial longitude lies within 90° of the
// sub-solar meridian.
func isDaylit(lon, subSolarLon float64) bool {
	return math.Abs(astro.NormalizeLongitude(lon-subSolarLon)) < 90
}

// moonGlyph picks a symbol for an illuminated fraction.
func moonGlyph(k float64) rune {
	switch {
	case k < 0.05:
		return '●'
	case k < 0.35:
		return '☾'
	case k < 0.65:
		return '◐'
	case k < 0.95:
		return '◕'
	default:
		return '○'
	}
}

func formatWorld(v astro.Vec3) string {
	return fmt.Sprintf("(%+.3f, %+.3f, %+.3f)", v.X, v.Y, v.Z)
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}

// normalizeAngle wraps angle to -180..+180 range
func normalizeAngle(a float64) float64 {
	for a > 180 {
		a -= 360
	}
	for a < -180 {
		a += 360
	}
	return a
}

// normalizeAzimuth wraps angle to 0..360 range
func normalizeAzimuth(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}
