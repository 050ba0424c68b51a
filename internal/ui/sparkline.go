package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-skylight/internal/state"
)

// SparklineWidth is the fixed width of the altitude sparklines.
const SparklineWidth = 48

// sparklineBlocks are the Unicode block characters for sparkline (0 = lowest, 7 = highest).
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// altColorLow is the color for a body on the horizon (dark blue).
var altColorLow = [3]uint8{0x1b, 0x2b, 0x4b}

// altColorMid is the color for mid altitude (blue).
var altColorMid = [3]uint8{0x34, 0x78, 0xc0}

// altColorHigh is the color for high altitude (cyan).
var altColorHigh = [3]uint8{0x8b, 0xe9, 0xff}

// belowHorizonColor marks samples where the body is set.
const belowHorizonColor = "237"

// sunAltitudes extracts the solar altitude series from history samples.
func sunAltitudes(samples []state.Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.SunAltDeg
	}
	return out
}

// moonAltitudes extracts the lunar altitude series from history samples.
func moonAltitudes(samples []state.Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.MoonAltDeg
	}
	return out
}

// renderAltitudeSparkline renders an altitude series as a colored sparkline
// with a label prefix and the latest value.
func renderAltitudeSparkline(label string, alts []float64) string {
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	var sb strings.Builder
	sb.WriteString(labelStyle.Render(fmt.Sprintf("%-5s", label)))

	samples := resampleSeries(alts, SparklineWidth)
	if len(samples) == 0 {
		sb.WriteString(dimStyle.Render("collecting samples..."))
		return sb.String()
	}

	for _, alt := range samples {
		if alt < 0 {
			// Set bodies sit on the baseline in a neutral tone.
			sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(belowHorizonColor)).Render(string(sparklineBlocks[0])))
			continue
		}
		if alt > 90 {
			alt = 90
		}

		t := alt / 90.0
		blockIdx := int(t * 7.0)
		if blockIdx > 7 {
			blockIdx = 7
		}

		r, g, b := interpolateAltColor(t)
		color := fmt.Sprintf("#%02x%02x%02x", r, g, b)
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(string(sparklineBlocks[blockIdx])))
	}

	nowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	sb.WriteString(nowStyle.Render(fmt.Sprintf(" now: %+.1f°", alts[len(alts)-1])))

	return sb.String()
}

// interpolateAltColor returns RGB color for altitude fraction t in [0, 1].
// Gradient: low (dark blue) → mid (blue) → high (cyan).
func interpolateAltColor(t float64) (uint8, uint8, uint8) {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	from, to, s := altColorLow, altColorMid, t*2
	if t >= 0.5 {
		from, to, s = altColorMid, altColorHigh, (t-0.5)*2
	}

	mix := func(a, b uint8) uint8 {
		return uint8(float64(a)*(1-s) + float64(b)*s)
	}
	return mix(from[0], to[0]), mix(from[1], to[1]), mix(from[2], to[2])
}

// resampleSeries averages values into a fixed number of buckets. Series
// shorter than width are returned unchanged.
func resampleSeries(values []float64, width int) []float64 {
	if len(values) == 0 || width <= 0 {
		return nil
	}
	if len(values) <= width {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}

	result := make([]float64, width)
	perBucket := float64(len(values)) / float64(width)

	for i := 0; i < width; i++ {
		startIdx := int(float64(i) * perBucket)
		endIdx := int(float64(i+1) * perBucket)
		if endIdx > len(values) {
			endIdx = len(values)
		}
		if startIdx >= endIdx {
			startIdx = endIdx - 1
		}

		sum := 0.0
		for j := startIdx; j < endIdx; j++ {
			sum += values[j]
		}
		result[i] = sum / float64(endIdx-startIdx)
	}

	return result
}
