package ephemeris

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/litescript/ls-skylight/internal/astro"
)

// Export is the JSON-serializable representation of an Ephemeris.
type Export struct {
	Time             time.Time      `json:"time"`
	Observer         ObserverExport `json:"observer"`
	Sun              SunExport      `json:"sun"`
	Moon             MoonExport     `json:"moon"`
	TerminatorLonDeg float64        `json:"terminator_lon_deg"`
}

// ObserverExport is a JSON-friendly observer.
type ObserverExport struct {
	LatDeg float64    `json:"lat_deg"`
	LonDeg float64    `json:"lon_deg"`
	World  [3]float64 `json:"world"`
}

// SunExport is a JSON-friendly solar position.
type SunExport struct {
	Model          string     `json:"model"`
	AltDeg         float64    `json:"alt_deg"`
	AzDeg          float64    `json:"az_deg"`
	AzimuthDefined bool       `json:"azimuth_defined"`
	Phase          string     `json:"phase"`
	World          [3]float64 `json:"world"`
}

// MoonExport is a JSON-friendly lunar position.
type MoonExport struct {
	Provider     string     `json:"provider"`
	AltDeg       float64    `json:"alt_deg"`
	AzDeg        float64    `json:"az_deg"`
	Illumination float64    `json:"illumination"`
	Fallback     bool       `json:"fallback,omitempty"`
	World        [3]float64 `json:"world"`
}

// NewExport converts an Ephemeris and terminator longitude to an exportable
// snapshot.
func NewExport(e Ephemeris, terminatorLonDeg float64) *Export {
	return &Export{
		Time: e.Time,
		Observer: ObserverExport{
			LatDeg: e.Observer.LatDeg,
			LonDeg: e.Observer.LonDeg,
			World:  vecArray(e.ObserverWorld),
		},
		Sun: SunExport{
			Model:          e.SolarModel,
			AltDeg:         e.AltDeg,
			AzDeg:          e.AzDeg,
			AzimuthDefined: e.AzimuthDefined,
			Phase:          e.SunPhase().String(),
			World:          vecArray(e.SunWorld),
		},
		Moon: MoonExport{
			Provider:     e.LunarProvider,
			AltDeg:       e.MoonAltDeg,
			AzDeg:        e.MoonAzDeg,
			Illumination: e.Illumination,
			Fallback:     e.LunarFallback,
			World:        vecArray(e.MoonWorld),
		},
		TerminatorLonDeg: terminatorLonDeg,
	}
}

// WriteJSON writes the snapshot as JSON to the given writer.
func (x *Export) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(x)
}

// WriteSummary writes a text table to the given writer.
func WriteSummary(w io.Writer, e Ephemeris, terminatorLonDeg float64) {
	fmt.Fprintf(w, "Sky @ %s  (lat %.4f, lon %.4f)\n", e.Time.Format(time.RFC3339), e.Observer.LatDeg, e.Observer.LonDeg)
	fmt.Fprintln(w, strings.Repeat("─", 72))

	fmt.Fprintf(w, "%-6s %9s %9s  %-26s %s\n", "Body", "Alt", "Az", "World (x, y, z)", "Notes")
	fmt.Fprintln(w, strings.Repeat("─", 72))

	sunNote := e.SunPhase().String()
	az := fmt.Sprintf("%8.2f°", e.AzDeg)
	if !e.AzimuthDefined {
		az = "      n/a"
		sunNote += ", azimuth undefined"
	}
	fmt.Fprintf(w, "%-6s %8.2f° %9s  %-26s %s\n", "Sun", e.AltDeg, az, formatVec(e.SunWorld), sunNote)

	moonNote := fmt.Sprintf("%.1f%% lit", e.Illumination*100)
	if e.LunarFallback {
		moonNote += ", fallback"
	}
	fmt.Fprintf(w, "%-6s %8.2f° %8.2f°  %-26s %s\n", "Moon", e.MoonAltDeg, e.MoonAzDeg, formatVec(e.MoonWorld), moonNote)

	fmt.Fprintf(w, "\nTerminator: %s   Solar model: %s   Lunar: %s\n",
		FormatLongitude(terminatorLonDeg), e.SolarModel, e.LunarProvider)
}

// FormatLongitude formats a longitude as degrees with an E/W suffix.
func FormatLongitude(lon float64) string {
	switch {
	case lon > 0:
		return fmt.Sprintf("%.2f°E", lon)
	case lon < 0:
		return fmt.Sprintf("%.2f°W", -lon)
	default:
		return "0.00°"
	}
}

func formatVec(v astro.Vec3) string {
	return fmt.Sprintf("(%+.3f, %+.3f, %+.3f)", v.X, v.Y, v.Z)
}

func vecArray(v astro.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
