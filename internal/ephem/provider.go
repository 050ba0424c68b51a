// Package ephem provides lunar ephemeris providers (meeus, JPL Horizons and a
// fixed stub) and alternate solar and sidereal strategies backed by the meeus
// library.
package ephem

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/litescript/ls-skylight/internal/astro"
)

var (
	// ErrProviderUnavailable is returned when a provider cannot supply data.
	ErrProviderUnavailable = errors.New("lunar provider unavailable")

	// ErrUnknownMode is returned by NewProvider for an unrecognized mode.
	ErrUnknownMode = errors.New("unknown provider mode")
)

// Provider defines the interface for lunar ephemeris sources.
//
// Implementations must be deterministic for identical inputs and safe for
// concurrent use.
type Provider interface {
	// Name returns the provider name for display/logging.
	Name() string

	// MoonEquatorial returns the Moon's geocentric apparent RA/Dec.
	MoonEquatorial(t time.Time) (astro.EquatorialPosition, error)

	// MoonHorizontal returns the Moon's altitude/azimuth for an observer.
	MoonHorizontal(t time.Time, obs astro.Observer) (astro.HorizontalPosition, error)

	// MoonIllumination returns the illuminated fraction of the disk in [0, 1].
	MoonIllumination(t time.Time) (float64, error)
}

// Mode represents which lunar provider to use.
type Mode int

const (
	ModeMeeus    Mode = iota // Meeus lunar theory (default)
	ModeFixed                // Deterministic fixed values
	ModeHorizons             // JPL Horizons over HTTP
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeMeeus:
		return "meeus"
	case ModeFixed:
		return "fixed"
	case ModeHorizons:
		return "horizons"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode string. Unknown input selects ModeMeeus.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "meeus":
		return ModeMeeus
	case "fixed", "stub":
		return ModeFixed
	case "horizons", "jpl":
		return ModeHorizons
	default:
		return ModeMeeus
	}
}

// NewProvider returns the provider for a mode.
func NewProvider(m Mode) (Provider, error) {
	switch m {
	case ModeMeeus:
		return NewMeeusProvider(), nil
	case ModeFixed:
		return NewFixedProvider(), nil
	case ModeHorizons:
		return NewHorizonsProvider(), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
}
