package ephem

import (
	"fmt"
	"time"

	"github.com/litescript/ls-skylight/internal/astro"
)

// FixedProvider returns the same lunar values for every query. It exists for
// tests and offline runs; setting Err simulates an unavailable provider.
type FixedProvider struct {
	Equatorial   astro.EquatorialPosition
	Horizontal   astro.HorizontalPosition
	Illumination float64
	Err          error
}

// NewFixedProvider returns a FixedProvider with a half-lit Moon on the
// southern horizon.
func NewFixedProvider() *FixedProvider {
	return &FixedProvider{
		Horizontal:   astro.HorizontalPosition{AltitudeDeg: 0, AzimuthDeg: 180, AzimuthDefined: true},
		Illumination: 0.5,
	}
}

// Name implements Provider.
func (p *FixedProvider) Name() string {
	return "fixed"
}

// MoonEquatorial implements Provider.
func (p *FixedProvider) MoonEquatorial(time.Time) (astro.EquatorialPosition, error) {
	if p.Err != nil {
		return astro.EquatorialPosition{}, p.wrap("equatorial")
	}
	return p.Equatorial, nil
}

// MoonHorizontal implements Provider.
func (p *FixedProvider) MoonHorizontal(time.Time, astro.Observer) (astro.HorizontalPosition, error) {
	if p.Err != nil {
		return astro.HorizontalPosition{}, p.wrap("horizontal")
	}
	return p.Horizontal, nil
}

// MoonIllumination implements Provider.
func (p *FixedProvider) MoonIllumination(time.Time) (float64, error) {
	if p.Err != nil {
		return 0, p.wrap("illumination")
	}
	return p.Illumination, nil
}

func (p *FixedProvider) wrap(query string) error {
	return fmt.Errorf("fixed %s: %w: %w", query, ErrProviderUnavailable, p.Err)
}
