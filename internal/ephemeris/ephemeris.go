// Package ephemeris assembles Sun and Moon lighting vectors, lunar
// illumination and the terminator longitude for an instant and observer.
package ephemeris

import (
	"fmt"
	"math"
	"time"

	"github.com/litescript/ls-skylight/internal/astro"
	"github.com/litescript/ls-skylight/internal/ephem"
	"github.com/litescript/ls-skylight/internal/logging"
)

// DefaultIllumination is reported when the lunar provider fails.
const DefaultIllumination = 0.5

// minVectorNorm is the length below which a vector is not rescaled.
const minVectorNorm = 1e-9

// Ephemeris is an immutable snapshot of Sun and Moon geometry.
//
// World vectors use the renderer's Y-up axes (see astro.ECEFToWorld).
type Ephemeris struct {
	Time     time.Time
	Observer astro.Observer

	SunWorld       astro.Vec3
	MoonWorld      astro.Vec3
	ObserverWorld  astro.Vec3
	AltDeg         float64 // solar altitude
	AzDeg          float64 // solar azimuth; placeholder when !AzimuthDefined
	AzimuthDefined bool
	Illumination   float64 // lunar illuminated fraction in [0, 1]

	MoonAltDeg    float64
	MoonAzDeg     float64
	SolarModel    string
	LunarProvider string
	LunarFallback bool // the provider failed and fallback values were used
}

// SunPhase returns the twilight phase for the solar altitude.
func (e Ephemeris) SunPhase() astro.SunPhase {
	return astro.GetSunPhase(e.AltDeg)
}

// Recorder receives per-computation events. Implementations must be safe
// for concurrent use.
type Recorder interface {
	ObserveCompute(solarModel string, d time.Duration)
	LunarFallback(provider string)
	AzimuthDegenerate()
	TerminatorEstimated()
}

type nopRecorder struct{}

func (nopRecorder) ObserveCompute(string, time.Duration) {}
func (nopRecorder) LunarFallback(string)                  {}
func (nopRecorder) AzimuthDegenerate()                    {}
func (nopRecorder) TerminatorEstimated()                  {}

// Engine computes ephemerides. It holds only immutable configuration and is
// safe for concurrent use.
type Engine struct {
	sun      astro.SolarModel
	lunar    ephem.Provider
	sidereal astro.SiderealSource
	log      *logging.Logger
	rec      Recorder
}

// Option configures an Engine.
type Option func(*Engine)

// WithSolarModel selects the solar position strategy.
func WithSolarModel(m astro.SolarModel) Option {
	return func(e *Engine) {
		if m != nil {
			e.sun = m
		}
	}
}

// WithLunarProvider selects the lunar ephemeris provider.
func WithLunarProvider(p ephem.Provider) Option {
	return func(e *Engine) {
		if p != nil {
			e.lunar = p
		}
	}
}

// WithSidereal sets the sidereal time source used for the terminator.
// A nil source forces the simplified terminator estimate.
func WithSidereal(s astro.SiderealSource) Option {
	return func(e *Engine) { e.sidereal = s }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.rec = r
		}
	}
}

// New creates an Engine. Defaults: low-precision Sun, Meeus lunar provider,
// mean sidereal time, discarded logs and no metrics.
func New(opts ...Option) *Engine {
	e := &Engine{
		sun:      astro.LowPrecisionSun{},
		lunar:    ephem.NewMeeusProvider(),
		sidereal: astro.MeanSidereal,
		log:      logging.Discard(),
		rec:      nopRecorder{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SolarModel returns the configured solar model name.
func (e *Engine) SolarModel() string { return e.sun.Name() }

// LunarProvider returns the configured lunar provider name.
func (e *Engine) LunarProvider() string { return e.lunar.Name() }

// Compute returns the ephemeris at t for an observer at latDeg/lonDeg.
// Lunar provider failures never escape: they are logged and replaced by
// fallback values, with LunarFallback set.
func (e *Engine) Compute(t time.Time, latDeg, lonDeg float64) Ephemeris {
	start := time.Now()
	t = t.UTC()
	obs := astro.Observer{LatDeg: latDeg, LonDeg: lonDeg}
	jd := astro.ToJulianDay(t)

	sunEq := e.sun.Equatorial(jd)
	ha := astro.HourAngle(astro.LST(astro.GMST(jd), lonDeg), sunEq.RightAscensionRad)
	sun := astro.ToHorizontal(latDeg, sunEq.DeclinationRad, ha)
	if !sun.AzimuthDefined {
		e.log.Debug("solar azimuth undefined near zenith/nadir, using placeholder %.0f°", sun.AzimuthDeg)
		e.rec.AzimuthDegenerate()
	}

	observer := astro.ECEFToWorld(astro.ObserverECEF(latDeg, lonDeg))

	out := Ephemeris{
		Time:           t,
		Observer:       obs,
		SunWorld:       astro.HorizontalToWorld(sun.AzimuthDeg, sun.AltitudeDeg, latDeg, lonDeg),
		ObserverWorld:  observer,
		AltDeg:         sun.AltitudeDeg,
		AzDeg:          sun.AzimuthDeg,
		AzimuthDefined: sun.AzimuthDefined,
		SolarModel:     e.sun.Name(),
		LunarProvider:  e.lunar.Name(),
	}

	moon, err := e.moonHorizontal(t, obs)
	if err != nil {
		e.lunarFailed("horizontal", err)
		out.LunarFallback = true
		out.MoonWorld = observer
		out.MoonAltDeg = 90
	} else {
		out.MoonWorld = normalizeGuarded(astro.HorizontalToWorld(moon.AzimuthDeg, moon.AltitudeDeg, latDeg, lonDeg))
		out.MoonAltDeg = moon.AltitudeDeg
		out.MoonAzDeg = moon.AzimuthDeg
	}

	illum, err := e.moonIllumination(t)
	if err != nil {
		e.lunarFailed("illumination", err)
		out.LunarFallback = true
		illum = DefaultIllumination
	}
	out.Illumination = illum

	e.rec.ObserveCompute(e.sun.Name(), time.Since(start))
	return out
}

// TerminatorLongitude returns the day/night boundary longitude at t. The
// coordinates identify the reference point (for example a birth point) and
// do not change the result.
func (e *Engine) TerminatorLongitude(t time.Time, latDeg, lonDeg float64) float64 {
	calc := astro.TerminatorCalculator{Sun: e.sun, Sidereal: e.sidereal}
	lon, estimated := calc.Longitude(t, latDeg, lonDeg)
	if estimated {
		e.log.Warn("sidereal time unavailable, using simplified terminator estimate")
		e.rec.TerminatorEstimated()
	}
	return lon
}

func (e *Engine) lunarFailed(query string, err error) {
	e.log.With(logging.F("provider", e.lunar.Name()), logging.F("query", query)).
		Warn("lunar provider failed, using fallback: %v", err)
	e.rec.LunarFallback(e.lunar.Name())
}

// moonHorizontal calls the provider, turning panics and out-of-range
// results into errors.
func (e *Engine) moonHorizontal(t time.Time, obs astro.Observer) (pos astro.HorizontalPosition, err error) {
	defer recoverProvider(&err)

	pos, err = e.lunar.MoonHorizontal(t, obs)
	if err != nil {
		return pos, err
	}
	if !finite(pos.AltitudeDeg) || !finite(pos.AzimuthDeg) || math.Abs(pos.AltitudeDeg) > 90 {
		return pos, fmt.Errorf("%w: horizontal position out of range (alt=%v az=%v)",
			ephem.ErrProviderUnavailable, pos.AltitudeDeg, pos.AzimuthDeg)
	}
	return pos, nil
}

func (e *Engine) moonIllumination(t time.Time) (k float64, err error) {
	defer recoverProvider(&err)

	k, err = e.lunar.MoonIllumination(t)
	if err != nil {
		return k, err
	}
	if !finite(k) || k < 0 || k > 1 {
		return k, fmt.Errorf("%w: illumination %v outside [0, 1]", ephem.ErrProviderUnavailable, k)
	}
	return k, nil
}

func recoverProvider(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: panic: %v", ephem.ErrProviderUnavailable, r)
	}
}

// normalizeGuarded rescales v to unit length. A near-zero vector is divided
// by 1, i.e. returned unchanged.
func normalizeGuarded(v astro.Vec3) astro.Vec3 {
	n := v.Norm()
	if n < minVectorNorm {
		n = 1
	}
	return v.Scale(1 / n)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Compute is New().Compute with default configuration.
func Compute(t time.Time, latDeg, lonDeg float64) Ephemeris {
	return New().Compute(t, latDeg, lonDeg)
}

// TerminatorLongitude is New().TerminatorLongitude with default configuration.
func TerminatorLongitude(t time.Time, latDeg, lonDeg float64) float64 {
	return New().TerminatorLongitude(t, latDeg, lonDeg)
}
