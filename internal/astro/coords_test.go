package astro

import (
	"math"
	"testing"
	"time"
)

func TestToHorizontal_CardinalDirections(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		decDeg  float64
		haRad   float64
		wantAlt float64
		wantAz  float64
	}{
		{"upper culmination due south", 35, 0, 0, 55, 180},
		{"rising due east on equator", 0, 0, -math.Pi / 2, 0, 90},
		{"setting due west on equator", 0, 0, math.Pi / 2, 0, 270},
		{"southern observer sees culmination due north", -35, 0, 0, 55, 0},
		{"lower culmination due north", 60, 45, math.Pi, 15, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToHorizontal(tt.lat, degToRad(tt.decDeg), tt.haRad)
			if !got.AzimuthDefined {
				t.Fatalf("AzimuthDefined = false, want true")
			}
			if math.Abs(got.AltitudeDeg-tt.wantAlt) > 1e-6 {
				t.Errorf("altitude = %v°, want %v°", got.AltitudeDeg, tt.wantAlt)
			}
			azDiff := math.Abs(got.AzimuthDeg - tt.wantAz)
			if azDiff > 180 {
				azDiff = 360 - azDiff
			}
			if azDiff > 1e-6 {
				t.Errorf("azimuth = %v°, want %v°", got.AzimuthDeg, tt.wantAz)
			}
		})
	}
}

func TestToHorizontal_Polaris(t *testing.T) {
	// Polaris sits ~0.74° from the pole, so from 35°N it stays near altitude 35° due north.
	dec := degToRad(89.26)
	for h := -math.Pi; h < math.Pi; h += math.Pi / 6 {
		got := ToHorizontal(35, dec, h)
		if math.Abs(got.AltitudeDeg-35) > 1 {
			t.Errorf("H=%.2f: Polaris altitude = %v°, expected ~35°", h, got.AltitudeDeg)
		}
		if got.AzimuthDeg > 2 && got.AzimuthDeg < 358 {
			t.Errorf("H=%.2f: Polaris azimuth = %v°, expected near north", h, got.AzimuthDeg)
		}
	}
}

func TestToHorizontal_Degenerate(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		decDeg  float64
		haRad   float64
		wantAlt float64
		wantAz  float64
	}{
		{"northern zenith", 35, 35, 0, 90, 180},
		{"southern zenith", -30, -30, 0, 90, 0},
		{"northern nadir", 35, -35, math.Pi, -90, 0},
		{"southern nadir", -30, 30, math.Pi, -90, 180},
		{"equator zenith", 0, 0, 0, 90, 180},
		{"within epsilon of zenith", 10, 10.03, 0.0001, 89.97, 180},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToHorizontal(tt.lat, degToRad(tt.decDeg), tt.haRad)
			if got.AzimuthDefined {
				t.Errorf("AzimuthDefined = true, want false")
			}
			if got.AltitudeDeg < -90 || got.AltitudeDeg > 90 {
				t.Errorf("altitude %v° outside [-90, 90]", got.AltitudeDeg)
			}
			if math.Abs(got.AltitudeDeg-tt.wantAlt) > 0.01 {
				t.Errorf("altitude = %v°, want %v°", got.AltitudeDeg, tt.wantAlt)
			}
			if got.AzimuthDeg != tt.wantAz {
				t.Errorf("placeholder azimuth = %v°, want %v°", got.AzimuthDeg, tt.wantAz)
			}
			if math.IsNaN(got.AzimuthDeg) || math.IsNaN(got.AltitudeDeg) {
				t.Errorf("NaN in degenerate output: %+v", got)
			}
		})
	}
}

func TestToHorizontal_JustOutsideDegenerate(t *testing.T) {
	// 0.5° off the zenith the horizontal projection is ~8.7e-3, well above the threshold.
	got := ToHorizontal(35, degToRad(34.5), 0)
	if !got.AzimuthDefined {
		t.Fatalf("AzimuthDefined = false for a body 0.5° from zenith")
	}
	if math.Abs(got.AzimuthDeg-180) > 1e-6 {
		t.Errorf("azimuth = %v°, want 180°", got.AzimuthDeg)
	}
}

func TestToHorizontal_Ranges(t *testing.T) {
	for lat := -90.0; lat <= 90; lat += 15 {
		for dec := -90.0; dec <= 90; dec += 10 {
			for h := -math.Pi; h <= math.Pi; h += math.Pi / 12 {
				got := ToHorizontal(lat, degToRad(dec), h)
				if math.IsNaN(got.AltitudeDeg) || math.IsNaN(got.AzimuthDeg) {
					t.Fatalf("NaN for lat=%v dec=%v H=%v: %+v", lat, dec, h, got)
				}
				if got.AltitudeDeg < -90 || got.AltitudeDeg > 90 {
					t.Fatalf("altitude out of range for lat=%v dec=%v H=%v: %v", lat, dec, h, got.AltitudeDeg)
				}
				if got.AzimuthDeg < 0 || got.AzimuthDeg >= 360 {
					t.Fatalf("azimuth out of range for lat=%v dec=%v H=%v: %v", lat, dec, h, got.AzimuthDeg)
				}
			}
		}
	}
}

func TestSunHorizontal_Scenarios(t *testing.T) {
	tests := []struct {
		name   string
		time   time.Time
		obs    Observer
		minAlt float64
		maxAlt float64
	}{
		{
			name:   "equinox noon on the equator is near zenith",
			time:   time.Date(2024, 3, 21, 12, 0, 0, 0, time.UTC),
			obs:    Observer{LatDeg: 0, LonDeg: 0},
			minAlt: 80,
			maxAlt: 90,
		},
		{
			name:   "midnight sun at the Arctic Circle",
			time:   time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC),
			obs:    Observer{LatDeg: 66.55, LonDeg: 0},
			minAlt: -5,
			maxAlt: 5,
		},
		{
			name:   "polar twilight noon at the Arctic Circle",
			time:   time.Date(2024, 12, 21, 12, 0, 0, 0, time.UTC),
			obs:    Observer{LatDeg: 66.55, LonDeg: 0},
			minAlt: -5,
			maxAlt: 1,
		},
		{
			name:   "London summer noon",
			time:   time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC),
			obs:    Observer{LatDeg: 51.5, LonDeg: -0.12},
			minAlt: 61,
			maxAlt: 62.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SunHorizontal(tt.time, tt.obs)
			if got.AltitudeDeg < tt.minAlt || got.AltitudeDeg > tt.maxAlt {
				t.Errorf("altitude = %.3f°, want [%v, %v]", got.AltitudeDeg, tt.minAlt, tt.maxAlt)
			}
		})
	}
}

func TestPlaceholderAzimuth(t *testing.T) {
	tests := []struct {
		lat  float64
		ha   float64
		want float64
	}{
		{45, 0, 180},
		{45, 0.1, 180},
		{45, -0.1, 180},
		{45, math.Pi, 0},
		{-45, 0, 0},
		{-45, math.Pi, 180},
		{0, 0, 180},
	}
	for _, tt := range tests {
		if got := placeholderAzimuth(tt.lat, tt.ha); got != tt.want {
			t.Errorf("placeholderAzimuth(%v, %v) = %v, want %v", tt.lat, tt.ha, got, tt.want)
		}
	}
}
