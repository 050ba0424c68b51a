package main

import (
	"testing"
	"time"

	"github.com/litescript/ls-skylight/internal/astro"
	"github.com/litescript/ls-skylight/internal/state"
)

func TestResolveTime(t *testing.T) {
	tests := []struct {
		name    string
		rfc     string
		local   string
		lon     float64
		want    time.Time
		wantErr bool
	}{
		{"neither follows wall clock", "", "", 0, time.Time{}, false},
		{"rfc3339 normalized to UTC", "2024-03-20T14:00:00+02:00", "", 0, time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC), false},
		{"local east of Greenwich", "", "2024-03-20T12:00", 30, time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC), false},
		{"local west of Greenwich", "", "2024-03-20T12:00", -75, time.Date(2024, 3, 20, 17, 0, 0, 0, time.UTC), false},
		{"bad rfc3339", "yesterday", "", 0, time.Time{}, true},
		{"bad local", "", "2024-03-20 12:00", 0, time.Time{}, true},
		{"both set", "2024-03-20T12:00:00Z", "2024-03-20T12:00", 0, time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveTime(tt.rfc, tt.local, tt.lon)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveTime() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !got.Equal(tt.want) {
				t.Errorf("resolveTime() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseSidereal(t *testing.T) {
	jd := astro.ToJulianDay(time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC))

	if parseSidereal("none") != nil {
		t.Error("none should disable sidereal time")
	}

	mean, _ := astro.MeanSidereal(jd)
	for _, s := range []string{"mean", "", "bogus"} {
		src := parseSidereal(s)
		if src == nil {
			t.Fatalf("parseSidereal(%q) = nil", s)
		}
		got, err := src(jd)
		if err != nil || got != mean {
			t.Errorf("parseSidereal(%q)(jd) = %v, %v; want mean %v", s, got, err, mean)
		}
	}

	apparent, err := parseSidereal(" Apparent ")(jd)
	if err != nil {
		t.Fatalf("apparent sidereal: %v", err)
	}
	// Nutation moves apparent time by at most about a second.
	if d := apparent - mean; d > 2.0/3600 || d < -2.0/3600 {
		t.Errorf("apparent - mean = %v hours, want within 2s", d)
	}
}

func TestDescribeEvent(t *testing.T) {
	tests := []struct {
		ev   state.Event
		want string
	}{
		{state.Event{Type: state.EventSunset, From: "day", To: "civil twilight"}, "day → civil twilight"},
		{state.Event{Type: state.EventLunarFallback, Provider: "fixed"}, "provider fixed"},
	}

	for _, tt := range tests {
		if got := describeEvent(tt.ev); got != tt.want {
			t.Errorf("describeEvent(%v) = %q, want %q", tt.ev.Type, got, tt.want)
		}
	}
}
