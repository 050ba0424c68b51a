package state

import (
	"sync"
	"testing"
	"time"

	"github.com/litescript/ls-skylight/internal/ephemeris"
)

var base = time.Date(2024, 6, 21, 3, 0, 0, 0, time.UTC)

func sky(minutes int, sunAlt float64) ephemeris.Ephemeris {
	return ephemeris.Ephemeris{
		Time:          base.Add(time.Duration(minutes) * time.Minute),
		AltDeg:        sunAlt,
		MoonAltDeg:    -sunAlt,
		LunarProvider: "meeus",
	}
}

func TestNewManager(t *testing.T) {
	cfg := DefaultConfig()
	m := NewManager(cfg)

	if m == nil {
		t.Fatal("NewManager returned nil")
	}

	if m.RefreshInterval() != cfg.RefreshInterval {
		t.Errorf("RefreshInterval = %v, want %v", m.RefreshInterval(), cfg.RefreshInterval)
	}

	if m.HasData() {
		t.Error("HasData should be false initially")
	}

	snap := m.Snapshot()
	if snap.Current != nil || !snap.NextRefresh.IsZero() {
		t.Errorf("empty snapshot = %+v", snap)
	}
}

func TestManager_Update(t *testing.T) {
	m := NewManager(DefaultConfig())
	e := sky(0, 12.5)

	m.Update(e, -75.3, 40*time.Microsecond)

	if !m.HasData() {
		t.Error("HasData should be true after Update")
	}

	snap := m.Snapshot()
	if snap.Current == nil || *snap.Current != e {
		t.Errorf("Current = %+v, want %+v", snap.Current, e)
	}
	if snap.TerminatorLonDeg != -75.3 {
		t.Errorf("TerminatorLonDeg = %v, want -75.3", snap.TerminatorLonDeg)
	}
	if snap.ComputeDuration != 40*time.Microsecond {
		t.Errorf("ComputeDuration = %v, want 40µs", snap.ComputeDuration)
	}
	if got := snap.NextRefresh.Sub(snap.LastCompute); got != DefaultConfig().RefreshInterval {
		t.Errorf("NextRefresh - LastCompute = %v", got)
	}
	if len(snap.History) != 1 || snap.History[0].SunAltDeg != 12.5 || snap.History[0].MoonAltDeg != -12.5 {
		t.Errorf("History = %+v", snap.History)
	}
}

func TestManager_HistoryBuffer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxHistoryLen = 3
	m := NewManager(cfg)

	// Add 5 updates
	for i := 0; i < 5; i++ {
		m.Update(sky(i, float64(i)), 0, 0)
	}

	hist := m.Snapshot().History
	if len(hist) != 3 {
		t.Fatalf("history length = %d, want 3", len(hist))
	}
	if hist[0].SunAltDeg != 2 || hist[2].SunAltDeg != 4 {
		t.Errorf("history = %+v, want altitudes 2..4", hist)
	}

	m.ResetHistory()
	if n := len(m.Snapshot().History); n != 0 {
		t.Errorf("history after reset = %d", n)
	}
	if !m.HasData() {
		t.Error("ResetHistory dropped current ephemeris")
	}
}

func TestManager_Snapshot_IsCopy(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Update(sky(0, 10), 0, 0)

	snap := m.Snapshot()
	snap.Current.AltDeg = 999
	snap.History[0].SunAltDeg = 999

	snap2 := m.Snapshot()
	if snap2.Current.AltDeg == 999 || snap2.History[0].SunAltDeg == 999 {
		t.Error("Snapshot modification affected manager state")
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m := NewManager(DefaultConfig())

	var wg sync.WaitGroup
	iterations := 100

	// Writer goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			m.Update(sky(i, float64(i%40)-20), 0, time.Duration(i)*time.Microsecond)
		}
	}()

	// Reader goroutines
	for r := 0; r < 5; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				_ = m.Snapshot()
				_ = m.HasData()
				_ = m.RefreshInterval()
				_ = m.RecentEvents(3)
			}
		}()
	}

	wg.Wait()
}

func TestManager_SetRefreshInterval(t *testing.T) {
	m := NewManager(DefaultConfig())

	newInterval := 30 * time.Second
	m.SetRefreshInterval(newInterval)

	if m.RefreshInterval() != newInterval {
		t.Errorf("RefreshInterval = %v, want %v", m.RefreshInterval(), newInterval)
	}
}

func TestManager_EventDetection_SunPhases(t *testing.T) {
	m := NewManager(DefaultConfig())

	// Night → astronomical → nautical → civil → day → civil
	alts := []float64{-30, -15, -8, -2, 5, -1}
	for i, alt := range alts {
		m.Update(sky(i*10, alt), 0, 0)
	}

	events := m.Snapshot().Events
	want := []struct {
		typ      EventType
		from, to string
	}{
		{EventTwilight, "night", "astronomical twilight"},
		{EventTwilight, "astronomical twilight", "nautical twilight"},
		{EventTwilight, "nautical twilight", "civil twilight"},
		{EventSunrise, "civil twilight", "day"},
		{EventSunset, "day", "civil twilight"},
	}

	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d: %+v", len(events), len(want), events)
	}
	for i, w := range want {
		if events[i].Type != w.typ || events[i].From != w.from || events[i].To != w.to {
			t.Errorf("event %d = %+v, want %v %s→%s", i, events[i], w.typ, w.from, w.to)
		}
	}
	if !events[3].Timestamp.Equal(base.Add(40 * time.Minute)) {
		t.Errorf("sunrise timestamp = %s, want sky time", events[3].Timestamp)
	}
}

func TestManager_EventDetection_BandBoundaries(t *testing.T) {
	m := NewManager(DefaultConfig())

	// Exactly -6° is civil twilight and exactly 0° is day.
	for i, alt := range []float64{-6.5, -6, -3, 0} {
		m.Update(sky(i*10, alt), 0, 0)
	}

	events := m.Snapshot().Events
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2: %+v", len(events), events)
	}
	if events[0].Type != EventTwilight || events[0].To != "civil twilight" {
		t.Errorf("event 0 = %+v, want twilight into civil twilight", events[0])
	}
	if events[1].Type != EventSunrise || !events[1].Timestamp.Equal(base.Add(30*time.Minute)) {
		t.Errorf("event 1 = %+v, want sunrise at the 0° sample", events[1])
	}
}

func TestManager_EventDetection_LunarFallback(t *testing.T) {
	m := NewManager(DefaultConfig())

	ok := sky(0, 10)
	failed := sky(1, 10)
	failed.LunarFallback = true
	recovered := sky(2, 10)

	m.Update(ok, 0, 0)
	m.Update(failed, 0, 0)
	m.Update(failed, 0, 0)
	m.Update(recovered, 0, 0)

	events := m.RecentEvents(10)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2: %+v", len(events), events)
	}
	if events[0].Type != EventLunarFallback || events[0].Provider != "meeus" {
		t.Errorf("first event = %+v", events[0])
	}
	if events[1].Type != EventLunarRecovered {
		t.Errorf("second event = %+v", events[1])
	}
}

func TestManager_EventRingBuffer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxEvents = 3
	m := NewManager(cfg)

	// Alternate day/night: every update after the first emits one event.
	for i := 0; i < 7; i++ {
		alt := 10.0
		if i%2 == 1 {
			alt = -30
		}
		m.Update(sky(i, alt), 0, 0)
	}

	events := m.Snapshot().Events
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	for i := 1; i < len(events); i++ {
		if !events[i].Timestamp.After(events[i-1].Timestamp) {
			t.Errorf("events not chronological: %+v", events)
		}
	}
	if last := events[2]; !last.Timestamp.Equal(base.Add(6*time.Minute)) || last.Type != EventSunrise {
		t.Errorf("newest event = %+v", last)
	}

	if got := m.RecentEvents(1); len(got) != 1 || got[0] != events[2] {
		t.Errorf("RecentEvents(1) = %+v", got)
	}
}
