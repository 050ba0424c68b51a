// Package state provides thread-safe state management for the application.
package state

import (
	"sync"
	"time"

	"github.com/litescript/ls-skylight/internal/astro"
	"github.com/litescript/ls-skylight/internal/ephemeris"
)

// EventType represents the type of state change event.
type EventType string

const (
	EventSunrise        EventType = "SUNRISE"
	EventSunset         EventType = "SUNSET"
	EventTwilight       EventType = "TWILIGHT"
	EventLunarFallback  EventType = "LUNAR_FALLBACK"
	EventLunarRecovered EventType = "LUNAR_RECOVERED"
)

// Event represents a change between two consecutive ephemerides.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"` // sky time, not wall time
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	Provider  string    `json:"provider,omitempty"`
}

// Sample is a single point in the altitude history.
type Sample struct {
	Timestamp  time.Time
	SunAltDeg  float64
	MoonAltDeg float64
}

// Manager handles all shared application state with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	// Current state
	current         *ephemeris.Ephemeris
	terminatorLon   float64
	lastCompute     time.Time
	computeDuration time.Duration

	// History buffer
	history       []Sample
	maxHistoryLen int

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int

	// Configuration
	refreshInterval time.Duration
}

// Config holds configuration for the state manager.
type Config struct {
	MaxHistoryLen   int
	MaxEvents       int
	RefreshInterval time.Duration
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxHistoryLen:   120, // 10 minutes at the default refresh
		MaxEvents:       50,
		RefreshInterval: 5 * time.Second,
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	maxHistory := cfg.MaxHistoryLen
	if maxHistory <= 0 {
		maxHistory = 1
	}
	return &Manager{
		maxHistoryLen:   maxHistory,
		maxEvents:       maxEvents,
		events:          make([]Event, 0, maxEvents),
		refreshInterval: cfg.RefreshInterval,
	}
}

// Update atomically records a new ephemeris and its terminator longitude.
func (m *Manager) Update(e ephemeris.Ephemeris, terminatorLon float64, computeDuration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastCompute = time.Now()
	m.computeDuration = computeDuration

	// Detect events before updating current state
	if m.current != nil {
		m.detectEvents(*m.current, e)
	}

	m.current = &e
	m.terminatorLon = terminatorLon

	m.history = append(m.history, Sample{Timestamp: e.Time, SunAltDeg: e.AltDeg, MoonAltDeg: e.MoonAltDeg})
	if len(m.history) > m.maxHistoryLen {
		m.history = m.history[1:]
	}
}

// ResetHistory clears the altitude history, for example after the displayed
// time jumps.
func (m *Manager) ResetHistory() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = nil
}

// detectEvents compares consecutive ephemerides and generates events.
func (m *Manager) detectEvents(prev, next ephemeris.Ephemeris) {
	from, to := prev.SunPhase(), next.SunPhase()
	if from != to {
		typ := EventTwilight
		switch {
		case to == astro.PhaseDay:
			typ = EventSunrise
		case from == astro.PhaseDay:
			typ = EventSunset
		}
		m.addEvent(Event{Type: typ, Timestamp: next.Time, From: from.String(), To: to.String()})
	}

	switch {
	case next.LunarFallback && !prev.LunarFallback:
		m.addEvent(Event{Type: EventLunarFallback, Timestamp: next.Time, Provider: next.LunarProvider})
	case !next.LunarFallback && prev.LunarFallback:
		m.addEvent(Event{Type: EventLunarRecovered, Timestamp: next.Time, Provider: next.LunarProvider})
	}
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Current          *ephemeris.Ephemeris
	TerminatorLonDeg float64
	LastCompute      time.Time
	ComputeDuration  time.Duration
	NextRefresh      time.Time
	History          []Sample
	Events           []Event
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var current *ephemeris.Ephemeris
	if m.current != nil {
		c := *m.current
		current = &c
	}

	history := make([]Sample, len(m.history))
	copy(history, m.history)

	var next time.Time
	if !m.lastCompute.IsZero() {
		next = m.lastCompute.Add(m.refreshInterval)
	}

	return Snapshot{
		Current:          current,
		TerminatorLonDeg: m.terminatorLon,
		LastCompute:      m.lastCompute,
		ComputeDuration:  m.computeDuration,
		NextRefresh:      next,
		History:          history,
		Events:           m.getEventsOrdered(),
	}
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	// If buffer isn't full yet, just copy
	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		idx := (m.eventWriteAt + i) % m.maxEvents
		result[i] = m.events[idx]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// RefreshInterval returns the configured refresh interval.
func (m *Manager) RefreshInterval() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refreshInterval
}

// SetRefreshInterval updates the refresh interval.
func (m *Manager) SetRefreshInterval(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshInterval = d
}

// HasData returns true once at least one ephemeris has been recorded.
func (m *Manager) HasData() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}
