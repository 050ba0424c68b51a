package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-skylight/internal/state"
)

// EventsViewModel lists sky events newest first.
type EventsViewModel struct {
	width  int
	height int
	cursor int

	events []state.Event
}

// NewEventsViewModel creates an empty events view.
func NewEventsViewModel() EventsViewModel {
	return EventsViewModel{}
}

// SetSize updates the view dimensions.
func (m EventsViewModel) SetSize(width, height int) EventsViewModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData replaces the event list, newest first.
func (m EventsViewModel) UpdateData(snapshot state.Snapshot) EventsViewModel {
	events := make([]state.Event, len(snapshot.Events))
	for i, ev := range snapshot.Events {
		events[len(events)-1-i] = ev
	}
	m.events = events
	if m.cursor >= len(m.events) {
		m.cursor = max(len(m.events)-1, 0)
	}
	return m
}

// Update handles list navigation.
func (m EventsViewModel) Update(msg tea.Msg) (EventsViewModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.events)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

// View renders the event table.
func (m EventsViewModel) View() string {
	var b strings.Builder

	b.WriteString("  " + titleStyle.Render("Sky Events"))
	b.WriteString("\n")

	header := fmt.Sprintf("%-20s %-16s %-24s %-24s", "Sky time (UTC)", "Event", "From", "To")
	b.WriteString("  " + headerStyle.Render(header))
	b.WriteString("\n")

	if len(m.events) == 0 {
		dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
		b.WriteString("  " + dimStyle.Render("No events yet. Step time with [ ] { } to cross a sunrise."))
		b.WriteString("\n")
		return b.String()
	}

	maxRows := m.height - 4
	if maxRows < 5 {
		maxRows = 5
	}
	startIdx := 0
	if m.cursor >= maxRows {
		startIdx = m.cursor - maxRows + 1
	}
	endIdx := min(startIdx+maxRows, len(m.events))

	for i := startIdx; i < endIdx; i++ {
		ev := m.events[i]
		from, to := ev.From, ev.To
		if ev.Provider != "" {
			from, to = ev.Provider, ""
		}
		row := fmt.Sprintf("%-20s %-16s %-24s %-24s",
			ev.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			string(ev.Type),
			truncate(from, 24),
			truncate(to, 24),
		)

		style := eventStyle(ev.Type)
		if i == m.cursor {
			style = selectedRowStyle
		}
		b.WriteString("  " + style.Render(row))
		b.WriteString("\n")
	}

	if len(m.events) > maxRows {
		b.WriteString(fmt.Sprintf("\n  Showing %d-%d of %d events", startIdx+1, endIdx, len(m.events)))
	}

	return b.String()
}

func eventStyle(t state.EventType) lipgloss.Style {
	switch t {
	case state.EventSunrise:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorSunUp))
	case state.EventSunset:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorSunDown))
	case state.EventLunarFallback:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorFallback))
	case state.EventLunarRecovered:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	default:
		return rowStyle
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
