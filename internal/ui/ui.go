// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-skylight/internal/astro"
	"github.com/litescript/ls-skylight/internal/ephemeris"
	"github.com/litescript/ls-skylight/internal/state"
	"github.com/litescript/ls-skylight/internal/version"
)

// Shared table styles.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewSky ViewMode = iota
	ViewEvents
)

const viewCount = 2

// Sky-time steps bound to the bracket keys.
const (
	hourStep = time.Hour
	dayStep  = 24 * time.Hour
)

// Msg types for Bubble Tea
type (
	// TickMsg triggers periodic UI updates.
	TickMsg time.Time

	// AnimTickMsg triggers fast animation updates.
	AnimTickMsg time.Time

	// DataUpdateMsg signals a new ephemeris is in the state manager.
	DataUpdateMsg struct {
		Snapshot state.Snapshot
	}
)

// Config selects what the UI computes.
type Config struct {
	Observer astro.Observer
	// Birth is the point the terminator is evaluated for; nil uses Observer.
	Birth *astro.Observer
	// Start pins the sky clock; the zero value follows the wall clock.
	Start time.Time
}

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	engine *ephemeris.Engine
	state  *state.Manager
	now    func() time.Time

	// Sky clock
	observer astro.Observer
	birth    astro.Observer
	base     time.Time
	offset   time.Duration

	// UI state
	viewMode  ViewMode
	width     int
	height    int
	ready     bool
	statusMsg string
	animTick  int

	// Sub-models
	sky    SkyViewModel
	events EventsViewModel

	snapshot state.Snapshot
}

// New creates a new root UI model.
func New(engine *ephemeris.Engine, stateMgr *state.Manager, cfg Config) Model {
	birth := cfg.Observer
	if cfg.Birth != nil {
		birth = *cfg.Birth
	}
	return Model{
		engine:   engine,
		state:    stateMgr,
		now:      time.Now,
		observer: cfg.Observer,
		birth:    birth,
		base:     cfg.Start,
		viewMode: ViewSky,
		sky:      NewSkyViewModel(),
		events:   NewEventsViewModel(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.computeCmd(),
		tickCmd(),
		animTickCmd(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "1", "s":
			m.viewMode = ViewSky
		case "2", "e":
			m.viewMode = ViewEvents
		case "tab":
			m.viewMode = (m.viewMode + 1) % viewCount

		case "[":
			cmds = append(cmds, m.step(-hourStep))
		case "]":
			cmds = append(cmds, m.step(hourStep))
		case "{":
			cmds = append(cmds, m.step(-dayStep))
		case "}":
			cmds = append(cmds, m.step(dayStep))
		case "n":
			m.base = time.Time{}
			m.offset = 0
			m.state.ResetHistory()
			m.statusMsg = "Following the wall clock"
			cmds = append(cmds, m.computeCmd())
		case "r":
			cmds = append(cmds, m.computeCmd())

		default:
			cmds = append(cmds, m.updateActiveView(msg))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// Logo takes ~10 lines, footer ~2 lines
		contentHeight := msg.Height - 12
		m.sky = m.sky.SetSize(msg.Width, contentHeight)
		m.events = m.events.SetSize(msg.Width, contentHeight)

	case TickMsg:
		cmds = append(cmds, tickCmd())
		m.snapshot = m.state.Snapshot()
		if m.refreshDue(time.Time(msg)) {
			cmds = append(cmds, m.computeCmd())
		}

	case AnimTickMsg:
		cmds = append(cmds, animTickCmd())
		m.animTick++

	case DataUpdateMsg:
		m.snapshot = msg.Snapshot
		m.sky = m.sky.UpdateData(m.snapshot)
		m.events = m.events.UpdateData(m.snapshot)

	default:
		cmds = append(cmds, m.updateActiveView(msg))
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewSky:
		m.sky, cmd = m.sky.Update(msg)
	case ViewEvents:
		m.events, cmd = m.events.Update(msg)
	}
	return cmd
}

// step shifts the sky clock and recomputes. The altitude history is cleared
// because it would no longer be a continuous series.
func (m *Model) step(d time.Duration) tea.Cmd {
	m.offset += d
	m.state.ResetHistory()
	m.statusMsg = "Sky clock offset " + formatOffset(m.offset)
	return m.computeCmd()
}

// SkyTime returns the instant currently displayed.
func (m Model) SkyTime() time.Time {
	base := m.base
	if base.IsZero() {
		base = m.now()
	}
	return base.Add(m.offset)
}

// refreshDue reports whether a live sky clock needs a new ephemeris.
func (m Model) refreshDue(now time.Time) bool {
	if !m.state.HasData() {
		return true
	}
	if !m.base.IsZero() {
		return false
	}
	next := m.snapshot.NextRefresh
	return next.IsZero() || !now.Before(next)
}

// computeCmd evaluates the engine off the UI goroutine and records the
// result in the state manager.
func (m Model) computeCmd() tea.Cmd {
	engine, st := m.engine, m.state
	t := m.SkyTime()
	obs, birth := m.observer, m.birth
	return func() tea.Msg {
		start := time.Now()
		e := engine.Compute(t, obs.LatDeg, obs.LonDeg)
		e.Observer.Name = obs.Name
		term := engine.TerminatorLongitude(t, birth.LatDeg, birth.LonDeg)
		st.Update(e, term, time.Since(start))
		return DataUpdateMsg{Snapshot: st.Snapshot()}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.viewMode {
	case ViewSky:
		content = m.sky.View()
	case ViewEvents:
		content = m.events.View()
	}

	return m.renderFrame(content)
}

func (m Model) renderFrame(content string) string {
	header := m.renderHeader()
	footer := m.renderFooter()

	return header + "\n" + content + "\n" + footer
}

func (m Model) renderHeader() string {
	return m.renderLogo() + m.renderTabs() + "\n"
}

func (m Model) renderLogo() string {
	logo := []string{
		`  ██╗     ███████╗      ███████╗██╗  ██╗██╗   ██╗██╗     ██╗ ██████╗ ██╗  ██╗████████╗`,
		`  ██║     ██╔════╝      ██╔════╝██║ ██╔╝╚██╗ ██╔╝██║     ██║██╔════╝ ██║  ██║╚══██╔══╝`,
		`  ██║     ███████╗█████╗███████╗█████╔╝  ╚████╔╝ ██║     ██║██║  ███╗███████║   ██║`,
		`  ██║     ╚════██║╚════╝╚════██║██╔═██╗   ╚██╔╝  ██║     ██║██║   ██║██╔══██║   ██║`,
		`  ███████╗███████║      ███████║██║  ██╗   ██║   ███████╗██║╚██████╔╝██║  ██║   ██║`,
		`  ╚══════╝╚══════╝      ╚══════╝╚═╝  ╚═╝   ╚═╝   ╚══════╝╚═╝ ╚═════╝ ╚═╝  ╚═╝   ╚═╝`,
	}

	var b strings.Builder
	b.WriteString("\n")

	for row, line := range logo {
		runes := []rune(line)
		lineLen := len(runes)

		for col, r := range runes {
			color := gradientColor(col, row, lineLen, len(logo))
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
			b.WriteString(style.Render(string(r)))
		}
		b.WriteString("\n")
	}

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	b.WriteString(muted.Render("  Sun & Moon · Live Sky Ephemeris"))
	b.WriteString("\n")

	b.WriteString(muted.Render(fmt.Sprintf("  (c) 2025 litescript.net | v%s", version.Version)))
	b.WriteString("\n\n")

	return b.String()
}

// gradientColor returns a hex color for a position in the logo gradient.
// Night to dawn: indigo -> violet -> rose -> amber.
func gradientColor(col, row, width, height int) string {
	xRatio := float64(col) / float64(width)
	yRatio := float64(row) / float64(height)

	var r, g, b float64
	switch {
	case xRatio < 0.33:
		t := xRatio / 0.33
		r = 67 + t*(139-67)
		g = 56 + t*(92-56)
		b = 202 + t*(246-202)
	case xRatio < 0.66:
		t := (xRatio - 0.33) / 0.33
		r = 139 + t*(236-139)
		g = 92 + t*(72-92)
		b = 246 + t*(153-246)
	default:
		t := (xRatio - 0.66) / 0.34
		r = 236 + t*(251-236)
		g = 72 + t*(191-72)
		b = 153 + t*(36-153)
	}

	// Vertical fade: brighter at top, darker toward bottom
	brightness := 1.0 - (yRatio * 0.5)
	return fmt.Sprintf("#%02X%02X%02X",
		clampByte(r*brightness), clampByte(g*brightness), clampByte(b*brightness))
}

func clampByte(v float64) int {
	switch {
	case v > 255:
		return 255
	case v < 0:
		return 0
	default:
		return int(v)
	}
}

func (m Model) renderTabs() string {
	tabs := []string{"[1] Sky", "[2] Events"}
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinner := spinnerFrames[m.animTick%len(spinnerFrames)]

	var status string
	switch {
	case m.snapshot.LastCompute.IsZero():
		status = accentStyle.Render(spinner) + " " + m.renderShimmerText("Computing ephemeris...")
	case !m.base.IsZero():
		status = accentStyle.Render("■") + dimStyle.Render(" fixed clock")
	default:
		countdown := time.Until(m.snapshot.NextRefresh).Round(time.Second)
		if countdown < 0 {
			countdown = 0
		}
		status = accentStyle.Render(spinner) + dimStyle.Render(fmt.Sprintf(" refresh in %ds", int(countdown.Seconds())))
	}
	if m.snapshot.ComputeDuration > 0 {
		status += dimStyle.Render(" (" + m.snapshot.ComputeDuration.Round(time.Microsecond).String() + ")")
	}
	if m.offset != 0 {
		status += dimStyle.Render(" offset " + formatOffset(m.offset))
	}

	var help string
	switch m.viewMode {
	case ViewEvents:
		help = dimStyle.Render("↑↓: scroll | [ ]: ±1h | { }: ±1d | n: now | tab: switch view")
	default:
		help = dimStyle.Render("←/→: pan | c: face Sun | [ ]: ±1h | { }: ±1d | n: now | tab: switch view")
	}

	footer := "  " + status + "  " + dimStyle.Render("|") + "  " + help
	if m.statusMsg != "" {
		footer += "\n  " + dimStyle.Render(m.statusMsg)
	}
	return footer
}

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func animTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return AnimTickMsg(t)
	})
}

// formatOffset renders a sky clock offset as signed days and hours.
func formatOffset(d time.Duration) string {
	sign := "+"
	if d < 0 {
		sign = "-"
		d = -d
	}
	days := int(d / dayStep)
	hours := int((d % dayStep) / time.Hour)
	if days == 0 {
		return fmt.Sprintf("%s%dh", sign, hours)
	}
	return fmt.Sprintf("%s%dd%dh", sign, days, hours)
}

// renderShimmerText renders text with a subtle moving shine effect.
func (m Model) renderShimmerText(text string) string {
	runes := []rune(text)
	textLen := len(runes)
	if textLen == 0 {
		return ""
	}

	pos := m.animTick % (textLen + 8)

	var result strings.Builder
	for i, r := range runes {
		dist := i - pos + 4
		if dist < 0 {
			dist = -dist
		}

		var r8, g8, b8 int
		switch {
		case dist <= 1:
			r8, g8, b8 = 180, 160, 220
		case dist <= 3:
			r8, g8, b8 = 140, 120, 180
		case dist <= 5:
			r8, g8, b8 = 110, 90, 150
		default:
			r8, g8, b8 = 80, 70, 120
		}

		hexColor := fmt.Sprintf("#%02X%02X%02X", r8, g8, b8)
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor))
		result.WriteString(style.Render(string(r)))
	}

	return result.String()
}
