// ABOUTME: Bubbletea model for the songclock TUI
// ABOUTME: Shows song time, sync state, catch-up lag and the beat pulse
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Resonate-Protocol/songclock/pkg/songtime"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	stallStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("220"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	pulseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	helpStyle = lipgloss.NewStyle().Faint(true)
)

// Model represents the TUI state
type Model struct {
	title string

	// Timing
	stats   songtime.Stats
	audible bool

	// Beat
	beat  int64
	pulse float64

	// Playback
	volume int
	muted  bool

	showDebug bool
	controls  *Controls

	width  int
	height int
}

// StatusMsg is a snapshot of the frame loop sent to the TUI
type StatusMsg struct {
	Title   string
	Stats   songtime.Stats
	Audible bool
	Beat    int64
	Pulse   float64
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	var b strings.Builder

	title := "songclock"
	if m.title != "" {
		title += " - " + m.title
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	m.renderTiming(&b)
	b.WriteString("\n")
	m.renderBeat(&b)
	b.WriteString("\n")
	m.renderControls(&b)

	if m.showDebug {
		b.WriteString("\n")
		m.renderDebug(&b)
	}

	if m.stats.LastError != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + m.stats.LastError))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("space:Play/Pause  s:Stall  ↑/↓:Volume  m:Mute  d:Debug  q:Quit"))

	return b.String()
}

func field(b *strings.Builder, name, value string) {
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-10s", name+":")))
	b.WriteString(valueStyle.Render(value))
	b.WriteString("\n")
}

// renderTiming renders song time and sync state
func (m Model) renderTiming(b *strings.Builder) {
	field(b, "Time", formatTime(m.stats.CurrentTime))

	state := m.stats.State.String()
	if m.stats.State == songtime.Stalled {
		b.WriteString(headerStyle.Render(fmt.Sprintf("%-10s", "State:")))
		b.WriteString(stallStyle.Render(fmt.Sprintf("%s (%.0fms behind)", state, m.stats.LagRemaining*1000)))
		b.WriteString("\n")
	} else {
		field(b, "State", state)
	}

	audio := "silent"
	if m.audible {
		audio = "playing"
	}
	field(b, "Audio", audio)
	field(b, "Buffer", fmt.Sprintf("%.1fms", m.stats.BufferPeriod*1000))
	field(b, "Catch-ups", fmt.Sprintf("%d (last lag %.0fms)", m.stats.CatchUps, m.stats.LastLag*1000))
}

// renderBeat renders the beat counter and pulse
func (m Model) renderBeat(b *strings.Builder) {
	beat := "-"
	if m.beat >= 0 {
		beat = fmt.Sprintf("%d (bar %d, beat %d)", m.beat, m.beat/4+1, m.beat%4+1)
	}
	field(b, "Beat", beat)

	b.WriteString(headerStyle.Render(fmt.Sprintf("%-10s", "Pulse:")))
	b.WriteString(pulseStyle.Render(renderBar(int(m.pulse*100), 100, 20)))
	b.WriteString("\n")
}

// renderControls renders volume status
func (m Model) renderControls(b *strings.Builder) {
	mute := ""
	if m.muted {
		mute = " (muted)"
	}
	field(b, "Volume", fmt.Sprintf("[%s] %d%%%s", renderBar(m.volume, 100, 10), m.volume, mute))
}

// renderDebug renders clock and scheduling details
func (m Model) renderDebug(b *strings.Builder) {
	field(b, "Session", m.stats.SessionID)
	field(b, "Offset", fmt.Sprintf("%+.6fs (drift %+.1fµs)", m.stats.ClockOffset, m.stats.ClockDrift*1e6))
	field(b, "Scheduled", fmt.Sprintf("%.6f", m.stats.ScheduledStart))
	if m.stats.Realized {
		field(b, "Realized", fmt.Sprintf("%.6f", m.stats.RealizedStart))
	}
	field(b, "Resume", formatTime(m.stats.SourceOffset))
	field(b, "Dropped", fmt.Sprintf("%d pings", m.stats.PingsDropped))
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.controls != nil {
			select {
			case m.controls.Quit <- struct{}{}:
			default:
			}
		}
		return m, tea.Quit
	case " ", "p":
		m.send(Command{Kind: CommandTogglePlay})
	case "s":
		m.send(Command{Kind: CommandStall})
	case "up":
		if m.volume < 100 {
			m.volume += 5
			if m.volume > 100 {
				m.volume = 100
			}
			m.sendVolume()
		}
	case "down":
		if m.volume > 0 {
			m.volume -= 5
			if m.volume < 0 {
				m.volume = 0
			}
			m.sendVolume()
		}
	case "m":
		m.muted = !m.muted
		m.sendVolume()
	case "d":
		m.showDebug = !m.showDebug
	}

	return m, nil
}

func (m Model) sendVolume() {
	m.send(Command{Kind: CommandVolume, Volume: m.volume, Muted: m.muted})
}

// send forwards a command without blocking the UI
func (m Model) send(cmd Command) {
	if m.controls == nil {
		return
	}
	select {
	case m.controls.Commands <- cmd:
	default:
	}
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Title != "" {
		m.title = msg.Title
	}
	m.stats = msg.Stats
	m.audible = msg.Audible
	m.beat = msg.Beat
	m.pulse = msg.Pulse
}

// Utility functions
func renderBar(value, max, width int) string {
	if value < 0 {
		value = 0
	}
	if value > max {
		value = max
	}
	filled := (value * width) / max
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// formatTime renders seconds as m:ss.mmm
func formatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	ms := int64(seconds*1000 + 0.5)
	return fmt.Sprintf("%d:%02d.%03d", ms/60000, (ms/1000)%60, ms%1000)
}
