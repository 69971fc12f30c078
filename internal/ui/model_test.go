// ABOUTME: Tests for TUI model and state management
// ABOUTME: Tests status updates, key commands, and rendering helpers
package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Resonate-Protocol/songclock/pkg/songtime"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestNewModel(t *testing.T) {
	model := NewModel(nil) // Controls are optional for testing

	if model.volume != 100 {
		t.Errorf("expected default volume 100, got %d", model.volume)
	}

	if model.muted {
		t.Error("expected muted to be false initially")
	}

	if model.beat != -1 {
		t.Errorf("expected no beat initially, got %d", model.beat)
	}

	if model.showDebug {
		t.Error("expected showDebug to be false initially")
	}
}

func TestStatusMsg(t *testing.T) {
	model := NewModel(nil)

	model.applyStatus(StatusMsg{
		Title: "Calibration tone",
		Stats: songtime.Stats{
			State:        songtime.Stalled,
			CurrentTime:  12.5,
			LagRemaining: 0.25,
		},
		Audible: true,
		Beat:    25,
		Pulse:   0.5,
	})

	if model.title != "Calibration tone" {
		t.Errorf("expected title 'Calibration tone', got '%s'", model.title)
	}
	if model.stats.State != songtime.Stalled {
		t.Errorf("expected stalled state, got %s", model.stats.State)
	}
	if !model.audible {
		t.Error("expected audible after status update")
	}
	if model.beat != 25 || model.pulse != 0.5 {
		t.Errorf("expected beat 25 pulse 0.5, got %d %f", model.beat, model.pulse)
	}

	// an empty title keeps the previous one
	model.applyStatus(StatusMsg{})
	if model.title != "Calibration tone" {
		t.Errorf("title cleared by empty update: '%s'", model.title)
	}
}

func TestViewShowsStall(t *testing.T) {
	model := NewModel(nil)
	model.applyStatus(StatusMsg{
		Stats: songtime.Stats{
			State:        songtime.Stalled,
			CurrentTime:  65.25,
			LagRemaining: 0.3,
		},
	})

	view := model.View()
	for _, want := range []string{"1:05.250", "stalled", "300ms behind"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestKeyCommands(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
		want Command
	}{
		{"space toggles play", tea.KeyMsg{Type: tea.KeySpace}, Command{Kind: CommandTogglePlay}},
		{"p toggles play", runeKey('p'), Command{Kind: CommandTogglePlay}},
		{"s stalls", runeKey('s'), Command{Kind: CommandStall}},
		{"down lowers volume", tea.KeyMsg{Type: tea.KeyDown}, Command{Kind: CommandVolume, Volume: 95}},
		{"m mutes", runeKey('m'), Command{Kind: CommandVolume, Volume: 100, Muted: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			controls := NewControls()
			model := NewModel(controls)

			model.Update(tt.key)

			select {
			case got := <-controls.Commands:
				if got != tt.want {
					t.Errorf("expected %+v, got %+v", tt.want, got)
				}
			default:
				t.Fatal("no command sent")
			}
		})
	}
}

func TestVolumeLimits(t *testing.T) {
	controls := NewControls()
	model := NewModel(controls)

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyUp})
	if updated.(Model).volume != 100 {
		t.Errorf("expected volume capped at 100, got %d", updated.(Model).volume)
	}
	if len(controls.Commands) != 0 {
		t.Error("expected no command when volume is already at max")
	}

	m := updated.(Model)
	for i := 0; i < 25; i++ {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
		m = next.(Model)
	}
	if m.volume != 0 {
		t.Errorf("expected volume floored at 0, got %d", m.volume)
	}
}

func TestQuitSignalsControls(t *testing.T) {
	controls := NewControls()
	model := NewModel(controls)

	_, cmd := model.Update(runeKey('q'))
	if cmd == nil {
		t.Fatal("expected quit command")
	}

	select {
	case <-controls.Quit:
	default:
		t.Error("expected quit signal on controls")
	}
}

func TestDebugToggle(t *testing.T) {
	model := NewModel(nil)

	updated, _ := model.Update(runeKey('d'))
	m := updated.(Model)
	if !m.showDebug {
		t.Error("expected debug view enabled")
	}
	if !strings.Contains(m.View(), "Session") {
		t.Error("expected debug fields in view")
	}
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		value, max, width int
		expected          string
	}{
		{0, 100, 4, "░░░░"},
		{50, 100, 4, "██░░"},
		{100, 100, 4, "████"},
		{150, 100, 4, "████"},
		{-5, 100, 4, "░░░░"},
	}

	for _, tt := range tests {
		if got := renderBar(tt.value, tt.max, tt.width); got != tt.expected {
			t.Errorf("renderBar(%d, %d, %d) = %q, expected %q",
				tt.value, tt.max, tt.width, got, tt.expected)
		}
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		seconds  float64
		expected string
	}{
		{0, "0:00.000"},
		{1.5, "0:01.500"},
		{61.0625, "1:01.063"},
		{-1, "0:00.000"},
	}

	for _, tt := range tests {
		if got := formatTime(tt.seconds); got != tt.expected {
			t.Errorf("formatTime(%f) = %q, expected %q", tt.seconds, got, tt.expected)
		}
	}
}
