package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/pomo/internal/engine"
	"github.com/sadopc/pomo/internal/store"
)

// timerModel renders the engine's observable state and forwards user
// commands into it. The engine ticks itself; this model only reads.
type timerModel struct {
	engine *engine.Engine
	store  *store.Store
	width  int
	height int
}

func newTimerModel(e *engine.Engine, s *store.Store) timerModel {
	return timerModel{engine: e, store: s}
}

func (t *timerModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

func (t timerModel) update(msg tea.Msg) (timerModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return t, nil
	}

	switch {
	case key.Matches(keyMsg, keys.Start):
		if !t.engine.State().Running {
			t.engine.Start()
			return t, status("Timer started")
		}

	case key.Matches(keyMsg, keys.Pause):
		if t.engine.State().Running {
			t.engine.Pause()
			return t, status("Timer paused")
		}
		t.engine.Start()
		return t, status("Timer resumed")

	case key.Matches(keyMsg, keys.Reset):
		t.engine.Reset()
		return t, status("Timer reset")
	}
	return t, nil
}

func status(text string) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text}
	}
}

func errStatus(text string) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isError: true}
	}
}

func (t timerModel) view() string {
	w := t.width - 4
	state := t.engine.State()

	title := titleStyle.Render("Pomodoro")

	var phaseLabel string
	var display string
	clock := formatClock(state.Remaining)

	switch {
	case state.Phase == engine.Break:
		phaseLabel = successStyle.Bold(true).Render("BREAK")
		display = successStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render(clock)
	case state.Running:
		phaseLabel = accentStyle.Bold(true).Render("WORK")
		display = accentStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render(clock)
	default:
		phaseLabel = mutedStyle.Render("WORK")
		display = timerStyle.Width(w - 6).Render(clock)
	}

	if !state.Running {
		phaseLabel += warningStyle.Render("  (paused)")
	}

	bar := t.renderProgressBar(min(w-6, 40))

	today := ""
	if total, err := t.store.GetTodayWorkTotal(); err == nil && total > 0 {
		today = mutedStyle.Render("Today: " + formatSeconds(total) + " focused")
	}

	var controls string
	if state.Running {
		controls = mutedStyle.Render("space: pause  x: reset")
	} else {
		controls = mutedStyle.Render("s: start  space: resume  x: reset")
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		title,
		"",
		display,
		phaseLabel,
		"",
		bar,
		"",
		today,
		controls,
	)

	return panelStyle.Width(w).Render(content)
}

func (t timerModel) renderProgressBar(width int) string {
	if width < 4 {
		width = 4
	}
	pct := t.engine.Progress()
	filled := int(pct / 100 * float64(width))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	bar := highlightStyle.Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", width-filled))
	return bar
}
