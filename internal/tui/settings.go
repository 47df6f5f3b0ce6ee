package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/pomo/internal/engine"
	"github.com/sadopc/pomo/internal/store"
)

type settingsModel struct {
	engine *engine.Engine
	width  int
	height int

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	workMinutes  *string
	breakMinutes *string
}

func newSettingsModel(e *engine.Engine) settingsModel {
	wm, bm := "", ""
	return settingsModel{
		engine:       e,
		workMinutes:  &wm,
		breakMinutes: &bm,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(msg, keys.Enter) {
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	cfg := s.engine.Settings()
	*s.workMinutes = strconv.Itoa(cfg.WorkMinutes)
	*s.breakMinutes = strconv.Itoa(cfg.BreakMinutes)

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Work (min)").Value(s.workMinutes),
			huh.NewInput().Title("Break (min)").Value(s.breakMinutes),
		).Title("Durations"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		return s, s.saveSettings()
	}

	return s, cmd
}

func (s settingsModel) saveSettings() tea.Cmd {
	work, err := strconv.Atoi(*s.workMinutes)
	if err != nil {
		return errStatus("Work minutes must be a number")
	}
	brk, err := strconv.Atoi(*s.breakMinutes)
	if err != nil {
		return errStatus("Break minutes must be a number")
	}

	if err := s.engine.UpdateSettings(store.Settings{WorkMinutes: work, BreakMinutes: brk}); err != nil {
		return func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
	}
	return status("Settings saved")
}

func (s settingsModel) view() string {
	w := s.width - 4

	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	cfg := s.engine.Settings()
	rows := []string{
		title,
		"",
		fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(16).Render("Work"),
			highlightStyle.Render(fmt.Sprintf("%d min", cfg.WorkMinutes))),
		fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(16).Render("Break"),
			highlightStyle.Render(fmt.Sprintf("%d min", cfg.BreakMinutes))),
		"",
		mutedStyle.Render(fmt.Sprintf("Work must be %d-%d min, break %d-%d min.",
			engine.MinWorkMinutes, engine.MaxWorkMinutes, engine.MinBreakMinutes, engine.MaxBreakMinutes)),
		mutedStyle.Render("Changes apply immediately while paused, otherwise at the next phase."),
		"",
		mutedStyle.Render("Press enter to edit settings"),
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
