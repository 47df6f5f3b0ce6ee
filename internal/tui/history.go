package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/pomo/internal/store"
)

const recentSessionLimit = 10

type historyModel struct {
	store  *store.Store
	width  int
	height int

	summaries []store.DailySummary
	sessions  []store.Session
	offset    int // 7-day blocks back from today (0 = current)

	chart barchart.Model
}

func newHistoryModel(s *store.Store) historyModel {
	return historyModel{
		store: s,
		chart: barchart.New(60, 12),
	}
}

func (h *historyModel) setSize(w, ht int) {
	h.width = w
	h.height = ht
}

type historyDataMsg struct {
	summaries []store.DailySummary
	sessions  []store.Session
}

func (h historyModel) refresh() tea.Cmd {
	return func() tea.Msg {
		from, to := h.dateRange()
		summaries, _ := h.store.GetDailySummary(from, to)
		sessions, _ := h.store.ListSessions(recentSessionLimit)
		return historyDataMsg{summaries: summaries, sessions: sessions}
	}
}

func (h historyModel) dateRange() (time.Time, time.Time) {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := today.AddDate(0, 0, 1-7*h.offset)
	start := end.AddDate(0, 0, -7)
	return start, end
}

func (h historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyDataMsg:
		h.summaries = msg.summaries
		h.sessions = msg.sessions
		h.buildChart()
		return h, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			h.offset++
			return h, h.refresh()
		case key.Matches(msg, keys.Right):
			if h.offset > 0 {
				h.offset--
			}
			return h, h.refresh()
		}
	}
	return h, nil
}

func (h *historyModel) buildChart() {
	chartWidth := h.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if h.height > 30 {
		chartHeight = 16
	}

	h.chart = barchart.New(chartWidth, chartHeight)

	from, to := h.dateRange()

	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		dateStr := d.Format("2006-01-02")
		label := d.Format("Mon 02")

		var values []barchart.BarValue
		for _, s := range h.summaries {
			if s.Date != dateStr {
				continue
			}
			style := accentStyle
			if s.Phase == "break" {
				style = successStyle
			}
			values = append(values, barchart.BarValue{
				Name:  s.Phase,
				Value: float64(s.TotalSeconds) / 3600.0,
				Style: style,
			})
		}

		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}

		bars = append(bars, barchart.BarData{
			Label:  label,
			Values: values,
		})
	}

	h.chart.PushAll(bars)
	h.chart.Draw()
}

func (h historyModel) view() string {
	w := h.width - 4

	from, to := h.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s — %s", from.Format("Jan 02"), to.Add(-24*time.Hour).Format("Jan 02, 2006")))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("History"), "  ", dateLabel,
	)

	legend := fmt.Sprintf("  %s work  %s break",
		accentStyle.Render("●"), successStyle.Render("●"))

	tableView := h.renderSessionTable(w)

	nav := mutedStyle.Render("  ←/→: navigate weeks  e: export")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", h.chart.View(), "", legend, "", tableView, "", nav,
		),
	)
}

func (h historyModel) renderSessionTable(w int) string {
	if len(h.sessions) == 0 {
		return mutedStyle.Render("  No completed sessions yet")
	}

	var rows []string
	headerRow := mutedStyle.Render(fmt.Sprintf("  %-8s %10s %22s", "Phase", "Duration", "Ended"))
	rows = append(rows, headerRow)
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 44))))

	for _, s := range h.sessions {
		dot := accentStyle.Render("●")
		if s.Phase == "break" {
			dot = successStyle.Render("●")
		}
		rows = append(rows, fmt.Sprintf("  %s %-6s %10s %22s",
			dot, s.Phase, formatSeconds(s.Duration), s.EndedAt.Local().Format("Jan 02 15:04"),
		))
	}

	return strings.Join(rows, "\n")
}
