// Package theme holds the lipgloss styles used by the tracker CLI.
package theme

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/project-tracker/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for section titles.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// LabelStyle renders the left column of key/value output.
var LabelStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Width(20)

// PanelStyle wraps a block of key/value output.
var PanelStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ErrorStyle is used for failure lines.
var ErrorStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorRed)

// HintStyle is used for secondary text such as ids.
var HintStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// StatusStyle returns a color-coded style for a project or task status.
func StatusStyle(status string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch status {
	case model.ProjectStatusActive, model.TaskStatusTodo:
		return base.Foreground(ColorBlue)
	case model.TaskStatusInProgress:
		return base.Foreground(ColorYellow)
	case model.ProjectStatusOnHold:
		return base.Foreground(ColorMagenta)
	case model.ProjectStatusCompleted, model.TaskStatusDone:
		return base.Foreground(ColorGreen)
	default:
		return base.Foreground(ColorGray)
	}
}

// RateStyle colors a completion percentage.
func RateStyle(rate float64) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch {
	case rate >= 75:
		return base.Foreground(ColorGreen)
	case rate >= 25:
		return base.Foreground(ColorYellow)
	default:
		return base.Foreground(ColorRed)
	}
}

// KeyValues renders aligned label/value rows inside a panel.
func KeyValues(rows [][2]string) string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, LabelStyle.Render(row[0])+row[1])
	}
	return PanelStyle.Render(strings.Join(lines, "\n"))
}

// Stats renders an organization's aggregate counts.
func Stats(slug string, s model.ProjectStats) string {
	title := HeaderStyle.Render("Stats for " + slug)
	body := KeyValues([][2]string{
		{"Projects", fmt.Sprintf("%d", s.TotalProjects)},
		{"  active", StatusStyle(model.ProjectStatusActive).Render(fmt.Sprintf("%d", s.ActiveProjects))},
		{"  completed", StatusStyle(model.ProjectStatusCompleted).Render(fmt.Sprintf("%d", s.CompletedProjects))},
		{"Tasks", fmt.Sprintf("%d", s.TotalTasks)},
		{"  done", StatusStyle(model.TaskStatusDone).Render(fmt.Sprintf("%d", s.CompletedTasks))},
		{"Completion", RateStyle(s.CompletionRate).Render(fmt.Sprintf("%.1f%%", s.CompletionRate))},
	})
	return lipgloss.JoinVertical(lipgloss.Left, title, body)
}
