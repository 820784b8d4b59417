package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/nao1215/catchphish/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)

	urlStyle = lipgloss.NewStyle().Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			MarginTop(1)

	fieldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Width(22)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			MarginTop(1)

	statusBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(0, 2).
			Bold(true)
)

// labelColor returns the color of a classification label.
func labelColor(p model.Prediction) lipgloss.Color {
	switch p {
	case model.PredictionNotReliable:
		return lipgloss.Color("9")
	case model.PredictionSuspicious:
		return lipgloss.Color("11")
	case model.PredictionReliable:
		return lipgloss.Color("10")
	default:
		return lipgloss.Color("8")
	}
}

// statusColor returns the color of the IP score status box.
func statusColor(status string) lipgloss.Color {
	if status == model.StatusDanger {
		return lipgloss.Color("9")
	}
	return lipgloss.Color("10")
}
