package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	header     lipgloss.Style
	user       lipgloss.Style
	userBody   lipgloss.Style
	ai         lipgloss.Style
	aiBody     lipgloss.Style
	status     lipgloss.Style
	statusBar  lipgloss.Style
	stateOK    lipgloss.Style
	stateWait  lipgloss.Style
	stateDown  lipgloss.Style
	inputFrame lipgloss.Style
	help       lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#F9FAFB"}).
			Background(lipgloss.AdaptiveColor{Light: "#DBEAFE", Dark: "#1E3A8A"}).
			Padding(0, 1),
		user: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}),
		userBody: lipgloss.NewStyle(),
		ai: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}),
		aiBody: lipgloss.NewStyle(),
		status: lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}),
		statusBar: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#374151", Dark: "#D1D5DB"}).
			Padding(0, 1),
		stateOK:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		stateWait: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		stateDown: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		inputFrame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#4B5563"}).
			Padding(0, 1),
		help: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6B7280"}),
	}
}
