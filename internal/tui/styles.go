package tui

import "github.com/charmbracelet/lipgloss"

// Palette shared by every page.
var (
	ColorNavy   = lipgloss.Color("#1E2A47")
	ColorWhite  = lipgloss.Color("#F5F5F5")
	ColorGray   = lipgloss.Color("#7A7F8C")
	ColorBlue   = lipgloss.Color("#4DA3FF")
	ColorRed    = lipgloss.Color("#E5534B")
	ColorGreen  = lipgloss.Color("#3FB950")
	ColorOrange = lipgloss.Color("#F0883E")

	// ColorBackground is what faded alert boxes blend toward.
	ColorBackground = lipgloss.Color("#101418")
)

var (
	titleStyle = lipgloss.NewStyle().
			Background(ColorNavy).
			Foreground(ColorWhite).
			Bold(true).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().Foreground(ColorGray)

	statusStyle = lipgloss.NewStyle().
			Background(ColorNavy).
			Foreground(ColorWhite)
)

// categoryColor returns the accent colour for an alert category.
func categoryColor(name string) lipgloss.Color {
	switch name {
	case "error":
		return ColorRed
	case "success":
		return ColorGreen
	default:
		return ColorWhite
	}
}
