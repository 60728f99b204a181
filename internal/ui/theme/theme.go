package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Catppuccin Mocha base with the card brand green as accent.
var (
	Base     = lipgloss.Color("#1e1e2e")
	Mantle   = lipgloss.Color("#181825")
	Surface1 = lipgloss.Color("#45475a")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Peach    = lipgloss.Color("#fab387")
	Red      = lipgloss.Color("#f38ba8")
	Brand    = lipgloss.Color("#03b37f")

	Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Surface1).
		Background(Mantle).
		Foreground(Text).
		Padding(1)

	Title = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(Subtext0)
	Hot   = lipgloss.NewStyle().Foreground(Peach).Bold(true)
	Fresh = lipgloss.NewStyle().Foreground(Brand).Bold(true)
	Stale = lipgloss.NewStyle().Foreground(Red)
)

// Gauge draws percent as a bar of width cells. Values past 100 fill the bar.
func Gauge(percent, width int) string {
	if width <= 0 {
		return ""
	}
	filled := percent * width / 100
	filled = max(0, min(filled, width))
	return Fresh.Render(strings.Repeat("█", filled)) + Muted.Render(strings.Repeat("░", width-filled))
}
