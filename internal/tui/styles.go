package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Static styles for content elements
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true)

	HandInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ActionsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

// tilePalette gives each card type a stable colour. Types beyond the palette
// wrap around.
var tilePalette = []lipgloss.Color{
	"#FF6B6B", "#4ECDC4", "#FFD93D", "#6C5CE7", "#A8E6CF", "#FF8B94",
	"#F4A261", "#2A9D8F", "#E76F51", "#8ECAE6", "#B5838D", "#90BE6D",
	"#F9C74F", "#577590", "#F3722C", "#43AA8B", "#C77DFF", "#FFB4A2",
}

// tileStyle returns the style for a card type.
func tileStyle(cardType int) lipgloss.Style {
	c := tilePalette[(cardType-1+len(tilePalette))%len(tilePalette)]
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}

// renderTile draws a card type as a bracketed, coloured label.
func renderTile(cardType int) string {
	return tileStyle(cardType).Render(fmt.Sprintf("[%2d]", cardType))
}
