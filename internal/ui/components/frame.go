package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cifra/internal/ui/theme"
)

// ContentWidth is the inner width cards are drawn at so they line up.
func ContentWidth(frameWidth int) int {
	return min(max(frameWidth-6, 20), 72)
}

// Centered places content in the middle of a width x height area.
func Centered(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// Card wraps content in a rounded border at content width cw.
func Card(content string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw-2).
		Padding(0, 2).
		Render(content)
}

// Heading renders a screen heading with an optional subtitle.
func Heading(title, subtitle string, cw int) string {
	h := theme.Title.Width(cw).Render(title)
	if subtitle != "" {
		h += "\n" + theme.Subtitle.Width(cw).Render(subtitle)
	}
	return h
}
