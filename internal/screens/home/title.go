package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cifra/internal/screens/welcome"
	"github.com/abhisek/cifra/internal/ui/theme"
)

const titleCompact = "Ц · И · Ф · Р · А"

func renderTitle(cw int, compact bool) string {
	box := lipgloss.NewStyle().Width(cw).Align(lipgloss.Center)
	if compact {
		return box.Render(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(titleCompact))
	}
	return box.Render(welcome.RenderBanner(cw))
}
