package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cifra/internal/ui/theme"
)

const bannerArt = `
 ██  ██   ██   ██   █████   ██████    █████
 ██  ██   ██  ███  ██ █ ██  ██   ██  ██   ██
 ██  ██   ██ █ ██   █████   ██████   ███████
 ███████  ███  ██     █     ██       ██   ██
      ██  ██   ██     █     ██       ██   ██`

const bannerCompact = "Ц И Ф Р А"

// RenderBanner returns the app banner in the primary color, or a one-line
// version for terminals narrower than 48 columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 48 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
