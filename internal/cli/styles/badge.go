package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/scriptlets/internal/filtering/dialect"
)

// AccentBadge renders a badge with accent color.
func (t *Theme) AccentBadge(text string) string {
	return t.Badge.Render(text)
}

// MutedBadge renders a badge with muted colors.
func (t *Theme) MutedBadge(text string) string {
	return t.BadgeMuted.Render(text)
}

// StatusBadge renders a status badge with custom colors.
func (t *Theme) StatusBadge(text string, fg, bg lipgloss.Color) string {
	style := lipgloss.NewStyle().
		Foreground(fg).
		Background(bg).
		Padding(0, 1)
	return style.Render(text)
}

// DialectBadge renders the dialect of a rule. Recognized dialects use the
// accent color, comments are muted and unknown rules are flagged.
func (t *Theme) DialectBadge(tag dialect.Tag) string {
	switch tag {
	case dialect.Canonical, dialect.UBO, dialect.ABP:
		return t.AccentBadge(tag.String())
	case dialect.Comment:
		return t.MutedBadge(tag.String())
	default:
		return t.StatusBadge(tag.String(), t.Background, t.Warning)
	}
}
