package styles

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// ConfigRenderer renders config status messages with styled output.
type ConfigRenderer struct {
	theme *Theme
}

// NewConfigRenderer creates a new config renderer with the given theme.
func NewConfigRenderer(theme *Theme) *ConfigRenderer {
	return &ConfigRenderer{theme: theme}
}

// RenderConfigInfo renders the config file path and whether it exists.
func (r *ConfigRenderer) RenderConfigInfo(path string, exists bool) string {
	iconStyle := lipgloss.NewStyle().Foreground(r.theme.Accent)
	status := r.theme.SuccessStyle.Render("loaded")
	if !exists {
		status = r.theme.WarningStyle.Render("not found, using defaults")
	}
	return fmt.Sprintf("%s Config %s %s",
		iconStyle.Render(IconInfo),
		r.theme.Subtle.Render(path),
		status,
	)
}

// RenderSchemaWritten renders the success message after writing a schema.
func (r *ConfigRenderer) RenderSchemaWritten(path string) string {
	return fmt.Sprintf("%s Schema written to %s",
		r.theme.SuccessStyle.Render(IconCheck),
		r.theme.Highlight.Render(path),
	)
}

// RenderError renders err with an error icon.
func (r *ConfigRenderer) RenderError(err error) string {
	return fmt.Sprintf("%s %v", r.theme.ErrorStyle.Render(IconX), err)
}
