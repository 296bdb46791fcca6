package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/scriptlets/internal/filtering"
	"github.com/bnema/scriptlets/internal/filtering/dialect"
)

// maxListedErrors bounds how many failing lines a compile summary prints.
const maxListedErrors = 20

// RuleRenderer renders rule classification, validation and conversion
// results.
type RuleRenderer struct {
	theme *Theme
}

// NewRuleRenderer creates a new rule renderer with the given theme.
func NewRuleRenderer(theme *Theme) *RuleRenderer {
	return &RuleRenderer{theme: theme}
}

// RenderClassification renders the dialect of rule.
func (r *RuleRenderer) RenderClassification(rule string, tag dialect.Tag, exception bool) string {
	badges := r.theme.DialectBadge(tag)
	if exception {
		badges += " " + r.theme.MutedBadge("exception")
	}
	return fmt.Sprintf("%s %s", badges, r.theme.Normal.Render(rule))
}

// RenderValidation renders whether rule is valid. kind names the check that
// accepted the rule and is ignored for invalid rules.
func (r *RuleRenderer) RenderValidation(rule string, valid bool, kind string) string {
	if !valid {
		return fmt.Sprintf("%s %s %s",
			r.theme.ErrorStyle.Render(IconX),
			r.theme.Normal.Render(rule),
			r.theme.Subtle.Render("(invalid)"),
		)
	}
	return fmt.Sprintf("%s %s %s",
		r.theme.SuccessStyle.Render(IconCheck),
		r.theme.Normal.Render(rule),
		r.theme.Subtle.Render("("+kind+")"),
	)
}

// RenderConversion renders a rule and the rules it converted to.
func (r *RuleRenderer) RenderConversion(input string, outputs []string) string {
	arrow := lipgloss.NewStyle().Foreground(r.theme.Accent).Render(IconArrow)

	var sb strings.Builder
	sb.WriteString(r.theme.Subtle.Render(input))
	sb.WriteString("\n")
	for _, out := range outputs {
		sb.WriteString(fmt.Sprintf("  %s %s\n", arrow, r.theme.Normal.Render(out)))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// RenderCompileSummary renders the statistics of a compiled list followed by
// the first failing lines.
func (r *RuleRenderer) RenderCompileSummary(list *filtering.CompiledList, cached bool) string {
	st := list.Stats
	header := lipgloss.JoinHorizontal(
		lipgloss.Top,
		r.theme.AccentBadge(list.Target),
		" ",
		r.theme.MutedBadge(fmt.Sprintf("%d lines", st.Lines)),
		" ",
		r.theme.MutedBadge(fmt.Sprintf("%d converted", st.Converted)),
		" ",
		r.theme.MutedBadge(fmt.Sprintf("%d kept", st.PassedThrough)),
	)
	if list.SourceVersion != "" {
		header += " " + r.theme.MutedBadge("v"+list.SourceVersion)
	}
	if st.Failed > 0 {
		header += " " + r.theme.StatusBadge(fmt.Sprintf("%d failed", st.Failed), r.theme.Background, r.theme.Error)
	}
	if cached {
		header += " " + r.theme.StatusBadge(IconCache+" cached", r.theme.Background, r.theme.Warning)
	}

	var sb strings.Builder
	sb.WriteString(header)
	for i, le := range list.Errors {
		if i == maxListedErrors {
			sb.WriteString(r.theme.Subtle.Render(fmt.Sprintf("\n  ... %d more", len(list.Errors)-maxListedErrors)))
			break
		}
		sb.WriteString(fmt.Sprintf("\n  %s %s %s",
			r.theme.WarningStyle.Render(fmt.Sprintf("%5d", le.Line)),
			r.theme.Normal.Render(le.Text),
			r.theme.Subtle.Render(le.Reason),
		))
	}
	return sb.String()
}

// RenderError renders err with an error icon.
func (r *RuleRenderer) RenderError(err error) string {
	return fmt.Sprintf("%s %v", r.theme.ErrorStyle.Render(IconX), err)
}
