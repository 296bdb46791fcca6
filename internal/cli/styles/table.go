package styles

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/scriptlets/internal/filtering/catalog"
)

// NewStyledTable creates a themed table model.
func NewStyledTable(theme *Theme, columns []table.Column, rows []table.Row, width, height int) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
		table.WithWidth(width),
	)
	t.SetStyles(tableStyles(theme))
	return t
}

// RenderTable renders rows once for non-interactive output. No row is
// highlighted.
func RenderTable(theme *Theme, columns []table.Column, rows []table.Row) string {
	width := 0
	for _, c := range columns {
		width += c.Width + 2
	}
	// Height counts the two header lines.
	t := NewStyledTable(theme, columns, rows, width, len(rows)+3)
	t.Blur()

	s := tableStyles(theme)
	s.Selected = lipgloss.NewStyle()
	t.SetStyles(s)
	return strings.TrimRight(t.View(), "\n")
}

func tableStyles(theme *Theme) table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Foreground(theme.Accent).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(theme.Text).
		Background(theme.SurfaceVariant).
		Bold(true)
	s.Cell = s.Cell.
		Foreground(theme.Text)
	return s
}

// ScriptletTableColumns returns columns for the scriptlet catalog table.
func ScriptletTableColumns() []table.Column {
	return []table.Column{
		{Title: "Name", Width: 36},
		{Title: "Aliases", Width: 6},
		{Title: "Deps", Width: 5},
		{Title: "uBO", Width: 28},
		{Title: "ABP", Width: 24},
	}
}

// RedirectTableColumns returns columns for the redirect catalog table.
func RedirectTableColumns() []table.Column {
	return []table.Column{
		{Title: "Name", Width: 32},
		{Title: "uBO", Width: 32},
		{Title: "ABP", Width: 18},
		{Title: "Types", Width: 18},
		{Title: "Content-Type", Width: 24},
	}
}

// CompatTableColumns returns columns for a compatibility table.
func CompatTableColumns() []table.Column {
	return []table.Column{
		{Title: "Canonical", Width: 36},
		{Title: "uBO", Width: 32},
		{Title: "ABP", Width: 24},
	}
}

// ScriptletRows converts scriptlets to table rows.
func ScriptletRows(scriptlets []catalog.Scriptlet) []table.Row {
	rows := make([]table.Row, len(scriptlets))
	for i := range scriptlets {
		s := &scriptlets[i]
		ubo, _ := s.UBOAlias()
		abp, _ := s.ABPAlias()
		rows[i] = table.Row{
			s.Name,
			strconv.Itoa(len(s.Aliases)),
			strconv.Itoa(len(s.Dependencies)),
			orDash(ubo),
			orDash(abp),
		}
	}
	return rows
}

// RedirectRows converts redirects to table rows.
func RedirectRows(redirects []catalog.Redirect) []table.Row {
	rows := make([]table.Row, len(redirects))
	for i, rd := range redirects {
		rows[i] = table.Row{
			rd.Name,
			orDash(rd.UBO),
			orDash(rd.ABP),
			orDash(strings.Join(rd.RequiredTypes, ",")),
			orDash(rd.ContentType),
		}
	}
	return rows
}

// CompatRows converts compatibility triples to table rows.
func CompatRows(triples []catalog.CompatibilityTriple) []table.Row {
	rows := make([]table.Row, len(triples))
	for i, c := range triples {
		rows[i] = table.Row{c.Canonical, orDash(c.UBO), orDash(c.ABP)}
	}
	return rows
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
