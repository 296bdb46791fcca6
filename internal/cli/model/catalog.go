// Package model holds the Bubble Tea models behind interactive commands.
package model

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/scriptlets/internal/cli/styles"
	"github.com/bnema/scriptlets/internal/filtering/catalog"
)

// CatalogTab selects which catalog table is shown.
type CatalogTab int

const (
	TabScriptlets CatalogTab = iota
	TabRedirects
)

// CatalogModel browses the scriptlet and redirect catalog.
type CatalogModel struct {
	scriptlets []catalog.Scriptlet
	redirects  []catalog.Redirect

	tab         CatalogTab
	table       table.Model
	showDetails bool
	width       int
	height      int

	keys  styles.CatalogKeyMap
	help  help.Model
	theme *styles.Theme
}

// NewCatalogModel creates a catalog browser over registry.
func NewCatalogModel(theme *styles.Theme, registry *catalog.Registry) CatalogModel {
	m := CatalogModel{
		scriptlets: registry.Scriptlets(),
		redirects:  registry.Redirects(),
		keys:       styles.DefaultCatalogKeyMap(),
		help:       styles.NewStyledHelp(theme),
		theme:      theme,
		width:      120,
		height:     30,
	}
	m.updateTable()
	return m
}

// Init implements tea.Model.
func (m CatalogModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m CatalogModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.updateTable()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			if m.showDetails && msg.String() == "esc" {
				m.showDetails = false
				return m, nil
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.NextTab):
			m.tab = (m.tab + 1) % 2
			m.showDetails = false
			m.updateTable()
		case key.Matches(msg, m.keys.Details):
			m.showDetails = !m.showDetails
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		default:
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

// updateTable rebuilds the table for the active tab.
func (m *CatalogModel) updateTable() {
	var (
		columns []table.Column
		rows    []table.Row
	)
	if m.tab == TabRedirects {
		columns = styles.RedirectTableColumns()
		rows = styles.RedirectRows(m.redirects)
	} else {
		columns = styles.ScriptletTableColumns()
		rows = styles.ScriptletRows(m.scriptlets)
	}

	tableHeight := m.height - 12
	if tableHeight < 3 {
		tableHeight = 3
	}
	m.table = styles.NewStyledTable(m.theme, columns, rows, m.width-4, tableHeight)
}

// Selected returns the name of the highlighted entry.
func (m CatalogModel) Selected() string {
	row := m.table.SelectedRow()
	if len(row) == 0 {
		return ""
	}
	return row[0]
}

// View implements tea.Model.
func (m CatalogModel) View() string {
	t := m.theme

	scriptletTab := t.MutedBadge(fmt.Sprintf("%d scriptlets", len(m.scriptlets)))
	redirectTab := t.MutedBadge(fmt.Sprintf("%d redirects", len(m.redirects)))
	if m.tab == TabRedirects {
		redirectTab = t.AccentBadge(fmt.Sprintf("%d redirects", len(m.redirects)))
	} else {
		scriptletTab = t.AccentBadge(fmt.Sprintf("%d scriptlets", len(m.scriptlets)))
	}

	header := lipgloss.JoinVertical(
		lipgloss.Left,
		t.Title.Render("Scriptlet Catalog"),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, scriptletTab, " ", redirectTab),
	)

	content := lipgloss.JoinVertical(lipgloss.Left, header, "", m.table.View())
	if m.showDetails {
		content = lipgloss.JoinVertical(lipgloss.Left, content, "", m.renderDetails())
	}
	return lipgloss.JoinVertical(lipgloss.Left, content, "", m.help.View(m.keys))
}

// renderDetails renders the aliases and metadata of the selected entry.
func (m CatalogModel) renderDetails() string {
	t := m.theme
	cursor := m.table.Cursor()

	var lines []string
	if m.tab == TabRedirects {
		if cursor < 0 || cursor >= len(m.redirects) {
			return ""
		}
		rd := m.redirects[cursor]
		lines = append(lines,
			t.Highlight.Render(rd.Name),
			detailLine(t, "aliases", strings.Join(rd.Aliases, ", ")),
			detailLine(t, "types", strings.Join(rd.RequiredTypes, ", ")),
			detailLine(t, "content-type", rd.ContentType),
		)
	} else {
		if cursor < 0 || cursor >= len(m.scriptlets) {
			return ""
		}
		s := m.scriptlets[cursor]
		deps := make([]string, len(s.Dependencies))
		for i, d := range s.Dependencies {
			deps[i] = string(d)
		}
		lines = append(lines,
			t.Highlight.Render(s.Name),
			detailLine(t, "function", s.Func),
			detailLine(t, "aliases", strings.Join(s.Aliases, ", ")),
			detailLine(t, "dependencies", strings.Join(deps, ", ")),
		)
	}
	return t.Box.Width(m.width - 4).Render(strings.Join(lines, "\n"))
}

func detailLine(t *styles.Theme, label, value string) string {
	if value == "" {
		value = "-"
	}
	return t.Subtle.Render(label+": ") + t.Normal.Render(value)
}

// Ensure interface compliance.
var _ tea.Model = (*CatalogModel)(nil)
