package cmd

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/bnema/scriptlets/internal/cli/model"
	"github.com/bnema/scriptlets/internal/cli/styles"
	"github.com/bnema/scriptlets/internal/filtering"
	"github.com/bnema/scriptlets/internal/filtering/catalog"
)

var (
	catalogFormat string
	catalogKind   string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the built-in scriptlets and redirects",
	Long: `List the scriptlet and redirect catalog.

Examples:
  scriptlets catalog
  scriptlets catalog --kind redirects -o yaml
  scriptlets catalog compat
  scriptlets catalog show ubo-nostif.js
  scriptlets catalog search settimeout
  scriptlets catalog browse`,
	RunE: runCatalog,
}

var catalogCompatCmd = &cobra.Command{
	Use:   "compat",
	Short: "Show the canonical/uBO/ABP name compatibility tables",
	RunE:  runCatalogCompat,
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one scriptlet or redirect by any of its names",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogShow,
}

var catalogSearchLimit int

var catalogSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy search scriptlet and redirect names and aliases",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogSearch,
}

var catalogBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the catalog interactively",
	RunE:  runCatalogBrowse,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogCompatCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
	catalogCmd.AddCommand(catalogBrowseCmd)

	catalogCmd.PersistentFlags().StringVarP(&catalogFormat, "output", "o", formatText, "output format: text, yaml, json")
	catalogCmd.Flags().StringVar(&catalogKind, "kind", "all", "entries to list: scriptlets, redirects, all")
	catalogCompatCmd.Flags().StringVar(&catalogKind, "kind", "all", "tables to show: scriptlets, redirects, all")
	catalogSearchCmd.Flags().IntVarP(&catalogSearchLimit, "limit", "n", 10, "maximum results, 0 for all")
}

type scriptletView struct {
	Name         string   `json:"name" yaml:"name"`
	Func         string   `json:"func" yaml:"func"`
	Aliases      []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

type redirectView struct {
	Name        string   `json:"name" yaml:"name"`
	UBO         string   `json:"ubo,omitempty" yaml:"ubo,omitempty"`
	ABP         string   `json:"abp,omitempty" yaml:"abp,omitempty"`
	Aliases     []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Types       []string `json:"types,omitempty" yaml:"types,omitempty"`
	ContentType string   `json:"content_type,omitempty" yaml:"content_type,omitempty"`
}

type catalogView struct {
	Scriptlets []scriptletView `json:"scriptlets,omitempty" yaml:"scriptlets,omitempty"`
	Redirects  []redirectView  `json:"redirects,omitempty" yaml:"redirects,omitempty"`
}

type compatView struct {
	Scriptlets []catalog.CompatibilityTriple `json:"scriptlets,omitempty" yaml:"scriptlets,omitempty"`
	Redirects  []catalog.CompatibilityTriple `json:"redirects,omitempty" yaml:"redirects,omitempty"`
}

func newScriptletView(s catalog.Scriptlet) scriptletView {
	deps := make([]string, len(s.Dependencies))
	for i, d := range s.Dependencies {
		deps[i] = string(d)
	}
	return scriptletView{Name: s.Name, Func: s.Func, Aliases: s.Aliases, Dependencies: deps}
}

func newRedirectView(rd catalog.Redirect) redirectView {
	return redirectView{
		Name:        rd.Name,
		UBO:         rd.UBO,
		ABP:         rd.ABP,
		Aliases:     rd.Aliases,
		Types:       rd.RequiredTypes,
		ContentType: rd.ContentType,
	}
}

// catalogKinds reports which tables kind selects.
func catalogKinds(kind string) (scriptlets, redirects bool, err error) {
	switch strings.ToLower(kind) {
	case "all", "":
		return true, true, nil
	case "scriptlets", "scriptlet":
		return true, false, nil
	case "redirects", "redirect":
		return false, true, nil
	default:
		return false, false, fmt.Errorf("unknown kind %q (use: scriptlets, redirects, all)", kind)
	}
}

func runCatalog(cmd *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}
	if err := checkFormat(catalogFormat); err != nil {
		return err
	}
	withScriptlets, withRedirects, err := catalogKinds(catalogKind)
	if err != nil {
		return err
	}

	registry := app.Engine.Registry()
	out := cmd.OutOrStdout()

	if catalogFormat != formatText {
		var view catalogView
		if withScriptlets {
			for _, s := range registry.Scriptlets() {
				view.Scriptlets = append(view.Scriptlets, newScriptletView(s))
			}
		}
		if withRedirects {
			for _, rd := range registry.Redirects() {
				view.Redirects = append(view.Redirects, newRedirectView(rd))
			}
		}
		return writeStructured(out, catalogFormat, view)
	}

	t := app.Theme
	if withScriptlets {
		scriptlets := registry.Scriptlets()
		fmt.Fprintln(out, t.Title.Render(fmt.Sprintf("Scriptlets (%d)", len(scriptlets))))
		fmt.Fprintln(out, styles.RenderTable(t, styles.ScriptletTableColumns(), styles.ScriptletRows(scriptlets)))
	}
	if withRedirects {
		if withScriptlets {
			fmt.Fprintln(out)
		}
		redirects := registry.Redirects()
		fmt.Fprintln(out, t.Title.Render(fmt.Sprintf("Redirects (%d)", len(redirects))))
		fmt.Fprintln(out, styles.RenderTable(t, styles.RedirectTableColumns(), styles.RedirectRows(redirects)))
	}
	return nil
}

func runCatalogCompat(cmd *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}
	if err := checkFormat(catalogFormat); err != nil {
		return err
	}
	withScriptlets, withRedirects, err := catalogKinds(catalogKind)
	if err != nil {
		return err
	}

	registry := app.Engine.Registry()
	var view compatView
	if withScriptlets {
		view.Scriptlets = registry.ScriptletCompatibility()
	}
	if withRedirects {
		view.Redirects = registry.RedirectCompatibility()
	}

	out := cmd.OutOrStdout()
	if catalogFormat != formatText {
		return writeStructured(out, catalogFormat, view)
	}

	t := app.Theme
	if withScriptlets {
		fmt.Fprintln(out, t.Title.Render("Scriptlet compatibility"))
		fmt.Fprintln(out, styles.RenderTable(t, styles.CompatTableColumns(), styles.CompatRows(view.Scriptlets)))
	}
	if withRedirects {
		if withScriptlets {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, t.Title.Render("Redirect compatibility"))
		fmt.Fprintln(out, styles.RenderTable(t, styles.CompatTableColumns(), styles.CompatRows(view.Redirects)))
	}
	return nil
}

func runCatalogShow(cmd *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}
	if err := checkFormat(catalogFormat); err != nil {
		return err
	}

	entry, ok := app.Engine.FindCatalogEntry(args[0])
	if !ok {
		return fmt.Errorf("%q is not a known scriptlet or redirect", args[0])
	}

	var v any
	if entry.Kind == filtering.EntryRedirect {
		v = newRedirectView(*entry.Redirect)
	} else {
		v = newScriptletView(*entry.Scriptlet)
	}

	out := cmd.OutOrStdout()
	if catalogFormat != formatText {
		return writeStructured(out, catalogFormat, v)
	}

	t := app.Theme
	fmt.Fprintf(out, "%s %s\n", t.AccentBadge(entry.Kind.String()), t.Highlight.Render(entry.Name()))
	return writeStructured(out, formatYAML, v)
}

type searchView struct {
	Kind    string `json:"kind" yaml:"kind"`
	Name    string `json:"name" yaml:"name"`
	Matched string `json:"matched" yaml:"matched"`
}

func runCatalogSearch(cmd *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}
	if err := checkFormat(catalogFormat); err != nil {
		return err
	}

	results := app.Engine.SearchCatalog(args[0], catalogSearchLimit)
	views := make([]searchView, len(results))
	for i, r := range results {
		views[i] = searchView{Kind: r.Entry.Kind.String(), Name: r.Entry.Name(), Matched: r.Matched}
	}

	out := cmd.OutOrStdout()
	if catalogFormat != formatText {
		return writeStructured(out, catalogFormat, views)
	}

	t := app.Theme
	if len(views) == 0 {
		fmt.Fprintln(out, t.Subtle.Render("No matches"))
		return nil
	}
	for _, v := range views {
		line := fmt.Sprintf("%s %s", t.MutedBadge(v.Kind), t.Highlight.Render(v.Name))
		if v.Matched != v.Name {
			line += " " + t.Subtle.Render("("+v.Matched+")")
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

func runCatalogBrowse(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	m := model.NewCatalogModel(app.Theme, app.Engine.Registry())
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run catalog browser: %w", err)
	}
	return nil
}
