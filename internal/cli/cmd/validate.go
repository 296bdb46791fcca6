package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/scriptlets/internal/cli/styles"
	"github.com/bnema/scriptlets/internal/filtering"
)

var validateQuiet bool

// errInvalidRules signals a non-zero exit after every rule was reported.
var errInvalidRules = errors.New("invalid rules found")

var validateCmd = &cobra.Command{
	Use:   "validate [rule...]",
	Short: "Check scriptlet and redirect rules against the catalog",
	Long: `Validate each rule: scriptlet rules must name known scriptlets once
converted to canonical form, redirect rules must name a known resource.
Exits non-zero when any rule is invalid. Rules are read from stdin when none
are given.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVarP(&validateQuiet, "quiet", "q", false, "only print invalid rules")
}

// validateRule reports whether rule is valid and which check accepted it.
func validateRule(engine *filtering.Engine, rule string) (bool, string) {
	switch {
	case engine.IsValidRule(rule):
		return true, "scriptlet"
	case engine.IsValidRedirectRule(rule):
		return true, "redirect"
	default:
		return false, ""
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	rules, err := readRules(cmd, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	renderer := styles.NewRuleRenderer(app.Theme)
	invalid := 0
	for _, rule := range rules {
		ok, kind := validateRule(app.Engine, rule)
		if !ok {
			invalid++
		}
		if ok && validateQuiet {
			continue
		}
		fmt.Fprintln(out, renderer.RenderValidation(rule, ok, kind))
	}

	if invalid > 0 {
		return fmt.Errorf("%w: %d of %d", errInvalidRules, invalid, len(rules))
	}
	return nil
}
