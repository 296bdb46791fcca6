package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/scriptlets/internal/cli/styles"
	"github.com/bnema/scriptlets/internal/filtering/dialect"
)

var classifyJSON bool

var classifyCmd = &cobra.Command{
	Use:   "classify [rule...]",
	Short: "Detect the dialect of scriptlet and redirect rules",
	Long: `Report which dialect each rule is written in: canonical, ubo, abp,
comment or unknown. Rules are read from stdin when none are given.

Examples:
  scriptlets classify 'example.org##+js(aopr, foo)'
  scriptlets classify < filters.txt`,
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "print one JSON object per rule")
}

type classification struct {
	Rule      string `json:"rule"`
	Dialect   string `json:"dialect"`
	Exception bool   `json:"exception"`
}

func runClassify(cmd *cobra.Command, args []string) error {
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
	enc := json.NewEncoder(out)
	for _, rule := range rules {
		tag := app.Engine.ClassifyRule(rule)
		exception := dialect.IsException(rule)
		if classifyJSON {
			if err := enc.Encode(classification{Rule: rule, Dialect: tag.String(), Exception: exception}); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintln(out, renderer.RenderClassification(rule, tag, exception))
	}
	return nil
}
