package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/scriptlets/internal/cli"
	"github.com/bnema/scriptlets/internal/filtering"
	"github.com/bnema/scriptlets/internal/filtering/codegen"
	"github.com/bnema/scriptlets/internal/filtering/dialect"
)

var (
	generateMode   string
	generateVerify bool
	generateDomain string
)

var generateCmd = &cobra.Command{
	Use:   "generate <name|rule> [arg...]",
	Short: "Package a scriptlet invocation as injectable JavaScript",
	Long: `Generate the code that runs a scriptlet.

The first argument is either a scriptlet name (any dialect alias) followed by
its arguments, or a whole scriptlet rule of any dialect. A rule that expands
to several invocations produces one unit per invocation.

Modes:
  extension  self-invoking unit with metadata and arguments baked in
  corelibs   bare function(source, args) for library consumers
  test       parenthesized callable for test harnesses

Examples:
  scriptlets generate set-constant canAds true
  scriptlets generate --mode corelibs 'example.org##+js(nostif, ads)'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&generateMode, "mode", "m", "extension", "packaging mode: extension, corelibs, test")
	generateCmd.Flags().BoolVar(&generateVerify, "verify", false, "parse the generated code before printing it")
	generateCmd.Flags().StringVar(&generateDomain, "domain", "", "domain recorded in the scriptlet metadata")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	mode, ok := codegen.ParseMode(generateMode)
	if !ok {
		return fmt.Errorf("unknown mode %q (use: extension, corelibs, test)", generateMode)
	}

	codes, err := generateCodes(app, args, mode)
	if err != nil {
		return err
	}

	if generateVerify || app.Config.Codegen.Verify {
		for _, code := range codes {
			if err := codegen.Verify(code); err != nil {
				return err
			}
		}
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(codes, "\n\n"))
	return err
}

func generateCodes(app *cli.App, args []string, mode codegen.Mode) ([]string, error) {
	source := codegen.Source{
		Engine:     app.Config.Codegen.Engine,
		Version:    app.Config.Codegen.Version,
		Verbose:    app.Config.Codegen.Verbose,
		DomainName: generateDomain,
	}

	if len(args) == 1 && dialect.Classify(args[0]) != dialect.Unknown {
		return app.Engine.GenerateForRule(args[0], mode, source)
	}

	name, scriptletArgs := args[0], args[1:]
	source.Name = name
	source.Args = scriptletArgs
	code, ok := app.Engine.GenerateInvocationCode(codegen.Request{
		Name:   name,
		Args:   scriptletArgs,
		Mode:   mode,
		Source: source,
	})
	if !ok {
		return nil, fmt.Errorf("%w: %q", filtering.ErrUnknownScriptlet, name)
	}
	return []string{code}, nil
}
