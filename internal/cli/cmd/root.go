// Package cmd provides Cobra CLI commands for scriptlets.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/scriptlets/internal/cli"
)

var (
	app        *cli.App
	configFile string
	version    = "dev"
	rootCmd    = &cobra.Command{
		Use:   "scriptlets",
		Short: "Convert, validate and package scriptlet and redirect filter rules",
		Long: `Scriptlets - interoperability between ad-blocker scriptlet dialects.

Reads scriptlet and redirect rules written for AdGuard (canonical),
uBlock Origin or Adblock Plus, and:
  - classifies and validates them against the built-in catalog
  - converts them to canonical or uBlock Origin syntax, one rule or a whole list
  - packages a scriptlet invocation as ready-to-inject JavaScript
  - serves the stand-in payload behind a redirect name`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip initialization for commands that don't need app context
			switch cmd.Name() {
			case "help", "completion", "gen-docs", "schema":
				return nil
			}

			var err error
			app, err = cli.NewApp(configFile)
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default $XDG_CONFIG_HOME/scriptlets/config.toml)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GetApp returns the initialized app (for use by subcommands).
func GetApp() *cli.App {
	return app
}

// SetVersion sets the version reported by --version (called from main.go
// before Execute).
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
