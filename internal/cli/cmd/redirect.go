package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	redirectOutput   string
	redirectShowType bool
)

var redirectCmd = &cobra.Command{
	Use:   "redirect <name>",
	Short: "Print the stand-in payload served for a redirect",
	Long: `Write the payload of a redirect resource. Any dialect name resolves,
so noopjs, noop.js and blank-js print the same payload. Binary payloads are
decoded before writing.

Examples:
  scriptlets redirect noopjs
  scriptlets redirect 1x1.gif --output pixel.gif
  scriptlets redirect google-analytics --content-type`,
	Args: cobra.ExactArgs(1),
	RunE: runRedirect,
}

func init() {
	rootCmd.AddCommand(redirectCmd)
	redirectCmd.Flags().StringVarP(&redirectOutput, "output", "o", "", "write the payload to a file instead of stdout")
	redirectCmd.Flags().BoolVar(&redirectShowType, "content-type", false, "print the content type instead of the payload")
}

func runRedirect(cmd *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	res, ok := app.Engine.RedirectResource(args[0])
	if !ok {
		return fmt.Errorf("%q is not a redirect with a payload", args[0])
	}

	if redirectShowType {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), res.ContentType)
		return err
	}
	if redirectOutput != "" {
		if err := os.WriteFile(redirectOutput, res.Data, outputPerm); err != nil {
			return fmt.Errorf("write payload: %w", err)
		}
		return nil
	}
	_, err := cmd.OutOrStdout().Write(res.Data)
	return err
}
