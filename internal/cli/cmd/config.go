package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/scriptlets/internal/cli/styles"
	"github.com/bnema/scriptlets/internal/config"
)

var (
	configFormat       string
	configSchemaOutput string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
	Long:  `Show the effective configuration or export its JSON schema.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the config file in use and the effective settings",
	RunE:  runConfigShow,
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the config file",
	Long: `Print the JSON schema describing config.toml. Editors with schema
support can use it for completion and validation.`,
	RunE: runConfigSchema,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSchemaCmd)
	configShowCmd.Flags().StringVarP(&configFormat, "output", "o", formatYAML, "output format: yaml, json")
	configSchemaCmd.Flags().StringVar(&configSchemaOutput, "output", "", "write the schema to a file instead of stdout")
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	renderer := styles.NewConfigRenderer(app.Theme)
	path := app.ConfigFile
	exists := path != ""
	if !exists {
		var err error
		if path, err = config.GetConfigFile(); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), renderer.RenderError(err))
			return nil
		}
	}
	fmt.Fprintln(cmd.ErrOrStderr(), renderer.RenderConfigInfo(path, exists))

	return writeStructured(cmd.OutOrStdout(), configFormat, app.Config)
}

func runConfigSchema(cmd *cobra.Command, _ []string) error {
	if configSchemaOutput != "" {
		if err := config.WriteSchemaFile(configSchemaOutput); err != nil {
			return err
		}
		renderer := styles.NewConfigRenderer(styles.NewTheme())
		fmt.Fprintln(cmd.ErrOrStderr(), renderer.RenderSchemaWritten(configSchemaOutput))
		return nil
	}

	data, err := config.GenerateSchema()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
