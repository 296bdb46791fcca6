package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/scriptlets/internal/cli"
	"github.com/bnema/scriptlets/internal/cli/styles"
	"github.com/bnema/scriptlets/internal/filtering"
	"github.com/bnema/scriptlets/internal/filtering/dialect"
	"github.com/bnema/scriptlets/internal/logging"
)

const outputPerm = 0o644

var (
	convertTo      string
	convertFile    string
	convertOutput  string
	convertStrict  bool
	convertNoCache bool
	convertURLs    []string
)

var convertCmd = &cobra.Command{
	Use:   "convert [rule...]",
	Short: "Convert rules to canonical or uBlock Origin syntax",
	Long: `Convert scriptlet and redirect rules between dialects.

Single rules are converted and shown next to their input. With --file a whole
filter list is compiled: convertible lines are rewritten, everything else is
kept as is, and lines that cannot be converted are dropped and reported.
Compiled lists are cached under compiler.cache_dir.

Examples:
  scriptlets convert 'example.org##+js(aopr, foo)'
  scriptlets convert --to ubo 'example.org#%#//scriptlet("set-constant", "a", "1")'
  scriptlets convert --file list.txt --to ubo --output list.ubo.txt
  cat list.txt | scriptlets convert --file -
  scriptlets convert --url https://example.org/list.txt --to ubo`,
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVarP(&convertTo, "to", "t", "canonical", "target dialect: canonical, ubo")
	convertCmd.Flags().StringVarP(&convertFile, "file", "f", "", "filter list to compile ('-' reads stdin)")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "write the compiled list to a file instead of stdout")
	convertCmd.Flags().BoolVar(&convertStrict, "strict", false, "fail on the first line that cannot be converted")
	convertCmd.Flags().BoolVar(&convertNoCache, "no-cache", false, "ignore and do not update the compiled list cache")
	convertCmd.Flags().StringSliceVarP(&convertURLs, "url", "u", nil, "download and compile filter lists, merged in order")
	convertCmd.MarkFlagsMutuallyExclusive("file", "url")
}

func runConvert(cmd *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	target, err := cli.ParseTarget(convertTo)
	if err != nil {
		return err
	}

	switch {
	case convertFile != "":
		data, err := readListSource(cmd, convertFile)
		if err != nil {
			return err
		}
		return convertList(cmd, app, target, convertFile, data)
	case len(convertURLs) > 0:
		data, err := fetchLists(app, convertURLs)
		if err != nil {
			return err
		}
		return convertList(cmd, app, target, strings.Join(convertURLs, ","), data)
	}

	rules, err := readRules(cmd, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	renderer := styles.NewRuleRenderer(app.Theme)
	failed := 0
	for _, rule := range rules {
		converted, err := convertRule(app.Engine, rule, target)
		if err != nil {
			failed++
			fmt.Fprintln(cmd.ErrOrStderr(), renderer.RenderError(err))
			continue
		}
		fmt.Fprintln(out, renderer.RenderConversion(rule, converted))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d rules could not be converted", failed, len(rules))
	}
	return nil
}

// convertRule converts one rule to target. uBO output goes through the
// canonical form so every source dialect is accepted.
func convertRule(engine *filtering.Engine, rule string, target dialect.Tag) ([]string, error) {
	canonical, err := engine.ConvertToCanonical(rule)
	if err != nil || target == dialect.Canonical {
		return canonical, err
	}

	out := make([]string, 0, len(canonical))
	for _, c := range canonical {
		ubo, err := engine.ConvertCanonicalToDialectB(c)
		if err != nil {
			return nil, err
		}
		out = append(out, ubo)
	}
	return out, nil
}

func convertList(cmd *cobra.Command, app *cli.App, target dialect.Tag, source string, data []byte) error {
	ctx := logging.WithSource(app.Ctx(), source)
	log := logging.FromContext(ctx)
	strict := convertStrict || app.Config.Compiler.Strict

	var (
		store *filtering.FileListStore
		err   error
	)
	if !convertNoCache {
		if store, err = app.ListStore(); err != nil {
			log.Warn().Err(err).Msg("compiled list cache unavailable")
			store = nil
		}
	}

	key := filtering.CacheKey(target, data)
	var (
		list   *filtering.CompiledList
		cached bool
	)
	if store != nil {
		list, err = store.Load(key)
		switch {
		case err == nil:
			cached = true
		case errors.Is(err, filtering.ErrCacheCorrupted):
			log.Warn().Err(err).Str("key", key).Msg("dropping corrupted cache entry")
			if err := store.Invalidate(key); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("failed to invalidate cache entry")
			}
		case !errors.Is(err, filtering.ErrCacheMiss):
			log.Warn().Err(err).Str("key", key).Msg("failed to read cache entry")
		}
	}

	if list == nil {
		compiler, err := app.ListCompiler(target, strict)
		if err != nil {
			return err
		}
		if list, err = compiler.Compile(ctx, bytes.NewReader(data)); err != nil {
			return err
		}
		if store != nil {
			if err := store.Save(key, list); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("failed to cache compiled list")
			}
		}
	}

	// A cached list was compiled leniently; strict mode still rejects it.
	if strict && len(list.Errors) > 0 {
		return fmt.Errorf("%w: %w", filtering.ErrCompileAborted, list.Errors[0])
	}

	if err := writeOutput(cmd, convertOutput, list.String()); err != nil {
		return err
	}

	renderer := styles.NewRuleRenderer(app.Theme)
	fmt.Fprintln(cmd.ErrOrStderr(), renderer.RenderCompileSummary(list, cached))
	return nil
}

// fetchLists downloads urls and joins them into one list.
func fetchLists(app *cli.App, urls []string) ([]byte, error) {
	bodies, err := filtering.NewListFetcher(nil).FetchAll(app.Ctx(), urls)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	for _, body := range bodies {
		buf.Write(body)
		if len(body) > 0 && body[len(body)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes(), nil
}

func readListSource(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read filter list: %w", err)
	}
	return data, nil
}

func writeOutput(cmd *cobra.Command, path, content string) error {
	if path == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), content)
		return err
	}
	if err := os.WriteFile(path, []byte(content), outputPerm); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
