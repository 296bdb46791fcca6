package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/scriptlets/internal/filtering"
)

const mixedList = `! Title: test list
example.org##.banner
example.org##+js(aopr, alert)
||ad.example^$script,redirect=noop.js
||x.example^$redirect=nope
`

type result struct {
	stdout string
	stderr string
	err    error
}

// resetFlags restores flag variables between runs of the shared root command.
func resetFlags() {
	configFile = ""
	classifyJSON = false
	validateQuiet = false
	convertTo, convertFile, convertOutput = "canonical", "", ""
	convertStrict, convertNoCache = false, false
	convertURLs = nil
	generateMode, generateVerify, generateDomain = "extension", false, ""
	catalogFormat, catalogKind, catalogSearchLimit = formatText, "all", 10
	redirectOutput, redirectShowType = "", false
	configFormat, configSchemaOutput = formatYAML, ""
}

// run executes the root command with a config file whose compiled list cache
// lives in cacheDir.
func run(t *testing.T, cacheDir, stdin string, args ...string) result {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	cfg := filepath.Join(t.TempDir(), "config.toml")
	content := fmt.Sprintf("[logging]\nlevel = \"error\"\n\n[compiler]\ncache_dir = %q\n", cacheDir)
	require.NoError(t, os.WriteFile(cfg, []byte(content), 0o600))

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(append([]string{"--config", cfg}, args...))
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)

	err := rootCmd.Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestClassify_JSON(t *testing.T) {
	res := run(t, "", "", "classify", "--json",
		"example.org#@#+js(aopr, alert)",
		"||ads.example^$rewrite=abp-resource:blank-js,script",
	)
	require.NoError(t, res.err)

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 2)

	var first, second classification
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "ubo", first.Dialect)
	assert.True(t, first.Exception)
	assert.Equal(t, "abp", second.Dialect)
	assert.False(t, second.Exception)
}

func TestClassify_ReadsStdin(t *testing.T) {
	res := run(t, "", "! comment\n\nexample.org##.banner\n", "classify")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "comment")
	assert.Contains(t, res.stdout, "unknown")
}

func TestValidate(t *testing.T) {
	res := run(t, "", "", "validate", "example.org##+js(aopr, alert)", "||ad.example^$script,redirect=noop.js")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "(scriptlet)")
	assert.Contains(t, res.stdout, "(redirect)")

	res = run(t, "", "", "validate", "--quiet", "example.org##+js(aopr, alert)", "example.org##+js(not-a-scriptlet)")
	require.Error(t, res.err)
	assert.True(t, errors.Is(res.err, errInvalidRules))
	assert.NotContains(t, res.stdout, "aopr")
	assert.Contains(t, res.stdout, "not-a-scriptlet")
}

func TestConvert_SingleRule(t *testing.T) {
	res := run(t, "", "", "convert", "example.org##+js(aopr.js, alert)")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "example.org#%#//scriptlet('ubo-aopr.js', 'alert')")

	res = run(t, "", "", "convert", "--to", "ubo", "example.org#%#//scriptlet('ubo-aopr.js', 'alert')")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "example.org##+js(aopr, alert)")
}

func TestConvert_RejectsUnsupportedTarget(t *testing.T) {
	res := run(t, "", "", "convert", "--to", "abp", "example.org##+js(aopr, alert)")
	require.Error(t, res.err)
	assert.True(t, errors.Is(res.err, filtering.ErrUnsupportedTarget))
}

func TestConvert_ReportsFailures(t *testing.T) {
	res := run(t, "", "", "convert", "example.org##+js(not-a-scriptlet)")
	require.Error(t, res.err)
	assert.Contains(t, res.stderr, "not-a-scriptlet")
}

func TestConvert_FileUsesCache(t *testing.T) {
	cacheDir := t.TempDir()
	list := filepath.Join(t.TempDir(), "list.txt")
	require.NoError(t, os.WriteFile(list, []byte(mixedList), 0o600))

	res := run(t, cacheDir, "", "convert", "--file", list, "--to", "ubo")
	require.NoError(t, res.err)
	assert.Equal(t, "! Title: test list\nexample.org##.banner\nexample.org##+js(aopr, alert)\n||ad.example^$script,redirect=noop.js\n", res.stdout)
	assert.Contains(t, res.stderr, "1 failed")
	assert.NotContains(t, res.stderr, "cached")

	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)

	again := run(t, cacheDir, "", "convert", "--file", list, "--to", "ubo")
	require.NoError(t, again.err)
	assert.Equal(t, res.stdout, again.stdout)
	assert.Contains(t, again.stderr, "cached")
}

func TestConvert_FileStrict(t *testing.T) {
	cacheDir := t.TempDir()
	res := run(t, cacheDir, mixedList, "convert", "--file", "-")
	require.NoError(t, res.err)

	// The lenient result is cached; strict mode still refuses it.
	res = run(t, cacheDir, mixedList, "convert", "--file", "-", "--strict")
	require.Error(t, res.err)
	assert.True(t, errors.Is(res.err, filtering.ErrCompileAborted))

	res = run(t, "", mixedList, "convert", "--file", "-", "--strict", "--no-cache")
	require.Error(t, res.err)
	assert.True(t, errors.Is(res.err, filtering.ErrCompileAborted))
}

func TestConvert_FileOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.txt")
	res := run(t, "", mixedList, "convert", "--file", "-", "--output", out)
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "example.org#%#//scriptlet('ubo-aopr.js', 'alert')")
}

func TestGenerate(t *testing.T) {
	res := run(t, "", "", "generate", "--verify", "set-constant", "canAds", "true")
	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.stdout, "(function(source, args){"))
	assert.Contains(t, res.stdout, `"canAds","true"`)
	assert.Contains(t, res.stdout, `"engine":"extension"`)

	res = run(t, "", "", "generate", "--mode", "corelibs", "example.org##+js(aopr, alert)")
	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.stdout, "function(source, args){"))

	res = run(t, "", "", "generate", "no-such-scriptlet")
	require.Error(t, res.err)
	assert.True(t, errors.Is(res.err, filtering.ErrUnknownScriptlet))

	res = run(t, "", "", "generate", "--mode", "bogus", "set-constant")
	require.Error(t, res.err)
}

func TestCatalog(t *testing.T) {
	res := run(t, "", "", "catalog")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Scriptlets (")
	assert.Contains(t, res.stdout, "Redirects (")
	assert.Contains(t, res.stdout, "set-constant")

	res = run(t, "", "", "catalog", "--kind", "redirects", "-o", "json")
	require.NoError(t, res.err)
	var view catalogView
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &view))
	assert.Empty(t, view.Scriptlets)
	assert.NotEmpty(t, view.Redirects)

	res = run(t, "", "", "catalog", "--kind", "nope")
	require.Error(t, res.err)
}

func TestCatalogCompat(t *testing.T) {
	res := run(t, "", "", "catalog", "compat", "--kind", "redirects", "-o", "yaml")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "canonical: noopjs")
	assert.Contains(t, res.stdout, "ubo: noop.js")
	assert.NotContains(t, res.stdout, "scriptlets:")
}

func TestCatalogShow(t *testing.T) {
	res := run(t, "", "", "catalog", "show", "ubo-nostif.js")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "scriptlet")
	assert.Contains(t, res.stdout, "prevent-setTimeout")

	res = run(t, "", "", "catalog", "show", "-o", "json", "blank-js")
	require.NoError(t, res.err)
	var rd redirectView
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &rd))
	assert.Equal(t, "noopjs", rd.Name)

	res = run(t, "", "", "catalog", "show", "nope")
	require.Error(t, res.err)
}

func TestRedirect(t *testing.T) {
	res := run(t, "", "", "redirect", "--content-type", "noop.js")
	require.NoError(t, res.err)
	assert.Equal(t, "application/javascript\n", res.stdout)

	out := filepath.Join(t.TempDir(), "pixel.gif")
	res = run(t, "", "", "redirect", "1x1.gif", "--output", out)
	require.NoError(t, res.err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("GIF89a")))

	res = run(t, "", "", "redirect", "nope")
	require.Error(t, res.err)
}

func TestConfigShow(t *testing.T) {
	res := run(t, "", "", "config", "show", "-o", "json")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "config.toml")

	var cfg map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &cfg))
	assert.Contains(t, cfg, "compiler")
}

func TestConfigSchema(t *testing.T) {
	res := run(t, "", "", "config", "schema")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Scriptlets Configuration")

	out := filepath.Join(t.TempDir(), "schema.json")
	res = run(t, "", "", "config", "schema", "--output", out)
	require.NoError(t, res.err)
	_, err := os.Stat(out)
	require.NoError(t, err)
}

func TestConvert_URLs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a.txt":
			_, _ = w.Write([]byte("! Version: 7\nexample.org##+js(aopr, alert)"))
		case "/b.txt":
			_, _ = w.Write([]byte("||ad.example^$script,redirect=noop.js\n"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	res := run(t, "", "", "convert", "--url", server.URL+"/a.txt", "--url", server.URL+"/b.txt")
	require.NoError(t, res.err)
	assert.Equal(t,
		"! Version: 7\nexample.org#%#//scriptlet('ubo-aopr.js', 'alert')\n||ad.example^$script,redirect=noopjs\n",
		res.stdout)
	assert.Contains(t, res.stderr, "v7")

	res = run(t, "", "", "convert", "--url", server.URL+"/missing.txt")
	require.Error(t, res.err)
	assert.True(t, errors.Is(res.err, filtering.ErrFetchFailed))
}

func TestCatalogSearch(t *testing.T) {
	res := run(t, "", "", "catalog", "search", "-o", "json", "nostif")
	require.NoError(t, res.err)

	var views []searchView
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &views))
	require.NotEmpty(t, views)
	assert.LessOrEqual(t, len(views), 10)

	var names []string
	for _, v := range views {
		names = append(names, v.Name)
	}
	assert.Contains(t, names, "prevent-setTimeout")

	res = run(t, "", "", "catalog", "search", "zzzzqqqq")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "No matches")
}
