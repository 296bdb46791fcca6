package codegen

import (
	"errors"
	"strings"
	"testing"

	"github.com/grafana/sobek"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/scriptlets/internal/filtering/catalog"
)

func newTestGenerator(t *testing.T) (*Generator, *catalog.Registry) {
	t.Helper()
	reg, err := catalog.Default()
	require.NoError(t, err)
	return NewGenerator(reg), reg
}

// newPage returns a VM with the globals the fragments expect from a page.
func newPage(t *testing.T) *sobek.Runtime {
	t.Helper()
	vm := sobek.New()
	_, err := vm.RunString(`
var window = this;
var console = { log: function () {}, trace: function () {} };
`)
	require.NoError(t, err)
	return vm
}

func TestGenerate_UnknownName(t *testing.T) {
	g, _ := newTestGenerator(t)
	code, ok := g.Generate(Request{Name: "does-not-exist"})
	assert.False(t, ok)
	assert.Empty(t, code)
}

func TestGenerate_DependencyOrder(t *testing.T) {
	g, _ := newTestGenerator(t)

	code, ok := g.Generate(Request{Name: "set-constant", Mode: ModeCoreLibs})
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(code, "function(source, args){\n"))
	assert.True(t, strings.HasSuffix(code, "\n}"))

	order := []string{
		"function setConstant(",
		"function setPropertyAccess(",
		"function noopFunc(",
		"function trueFunc(",
		"function falseFunc(",
		"function hit(",
		"setConstant.apply(this, updatedArgs);",
	}
	last := -1
	for _, marker := range order {
		idx := strings.Index(code, marker)
		require.NotEqual(t, -1, idx, marker)
		assert.Greater(t, idx, last, marker)
		last = idx
	}
	assert.Equal(t, 1, strings.Count(code, "function hit("))
}

func TestGenerate_ResolvesAliases(t *testing.T) {
	g, _ := newTestGenerator(t)

	byName, ok := g.Generate(Request{Name: "abort-on-property-read"})
	require.True(t, ok)
	byAlias, ok := g.Generate(Request{Name: "ubo-aopr.js"})
	require.True(t, ok)
	assert.Equal(t, byName, byAlias)
}

func TestGenerate_ExtensionMetadata(t *testing.T) {
	g, _ := newTestGenerator(t)

	code, ok := g.Generate(Request{
		Name: "set-constant",
		Args: []string{"foo.bar", "true"},
		Mode: ModeExtension,
	})
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(code, "(function(source, args){\n"))
	assert.True(t, strings.HasSuffix(code,
		`})({"name":"set-constant","args":["foo.bar","true"],"verbose":false}, ["foo.bar","true"]);`))

	code, ok = g.Generate(Request{
		Name: "log",
		Mode: ModeExtension,
		Source: Source{
			Engine:     "extension",
			Version:    "1.0.0",
			RuleText:   "example.org#%#//scriptlet('log')",
			DomainName: "example.org",
		},
	})
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(code,
		`})({"name":"log","args":[],"engine":"extension","version":"1.0.0","verbose":false,`+
			`"ruleText":"example.org#%#//scriptlet('log')","domainName":"example.org"}, []);`))
}

func TestGenerate_ExtensionRunsInPage(t *testing.T) {
	g, _ := newTestGenerator(t)

	code, ok := g.Generate(Request{
		Name: "set-constant",
		Args: []string{"foo.bar", "true"},
		Mode: ModeExtension,
	})
	require.True(t, ok)

	vm := newPage(t)
	_, err := vm.RunString(code)
	require.NoError(t, err)

	v, err := vm.RunString("foo.bar")
	require.NoError(t, err)
	assert.Equal(t, true, v.Export())

	v, err = vm.RunString("foo.bar = false; foo.bar")
	require.NoError(t, err)
	assert.Equal(t, true, v.Export())
}

func TestGenerate_TestModeIsCallable(t *testing.T) {
	g, _ := newTestGenerator(t)

	code, ok := g.Generate(Request{Name: "json-prune", Mode: ModeTest})
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(code, "(function(source, args){\n"))
	assert.True(t, strings.HasSuffix(code, "\n})"))

	vm := newPage(t)
	_, err := vm.RunString("var jsonPruneUnit = " + code + ";")
	require.NoError(t, err)

	v, err := vm.RunString(`
jsonPruneUnit({ name: 'json-prune', verbose: false }, ['ads']);
JSON.stringify(JSON.parse('{"ads":[1],"keep":2}'));
`)
	require.NoError(t, err)
	assert.Equal(t, `{"keep":2}`, v.Export())
}

func TestGenerate_CoreLibsIsCallable(t *testing.T) {
	g, _ := newTestGenerator(t)

	code, ok := g.Generate(Request{Name: "set-constant", Mode: ModeCoreLibs})
	require.True(t, ok)

	vm := newPage(t)
	_, err := vm.RunString("var setConstantUnit = (" + code + ");")
	require.NoError(t, err)

	fn, ok := sobek.AssertFunction(vm.Get("setConstantUnit"))
	require.True(t, ok)
	_, err = fn(sobek.Undefined(), vm.ToValue(map[string]any{"name": "set-constant"}), vm.NewArray("answer", "42"))
	require.NoError(t, err)

	v, err := vm.RunString("answer")
	require.NoError(t, err)
	assert.EqualValues(t, 42, v.Export())
}

func TestGenerate_EveryScriptletVerifies(t *testing.T) {
	g, reg := newTestGenerator(t)

	for _, s := range reg.Scriptlets() {
		for _, mode := range []Mode{ModeCoreLibs, ModeExtension, ModeTest} {
			t.Run(s.Name+"/"+mode.String(), func(t *testing.T) {
				code, ok := g.Generate(Request{Name: s.Name, Args: []string{"a'b", `c"d`}, Mode: mode})
				require.True(t, ok)
				assert.NoError(t, Verify(code))
			})
		}
	}
}

func TestVerify_RejectsBrokenCode(t *testing.T) {
	err := Verify("function(source, args){ var = ; }")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCode))
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModeCoreLibs, ModeExtension, ModeTest} {
		got, ok := ParseMode(m.String())
		assert.True(t, ok)
		assert.Equal(t, m, got)
	}
	_, ok := ParseMode("bogus")
	assert.False(t, ok)
}

func TestRedirect(t *testing.T) {
	g, reg := newTestGenerator(t)

	res, ok := g.Redirect("1x1-transparent.gif")
	require.True(t, ok)
	assert.Equal(t, "image/gif", res.ContentType)
	assert.True(t, strings.HasPrefix(string(res.Data), "GIF89a"))

	res, ok = g.Redirect("32x32.png")
	require.True(t, ok)
	assert.Equal(t, "32x32-transparent.png", res.Name)
	assert.Equal(t, "image/png", res.ContentType)
	assert.True(t, strings.HasPrefix(string(res.Data), "\x89PNG"))

	res, ok = g.Redirect("noop.js")
	require.True(t, ok)
	assert.Equal(t, "noopjs", res.Name)
	assert.Equal(t, "application/javascript", res.ContentType)
	assert.NoError(t, Verify(string(res.Data)))

	_, ok = g.Redirect("noopmp4-1s")
	assert.False(t, ok, "no bundled payload")

	_, ok = g.Redirect("nope")
	assert.False(t, ok)

	for _, rd := range reg.Redirects() {
		if rd.Body == "" {
			continue
		}
		_, ok := g.Redirect(rd.Name)
		assert.True(t, ok, rd.Name)
	}
}
