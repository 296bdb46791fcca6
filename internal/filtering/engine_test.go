package filtering

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/scriptlets/internal/filtering/codegen"
	"github.com/bnema/scriptlets/internal/filtering/converter"
	"github.com/bnema/scriptlets/internal/filtering/dialect"
	"github.com/bnema/scriptlets/internal/filtering/parser"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewDefaultEngine()
	require.NoError(t, err)
	return e
}

func TestEngine_ClassifyRule(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		rule string
		want dialect.Tag
	}{
		{"example.org#%#//scriptlet('log')", dialect.Canonical},
		{"example.org##+js(aopr, alert)", dialect.UBO},
		{"example.org#$#log hi", dialect.ABP},
		{"||a.com^$redirect=noopjs", dialect.Canonical},
		{"||a.com^$redirect=noop.js", dialect.UBO},
		{"||a.com^$rewrite=abp-resource:blank-js", dialect.ABP},
		{"! comment", dialect.Comment},
		{"example.org##.ad", dialect.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			assert.Equal(t, tt.want, e.ClassifyRule(tt.rule))
		})
	}
}

func TestEngine_Validity(t *testing.T) {
	e := newTestEngine(t)

	assert.True(t, e.IsValidInvocationName("abp-log"))
	assert.False(t, e.IsValidInvocationName("nope"))
	assert.True(t, e.IsValidRule("a.com#$#log a; abort-on-property-read foo"))
	assert.False(t, e.IsValidRule("a.com#$#log a; nope foo"))
	assert.True(t, e.IsValidRedirectRule("||a.com^$redirect=noop.js"))
}

func TestEngine_FindCatalogEntry(t *testing.T) {
	e := newTestEngine(t)

	entry, ok := e.FindCatalogEntry("ubo-set.js")
	require.True(t, ok)
	assert.Equal(t, EntryScriptlet, entry.Kind)
	assert.Equal(t, "set-constant", entry.Name())
	assert.Nil(t, entry.Redirect)

	entry, ok = e.FindCatalogEntry("noop.js")
	require.True(t, ok)
	assert.Equal(t, EntryRedirect, entry.Kind)
	assert.Equal(t, "noopjs", entry.Name())

	_, ok = e.FindCatalogEntry("nope")
	assert.False(t, ok)
}

func TestEngine_Conversions(t *testing.T) {
	e := newTestEngine(t)

	rules, err := e.ConvertToCanonical("example.org##+js(abort-on-property-read, alert)")
	require.NoError(t, err)
	assert.Equal(t, []string{"example.org#%#//scriptlet('ubo-abort-on-property-read.js', 'alert')"}, rules)

	ubo, err := e.ConvertCanonicalToDialectB("example.org#%#//scriptlet('set-constant', 'x', '')")
	require.NoError(t, err)
	assert.Equal(t, "example.org##+js(set-constant, x, '')", ubo)

	ubo, err = e.ConvertCanonicalToDialectB("||ad.example^$redirect=google-analytics")
	require.NoError(t, err)
	assert.Equal(t, "||ad.example^$redirect=google-analytics_analytics.js,script", ubo)

	rules, err = e.ConvertToCanonical("a.com#$#abort-on-property-read alert; abort-on-property-read foo")
	require.NoError(t, err)
	require.Len(t, rules, 2)
	for _, r := range rules {
		assert.True(t, strings.HasPrefix(r, "a.com#%#//scriptlet('abp-abort-on-property-read', "))
	}

	_, err = e.ConvertCanonicalToDialectB("example.org#%#//scriptlet('hide-in-shadow-dom')")
	assert.True(t, errors.Is(err, converter.ErrUnsupportedConversion))
}

func TestEngine_MalformedInvocation(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.ConvertCanonicalToDialectB("example.org#%#//scriptlet('noeval)")
	assert.True(t, errors.Is(err, parser.ErrMalformedInvocation))

	_, err = e.GenerateForRule("example.org#%#//scriptlet('noeval)", codegen.ModeTest, codegen.Source{})
	assert.True(t, errors.Is(err, parser.ErrMalformedInvocation))
}

func TestEngine_GenerateInvocationCode(t *testing.T) {
	e := newTestEngine(t)

	code, ok := e.GenerateInvocationCode(codegen.Request{Name: "abp-log", Mode: codegen.ModeTest})
	require.True(t, ok)
	assert.NoError(t, codegen.Verify(code))

	_, ok = e.GenerateInvocationCode(codegen.Request{Name: "nope"})
	assert.False(t, ok)
}

func TestEngine_GenerateForRule(t *testing.T) {
	e := newTestEngine(t)

	codes, err := e.GenerateForRule("a.com#$#log a; json-prune ads", codegen.ModeExtension, codegen.Source{Engine: "test"})
	require.NoError(t, err)
	require.Len(t, codes, 2)
	assert.Contains(t, codes[0], `"name":"abp-log","args":["a"],"engine":"test"`)
	assert.Contains(t, codes[0], `"ruleText":"a.com#%#//scriptlet('abp-log', 'a')"`)
	assert.Contains(t, codes[1], "jsonPrune.apply(this, updatedArgs);")

	_, err = e.GenerateForRule("a.com##+js(no-such-thing)", codegen.ModeTest, codegen.Source{})
	assert.True(t, errors.Is(err, ErrUnknownScriptlet))
}

func TestEngine_RedirectResource(t *testing.T) {
	e := newTestEngine(t)

	res, ok := e.RedirectResource("noopcss")
	require.True(t, ok)
	assert.Equal(t, "text/css", res.ContentType)
	assert.Empty(t, res.Data)
}
