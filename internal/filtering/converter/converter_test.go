package converter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/scriptlets/internal/filtering/catalog"
	"github.com/bnema/scriptlets/internal/filtering/parser"
)

func newTestConverter(t *testing.T) *Converter {
	t.Helper()
	reg, err := catalog.Default()
	require.NoError(t, err)
	return NewConverter(reg)
}

func TestUBOScriptletToCanonical(t *testing.T) {
	c := newTestConverter(t)

	tests := []struct {
		name string
		rule string
		want string
	}{
		{
			name: "simple",
			rule: "example.org##+js(abort-on-property-read, alert)",
			want: "example.org#%#//scriptlet('ubo-abort-on-property-read.js', 'alert')",
		},
		{
			name: "suffix kept",
			rule: "example.org##+js(aopr.js, alert)",
			want: "example.org#%#//scriptlet('ubo-aopr.js', 'alert')",
		},
		{
			name: "bare commas",
			rule: "example.org##+js(set,foo,1)",
			want: "example.org#%#//scriptlet('ubo-set.js', 'foo', '1')",
		},
		{
			name: "no args",
			rule: "example.org##+js(nowebrtc)",
			want: "example.org#%#//scriptlet('ubo-nowebrtc.js')",
		},
		{
			name: "exception",
			rule: "example.org#@#+js(nowebrtc)",
			want: "example.org#@%#//scriptlet('ubo-nowebrtc.js')",
		},
		{
			name: "script inject",
			rule: "example.org##script:inject(json-prune, ads)",
			want: "example.org#%#//scriptlet('ubo-json-prune.js', 'ads')",
		},
		{
			name: "quoted empty string",
			rule: "example.org##+js(set, x, '')",
			want: "example.org#%#//scriptlet('ubo-set.js', 'x', '')",
		},
		{
			name: "selector with escaped comma",
			rule: `example.org##+js(ra, href, a.ad\, b.ad)`,
			want: "example.org#%#//scriptlet('ubo-ra.js', 'href', 'a.ad, b.ad')",
		},
		{
			name: "generic",
			rule: "##+js(nowebrtc)",
			want: "#%#//scriptlet('ubo-nowebrtc.js')",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.UBOScriptletToCanonical(tt.rule)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestABPSnippetToCanonical(t *testing.T) {
	c := newTestConverter(t)

	got, err := c.ABPSnippetToCanonical("a.com#$#abort-on-property-read alert; abort-on-property-read foo")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"a.com#%#//scriptlet('abp-abort-on-property-read', 'alert')",
		"a.com#%#//scriptlet('abp-abort-on-property-read', 'foo')",
	}, got)

	got, err = c.ABPSnippetToCanonical(`a.com#@$#log 'hello world'; ;`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.com#@%#//scriptlet('abp-log', 'hello world')"}, got)

	got, err = c.ABPSnippetToCanonical(`a.com#$#json-prune "a;b"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.com#%#//scriptlet('abp-json-prune', 'a;b')"}, got)

	_, err = c.ABPSnippetToCanonical("a.com#$# ; ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedConversion))
}

func TestScriptletToCanonical_Passthrough(t *testing.T) {
	c := newTestConverter(t)

	for _, rule := range []string{
		"! comment ##+js(nowebrtc)",
		"example.org#%#//scriptlet('set-constant', 'x', '1')",
	} {
		got, err := c.ScriptletToCanonical(rule)
		require.NoError(t, err)
		assert.Equal(t, []string{rule}, got)
	}

	_, err := c.ScriptletToCanonical("example.org##.banner")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedConversion))
}

func TestScriptletToCanonical_Idempotent(t *testing.T) {
	c := newTestConverter(t)

	for _, rule := range []string{
		"example.org##+js(set, x, 1)",
		"a.com#$#log hi; abort-on-property-read foo",
	} {
		first, err := c.ScriptletToCanonical(rule)
		require.NoError(t, err)
		for _, r := range first {
			second, err := c.ScriptletToCanonical(r)
			require.NoError(t, err)
			assert.Equal(t, []string{r}, second)
		}
	}
}

func TestCanonicalScriptletToUBO(t *testing.T) {
	c := newTestConverter(t)

	tests := []struct {
		name string
		rule string
		want string
	}{
		{
			name: "empty string constant",
			rule: "example.org#%#//scriptlet('set-constant', 'x', '')",
			want: "example.org##+js(set-constant, x, '')",
		},
		{
			name: "emptyStr constant",
			rule: "example.org#%#//scriptlet('set-constant', 'x', 'emptyStr')",
			want: "example.org##+js(set-constant, x, '')",
		},
		{
			name: "wildcard fetch",
			rule: "example.org#%#//scriptlet('prevent-fetch', '*')",
			want: "example.org##+js(no-fetch-if, /^/)",
		},
		{
			name: "empty fetch",
			rule: "example.org#%#//scriptlet('prevent-fetch', '')",
			want: "example.org##+js(no-fetch-if, /^/)",
		},
		{
			name: "selector commas escaped",
			rule: "example.org#%#//scriptlet('remove-class', 'ad', 'div, span')",
			want: `example.org##+js(remove-class, ad, div\, span)`,
		},
		{
			name: "exception",
			rule: "example.org#@%#//scriptlet('abort-on-property-read', 'alert')",
			want: "example.org#@#+js(abort-on-property-read, alert)",
		},
		{
			name: "ubo spelling kept",
			rule: "example.org#%#//scriptlet('ubo-aopr.js', 'alert')",
			want: "example.org##+js(aopr, alert)",
		},
		{
			name: "no args",
			rule: "#%#//scriptlet('nowebrtc')",
			want: "##+js(nowebrtc)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.CanonicalScriptletToUBO(tt.rule)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalScriptletToUBO_Errors(t *testing.T) {
	c := newTestConverter(t)

	_, err := c.CanonicalScriptletToUBO("example.org#%#//scriptlet('hide-in-shadow-dom', 'div')")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedConversion))
	assert.False(t, errors.Is(err, ErrUnknownName))

	_, err = c.CanonicalScriptletToUBO("example.org#%#//scriptlet('nope')")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedConversion))
	assert.True(t, errors.Is(err, ErrUnknownName))

	_, err = c.CanonicalScriptletToUBO("example.org#%#//scriptlet('set-constant'")
	require.Error(t, err)
	assert.True(t, errors.Is(err, parser.ErrMalformedInvocation))

	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "example.org#%#//scriptlet('set-constant'", convErr.Rule)
}

func TestUBORoundTrip(t *testing.T) {
	c := newTestConverter(t)

	for _, rule := range []string{
		"example.org##+js(aopr, alert)",
		"example.org##+js(set-constant, x, '')",
		`example.org##+js(ra, href, a.ad\, b.ad)`,
		"example.org#@#+js(nowebrtc)",
		"example.org##+js(no-fetch-if, /^/)",
	} {
		canonical, err := c.UBOScriptletToCanonical(rule)
		require.NoError(t, err, rule)
		back, err := c.CanonicalScriptletToUBO(canonical)
		require.NoError(t, err, rule)
		assert.Equal(t, rule, back)
	}
}

func TestRedirectToCanonical(t *testing.T) {
	c := newTestConverter(t)

	tests := []struct {
		name string
		rule string
		want string
	}{
		{"ubo name", "||ad.example^$script,redirect=noop.js", "||ad.example^$script,redirect=noopjs"},
		{"ubo xhr", "||ad.example^$xhr,redirect=noop.txt", "||ad.example^$xmlhttprequest,redirect=nooptext"},
		{"abp resource", "||ad.example^$script,rewrite=abp-resource:blank-js", "||ad.example^$script,redirect=noopjs"},
		{"canonical", "||ad.example^$script,redirect=noopjs", "||ad.example^$script,redirect=noopjs"},
		{"comment", "! $redirect=noop.js", "! $redirect=noop.js"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.RedirectToCanonical(tt.rule)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := c.RedirectToCanonical("||ad.example^$redirect=unknown-thing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedConversion))
}

func TestCanonicalRedirectToUBO(t *testing.T) {
	c := newTestConverter(t)

	tests := []struct {
		name string
		rule string
		want string
	}{
		{
			name: "types completed",
			rule: "||ad.example^$redirect=google-analytics",
			want: "||ad.example^$redirect=google-analytics_analytics.js,script",
		},
		{
			name: "several types completed",
			rule: "||ad.example^$redirect=googlesyndication-adsbygoogle",
			want: "||ad.example^$redirect=googlesyndication_adsbygoogle.js,xmlhttprequest,script",
		},
		{
			name: "declared type kept",
			rule: "||ad.example^$image,redirect=1x1-transparent.gif",
			want: "||ad.example^$image,redirect=1x1.gif",
		},
		{
			name: "empty needs no type",
			rule: "||ad.example^$redirect=empty",
			want: "||ad.example^$redirect=empty",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.CanonicalRedirectToUBO(tt.rule)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalRedirectToUBO_Errors(t *testing.T) {
	c := newTestConverter(t)

	for _, rule := range []string{
		"||ad.example^$redirect=metrika-yandex-tag",
		"||ad.example^$redirect=amazon-apstag",
		"||ad.example^$redirect=noop.js",
	} {
		_, err := c.CanonicalRedirectToUBO(rule)
		require.Error(t, err, rule)
		assert.True(t, errors.Is(err, ErrUnsupportedConversion), rule)
	}
}

func TestToCanonicalAndToUBO(t *testing.T) {
	c := newTestConverter(t)

	got, err := c.ToCanonical("||ad.example^$redirect=noop.js,script")
	require.NoError(t, err)
	assert.Equal(t, []string{"||ad.example^$redirect=noopjs,script"}, got)

	got, err = c.ToCanonical("example.org##+js(nowebrtc)")
	require.NoError(t, err)
	assert.Equal(t, []string{"example.org#%#//scriptlet('ubo-nowebrtc.js')"}, got)

	_, err = c.ToCanonical("||ad.example^$third-party")
	assert.True(t, errors.Is(err, ErrUnsupportedConversion))

	ubo, err := c.ToUBO("||ad.example^$redirect=noopjs")
	require.NoError(t, err)
	assert.Equal(t, "||ad.example^$redirect=noop.js,script", ubo)

	ubo, err = c.ToUBO("! keep")
	require.NoError(t, err)
	assert.Equal(t, "! keep", ubo)

	_, err = c.ToUBO("example.org##+js(nowebrtc)")
	assert.True(t, errors.Is(err, ErrUnsupportedConversion))
}
