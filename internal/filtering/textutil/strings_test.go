package textutil

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstringBeforeAfter(t *testing.T) {
	assert.Equal(t, "example.org", SubstringBefore("example.org##+js(noeval)", "##"))
	assert.Equal(t, "no-marker", SubstringBefore("no-marker", "##"))
	assert.Equal(t, "+js(noeval)", SubstringAfter("example.org##+js(noeval)", "##"))
	assert.Empty(t, SubstringAfter("no-marker", "##"))
}

func TestSubstringBeforeRegexp(t *testing.T) {
	re := regexp.MustCompile(`#@?#\+js`)
	assert.Equal(t, "a.com,b.com", SubstringBeforeRegexp("a.com,b.com#@#+js(nowebrtc)", re))
	assert.Equal(t, "plain", SubstringBeforeRegexp("plain", re))
}

func TestStringInBraces(t *testing.T) {
	assert.Equal(t, "set, x, (1)", StringInBraces("a.com##+js(set, x, (1))"))
	assert.Empty(t, StringInBraces("no braces"))
	assert.Empty(t, StringInBraces(")("))
}

func TestWrapInSingleQuotes(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"alert", "'alert'"},
		{"'alert'", "'alert'"},
		{`"alert"`, "'alert'"},
		{"it's", `'it\'s'`},
		{"", "''"},
		{"'", `'\''`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, WrapInSingleQuotes(tt.in))
		})
	}
}

func TestReplacePlaceholders(t *testing.T) {
	got := ReplacePlaceholders("${domains}#%#//scriptlet(${args})", map[string]string{
		"domains": "a.com",
		"args":    "'log', '${domains}'",
	})
	assert.Equal(t, "a.com#%#//scriptlet('log', '${domains}')", got)
}

func TestToRegExp(t *testing.T) {
	re, err := ToRegExp("/^ad[sv]$/i")
	require.NoError(t, err)
	assert.True(t, re.MatchString("ADS"))
	assert.False(t, re.MatchString("ads1"))

	re, err = ToRegExp("a.b")
	require.NoError(t, err)
	assert.True(t, re.MatchString("xa.by"))
	assert.False(t, re.MatchString("axb"))

	re, err = ToRegExp("")
	require.NoError(t, err)
	assert.True(t, re.MatchString("anything"))

	_, err = ToRegExp("/(/")
	assert.Error(t, err)
}

func TestSplitOutsideQuotes(t *testing.T) {
	got := SplitOutsideQuotes(`log 1; log "a;b"; log 2`, ';')
	assert.Equal(t, []string{"log 1", ` log "a;b"`, " log 2"}, got)
	assert.Equal(t, []string{"single"}, SplitOutsideQuotes("single", ';'))
}

func TestSentences(t *testing.T) {
	got := Sentences(` abort-on-property-read  'foo bar' "x y" baz `)
	assert.Equal(t, []string{"abort-on-property-read", "'foo bar'", `"x y"`, "baz"}, got)
	assert.Empty(t, Sentences("   "))
}
