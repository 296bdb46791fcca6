// Package textutil holds the small string helpers shared by the rule parser,
// classifier and converters.
package textutil

import (
	"regexp"
	"strings"
)

// SubstringBefore returns the part of s before the first occurrence of sep.
// If sep is absent, s is returned unchanged.
func SubstringBefore(s, sep string) string {
	if s == "" {
		return s
	}
	before, _, found := strings.Cut(s, sep)
	if !found {
		return s
	}
	return before
}

// SubstringAfter returns the part of s after the first occurrence of sep,
// or an empty string when sep is absent.
func SubstringAfter(s, sep string) string {
	_, after, found := strings.Cut(s, sep)
	if !found {
		return ""
	}
	return after
}

// SubstringBeforeRegexp returns the part of s before the first match of re.
// If re does not match, s is returned unchanged.
func SubstringBeforeRegexp(s string, re *regexp.Regexp) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]]
}

// StringInBraces returns the text between the first "(" and the last ")".
func StringInBraces(s string) string {
	start := strings.Index(s, "(")
	end := strings.LastIndex(s, ")")
	if start == -1 || end <= start {
		return ""
	}
	return s[start+1 : end]
}

// IsQuoted reports whether s starts and ends with the same quote character.
func IsQuoted(s string) bool {
	if len(s) < 2 {
		return false
	}
	first, last := s[0], s[len(s)-1]
	return first == last && (first == '\'' || first == '"')
}

// WrapInSingleQuotes strips one layer of matching quotes from s, escapes any
// single quote left inside and wraps the result in single quotes.
func WrapInSingleQuotes(s string) string {
	if IsQuoted(s) {
		s = s[1 : len(s)-1]
	}
	s = strings.ReplaceAll(s, "'", `\'`)
	return "'" + s + "'"
}

// ReplacePlaceholders substitutes every ${key} in template with its value.
func ReplacePlaceholders(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "${"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

var regexpLiteral = regexp.MustCompile(`^/(.+)/([gimsuy]*)$`)

// ToRegExp compiles a filter-style pattern. "/re/flags" literals are compiled
// as regular expressions (only the "i" and "s" flags have a Go equivalent);
// anything else matches as a plain substring. An empty input matches
// everything.
func ToRegExp(input string) (*regexp.Regexp, error) {
	if input == "" {
		return regexp.Compile(".?")
	}
	if m := regexpLiteral.FindStringSubmatch(input); m != nil {
		flags := ""
		if strings.Contains(m[2], "i") {
			flags += "i"
		}
		if strings.Contains(m[2], "s") {
			flags += "s"
		}
		pattern := m[1]
		if flags != "" {
			pattern = "(?" + flags + ")" + pattern
		}
		return regexp.Compile(pattern)
	}
	return regexp.Compile(regexp.QuoteMeta(input))
}

// SplitOutsideQuotes splits s on sep, ignoring separators inside double
// quoted spans.
func SplitOutsideQuotes(s string, sep byte) []string {
	var parts []string
	inQuotes := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuotes = !inQuotes
		case sep:
			if !inQuotes {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

var sentence = regexp.MustCompile(`'.*?'|".*?"|\S+`)

// Sentences tokenizes s on whitespace, keeping single or double quoted spans
// (quotes included) as one token.
func Sentences(s string) []string {
	return sentence.FindAllString(s, -1)
}
