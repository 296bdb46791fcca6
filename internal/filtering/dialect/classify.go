// Package dialect recognizes which filter-rule syntax a line is written in
// and validates scriptlet and redirect rules against the catalog.
package dialect

import (
	"regexp"
	"strings"
)

// Tag identifies the syntax of a rule.
type Tag int

const (
	// Unknown is anything that is not a recognized scriptlet or redirect rule.
	Unknown Tag = iota
	// Comment is a "!" prefixed line.
	Comment
	// Canonical is the pivot syntax: #%#//scriptlet(...) and $redirect=.
	Canonical
	// UBO is the uBlock Origin syntax: ##+js(...) and $redirect=.
	UBO
	// ABP is the Adblock Plus syntax: #$#snippet and $rewrite=abp-resource:.
	ABP
)

func (t Tag) String() string {
	switch t {
	case Comment:
		return "comment"
	case Canonical:
		return "canonical"
	case UBO:
		return "ubo"
	case ABP:
		return "abp"
	default:
		return "unknown"
	}
}

// ParseTag maps a dialect name back to its tag.
func ParseTag(s string) (Tag, bool) {
	switch strings.ToLower(s) {
	case "canonical", "adg", "adguard":
		return Canonical, true
	case "ubo", "ublock":
		return UBO, true
	case "abp":
		return ABP, true
	case "comment":
		return Comment, true
	default:
		return Unknown, false
	}
}

// Rule markers.
const (
	CommentMarker = "!"

	CanonicalScriptletMask          = "#%#//scriptlet"
	CanonicalScriptletExceptionMask = "#@%#//scriptlet"
	canonicalCallMarker             = "#//scriptlet"

	UBOScriptletMask                = "##+js("
	UBOScriptletExceptionMask       = "#@#+js("
	UBOInjectScriptletMask          = "##script:inject("
	UBOInjectScriptletExceptionMask = "#@#script:inject("

	ABPSnippetMask          = "#$#"
	ABPSnippetExceptionMask = "#@$#"
)

// UBOScriptletMaskRe matches every uBO scriptlet marker variant.
var UBOScriptletMaskRe = regexp.MustCompile(`#@?#script:inject\(|#@?#\s*\+js\(`)

// cssInjectionRe matches #$# style-injection rules, which share the ABP
// snippet marker but carry a {...} declaration block.
var cssInjectionRe = regexp.MustCompile(`#@?\$#.+?\s*\{.*\}\s*$`)

// IsComment reports whether rule is a comment line.
func IsComment(rule string) bool {
	return strings.HasPrefix(rule, CommentMarker)
}

// IsCanonicalScriptlet reports whether rule is a canonical scriptlet rule.
func IsCanonicalScriptlet(rule string) bool {
	return !IsComment(rule) && strings.Contains(rule, canonicalCallMarker)
}

// IsUBOScriptlet reports whether rule is a uBO scriptlet rule.
func IsUBOScriptlet(rule string) bool {
	if IsComment(rule) {
		return false
	}
	hasMarker := strings.Contains(rule, UBOScriptletMask) ||
		strings.Contains(rule, UBOScriptletExceptionMask) ||
		strings.Contains(rule, UBOInjectScriptletMask) ||
		strings.Contains(rule, UBOInjectScriptletExceptionMask)
	return hasMarker && UBOScriptletMaskRe.MatchString(rule)
}

// IsABPSnippet reports whether rule is an ABP snippet rule rather than a
// #$# style-injection rule.
func IsABPSnippet(rule string) bool {
	if IsComment(rule) {
		return false
	}
	hasMarker := strings.Contains(rule, ABPSnippetMask) || strings.Contains(rule, ABPSnippetExceptionMask)
	return hasMarker && !cssInjectionRe.MatchString(rule)
}

// Classify returns the scriptlet dialect of rule. Comments win over every
// other marker.
func Classify(rule string) Tag {
	switch {
	case IsComment(rule):
		return Comment
	case IsCanonicalScriptlet(rule):
		return Canonical
	case IsUBOScriptlet(rule):
		return UBO
	case IsABPSnippet(rule):
		return ABP
	default:
		return Unknown
	}
}

// IsException reports whether a scriptlet rule uses the exception form of
// its dialect marker.
func IsException(rule string) bool {
	switch Classify(rule) {
	case Canonical:
		return strings.Contains(rule, CanonicalScriptletExceptionMask)
	case UBO:
		return strings.Contains(UBOScriptletMaskRe.FindString(rule), "@")
	case ABP:
		return strings.Contains(rule, ABPSnippetExceptionMask)
	default:
		return false
	}
}
