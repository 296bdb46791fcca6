package dialect

import (
	"slices"
	"strings"

	"github.com/bnema/scriptlets/internal/filtering/catalog"
	"github.com/bnema/scriptlets/internal/filtering/textutil"
)

// Redirect rule markers.
const (
	ModifierSeparator  = "$"
	ModifierDelimiter  = ","
	RedirectMarker     = "redirect="
	ABPRedirectMarker  = "rewrite=abp-resource:"
	EmptyRedirectToken = RedirectMarker + catalog.EmptyRedirect
)

// ParseModifiers returns the comma separated modifiers after the first
// modifier separator.
func ParseModifiers(rule string) []string {
	return strings.Split(textutil.SubstringAfter(rule, ModifierSeparator), ModifierDelimiter)
}

// RedirectName extracts the resource name from the first modifier carrying
// marker.
func RedirectName(rule, marker string) string {
	for _, mod := range ParseModifiers(rule) {
		if strings.Contains(mod, marker) {
			return textutil.SubstringAfter(mod, marker)
		}
	}
	return ""
}

// HasValidContentType reports whether rule declares at least one source type
// modifier. $redirect=empty needs none.
func HasValidContentType(rule string) bool {
	mods := ParseModifiers(rule)
	if slices.Contains(mods, EmptyRedirectToken) {
		return true
	}
	return slices.ContainsFunc(mods, catalog.IsSourceType)
}

// IsCanonicalRedirect reports whether rule carries a redirect modifier. A
// redirect= that is followed by a modifier separator sits in the URL
// pattern and does not count.
func IsCanonicalRedirect(rule string) bool {
	if IsComment(rule) {
		return false
	}
	idx := strings.Index(rule, RedirectMarker)
	if idx == -1 {
		return false
	}
	return !strings.Contains(rule[idx+len(RedirectMarker):], ModifierSeparator)
}

// RedirectValidator checks redirect rules against the catalog compatibility
// table.
type RedirectValidator struct {
	registry *catalog.Registry
}

// NewRedirectValidator creates a validator bound to registry.
func NewRedirectValidator(registry *catalog.Registry) *RedirectValidator {
	return &RedirectValidator{registry: registry}
}

func (v *RedirectValidator) redirectByType(rule, marker string, known func(string) bool) bool {
	if rule == "" || IsComment(rule) || !strings.Contains(rule, marker) {
		return false
	}
	name := RedirectName(rule, marker)
	return name != "" && known(name)
}

// IsValidCanonicalRedirect reports whether rule redirects to a canonical
// redirect name.
func (v *RedirectValidator) IsValidCanonicalRedirect(rule string) bool {
	return IsCanonicalRedirect(rule) && v.redirectByType(rule, RedirectMarker, v.registry.IsCanonicalRedirect)
}

// IsCanonicalRedirectCompatibleWithUBO reports whether a canonical redirect
// rule names a redirect that has a uBO equivalent.
func (v *RedirectValidator) IsCanonicalRedirectCompatibleWithUBO(rule string) bool {
	return IsCanonicalRedirect(rule) && v.redirectByType(rule, RedirectMarker, func(name string) bool {
		_, ok := v.registry.RedirectToUBO(name)
		return ok
	})
}

// IsUBORedirectCompatibleWithCanonical reports whether rule names a uBO
// redirect with a canonical equivalent.
func (v *RedirectValidator) IsUBORedirectCompatibleWithCanonical(rule string) bool {
	return v.redirectByType(rule, RedirectMarker, func(name string) bool {
		_, ok := v.registry.RedirectFromUBO(name)
		return ok
	})
}

// IsABPRedirectCompatibleWithCanonical reports whether rule names an ABP
// resource with a canonical equivalent.
func (v *RedirectValidator) IsABPRedirectCompatibleWithCanonical(rule string) bool {
	return v.redirectByType(rule, ABPRedirectMarker, func(name string) bool {
		_, ok := v.registry.RedirectFromABP(name)
		return ok
	})
}

// Classify returns the dialect of a redirect rule. Canonical names win when a
// name exists in more than one dialect.
func (v *RedirectValidator) Classify(rule string) Tag {
	switch {
	case IsComment(rule):
		return Comment
	case v.IsValidCanonicalRedirect(rule):
		return Canonical
	case v.IsUBORedirectCompatibleWithCanonical(rule):
		return UBO
	case v.IsABPRedirectCompatibleWithCanonical(rule):
		return ABP
	default:
		return Unknown
	}
}

// IsValidRedirectRule reports whether rule is a redirect rule of any dialect
// that resolves to a known canonical redirect.
func (v *RedirectValidator) IsValidRedirectRule(rule string) bool {
	tag := v.Classify(rule)
	return tag == Canonical || tag == UBO || tag == ABP
}
