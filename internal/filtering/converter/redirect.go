package converter

import (
	"slices"
	"strings"

	"github.com/bnema/scriptlets/internal/filtering/dialect"
	"github.com/bnema/scriptlets/internal/filtering/textutil"
)

// uBO spells the xmlhttprequest source type as xhr.
const uboXHRType = "xhr"

// RedirectToCanonical converts a redirect rule of any dialect to its
// canonical form. Comments and canonical rules are returned as is.
func (c *Converter) RedirectToCanonical(rule string) (string, error) {
	switch c.redirects.Classify(rule) {
	case dialect.Comment, dialect.Canonical:
		return rule, nil
	case dialect.UBO:
		return c.UBORedirectToCanonical(rule)
	case dialect.ABP:
		return c.ABPRedirectToCanonical(rule)
	default:
		return "", unsupported(rule, dialect.Unknown, dialect.Canonical, "not a known redirect rule")
	}
}

// UBORedirectToCanonical rewrites the redirect name and the xhr type of a uBO
// redirect rule.
func (c *Converter) UBORedirectToCanonical(rule string) (string, error) {
	if !c.redirects.IsUBORedirectCompatibleWithCanonical(rule) {
		return "", unsupported(rule, dialect.UBO, dialect.Canonical, "redirect has no canonical equivalent")
	}
	mods := dialect.ParseModifiers(rule)
	for i, mod := range mods {
		switch {
		case strings.HasPrefix(mod, dialect.RedirectMarker):
			name := strings.TrimPrefix(mod, dialect.RedirectMarker)
			if canonical, ok := c.registry.RedirectFromUBO(name); ok {
				mods[i] = dialect.RedirectMarker + canonical
			}
		case mod == uboXHRType:
			mods[i] = "xmlhttprequest"
		}
	}
	return joinModifiers(rule, mods), nil
}

// ABPRedirectToCanonical rewrites $rewrite=abp-resource:name into
// $redirect=canonical.
func (c *Converter) ABPRedirectToCanonical(rule string) (string, error) {
	if !c.redirects.IsABPRedirectCompatibleWithCanonical(rule) {
		return "", unsupported(rule, dialect.ABP, dialect.Canonical, "resource has no canonical equivalent")
	}
	mods := dialect.ParseModifiers(rule)
	for i, mod := range mods {
		if !strings.HasPrefix(mod, dialect.ABPRedirectMarker) {
			continue
		}
		name := strings.TrimPrefix(mod, dialect.ABPRedirectMarker)
		if canonical, ok := c.registry.RedirectFromABP(name); ok {
			mods[i] = dialect.RedirectMarker + canonical
		}
	}
	return joinModifiers(rule, mods), nil
}

// CanonicalRedirectToUBO rewrites the redirect name for uBO. uBO refuses
// redirects without a source type, so the catalog's required types are
// appended when the rule declares none.
func (c *Converter) CanonicalRedirectToUBO(rule string) (string, error) {
	if !c.redirects.IsCanonicalRedirectCompatibleWithUBO(rule) {
		return "", unsupported(rule, dialect.Canonical, dialect.UBO, "redirect has no uBO equivalent")
	}
	name := dialect.RedirectName(rule, dialect.RedirectMarker)
	uboName, _ := c.registry.RedirectToUBO(name)

	mods := dialect.ParseModifiers(rule)
	for i, mod := range mods {
		if strings.HasPrefix(mod, dialect.RedirectMarker) {
			mods[i] = dialect.RedirectMarker + uboName
		}
	}
	if !dialect.HasValidContentType(rule) {
		rd, ok := c.registry.FindRedirect(name)
		if !ok || len(rd.RequiredTypes) == 0 {
			return "", unsupported(rule, dialect.Canonical, dialect.UBO, "redirect %q needs a source type", name)
		}
		for _, t := range rd.RequiredTypes {
			if !slices.Contains(mods, t) {
				mods = append(mods, t)
			}
		}
	}
	return joinModifiers(rule, mods), nil
}

func joinModifiers(rule string, mods []string) string {
	base := textutil.SubstringBefore(rule, dialect.ModifierSeparator)
	return base + dialect.ModifierSeparator + strings.Join(mods, dialect.ModifierDelimiter)
}
