// Package converter rewrites scriptlet and redirect rules between the
// canonical dialect and the uBO and ABP dialects.
package converter

import (
	"github.com/bnema/scriptlets/internal/filtering/catalog"
	"github.com/bnema/scriptlets/internal/filtering/dialect"
)

// Converter translates rules using the names and compatibility table of a
// catalog. It holds no mutable state and is safe for concurrent use.
type Converter struct {
	registry  *catalog.Registry
	redirects *dialect.RedirectValidator
}

// NewConverter creates a converter bound to registry.
func NewConverter(registry *catalog.Registry) *Converter {
	return &Converter{
		registry:  registry,
		redirects: dialect.NewRedirectValidator(registry),
	}
}

// ToCanonical converts any scriptlet or redirect rule to canonical form.
// Comments and canonical rules are returned unchanged. An ABP snippet rule
// may expand into several canonical rules.
func (c *Converter) ToCanonical(rule string) ([]string, error) {
	if dialect.Classify(rule) != dialect.Unknown {
		return c.ScriptletToCanonical(rule)
	}
	if c.redirects.Classify(rule) != dialect.Unknown {
		converted, err := c.RedirectToCanonical(rule)
		if err != nil {
			return nil, err
		}
		return []string{converted}, nil
	}
	return nil, unsupported(rule, dialect.Unknown, dialect.Canonical, "not a scriptlet or redirect rule")
}

// ToUBO converts a canonical scriptlet or redirect rule to uBO syntax.
// Comments are returned unchanged.
func (c *Converter) ToUBO(rule string) (string, error) {
	switch {
	case dialect.IsComment(rule):
		return rule, nil
	case dialect.IsCanonicalScriptlet(rule):
		return c.CanonicalScriptletToUBO(rule)
	case dialect.IsCanonicalRedirect(rule):
		return c.CanonicalRedirectToUBO(rule)
	default:
		return "", unsupported(rule, dialect.Classify(rule), dialect.UBO, "only canonical rules convert to uBO")
	}
}
