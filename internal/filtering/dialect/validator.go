package dialect

import (
	"github.com/bnema/scriptlets/internal/filtering/catalog"
	"github.com/bnema/scriptlets/internal/filtering/parser"
)

// Canonicalizer rewrites a scriptlet rule of any dialect into one or more
// canonical rules.
type Canonicalizer interface {
	ScriptletToCanonical(rule string) ([]string, error)
}

// Validator answers validity questions for whole filter lists. Its methods
// never fail; anything that cannot be resolved is reported as invalid.
type Validator struct {
	registry  *catalog.Registry
	converter Canonicalizer
	redirects *RedirectValidator
}

// NewValidator creates a validator bound to registry. converter is used to
// expand non-canonical rules before their names are checked.
func NewValidator(registry *catalog.Registry, converter Canonicalizer) *Validator {
	return &Validator{
		registry:  registry,
		converter: converter,
		redirects: NewRedirectValidator(registry),
	}
}

// Redirects returns the redirect validator sharing this validator's catalog.
func (v *Validator) Redirects() *RedirectValidator {
	return v.redirects
}

// IsValidInvocationName reports whether name resolves to a catalog scriptlet.
func (v *Validator) IsValidInvocationName(name string) bool {
	return v.registry.IsKnownScriptlet(name)
}

// IsValidRule converts rule to canonical form and reports whether every
// produced rule parses and names a known scriptlet. One unknown name
// invalidates the whole input.
func (v *Validator) IsValidRule(rule string) bool {
	if rule == "" {
		return false
	}
	rules, err := v.converter.ScriptletToCanonical(rule)
	if err != nil || len(rules) == 0 {
		return false
	}
	for _, r := range rules {
		inv, err := parser.ParseInvocation(r)
		if err != nil || !v.IsValidInvocationName(inv.Name) {
			return false
		}
	}
	return true
}

// IsValidRedirectRule reports whether rule is a resolvable redirect rule.
func (v *Validator) IsValidRedirectRule(rule string) bool {
	return v.redirects.IsValidRedirectRule(rule)
}
