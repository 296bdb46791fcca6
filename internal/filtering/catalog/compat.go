package catalog

import "slices"

// RedirectCompatibility returns the redirect compatibility table in
// definition order.
func (r *Registry) RedirectCompatibility() []CompatibilityTriple {
	return slices.Clone(r.compat)
}

// ScriptletCompatibility derives the same table for scriptlets from their
// dialect aliases.
func (r *Registry) ScriptletCompatibility() []CompatibilityTriple {
	out := make([]CompatibilityTriple, 0, len(r.scriptlets))
	for _, s := range r.scriptlets {
		row := CompatibilityTriple{Canonical: s.Name}
		row.UBO, _ = s.UBOAlias()
		row.ABP, _ = s.ABPAlias()
		out = append(out, row)
	}
	return out
}

// IsCanonicalRedirect reports whether name is a canonical redirect name.
func (r *Registry) IsCanonicalRedirect(name string) bool {
	_, ok := r.redirectByName[name]
	return ok
}

// RedirectToUBO returns the uBO name of a canonical redirect.
func (r *Registry) RedirectToUBO(canonical string) (string, bool) {
	rd, ok := r.redirectByName[canonical]
	if !ok || rd.UBO == "" {
		return "", false
	}
	return rd.UBO, true
}

// RedirectToABP returns the ABP resource name of a canonical redirect.
func (r *Registry) RedirectToABP(canonical string) (string, bool) {
	rd, ok := r.redirectByName[canonical]
	if !ok || rd.ABP == "" {
		return "", false
	}
	return rd.ABP, true
}

// RedirectFromUBO returns the canonical name of a uBO redirect.
func (r *Registry) RedirectFromUBO(name string) (string, bool) {
	canonical, ok := r.fromUBO[name]
	return canonical, ok
}

// RedirectFromABP returns the canonical name of an ABP resource.
func (r *Registry) RedirectFromABP(name string) (string, bool) {
	canonical, ok := r.fromABP[name]
	return canonical, ok
}
