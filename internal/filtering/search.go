package filtering

import (
	"github.com/sahilm/fuzzy"

	"github.com/bnema/scriptlets/internal/filtering/catalog"
)

// SearchResult is a catalog entry found by SearchCatalog together with the
// name or alias that matched.
type SearchResult struct {
	Entry   CatalogEntry
	Matched string
	Score   int
}

type searchKey struct {
	text string
	kind EntryKind
	name string
}

// searchIndex lists every name and alias of the catalog for fuzzy matching.
type searchIndex []searchKey

func (s searchIndex) String(i int) string { return s[i].text }
func (s searchIndex) Len() int            { return len(s) }

func newSearchIndex(registry *catalog.Registry) searchIndex {
	var idx searchIndex
	for _, s := range registry.Scriptlets() {
		idx = append(idx, searchKey{text: s.Name, kind: EntryScriptlet, name: s.Name})
		for _, alias := range s.Aliases {
			idx = append(idx, searchKey{text: alias, kind: EntryScriptlet, name: s.Name})
		}
	}
	for _, rd := range registry.Redirects() {
		idx = append(idx, searchKey{text: rd.Name, kind: EntryRedirect, name: rd.Name})
		for _, alias := range append([]string{rd.UBO, rd.ABP}, rd.Aliases...) {
			if alias != "" {
				idx = append(idx, searchKey{text: alias, kind: EntryRedirect, name: rd.Name})
			}
		}
	}
	return idx
}

// SearchCatalog fuzzy-matches query against every scriptlet and redirect
// name and alias, best match first. Each entry appears once, at its best
// scoring name. A limit of zero or less returns every match.
func (e *Engine) SearchCatalog(query string, limit int) []SearchResult {
	matches := fuzzy.FindFrom(query, e.index)

	seen := make(map[searchKey]bool)
	var results []SearchResult
	for _, m := range matches {
		key := e.index[m.Index]
		id := searchKey{kind: key.kind, name: key.name}
		if seen[id] {
			continue
		}
		seen[id] = true

		entry, ok := e.entry(key.kind, key.name)
		if !ok {
			continue
		}
		results = append(results, SearchResult{Entry: entry, Matched: m.Str, Score: m.Score})
		if limit > 0 && len(results) == limit {
			break
		}
	}
	return results
}

func (e *Engine) entry(kind EntryKind, name string) (CatalogEntry, bool) {
	if kind == EntryRedirect {
		rd, ok := e.registry.FindRedirect(name)
		return CatalogEntry{Kind: EntryRedirect, Redirect: &rd}, ok
	}
	s, ok := e.registry.FindScriptlet(name)
	return CatalogEntry{Kind: EntryScriptlet, Scriptlet: &s}, ok
}
