// Package filtering ties the scriptlet catalog, the dialect converters and the
// code generator together for filter-list consumers.
package filtering

import (
	"fmt"

	"github.com/bnema/scriptlets/internal/filtering/catalog"
	"github.com/bnema/scriptlets/internal/filtering/codegen"
	"github.com/bnema/scriptlets/internal/filtering/converter"
	"github.com/bnema/scriptlets/internal/filtering/dialect"
	"github.com/bnema/scriptlets/internal/filtering/parser"
)

// EntryKind tells which catalog table an entry came from.
type EntryKind int

const (
	EntryScriptlet EntryKind = iota
	EntryRedirect
)

func (k EntryKind) String() string {
	if k == EntryRedirect {
		return "redirect"
	}
	return "scriptlet"
}

// CatalogEntry is a resolved scriptlet or redirect. Exactly one of Scriptlet
// and Redirect is set, matching Kind.
type CatalogEntry struct {
	Kind      EntryKind
	Scriptlet *catalog.Scriptlet
	Redirect  *catalog.Redirect
}

// Name returns the canonical name of the entry.
func (e CatalogEntry) Name() string {
	if e.Kind == EntryRedirect {
		return e.Redirect.Name
	}
	return e.Scriptlet.Name
}

// Engine is the entry point for classifying, validating, converting and
// packaging rules. It is immutable and safe for concurrent use.
type Engine struct {
	registry  *catalog.Registry
	converter *converter.Converter
	validator *dialect.Validator
	generator *codegen.Generator
	index     searchIndex
}

// NewEngine wires an engine around registry.
func NewEngine(registry *catalog.Registry) *Engine {
	conv := converter.NewConverter(registry)
	return &Engine{
		registry:  registry,
		converter: conv,
		validator: dialect.NewValidator(registry, conv),
		generator: codegen.NewGenerator(registry),
		index:     newSearchIndex(registry),
	}
}

// NewDefaultEngine wires an engine around the embedded catalog.
func NewDefaultEngine() (*Engine, error) {
	registry, err := catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return NewEngine(registry), nil
}

// Registry returns the catalog the engine resolves names against.
func (e *Engine) Registry() *catalog.Registry {
	return e.registry
}

// Converter returns the engine's rule converter.
func (e *Engine) Converter() *converter.Converter {
	return e.converter
}

// ClassifyRule returns the dialect of a scriptlet or redirect rule.
func (e *Engine) ClassifyRule(rule string) dialect.Tag {
	if tag := dialect.Classify(rule); tag != dialect.Unknown {
		return tag
	}
	return e.validator.Redirects().Classify(rule)
}

// IsValidInvocationName reports whether name resolves to a catalog scriptlet.
func (e *Engine) IsValidInvocationName(name string) bool {
	return e.validator.IsValidInvocationName(name)
}

// IsValidRule reports whether every canonical rule produced from the
// scriptlet rule names a known scriptlet.
func (e *Engine) IsValidRule(rule string) bool {
	return e.validator.IsValidRule(rule)
}

// IsValidRedirectRule reports whether rule is a resolvable redirect rule of
// any dialect.
func (e *Engine) IsValidRedirectRule(rule string) bool {
	return e.validator.IsValidRedirectRule(rule)
}

// FindCatalogEntry resolves name against scriptlets first, then redirects.
func (e *Engine) FindCatalogEntry(name string) (CatalogEntry, bool) {
	if s, ok := e.registry.FindScriptlet(name); ok {
		return CatalogEntry{Kind: EntryScriptlet, Scriptlet: &s}, true
	}
	if rd, ok := e.registry.FindRedirect(name); ok {
		return CatalogEntry{Kind: EntryRedirect, Redirect: &rd}, true
	}
	return CatalogEntry{}, false
}

// ConvertToCanonical converts a scriptlet or redirect rule of any dialect to
// canonical rules.
func (e *Engine) ConvertToCanonical(rule string) ([]string, error) {
	return e.converter.ToCanonical(rule)
}

// ConvertCanonicalToDialectB converts a canonical rule to uBO syntax.
func (e *Engine) ConvertCanonicalToDialectB(rule string) (string, error) {
	return e.converter.ToUBO(rule)
}

// GenerateInvocationCode packages the named scriptlet. It reports false for
// unknown names.
func (e *Engine) GenerateInvocationCode(req codegen.Request) (string, bool) {
	return e.generator.Generate(req)
}

// GenerateForRule converts rule to canonical form and packages every
// scriptlet it invokes. Each unit records its canonical rule text unless
// source already carries one.
func (e *Engine) GenerateForRule(rule string, mode codegen.Mode, source codegen.Source) ([]string, error) {
	rules, err := e.converter.ScriptletToCanonical(rule)
	if err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(rules))
	for _, r := range rules {
		inv, err := parser.ParseInvocation(r)
		if err != nil {
			return nil, err
		}
		src := source
		src.Name = inv.Name
		src.Args = inv.Args
		if src.RuleText == "" {
			src.RuleText = r
		}
		code, ok := e.generator.Generate(codegen.Request{Name: inv.Name, Args: inv.Args, Mode: mode, Source: src})
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownScriptlet, inv.Name)
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// RedirectResource returns the payload served for a redirect name.
func (e *Engine) RedirectResource(name string) (codegen.Resource, bool) {
	return e.generator.Redirect(name)
}
