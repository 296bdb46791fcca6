package converter

import (
	"strings"

	"github.com/bnema/scriptlets/internal/filtering/catalog"
	"github.com/bnema/scriptlets/internal/filtering/dialect"
	"github.com/bnema/scriptlets/internal/filtering/parser"
	"github.com/bnema/scriptlets/internal/filtering/textutil"
)

const (
	canonicalTemplate          = "${domains}" + dialect.CanonicalScriptletMask + "(${args})"
	canonicalExceptionTemplate = "${domains}" + dialect.CanonicalScriptletExceptionMask + "(${args})"
	uboTemplate                = "${domains}" + dialect.UBOScriptletMask + "${args})"
	uboExceptionTemplate       = "${domains}" + dialect.UBOScriptletExceptionMask + "${args})"

	argSeparator = ", "

	// uBO substitutes for canonical argument values it spells differently.
	uboEmptyString     = "''"
	uboMatchAllPattern = "/^/"
)

// Scriptlets whose selector argument may itself contain escaped commas.
var selectorScriptlets = map[string]bool{
	"remove-attr":  true,
	"remove-class": true,
}

// ScriptletToCanonical converts a scriptlet rule of any dialect to canonical
// rules. Comments and canonical rules are returned as is.
func (c *Converter) ScriptletToCanonical(rule string) ([]string, error) {
	switch dialect.Classify(rule) {
	case dialect.Comment, dialect.Canonical:
		return []string{rule}, nil
	case dialect.UBO:
		converted, err := c.UBOScriptletToCanonical(rule)
		if err != nil {
			return nil, err
		}
		return []string{converted}, nil
	case dialect.ABP:
		return c.ABPSnippetToCanonical(rule)
	default:
		return nil, unsupported(rule, dialect.Unknown, dialect.Canonical, "not a scriptlet rule")
	}
}

// UBOScriptletToCanonical converts example.org##+js(name, arg) into
// example.org#%#//scriptlet('ubo-name.js', 'arg').
func (c *Converter) UBOScriptletToCanonical(rule string) (string, error) {
	loc := dialect.UBOScriptletMaskRe.FindStringIndex(rule)
	if loc == nil {
		return "", unsupported(rule, dialect.Unknown, dialect.Canonical, "missing uBO scriptlet marker")
	}
	mask := rule[loc[0]:loc[1]]
	rest := rule[loc[1]:]
	end := strings.LastIndex(rest, ")")
	if end == -1 {
		return "", unsupported(rule, dialect.UBO, dialect.Canonical, "unterminated argument list")
	}

	args := splitUBOArgs(rest[:end])
	if args[0] == "" {
		return "", unsupported(rule, dialect.UBO, dialect.Canonical, "missing scriptlet name")
	}
	name := args[0]
	if !strings.HasSuffix(name, catalog.UBOFileSuffix) {
		name += catalog.UBOFileSuffix
	}
	args[0] = catalog.UBOAliasMarker + name

	if s, ok := c.registry.FindScriptlet(args[0]); ok && selectorScriptlets[s.Name] && len(args) > 2 {
		selector := strings.Join(args[2:], argSeparator)
		args = append(args[:2], strings.ReplaceAll(selector, `\,`, ","))
	}

	template := canonicalTemplate
	if strings.Contains(mask, "@") {
		template = canonicalExceptionTemplate
	}
	return render(template, rule[:loc[0]], wrapAll(args)), nil
}

// splitUBOArgs splits on ", " and falls back to a bare comma when the rule
// does not use spaced separators.
func splitUBOArgs(s string) []string {
	args := strings.Split(s, argSeparator)
	if len(args) == 1 {
		args = strings.Split(s, ",")
	}
	for i, arg := range args {
		args[i] = strings.TrimSpace(arg)
	}
	return args
}

// ABPSnippetToCanonical converts every ";" separated snippet of an ABP rule
// into its own canonical rule.
func (c *Converter) ABPSnippetToCanonical(rule string) ([]string, error) {
	mask := dialect.ABPSnippetMask
	template := canonicalTemplate
	if strings.Contains(rule, dialect.ABPSnippetExceptionMask) {
		mask = dialect.ABPSnippetExceptionMask
		template = canonicalExceptionTemplate
	}
	idx := strings.Index(rule, mask)
	if idx == -1 {
		return nil, unsupported(rule, dialect.Unknown, dialect.Canonical, "missing ABP snippet marker")
	}
	domains := rule[:idx]

	var out []string
	for _, snippet := range textutil.SplitOutsideQuotes(rule[idx+len(mask):], ';') {
		tokens := textutil.Sentences(snippet)
		if len(tokens) == 0 {
			continue
		}
		tokens[0] = catalog.ABPAliasMarker + tokens[0]
		out = append(out, render(template, domains, wrapAll(tokens)))
	}
	if len(out) == 0 {
		return nil, unsupported(rule, dialect.ABP, dialect.Canonical, "no snippets")
	}
	return out, nil
}

// CanonicalScriptletToUBO converts a canonical scriptlet rule to ##+js()
// syntax. Scriptlets without a uBO alias cannot be converted.
func (c *Converter) CanonicalScriptletToUBO(rule string) (string, error) {
	inv, err := parser.ParseInvocation(rule)
	if err != nil {
		return "", &ConversionError{Rule: rule, From: dialect.Canonical, To: dialect.UBO, Err: err}
	}
	s, ok := c.registry.FindScriptlet(inv.Name)
	if !ok {
		return "", unknownName(rule, dialect.Canonical, dialect.UBO, inv.Name)
	}
	uboName, ok := uboNameFor(inv.Name, s)
	if !ok {
		return "", unsupported(rule, dialect.Canonical, dialect.UBO, "scriptlet %q has no uBO equivalent", s.Name)
	}

	args := inv.Args
	switch s.Name {
	case "set-constant":
		if len(args) > 1 && (args[1] == "" || args[1] == "emptyStr") {
			args[1] = uboEmptyString
		}
	case "prevent-fetch":
		if len(args) > 0 && (args[0] == "" || args[0] == "*") {
			args[0] = uboMatchAllPattern
		}
	case "remove-attr", "remove-class":
		if len(args) > 1 {
			args[1] = strings.ReplaceAll(args[1], ",", `\,`)
		}
	}

	template := uboTemplate
	domains := textutil.SubstringBefore(rule, dialect.CanonicalScriptletMask)
	if strings.Contains(rule, dialect.CanonicalScriptletExceptionMask) {
		template = uboExceptionTemplate
		domains = textutil.SubstringBefore(rule, dialect.CanonicalScriptletExceptionMask)
	}
	return render(template, domains, append([]string{uboName}, args...)), nil
}

// uboNameFor keeps the uBO spelling the rule already uses and otherwise
// picks the scriptlet's primary uBO alias.
func uboNameFor(name string, s catalog.Scriptlet) (string, bool) {
	if strings.HasPrefix(name, catalog.UBOAliasMarker) {
		return strings.TrimSuffix(strings.TrimPrefix(name, catalog.UBOAliasMarker), catalog.UBOFileSuffix), true
	}
	return s.UBOAlias()
}

func wrapAll(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		out[i] = textutil.WrapInSingleQuotes(arg)
	}
	return out
}

func render(template, domains string, args []string) string {
	return textutil.ReplacePlaceholders(template, map[string]string{
		"domains": domains,
		"args":    strings.Join(args, argSeparator),
	})
}
