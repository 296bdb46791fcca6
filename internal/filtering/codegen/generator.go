// Package codegen assembles injectable code units from catalog fragments.
package codegen

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/grafana/sobek"

	"github.com/bnema/scriptlets/internal/filtering/catalog"
)

// ErrInvalidCode is returned by Verify when code does not parse.
var ErrInvalidCode = errors.New("invalid generated code")

const base64Suffix = ";base64"

// Source is the metadata a scriptlet receives as its first argument.
type Source struct {
	Name       string   `json:"name"`
	Args       []string `json:"args"`
	Engine     string   `json:"engine,omitempty"`
	Version    string   `json:"version,omitempty"`
	Verbose    bool     `json:"verbose"`
	RuleText   string   `json:"ruleText,omitempty"`
	DomainName string   `json:"domainName,omitempty"`
}

// Request describes one code unit to generate.
type Request struct {
	Name   string
	Args   []string
	Mode   Mode
	Source Source
}

// Resource is a redirect payload ready to be served.
type Resource struct {
	Name        string
	ContentType string
	Data        []byte
}

// Generator builds code units from a catalog.
type Generator struct {
	registry *catalog.Registry
}

// NewGenerator creates a generator bound to registry.
func NewGenerator(registry *catalog.Registry) *Generator {
	return &Generator{registry: registry}
}

// Generate returns the packaged code for req, or false when the scriptlet
// name does not resolve.
func (g *Generator) Generate(req Request) (string, bool) {
	s, ok := g.registry.FindScriptlet(req.Name)
	if !ok {
		return "", false
	}
	code, ok := g.assemble(s)
	if !ok {
		return "", false
	}

	switch req.Mode {
	case ModeExtension:
		source := req.Source
		if source.Name == "" {
			source.Name = req.Name
		}
		args := req.Args
		if args == nil {
			args = []string{}
		}
		if source.Args == nil {
			source.Args = args
		}
		sourceJSON, err := marshalLiteral(source)
		if err != nil {
			return "", false
		}
		argsJSON, err := marshalLiteral(args)
		if err != nil {
			return "", false
		}
		return "(function(source, args){\n" + code + "\n})(" + sourceJSON + ", " + argsJSON + ");", true
	case ModeTest:
		return "(function(source, args){\n" + code + "\n})", true
	default:
		return "function(source, args){\n" + code + "\n}", true
	}
}

// assemble concatenates the body, each dependency in declared order and the
// call trailer.
func (g *Generator) assemble(s catalog.Scriptlet) (string, bool) {
	body, ok := g.registry.Fragment(s.Body)
	if !ok {
		return "", false
	}
	parts := make([]string, 0, len(s.Dependencies)+2)
	parts = append(parts, body.Text)
	for _, id := range s.Dependencies {
		dep, ok := g.registry.Fragment(id)
		if !ok {
			return "", false
		}
		parts = append(parts, dep.Text)
	}
	parts = append(parts, trailer(s.Func))
	return strings.Join(parts, "\n"), true
}

func trailer(fn string) string {
	return "var updatedArgs = args ? [].concat(source).concat(args) : [source];\n" +
		"try {\n" +
		"    " + fn + ".apply(this, updatedArgs);\n" +
		"} catch (e) {\n" +
		"    console.log(e);\n" +
		"}"
}

// marshalLiteral encodes v as JSON without HTML escaping, which is also a
// valid JS literal.
func marshalLiteral(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// Redirect returns the payload of the redirect named name. Base64 payloads
// are decoded. Redirects without a bundled payload are reported as missing.
func (g *Generator) Redirect(name string) (Resource, bool) {
	rd, ok := g.registry.FindRedirect(name)
	if !ok || rd.Body == "" {
		return Resource{}, false
	}
	body, ok := g.registry.Fragment(rd.Body)
	if !ok {
		return Resource{}, false
	}

	res := Resource{Name: rd.Name, ContentType: rd.ContentType, Data: []byte(body.Text)}
	if contentType, found := strings.CutSuffix(rd.ContentType, base64Suffix); found {
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(body.Text))
		if err != nil {
			return Resource{}, false
		}
		res.ContentType = contentType
		res.Data = data
	}
	return res, true
}

// Verify parses code with a JS parser. Bare function expressions are wrapped
// in parentheses first so they parse as expressions.
func Verify(code string) error {
	src := code
	if strings.HasPrefix(src, "function") {
		src = "(" + src + ")"
	}
	if _, err := sobek.Compile("scriptlet.js", src, false); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCode, err)
	}
	return nil
}
