package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed catalog.cue
var definitionSource []byte

//go:embed fragments
var fragmentFS embed.FS

// ErrInvalidCatalog is returned when the catalog definitions fail to load.
var ErrInvalidCatalog = errors.New("invalid catalog")

type scriptletDef struct {
	Name    string   `json:"name"`
	Func    string   `json:"func"`
	Aliases []string `json:"aliases"`
	Body    string   `json:"body"`
	Deps    []string `json:"deps"`
}

type redirectDef struct {
	Name        string   `json:"name"`
	UBO         string   `json:"ubo"`
	ABP         string   `json:"abp"`
	Aliases     []string `json:"aliases"`
	Types       []string `json:"types"`
	ContentType string   `json:"contentType"`
	Body        string   `json:"body"`
}

// Registry is the immutable scriptlet and redirect catalog. It is safe for
// concurrent use; nothing mutates it after Load returns.
type Registry struct {
	fragments map[FragmentID]Fragment

	scriptlets      []*Scriptlet
	scriptletByName map[string]*Scriptlet

	redirects      []*Redirect
	redirectByName map[string]*Redirect

	compat  []CompatibilityTriple
	fromUBO map[string]string
	fromABP map[string]string
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)

// Default returns the registry built from the embedded definitions. It is
// loaded once per process.
func Default() (*Registry, error) {
	defaultOnce.Do(func() {
		defaultRegistry, defaultErr = Load(definitionSource, fragmentFS)
	})
	return defaultRegistry, defaultErr
}

// MustDefault is Default for callers that cannot recover from a broken
// embedded catalog.
func MustDefault() *Registry {
	r, err := Default()
	if err != nil {
		panic(err)
	}
	return r
}

// Load compiles and validates CUE definitions and resolves every fragment
// reference against fragments. Fragment IDs are file base names without
// extension and must be unique across the tree.
func Load(definitions []byte, fragments fs.FS) (*Registry, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(definitions, cue.Filename("catalog.cue"))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("%w: compile definitions: %w", ErrInvalidCatalog, err)
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("%w: validate definitions: %w", ErrInvalidCatalog, err)
	}

	var scriptletDefs []scriptletDef
	if err := value.LookupPath(cue.ParsePath("scriptlets")).Decode(&scriptletDefs); err != nil {
		return nil, fmt.Errorf("%w: decode scriptlets: %w", ErrInvalidCatalog, err)
	}
	var redirectDefs []redirectDef
	if err := value.LookupPath(cue.ParsePath("redirects")).Decode(&redirectDefs); err != nil {
		return nil, fmt.Errorf("%w: decode redirects: %w", ErrInvalidCatalog, err)
	}

	arena, err := loadFragments(fragments)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		fragments:       arena,
		scriptletByName: make(map[string]*Scriptlet),
		redirectByName:  make(map[string]*Redirect),
		fromUBO:         make(map[string]string),
		fromABP:         make(map[string]string),
	}
	for _, def := range scriptletDefs {
		if err := r.addScriptlet(def); err != nil {
			return nil, err
		}
	}
	for _, def := range redirectDefs {
		if err := r.addRedirect(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func loadFragments(fsys fs.FS) (map[FragmentID]Fragment, error) {
	arena := make(map[FragmentID]Fragment)
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		base := path.Base(p)
		id := FragmentID(strings.TrimSuffix(base, path.Ext(base)))
		if _, dup := arena[id]; dup {
			return fmt.Errorf("%w: duplicate fragment %q", ErrInvalidCatalog, id)
		}
		arena[id] = Fragment{ID: id, Text: strings.TrimRight(string(data), "\n")}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load fragments: %w", err)
	}
	return arena, nil
}

func (r *Registry) addScriptlet(def scriptletDef) error {
	if _, dup := r.scriptletByName[def.Name]; dup {
		return fmt.Errorf("%w: duplicate scriptlet %q", ErrInvalidCatalog, def.Name)
	}
	body, ok := r.fragments[FragmentID(def.Body)]
	if !ok {
		return fmt.Errorf("%w: scriptlet %q: unknown body fragment %q", ErrInvalidCatalog, def.Name, def.Body)
	}
	if !strings.Contains(body.Text, "function "+def.Func+"(") {
		return fmt.Errorf("%w: scriptlet %q: body does not declare %s", ErrInvalidCatalog, def.Name, def.Func)
	}

	deps := make([]FragmentID, 0, len(def.Deps))
	for _, dep := range def.Deps {
		if _, ok := r.fragments[FragmentID(dep)]; !ok {
			return fmt.Errorf("%w: scriptlet %q: unknown dependency %q", ErrInvalidCatalog, def.Name, dep)
		}
		deps = append(deps, FragmentID(dep))
	}

	s := &Scriptlet{
		Name:         def.Name,
		Func:         def.Func,
		Aliases:      slices.Clone(def.Aliases),
		Body:         body.ID,
		Dependencies: deps,
	}
	r.scriptlets = append(r.scriptlets, s)
	r.scriptletByName[s.Name] = s
	return nil
}

func (r *Registry) addRedirect(def redirectDef) error {
	if _, dup := r.redirectByName[def.Name]; dup {
		return fmt.Errorf("%w: duplicate redirect %q", ErrInvalidCatalog, def.Name)
	}
	if def.Body != "" {
		if _, ok := r.fragments[FragmentID(def.Body)]; !ok {
			return fmt.Errorf("%w: redirect %q: unknown body fragment %q", ErrInvalidCatalog, def.Name, def.Body)
		}
	}

	aliases := slices.Clone(def.Aliases)
	if def.UBO != "" {
		aliases = append(aliases, UBOAliasMarker+def.UBO, def.UBO)
		r.fromUBO[def.UBO] = def.Name
	}
	if def.ABP != "" {
		aliases = append(aliases, ABPAliasMarker+def.ABP)
		r.fromABP[def.ABP] = def.Name
	}

	rd := &Redirect{
		Name:          def.Name,
		Aliases:       aliases,
		UBO:           def.UBO,
		ABP:           def.ABP,
		RequiredTypes: slices.Clone(def.Types),
		ContentType:   def.ContentType,
		Body:          FragmentID(def.Body),
	}
	r.redirects = append(r.redirects, rd)
	r.redirectByName[rd.Name] = rd
	r.compat = append(r.compat, CompatibilityTriple{Canonical: def.Name, UBO: def.UBO, ABP: def.ABP})
	return nil
}

// FindScriptlet resolves name by exact name, then by alias, then by the
// alias obtained by appending the uBO file suffix.
func (r *Registry) FindScriptlet(name string) (Scriptlet, bool) {
	if name == "" {
		return Scriptlet{}, false
	}
	if s, ok := r.scriptletByName[name]; ok {
		return s.clone(), true
	}
	for _, candidate := range []string{name, name + UBOFileSuffix} {
		for _, s := range r.scriptlets {
			if s.HasAlias(candidate) {
				return s.clone(), true
			}
		}
	}
	return Scriptlet{}, false
}

// IsKnownScriptlet reports whether FindScriptlet resolves name.
func (r *Registry) IsKnownScriptlet(name string) bool {
	_, ok := r.FindScriptlet(name)
	return ok
}

// FindRedirect resolves name by exact name, then by alias.
func (r *Registry) FindRedirect(name string) (Redirect, bool) {
	if name == "" {
		return Redirect{}, false
	}
	if rd, ok := r.redirectByName[name]; ok {
		return rd.clone(), true
	}
	for _, rd := range r.redirects {
		if rd.HasAlias(name) {
			return rd.clone(), true
		}
	}
	return Redirect{}, false
}

// IsKnownRedirect reports whether FindRedirect resolves name.
func (r *Registry) IsKnownRedirect(name string) bool {
	_, ok := r.FindRedirect(name)
	return ok
}

// Scriptlets returns every scriptlet in definition order.
func (r *Registry) Scriptlets() []Scriptlet {
	out := make([]Scriptlet, 0, len(r.scriptlets))
	for _, s := range r.scriptlets {
		out = append(out, s.clone())
	}
	return out
}

// Redirects returns every redirect in definition order.
func (r *Registry) Redirects() []Redirect {
	out := make([]Redirect, 0, len(r.redirects))
	for _, rd := range r.redirects {
		out = append(out, rd.clone())
	}
	return out
}

// Fragment returns the code fragment with the given ID.
func (r *Registry) Fragment(id FragmentID) (Fragment, bool) {
	f, ok := r.fragments[id]
	return f, ok
}

func (s *Scriptlet) clone() Scriptlet {
	c := *s
	c.Aliases = slices.Clone(s.Aliases)
	c.Dependencies = slices.Clone(s.Dependencies)
	return c
}

func (rd *Redirect) clone() Redirect {
	c := *rd
	c.Aliases = slices.Clone(rd.Aliases)
	c.RequiredTypes = slices.Clone(rd.RequiredTypes)
	return c
}
