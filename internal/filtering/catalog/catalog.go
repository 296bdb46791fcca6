// Package catalog holds the static scriptlet and redirect definitions, the
// code fragments they are built from and the redirect compatibility table
// between rule dialects.
package catalog

import (
	"slices"
	"strings"
)

// Alias conventions used by the non-canonical dialects.
const (
	UBOAliasMarker = "ubo-"
	ABPAliasMarker = "abp-"
	UBOFileSuffix  = ".js"
)

// EmptyRedirect is the redirect uBO infers no content type for.
const EmptyRedirect = "empty"

// SourceTypes are the request types a redirect modifier can be restricted to.
var SourceTypes = []string{
	"image",
	"media",
	"subdocument",
	"stylesheet",
	"script",
	"xmlhttprequest",
	"other",
}

// IsSourceType reports whether s is one of SourceTypes.
func IsSourceType(s string) bool {
	return slices.Contains(SourceTypes, s)
}

// FragmentID names a code fragment in the registry arena.
type FragmentID string

// Fragment is an opaque, pre-written piece of code or payload.
type Fragment struct {
	ID   FragmentID
	Text string
}

// Scriptlet is a named behavior-override unit.
type Scriptlet struct {
	Name         string
	Func         string
	Aliases      []string
	Body         FragmentID
	Dependencies []FragmentID
}

// HasAlias reports whether alias is one of the scriptlet's aliases.
func (s *Scriptlet) HasAlias(alias string) bool {
	return slices.Contains(s.Aliases, alias)
}

// UBOAlias returns the uBO name of the scriptlet, without marker and file
// suffix. The first alias carrying the uBO marker wins.
func (s *Scriptlet) UBOAlias() (string, bool) {
	for _, alias := range s.Aliases {
		if !strings.HasPrefix(alias, UBOAliasMarker) {
			continue
		}
		name := strings.TrimPrefix(alias, UBOAliasMarker)
		return strings.TrimSuffix(name, UBOFileSuffix), true
	}
	return "", false
}

// ABPAlias returns the ABP snippet name of the scriptlet.
func (s *Scriptlet) ABPAlias() (string, bool) {
	for _, alias := range s.Aliases {
		if strings.HasPrefix(alias, ABPAliasMarker) {
			return strings.TrimPrefix(alias, ABPAliasMarker), true
		}
	}
	return "", false
}

// Redirect is a named stand-in resource.
type Redirect struct {
	Name          string
	Aliases       []string
	UBO           string
	ABP           string
	RequiredTypes []string
	ContentType   string
	Body          FragmentID
}

// HasAlias reports whether alias is one of the redirect's aliases.
func (r *Redirect) HasAlias(alias string) bool {
	return slices.Contains(r.Aliases, alias)
}

// CompatibilityTriple maps a canonical name to its equivalent in the other
// dialects. An empty field means there is no equivalent.
type CompatibilityTriple struct {
	Canonical string `json:"canonical" yaml:"canonical"`
	UBO       string `json:"ubo,omitempty" yaml:"ubo,omitempty"`
	ABP       string `json:"abp,omitempty" yaml:"abp,omitempty"`
}
