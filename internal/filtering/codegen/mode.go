package codegen

import "strings"

// Mode selects how generated code is packaged.
type Mode int

const (
	// ModeCoreLibs is a bare function(source, args){...} for library consumers
	// that supply metadata at call time.
	ModeCoreLibs Mode = iota
	// ModeExtension is a self-invoking unit carrying its metadata and
	// arguments as literals.
	ModeExtension
	// ModeTest is a parenthesized anonymous callable that evaluates to the
	// function itself.
	ModeTest
)

func (m Mode) String() string {
	switch m {
	case ModeExtension:
		return "extension"
	case ModeTest:
		return "test"
	default:
		return "corelibs"
	}
}

// ParseMode maps a mode name back to its value.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(s) {
	case "corelibs", "core", "lib":
		return ModeCoreLibs, true
	case "extension", "ext":
		return ModeExtension, true
	case "test":
		return ModeTest, true
	default:
		return ModeCoreLibs, false
	}
}
