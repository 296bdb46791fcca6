package filtering

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownScriptlet indicates a rule names a scriptlet missing from the catalog
	ErrUnknownScriptlet = errors.New("unknown scriptlet")

	// ErrUnsupportedTarget indicates a compile target other than canonical or uBO
	ErrUnsupportedTarget = errors.New("unsupported target dialect")

	// ErrCompileAborted indicates strict compilation stopped at a failing line
	ErrCompileAborted = errors.New("compile aborted")

	// ErrCacheCorrupted indicates corrupted cache data
	ErrCacheCorrupted = errors.New("cache corrupted")

	// ErrCacheMiss indicates no cached compilation exists for a key
	ErrCacheMiss = errors.New("cache miss")
)

// LineError records why one line of a filter list failed to convert.
// Reason survives serialization, Err does not.
type LineError struct {
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

func newLineError(line int, text string, err error) *LineError {
	return &LineError{Line: line, Text: text, Reason: err.Error(), Err: err}
}

func (e *LineError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
