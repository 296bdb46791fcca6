// Package parser tokenizes canonical scriptlet rules into a name and its
// positional arguments.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/scriptlets/internal/filtering/textutil"
)

// ScriptletMask separates the domain part of a canonical rule from the call.
const ScriptletMask = "#//scriptlet"

const escapeChar = '\\'

// ErrMalformedInvocation is returned when a rule cannot be tokenized into a
// closed, properly quoted argument list.
var ErrMalformedInvocation = errors.New("rule is not a well-formed scriptlet invocation")

// MalformedError carries the rule and position where tokenizing failed.
type MalformedError struct {
	Rule   string
	Pos    int
	Reason string
}

func (e *MalformedError) Error() string {
	if e.Pos < 0 {
		return fmt.Sprintf("%s: %s: %q", ErrMalformedInvocation, e.Reason, e.Rule)
	}
	return fmt.Sprintf("%s: %s at position %d: %q", ErrMalformedInvocation, e.Reason, e.Pos, e.Rule)
}

func (e *MalformedError) Unwrap() error {
	return ErrMalformedInvocation
}

// Invocation is a parsed scriptlet call.
type Invocation struct {
	Name string
	Args []string
}

// String renders the invocation in canonical call syntax.
func (inv Invocation) String() string {
	parts := make([]string, 0, len(inv.Args)+1)
	parts = append(parts, quote(inv.Name))
	for _, arg := range inv.Args {
		parts = append(parts, quote(arg))
	}
	return ScriptletMask + "(" + strings.Join(parts, ", ") + ")"
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}

type state int

const (
	stateOpen state = iota
	stateParam
	stateClosed
)

type tokenizer struct {
	input     string
	quote     byte
	collected strings.Builder
	args      []string
}

// ParseInvocation extracts the scriptlet name and arguments from a canonical
// rule such as example.org#%#//scriptlet('set-constant', 'x', '1').
func ParseInvocation(rule string) (Invocation, error) {
	call := textutil.SubstringAfter(rule, ScriptletMask)
	tk := &tokenizer{input: call}

	st := stateOpen
	for pos := 0; pos < len(call); pos++ {
		var err error
		switch st {
		case stateOpen:
			st, err = tk.open(pos)
		case stateParam:
			st = tk.param(pos)
		case stateClosed:
			err = &MalformedError{Rule: rule, Pos: pos, Reason: "unexpected text after closing parenthesis"}
		}
		if err != nil {
			var me *MalformedError
			if errors.As(err, &me) {
				me.Rule = rule
			}
			return Invocation{}, err
		}
	}

	if st != stateClosed {
		reason := "missing closing parenthesis"
		if st == stateParam {
			reason = "unterminated quoted argument"
		}
		return Invocation{}, &MalformedError{Rule: rule, Pos: -1, Reason: reason}
	}
	if len(tk.args) == 0 {
		return Invocation{}, &MalformedError{Rule: rule, Pos: -1, Reason: "missing scriptlet name"}
	}

	return Invocation{Name: tk.args[0], Args: tk.args[1:]}, nil
}

func (tk *tokenizer) open(pos int) (state, error) {
	switch c := tk.input[pos]; c {
	case ' ', '(', ',':
		return stateOpen, nil
	case '\'', '"':
		tk.quote = c
		return stateParam, nil
	case ')':
		if pos == len(tk.input)-1 {
			return stateClosed, nil
		}
		return stateOpen, nil
	default:
		return stateOpen, &MalformedError{Pos: pos, Reason: fmt.Sprintf("unexpected character %q", c)}
	}
}

func (tk *tokenizer) param(pos int) state {
	c := tk.input[pos]
	if c == tk.quote && (pos == 0 || tk.input[pos-1] != escapeChar) {
		tk.flush()
		return stateOpen
	}
	tk.collected.WriteByte(c)
	return stateParam
}

// flush stores the collected argument, dropping the escape character in
// front of any escaped active delimiter.
func (tk *tokenizer) flush() {
	arg := tk.collected.String()
	arg = strings.ReplaceAll(arg, string(escapeChar)+string(tk.quote), string(tk.quote))
	tk.args = append(tk.args, arg)
	tk.collected.Reset()
	tk.quote = 0
}
