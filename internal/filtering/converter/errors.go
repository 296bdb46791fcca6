package converter

import (
	"errors"
	"fmt"

	"github.com/bnema/scriptlets/internal/filtering/dialect"
)

var (
	// ErrUnsupportedConversion indicates the target dialect has no equivalent
	// for the rule, or the rule is not a convertible scriptlet/redirect rule.
	ErrUnsupportedConversion = errors.New("unsupported conversion")

	// ErrUnknownName indicates a scriptlet or redirect name missing from the
	// catalog. It only appears wrapped inside a conversion error.
	ErrUnknownName = errors.New("unknown name")
)

// ConversionError reports which rule failed to convert and why.
type ConversionError struct {
	Rule string
	From dialect.Tag
	To   dialect.Tag
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %s rule to %s: %v: %q", e.From, e.To, e.Err, e.Rule)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

func unsupported(rule string, from, to dialect.Tag, format string, args ...any) error {
	return &ConversionError{
		Rule: rule,
		From: from,
		To:   to,
		Err:  fmt.Errorf("%w: %s", ErrUnsupportedConversion, fmt.Sprintf(format, args...)),
	}
}

func unknownName(rule string, from, to dialect.Tag, name string) error {
	return &ConversionError{
		Rule: rule,
		From: from,
		To:   to,
		Err:  fmt.Errorf("%w: %w %q", ErrUnsupportedConversion, ErrUnknownName, name),
	}
}
