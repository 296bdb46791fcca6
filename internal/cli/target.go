package cli

import (
	"fmt"

	"github.com/bnema/scriptlets/internal/filtering"
	"github.com/bnema/scriptlets/internal/filtering/dialect"
)

// ParseTarget maps a --to value to a conversion target. Only canonical and
// uBO output is supported.
func ParseTarget(s string) (dialect.Tag, error) {
	tag, ok := dialect.ParseTag(s)
	if !ok || (tag != dialect.Canonical && tag != dialect.UBO) {
		return dialect.Unknown, fmt.Errorf("%w: %q", filtering.ErrUnsupportedTarget, s)
	}
	return tag, nil
}
