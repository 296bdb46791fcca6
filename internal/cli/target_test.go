package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/scriptlets/internal/filtering"
	"github.com/bnema/scriptlets/internal/filtering/dialect"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in      string
		want    dialect.Tag
		wantErr bool
	}{
		{"canonical", dialect.Canonical, false},
		{"adguard", dialect.Canonical, false},
		{"ubo", dialect.UBO, false},
		{"uBlock", dialect.UBO, false},
		{"abp", dialect.Unknown, true},
		{"comment", dialect.Unknown, true},
		{"", dialect.Unknown, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTarget(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, filtering.ErrUnsupportedTarget))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
