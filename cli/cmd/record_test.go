package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRecord(t *testing.T) {
	tests := []struct {
		name    string
		sources []string
		want    any
	}{
		{
			name:    "no sources",
			sources: nil,
			want:    nil,
		},
		{
			name:    "single mapping",
			sources: []string{"name: Ada\nrole: admin\n"},
			want:    map[string]any{"name": "Ada", "role": "admin"},
		},
		{
			name:    "later documents win",
			sources: []string{"name: Ada\nrole: admin\n---\nrole: guest\n", `{"lang": "en"}`},
			want:    map[string]any{"name": "Ada", "role": "guest", "lang": "en"},
		},
		{
			name:    "scalar replaces",
			sources: []string{"name: Ada\n", "just text\n"},
			want:    "just text",
		},
		{
			name:    "mapping after scalar",
			sources: []string{"[a, b]\n", "name: Ada\n"},
			want:    map[string]any{"name": "Ada"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paths := make([]string, len(tt.sources))
			for i, src := range tt.sources {
				paths[i] = writeTemp(t, "record.yaml", src)
			}

			got, err := loadRecord(WithSourceFiles(context.Background(), paths))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadRecord_Invalid(t *testing.T) {
	path := writeTemp(t, "bad.yaml", "a: [unclosed\n")

	_, err := loadRecord(WithSourceFiles(context.Background(), []string{path}))
	require.ErrorIs(t, err, ErrReadRecord)
}

func TestMergeRecord(t *testing.T) {
	dst := map[string]any{"a": "1"}

	merged := mergeRecord(dst, map[string]any{"b": "2"})
	assert.Equal(t, map[string]any{"a": "1", "b": "2"}, merged)
	assert.Equal(t, map[string]any{"a": "1"}, dst)

	assert.Equal(t, "x", mergeRecord(dst, "x"))
	assert.Equal(t, map[string]any{"b": "2"}, mergeRecord(nil, map[string]any{"b": "2"}))
}
