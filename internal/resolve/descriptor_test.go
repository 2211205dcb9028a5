// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pmid-pdf/pkg/types"
)

func TestReadDescriptor(t *testing.T) {
	tests := []struct {
		name   string
		files  map[string]string
		want   *descriptor
		errMsg string
	}{
		{
			name: "no sidecar",
		},
		{
			name:  "json wins over yaml",
			files: map[string]string{"metadata.json": `{"title":"From JSON"}`, "metadata.yaml": "title: From YAML\n"},
			want:  &descriptor{Title: types.String("From JSON")},
		},
		{
			name:  "yaml fallback",
			files: map[string]string{"metadata.yaml": "title: From YAML\nauthors: [A, B]\n"},
			want:  &descriptor{Title: types.String("From YAML"), Authors: types.String("A, B")},
		},
		{
			name:  "wrongly typed fields are ignored",
			files: map[string]string{"metadata.json": `{"title": 7, "year": "soon", "doi": "  "}`},
			want:  &descriptor{},
		},
		{
			name:  "null document",
			files: map[string]string{"metadata.json": `null`},
			want:  &descriptor{},
		},
		{
			name:   "truncated json",
			files:  map[string]string{"metadata.json": `{"title": `},
			errMsg: "parsing metadata.json",
		},
		{
			name:   "json array",
			files:  map[string]string{"metadata.json": `["not", "an", "object"]`},
			errMsg: "parsing metadata.json",
		},
		{
			name:   "broken yaml",
			files:  map[string]string{"metadata.yaml": "title: [unclosed\n"},
			errMsg: "parsing metadata.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, body := range tt.files {
				require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
			}

			got, err := readDescriptor(dir)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestYearField(t *testing.T) {
	tests := []struct {
		in   any
		want *int
	}{
		{in: 2023, want: types.Int(2023)},
		{in: float64(1999), want: types.Int(1999)},
		{in: " 2010 ", want: types.Int(2010)},
		{in: 1999.5, want: nil},
		{in: "n.d.", want: nil},
		{in: 0, want: nil},
		{in: nil, want: nil},
		{in: true, want: nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, yearField(tt.in), "input %v", tt.in)
	}
}

func TestAuthorsField(t *testing.T) {
	assert.Equal(t, types.String("Solo Author"), authorsField("Solo Author"))
	assert.Equal(t, types.String("A, C"), authorsField([]any{"A", 3, " ", "C"}))
	assert.Nil(t, authorsField([]any{}))
	assert.Nil(t, authorsField(42))
}
