package guide

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shapescape/content-guide/internal/testutil"
)

func TestFilterPaths(t *testing.T) {
	p := testutil.NewPack(t)
	for _, rel := range []string{"items/a.json", "items/b.json", "items/deep/c.json", "items/deep/d.txt"} {
		p.WriteBP(rel, "{}")
	}
	root := p.BP("items")
	abs := func(rels ...string) []string {
		out := make([]string, len(rels))
		for i, r := range rels {
			out[i] = filepath.Join(root, filepath.FromSlash(r))
		}
		return out
	}

	tests := []struct {
		name    string
		include []string
		exclude []string
		want    []string
	}{
		{"top level", []string{"*.json"}, nil, abs("a.json", "b.json")},
		{"recursive", []string{"**/*.json"}, nil, abs("a.json", "b.json", "deep/c.json")},
		{"duplicates merged", []string{"*.json", "a.json"}, nil, abs("a.json", "b.json")},
		{"excluded", []string{"**/*"}, []string{"deep/*.txt", "b.json"}, abs("a.json", "deep/c.json")},
		{"directories skipped", []string{"deep"}, nil, abs()},
		{"missing folder", []string{"missing/*.json"}, nil, abs()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FilterPaths(root, tt.include, tt.exclude)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := FilterPaths(root, []string{"[a"}, nil)
	assert.Error(t, err)
}
