package jsontree

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/shapescape/content-guide/internal/diag"
)

const itemFile = `{
	// item definition
	"format_version": "1.16.100",
	"minecraft:item": {
		"description": {
			"identifier": "ns:sword", /* inline */
			"player_facing": true,
			"description": ["A sword.", "Sharp // not a comment"]
		}
	}
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_StripsComments(t *testing.T) {
	doc, err := Load(writeFile(t, "sword.json", itemFile))
	require.NoError(t, err)

	desc := P("minecraft:item", "description")
	assert.Equal(t, "ns:sword", doc.Get(desc.Append("identifier")).String())
	lines := doc.Get(desc.Append("description")).Array()
	require.Len(t, lines, 2)
	assert.Equal(t, "Sharp // not a comment", lines[1].String())
	assert.Len(t, doc.Bytes(), len(itemFile))
}

func TestLoad_Malformed(t *testing.T) {
	_, err := Load(writeFile(t, "bad.json", `{"a": `))
	require.Error(t, err)
	assert.True(t, errors.Is(err, diag.ErrMalformedJSON))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, diag.ErrIO))
}

func TestStripComments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"line", "{} // x", "{}     "},
		{"block", "{/*a*/}", "{     }"},
		{"block keeps newlines", "/*\n*/1", "  \n  1"},
		{"string untouched", `"//x"`, `"//x"`},
		{"escaped quote", `"a\"//" //c`, `"a\"//"    `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(StripComments([]byte(tt.in))))
		})
	}
}

func TestPath_String(t *testing.T) {
	assert.Equal(t, "minecraft:item.description", P("minecraft:item", "description").String())
	assert.Equal(t, `a\.b.c\*`, P("a.b", "c*").String())
	assert.Equal(t, "", P().String())
}

func TestPath_AppendDoesNotAlias(t *testing.T) {
	base := make(Path, 1, 4)
	base[0] = "root"
	a := base.Append("a")
	b := base.Append("b")
	assert.Equal(t, Path{"root", "a"}, a)
	assert.Equal(t, Path{"root", "b"}, b)
}

func TestGet_KeyWithDot(t *testing.T) {
	doc, err := Parse("x.json", []byte(`{"a.b": {"c": 1}}`))
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc.Get(P("a.b", "c")).Int())
	assert.True(t, doc.Exists(P("a.b")))
	assert.False(t, doc.Exists(P("a")))
}

func TestIsInt(t *testing.T) {
	r := gjson.Parse(`{"i": 3, "f": 3.0, "e": 1e2, "s": "3"}`)
	assert.True(t, IsInt(r.Get("i")))
	assert.False(t, IsInt(r.Get("f")))
	assert.False(t, IsInt(r.Get("e")))
	assert.False(t, IsInt(r.Get("s")))
}

func TestApply_RemovesFieldsKeepsOrder(t *testing.T) {
	doc, err := Parse("x.json", []byte(`{"b": 1, "a": {"x": true, "y": [1, 2]}, "c": "z"}`))
	require.NoError(t, err)

	var patch Patch
	patch.Delete(P("a", "x"))
	patch.Delete(P("c"))

	out, err := doc.Apply(&patch)
	require.NoError(t, err)
	assert.Equal(t, "{\n\t\"b\": 1,\n\t\"a\": {\n\t\t\"y\": [\n\t\t\t1,\n\t\t\t2\n\t\t]\n\t}\n}", string(out))
}

func TestPatch_DeleteDeduplicates(t *testing.T) {
	var patch Patch
	assert.True(t, patch.Empty())
	patch.Delete(P("a"))
	patch.Delete(P("a"))

	other := &Patch{}
	other.Delete(P("b"))
	patch.Merge(other)
	patch.Merge(nil)

	assert.Equal(t, []Path{{"a"}, {"b"}}, patch.Paths())
}

func TestCommit_EmptyPatchDoesNotWrite(t *testing.T) {
	path := writeFile(t, "sword.json", itemFile)
	past := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(path, past, past))

	doc, err := Load(path)
	require.NoError(t, err)

	written, err := Commit(doc, &Patch{})
	require.NoError(t, err)
	assert.False(t, written)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(past))
}

func TestCommit_StripIsIdempotent(t *testing.T) {
	path := writeFile(t, "sword.json", itemFile)
	desc := P("minecraft:item", "description")

	doc, err := Load(path)
	require.NoError(t, err)
	var patch Patch
	patch.Delete(desc.Append("player_facing"))
	patch.Delete(desc.Append("description"))

	written, err := Commit(doc, &patch)
	require.NoError(t, err)
	require.True(t, written)

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.False(t, reloaded.Exists(desc.Append("player_facing")))
	assert.False(t, reloaded.Exists(desc.Append("description")))
	assert.Equal(t, "ns:sword", reloaded.Get(desc.Append("identifier")).String())
	assert.Equal(t, "1.16.100", reloaded.Get(P("format_version")).String())

	// Nothing left to remove: a second pass schedules no deletions.
	var second Patch
	for _, p := range patch.Paths() {
		if reloaded.Exists(p) {
			second.Delete(p)
		}
	}
	written, err = Commit(reloaded, &second)
	require.NoError(t, err)
	assert.False(t, written)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestCommit_PreservesMode(t *testing.T) {
	path := writeFile(t, "a.json", `{"a": 1, "b": 2}`)
	require.NoError(t, os.Chmod(path, 0o600))

	doc, err := Load(path)
	require.NoError(t, err)
	var patch Patch
	patch.Delete(P("a"))
	_, err = Commit(doc, &patch)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n\t\"b\": 2\n}", string(data))
}

func TestTypeName(t *testing.T) {
	r := gjson.Parse(`{"o": {}, "a": [], "s": "", "n": 1, "b": false, "z": null}`)
	for key, want := range map[string]string{
		"o": "object", "a": "array", "s": "string", "n": "number",
		"b": "boolean", "z": "null", "missing": "missing",
	} {
		assert.Equal(t, want, TypeName(r.Get(key)), key)
	}
}
