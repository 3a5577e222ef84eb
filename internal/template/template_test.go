package template

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/shapescape/content-guide/internal/diag"
)

type recorder struct {
	errs []error
}

func (r *recorder) Report(err error) { r.errs = append(r.errs, err) }

func echo(_ context.Context, args []gjson.Result) (string, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return "echo:" + strings.Join(parts, "|"), nil
}

func TestParseCall(t *testing.T) {
	tests := []struct {
		name     string
		call     string
		ok       bool
		wantName string
		wantArgs int
	}{
		{"no args", "sound_definitions()", true, "sound_definitions", 0},
		{"string and list", `summarize_items("**/*.json", ["a/*.json", "b.json"])`, true, "summarize_items", 2},
		{"null argument", `list_entities("*.json", null, "trader")`, true, "list_entities", 3},
		{"paren inside string", `insert("a(b).md")`, true, "insert", 1},
		{"missing close", `insert("a.md"`, false, "", 0},
		{"missing open", `insert"a.md")`, false, "", 0},
		{"bad json", `insert('a.md')`, false, "", 0},
		{"trailing comma", `insert("a.md",)`, false, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := ParseCall(tt.call)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.wantName, d.Name)
				assert.Len(t, d.Args, tt.wantArgs)
			}
		})
	}
}

func TestRender(t *testing.T) {
	rep := &recorder{}
	e := New(map[string]Func{"echo": echo}, rep, nil)

	out := e.Render(context.Background(), strings.Join([]string{
		"# Guide",
		":generate: echo(\"a\", 1)  ",
		"text :generate: echo()",
		"",
	}, "\n"))

	assert.Equal(t, "# Guide\necho:a|1\ntext :generate: echo()\n", out)
	assert.Empty(t, rep.errs)
}

func TestRender_UnresolvedDirectivesPassThrough(t *testing.T) {
	rep := &recorder{}
	e := New(map[string]Func{"echo": echo}, rep, nil)

	out := e.Render(context.Background(), ":generate: missing()\n:generate:echo(\n:generate: echo(\"ok\")")

	assert.Equal(t, ":generate: missing()\n:generate:echo(\necho:ok", out)
	require.Len(t, rep.errs, 2)
	for _, err := range rep.errs {
		assert.True(t, errors.Is(err, diag.ErrUnresolvedDirective))
	}
	assert.Contains(t, rep.errs[0].Error(), "Unknown function in TEMPLATE.md file.\n\tLine: 1\n\tFunction: missing()")
	assert.Contains(t, rep.errs[1].Error(), "Invalid function format in TEMPLATE.md file.\n\tLine: 2")
}

func TestRender_FunctionErrorRendersEmpty(t *testing.T) {
	rep := &recorder{}
	e := New(map[string]Func{
		"fail": func(context.Context, []gjson.Result) (string, error) { return "partial", errors.New("bad argument") },
	}, rep, nil)

	out := e.Render(context.Background(), "before\n:generate: fail()\nafter")

	assert.Equal(t, "before\n\nafter", out)
	require.Len(t, rep.errs, 1)
	assert.Contains(t, rep.errs[0].Error(), "bad argument")
}

func TestDirective_String(t *testing.T) {
	d, ok := ParseCall(`summarize_items("*.json", null)`)
	require.True(t, ok)
	assert.Equal(t, `summarize_items("*.json", null)`, d.String())
}
