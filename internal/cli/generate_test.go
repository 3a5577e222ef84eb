package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shapescape/content-guide/internal/testutil"
)

// execute runs the cgg command tree with args and returns stdout, stderr
// and the command error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// packArgs points the global path flags at p.
func packArgs(p *testutil.Pack, args ...string) []string {
	return append([]string{
		"--bp", p.BPRoot(),
		"--rp", p.RPRoot(),
		"--data", p.DataRoot(),
	}, args...)
}

func writeGuidePack(p *testutil.Pack) string {
	p.WriteBP("recipes/sword.json", `{
		"minecraft:recipe_shaped": {
			"description": {"identifier": "ns:sword"},
			"pattern": ["#", "#", "|"],
			"key": {"#": {"item": "ns:gem"}, "|": {"item": "minecraft:stick"}},
			"result": {"item": "ns:sword"}
		}
	}`)
	p.WriteData("TEMPLATE.md", "# Guide\n:generate: list_items(\"*.json\")")
	return p.WriteBP("items/sword.json", `{"minecraft:item": {"description": {"identifier": "ns:sword", "description": "A sharp sword."}}}`)
}

func TestGenerate(t *testing.T) {
	p := testutil.NewPack(t)
	item := writeGuidePack(p)

	stdout, _, err := execute(t, packArgs(p, "generate")...)
	require.NoError(t, err)

	output := p.Data("OUTPUT.md")
	assert.Contains(t, stdout, "✓ Generated "+output)
	assert.Contains(t, stdout, "Removed generator fields from 1 file(s)")
	assert.Equal(t, "# Guide\n- ns:sword", p.Read(output))
	assert.NotContains(t, p.Read(item), "A sharp sword.")
}

func TestGenerate_JSON(t *testing.T) {
	p := testutil.NewPack(t)
	item := writeGuidePack(p)
	output := filepath.Join(p.Root, "out", "guide.md")

	stdout, _, err := execute(t, packArgs(p, "--format", "json", "--output", output, "--keep-custom-fields", "generate")...)
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		RunID  string         `json:"run_id"`
		Data   GenerateResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Len(t, resp.RunID, 36)
	assert.Equal(t, output, resp.Data.Output)
	assert.Equal(t, p.Data("TEMPLATE.md"), resp.Data.Template)
	assert.Empty(t, resp.Data.Rewritten)
	assert.Empty(t, resp.Data.Diagnostics)
	assert.FileExists(t, output)
	assert.Contains(t, p.Read(item), "A sharp sword.")
}

func TestGenerate_Diagnostics(t *testing.T) {
	p := testutil.NewPack(t)
	p.WriteBP("items/nameless.json", `{"minecraft:item": {"description": {"description": "No identifier."}}}`)
	p.WriteData("TEMPLATE.md", ":generate: list_items(\"*.json\")\n:generate: no_such_function()")

	stdout, stderr, err := execute(t, packArgs(p, "generate")...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "2 diagnostic(s) reported")
	assert.Contains(t, stderr, "nameless.json")
	assert.Equal(t, "\n:generate: no_such_function()", p.Read(p.Data("OUTPUT.md")))

	_, _, err = execute(t, packArgs(p, "--strict", "generate")...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeStrict)
}

func TestGenerate_MissingTemplate(t *testing.T) {
	p := testutil.NewPack(t)

	stdout, _, err := execute(t, packArgs(p, "generate")...)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E004]: reading template")
	assert.NoFileExists(t, p.Data("OUTPUT.md"))
}

func TestGenerate_BadConfig(t *testing.T) {
	p := testutil.NewPack(t)
	cfg := filepath.Join(p.Root, "cgg.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("unknown_field: 1\n"), 0o644))

	stdout, _, err := execute(t, "--config", cfg, "--format", "json", "generate")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeConfig, resp.Error.Code)
}
