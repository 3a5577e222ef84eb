// Package testutil builds add-on project trees for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// RunID is a fixed generation run ID for tests that compare output.
const RunID = "00000000-0000-0000-0000-000000000001"

// Pack is a project directory with BP, RP and data folders under a test's
// temp dir. Paths passed to its methods are slash separated and relative to
// the respective folder.
type Pack struct {
	t    testing.TB
	Root string
}

// NewPack creates an empty project. The directory is removed when the test
// ends.
func NewPack(t testing.TB) *Pack {
	t.Helper()
	p := &Pack{t: t, Root: t.TempDir()}
	for _, dir := range []string{p.BPRoot(), p.RPRoot(), p.DataRoot()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("create %s: %v", dir, err)
		}
	}
	return p
}

// BPRoot returns the behavior pack folder.
func (p *Pack) BPRoot() string { return filepath.Join(p.Root, "BP") }

// RPRoot returns the resource pack folder.
func (p *Pack) RPRoot() string { return filepath.Join(p.Root, "RP") }

// DataRoot returns the generator data folder.
func (p *Pack) DataRoot() string { return filepath.Join(p.Root, "data") }

// BP returns the absolute path of rel inside the behavior pack.
func (p *Pack) BP(rel string) string { return filepath.Join(p.BPRoot(), filepath.FromSlash(rel)) }

// RP returns the absolute path of rel inside the resource pack.
func (p *Pack) RP(rel string) string { return filepath.Join(p.RPRoot(), filepath.FromSlash(rel)) }

// Data returns the absolute path of rel inside the data folder.
func (p *Pack) Data(rel string) string { return filepath.Join(p.DataRoot(), filepath.FromSlash(rel)) }

// WriteBP writes content to rel inside the behavior pack and returns the
// absolute path.
func (p *Pack) WriteBP(rel, content string) string {
	p.t.Helper()
	return p.write(p.BP(rel), content)
}

// WriteRP writes content to rel inside the resource pack.
func (p *Pack) WriteRP(rel, content string) string {
	p.t.Helper()
	return p.write(p.RP(rel), content)
}

// WriteData writes content to rel inside the data folder.
func (p *Pack) WriteData(rel, content string) string {
	p.t.Helper()
	return p.write(p.Data(rel), content)
}

// Read returns the content of an absolute path written by the pack.
func (p *Pack) Read(path string) string {
	p.t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		p.t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func (p *Pack) write(path, content string) string {
	p.t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		p.t.Fatalf("create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		p.t.Fatalf("write %s: %v", path, err)
	}
	return path
}
