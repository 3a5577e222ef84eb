package jsontree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/sjson"

	"github.com/shapescape/content-guide/internal/diag"
)

// Patch lists fields to remove from a document. The zero value is an empty
// patch ready to use.
type Patch struct {
	deletes []Path
}

// Delete schedules removal of the field at p. Scheduling the same path twice
// has no extra effect.
func (p *Patch) Delete(path Path) {
	key := path.String()
	for _, existing := range p.deletes {
		if existing.String() == key {
			return
		}
	}
	p.deletes = append(p.deletes, path)
}

// Merge appends other's deletions.
func (p *Patch) Merge(other *Patch) {
	if other == nil {
		return
	}
	for _, path := range other.deletes {
		p.Delete(path)
	}
}

// Empty reports whether the patch removes nothing.
func (p *Patch) Empty() bool {
	return p == nil || len(p.deletes) == 0
}

// Paths returns the scheduled deletions in insertion order.
func (p *Patch) Paths() []Path {
	if p == nil {
		return nil
	}
	out := make([]Path, len(p.deletes))
	copy(out, p.deletes)
	return out
}

// Apply renders the document with the patch's fields removed, pretty-printed
// with tab indentation. Key order of the remaining fields is preserved.
func (d *Document) Apply(patch *Patch) ([]byte, error) {
	out := d.raw
	var err error
	for _, path := range patch.Paths() {
		out, err = sjson.DeleteBytes(out, path.String())
		if err != nil {
			return nil, fmt.Errorf("delete %s: %w", path, err)
		}
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, out); err != nil {
		return nil, diag.Wrap(diag.ErrMalformedJSON, d.path, "compact patched document", err)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, compact.Bytes(), "", "\t"); err != nil {
		return nil, diag.Wrap(diag.ErrMalformedJSON, d.path, "indent patched document", err)
	}
	return pretty.Bytes(), nil
}

// Commit applies patch to doc and replaces the file at doc.Path() with the
// result. An empty patch writes nothing and returns false. The new content is
// written to a temporary file in the same directory and renamed over the
// original, so the file is either fully replaced or left as it was.
func Commit(doc *Document, patch *Patch) (bool, error) {
	if patch.Empty() {
		return false, nil
	}
	data, err := doc.Apply(patch)
	if err != nil {
		return false, err
	}
	if err := writeFileAtomic(doc.path, data); err != nil {
		return false, diag.Wrap(diag.ErrIO, doc.path, "rewrite file", err)
	}
	return true, nil
}

func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	tmpName = ""
	return nil
}
