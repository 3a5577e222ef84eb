package recipe

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/shapescape/content-guide/internal/diag"
	"github.com/shapescape/content-guide/internal/logger"
)

// Reporter receives per-file failures while the index is built.
type Reporter interface {
	Report(err error)
}

// Index maps the true name of an item to the rendered descriptions of the
// recipes that produce it, in directory scan order.
type Index struct {
	fragments map[string][]string
	outputs   []string
}

// Entry is one indexed item and its recipe fragments.
type Entry struct {
	Output    string   `json:"output"`
	Fragments []string `json:"fragments"`
}

// Fragments returns the rendered recipes producing id.
func (ix *Index) Fragments(id string) []string {
	return ix.fragments[id]
}

// Has reports whether any recipe produces id.
func (ix *Index) Has(id string) bool {
	return len(ix.fragments[id]) > 0
}

// Len returns the number of distinct outputs.
func (ix *Index) Len() int {
	return len(ix.outputs)
}

// Entries lists every output in the order it was first seen.
func (ix *Index) Entries() []Entry {
	out := make([]Entry, 0, len(ix.outputs))
	for _, id := range ix.outputs {
		out = append(out, Entry{Output: id, Fragments: ix.fragments[id]})
	}
	return out
}

func (ix *Index) add(r Recipe) {
	id := r.Produces().TrueName()
	if _, ok := ix.fragments[id]; !ok {
		ix.outputs = append(ix.outputs, id)
	}
	ix.fragments[id] = append(ix.fragments[id], Render(r))
}

// Build scans root recursively for *.json recipe files. Files that fail to
// parse are reported to rep and skipped. A missing root yields an empty
// index.
func Build(root string, rep Reporter, log *logger.Logger) *Index {
	if log == nil {
		log = logger.NewNop()
	}
	ix := &Index{fragments: make(map[string][]string)}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			rep.Report(diag.Wrap(diag.ErrIO, path, "scan recipes", err))
			return nil
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".json") {
			return nil
		}
		r, err := Load(path)
		if err != nil {
			rep.Report(err)
			return nil
		}
		ix.add(r)
		log.Debug("recipe indexed", "path", path, "recipe", r.Identifier(), "output", r.Produces().TrueName())
		return nil
	})
	if err != nil {
		rep.Report(diag.Wrap(diag.ErrIO, root, "scan recipes", err))
	}
	return ix
}

// Render formats a recipe as a Markdown fragment.
func Render(r Recipe) string {
	var b strings.Builder
	switch r := r.(type) {
	case *Crafting:
		b.WriteString("#### **Crafting recipe:**\n**Ingredients:**\n")
		for _, k := range r.Keys {
			fmt.Fprintf(&b, "- %s as %s\n", k.Key, k.Symbol)
		}
		b.WriteString("\n**Pattern:**\n```\n")
		b.WriteString(strings.Join(r.Pattern[:], "\n"))
		b.WriteString("\n```\n")
	case *Furnace:
		b.WriteString("#### **Furnace recipe:**\n")
		fmt.Fprintf(&b, "- Input: %s\n", r.Input)
		fmt.Fprintf(&b, "- Output: %s\n", r.Output)
	case *Brewing:
		b.WriteString("#### **Brewing recipe:**\n")
		fmt.Fprintf(&b, "- Input: %s\n", r.Input)
		fmt.Fprintf(&b, "- Reagent: %s\n", r.Reagent)
		fmt.Fprintf(&b, "- Output: %s\n", r.Output)
	default:
		panic(fmt.Sprintf("recipe: unexpected type %T", r))
	}
	return b.String()
}
