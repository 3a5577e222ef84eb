package guide

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/shapescape/content-guide/internal/diag"
	"github.com/shapescape/content-guide/internal/jsontree"
)

// fileReader reads the generator fields of one content file. Consumed
// fields are scheduled for removal in patch; problems are collected and
// reported together when the file is done.
type fileReader struct {
	doc      *jsontree.Document
	root     jsontree.Path
	label    string
	patch    jsontree.Patch
	problems []problem
}

// problem is one issue found in a file. A nil kind marks a warning.
type problem struct {
	kind error
	text string
}

// open loads path and returns a reader positioned at root. Load failures
// are reported and yield nil.
func (g *Generator) open(path string, root jsontree.Path, label string) *fileReader {
	doc, err := jsontree.Load(path)
	if err != nil {
		g.rep.Report(err)
		return nil
	}
	return &fileReader{doc: doc, root: root, label: label}
}

func (r *fileReader) get(field string) gjson.Result {
	return r.doc.Get(r.root.Append(field))
}

func (r *fileReader) warn(text string) {
	r.problems = append(r.problems, problem{text: text})
}

func (r *fileReader) fail(kind error, text string) {
	r.problems = append(r.problems, problem{kind: kind, text: text})
}

// identifier returns the string identifier under root.
func (r *fileReader) identifier() (string, bool) {
	v := r.get("identifier")
	if v.Type != gjson.String {
		return "", false
	}
	return v.Str, true
}

// text reads a string or a list of strings joined by newlines. The field
// is consumed when present.
func (r *fileReader) text(field, noun string) string {
	v := r.get(field)
	if !v.Exists() {
		r.fail(diag.ErrMissingField, "Missing "+noun+" description")
		return ""
	}
	r.patch.Delete(r.root.Append(field))
	if v.Type == gjson.String {
		return v.Str
	}
	invalid := "Invalid " + noun + " description (should be string or list of strings)"
	if !v.IsArray() {
		r.fail(diag.ErrInvalidFieldType, invalid)
		return ""
	}
	var lines []string
	for _, line := range v.Array() {
		if line.Type != gjson.String {
			r.fail(diag.ErrInvalidFieldType, invalid)
			break
		}
		lines = append(lines, line.Str)
	}
	return strings.Join(lines, "\n")
}

// flag reads a boolean field. present is false when the field is absent;
// ok is false when it is present with another type. The field is consumed
// when present.
func (r *fileReader) flag(field string) (value, present, ok bool) {
	v := r.get(field)
	if !v.Exists() {
		return false, false, false
	}
	r.patch.Delete(r.root.Append(field))
	if !v.IsBool() {
		return false, true, false
	}
	return v.Bool(), true, true
}

// finish strips the consumed fields and reports the collected problems as
// one diagnostic. It is an error when any problem has a kind.
func (g *Generator) finish(r *fileReader) {
	g.commit(r.doc, &r.patch)
	if len(r.problems) == 0 {
		return
	}
	var kind error
	lines := make([]string, len(r.problems))
	for i, p := range r.problems {
		lines[i] = strings.ReplaceAll(p.text, "\n", "\n\t  ")
		if kind == nil && p.kind != nil {
			kind = p.kind
		}
	}
	msg := "Missing properties to generate summary of the " + r.label + ":\n\t- " +
		strings.Join(lines, "\n\t- ")
	if kind == nil {
		g.rep.Warnf(r.doc.Path(), "%s", msg)
		return
	}
	g.rep.Errorf(kind, r.doc.Path(), "%s", msg)
}
