// Package jsontree reads and rewrites game definition files.
//
// Pack files are JSON with comments. A Document holds the comment-free bytes
// of one file and is navigated with gjson. Documents are never mutated:
// removing fields goes through a Patch, which Apply renders into new bytes
// and Commit writes back to disk.
package jsontree

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"github.com/shapescape/content-guide/internal/diag"
)

// Document is one parsed definition file.
type Document struct {
	path string
	raw  []byte
}

// Load reads the file at path and parses it.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, diag.Wrap(diag.ErrIO, path, "read file", err)
	}
	return Parse(path, data)
}

// Parse strips comments from data and validates the result. Path is only
// used for diagnostics and by Commit.
func Parse(path string, data []byte) (*Document, error) {
	clean := StripComments(data)
	if !gjson.ValidBytes(clean) {
		return nil, diag.New(diag.ErrMalformedJSON, path, "file is not valid JSON")
	}
	return &Document{path: path, raw: clean}, nil
}

// Path returns the file the document was read from.
func (d *Document) Path() string {
	return d.path
}

// Bytes returns the comment-free JSON text.
func (d *Document) Bytes() []byte {
	return d.raw
}

// Root returns the top-level value.
func (d *Document) Root() gjson.Result {
	return gjson.ParseBytes(d.raw)
}

// Get returns the value at p. The result's Exists reports whether it was found.
func (d *Document) Get(p Path) gjson.Result {
	if len(p) == 0 {
		return d.Root()
	}
	return gjson.GetBytes(d.raw, p.String())
}

// Exists reports whether p resolves to a value.
func (d *Document) Exists(p Path) bool {
	return d.Get(p).Exists()
}

// IsInt reports whether r is a JSON number written without a fraction or
// exponent.
func IsInt(r gjson.Result) bool {
	if r.Type != gjson.Number {
		return false
	}
	for i := 0; i < len(r.Raw); i++ {
		switch r.Raw[i] {
		case '.', 'e', 'E':
			return false
		}
	}
	return true
}

// TypeName names the JSON type of r for diagnostics.
func TypeName(r gjson.Result) string {
	switch {
	case !r.Exists():
		return "missing"
	case r.IsObject():
		return "object"
	case r.IsArray():
		return "array"
	case r.Type == gjson.String:
		return "string"
	case r.Type == gjson.Number:
		return "number"
	case r.IsBool():
		return "boolean"
	case r.Type == gjson.Null:
		return "null"
	default:
		return fmt.Sprintf("%v", r.Type)
	}
}

// StripComments blanks out // and /* */ comments that appear outside string
// literals. Comment bytes are replaced with spaces (newlines are kept) so
// offsets into the text stay valid.
func StripComments(data []byte) []byte {
	out := make([]byte, len(data))
	copy(out, data)

	inString := false
	for i := 0; i < len(out); i++ {
		c := out[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch {
		case c == '"':
			inString = true
		case c == '/' && i+1 < len(out) && out[i+1] == '/':
			for ; i < len(out) && out[i] != '\n'; i++ {
				out[i] = ' '
			}
		case c == '/' && i+1 < len(out) && out[i+1] == '*':
			out[i], out[i+1] = ' ', ' '
			i += 2
			for ; i < len(out); i++ {
				if out[i] == '*' && i+1 < len(out) && out[i+1] == '/' {
					out[i], out[i+1] = ' ', ' '
					i++
					break
				}
				if out[i] != '\n' {
					out[i] = ' '
				}
			}
		}
	}
	return out
}
