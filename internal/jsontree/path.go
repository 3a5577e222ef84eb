package jsontree

import "strings"

// Path addresses a value by its object keys (or array indices, written in
// decimal). Segments are raw keys; String escapes them.
type Path []string

// P builds a Path from segments.
func P(segments ...string) Path {
	return Path(segments)
}

// Append returns a new path extended by segments. The receiver is not
// modified.
func (p Path) Append(segments ...string) Path {
	out := make(Path, 0, len(p)+len(segments))
	out = append(out, p...)
	return append(out, segments...)
}

// String renders the path in gjson/sjson syntax. Keys such as
// "minecraft:item" or "format.version" are escaped so they match literally.
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, seg := range p {
		parts[i] = escapeSegment(seg)
	}
	return strings.Join(parts, ".")
}

func escapeSegment(seg string) string {
	var b strings.Builder
	b.Grow(len(seg))
	for i := 0; i < len(seg); i++ {
		c := seg[i]
		if !isPlainKeyChar(c) {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isPlainKeyChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') || c == '_' || c == '-' || c == ':' ||
		c > '~'
}
