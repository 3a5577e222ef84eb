// Package diag collects the diagnostics of one generation run.
//
// File-scoped failures (bad JSON, bad recipe, bad trade tier, unknown
// template directive) are reported here and the offending unit is skipped.
// The run always completes; HadErrors tells the caller whether anything was
// reported so it can decide whether the build failed.
package diag

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shapescape/content-guide/internal/logger"
)

// Severity distinguishes hard errors from warnings. Both set the had-errors
// flag, as the generator treats any missing content metadata as a defect.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Entry is one reported diagnostic.
type Entry struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Path     string   `json:"path,omitempty"`
	Message  string   `json:"message"`
}

// Reporter is the diagnostics sink. It is not safe for concurrent use; a
// generation run is single-threaded.
type Reporter struct {
	w       io.Writer
	color   bool
	log     *logger.Logger
	entries []Entry
	found   bool
}

// NewReporter creates a reporter printing to w. When color is true every
// printed line is wrapped in red ANSI escapes. A nil w discards output and a
// nil log disables logging.
func NewReporter(w io.Writer, color bool, log *logger.Logger) *Reporter {
	if w == nil {
		w = io.Discard
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Reporter{w: w, color: color, log: log}
}

// Report records err. Errors that are not *Error are recorded with the
// generic code.
func (r *Reporter) Report(err error) {
	if err == nil {
		return
	}
	entry := Entry{Severity: SeverityError, Code: CodeGeneric, Message: err.Error()}
	var derr *Error
	if errors.As(err, &derr) {
		entry.Code = derr.Code()
		entry.Path = derr.Path
	}
	r.record(entry)
}

// Errorf records an error of the given kind.
func (r *Reporter) Errorf(kind error, path, format string, args ...any) {
	r.Report(New(kind, path, format, args...))
}

// Warnf records a warning about the file at path. Warnings describe content
// metadata the generator had to guess.
func (r *Reporter) Warnf(path, format string, args ...any) {
	r.record(Entry{
		Severity: SeverityWarning,
		Code:     CodeGeneric,
		Path:     path,
		Message:  fmt.Sprintf(format, args...),
	})
}

// HadErrors reports whether anything has been recorded.
func (r *Reporter) HadErrors() bool {
	return r.found
}

// Entries returns the recorded diagnostics in report order.
func (r *Reporter) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *Reporter) record(entry Entry) {
	r.found = true
	r.entries = append(r.entries, entry)

	if entry.Severity == SeverityWarning {
		r.log.Warn(entry.Message, "path", entry.Path)
	} else {
		r.log.Error(entry.Message, "path", entry.Path, "code", entry.Code)
	}

	text := entry.Message
	if entry.Path != "" && !strings.Contains(text, entry.Path) {
		text = fmt.Sprintf("%s\n\tPath: %s", text, entry.Path)
	}
	for _, line := range strings.Split(text, "\n") {
		if r.color {
			fmt.Fprintf(r.w, "\033[91m %s\033[00m\n", line)
		} else {
			fmt.Fprintf(r.w, " %s\n", line)
		}
	}
}
