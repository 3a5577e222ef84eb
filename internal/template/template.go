// Package template renders guide templates.
//
// A template is Markdown text. A line starting with ":generate:" is a
// directive calling a named function:
//
//	:generate: summarize_items("**/*.json", null, "player_facing")
//
// The arguments are JSON values. The function's output replaces the line.
package template

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/shapescape/content-guide/internal/diag"
	"github.com/shapescape/content-guide/internal/logger"
)

// Marker starts a directive line.
const Marker = ":generate:"

// Func is a template function. Args holds the decoded call arguments in
// order.
type Func func(ctx context.Context, args []gjson.Result) (string, error)

// Reporter receives problems found while rendering.
type Reporter interface {
	Report(err error)
}

// Directive is a parsed function call.
type Directive struct {
	Name string
	Args []gjson.Result
}

// Part is one line of a parsed template: either literal text or a
// directive.
type Part struct {
	Text      string
	Directive *Directive
	Line      int
}

// Engine renders templates with a fixed set of functions.
type Engine struct {
	funcs map[string]Func
	rep   Reporter
	log   *logger.Logger
}

// New returns an Engine. Problems are reported to rep.
func New(funcs map[string]Func, rep Reporter, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.NewNop()
	}
	return &Engine{funcs: funcs, rep: rep, log: log}
}

// ParseCall splits "name(arg, ...)" into a directive. It returns false when
// the call is malformed.
func ParseCall(call string) (Directive, bool) {
	if !strings.HasSuffix(call, ")") {
		return Directive{}, false
	}
	name, rest, ok := strings.Cut(call[:len(call)-1], "(")
	if !ok {
		return Directive{}, false
	}
	raw := "[" + rest + "]"
	if !gjson.Valid(raw) {
		return Directive{}, false
	}
	return Directive{Name: name, Args: gjson.Parse(raw).Array()}, true
}

// Parse splits text into lines and resolves directives. Malformed calls and
// unknown functions are reported and kept as text, line unchanged.
func (e *Engine) Parse(text string) []Part {
	lines := strings.Split(text, "\n")
	parts := make([]Part, 0, len(lines))
	for i, line := range lines {
		if !strings.HasPrefix(line, Marker) {
			parts = append(parts, Part{Text: line, Line: i + 1})
			continue
		}
		call := strings.TrimSpace(line[len(Marker):])
		d, ok := ParseCall(call)
		switch {
		case !ok:
			e.report("Invalid function format in TEMPLATE.md file.\n\tLine: %d\n\tFunction: %s", i+1, call)
			parts = append(parts, Part{Text: line, Line: i + 1})
		case e.funcs[d.Name] == nil:
			e.report("Unknown function in TEMPLATE.md file.\n\tLine: %d\n\tFunction: %s", i+1, call)
			parts = append(parts, Part{Text: line, Line: i + 1})
		default:
			parts = append(parts, Part{Directive: &d, Line: i + 1})
		}
	}
	return parts
}

// Render parses text and evaluates every directive. Parts are joined with
// newlines. A failing function is reported and renders as an empty line.
func (e *Engine) Render(ctx context.Context, text string) string {
	parts := e.Parse(text)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part.Directive == nil {
			out = append(out, part.Text)
			continue
		}
		e.log.Debug("evaluating directive", "function", part.Directive.Name, "line", part.Line)
		result, err := e.funcs[part.Directive.Name](ctx, part.Directive.Args)
		if err != nil {
			e.report("Function %s failed in TEMPLATE.md file.\n\tLine: %d\n\t%v", part.Directive.Name, part.Line, err)
			result = ""
		}
		out = append(out, result)
	}
	return strings.Join(out, "\n")
}

func (e *Engine) report(format string, args ...any) {
	if e.rep != nil {
		e.rep.Report(diag.New(diag.ErrUnresolvedDirective, "", format, args...))
	}
}

// String renders the directive back to call syntax.
func (d Directive) String() string {
	args := make([]string, len(d.Args))
	for i, a := range d.Args {
		args[i] = a.Raw
	}
	return fmt.Sprintf("%s(%s)", d.Name, strings.Join(args, ", "))
}
