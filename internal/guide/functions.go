package guide

import (
	"cmp"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/shapescape/content-guide/internal/diag"
)

const coordPattern = ` +(-?[0-9]+(?:\.[0-9]*)?)`

// tpCommand matches the start of a /tp command with global coordinates.
var tpCommand = regexp.MustCompile(`^tp(?: @[seap](?:\[.+\])?)?` + coordPattern + coordPattern + coordPattern)

// splitDocComment splits a function file into its leading comment lines
// and the rest.
func splitDocComment(content string) (comment, rest string) {
	lines := strings.Split(content, "\n")
	n := 0
	for n < len(lines) && strings.HasPrefix(lines[n], "#") {
		n++
	}
	return strings.Join(lines[:n], "\n"), strings.Join(lines[n:], "\n")
}

// commentText removes the comment markers of a doc comment. The space after
// "#" is removed too when every line has one. An empty comment yields false.
func commentText(comment string) (string, bool) {
	if comment == "" {
		return "", false
	}
	lines := strings.Split(comment, "\n")
	cut := 2
	for _, line := range lines {
		if !strings.HasPrefix(line, "# ") && line != "#" {
			cut = 1
			break
		}
	}
	for i, line := range lines {
		lines[i] = line[min(cut, len(line)):]
	}
	return strings.Join(lines, "\n"), true
}

// firstCommand returns the first line that is neither blank nor a comment.
func firstCommand(content string) (string, bool) {
	for _, line := range strings.Split(content, "\n") {
		if line != "" && !strings.HasPrefix(line, "#") {
			return line, true
		}
	}
	return "", false
}

type completionStep struct {
	number   int
	name     string
	text     string
	function string
}

func compareSteps(a, b completionStep) int {
	return cmp.Or(
		cmp.Compare(a.number, b.number),
		cmp.Compare(a.name, b.name),
		cmp.Compare(a.text, b.text),
		cmp.Compare(a.function, b.function),
	)
}

func (g *Generator) completionStep(functions, path string) (completionStep, bool) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if strings.Contains(name, " ") {
		g.rep.Errorf(diag.ErrInvalidFieldType, path,
			"Named incorrectly for COMPLETION GUIDE generator:\n\t- The name uses spaces instead of underscores")
		return completionStep{}, false
	}
	parts := strings.Split(name, "_")
	number, err := strconv.Atoi(parts[0])
	if len(parts) < 2 || err != nil {
		g.rep.Errorf(diag.ErrInvalidFieldType, path,
			"Named incorrectly for COMPLETION GUIDE generator:\n"+
				"\t- The name should follow pattern <step_number>_<step_name>\n"+
				"\t- <step_number> must be an integer\n"+
				"\t- <step_name> must be a snake_case string")
		return completionStep{}, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		g.rep.Report(diag.Wrap(diag.ErrIO, path, "read function", err))
		return completionStep{}, false
	}
	comment, _ := splitDocComment(string(data))
	text, ok := commentText(comment)
	if !ok {
		g.rep.Errorf(diag.ErrMissingField, path,
			"Named incorrectly for COMPLETION GUIDE generator:\n\t- The file has no doc comment")
		return completionStep{}, false
	}
	rel, err := filepath.Rel(functions, path)
	if err != nil {
		rel = path
	}
	return completionStep{
		number:   number,
		name:     capitalize(strings.Join(parts[1:], " ")),
		text:     text,
		function: strings.TrimSuffix(filepath.ToSlash(rel), filepath.Ext(rel)),
	}, true
}

// CompletionGuide renders the steps documented by the doc comments of the
// function files matched by the patterns. Files are named
// <step_number>_<step_name>.
func (g *Generator) CompletionGuide(include, exclude []string) (string, error) {
	functions := filepath.Join(g.opts.BPPath, "functions")
	paths, err := g.files(functions, include, exclude)
	if err != nil {
		return "", err
	}
	var steps []completionStep
	for _, path := range paths {
		if s, ok := g.completionStep(functions, path); ok {
			steps = append(steps, s)
		}
	}
	slices.SortFunc(steps, compareSteps)

	var lines []string
	for _, s := range steps {
		lines = append(lines,
			"### "+strconv.Itoa(s.number)+" - "+s.name,
			s.text+"\n",
			"You can complete this step using: `function "+s.function+"`\n",
		)
	}
	return strings.Join(lines, "\n"), nil
}

// Warp lists the locations teleported to by the function files matched by
// the patterns, described by their doc comments.
func (g *Generator) Warp(include, exclude []string) (string, error) {
	paths, err := g.files(filepath.Join(g.opts.BPPath, "functions"), include, exclude)
	if err != nil {
		return "", err
	}
	const header = "Invalid format to summarize using warp() function.\n"
	var lines []string
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			g.rep.Report(diag.Wrap(diag.ErrIO, path, "read function", err))
			continue
		}
		comment, commands := splitDocComment(string(data))
		text, ok := commentText(comment)
		if !ok {
			g.rep.Errorf(diag.ErrMissingField, path, header+"\t- The file has no doc comment.")
			continue
		}
		command, ok := firstCommand(commands)
		if !ok {
			g.rep.Errorf(diag.ErrMissingField, path,
				header+"\t- No commands found (expected tp command below documentation comment)")
			continue
		}
		m := tpCommand.FindStringSubmatch(command)
		if m == nil {
			g.rep.Errorf(diag.ErrInvalidFieldType, path,
				header+"\t- Unable to extract coordinates from the first command\n"+
					"\t- The first command should be a /tp command with global coordinates")
			continue
		}
		lines = append(lines, "- "+strings.ReplaceAll(text, "\n", " ")+" ("+m[1]+" "+m[2]+" "+m[3]+")")
	}
	return strings.Join(lines, "\n"), nil
}
