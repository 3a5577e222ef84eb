package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shapescape/content-guide/internal/diag"
	"github.com/shapescape/content-guide/internal/guide"
	"github.com/shapescape/content-guide/internal/template"
)

// GenerateResult summarizes a generation run.
type GenerateResult struct {
	Template    string       `json:"template"`
	Output      string       `json:"output"`
	Rewritten   []string     `json:"rewritten,omitempty"`
	Diagnostics []diag.Entry `json:"diagnostics,omitempty"`
}

func (r GenerateResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "✓ Generated %s from %s\n", r.Output, r.Template)
	if len(r.Rewritten) > 0 {
		fmt.Fprintf(&b, "Removed generator fields from %d file(s)\n", len(r.Rewritten))
	}
	if len(r.Diagnostics) > 0 {
		fmt.Fprintf(&b, "%d diagnostic(s) reported\n", len(r.Diagnostics))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// NewGenerateCommand returns the command rendering the content guide.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Render the content guide from the template",
		Long: `Render the content guide.

The packs are indexed, every ":generate:" directive of the template is
replaced by the output of its function, and the result is written to the
output file. Problems with pack files are reported and skipped; the guide
is always written. With --strict any reported problem makes the command
exit with code 1.

Unless --keep-custom-fields is set, the description and other
generator-only fields are removed from the pack files they were read from.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(rootOpts, cmd)
		},
	}
}

func runGenerate(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	cfg, err := opts.Settings()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "loading settings", err)
	}
	log := opts.logger(cfg)
	defer log.Sync()

	text, err := os.ReadFile(cfg.TemplatePath())
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeTemplate, "reading template", err)
	}

	rep := diag.NewReporter(formatter.GetErrWriter(), false, log)
	st, err := openIndex(ctx, cfg, rep, log)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeIndex, "building pack index", err)
	}
	defer st.Close()

	g := guide.New(guide.Options{
		BPPath:           cfg.BPPath,
		RPPath:           cfg.RPPath,
		DataPath:         cfg.DataPath,
		KeepCustomFields: cfg.KeepCustomFields,
	}, st, rep, log)
	formatter.VerboseLog("Run %s: rendering %s", g.RunID(), cfg.TemplatePath())

	out := template.New(g.Functions(), rep, log).Render(ctx, string(text))

	output := cfg.OutputPath()
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeWrite, "creating output folder", err)
	}
	if err := os.WriteFile(output, []byte(out), 0o644); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeWrite, "writing output", err)
	}
	for _, path := range g.Rewritten() {
		formatter.VerboseLog("Removed generator fields from %s", path)
	}

	result := GenerateResult{
		Template:    cfg.TemplatePath(),
		Output:      output,
		Rewritten:   g.Rewritten(),
		Diagnostics: rep.Entries(),
	}
	if err := formatter.SuccessRun(g.RunID(), result); err != nil {
		return err
	}
	return strictCheck(cfg, rep)
}
