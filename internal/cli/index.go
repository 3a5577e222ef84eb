package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shapescape/content-guide/internal/config"
	"github.com/shapescape/content-guide/internal/diag"
	"github.com/shapescape/content-guide/internal/logger"
	"github.com/shapescape/content-guide/internal/store"
)

// IndexResult summarizes a pack ingestion.
type IndexResult struct {
	Database    string         `json:"database"`
	Counts      map[string]int `json:"counts"`
	Diagnostics []diag.Entry   `json:"diagnostics,omitempty"`
}

func (r IndexResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "✓ Indexed packs into %s\n", r.Database)
	names := make([]string, 0, len(r.Counts))
	for name := range r.Counts {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(&b, "  %-17s %d\n", name+":", r.Counts[name])
	}
	if len(r.Diagnostics) > 0 {
		fmt.Fprintf(&b, "%d diagnostic(s) reported\n", len(r.Diagnostics))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// NewIndexCommand returns the command loading the packs into a persistent
// pack index.
func NewIndexCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Load the packs into the pack index and print relation counts",
		Long: `Load the behavior and resource packs into the SQLite pack index.

With --db pointing at a file the index is kept after the command exits,
which is useful to inspect what the generator sees. The file is emptied
before every load.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(rootOpts, cmd)
		},
	}
}

func runIndex(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.Settings()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "loading settings", err)
	}
	log := opts.logger(cfg)
	defer log.Sync()
	rep := diag.NewReporter(formatter.GetErrWriter(), false, log)

	st, err := openIndex(cmd.Context(), cfg, rep, log)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeIndex, "building pack index", err)
	}
	defer st.Close()

	counts, err := st.Counts(cmd.Context())
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeIndex, "counting pack index", err)
	}
	result := IndexResult{
		Database:    cfg.Database,
		Counts:      make(map[string]int, len(counts)),
		Diagnostics: rep.Entries(),
	}
	for rel, n := range counts {
		result.Counts[string(rel)] = n
	}
	if err := formatter.Success(result); err != nil {
		return err
	}
	return strictCheck(cfg, rep)
}

// openIndex opens the pack index of cfg and loads both packs into it. A
// file index is emptied first.
func openIndex(ctx context.Context, cfg config.Config, rep *diag.Reporter, log *logger.Logger) (*store.Store, error) {
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	if cfg.Database != store.MemoryPath {
		if err := st.Reset(ctx); err != nil {
			st.Close()
			return nil, err
		}
	}
	if err := st.LoadBehaviorPack(ctx, cfg.BPPath, rep); err != nil {
		st.Close()
		return nil, fmt.Errorf("load behavior pack: %w", err)
	}
	if err := st.LoadResourcePack(ctx, cfg.RPPath, rep); err != nil {
		st.Close()
		return nil, fmt.Errorf("load resource pack: %w", err)
	}
	log.Info("pack index loaded", "database", cfg.Database, "bp", cfg.BPPath, "rp", cfg.RPPath)
	return st, nil
}

// strictCheck fails the command when anything was reported and the run is
// strict.
func strictCheck(cfg config.Config, rep *diag.Reporter) error {
	if !cfg.BreakOnWarnings || !rep.HadErrors() {
		return nil
	}
	return NewExitError(ExitFailure,
		fmt.Sprintf("%s: %d diagnostic(s) reported", ErrCodeStrict, len(rep.Entries())))
}
