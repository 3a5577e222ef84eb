package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/shapescape/content-guide/internal/config"
	"github.com/shapescape/content-guide/internal/logger"
)

// RootOptions holds the global flags of every command.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	ConfigPath       string
	BPPath           string
	RPPath           string
	DataPath         string
	Template         string
	Output           string
	Database         string
	KeepCustomFields bool
	Strict           bool

	flags *pflag.FlagSet
}

// ValidFormats lists the accepted --format values.
var ValidFormats = []string{"text", "json"}

// NewRootCommand returns the cgg command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cgg",
		Short: "Content guide generator for Minecraft add-ons",
		Long: `cgg renders a Markdown content guide for a behavior/resource pack pair.

It indexes the packs, then expands the ":generate:" directives of a
template into summaries of items, blocks, spawn eggs, entities, trades,
features, sounds and function-based guides.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "config file (.yaml, .yml, .cue or .json)")
	flags.StringVar(&opts.BPPath, "bp", config.DefaultBPPath, "behavior pack folder")
	flags.StringVar(&opts.RPPath, "rp", config.DefaultRPPath, "resource pack folder")
	flags.StringVar(&opts.DataPath, "data", config.DefaultDataPath, "data folder of the generator")
	flags.StringVar(&opts.Template, "template", "", "template file (default <data>/TEMPLATE.md)")
	flags.StringVar(&opts.Output, "output", "", "output file (default <data>/OUTPUT.md)")
	flags.StringVar(&opts.Database, "db", config.DefaultDatabase, "SQLite file of the pack index")
	flags.BoolVar(&opts.KeepCustomFields, "keep-custom-fields", false, "do not strip generator fields from the packs")
	flags.BoolVar(&opts.Strict, "strict", false, "exit with code 1 when anything was reported")
	opts.flags = flags

	cmd.AddCommand(NewGenerateCommand(opts))
	cmd.AddCommand(NewRecipesCommand(opts))
	cmd.AddCommand(NewIndexCommand(opts))

	return cmd
}

// Settings loads the config file and applies the flags set on the command
// line over it.
func (o *RootOptions) Settings() (config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return cfg, err
	}
	set := func(name, value string, dst *string) {
		if value != "" && (o.flags == nil || o.flags.Changed(name)) {
			*dst = value
		}
	}
	set("bp", o.BPPath, &cfg.BPPath)
	set("rp", o.RPPath, &cfg.RPPath)
	set("data", o.DataPath, &cfg.DataPath)
	set("template", o.Template, &cfg.Template)
	set("output", o.Output, &cfg.Output)
	set("db", o.Database, &cfg.Database)
	if o.KeepCustomFields {
		cfg.KeepCustomFields = true
	}
	if o.Strict {
		cfg.BreakOnWarnings = true
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

// formatter returns the output formatter of cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// logger builds the run logger for cfg. Without --verbose diagnostics are
// only printed by the reporter.
func (o *RootOptions) logger(cfg config.Config) *logger.Logger {
	if !o.Verbose {
		return logger.NewNop()
	}
	log, err := logger.New(cfg.LogMode, true)
	if err != nil {
		return logger.NewNop()
	}
	return log
}
