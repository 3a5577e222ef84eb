package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shapescape/content-guide/internal/diag"
	"github.com/shapescape/content-guide/internal/recipe"
)

// RecipesResult is the recipe index of the behavior pack.
type RecipesResult struct {
	Root        string         `json:"root"`
	Recipes     []recipe.Entry `json:"recipes"`
	Diagnostics []diag.Entry   `json:"diagnostics,omitempty"`
}

func (r RecipesResult) String() string {
	if len(r.Recipes) == 0 {
		return fmt.Sprintf("No recipes found in %s", r.Root)
	}
	var b strings.Builder
	for i, entry := range r.Recipes {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "## %s\n\n%s", entry.Output, strings.Join(entry.Fragments, "\n\n"))
	}
	return b.String()
}

// NewRecipesCommand returns the command printing the recipe index.
func NewRecipesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recipes",
		Short: "Print the recipe index of the behavior pack",
		Long: `Parse every recipe of the behavior pack and print the rendered recipes
grouped by the item they produce, in the form used by the item and block
summaries of the guide.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecipes(rootOpts, cmd)
		},
	}
}

func runRecipes(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.Settings()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "loading settings", err)
	}
	log := opts.logger(cfg)
	defer log.Sync()
	rep := diag.NewReporter(formatter.GetErrWriter(), false, log)

	root := filepath.Join(cfg.BPPath, "recipes")
	ix := recipe.Build(root, rep, log)
	formatter.VerboseLog("Indexed %d recipe output(s) from %s", ix.Len(), root)

	if err := formatter.Success(RecipesResult{
		Root:        root,
		Recipes:     ix.Entries(),
		Diagnostics: rep.Entries(),
	}); err != nil {
		return err
	}
	return strictCheck(cfg, rep)
}
