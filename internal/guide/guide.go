// Package guide builds the content guide: per-file property loaders for
// items, blocks, spawn eggs, entities and trades, and the template functions
// rendering them.
//
// One Generator serves one generation run. Its Cache makes every loader
// idempotent for the run: a file is read, reported and stripped at most
// once.
package guide

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/shapescape/content-guide/internal/diag"
	"github.com/shapescape/content-guide/internal/jsontree"
	"github.com/shapescape/content-guide/internal/logger"
	"github.com/shapescape/content-guide/internal/recipe"
	"github.com/shapescape/content-guide/internal/template"
	"github.com/shapescape/content-guide/internal/trade"
	"github.com/shapescape/content-guide/internal/xref"
)

// Reporter is the diagnostics sink of a run. *diag.Reporter implements it.
type Reporter interface {
	Report(err error)
	Errorf(kind error, path, format string, args ...any)
	Warnf(path, format string, args ...any)
}

// Options configure a Generator.
type Options struct {
	BPPath   string
	RPPath   string
	DataPath string

	// KeepCustomFields leaves generator-only fields in the source files.
	KeepCustomFields bool

	// RunID identifies the run in logs. Empty means a random UUID.
	RunID string
}

// Generator is the context of one generation run.
type Generator struct {
	opts    Options
	q       xref.Querier
	xref    *xref.Resolver
	trades  *trade.Formatter
	rep     Reporter
	log     *logger.Logger
	cache   *Cache
	runID   string
	written []string
}

// New returns a Generator reading the pack index through q.
func New(opts Options, q xref.Querier, rep Reporter, log *logger.Logger) *Generator {
	if log == nil {
		log = logger.NewNop()
	}
	if rep == nil {
		rep = diag.NewReporter(nil, false, log)
	}
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	resolver := xref.New(q)
	return &Generator{
		opts:   opts,
		q:      q,
		xref:   resolver,
		trades: trade.NewFormatter(resolver, rep),
		rep:    rep,
		log:    log.With("run_id", runID),
		cache:  NewCache(),
		runID:  runID,
	}
}

// RunID returns the identifier of the run.
func (g *Generator) RunID() string {
	return g.runID
}

// Cache returns the run's cache.
func (g *Generator) Cache() *Cache {
	return g.cache
}

// Rewritten lists the source files stripped of generator-only fields during
// the run, in the order they were written.
func (g *Generator) Rewritten() []string {
	return g.written
}

// Recipes returns the recipe index of the behavior pack, built on first use.
func (g *Generator) Recipes() *recipe.Index {
	return g.cache.recipeIndex(func() *recipe.Index {
		ix := recipe.Build(filepath.Join(g.opts.BPPath, "recipes"), g.rep, g.log)
		g.log.Info("recipe index built", "outputs", ix.Len())
		return ix
	})
}

// commit writes doc without the fields in patch, unless custom fields are
// kept.
func (g *Generator) commit(doc *jsontree.Document, patch *jsontree.Patch) {
	if g.opts.KeepCustomFields {
		return
	}
	written, err := jsontree.Commit(doc, patch)
	if err != nil {
		g.rep.Report(diag.Wrap(diag.ErrIO, doc.Path(), "remove generator fields", err))
		return
	}
	if written {
		g.written = append(g.written, doc.Path())
		g.log.Debug("generator fields removed", "path", doc.Path(), "fields", len(patch.Paths()))
	}
}

// files resolves the include/exclude patterns of a pack folder.
func (g *Generator) files(root string, include, exclude []string) ([]string, error) {
	paths, err := FilterPaths(root, include, exclude)
	if err != nil {
		return nil, err
	}
	g.log.Debug("files matched", "root", root, "count", len(paths))
	return paths, nil
}

// Insert returns the content of a file in the data folder.
func (g *Generator) Insert(rel string) (string, error) {
	data, err := os.ReadFile(filepath.Join(g.opts.DataPath, filepath.FromSlash(rel)))
	if err != nil {
		return "", diag.Wrap(diag.ErrIO, rel, "insert file", err)
	}
	return string(data), nil
}

// Functions returns the template functions of the run.
func (g *Generator) Functions() map[string]template.Func {
	fns := map[string]template.Func{
		"summarize_trades": g.summarizeTradesFunc,
		"completion_guide": g.completionGuideFunc,
		"warp":             g.warpFunc,
		"insert":           g.insertFunc,
	}
	for name, fn := range map[string]func(context.Context) (string, error){
		"summarize_features":                g.SummarizeFeatures,
		"summarize_features_in_tables":      g.SummarizeFeaturesInTables,
		"list_features":                     g.ListFeatures,
		"summarize_feature_rules":           g.SummarizeFeatureRules,
		"summarize_feature_rules_in_tables": g.SummarizeFeatureRulesInTables,
		"list_feature_rules":                g.ListFeatureRules,
		"feature_tree":                      g.FeatureTree,
		"sound_definitions":                 g.SoundDefinitions,
	} {
		fns[name] = noArgFunc(name, fn)
	}
	for _, kind := range []Kind{KindItem, KindBlock, KindSpawnEgg} {
		fns["summarize_"+kind.plural()] = g.propertiesFunc(kind, renderSummaries)
		fns["summarize_"+kind.plural()+"_in_tables"] = g.propertiesFunc(kind, renderTable)
		fns["list_"+kind.plural()] = g.propertiesFunc(kind, renderList)
	}
	fns["summarize_entities"] = g.entitiesFunc(renderSummaries)
	fns["summarize_entities_in_tables"] = g.entitiesFunc(renderTable)
	fns["list_entities"] = g.entitiesFunc(renderList)
	return fns
}

func (g *Generator) propertiesFunc(kind Kind, style renderStyle) template.Func {
	return func(ctx context.Context, args []gjson.Result) (string, error) {
		include, exclude, err := patterns(args)
		if err != nil {
			return "", err
		}
		sel, err := selector(args, 2)
		if err != nil {
			return "", err
		}
		return g.RenderProperties(ctx, kind, style, include, exclude, sel)
	}
}

func (g *Generator) entitiesFunc(style renderStyle) template.Func {
	return func(_ context.Context, args []gjson.Result) (string, error) {
		include, exclude, err := patterns(args)
		if err != nil {
			return "", err
		}
		cats, err := categories(args, 2)
		if err != nil {
			return "", err
		}
		return g.RenderEntities(style, include, exclude, cats)
	}
}

func noArgFunc(name string, fn func(context.Context) (string, error)) template.Func {
	return func(ctx context.Context, args []gjson.Result) (string, error) {
		if len(args) > 0 {
			return "", fmt.Errorf("%s takes no arguments", name)
		}
		return fn(ctx)
	}
}

func (g *Generator) summarizeTradesFunc(ctx context.Context, args []gjson.Result) (string, error) {
	include, exclude, err := patterns(args)
	if err != nil {
		return "", err
	}
	return g.SummarizeTrades(ctx, include, exclude)
}

func (g *Generator) completionGuideFunc(_ context.Context, args []gjson.Result) (string, error) {
	include, exclude, err := patterns(args)
	if err != nil {
		return "", err
	}
	return g.CompletionGuide(include, exclude)
}

func (g *Generator) warpFunc(_ context.Context, args []gjson.Result) (string, error) {
	include, exclude, err := patterns(args)
	if err != nil {
		return "", err
	}
	return g.Warp(include, exclude)
}

func (g *Generator) insertFunc(_ context.Context, args []gjson.Result) (string, error) {
	if len(args) != 1 || args[0].Type != gjson.String {
		return "", fmt.Errorf("insert takes one string argument")
	}
	return g.Insert(args[0].Str)
}
