package guide

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/shapescape/content-guide/internal/diag"
	"github.com/shapescape/content-guide/internal/jsontree"
	"github.com/shapescape/content-guide/internal/queryir"
)

// FeatureProperties describes a feature or a feature rule.
type FeatureProperties struct {
	Identifier     string   `json:"identifier"`
	Description    string   `json:"description"`
	PlacesFeatures []string `json:"places_features,omitempty"`
	Rule           bool     `json:"rule"`
}

// Summary renders the prose section of the feature.
func (f *FeatureProperties) Summary() string {
	lines := []string{"### " + f.Identifier}
	if f.Description != "" {
		lines = append(lines, f.Description)
	}
	if len(f.PlacesFeatures) > 0 {
		if f.Rule {
			lines = append(lines, "\n\n**Places feature:** "+f.PlacesFeatures[0])
		} else {
			lines = append(lines, "#### **Places features:**")
			for _, p := range f.PlacesFeatures {
				lines = append(lines, "- "+p)
			}
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

// TableRow renders the feature as a table row without the header.
func (f *FeatureProperties) TableRow() string {
	return "| " + f.Identifier + " | " + strings.ReplaceAll(f.Description, "\n", "<br>") +
		" | " + strings.Join(f.PlacesFeatures, ", ") + " |"
}

const (
	noFeatures     = "There is no features on this project."
	noFeatureRules = "There is no feature rules on this project."
	noTree         = "There is no features or feature rules on this project."
)

// Features lists the features of the behavior pack in index order, loaded
// once per run.
func (g *Generator) Features(ctx context.Context) ([]*FeatureProperties, error) {
	if g.cache.featuresDone {
		return g.cache.features, nil
	}
	places := make(map[int64][]string)
	for tuple, err := range g.q.Query(ctx, queryir.Chain(
		queryir.Select{From: queryir.Feature},
		queryir.Select{From: queryir.FeaturePlacement},
	)) {
		if err != nil {
			return nil, fmt.Errorf("list placed features: %w", err)
		}
		if id := tuple[1].Identifier; id != nil {
			places[tuple[0].ID] = append(places[tuple[0].ID], *id)
		}
	}

	docs := make(map[string]*jsontree.Document)
	var out []*FeatureProperties
	for tuple, err := range g.q.Query(ctx, queryir.Select{From: queryir.Feature}) {
		if err != nil {
			return nil, fmt.Errorf("list features: %w", err)
		}
		rec := tuple[0]
		if rec.Identifier == nil {
			continue
		}
		path, _ := rec.Get("path")
		jsonPath, _ := rec.Get("json_path")
		desc, ok := g.featureDescription(docs, path, jsontree.P(jsonPath, "description", "description"))
		if !ok {
			continue
		}
		out = append(out, &FeatureProperties{
			Identifier:     *rec.Identifier,
			Description:    desc,
			PlacesFeatures: places[rec.ID],
		})
	}
	g.cache.features, g.cache.featuresDone = out, true
	return out, nil
}

// FeatureRules lists the feature rules of the behavior pack in index order,
// loaded once per run.
func (g *Generator) FeatureRules(ctx context.Context) ([]*FeatureProperties, error) {
	if g.cache.rulesDone {
		return g.cache.featureRules, nil
	}
	docs := make(map[string]*jsontree.Document)
	var out []*FeatureProperties
	for tuple, err := range g.q.Query(ctx, queryir.Select{From: queryir.FeatureRule}) {
		if err != nil {
			return nil, fmt.Errorf("list feature rules: %w", err)
		}
		rec := tuple[0]
		if rec.Identifier == nil {
			continue
		}
		path, _ := rec.Get("path")
		desc, ok := g.featureDescription(docs, path, jsontree.P("minecraft:feature_rules", "description", "description"))
		if !ok {
			continue
		}
		f := &FeatureProperties{Identifier: *rec.Identifier, Description: desc, Rule: true}
		if placed, ok := rec.Get("places_feature"); ok {
			f.PlacesFeatures = []string{placed}
		}
		out = append(out, f)
	}
	g.cache.featureRules, g.cache.rulesDone = out, true
	return out, nil
}

// featureDescription reads the description at p of the file at path. A
// file that fails to load yields false; a missing description is reported
// and read as "".
func (g *Generator) featureDescription(docs map[string]*jsontree.Document, path string, p jsontree.Path) (string, bool) {
	doc, ok := docs[path]
	if !ok {
		var err error
		doc, err = jsontree.Load(path)
		if err != nil {
			g.rep.Report(err)
		}
		docs[path] = doc
	}
	if doc == nil {
		return "", false
	}
	v := doc.Get(p)
	if v.Type != gjson.String {
		g.rep.Errorf(diag.ErrMissingField, path, "The file has no description")
		return "", true
	}
	return v.Str, true
}

func renderFeatures(list []*FeatureProperties, style renderStyle, empty string, heading ...string) string {
	if len(list) == 0 {
		return empty
	}
	lines := append([]string(nil), heading...)
	for _, f := range list {
		switch style {
		case renderTable:
			lines = append(lines, f.TableRow())
		case renderList:
			lines = append(lines, "- "+f.Identifier)
		default:
			lines = append(lines, f.Summary())
		}
	}
	return strings.Join(lines, "\n")
}

func (g *Generator) SummarizeFeatures(ctx context.Context) (string, error) {
	list, err := g.Features(ctx)
	if err != nil {
		return "", err
	}
	return renderFeatures(list, renderSummaries, noFeatures), nil
}

func (g *Generator) SummarizeFeaturesInTables(ctx context.Context) (string, error) {
	list, err := g.Features(ctx)
	if err != nil {
		return "", err
	}
	return renderFeatures(list, renderTable, noFeatures,
		"| Item | Description | Places features |",
		"|------|-------------|-----------------|"), nil
}

func (g *Generator) ListFeatures(ctx context.Context) (string, error) {
	list, err := g.Features(ctx)
	if err != nil {
		return "", err
	}
	return renderFeatures(list, renderList, noFeatures), nil
}

func (g *Generator) SummarizeFeatureRules(ctx context.Context) (string, error) {
	list, err := g.FeatureRules(ctx)
	if err != nil {
		return "", err
	}
	return renderFeatures(list, renderSummaries, noFeatureRules), nil
}

func (g *Generator) SummarizeFeatureRulesInTables(ctx context.Context) (string, error) {
	list, err := g.FeatureRules(ctx)
	if err != nil {
		return "", err
	}
	return renderFeatures(list, renderTable, noFeatureRules,
		"| Item | Description | Places feature |",
		"|------|-------------|----------------|"), nil
}

func (g *Generator) ListFeatureRules(ctx context.Context) (string, error) {
	list, err := g.FeatureRules(ctx)
	if err != nil {
		return "", err
	}
	return renderFeatures(list, renderList, noFeatureRules), nil
}

// FeatureTree renders which features and feature rules place which
// features. The most common namespace is left out of the identifiers.
func (g *Generator) FeatureTree(ctx context.Context) (string, error) {
	features, err := g.Features(ctx)
	if err != nil {
		return "", err
	}
	rules, err := g.FeatureRules(ctx)
	if err != nil {
		return "", err
	}
	all := append(append([]*FeatureProperties(nil), features...), rules...)
	if len(all) == 0 {
		return noTree, nil
	}

	ns, err := g.commonNamespace(all)
	if err != nil {
		return "", err
	}
	strip := func(id string) string {
		return strings.TrimPrefix(id, ns+":")
	}

	t := &featureTree{
		children: make(map[string][]string),
		isChild:  make(map[string]bool),
		isParent: make(map[string]bool),
		logged:   make(map[string]bool),
	}
	for _, f := range all {
		id := strip(f.Identifier)
		if f.Rule {
			id = "[" + id + "]"
		}
		placed := make([]string, len(f.PlacesFeatures))
		for i, p := range f.PlacesFeatures {
			placed[i] = strip(p)
			t.isChild[placed[i]] = true
		}
		if _, seen := t.children[id]; !seen {
			t.order = append(t.order, id)
		}
		t.children[id] = placed
		if len(placed) > 0 {
			t.isParent[id] = true
		}
	}

	lines := []string{
		"Following tree shows the relations between features and feature rules. " +
			"The feature rule names are written in square brackets. If a feature is used " +
			"multiple times, it may be shown in some places with ellipsis (\"...\") at the " +
			"end to avoid redundancy.\n\n",
		"For better readability, the most common namespace - " + ns + " - is removed from the feature identifiers.\n",
	}
	for _, id := range t.order {
		var branch []string
		t.walk(id, 0, &branch)
		if len(branch) > 0 {
			lines = append(lines, "```")
			lines = append(lines, branch...)
			lines = append(lines, "```")
		}
	}
	return strings.Join(lines, "\n"), nil
}

// commonNamespace returns the namespace used by most identifiers. Ties go
// to the namespace seen first. Identifiers without a namespace are
// reported and not counted.
func (g *Generator) commonNamespace(all []*FeatureProperties) (string, error) {
	counts := make(map[string]int)
	var order []string
	for _, f := range all {
		ns, _, ok := strings.Cut(f.Identifier, ":")
		if !ok {
			g.rep.Errorf(diag.ErrInvalidFieldType, "", "Feature or feature rule %q has no namespace.", f.Identifier)
			continue
		}
		if counts[ns] == 0 {
			order = append(order, ns)
		}
		counts[ns]++
	}
	if len(order) == 0 {
		return "", errors.New("no feature or feature rule has a namespace")
	}
	best := order[0]
	for _, ns := range order[1:] {
		if counts[ns] > counts[best] {
			best = ns
		}
	}
	return best, nil
}

type featureTree struct {
	order    []string
	children map[string][]string
	isChild  map[string]bool
	isParent map[string]bool
	logged   map[string]bool
}

func (t *featureTree) walk(id string, depth int, out *[]string) {
	if depth == 0 && t.isChild[id] {
		return
	}
	indent := strings.Repeat("  ", depth)
	if t.logged[id] && t.isParent[id] {
		*out = append(*out, indent+id+"...")
		return
	}
	t.logged[id] = true
	*out = append(*out, indent+id)
	for _, child := range t.children[id] {
		t.walk(child, depth+1, out)
	}
}
