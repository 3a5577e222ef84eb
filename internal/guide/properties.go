package guide

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/shapescape/content-guide/internal/diag"
	"github.com/shapescape/content-guide/internal/jsontree"
	"github.com/shapescape/content-guide/internal/xref"
)

// Kind is a content kind described by Properties.
type Kind string

const (
	KindItem     Kind = "item"
	KindBlock    Kind = "block"
	KindSpawnEgg Kind = "spawn_egg"
)

func (k Kind) plural() string {
	return string(k) + "s"
}

// noun is the lower-case name used in problem lines.
func (k Kind) noun() string {
	return strings.ReplaceAll(string(k), "_", " ")
}

// label is the upper-case name used in diagnostics.
func (k Kind) label() string {
	return strings.ToUpper(k.noun())
}

// folder is the behavior pack folder the kind is read from.
func (k Kind) folder() string {
	if k == KindSpawnEgg {
		return "entities"
	}
	return k.plural()
}

func (k Kind) heading() string {
	switch k {
	case KindBlock:
		return "| Block | Description |"
	case KindSpawnEgg:
		return "| Spawn egg | Description |"
	default:
		return "| Item | Description |"
	}
}

// Properties describes one item, block or spawn egg.
type Properties struct {
	Kind             Kind     `json:"kind"`
	Path             string   `json:"path"`
	Identifier       string   `json:"identifier"`
	Description      string   `json:"description"`
	PlayerFacing     bool     `json:"player_facing"`
	RecipePatterns   []string `json:"recipe_patterns,omitempty"`
	DroppingEntities []string `json:"dropping_entities,omitempty"`
	TradingEntities  []string `json:"trading_entities,omitempty"`
}

// Summary renders the prose section of the record.
func (p *Properties) Summary() string {
	lines := []string{"### " + p.Identifier}
	if p.Description != "" {
		lines = append(lines, p.Description)
	}
	lines = append(lines, p.RecipePatterns...)
	if len(p.DroppingEntities) > 0 {
		lines = append(lines, "#### **Dropped by:**")
		for _, e := range p.DroppingEntities {
			lines = append(lines, "- "+e)
		}
	}
	if len(p.TradingEntities) > 0 {
		lines = append(lines, "#### **Traded by:**")
		for _, e := range p.TradingEntities {
			lines = append(lines, "- "+e)
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

// TableRow renders the record as a table row without the header.
func (p *Properties) TableRow() string {
	return "| " + p.Identifier + " | " + strings.ReplaceAll(p.Description, "\n", "<br>") + " |"
}

// Item loads the item file at path.
func (g *Generator) Item(ctx context.Context, path string) *Properties {
	return g.cache.item(path, func() *Properties {
		return g.loadProperties(ctx, KindItem, path)
	})
}

// Block loads the block file at path.
func (g *Generator) Block(ctx context.Context, path string) *Properties {
	return g.cache.block(path, func() *Properties {
		return g.loadProperties(ctx, KindBlock, path)
	})
}

// SpawnEgg loads the spawn egg of the entity file at path. Entities without
// a spawn egg yield nil without a diagnostic.
func (g *Generator) SpawnEgg(ctx context.Context, path string) *Properties {
	return g.cache.spawnEgg(path, func() *Properties {
		return g.loadProperties(ctx, KindSpawnEgg, path)
	})
}

// Load returns the record of kind at path.
func (g *Generator) Load(ctx context.Context, kind Kind, path string) *Properties {
	switch kind {
	case KindBlock:
		return g.Block(ctx, path)
	case KindSpawnEgg:
		return g.SpawnEgg(ctx, path)
	default:
		return g.Item(ctx, path)
	}
}

func (g *Generator) loadProperties(ctx context.Context, kind Kind, path string) *Properties {
	root := jsontree.P("minecraft:"+string(kind), "description")
	descField, facingField := "description", "player_facing"
	if kind == KindSpawnEgg {
		root = jsontree.P("minecraft:entity", "description")
		descField, facingField = "spawn_egg_description", "spawn_egg_player_facing"
	}
	r := g.open(path, root, kind.label())
	if r == nil {
		return nil
	}
	id, ok := r.identifier()
	if !ok && kind == KindSpawnEgg {
		// Reported by the entity loader.
		return nil
	}
	if !ok {
		g.rep.Errorf(diag.ErrMissingField, path,
			"Missing properties to generate summary of the %s:\n\t- Missing %s identifier", kind.label(), kind.noun())
		return nil
	}
	if kind == KindSpawnEgg {
		if strings.HasPrefix(id, "minecraft:") || !hasSpawnEgg(r, descField, facingField) {
			return nil
		}
		id += xref.SpawnEggSuffix
	}

	p := &Properties{Kind: kind, Path: path, Identifier: id}
	p.Description = r.text(descField, kind.noun())
	p.RecipePatterns = g.recipePatterns(id)
	p.DroppingEntities = g.crossRef(ctx, path, id, g.xref.DroppingEntities)
	p.TradingEntities = g.crossRef(ctx, path, id, g.xref.TradingEntities)

	switch value, present, valid := r.flag(facingField); {
	case valid:
		p.PlayerFacing = value
	case present:
		p.PlayerFacing = true
		r.fail(diag.ErrInvalidFieldType, "Invalid "+facingField+" property (assigned True by default)")
	default:
		p.PlayerFacing = len(p.RecipePatterns) > 0 || len(p.DroppingEntities) > 0 || len(p.TradingEntities) > 0
		if !p.PlayerFacing {
			r.warn("Unable to determine " + facingField + " property (assigned False by default)")
		}
	}

	g.finish(r)
	g.log.Debug("properties loaded", "kind", string(kind), "identifier", id, "path", filepath.ToSlash(path))
	return p
}

// hasSpawnEgg reports whether the entity declares a spawn egg, either with
// generator fields or by being spawnable.
func hasSpawnEgg(r *fileReader, fields ...string) bool {
	for _, f := range fields {
		if r.get(f).Exists() {
			return true
		}
	}
	return r.get("is_spawnable").Bool()
}

func (g *Generator) recipePatterns(id string) []string {
	fragments := g.Recipes().Fragments(id)
	if len(fragments) == 0 {
		return nil
	}
	return []string{strings.Join(fragments, "\n\n")}
}

func (g *Generator) crossRef(ctx context.Context, path, id string, lookup func(context.Context, string) ([]string, error)) []string {
	entities, err := lookup(ctx, id)
	if err != nil {
		g.rep.Report(diag.Wrap(diag.ErrIO, path, "query pack index", err))
		return nil
	}
	return entities
}

type renderStyle int

const (
	renderSummaries renderStyle = iota
	renderTable
	renderList
)

// RenderProperties renders every record of kind matched by the patterns
// and selected by sel.
func (g *Generator) RenderProperties(ctx context.Context, kind Kind, style renderStyle, include, exclude []string, sel Selector) (string, error) {
	paths, err := g.files(filepath.Join(g.opts.BPPath, kind.folder()), include, exclude)
	if err != nil {
		return "", err
	}
	var lines []string
	if style == renderTable {
		lines = append(lines, kind.heading(), "|------|-------------|")
	}
	for _, path := range paths {
		p := g.Load(ctx, kind, path)
		if p == nil || !sel.Matches(p.PlayerFacing) {
			continue
		}
		switch style {
		case renderTable:
			lines = append(lines, p.TableRow())
		case renderList:
			lines = append(lines, "- "+p.Identifier)
		default:
			lines = append(lines, p.Summary())
		}
	}
	return strings.Join(lines, "\n"), nil
}
