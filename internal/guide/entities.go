package guide

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/shapescape/content-guide/internal/diag"
	"github.com/shapescape/content-guide/internal/jsontree"
)

// Category groups entities in the guide.
type Category string

const (
	CategoryCharacter              Category = "character"
	CategoryTrader                 Category = "trader"
	CategoryNonPlayerFacingUtility Category = "non_player_facing_utility"
	CategoryPlayerFacingUtility    Category = "player_facing_utility"
	CategoryProjectile             Category = "projectile"
	CategoryCreature               Category = "creature"
	CategoryDecoration             Category = "decoration"
	CategoryInteractiveEntity      Category = "interactive_entity"
)

const defaultCategory = CategoryNonPlayerFacingUtility

// Categories lists every valid category in declaration order.
var Categories = []Category{
	CategoryCharacter, CategoryTrader, CategoryNonPlayerFacingUtility,
	CategoryPlayerFacingUtility, CategoryProjectile, CategoryCreature,
	CategoryDecoration, CategoryInteractiveEntity,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return slices.Contains(Categories, c)
}

// Location is a position in the world.
type Location [3]float64

func (l Location) String() string {
	return "(" + formatCoord(l[0]) + " " + formatCoord(l[1]) + " " + formatCoord(l[2]) + ")"
}

// formatCoord prints whole numbers with one decimal, like "12.0".
func formatCoord(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

// EntityProperties describes one custom entity.
type EntityProperties struct {
	Path        string     `json:"path"`
	Identifier  string     `json:"identifier"`
	Description string     `json:"description"`
	Category    Category   `json:"category"`
	Locations   []Location `json:"locations,omitempty"`
}

func (e *EntityProperties) locations() string {
	parts := make([]string, len(e.Locations))
	for i, l := range e.Locations {
		parts[i] = l.String()
	}
	return strings.Join(parts, ", ")
}

// Summary renders the prose section of the entity.
func (e *EntityProperties) Summary() string {
	lines := []string{"### " + e.Identifier}
	if e.Description != "" {
		lines = append(lines, e.Description)
	}
	if len(e.Locations) > 0 {
		lines = append(lines, "\n**Locations:** "+e.locations())
	}
	return strings.Join(lines, "\n") + "\n"
}

// TableRow renders the entity as a table row without the header.
func (e *EntityProperties) TableRow() string {
	locations := "N/A"
	if len(e.Locations) > 0 {
		locations = e.locations()
	}
	return "| " + e.Identifier + " | " + strings.ReplaceAll(e.Description, "\n", "<br>") + " | " + locations + " |"
}

// Entity loads the entity file at path. Vanilla entities yield nil without
// a diagnostic.
func (g *Generator) Entity(path string) *EntityProperties {
	return g.cache.entity(path, func() *EntityProperties {
		return g.loadEntity(path)
	})
}

func (g *Generator) loadEntity(path string) *EntityProperties {
	r := g.open(path, jsontree.P("minecraft:entity", "description"), "ENTITY")
	if r == nil {
		return nil
	}
	id, ok := r.identifier()
	if !ok {
		g.rep.Errorf(diag.ErrMissingField, path,
			"Missing properties to generate summary of the ENTITY:\n\t- Missing entity identifier")
		return nil
	}
	if strings.HasPrefix(id, "minecraft:") {
		return nil
	}

	e := &EntityProperties{Path: path, Identifier: id}
	e.Description = r.text("description", "entity")
	e.Category = r.category()
	e.Locations = r.locations()
	g.finish(r)
	g.log.Debug("entity loaded", "identifier", id, "category", string(e.Category), "path", filepath.ToSlash(path))
	return e
}

func (r *fileReader) category() Category {
	v := r.get("category")
	if !v.Exists() {
		r.warn("Missing category property (assigned 'utility' category by default)")
		return defaultCategory
	}
	r.patch.Delete(r.root.Append("category"))
	c := Category(v.Str)
	if v.Type != gjson.String || !c.Valid() {
		names := make([]string, len(Categories))
		for i, c := range Categories {
			names[i] = string(c)
		}
		r.warn(fmt.Sprintf("Invalid entity category: %s.\nExpected one of: %s\n(assigned 'utility' category by default)",
			v.String(), strings.Join(names, ", ")))
		return defaultCategory
	}
	return c
}

func (r *fileReader) locations() []Location {
	v := r.get("locations")
	if !v.Exists() {
		r.warn("Missing locations property")
		return nil
	}
	r.patch.Delete(r.root.Append("locations"))
	if !v.IsArray() {
		r.fail(diag.ErrInvalidFieldType, "Invalid entity locations (should be a list of \"x y z\" strings)")
		return nil
	}
	var out []Location
	for _, raw := range v.Array() {
		l, ok := parseLocation(raw)
		if !ok {
			r.fail(diag.ErrInvalidFieldType, "Invalid entity location format")
			break
		}
		out = append(out, l)
	}
	return out
}

// parseLocation reads an "x y z" string.
func parseLocation(v gjson.Result) (Location, bool) {
	var l Location
	if v.Type != gjson.String {
		return l, false
	}
	parts := strings.Split(v.Str, " ")
	if len(parts) != 3 {
		return l, false
	}
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return l, false
		}
		l[i] = f
	}
	return l, true
}

// RenderEntities renders the entities matched by the patterns whose
// category is in cats. Nil cats selects every category.
func (g *Generator) RenderEntities(style renderStyle, include, exclude []string, cats []Category) (string, error) {
	paths, err := g.files(filepath.Join(g.opts.BPPath, "entities"), include, exclude)
	if err != nil {
		return "", err
	}
	var lines []string
	if style == renderTable {
		lines = append(lines, "| Entity | Description | Locations |", "|-------|----------|------|")
	}
	for _, path := range paths {
		e := g.Entity(path)
		if e == nil || (cats != nil && !slices.Contains(cats, e.Category)) {
			continue
		}
		switch style {
		case renderTable:
			lines = append(lines, e.TableRow())
		case renderList:
			lines = append(lines, "- "+e.Identifier)
		default:
			lines = append(lines, e.Summary())
		}
	}
	return strings.Join(lines, "\n"), nil
}
