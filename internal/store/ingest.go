package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/shapescape/content-guide/internal/diag"
	"github.com/shapescape/content-guide/internal/jsontree"
)

// Reporter receives per-file failures during ingestion.
type Reporter interface {
	Report(err error)
}

type discard struct{}

func (discard) Report(error) {}

const spawnEggSuffix = "_spawn_egg"

var (
	// ns:item:3 or item:3, the data value is not part of the catalog
	// identifier. Same rule as recipe keys so both sides of a join agree.
	dataSuffixPattern = regexp.MustCompile(`^((?:[a-zA-Z0-9_]+:)?[a-zA-Z0-9_]+):([1-9][0-9]*)$`)

	// Components whose "table" field references a loot or trade table.
	lootComponents  = []string{"minecraft:loot"}
	tradeComponents = []string{"minecraft:trade_table", "minecraft:economy_trade_table"}

	// Feature fields that name a single placed feature.
	placesKeys = map[string]bool{
		"places_feature":   true,
		"feature_to_place": true,
		"feature_to_snap":  true,
		"feature":          true,
	}
)

// LoadBehaviorPack indexes the entities, items, loot tables, trade tables,
// features and feature rules of the behavior pack at root. Files that cannot
// be read or parsed are reported to rep (which may be nil) and skipped. Only
// database failures are returned.
func (s *Store) LoadBehaviorPack(ctx context.Context, root string, rep Reporter) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin behavior pack load: %w", err)
	}
	defer tx.Rollback()

	if rep == nil {
		rep = discard{}
	}
	l := &loader{ctx: ctx, tx: tx, root: root, rep: rep}
	steps := []struct {
		dir  string
		load func(*jsontree.Document) error
	}{
		{"entities", l.entity},
		{"items", l.item},
		{"loot_tables", l.lootTable},
		{"trading", l.tradeTable},
		{"features", l.feature},
		{"feature_rules", l.featureRule},
	}
	for _, step := range steps {
		if err := l.each(step.dir, step.load); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit behavior pack load: %w", err)
	}
	return nil
}

// LoadResourcePack indexes the sound definitions of the resource pack at
// root.
func (s *Store) LoadResourcePack(ctx context.Context, root string, rep Reporter) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin resource pack load: %w", err)
	}
	defer tx.Rollback()

	if rep == nil {
		rep = discard{}
	}
	l := &loader{ctx: ctx, tx: tx, root: root, rep: rep}
	path := filepath.Join(root, "sounds", "sound_definitions.json")
	doc, err := jsontree.Load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		rep.Report(err)
	default:
		if err := l.soundDefinitions(doc); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit resource pack load: %w", err)
	}
	return nil
}

type loader struct {
	ctx  context.Context
	tx   *sql.Tx
	root string
	rep  Reporter
}

// each loads every JSON file under root/dir in lexical order.
func (l *loader) each(dir string, load func(*jsontree.Document) error) error {
	base := filepath.Join(l.root, dir)
	var paths []string
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == base && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			l.rep.Report(diag.Wrap(diag.ErrIO, path, "scan pack", err))
			return nil
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".json") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan %s: %w", base, err)
	}

	for _, path := range paths {
		doc, err := jsontree.Load(path)
		if err != nil {
			l.rep.Report(err)
			continue
		}
		if err := load(doc); err != nil {
			return fmt.Errorf("index %s: %w", path, err)
		}
	}
	return nil
}

// packID returns the path of doc relative to the pack root, slash separated.
// Loot and trade tables are referenced by this form.
func (l *loader) packID(doc *jsontree.Document) string {
	rel, err := filepath.Rel(l.root, doc.Path())
	if err != nil {
		return filepath.ToSlash(doc.Path())
	}
	return filepath.ToSlash(rel)
}

func (l *loader) insert(query string, args ...any) (int64, error) {
	res, err := l.tx.ExecContext(l.ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (l *loader) entity(doc *jsontree.Document) error {
	root := doc.Get(jsontree.P("minecraft:entity"))
	id, err := l.insert("INSERT INTO entities (identifier, path) VALUES (?, ?)",
		nullString(root.Get("description.identifier")), doc.Path())
	if err != nil {
		return err
	}

	groups := []gjson.Result{root.Get("components")}
	root.Get("component_groups").ForEach(func(_, group gjson.Result) bool {
		groups = append(groups, group)
		return true
	})
	for _, components := range groups {
		for _, name := range lootComponents {
			if table := components.Get(jsontree.P(name, "table").String()); table.Type == gjson.String {
				if _, err := l.insert("INSERT OR IGNORE INTO entity_loot_tables (entity_id, loot_table) VALUES (?, ?)",
					id, tableRef(table.Str)); err != nil {
					return err
				}
			}
		}
		for _, name := range tradeComponents {
			if table := components.Get(jsontree.P(name, "table").String()); table.Type == gjson.String {
				if _, err := l.insert("INSERT OR IGNORE INTO entity_trade_tables (entity_id, trade_table) VALUES (?, ?)",
					id, tableRef(table.Str)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (l *loader) item(doc *jsontree.Document) error {
	_, err := l.insert("INSERT INTO bp_items (identifier, path) VALUES (?, ?)",
		nullString(doc.Get(jsontree.P("minecraft:item", "description", "identifier"))), doc.Path())
	return err
}

func (l *loader) lootTable(doc *jsontree.Document) error {
	tableID, err := l.insert("INSERT INTO loot_tables (identifier, path) VALUES (?, ?)", l.packID(doc), doc.Path())
	if err != nil {
		return err
	}
	var walk func(entries gjson.Result) error
	walk = func(entries gjson.Result) error {
		for _, entry := range entries.Array() {
			if entry.Get("type").Str == "item" {
				item, egg := itemRef(entry.Get("name").Str, entry.Get("functions"))
				if item != "" {
					if _, err := l.insert("INSERT INTO loot_table_items (loot_table_id, item, spawn_egg) VALUES (?, ?, ?)",
						tableID, item, egg); err != nil {
						return err
					}
				}
			}
			// Nested pools of inline loot tables.
			for _, pool := range entry.Get("pools").Array() {
				if err := walk(pool.Get("entries")); err != nil {
					return err
				}
			}
		}
		return nil
	}
	for _, pool := range doc.Get(jsontree.P("pools")).Array() {
		if err := walk(pool.Get("entries")); err != nil {
			return err
		}
	}
	return nil
}

func (l *loader) tradeTable(doc *jsontree.Document) error {
	tableID, err := l.insert("INSERT INTO trade_tables (identifier, path) VALUES (?, ?)", l.packID(doc), doc.Path())
	if err != nil {
		return err
	}
	record := func(entry gjson.Result) error {
		item, egg := itemRef(entry.Get("item").Str, entry.Get("functions"))
		if item == "" {
			return nil
		}
		_, err := l.insert("INSERT INTO trade_table_items (trade_table_id, item, spawn_egg) VALUES (?, ?, ?)",
			tableID, item, egg)
		return err
	}
	trade := func(t gjson.Result) error {
		for _, side := range []string{"wants", "gives"} {
			for _, entry := range t.Get(side).Array() {
				if choice := entry.Get("choice"); choice.IsArray() {
					for _, c := range choice.Array() {
						if err := record(c); err != nil {
							return err
						}
					}
					continue
				}
				if err := record(entry); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for _, tier := range doc.Get(jsontree.P("tiers")).Array() {
		for _, t := range tier.Get("trades").Array() {
			if err := trade(t); err != nil {
				return err
			}
		}
		for _, group := range tier.Get("groups").Array() {
			for _, t := range group.Get("trades").Array() {
				if err := trade(t); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (l *loader) feature(doc *jsontree.Document) error {
	var err error
	doc.Root().ForEach(func(key, body gjson.Result) bool {
		if key.Str == "format_version" || !body.IsObject() {
			return true
		}
		var featureID int64
		featureID, err = l.insert("INSERT INTO features (identifier, path, json_path) VALUES (?, ?, ?)",
			nullString(body.Get("description.identifier")), doc.Path(), key.Str)
		if err != nil {
			return false
		}
		for _, placed := range placedFeatures(body) {
			if _, err = l.insert("INSERT INTO feature_places (feature_id, identifier) VALUES (?, ?)",
				featureID, placed); err != nil {
				return false
			}
		}
		return true
	})
	return err
}

func (l *loader) featureRule(doc *jsontree.Document) error {
	desc := doc.Get(jsontree.P("minecraft:feature_rules", "description"))
	_, err := l.insert("INSERT INTO feature_rules (identifier, places_feature, path) VALUES (?, ?, ?)",
		nullString(desc.Get("identifier")), nullString(desc.Get("places_feature")), doc.Path())
	return err
}

func (l *loader) soundDefinitions(doc *jsontree.Document) error {
	defs := doc.Get(jsontree.P("sound_definitions"))
	if !defs.Exists() {
		// Legacy files keep the definitions at the root.
		defs = doc.Root()
	}
	var err error
	defs.ForEach(func(key, value gjson.Result) bool {
		if key.Str == "format_version" || !value.IsObject() {
			return true
		}
		_, err = l.insert("INSERT INTO sound_definitions (identifier, path) VALUES (?, ?)", key.Str, doc.Path())
		return err == nil
	})
	return err
}

// placedFeatures collects, in document order, the distinct identifiers a
// feature body places.
func placedFeatures(body gjson.Result) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	var walk func(v gjson.Result)
	walk = func(v gjson.Result) {
		switch {
		case v.IsObject():
			v.ForEach(func(key, child gjson.Result) bool {
				switch {
				case key.Str == "description":
				case placesKeys[key.Str] && child.Type == gjson.String:
					add(child.Str)
				case key.Str == "features" && child.IsArray():
					for _, f := range child.Array() {
						switch {
						case f.Type == gjson.String:
							add(f.Str)
						case f.IsArray():
							// Weighted lists: [identifier, weight].
							if first := f.Get("0"); first.Type == gjson.String {
								add(first.Str)
							}
						default:
							walk(f)
						}
					}
				default:
					walk(child)
				}
				return true
			})
		case v.IsArray():
			for _, child := range v.Array() {
				walk(child)
			}
		}
	}
	walk(body)
	return out
}

// itemRef returns the catalog identifier of a loot or trade item and, for
// spawn eggs, the "<entity>_spawn_egg" identifier.
func itemRef(name string, functions gjson.Result) (item string, spawnEgg sql.NullString) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", spawnEgg
	}
	if m := dataSuffixPattern.FindStringSubmatch(name); m != nil {
		name = m[1]
	}
	if !strings.Contains(name, ":") {
		name = "minecraft:" + name
	}

	if strings.HasSuffix(name, spawnEggSuffix) && name != "minecraft:spawn_egg" {
		return name, sql.NullString{String: name, Valid: true}
	}
	for _, fn := range functions.Array() {
		if fn.Get("function").Str != "set_actor_id" {
			continue
		}
		if actor := fn.Get("id").Str; actor != "" {
			if !strings.Contains(actor, ":") {
				actor = "minecraft:" + actor
			}
			return name, sql.NullString{String: actor + spawnEggSuffix, Valid: true}
		}
	}
	return name, spawnEgg
}

// tableRef normalizes a table path written in an entity file.
func tableRef(p string) string {
	return strings.TrimPrefix(filepath.ToSlash(filepath.Clean(p)), "./")
}

func nullString(r gjson.Result) sql.NullString {
	if r.Type != gjson.String {
		return sql.NullString{}
	}
	return sql.NullString{String: r.Str, Valid: true}
}
