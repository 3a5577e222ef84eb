package queryir

import "slices"

// Relation names a kind of record in the pack index. A FeaturePlacement is
// one feature placed by a Feature; its identifier is the placed feature.
type Relation string

const (
	Entity           Relation = "Entity"
	BpItem           Relation = "BpItem"
	LootTable        Relation = "LootTable"
	LootTableItem    Relation = "LootTableItem"
	TradeTable       Relation = "TradeTable"
	TradeTableItem   Relation = "TradeTableItem"
	SoundDefinition  Relation = "SoundDefinition"
	Feature          Relation = "Feature"
	FeaturePlacement Relation = "FeaturePlacement"
	FeatureRule      Relation = "FeatureRule"
)

var relationFields = map[Relation][]string{
	Entity:           {"identifier", "path"},
	BpItem:           {"identifier", "path"},
	LootTable:        {"identifier", "path"},
	LootTableItem:    {"item", "spawn_egg"},
	TradeTable:       {"identifier", "path"},
	TradeTableItem:   {"item", "spawn_egg"},
	SoundDefinition:  {"identifier", "path"},
	Feature:          {"identifier", "path", "json_path"},
	FeaturePlacement: {"identifier"},
	FeatureRule:      {"identifier", "path", "places_feature"},
}

// edges lists the relation pairs that can be joined. Joins work in both
// directions.
var edges = [][2]Relation{
	{BpItem, LootTableItem},
	{LootTableItem, LootTable},
	{LootTable, Entity},
	{BpItem, TradeTableItem},
	{TradeTableItem, TradeTable},
	{TradeTable, Entity},
	{Feature, FeaturePlacement},
}

// Relations returns every known relation.
func Relations() []Relation {
	out := make([]Relation, 0, len(relationFields))
	for r := range relationFields {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}

// Valid reports whether r is a known relation.
func (r Relation) Valid() bool {
	_, ok := relationFields[r]
	return ok
}

// Fields returns the columns of r.
func (r Relation) Fields() []string {
	return slices.Clone(relationFields[r])
}

// HasField reports whether r has the column field.
func (r Relation) HasField(field string) bool {
	return slices.Contains(relationFields[r], field)
}

// HasIdentifier reports whether r's records carry an identifier.
func (r Relation) HasIdentifier() bool {
	return r.HasField("identifier")
}

// Joinable reports whether a and b are linked.
func Joinable(a, b Relation) bool {
	for _, e := range edges {
		if (e[0] == a && e[1] == b) || (e[0] == b && e[1] == a) {
			return true
		}
	}
	return false
}
