package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shapescape/content-guide/internal/queryir"
)

func TestCompile_SingleSelect(t *testing.T) {
	stmt, err := Compile(queryir.Select{From: queryir.SoundDefinition})
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT t0.id, t0.identifier, t0.path FROM sound_definitions t0 ORDER BY t0.id ASC",
		stmt.SQL)
	assert.Empty(t, stmt.Params)
	assert.Equal(t, []queryir.Relation{queryir.SoundDefinition}, stmt.Layout)
	assert.Equal(t, 3, stmt.ColumnCount())
}

func TestCompile_DroppingEntitiesChain(t *testing.T) {
	stmt, err := Compile(queryir.Chain(
		queryir.Select{From: queryir.LootTableItem, Filter: queryir.Equals{Field: "item", Value: "ns:gem'; DROP TABLE entities; --"}},
		queryir.Select{From: queryir.LootTable},
		queryir.Select{From: queryir.Entity},
	))
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT t0.id, t0.item, t0.spawn_egg, t1.id, t1.identifier, t1.path, t2.id, t2.identifier, t2.path "+
			"FROM loot_table_items t0 "+
			"JOIN loot_tables t1 ON t1.id = t0.loot_table_id "+
			"JOIN entity_loot_tables t2_link ON t2_link.loot_table = t1.identifier "+
			"JOIN entities t2 ON t2.id = t2_link.entity_id "+
			"WHERE t0.item = ? "+
			"ORDER BY t0.id ASC, t1.id ASC, t2.id ASC",
		stmt.SQL)
	assert.Equal(t, []any{"ns:gem'; DROP TABLE entities; --"}, stmt.Params)
	assert.NotContains(t, stmt.SQL, "DROP")
	assert.Equal(t, 9, stmt.ColumnCount())
}

func TestCompile_FiltersOnSeveralRelations(t *testing.T) {
	stmt, err := Compile(queryir.Chain(
		queryir.Select{From: queryir.TradeTable, Filter: queryir.Equals{Field: "identifier", Value: "trading/a.json"}},
		queryir.Select{From: queryir.Entity, Filter: &queryir.And{Predicates: []queryir.Predicate{
			queryir.NotNull{Field: "identifier"},
			&queryir.Equals{Field: "path", Value: "BP/entities/a.json"},
		}}},
	))
	require.NoError(t, err)

	assert.Contains(t, stmt.SQL, "JOIN entity_trade_tables t1_link ON t1_link.trade_table = t0.identifier")
	assert.Contains(t, stmt.SQL, "WHERE t0.identifier = ? AND (t1.identifier IS NOT NULL AND t1.path = ?)")
	assert.Equal(t, []any{"trading/a.json", "BP/entities/a.json"}, stmt.Params)
}

func TestCompile_EmptyAnd(t *testing.T) {
	stmt, err := Compile(queryir.Select{From: queryir.Entity, Filter: queryir.And{}})
	require.NoError(t, err)
	assert.Contains(t, stmt.SQL, "WHERE 1 = 1")
}

func TestCompile_EveryEdgeHasAJoin(t *testing.T) {
	for _, a := range queryir.Relations() {
		for _, b := range queryir.Relations() {
			if !queryir.Joinable(a, b) {
				continue
			}
			_, err := Compile(queryir.Chain(queryir.Select{From: a}, queryir.Select{From: b}))
			assert.NoError(t, err, "%s -> %s", a, b)
		}
	}
}

func TestCompile_Invalid(t *testing.T) {
	_, err := Compile(nil)
	assert.Error(t, err)

	_, err = Compile(queryir.Chain(queryir.Select{From: queryir.LootTableItem}, queryir.Select{From: queryir.Entity}))
	assert.Error(t, err)

	_, err = Compile(queryir.Select{From: queryir.Entity, Filter: queryir.Equals{Field: "name", Value: "x"}})
	assert.Error(t, err)
}
