// Package querysql compiles pack index queries to SQLite SQL.
package querysql

import (
	"fmt"
	"strings"

	"github.com/shapescape/content-guide/internal/queryir"
)

// Statement is a compiled query.
type Statement struct {
	SQL    string
	Params []any
	// Layout lists the relation of each tuple position. The selected
	// columns are, per relation in order, "id" followed by Fields().
	Layout []queryir.Relation
}

// ColumnCount returns the number of selected columns.
func (s *Statement) ColumnCount() int {
	n := 0
	for _, rel := range s.Layout {
		n += 1 + len(rel.Fields())
	}
	return n
}

var tables = map[queryir.Relation]string{
	queryir.Entity:           "entities",
	queryir.BpItem:           "bp_items",
	queryir.LootTable:        "loot_tables",
	queryir.LootTableItem:    "loot_table_items",
	queryir.TradeTable:       "trade_tables",
	queryir.TradeTableItem:   "trade_table_items",
	queryir.SoundDefinition:  "sound_definitions",
	queryir.Feature:          "features",
	queryir.FeaturePlacement: "feature_places",
	queryir.FeatureRule:      "feature_rules",
}

// joins holds the JOIN clause for each directed edge. %[1]s is the alias of
// the previous relation and %[2]s the alias of the joined one.
var joins = map[[2]queryir.Relation]string{
	{queryir.BpItem, queryir.LootTableItem}: "JOIN loot_table_items %[2]s ON %[2]s.item = %[1]s.identifier",
	{queryir.LootTableItem, queryir.BpItem}: "JOIN bp_items %[2]s ON %[2]s.identifier = %[1]s.item",

	{queryir.LootTableItem, queryir.LootTable}: "JOIN loot_tables %[2]s ON %[2]s.id = %[1]s.loot_table_id",
	{queryir.LootTable, queryir.LootTableItem}: "JOIN loot_table_items %[2]s ON %[2]s.loot_table_id = %[1]s.id",

	{queryir.LootTable, queryir.Entity}: "JOIN entity_loot_tables %[2]s_link ON %[2]s_link.loot_table = %[1]s.identifier " +
		"JOIN entities %[2]s ON %[2]s.id = %[2]s_link.entity_id",
	{queryir.Entity, queryir.LootTable}: "JOIN entity_loot_tables %[2]s_link ON %[2]s_link.entity_id = %[1]s.id " +
		"JOIN loot_tables %[2]s ON %[2]s.identifier = %[2]s_link.loot_table",

	{queryir.BpItem, queryir.TradeTableItem}: "JOIN trade_table_items %[2]s ON %[2]s.item = %[1]s.identifier",
	{queryir.TradeTableItem, queryir.BpItem}: "JOIN bp_items %[2]s ON %[2]s.identifier = %[1]s.item",

	{queryir.TradeTableItem, queryir.TradeTable}: "JOIN trade_tables %[2]s ON %[2]s.id = %[1]s.trade_table_id",
	{queryir.TradeTable, queryir.TradeTableItem}: "JOIN trade_table_items %[2]s ON %[2]s.trade_table_id = %[1]s.id",

	{queryir.TradeTable, queryir.Entity}: "JOIN entity_trade_tables %[2]s_link ON %[2]s_link.trade_table = %[1]s.identifier " +
		"JOIN entities %[2]s ON %[2]s.id = %[2]s_link.entity_id",
	{queryir.Entity, queryir.TradeTable}: "JOIN entity_trade_tables %[2]s_link ON %[2]s_link.entity_id = %[1]s.id " +
		"JOIN trade_tables %[2]s ON %[2]s.identifier = %[2]s_link.trade_table",

	{queryir.Feature, queryir.FeaturePlacement}: "JOIN feature_places %[2]s ON %[2]s.feature_id = %[1]s.id",
	{queryir.FeaturePlacement, queryir.Feature}: "JOIN features %[2]s ON %[2]s.id = %[1]s.feature_id",
}

// Compile converts a query to parameterized SQL. Every value is passed as a
// parameter, never interpolated. Rows are ordered by the id of each relation
// in chain order.
func Compile(q queryir.Query) (*Statement, error) {
	if q == nil {
		return nil, fmt.Errorf("cannot compile nil query")
	}
	if err := queryir.Validate(q).Err(); err != nil {
		return nil, err
	}

	selects := queryir.Selects(q)
	stmt := &Statement{Layout: make([]queryir.Relation, 0, len(selects))}

	var columns, from, where, order []string
	for i, sel := range selects {
		alias := fmt.Sprintf("t%d", i)
		stmt.Layout = append(stmt.Layout, sel.From)

		columns = append(columns, alias+".id")
		for _, field := range sel.From.Fields() {
			columns = append(columns, alias+"."+field)
		}

		if i == 0 {
			from = append(from, tables[sel.From]+" "+alias)
		} else {
			prev := selects[i-1].From
			clause, ok := joins[[2]queryir.Relation{prev, sel.From}]
			if !ok {
				return nil, fmt.Errorf("no join from %s to %s", prev, sel.From)
			}
			from = append(from, fmt.Sprintf(clause, fmt.Sprintf("t%d", i-1), alias))
		}

		if sel.Filter != nil {
			sql, params, err := compilePredicate(alias, sel.Filter)
			if err != nil {
				return nil, fmt.Errorf("compile filter of %s: %w", sel.From, err)
			}
			where = append(where, sql)
			stmt.Params = append(stmt.Params, params...)
		}

		order = append(order, alias+".id ASC")
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(strings.Join(from, " "))
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(strings.Join(order, ", "))
	stmt.SQL = b.String()
	return stmt, nil
}

func compilePredicate(alias string, p queryir.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case queryir.Equals:
		return alias + "." + pred.Field + " = ?", []any{pred.Value}, nil
	case *queryir.Equals:
		return compilePredicate(alias, *pred)
	case queryir.NotNull:
		return alias + "." + pred.Field + " IS NOT NULL", nil, nil
	case *queryir.NotNull:
		return compilePredicate(alias, *pred)
	case queryir.And:
		return compileAnd(alias, pred)
	case *queryir.And:
		return compileAnd(alias, *pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func compileAnd(alias string, and queryir.And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil
	}
	parts := make([]string, 0, len(and.Predicates))
	var params []any
	for _, pred := range and.Predicates {
		sql, p, err := compilePredicate(alias, pred)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		params = append(params, p...)
	}
	return "(" + strings.Join(parts, " AND ") + ")", params, nil
}
