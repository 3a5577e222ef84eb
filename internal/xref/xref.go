// Package xref answers which entities drop or trade an item, using the pack
// index.
package xref

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/shapescape/content-guide/internal/queryir"
)

// SpawnEggSuffix marks identifiers of spawn egg items.
const SpawnEggSuffix = "_spawn_egg"

// Querier runs pack index queries. *store.Store implements it.
type Querier interface {
	Query(ctx context.Context, q queryir.Query) iter.Seq2[queryir.Tuple, error]
}

// Resolver resolves cross-references between items and entities.
type Resolver struct {
	q Querier
}

// New returns a Resolver over q.
func New(q Querier) *Resolver {
	return &Resolver{q: q}
}

// IsSpawnEgg reports whether id names a spawn egg item.
func IsSpawnEgg(id string) bool {
	return strings.HasSuffix(id, SpawnEggSuffix)
}

// DroppingEntities returns the distinct identifiers of entities whose loot
// tables contain id, in index order.
func (r *Resolver) DroppingEntities(ctx context.Context, id string) ([]string, error) {
	return r.entities(ctx, itemChain(queryir.LootTableItem, queryir.LootTable, id))
}

// TradingEntities returns the distinct identifiers of entities whose trade
// tables contain id, in index order.
func (r *Resolver) TradingEntities(ctx context.Context, id string) ([]string, error) {
	return r.entities(ctx, itemChain(queryir.TradeTableItem, queryir.TradeTable, id))
}

// TradeTableEntities returns the entities using the trade table with the
// given pack-relative identifier (for example "trading/villager.json").
func (r *Resolver) TradeTableEntities(ctx context.Context, tradeID string) ([]string, error) {
	return r.entities(ctx, queryir.Chain(
		queryir.Select{From: queryir.TradeTable, Filter: queryir.Equals{Field: "identifier", Value: tradeID}},
		queryir.Select{From: queryir.Entity},
	))
}

// itemChain joins item rows to entities through their table. Spawn eggs are
// matched on the spawn egg column, which covers every way a table can encode
// one.
func itemChain(items, tables queryir.Relation, id string) queryir.Query {
	field := "item"
	if IsSpawnEgg(id) {
		field = "spawn_egg"
	}
	return queryir.Chain(
		queryir.Select{From: items, Filter: queryir.Equals{Field: field, Value: id}},
		queryir.Select{From: tables},
		queryir.Select{From: queryir.Entity},
	)
}

// entities collects the identifiers of the last relation of q. Rows without
// an identifier are skipped.
func (r *Resolver) entities(ctx context.Context, q queryir.Query) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for tuple, err := range r.q.Query(ctx, q) {
		if err != nil {
			return nil, fmt.Errorf("query entities: %w", err)
		}
		if len(tuple) == 0 {
			continue
		}
		id := tuple[len(tuple)-1].Identifier
		if id == nil || seen[*id] {
			continue
		}
		seen[*id] = true
		out = append(out, *id)
	}
	return out, nil
}
