// Package queryir describes queries over the pack index.
//
// A query is a chain of relations joined along the edges the index knows
// about, for example "loot table items, their loot tables, and the entities
// that use those tables". Each link is a Select on one relation with an
// optional filter; Join chains them left to right:
//
//	queryir.Chain(
//	    queryir.Select{From: queryir.LootTableItem, Filter: queryir.Equals{Field: "item", Value: "ns:gem"}},
//	    queryir.Select{From: queryir.LootTable},
//	    queryir.Select{From: queryir.Entity},
//	)
//
// Query and Predicate are sealed interfaces: only this package implements
// them, so backends can switch over them exhaustively.
//
// Results are tuples with one Record per relation in chain order. Backends
// must return tuples in a stable order (by row id of each relation, left to
// right) so generated documents are reproducible.
package queryir
