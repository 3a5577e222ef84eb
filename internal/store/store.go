// Package store is the SQLite-backed pack index.
//
// Behavior and resource pack files are ingested into relational tables
// (entities, items, loot tables, trade tables, sounds, features) and queried
// through queryir. Query results are ordered by row id, and rows are
// inserted in sorted path order, so the same pack always yields the same
// results.
//
// # Database Configuration
//
//   - WAL mode (file databases): readers do not block the writer
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
//   - a single connection, which also keeps ":memory:" databases alive
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"iter"

	_ "github.com/mattn/go-sqlite3"

	"github.com/shapescape/content-guide/internal/queryir"
	"github.com/shapescape/content-guide/internal/querysql"
)

//go:embed schema.sql
var schemaSQL string

// Index file versions (PRAGMA user_version):
//
//	0: tables only
//	1: lookup indexes on the item and spawn egg columns
const currentSchemaVersion = 1

// MemoryPath opens a private in-memory index.
const MemoryPath = ":memory:"

// Store is an open pack index.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path and applies the
// schema. Use MemoryPath for a throwaway index.
//
// Opening an existing index file keeps its rows; call Reset to reload.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open pack index %s: %w", path, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect pack index %s: %w", path, err)
	}

	// SQLite only supports one writer at a time, and every connection to
	// ":memory:" is a separate database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure pack index: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create pack index schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Query runs q and yields its tuples lazily. Iteration stops at the first
// error, which is yielded with a nil tuple. Breaking out of the loop closes
// the underlying rows.
func (s *Store) Query(ctx context.Context, q queryir.Query) iter.Seq2[queryir.Tuple, error] {
	return func(yield func(queryir.Tuple, error) bool) {
		stmt, err := querysql.Compile(q)
		if err != nil {
			yield(nil, fmt.Errorf("compile query: %w", err))
			return
		}

		rows, err := s.db.QueryContext(ctx, stmt.SQL, stmt.Params...)
		if err != nil {
			yield(nil, fmt.Errorf("run query: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			tuple, err := scanTuple(rows, stmt)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(tuple, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("iterate rows: %w", err))
		}
	}
}

// Count returns the number of rows of a relation.
func (s *Store) Count(ctx context.Context, rel queryir.Relation) (int, error) {
	stmt, err := querysql.Compile(queryir.Select{From: rel})
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM ("+stmt.SQL+")", stmt.Params...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", rel, err)
	}
	return n, nil
}

// Counts returns the row count of every relation.
func (s *Store) Counts(ctx context.Context) (map[queryir.Relation]int, error) {
	out := make(map[queryir.Relation]int)
	for _, rel := range queryir.Relations() {
		n, err := s.Count(ctx, rel)
		if err != nil {
			return nil, err
		}
		out[rel] = n
	}
	return out, nil
}

// Reset deletes every indexed row so the packs can be loaded again.
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{
		"entity_loot_tables", "entity_trade_tables",
		"loot_table_items", "trade_table_items", "feature_places",
		"entities", "bp_items", "loot_tables", "trade_tables",
		"sound_definitions", "features", "feature_rules",
	} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func scanTuple(rows *sql.Rows, stmt *querysql.Statement) (queryir.Tuple, error) {
	dest := make([]any, 0, stmt.ColumnCount())
	ids := make([]sql.NullInt64, len(stmt.Layout))
	values := make([][]sql.NullString, len(stmt.Layout))
	for i, rel := range stmt.Layout {
		dest = append(dest, &ids[i])
		values[i] = make([]sql.NullString, len(rel.Fields()))
		for j := range values[i] {
			dest = append(dest, &values[i][j])
		}
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}

	tuple := make(queryir.Tuple, len(stmt.Layout))
	for i, rel := range stmt.Layout {
		rec := queryir.Record{Relation: rel, ID: ids[i].Int64, Fields: make(map[string]string)}
		for j, field := range rel.Fields() {
			if !values[i][j].Valid {
				continue
			}
			rec.Fields[field] = values[i][j].String
			if field == "identifier" {
				id := values[i][j].String
				rec.Identifier = &id
			}
		}
		tuple[i] = rec
	}
	return tuple, nil
}

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA foreign_keys = ON",
}

func applyPragmas(db *sql.DB) error {
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates the missing tables, then brings older index files up
// to currentSchemaVersion.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return err
	}
	return runMigrations(db)
}

// runMigrations upgrades an index file according to its user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// migrateToV1 adds the item lookup indexes to databases created before they
// were part of schema.sql.
func migrateToV1(db *sql.DB) error {
	for _, stmt := range []string{
		"CREATE INDEX IF NOT EXISTS idx_loot_table_items_item ON loot_table_items(item)",
		"CREATE INDEX IF NOT EXISTS idx_loot_table_items_spawn_egg ON loot_table_items(spawn_egg)",
		"CREATE INDEX IF NOT EXISTS idx_trade_table_items_item ON trade_table_items(item)",
		"CREATE INDEX IF NOT EXISTS idx_trade_table_items_spawn_egg ON trade_table_items(spawn_egg)",
	} {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate to v1: %w", err)
		}
	}
	return nil
}

func (s *Store) pragma(name string) (string, error) {
	var value string
	err := s.db.QueryRow("PRAGMA " + name).Scan(&value)
	return value, err
}
