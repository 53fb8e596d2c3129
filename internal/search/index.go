// Package search keeps an in-memory SQLite index of stop and bus names for
// prefix search.
package search

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/mattn/go-sqlite3" // CGo-based SQLite driver
	"transitcatalogue.org/internal/catalogue"
	"transitcatalogue.org/internal/logging"
)

//go:embed schema.sql
var ddl string

// Kind says what a name belongs to.
type Kind string

const (
	KindStop Kind = "stop"
	KindBus  Kind = "bus"
)

// Result is one search hit.
type Result struct {
	Kind Kind   `json:"kind"`
	Name string `json:"name"`
}

// Source is the part of a catalogue the index reads.
type Source interface {
	Stops() []catalogue.Stop
	SortedBuses() []catalogue.Bus
}

// Index is a name index backed by a private in-memory database.
type Index struct {
	DB     *sql.DB
	logger *slog.Logger
}

// NewIndex opens an empty index.
func NewIndex(ctx context.Context, logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, err
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := migrate(ctx, db); err != nil {
		logging.SafeCloseWithLogging(db, logger, "search index")
		return nil, fmt.Errorf("error performing search index migration: %w", err)
	}

	return &Index{DB: db, logger: logger.With(slog.String("component", "search"))}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(ddl, "-- migrate") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the database.
func (i *Index) Close() error {
	return i.DB.Close()
}

// Build replaces the index contents with every stop and bus name in src.
func (i *Index) Build(ctx context.Context, src Source) error {
	tx, err := i.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer logging.SafeRollbackWithLogging(tx, i.logger, "build_search_index")

	if _, err := tx.ExecContext(ctx, `DELETE FROM names`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO names (kind, name) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer logging.SafeCloseWithLogging(stmt, i.logger, "search insert statement")

	stops := src.Stops()
	for _, stop := range stops {
		if _, err := stmt.ExecContext(ctx, KindStop, stop.Name); err != nil {
			return fmt.Errorf("indexing stop %q: %w", stop.Name, err)
		}
	}
	buses := src.SortedBuses()
	for _, bus := range buses {
		if _, err := stmt.ExecContext(ctx, KindBus, bus.Name); err != nil {
			return fmt.Errorf("indexing bus %q: %w", bus.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logging.LogOperation(i.logger, "search_index_built",
		slog.Int("stops", len(stops)),
		slog.Int("buses", len(buses)))
	return nil
}

const searchNames = `
SELECT kind, name
FROM names
WHERE name LIKE ?1 ESCAPE '\' OR name LIKE ?2 ESCAPE '\'
ORDER BY
    CASE WHEN name LIKE ?1 ESCAPE '\' THEN 0 ELSE 1 END,
    name COLLATE NOCASE,
    kind
LIMIT ?3
`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search returns up to limit names that start with query, or that contain a
// word starting with it. Case is ignored for ASCII letters. Whole-name
// prefix matches come first.
func (i *Index) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" || limit <= 0 {
		return []Result{}, nil
	}
	escaped := likeEscaper.Replace(query)

	rows, err := i.DB.QueryContext(ctx, searchNames, escaped+"%", "% "+escaped+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck // closing is also checked explicitly below

	results := []Result{}
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.Kind, &r.Name); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
