package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/tursodatabase/go-libsql"
)

// pragmas are applied to every connection opened by Open. libSQL rejects
// Exec for PRAGMAs that return rows, so they are run as queries and the
// rows drained.
var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA foreign_keys=ON",
}

// Open returns a libSQL handle for the roster database at path. The
// special path ":memory:" yields a private in-memory database limited to a
// single connection, since every connection would otherwise see its own
// empty database.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	memory := path == ":memory:" || strings.Contains(path, "mode=memory")

	db, err := sql.Open("libsql", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if memory {
		db.SetMaxOpenConns(1)
	}

	for _, p := range pragmas {
		if memory && strings.Contains(p, "journal_mode") {
			continue
		}
		rows, err := db.QueryContext(ctx, p)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("executing %s: %w", p, err)
		}
		rows.Close()
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return db, nil
}
