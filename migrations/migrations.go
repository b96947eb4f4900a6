// Package migrations holds the SQL schema and applies it in file order.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"sort"

	"github.com/jmoiron/sqlx"
)

//go:embed *.sql
var files embed.FS

// Files lists the embedded migration files in the order they are applied.
func Files() ([]string, error) {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Apply runs every migration inside one transaction. The statements are
// idempotent, so Apply can run on every deploy.
func Apply(ctx context.Context, db *sqlx.DB) error {
	names, err := Files()
	if err != nil {
		return fmt.Errorf("migrations: listing files: %w", err)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migrations: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, name := range names {
		body, err := files.ReadFile(name)
		if err != nil {
			return fmt.Errorf("migrations: reading %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, string(body)); err != nil {
			return fmt.Errorf("migrations: applying %s: %w", name, err)
		}
		log.Printf("[MIGRATE] applied %s", name)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrations: commit: %w", err)
	}
	return nil
}
