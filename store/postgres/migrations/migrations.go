// Package migrations contains the Relational Index's database migrations.
//
// It's expected that github.com/remind101/migrate will be used to apply
// these, grounded on claircore's datastore/postgres/migrations package.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/remind101/migrate"
)

// MigrationTable is the name of the table tracking applied migrations.
const MigrationTable = "registryindex_migrations"

//go:embed *.sql
var sys embed.FS

// Migrations holds the ordered set of migrations to apply on startup.
var Migrations []migrate.Migration

func init() {
	ents, err := fs.ReadDir(sys, ".")
	if err != nil {
		panic(fmt.Errorf("programmer error: unable to read embed: %w", err))
	}
	id := 1
	for _, ent := range ents {
		if path.Ext(ent.Name()) != ".sql" || !ent.Type().IsRegular() {
			continue
		}
		p := ent.Name()
		Migrations = append(Migrations, migrate.Migration{
			ID: id,
			Up: func(tx *sql.Tx) error {
				f, err := sys.Open(p)
				if err != nil {
					return fmt.Errorf("unable to open migration %q: %w", p, err)
				}
				defer f.Close()
				var b strings.Builder
				if _, err := io.Copy(&b, f); err != nil {
					return fmt.Errorf("unable to read migration %q: %w", p, err)
				}
				if _, err := tx.Exec(b.String()); err != nil {
					return fmt.Errorf("unable to exec migration %q: %w", p, err)
				}
				return nil
			},
		})
		id++
	}
}
