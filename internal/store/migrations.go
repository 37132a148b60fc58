package store

import (
	"database/sql"
	"log"

	assets "github.com/jhalttu/textpipe"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func RunMigrations(db *sql.DB, dialect string) {
	goose.SetBaseFS(assets.MigrationsFS)
	if err := goose.SetDialect(dialect); err != nil {
		log.Fatal(err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		log.Fatal(err)
	}
}
