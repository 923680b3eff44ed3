package postgres

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Open builds a bun DB over the pgdriver connector for the given DSN.
func Open(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// uniqueViolation reports whether err is a Postgres unique-constraint
// violation, optionally on a constraint whose name contains hint.
func uniqueViolation(err error, hint string) bool {
	var pgErr pgdriver.Error
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Field('C') != "23505" {
		return false
	}
	if hint == "" {
		return true
	}
	return strings.Contains(pgErr.Field('n'), hint) || strings.Contains(pgErr.Field('M'), hint)
}
