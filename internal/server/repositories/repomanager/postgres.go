// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/minauth/internal/dbx"
	"github.com/dmitrijs2005/minauth/internal/server/migrations"
	"github.com/dmitrijs2005/minauth/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/minauth/internal/server/repositories/requests"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// Credentials returns a credentials.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Credentials(db dbx.DBTX) credentials.Repository {
	return credentials.NewPostgresRepository(db)
}

// Requests returns a requests.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Requests(db dbx.DBTX) requests.Repository {
	return requests.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetDialect("pgx")
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager(db *sql.DB) (RepositoryManager, error) {
	return &PostgresRepositoryManager{}, nil
}
