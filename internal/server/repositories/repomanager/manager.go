package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/minauth/internal/dbx"
	"github.com/dmitrijs2005/minauth/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/minauth/internal/server/repositories/requests"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Credentials(db dbx.DBTX) credentials.Repository
	Requests(db dbx.DBTX) requests.Repository
}
