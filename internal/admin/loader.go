package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/minauth/internal/dbx"
	"github.com/dmitrijs2005/minauth/internal/logging"
	"github.com/dmitrijs2005/minauth/internal/server/cache"
	"github.com/dmitrijs2005/minauth/internal/server/models"
	"github.com/dmitrijs2005/minauth/internal/server/repositories/credentials"
)

// Loader imports credential records from JSON exports into the durable
// store. After a record is written its cache entry is dropped, so the
// verification path picks up the change ahead of the TTL.
type Loader struct {
	db     *sql.DB
	cache  cache.Cache
	logger logging.Logger

	repoFor func(db dbx.DBTX) credentials.Repository
}

func NewLoader(db *sql.DB, c cache.Cache, logger logging.Logger) *Loader {
	return &Loader{
		db:     db,
		cache:  c,
		logger: logger.With("module", "loader"),
		repoFor: func(db dbx.DBTX) credentials.Repository {
			return credentials.NewPostgresRepository(db)
		},
	}
}

// LoadFile reads a JSON array of credentials from path and upserts each
// record. The whole import runs in one transaction; cache invalidation
// happens after the commit and is best-effort.
func (l *Loader) LoadFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read export: %w", err)
	}
	return l.Load(ctx, data)
}

// Load imports credentials from raw JSON export data.
func (l *Loader) Load(ctx context.Context, data []byte) (int, error) {
	var creds []*models.Credential
	if err := json.Unmarshal(data, &creds); err != nil {
		return 0, fmt.Errorf("decode export: %w", err)
	}

	for i, cred := range creds {
		if cred.ID == "" || cred.Salt == "" || cred.PasswordHash == "" {
			return 0, fmt.Errorf("record %d: id, salt and pwhash are required", i)
		}
	}

	err := dbx.WithTx(ctx, l.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := l.repoFor(tx)
		for _, cred := range creds {
			if err := repo.Save(ctx, cred); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, cred := range creds {
		if err := l.cache.Delete(ctx, cred.ID); err != nil {
			l.logger.Warn(ctx, "cache invalidation failed", "credential_id", cred.ID, "error", err)
		}
	}

	l.logger.Info(ctx, "credentials loaded", "count", len(creds))
	return len(creds), nil
}
