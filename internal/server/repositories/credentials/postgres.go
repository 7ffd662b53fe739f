package credentials

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/minauth/internal/common"
	"github.com/dmitrijs2005/minauth/internal/dbx"
	"github.com/dmitrijs2005/minauth/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Credential, error) {
	query :=
		`SELECT id, salt, pwhash, rules FROM credentials
		 WHERE id = $1
		 `

	cred := &models.Credential{}
	var rules []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(&cred.ID, &cred.Salt, &cred.PasswordHash, &rules)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if len(rules) > 0 {
		if err := json.Unmarshal(rules, &cred.Rules); err != nil {
			return nil, fmt.Errorf("rules decode error: %w", err)
		}
	}

	return cred, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Credential, error) {
	query :=
		`SELECT id, salt, pwhash, rules FROM credentials
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var creds []*models.Credential
	for rows.Next() {
		cred := &models.Credential{}
		var rules []byte
		if err := rows.Scan(&cred.ID, &cred.Salt, &cred.PasswordHash, &rules); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if len(rules) > 0 {
			if err := json.Unmarshal(rules, &cred.Rules); err != nil {
				return nil, fmt.Errorf("rules decode error: %w", err)
			}
		}
		creds = append(creds, cred)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return creds, nil
}

func (r *PostgresRepository) Save(ctx context.Context, cred *models.Credential) error {
	rules, err := json.Marshal(cred.Rules)
	if err != nil {
		return fmt.Errorf("rules encode error: %w", err)
	}

	query :=
		`INSERT INTO credentials (id, salt, pwhash, rules)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET salt = $2, pwhash = $3, rules = $4, updated_at = now()
		 `

	if _, err := r.db.ExecContext(ctx, query, cred.ID, cred.Salt, cred.PasswordHash, rules); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
