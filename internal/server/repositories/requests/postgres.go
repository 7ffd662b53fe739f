package requests

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/minauth/internal/common"
	"github.com/dmitrijs2005/minauth/internal/dbx"
	"github.com/dmitrijs2005/minauth/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository binds the repository to a handle. Pass a *sql.Tx to
// run every call, including the FOR UPDATE claim, inside one transaction.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, req *models.Request, payload models.Payload) error {
	if payload.RequestType() != req.Type {
		return fmt.Errorf("payload type %s does not match request type %s: %w",
			payload.RequestType(), req.Type, common.ErrConsistency)
	}

	query :=
		`INSERT INTO requests (id, issuer_id, type, status, rand, created_by, created_at, updated_by, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 `

	_, err := r.db.ExecContext(ctx, query,
		req.ID, req.IssuerID, string(req.Type), string(req.Status), int64(req.RandomTag),
		req.CreatedBy, req.CreatedAt, req.UpdatedBy, req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	switch p := payload.(type) {
	case models.CreateUserPayload:
		query =
			`INSERT INTO create_user_requests (id, username, email, pubkey, created_by, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 `
		_, err = r.db.ExecContext(ctx, query, req.ID, p.Username, p.Email, p.PubKey, req.CreatedBy, req.CreatedAt)
	case models.ChangePubkeyPayload:
		query =
			`INSERT INTO change_pubkey_requests (id, user_id, pubkey, created_by, created_at)
			 VALUES ($1, $2, $3, $4, $5)
			 `
		_, err = r.db.ExecContext(ctx, query, req.ID, p.UserID, p.PubKey, req.CreatedBy, req.CreatedAt)
	case models.RenewPasswordPayload:
		query =
			`INSERT INTO renew_password_requests (id, user_id, created_by, created_at)
			 VALUES ($1, $2, $3, $4)
			 `
		_, err = r.db.ExecContext(ctx, query, req.ID, p.UserID, req.CreatedBy, req.CreatedAt)
	default:
		return fmt.Errorf("unknown payload type %T: %w", payload, common.ErrConsistency)
	}

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) ClaimNew(ctx context.Context, id string) (*models.Request, error) {
	query :=
		`SELECT id, issuer_id, type, status, rand, failure_code, created_by, created_at, updated_by, updated_at
		 FROM requests
		 WHERE id = $1 AND status = $2
		 FOR UPDATE
		 `

	req := &models.Request{}
	var typ, status string
	var randomTag int64
	err := r.db.QueryRowContext(ctx, query, id, string(models.StatusNew)).Scan(
		&req.ID, &req.IssuerID, &typ, &status, &randomTag, &req.FailureCode,
		&req.CreatedBy, &req.CreatedAt, &req.UpdatedBy, &req.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("request %s: %w", id, common.ErrConflict)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	req.Type = models.RequestType(typ)
	req.Status = models.RequestStatus(status)
	req.RandomTag = uint64(randomTag)

	return req, nil
}

func (r *PostgresRepository) LoadPayload(ctx context.Context, id string, typ models.RequestType) (models.Payload, error) {
	var (
		payload models.Payload
		err     error
	)

	switch typ {
	case models.TypeCreateUser:
		query :=
			`SELECT username, email, pubkey FROM create_user_requests
			 WHERE id = $1
			 `
		p := models.CreateUserPayload{}
		err = r.db.QueryRowContext(ctx, query, id).Scan(&p.Username, &p.Email, &p.PubKey)
		payload = p
	case models.TypeChangePubkey:
		query :=
			`SELECT user_id, pubkey FROM change_pubkey_requests
			 WHERE id = $1
			 `
		p := models.ChangePubkeyPayload{}
		err = r.db.QueryRowContext(ctx, query, id).Scan(&p.UserID, &p.PubKey)
		payload = p
	case models.TypeRenewPassword:
		query :=
			`SELECT user_id FROM renew_password_requests
			 WHERE id = $1
			 `
		p := models.RenewPasswordPayload{}
		err = r.db.QueryRowContext(ctx, query, id).Scan(&p.UserID)
		payload = p
	default:
		return nil, fmt.Errorf("unknown request type %q: %w", typ, common.ErrConsistency)
	}

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("request %s has no %s payload: %w", id, typ, common.ErrConsistency)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return payload, nil
}

func (r *PostgresRepository) Transition(ctx context.Context, id string, from, to models.RequestStatus, actor string) error {
	query :=
		`UPDATE requests SET status = $3, updated_by = $4, updated_at = now()
		 WHERE id = $1 AND status = $2
		 `

	res, err := r.db.ExecContext(ctx, query, id, string(from), string(to), actor)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("request %s is not in status %s: %w", id, from, common.ErrConflict)
	}

	return nil
}

func (r *PostgresRepository) ListByStatus(ctx context.Context, status models.RequestStatus) ([]*models.Request, error) {
	query :=
		`SELECT id, issuer_id, type, status, rand, failure_code, created_by, created_at, updated_by, updated_at
		 FROM requests
		 WHERE status = $1
		 ORDER BY created_at
		 `

	rows, err := r.db.QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var reqs []*models.Request
	for rows.Next() {
		req := &models.Request{}
		var typ, st string
		var randomTag int64
		if err := rows.Scan(&req.ID, &req.IssuerID, &typ, &st, &randomTag, &req.FailureCode,
			&req.CreatedBy, &req.CreatedAt, &req.UpdatedBy, &req.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		req.Type = models.RequestType(typ)
		req.Status = models.RequestStatus(st)
		req.RandomTag = uint64(randomTag)
		reqs = append(reqs, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return reqs, nil
}

func (r *PostgresRepository) PendingIDs(ctx context.Context, limit int) ([]string, error) {
	query :=
		`SELECT id FROM requests
		 WHERE status = $1
		 ORDER BY created_at
		 LIMIT $2
		 `

	rows, err := r.db.QueryContext(ctx, query, string(models.StatusNew), limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return ids, nil
}
