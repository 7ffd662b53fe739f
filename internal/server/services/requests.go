package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/minauth/internal/common"
	"github.com/dmitrijs2005/minauth/internal/dbx"
	"github.com/dmitrijs2005/minauth/internal/idgen"
	"github.com/dmitrijs2005/minauth/internal/server/models"
	"github.com/dmitrijs2005/minauth/internal/server/repositories/requests"
)

// RequestService accepts new account-change requests. Each submission gets a
// generated id and a random worker-assignment tag, and lands in status new
// together with its payload row in one transaction.
type RequestService struct {
	db    *sql.DB
	idgen *idgen.Generator

	repoFor func(db dbx.DBTX) requests.Repository
}

func NewRequestService(db *sql.DB) *RequestService {
	return &RequestService{
		db:    db,
		idgen: idgen.NewGenerator(),
		repoFor: func(db dbx.DBTX) requests.Repository {
			return requests.NewPostgresRepository(db)
		},
	}
}

func (s *RequestService) Submit(ctx context.Context, issuerID string, payload models.Payload) (*models.Request, error) {
	if payload == nil {
		return nil, fmt.Errorf("payload is required: %w", common.ErrInternal)
	}

	now := time.Now().UTC()
	req := &models.Request{
		ID:        s.idgen.NewID(),
		IssuerID:  issuerID,
		Type:      payload.RequestType(),
		Status:    models.StatusNew,
		RandomTag: common.RandUint64(),
		CreatedBy: issuerID,
		CreatedAt: now,
		UpdatedBy: issuerID,
		UpdatedAt: now,
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repoFor(tx).Create(ctx, req, payload)
	})
	if err != nil {
		return nil, fmt.Errorf("error submitting request: %w", err)
	}

	return req, nil
}
