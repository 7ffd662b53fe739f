// Package dispatcher claims pending account-change requests, assigns them to
// a fixed pool of workers and materializes their payloads into per-worker
// workspaces.
package dispatcher

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/minauth/internal/common"
	"github.com/dmitrijs2005/minauth/internal/dbx"
	"github.com/dmitrijs2005/minauth/internal/logging"
	"github.com/dmitrijs2005/minauth/internal/server/models"
	"github.com/dmitrijs2005/minauth/internal/server/repositories/requests"
	"github.com/dmitrijs2005/minauth/internal/server/workspace"
)

// Actor is the identity recorded on state transitions made by the
// dispatcher.
const Actor = "dispatcher"

// pollBatchSize bounds how many pending requests one poll iteration claims.
const pollBatchSize = 32

type Dispatcher struct {
	db          *sql.DB
	ws          *workspace.Workspace
	workerCount int
	logger      logging.Logger

	// repoFor builds a repository bound to the given handle, so the whole
	// claim runs on one transaction. Replaceable in tests.
	repoFor func(db dbx.DBTX) requests.Repository
}

func New(db *sql.DB, ws *workspace.Workspace, workerCount int, logger logging.Logger) (*Dispatcher, error) {
	if workerCount <= 0 {
		return nil, fmt.Errorf("worker count must be positive, got %d", workerCount)
	}
	return &Dispatcher{
		db:          db,
		ws:          ws,
		workerCount: workerCount,
		logger:      logger.With("module", "dispatcher"),
		repoFor: func(db dbx.DBTX) requests.Repository {
			return requests.NewPostgresRepository(db)
		},
	}, nil
}

// Dispatch claims the request, materializes its payload into the assigned
// worker's workspace and moves it to in_progress. The claim, the payload
// load and the transition run in one transaction; the staged workspace is
// renamed into place only after the commit, and discarded on any failure.
//
// The row lock taken by the claim is the sole mutual exclusion: of two
// concurrent calls for the same request one succeeds and the other reports
// common.ErrConflict.
func (d *Dispatcher) Dispatch(ctx context.Context, requestID string) (int, error) {
	var (
		workerIndex int
		staging     *workspace.Staging
	)

	err := dbx.WithTx(ctx, d.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := d.repoFor(tx)

		req, err := repo.ClaimNew(ctx, requestID)
		if err != nil {
			return err
		}

		workerIndex = req.WorkerIndex(d.workerCount)

		payload, err := repo.LoadPayload(ctx, requestID, req.Type)
		if err != nil {
			return err
		}

		staging, err = d.materialize(requestID, payload)
		if err != nil {
			return err
		}

		return repo.Transition(ctx, requestID, models.StatusNew, models.StatusInProgress, Actor)
	})

	if err != nil {
		if staging != nil {
			if derr := staging.Discard(); derr != nil {
				d.logger.Warn(ctx, "failed to discard staging", "request_id", requestID, "error", derr)
			}
		}
		return 0, err
	}

	// The request is durably in_progress. If finalizing fails here, Recover
	// re-materializes from the immutable payload row.
	if err := d.ws.Commit(staging, workerIndex, requestID); err != nil {
		d.logger.Error(ctx, "workspace finalize failed, recovery scan required",
			"request_id", requestID, "worker", workerIndex, "error", err)
		return workerIndex, fmt.Errorf("finalize workspace: %w", err)
	}

	d.logger.Info(ctx, "request dispatched", "request_id", requestID, "worker", workerIndex)
	return workerIndex, nil
}

// materialize writes the payload, and any embedded key material, into a
// fresh staging directory.
func (d *Dispatcher) materialize(requestID string, payload models.Payload) (*workspace.Staging, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	staging, err := d.ws.Stage(requestID)
	if err != nil {
		return nil, err
	}

	if err := staging.WriteFile("payload.json", data); err != nil {
		_ = staging.Discard()
		return nil, err
	}

	var pubkey []byte
	switch p := payload.(type) {
	case models.CreateUserPayload:
		pubkey = p.PubKey
	case models.ChangePubkeyPayload:
		pubkey = p.PubKey
	case models.RenewPasswordPayload:
		// no key material
	default:
		_ = staging.Discard()
		return nil, fmt.Errorf("unknown payload type %T: %w", payload, common.ErrConsistency)
	}

	if pubkey != nil {
		if err := staging.WriteFile("pubkey", pubkey); err != nil {
			_ = staging.Discard()
			return nil, err
		}
	}

	return staging, nil
}

// Recover re-materializes workspaces for claimed requests that lack one,
// covering a crash between the dispatch commit and the workspace rename.
// Payload rows are immutable, so re-materialization is idempotent.
func (d *Dispatcher) Recover(ctx context.Context) error {
	repo := d.repoFor(d.db)

	reqs, err := repo.ListByStatus(ctx, models.StatusInProgress)
	if err != nil {
		return err
	}

	for _, req := range reqs {
		workerIndex := req.WorkerIndex(d.workerCount)

		exists, err := d.ws.Exists(workerIndex, req.ID)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		payload, err := repo.LoadPayload(ctx, req.ID, req.Type)
		if err != nil {
			return err
		}

		staging, err := d.materialize(req.ID, payload)
		if err != nil {
			return err
		}

		if err := d.ws.Commit(staging, workerIndex, req.ID); err != nil {
			_ = staging.Discard()
			return err
		}

		d.logger.Info(ctx, "workspace recovered", "request_id", req.ID, "worker", workerIndex)
	}

	return nil
}

// Run polls for pending requests until the context is cancelled. Conflicts
// are expected races with concurrent dispatchers and are skipped; a
// consistency violation aborts only the affected request, loudly.
func (d *Dispatcher) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		repo := d.repoFor(d.db)
		ids, err := repo.PendingIDs(ctx, pollBatchSize)
		if err != nil {
			d.logger.Error(ctx, "poll failed", "error", err)
			continue
		}

		for _, id := range ids {
			if _, err := d.Dispatch(ctx, id); err != nil {
				switch {
				case errors.Is(err, common.ErrConflict):
					d.logger.Debug(ctx, "claim raced, skipping", "request_id", id)
				case errors.Is(err, common.ErrConsistency):
					d.logger.Error(ctx, "request without payload row", "request_id", id, "error", err)
				default:
					d.logger.Error(ctx, "dispatch failed", "request_id", id, "error", err)
				}
			}
		}
	}
}
