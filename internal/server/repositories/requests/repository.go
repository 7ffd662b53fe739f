// Package requests persists account-change requests and their type-specific
// payload rows. The payload row exists iff a request row with the same id and
// type exists; payloads are immutable once written.
package requests

import (
	"context"

	"github.com/dmitrijs2005/minauth/internal/server/models"
)

type Repository interface {
	// Create inserts the request row and its payload row. Both inserts run
	// on the repository's handle, so callers can wrap them in a transaction.
	Create(ctx context.Context, req *models.Request, payload models.Payload) error

	// ClaimNew reads the request under an exclusive row lock, filtered to
	// status new. No matching row yields common.ErrConflict.
	ClaimNew(ctx context.Context, id string) (*models.Request, error)

	// LoadPayload returns the type-specific payload row. Absence is a
	// consistency violation (common.ErrConsistency), not a miss.
	LoadPayload(ctx context.Context, id string, typ models.RequestType) (models.Payload, error)

	// Transition moves the request from one status to another, recording the
	// acting identity. A guard mismatch yields common.ErrConflict.
	Transition(ctx context.Context, id string, from, to models.RequestStatus, actor string) error

	// PendingIDs lists up to limit request ids in status new, oldest first.
	PendingIDs(ctx context.Context, limit int) ([]string, error)

	// ListByStatus returns every request in the given status, oldest first.
	// The recovery scan uses it to find claimed requests whose workspace was
	// lost between commit and finalization.
	ListByStatus(ctx context.Context, status models.RequestStatus) ([]*models.Request, error)
}
