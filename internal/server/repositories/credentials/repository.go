// Package credentials persists the durable credential records backing the
// verification path. The authentication path reads through the cache; only
// cache misses and the administrative loader reach this repository.
package credentials

import (
	"context"

	"github.com/dmitrijs2005/minauth/internal/server/models"
)

type Repository interface {
	// Get returns the credential or common.ErrNotFound.
	Get(ctx context.Context, id string) (*models.Credential, error)

	// List returns every stored credential. Used by the administrative and
	// migration paths only.
	List(ctx context.Context) ([]*models.Credential, error)

	// Save inserts or overwrites a credential.
	Save(ctx context.Context, cred *models.Credential) error
}
