// Package auth implements credential verification for inbound service calls
// and session token handling for the administrative API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/minauth/internal/common"
	"github.com/dmitrijs2005/minauth/internal/cryptox"
	"github.com/dmitrijs2005/minauth/internal/logging"
	"github.com/dmitrijs2005/minauth/internal/server/cache"
	"github.com/dmitrijs2005/minauth/internal/server/models"
	"github.com/dmitrijs2005/minauth/internal/server/repositories/credentials"
)

// Authenticator verifies presented passwords against centrally stored
// credentials, reading through the cache and enforcing per-service access
// rules.
type Authenticator struct {
	repo   credentials.Repository
	cache  cache.Cache
	digest cryptox.Digest
	secret string
	ttl    time.Duration
	logger logging.Logger
}

func NewAuthenticator(repo credentials.Repository, c cache.Cache, digest cryptox.Digest,
	secret string, ttl time.Duration, logger logging.Logger) *Authenticator {
	return &Authenticator{
		repo:   repo,
		cache:  c,
		digest: digest,
		secret: secret,
		ttl:    ttl,
		logger: logger.With("module", "authenticator"),
	}
}

// Verify checks the presented password and the service access rules for the
// given user. It returns (false, nil) for every expected denial: unknown
// user, wrong password, disallowed service. A non-nil error means an
// infrastructure fault, so callers can map denial and fault to different
// externally visible outcomes.
func (a *Authenticator) Verify(ctx context.Context, userID, password, service string) (bool, error) {
	cred, err := a.lookup(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			a.logger.Info(ctx, "unknown user", "user_id", userID)
			return false, nil
		}
		return false, fmt.Errorf("credential lookup: %w", err)
	}

	target := cryptox.CredentialHash(a.digest, a.secret, cred.Salt, password)
	if !strings.EqualFold(target, cred.PasswordHash) {
		a.logger.Info(ctx, "password mismatch", "user_id", userID)
		return false, nil
	}

	if !cred.Allowed(service) {
		a.logger.Info(ctx, "service not allowed", "user_id", userID, "service", service)
		return false, nil
	}

	return true, nil
}

// lookup reads through the cache. A cache fault falls back to the store; a
// failed cache populate only loses the performance benefit.
func (a *Authenticator) lookup(ctx context.Context, userID string) (*models.Credential, error) {
	cred, err := a.cache.Get(ctx, userID)
	if err == nil {
		return cred, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		a.logger.Warn(ctx, "cache read failed, falling back to store", "user_id", userID, "error", err)
	}

	cred, err = a.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := a.cache.Set(ctx, userID, cred, a.ttl); err != nil {
		a.logger.Warn(ctx, "cache populate failed", "user_id", userID, "error", err)
	}

	return cred, nil
}
