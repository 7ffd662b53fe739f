package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/minauth/internal/common"
	"github.com/dmitrijs2005/minauth/internal/cryptox"
	"github.com/dmitrijs2005/minauth/internal/logging"
	"github.com/dmitrijs2005/minauth/internal/server/cache"
	"github.com/dmitrijs2005/minauth/internal/server/models"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	creds map[string]*models.Credential
	err   error
	gets  int
}

func (r *fakeRepo) Get(_ context.Context, id string) (*models.Credential, error) {
	r.gets++
	if r.err != nil {
		return nil, r.err
	}
	cred, ok := r.creds[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := *cred
	return &c, nil
}

func (r *fakeRepo) List(_ context.Context) ([]*models.Credential, error) { return nil, r.err }

func (r *fakeRepo) Save(_ context.Context, cred *models.Credential) error { return r.err }

type failingCache struct{ cache.Cache }

func (failingCache) Set(context.Context, string, *models.Credential, time.Duration) error {
	return errors.New("cache down")
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testCredential(t *testing.T, digest cryptox.Digest) *models.Credential {
	t.Helper()
	return &models.Credential{
		ID:           "u1",
		Salt:         "s1",
		PasswordHash: cryptox.CredentialHash(digest, "sec", "s1", "pw"),
		Rules: []models.AccessRule{
			{Effect: models.AccessAllow, Service: "svc"},
			{Effect: models.AccessDeny, Service: "*"},
		},
	}
}

func newAuthenticator(t *testing.T, repo *fakeRepo, c cache.Cache) *Authenticator {
	t.Helper()
	digest, err := cryptox.NewDigest("sha256")
	require.NoError(t, err)
	return NewAuthenticator(repo, c, digest, "sec", time.Minute, testLogger())
}

func TestVerify_EndToEnd(t *testing.T) {
	digest, _ := cryptox.NewDigest("sha256")
	repo := &fakeRepo{creds: map[string]*models.Credential{"u1": testCredential(t, digest)}}
	a := newAuthenticator(t, repo, cache.NewMemoryCache())
	ctx := context.Background()

	ok, err := a.Verify(ctx, "u1", "pw", "svc")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = a.Verify(ctx, "u1", "wrong", "svc")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerify_UnknownUserIsDenialNotError(t *testing.T) {
	repo := &fakeRepo{creds: map[string]*models.Credential{}}
	a := newAuthenticator(t, repo, cache.NewMemoryCache())

	ok, err := a.Verify(context.Background(), "ghost", "pw", "svc")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerify_StoreFaultIsInfrastructureError(t *testing.T) {
	repo := &fakeRepo{err: errors.New("store unreachable")}
	a := newAuthenticator(t, repo, cache.NewMemoryCache())

	ok, err := a.Verify(context.Background(), "u1", "pw", "svc")
	require.Error(t, err)
	require.False(t, ok)
}

func TestVerify_PopulatesCacheOnMiss(t *testing.T) {
	digest, _ := cryptox.NewDigest("sha256")
	repo := &fakeRepo{creds: map[string]*models.Credential{"u1": testCredential(t, digest)}}
	a := newAuthenticator(t, repo, cache.NewMemoryCache())
	ctx := context.Background()

	ok, err := a.Verify(ctx, "u1", "pw", "svc")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, repo.gets)

	// the second call is served from the cache and returns the same outcome
	ok, err = a.Verify(ctx, "u1", "pw", "svc")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, repo.gets)
}

func TestVerify_CachePopulateFailureDoesNotFailVerify(t *testing.T) {
	digest, _ := cryptox.NewDigest("sha256")
	repo := &fakeRepo{creds: map[string]*models.Credential{"u1": testCredential(t, digest)}}
	a := newAuthenticator(t, repo, failingCache{cache.NewMemoryCache()})

	ok, err := a.Verify(context.Background(), "u1", "pw", "svc")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerify_HashComparisonIsCaseInsensitive(t *testing.T) {
	digest, _ := cryptox.NewDigest("sha256")
	cred := testCredential(t, digest)
	cred.PasswordHash = strings.ToUpper(cred.PasswordHash)
	repo := &fakeRepo{creds: map[string]*models.Credential{"u1": cred}}
	a := newAuthenticator(t, repo, cache.NewMemoryCache())

	ok, err := a.Verify(context.Background(), "u1", "pw", "svc")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerify_ServiceRules(t *testing.T) {
	digest, _ := cryptox.NewDigest("sha256")
	repo := &fakeRepo{creds: map[string]*models.Credential{"u1": testCredential(t, digest)}}
	a := newAuthenticator(t, repo, cache.NewMemoryCache())
	ctx := context.Background()

	// correct password but the wildcard deny catches any other service
	ok, err := a.Verify(ctx, "u1", "pw", "other")
	require.NoError(t, err)
	require.False(t, ok)
}
